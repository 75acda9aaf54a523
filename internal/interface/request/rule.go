package request

import (
	"context"

	"github.com/oksasatya/go-blog-cms/internal/domain/entity"
	"github.com/oksasatya/go-blog-cms/pkg/validation"
)

// Scope is what a rule may know about the request besides its body
type Scope struct {
	Ctx    context.Context
	Caller entity.Identity
	// ID is the :id path parameter, zero on collection routes
	ID int64
}

// Rule adds field errors for req. A returned error means the check itself failed.
type Rule[T any] func(s Scope, req *T, errs validation.Errors) error

// Checker is implemented by request bodies with cross-field rules
// that struct tags cannot express
type Checker interface {
	Check(errs validation.Errors)
}

type TagChecker interface {
	AllExist(ctx context.Context, ids []int64) (bool, error)
	TitleTaken(ctx context.Context, title string, excludeID int64) (bool, error)
}

type UserChecker interface {
	EmailTaken(ctx context.Context, email string, excludeID int64) (bool, error)
	IsAuthor(ctx context.Context, id int64) (bool, error)
}

// TagsExist fails "tags" when any id does not reference a stored tag
func TagsExist[T any](tags TagChecker, get func(*T) []int64) Rule[T] {
	return func(s Scope, req *T, errs validation.Errors) error {
		ids := get(req)
		if errs.Has("tags") || len(ids) == 0 {
			return nil
		}
		ok, err := tags.AllExist(s.Ctx, ids)
		if err != nil {
			return err
		}
		if !ok {
			errs.Add("tags", "Some tags are invalid")
		}
		return nil
	}
}

// UniqueTagTitle compares case-insensitively and ignores the tag being updated
func UniqueTagTitle[T any](tags TagChecker, get func(*T) *string) Rule[T] {
	return func(s Scope, req *T, errs validation.Errors) error {
		title := get(req)
		if errs.Has("title") || title == nil {
			return nil
		}
		taken, err := tags.TitleTaken(s.Ctx, *title, s.ID)
		if err != nil {
			return err
		}
		if taken {
			errs.Add("title", "Tag already exists")
		}
		return nil
	}
}

// AuthorAssignable only applies to admins; other callers are always
// assigned as the author. With required set an admin must name one.
func AuthorAssignable[T any](users UserChecker, required bool, get func(*T) *int64) Rule[T] {
	return func(s Scope, req *T, errs validation.Errors) error {
		if !s.Caller.IsAdmin() || errs.Has("author_id") {
			return nil
		}
		id := get(req)
		if id == nil {
			if required {
				errs.Add("author_id", "Author ID is required")
			}
			return nil
		}
		ok, err := users.IsAuthor(s.Ctx, *id)
		if err != nil {
			return err
		}
		if !ok {
			errs.Add("author_id", "Invalid author ID")
		}
		return nil
	}
}

// EmailAvailable ignores the user being updated
func EmailAvailable[T any](users UserChecker, get func(*T) *string) Rule[T] {
	return func(s Scope, req *T, errs validation.Errors) error {
		email := get(req)
		if errs.Has("email") || email == nil || *email == "" {
			return nil
		}
		taken, err := users.EmailTaken(s.Ctx, *email, s.ID)
		if err != nil {
			return err
		}
		if taken {
			errs.Add("email", "Email is already taken")
		}
		return nil
	}
}
