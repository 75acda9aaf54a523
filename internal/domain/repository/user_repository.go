package repository

import (
	"context"

	"github.com/oksasatya/go-blog-cms/internal/domain/entity"
)

// UserFilter narrows a user listing
type UserFilter struct {
	Search      string // substring of username, case-insensitive
	ExcludeRole entity.Role
	Limit       int
	Offset      int
}

// UserRepository defines the interface for user-related database operations.
type UserRepository interface {
	List(ctx context.Context, f UserFilter) ([]entity.User, int64, error)
	GetByID(ctx context.Context, id int64) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	// EmailExists ignores the user with excludeID when it is non-zero
	EmailExists(ctx context.Context, email string, excludeID int64) (bool, error)
	Create(ctx context.Context, u *entity.User) error
	Update(ctx context.Context, u *entity.User) error
	// Delete removes the user together with their articles
	Delete(ctx context.Context, id int64) error
	ListByRole(ctx context.Context, role entity.Role) ([]entity.User, error)
}
