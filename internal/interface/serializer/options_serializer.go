package serializer

import "github.com/oksasatya/go-blog-cms/internal/domain/entity"

type TagOption struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
}

type AuthorOption struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

func NewTagOptions(tags []entity.Tag) []TagOption {
	out := make([]TagOption, 0, len(tags))
	for _, t := range tags {
		out = append(out, TagOption{ID: t.ID, Title: t.Title})
	}
	return out
}

func NewAuthorOptions(users []entity.User) []AuthorOption {
	out := make([]AuthorOption, 0, len(users))
	for _, u := range users {
		out = append(out, AuthorOption{ID: u.ID, Username: u.Username})
	}
	return out
}
