package repository

import (
	"context"
	"time"

	"github.com/oksasatya/go-blog-cms/internal/domain/entity"
)

// ArticleFilter narrows an article listing. Nil pointers mean "any".
type ArticleFilter struct {
	Search    string // substring of title or content, case-insensitive
	Published *bool
	TagID     *int64
	AuthorID  *int64
	IDs       []int64
	Limit     int // zero means no limit
	Offset    int
}

// ArticleRepository defines the interface for article persistence.
// Articles returned by List and GetByID carry their author and tags.
type ArticleRepository interface {
	List(ctx context.Context, f ArticleFilter) ([]entity.Article, int64, error)
	GetByID(ctx context.Context, id int64) (*entity.Article, error)
	Create(ctx context.Context, a *entity.Article, tagIDs []int64) error
	// Update rewrites the article columns; tag rows are replaced only when tagIDs is non-nil
	Update(ctx context.Context, a *entity.Article, tagIDs []int64) error
	Delete(ctx context.Context, id int64) error
	SetPublishedAt(ctx context.Context, id int64, at *time.Time) error
}
