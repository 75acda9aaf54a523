package repository

import (
	"context"

	"github.com/oksasatya/go-blog-cms/internal/domain/entity"
)

type TagFilter struct {
	Search string
	Limit  int
	Offset int
}

// TagRepository defines the interface for tag persistence.
type TagRepository interface {
	List(ctx context.Context, f TagFilter) ([]entity.Tag, int64, error)
	All(ctx context.Context) ([]entity.Tag, error)
	GetByID(ctx context.Context, id int64) (*entity.Tag, error)
	Create(ctx context.Context, t *entity.Tag) error
	Update(ctx context.Context, t *entity.Tag) error
	Delete(ctx context.Context, id int64) error
	// CountExisting reports how many of ids refer to stored tags
	CountExisting(ctx context.Context, ids []int64) (int, error)
	// TitleExists compares case-insensitively and ignores excludeID when non-zero
	TitleExists(ctx context.Context, title string, excludeID int64) (bool, error)
	CountArticles(ctx context.Context, id int64) (int64, error)
}
