package serializer

import (
	"time"

	"github.com/oksasatya/go-blog-cms/internal/domain/entity"
)

type Tag struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type TagDetail struct {
	Tag
	Articles []Article `json:"articles"`
}

func NewTag(t *entity.Tag) Tag {
	return Tag{ID: t.ID, Title: t.Title, CreatedAt: t.CreatedAt, UpdatedAt: t.UpdatedAt}
}

func NewTags(items []entity.Tag) []Tag {
	out := make([]Tag, 0, len(items))
	for i := range items {
		out = append(out, NewTag(&items[i]))
	}
	return out
}

func NewTagDetail(t *entity.Tag) TagDetail {
	return TagDetail{Tag: NewTag(t), Articles: NewArticles(t.Articles)}
}
