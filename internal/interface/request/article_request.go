package request

import (
	"errors"
	"strings"
	"time"

	"github.com/oksasatya/go-blog-cms/pkg/validation"
)

var publishDateLayouts = []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02 15:04", "2006-01-02"}

var errBadDate = errors.New("invalid date")

// ParsePublishDate accepts RFC3339 or a plain date with optional time, read as UTC
func ParsePublishDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range publishDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, errBadDate
}

func checkPublishDate(v *string, errs validation.Errors) {
	if v == nil || strings.TrimSpace(*v) == "" {
		return
	}
	if _, err := ParsePublishDate(*v); err != nil {
		errs.Add("publish_date", "Publish date must be a valid date")
	}
}

// publishedAt returns nil for a missing or blank date
func publishedAt(v *string) *time.Time {
	if v == nil || strings.TrimSpace(*v) == "" {
		return nil
	}
	t, err := ParsePublishDate(*v)
	if err != nil {
		return nil
	}
	return &t
}

var ArticleMessages = map[string]string{
	"tags.required": "Tags are required",
	"tags.min":      "Tags are required",
	"tags.gt":       "Some tags are invalid",
}

type CreateArticleRequest struct {
	Title       string  `json:"title" binding:"required,max=255"`
	Content     string  `json:"content" binding:"required"`
	Tags        []int64 `json:"tags" binding:"required,min=1,dive,gt=0"`
	PublishDate *string `json:"publish_date"`
	AuthorID    *int64  `json:"author_id"`
}

func (r *CreateArticleRequest) Check(errs validation.Errors) {
	if !errs.Has("title") && strings.TrimSpace(r.Title) == "" {
		errs.Add("title", "Title is required")
	}
	checkPublishDate(r.PublishDate, errs)
}

func (r *CreateArticleRequest) TagIDs() []int64         { return r.Tags }
func (r *CreateArticleRequest) Author() *int64          { return r.AuthorID }
func (r *CreateArticleRequest) PublishedAt() *time.Time { return publishedAt(r.PublishDate) }

// UpdateArticleRequest is a partial patch; tags, when sent, replace the set
type UpdateArticleRequest struct {
	Title       *string  `json:"title" binding:"omitempty,max=255"`
	Content     *string  `json:"content"`
	Tags        *[]int64 `json:"tags"`
	PublishDate *string  `json:"publish_date"`
	AuthorID    *int64   `json:"author_id"`
}

func (r *UpdateArticleRequest) Check(errs validation.Errors) {
	if r.Title != nil && strings.TrimSpace(*r.Title) == "" {
		errs.Add("title", "Title is required")
	}
	if r.Content != nil && strings.TrimSpace(*r.Content) == "" {
		errs.Add("content", "Content is required")
	}
	if r.Tags != nil {
		if len(*r.Tags) == 0 {
			errs.Add("tags", "Tags are required")
		}
		for _, id := range *r.Tags {
			if id <= 0 {
				errs.Add("tags", "Some tags are invalid")
			}
		}
	}
	checkPublishDate(r.PublishDate, errs)
}

func (r *UpdateArticleRequest) TagIDs() []int64 {
	if r.Tags == nil {
		return nil
	}
	return *r.Tags
}

func (r *UpdateArticleRequest) Author() *int64          { return r.AuthorID }
func (r *UpdateArticleRequest) PublishedAt() *time.Time { return publishedAt(r.PublishDate) }

type TogglePublishRequest struct {
	IsPublished *bool `json:"is_published" binding:"required"`
}
