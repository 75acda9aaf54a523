package serializer

import (
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/oksasatya/go-blog-cms/internal/domain/entity"
)

const (
	StatusPublished = "PUBLISHED"
	StatusDraft     = "DRAFT"
)

type AuthorRef struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

type AuthorDetail struct {
	ID       int64       `json:"id"`
	Username string      `json:"username"`
	Email    string      `json:"email"`
	Role     entity.Role `json:"role"`
}

type TagRef struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
}

type Article struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	Content     string     `json:"content"`
	AuthorID    int64      `json:"author_id"`
	Author      *AuthorRef `json:"author"`
	Tags        []TagRef   `json:"tags"`
	Status      string     `json:"status"`
	PublishedAt *time.Time `json:"published_at"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

type ArticleDetail struct {
	ID          int64         `json:"id"`
	Title       string        `json:"title"`
	Content     string        `json:"content"`
	AuthorID    int64         `json:"author_id"`
	Author      *AuthorDetail `json:"author"`
	Tags        []TagRef      `json:"tags"`
	Status      string        `json:"status"`
	PublishedAt *time.Time    `json:"published_at"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// FormatTitle trims the title and upper-cases its first letter
func FormatTitle(s string) string {
	s = strings.TrimSpace(s)
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

func status(a *entity.Article) string {
	if a.IsPublished() {
		return StatusPublished
	}
	return StatusDraft
}

func tagRefs(tags []entity.Tag) []TagRef {
	out := make([]TagRef, 0, len(tags))
	for _, t := range tags {
		out = append(out, TagRef{ID: t.ID, Title: t.Title})
	}
	return out
}

func NewArticle(a *entity.Article) Article {
	out := Article{
		ID:          a.ID,
		Title:       FormatTitle(a.Title),
		Content:     a.Content,
		AuthorID:    a.AuthorID,
		Tags:        tagRefs(a.Tags),
		Status:      status(a),
		PublishedAt: a.PublishedAt,
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
	}
	if a.Author != nil {
		out.Author = &AuthorRef{ID: a.Author.ID, Username: a.Author.Username}
	}
	return out
}

func NewArticles(items []entity.Article) []Article {
	out := make([]Article, 0, len(items))
	for i := range items {
		out = append(out, NewArticle(&items[i]))
	}
	return out
}

// NewArticleDetail adds the author's email and role
func NewArticleDetail(a *entity.Article) ArticleDetail {
	out := ArticleDetail{
		ID:          a.ID,
		Title:       FormatTitle(a.Title),
		Content:     a.Content,
		AuthorID:    a.AuthorID,
		Tags:        tagRefs(a.Tags),
		Status:      status(a),
		PublishedAt: a.PublishedAt,
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
	}
	if u := a.Author; u != nil {
		out.Author = &AuthorDetail{ID: u.ID, Username: u.Username, Email: u.Email, Role: u.Role}
	}
	return out
}
