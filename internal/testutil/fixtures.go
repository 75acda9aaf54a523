package testutil

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/oksasatya/go-blog-cms/internal/application"
	"github.com/oksasatya/go-blog-cms/internal/domain/entity"
	"github.com/oksasatya/go-blog-cms/pkg/helpers"
	"github.com/oksasatya/go-blog-cms/pkg/mailer"
)

// SeedUser stores a user whose password hashes at the minimum bcrypt cost
func SeedUser(t *testing.T, s *Store, username, email string, role entity.Role, password string) *entity.User {
	t.Helper()
	hash, err := helpers.HashPassword(password, bcrypt.MinCost)
	require.NoError(t, err)
	u := &entity.User{Username: username, Email: email, Password: hash, Role: role}
	require.NoError(t, s.Users().Create(context.Background(), u))
	return u
}

func SeedTag(t *testing.T, s *Store, title string) *entity.Tag {
	t.Helper()
	tag := &entity.Tag{Title: title}
	require.NoError(t, s.Tags().Create(context.Background(), tag))
	return tag
}

func SeedArticle(t *testing.T, s *Store, authorID int64, title string, published bool, tagIDs ...int64) *entity.Article {
	t.Helper()
	a := &entity.Article{Title: title, Content: "content of " + title, AuthorID: authorID}
	if published {
		now := time.Now().UTC()
		a.PublishedAt = &now
	}
	require.NoError(t, s.Articles().Create(context.Background(), a, tagIDs))
	return a
}

// MailQueue records enqueued jobs
type MailQueue struct {
	mu   sync.Mutex
	Jobs []mailer.EmailJob
	Err  error
}

func (q *MailQueue) Enqueue(_ context.Context, job mailer.EmailJob) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.Err != nil {
		return q.Err
	}
	q.Jobs = append(q.Jobs, job)
	return nil
}

// Cache is a map-backed application.Cache
type Cache struct {
	mu   sync.Mutex
	Data map[string]any
	Hits int
}

func NewCache() *Cache { return &Cache{Data: map[string]any{}} }

func (c *Cache) GetJSON(_ context.Context, key string, dest any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.Data[key]
	if !ok {
		return false, nil
	}
	switch d := dest.(type) {
	case *[]entity.Tag:
		*d = v.([]entity.Tag)
	case *[]entity.User:
		*d = v.([]entity.User)
	default:
		return false, nil
	}
	c.Hits++
	return true, nil
}

func (c *Cache) SetJSON(_ context.Context, key string, value any, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Data[key] = value
	return nil
}

func (c *Cache) Delete(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.Data, k)
	}
	return nil
}

// Indexer is an in-memory search index matching on title substrings
type Indexer struct {
	mu      sync.Mutex
	Docs    map[int64]entity.Article
	Err     error
	Deleted []int64
}

func NewIndexer() *Indexer { return &Indexer{Docs: map[int64]entity.Article{}} }

func (i *Indexer) Index(_ context.Context, a *entity.Article) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.Docs[a.ID] = *a
	return nil
}

func (i *Indexer) Delete(_ context.Context, id int64) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	delete(i.Docs, id)
	i.Deleted = append(i.Deleted, id)
	return nil
}

func (i *Indexer) Search(_ context.Context, q application.SearchQuery) ([]int64, int64, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.Err != nil {
		return nil, 0, i.Err
	}
	hits := make([]int64, 0)
	for id, a := range i.Docs {
		if q.AuthorID != nil && a.AuthorID != *q.AuthorID {
			continue
		}
		if contains(a.Title, q.Text) || contains(a.Content, q.Text) {
			hits = append(hits, id)
		}
	}
	// newest first, matching the database listing order
	slices.SortFunc(hits, func(a, b int64) int { return cmp.Compare(b, a) })
	total := int64(len(hits))
	return window(hits, q.Page.Limit(), q.Page.Offset()), total, nil
}
