// Package testutil provides in-memory repositories for tests.
package testutil

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/oksasatya/go-blog-cms/internal/domain/entity"
	"github.com/oksasatya/go-blog-cms/internal/domain/repository"
)

// Store backs the user, article and tag repositories with maps.
// Set Err to make every call fail.
type Store struct {
	mu sync.Mutex

	Err error

	users       map[int64]entity.User
	articles    map[int64]entity.Article
	tags        map[int64]entity.Tag
	articleTags map[int64][]int64
	nextID      int64
	clock       time.Time
}

func NewStore() *Store {
	return &Store{
		users:       map[int64]entity.User{},
		articles:    map[int64]entity.Article{},
		tags:        map[int64]entity.Tag{},
		articleTags: map[int64][]int64{},
		clock:       time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

// Users, Articles and Tags expose the store through each repository interface
func (s *Store) Users() *UserRepo       { return &UserRepo{s} }
func (s *Store) Articles() *ArticleRepo { return &ArticleRepo{s} }
func (s *Store) Tags() *TagRepo         { return &TagRepo{s} }

// tick returns strictly increasing timestamps so ordering is deterministic
func (s *Store) tick() time.Time {
	s.clock = s.clock.Add(time.Second)
	return s.clock
}

func (s *Store) id() int64 {
	s.nextID++
	return s.nextID
}

// ArticleTagIDs returns the raw join rows for an article
func (s *Store) ArticleTagIDs(articleID int64) []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]int64(nil), s.articleTags[articleID]...)
}

func contains(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

func window[T any](items []T, limit, offset int) []T {
	if offset > len(items) {
		return []T{}
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

type UserRepo struct{ s *Store }

func (r *UserRepo) List(_ context.Context, f repository.UserFilter) ([]entity.User, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, 0, r.s.Err
	}
	out := make([]entity.User, 0)
	for _, u := range r.s.users {
		if f.ExcludeRole != "" && u.Role == f.ExcludeRole {
			continue
		}
		if f.Search != "" && !contains(u.Username, f.Search) {
			continue
		}
		for _, a := range r.s.articles {
			if a.AuthorID == u.ID {
				u.ArticlesCount++
			}
		}
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return window(out, f.Limit, f.Offset), int64(len(out)), nil
}

func (r *UserRepo) GetByID(_ context.Context, id int64) (*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	u, ok := r.s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &u, nil
}

func (r *UserRepo) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	for _, u := range r.s.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *UserRepo) EmailExists(_ context.Context, email string, excludeID int64) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return false, r.s.Err
	}
	for _, u := range r.s.users {
		if u.Email == email && u.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (r *UserRepo) Create(_ context.Context, u *entity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return r.s.Err
	}
	for _, other := range r.s.users {
		if other.Email == u.Email {
			return repository.ErrDuplicate
		}
	}
	if u.Role == "" {
		u.Role = entity.RoleAuthor
	}
	u.ID = r.s.id()
	u.CreatedAt = r.s.tick()
	u.UpdatedAt = u.CreatedAt
	stored := *u
	stored.Articles, stored.ArticlesCount = nil, 0
	r.s.users[u.ID] = stored
	return nil
}

func (r *UserRepo) Update(_ context.Context, u *entity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return r.s.Err
	}
	if _, ok := r.s.users[u.ID]; !ok {
		return repository.ErrNotFound
	}
	for _, other := range r.s.users {
		if other.Email == u.Email && other.ID != u.ID {
			return repository.ErrDuplicate
		}
	}
	u.UpdatedAt = r.s.tick()
	stored := *u
	stored.Articles, stored.ArticlesCount = nil, 0
	r.s.users[u.ID] = stored
	return nil
}

func (r *UserRepo) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return r.s.Err
	}
	if _, ok := r.s.users[id]; !ok {
		return repository.ErrNotFound
	}
	for aid, a := range r.s.articles {
		if a.AuthorID == id {
			delete(r.s.articleTags, aid)
			delete(r.s.articles, aid)
		}
	}
	delete(r.s.users, id)
	return nil
}

func (r *UserRepo) ListByRole(_ context.Context, role entity.Role) ([]entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	out := make([]entity.User, 0)
	for _, u := range r.s.users {
		if u.Role == role {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}

type ArticleRepo struct{ s *Store }

// hydrate attaches author and tags; caller holds the lock
func (r *ArticleRepo) hydrate(a entity.Article) entity.Article {
	if u, ok := r.s.users[a.AuthorID]; ok {
		a.Author = &u
	}
	a.Tags = make([]entity.Tag, 0)
	for _, tid := range r.s.articleTags[a.ID] {
		if t, ok := r.s.tags[tid]; ok {
			a.Tags = append(a.Tags, t)
		}
	}
	sort.Slice(a.Tags, func(i, j int) bool { return a.Tags[i].Title < a.Tags[j].Title })
	return a
}

func (r *ArticleRepo) List(_ context.Context, f repository.ArticleFilter) ([]entity.Article, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, 0, r.s.Err
	}
	var ids map[int64]bool
	if f.IDs != nil {
		ids = map[int64]bool{}
		for _, id := range f.IDs {
			ids[id] = true
		}
	}
	out := make([]entity.Article, 0)
	for _, a := range r.s.articles {
		if f.AuthorID != nil && a.AuthorID != *f.AuthorID {
			continue
		}
		if f.Search != "" && !contains(a.Title, f.Search) && !contains(a.Content, f.Search) {
			continue
		}
		if f.Published != nil && a.IsPublished() != *f.Published {
			continue
		}
		if f.TagID != nil && !hasTag(r.s.articleTags[a.ID], *f.TagID) {
			continue
		}
		if ids != nil && !ids[a.ID] {
			continue
		}
		out = append(out, r.hydrate(a))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return window(out, f.Limit, f.Offset), int64(len(out)), nil
}

func hasTag(ids []int64, id int64) bool {
	for _, t := range ids {
		if t == id {
			return true
		}
	}
	return false
}

func (r *ArticleRepo) GetByID(_ context.Context, id int64) (*entity.Article, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	a, ok := r.s.articles[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	a = r.hydrate(a)
	return &a, nil
}

func (r *ArticleRepo) setTags(articleID int64, tagIDs []int64) error {
	for _, tid := range tagIDs {
		if _, ok := r.s.tags[tid]; !ok {
			return repository.ErrReferenced
		}
	}
	r.s.articleTags[articleID] = append([]int64(nil), tagIDs...)
	return nil
}

func (r *ArticleRepo) Create(_ context.Context, a *entity.Article, tagIDs []int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return r.s.Err
	}
	if _, ok := r.s.users[a.AuthorID]; !ok {
		return repository.ErrReferenced
	}
	a.ID = r.s.id()
	if err := r.setTags(a.ID, tagIDs); err != nil {
		return err
	}
	a.CreatedAt = r.s.tick()
	a.UpdatedAt = a.CreatedAt
	stored := *a
	stored.Author, stored.Tags = nil, nil
	r.s.articles[a.ID] = stored
	return nil
}

func (r *ArticleRepo) Update(_ context.Context, a *entity.Article, tagIDs []int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return r.s.Err
	}
	if _, ok := r.s.articles[a.ID]; !ok {
		return repository.ErrNotFound
	}
	if tagIDs != nil {
		if err := r.setTags(a.ID, tagIDs); err != nil {
			return err
		}
	}
	a.UpdatedAt = r.s.tick()
	stored := *a
	stored.Author, stored.Tags = nil, nil
	r.s.articles[a.ID] = stored
	return nil
}

func (r *ArticleRepo) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return r.s.Err
	}
	if _, ok := r.s.articles[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.articleTags, id)
	delete(r.s.articles, id)
	return nil
}

func (r *ArticleRepo) SetPublishedAt(_ context.Context, id int64, at *time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return r.s.Err
	}
	a, ok := r.s.articles[id]
	if !ok {
		return repository.ErrNotFound
	}
	a.PublishedAt = at
	a.UpdatedAt = r.s.tick()
	r.s.articles[id] = a
	return nil
}

type TagRepo struct{ s *Store }

func (r *TagRepo) List(_ context.Context, f repository.TagFilter) ([]entity.Tag, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, 0, r.s.Err
	}
	out := make([]entity.Tag, 0)
	for _, t := range r.s.tags {
		if f.Search != "" && !contains(t.Title, f.Search) {
			continue
		}
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return window(out, f.Limit, f.Offset), int64(len(out)), nil
}

func (r *TagRepo) All(_ context.Context) ([]entity.Tag, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	out := make([]entity.Tag, 0, len(r.s.tags))
	for _, t := range r.s.tags {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Title < out[j].Title })
	return out, nil
}

func (r *TagRepo) GetByID(_ context.Context, id int64) (*entity.Tag, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	t, ok := r.s.tags[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &t, nil
}

func (r *TagRepo) titleTaken(title string, excludeID int64) bool {
	for _, t := range r.s.tags {
		if strings.EqualFold(t.Title, title) && t.ID != excludeID {
			return true
		}
	}
	return false
}

func (r *TagRepo) Create(_ context.Context, t *entity.Tag) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return r.s.Err
	}
	if r.titleTaken(t.Title, 0) {
		return repository.ErrDuplicate
	}
	t.ID = r.s.id()
	t.CreatedAt = r.s.tick()
	t.UpdatedAt = t.CreatedAt
	r.s.tags[t.ID] = *t
	return nil
}

func (r *TagRepo) Update(_ context.Context, t *entity.Tag) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return r.s.Err
	}
	old, ok := r.s.tags[t.ID]
	if !ok {
		return repository.ErrNotFound
	}
	if r.titleTaken(t.Title, t.ID) {
		return repository.ErrDuplicate
	}
	t.CreatedAt = old.CreatedAt
	t.UpdatedAt = r.s.tick()
	r.s.tags[t.ID] = *t
	return nil
}

func (r *TagRepo) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return r.s.Err
	}
	if _, ok := r.s.tags[id]; !ok {
		return repository.ErrNotFound
	}
	for _, ids := range r.s.articleTags {
		if hasTag(ids, id) {
			return repository.ErrReferenced
		}
	}
	delete(r.s.tags, id)
	return nil
}

func (r *TagRepo) CountExisting(_ context.Context, ids []int64) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return 0, r.s.Err
	}
	n := 0
	for _, id := range ids {
		if _, ok := r.s.tags[id]; ok {
			n++
		}
	}
	return n, nil
}

func (r *TagRepo) TitleExists(_ context.Context, title string, excludeID int64) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return false, r.s.Err
	}
	return r.titleTaken(title, excludeID), nil
}

func (r *TagRepo) CountArticles(_ context.Context, id int64) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return 0, r.s.Err
	}
	var n int64
	for _, ids := range r.s.articleTags {
		if hasTag(ids, id) {
			n++
		}
	}
	return n, nil
}

var (
	_ repository.UserRepository    = (*UserRepo)(nil)
	_ repository.ArticleRepository = (*ArticleRepo)(nil)
	_ repository.TagRepository     = (*TagRepo)(nil)
)

// ErrBoom is a generic store failure for error-path tests
var ErrBoom = errors.New("boom")
