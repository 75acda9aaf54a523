package application_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/oksasatya/go-blog-cms/internal/application"
	"github.com/oksasatya/go-blog-cms/internal/domain/entity"
	"github.com/oksasatya/go-blog-cms/internal/testutil"
	"github.com/oksasatya/go-blog-cms/pkg/helpers"
	mailtpl "github.com/oksasatya/go-blog-cms/pkg/mailer/templates"
)

func newUserService(store *testutil.Store, queue *testutil.MailQueue, cache application.Cache) *application.UserService {
	emails := &application.EmailComposer{}
	if queue != nil {
		emails.Queue = queue
	}
	return application.NewUserService(store.Users(), store.Articles(), bcrypt.MinCost, emails, cache, nil)
}

func TestUserService_ListExcludesAdminsAndCountsArticles(t *testing.T) {
	store := testutil.NewStore()
	testutil.SeedUser(t, store, "demo", "demo@gmail.com", entity.RoleAdmin, "12345678")
	alice := testutil.SeedUser(t, store, "alice", "alice@example.com", entity.RoleAuthor, "secret1")
	testutil.SeedUser(t, store, "bob", "bob@example.com", entity.RoleAuthor, "secret1")
	testutil.SeedArticle(t, store, alice.ID, "one", false)
	testutil.SeedArticle(t, store, alice.ID, "two", true)
	svc := newUserService(store, nil, nil)
	ctx := context.Background()

	page, err := svc.List(ctx, application.UserQuery{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, page.Meta.Total)
	for _, u := range page.Items {
		assert.NotEqual(t, entity.RoleAdmin, u.Role)
		if u.ID == alice.ID {
			assert.EqualValues(t, 2, u.ArticlesCount)
		}
	}

	page, err = svc.List(ctx, application.UserQuery{Search: "ALI"})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "alice", page.Items[0].Username)
}

func TestUserService_CreateHashesAndQueuesEmail(t *testing.T) {
	store := testutil.NewStore()
	queue := &testutil.MailQueue{}
	svc := newUserService(store, queue, nil)
	ctx := context.Background()

	u, err := svc.Create(ctx, application.CreateUserInput{Username: "carol", Email: "Carol@Example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, entity.RoleAuthor, u.Role)
	assert.Equal(t, "carol@example.com", u.Email)
	assert.True(t, helpers.CompareHashAndPassword(u.Password, "secret1"))

	cost, err := bcrypt.Cost([]byte(u.Password))
	require.NoError(t, err)
	assert.Equal(t, bcrypt.MinCost, cost)

	require.Len(t, queue.Jobs, 1)
	assert.Equal(t, mailtpl.AccountCreated, queue.Jobs[0].Template)

	_, err = svc.Create(ctx, application.CreateUserInput{Username: "dup", Email: "carol@example.com", Password: "secret1"})
	assert.ErrorIs(t, err, application.ErrEmailTaken)
}

func TestUserService_UpdateWithoutPasswordKeepsHash(t *testing.T) {
	store := testutil.NewStore()
	u := testutil.SeedUser(t, store, "alice", "alice@example.com", entity.RoleAuthor, "secret1")
	svc := newUserService(store, nil, nil)
	ctx := context.Background()

	name := "alice2"
	empty := ""
	got, err := svc.Update(ctx, u.ID, application.UpdateUserInput{Username: &name, Password: &empty})
	require.NoError(t, err)
	assert.Equal(t, "alice2", got.Username)
	assert.Equal(t, "alice@example.com", got.Email)
	assert.Equal(t, u.Password, got.Password)

	pw := "newsecret"
	got, err = svc.Update(ctx, u.ID, application.UpdateUserInput{Password: &pw})
	require.NoError(t, err)
	assert.NotEqual(t, u.Password, got.Password)
	assert.True(t, helpers.CompareHashAndPassword(got.Password, "newsecret"))

	_, err = svc.Update(ctx, 999, application.UpdateUserInput{Username: &name})
	assert.ErrorIs(t, err, application.ErrUserNotFound)
}

func TestUserService_DeleteCascades(t *testing.T) {
	store := testutil.NewStore()
	alice := testutil.SeedUser(t, store, "alice", "alice@example.com", entity.RoleAuthor, "secret1")
	tag := testutil.SeedTag(t, store, "go")
	a := testutil.SeedArticle(t, store, alice.ID, "post", false, tag.ID)
	svc := newUserService(store, nil, nil)
	ctx := context.Background()

	require.NoError(t, svc.Delete(ctx, alice.ID))
	_, err := store.Articles().GetByID(ctx, a.ID)
	assert.Error(t, err)
	assert.Empty(t, store.ArticleTagIDs(a.ID))
	assert.ErrorIs(t, svc.Delete(ctx, alice.ID), application.ErrUserNotFound)
}

func TestUserService_GetIncludesArticles(t *testing.T) {
	store := testutil.NewStore()
	alice := testutil.SeedUser(t, store, "alice", "alice@example.com", entity.RoleAuthor, "secret1")
	testutil.SeedArticle(t, store, alice.ID, "post", false)
	svc := newUserService(store, nil, nil)

	got, err := svc.Get(context.Background(), alice.Identity(), alice.ID)
	require.NoError(t, err)
	require.Len(t, got.Articles, 1)
	assert.EqualValues(t, 1, got.ArticlesCount)

	_, err = svc.Get(context.Background(), alice.Identity(), 404)
	assert.ErrorIs(t, err, application.ErrUserNotFound)
}

func TestUserService_AuthorOptionsAndChecks(t *testing.T) {
	store := testutil.NewStore()
	admin := testutil.SeedUser(t, store, "demo", "demo@gmail.com", entity.RoleAdmin, "12345678")
	alice := testutil.SeedUser(t, store, "alice", "alice@example.com", entity.RoleAuthor, "secret1")
	cache := testutil.NewCache()
	svc := newUserService(store, nil, cache)
	ctx := context.Background()

	opts, err := svc.AuthorOptions(ctx)
	require.NoError(t, err)
	require.Len(t, opts, 1)
	assert.Equal(t, "alice", opts[0].Username)

	cached, err := svc.AuthorOptions(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, cache.Hits)
	assert.Empty(t, cached[0].Password)

	ok, err := svc.IsAuthor(ctx, alice.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = svc.IsAuthor(ctx, admin.ID)
	require.NoError(t, err)
	assert.False(t, ok)
	ok, err = svc.IsAuthor(ctx, 404)
	require.NoError(t, err)
	assert.False(t, ok)

	taken, err := svc.EmailTaken(ctx, "ALICE@example.com", 0)
	require.NoError(t, err)
	assert.True(t, taken)
	taken, err = svc.EmailTaken(ctx, "alice@example.com", alice.ID)
	require.NoError(t, err)
	assert.False(t, taken)
}

func TestUserService_GetHidesOtherAuthorsArticles(t *testing.T) {
	store := testutil.NewStore()
	admin := testutil.SeedUser(t, store, "demo", "demo@gmail.com", entity.RoleAdmin, "12345678")
	alice := testutil.SeedUser(t, store, "alice", "alice@example.com", entity.RoleAuthor, "secret1")
	bob := testutil.SeedUser(t, store, "bob", "bob@example.com", entity.RoleAuthor, "secret1")
	testutil.SeedArticle(t, store, bob.ID, "draft one", false)
	testutil.SeedArticle(t, store, bob.ID, "draft two", false)
	svc := newUserService(store, nil, nil)
	ctx := context.Background()

	got, err := svc.Get(ctx, alice.Identity(), bob.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Articles)
	assert.EqualValues(t, 2, got.ArticlesCount)

	got, err = svc.Get(ctx, bob.Identity(), bob.ID)
	require.NoError(t, err)
	assert.Len(t, got.Articles, 2)

	got, err = svc.Get(ctx, admin.Identity(), bob.ID)
	require.NoError(t, err)
	assert.Len(t, got.Articles, 2)
}

func TestUserService_DeleteUnindexesArticles(t *testing.T) {
	store := testutil.NewStore()
	alice := testutil.SeedUser(t, store, "alice", "alice@example.com", entity.RoleAuthor, "secret1")
	bob := testutil.SeedUser(t, store, "bob", "bob@example.com", entity.RoleAuthor, "secret1")
	gone := testutil.SeedArticle(t, store, alice.ID, "alice post", false)
	kept := testutil.SeedArticle(t, store, bob.ID, "bob post", false)
	index := testutil.NewIndexer()
	ctx := context.Background()
	require.NoError(t, index.Index(ctx, gone))
	require.NoError(t, index.Index(ctx, kept))

	svc := newUserService(store, nil, nil)
	svc.Indexer = index
	require.NoError(t, svc.Delete(ctx, alice.ID))

	assert.Equal(t, []int64{gone.ID}, index.Deleted)
	assert.Contains(t, index.Docs, kept.ID)
	assert.NotContains(t, index.Docs, gone.ID)
}
