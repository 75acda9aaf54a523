package application_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/oksasatya/go-blog-cms/internal/application"
	"github.com/oksasatya/go-blog-cms/internal/domain/entity"
	"github.com/oksasatya/go-blog-cms/internal/testutil"
	"github.com/oksasatya/go-blog-cms/pkg/helpers"
	mailtpl "github.com/oksasatya/go-blog-cms/pkg/mailer/templates"
)

func newAuth(store *testutil.Store, queue *testutil.MailQueue) *application.AuthService {
	emails := &application.EmailComposer{CompanyName: "Acme", LoginURL: "http://x/login"}
	if queue != nil {
		emails.Queue = queue
	}
	return application.NewAuthService(store.Users(), helpers.NewJWTManager("secret", time.Hour), bcrypt.MinCost, emails, nil)
}

func TestAuthService_Login(t *testing.T) {
	store := testutil.NewStore()
	u := testutil.SeedUser(t, store, "demo", "demo@gmail.com", entity.RoleAdmin, "12345678")
	svc := newAuth(store, nil)
	ctx := context.Background()

	token, err := svc.Login(ctx, "Demo@Gmail.com ", "12345678")
	require.NoError(t, err)
	claims, err := svc.JWT.ParseAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, claims.UserID)

	token, err = svc.Login(ctx, "demo@gmail.com", "wrong")
	assert.ErrorIs(t, err, application.ErrInvalidCredentials)
	assert.Empty(t, token)

	token, err = svc.Login(ctx, "nobody@gmail.com", "12345678")
	assert.ErrorIs(t, err, application.ErrInvalidCredentials)
	assert.Empty(t, token)
}

func TestAuthService_LoginStoreFailure(t *testing.T) {
	store := testutil.NewStore()
	store.Err = testutil.ErrBoom
	_, err := newAuth(store, nil).Login(context.Background(), "a@b.c", "x")
	assert.ErrorIs(t, err, testutil.ErrBoom)
	assert.NotErrorIs(t, err, application.ErrInvalidCredentials)
}

func TestAuthService_Register(t *testing.T) {
	store := testutil.NewStore()
	queue := &testutil.MailQueue{}
	svc := newAuth(store, queue)
	ctx := context.Background()

	token, err := svc.Register(ctx, application.RegisterInput{Username: "jane", Email: "jane@example.com", Password: "secret1"})
	require.NoError(t, err)
	require.NotEmpty(t, token)

	u, err := store.Users().GetByEmail(ctx, "jane@example.com")
	require.NoError(t, err)
	assert.Equal(t, entity.RoleAuthor, u.Role)
	assert.NotEqual(t, "secret1", u.Password)
	assert.True(t, helpers.CompareHashAndPassword(u.Password, "secret1"))

	require.Len(t, queue.Jobs, 1)
	assert.Equal(t, mailtpl.Welcome, queue.Jobs[0].Template)
	assert.Equal(t, "jane@example.com", queue.Jobs[0].To)

	_, err = svc.Register(ctx, application.RegisterInput{Username: "again", Email: "jane@example.com", Password: "secret1"})
	assert.ErrorIs(t, err, application.ErrEmailTaken)
}

func TestAuthService_RegisterSurvivesMailFailure(t *testing.T) {
	store := testutil.NewStore()
	queue := &testutil.MailQueue{Err: testutil.ErrBoom}
	_, err := newAuth(store, queue).Register(context.Background(),
		application.RegisterInput{Username: "jane", Email: "jane@example.com", Password: "secret1"})
	assert.NoError(t, err)
}

func TestAuthService_RegisterDropsAuthorOptions(t *testing.T) {
	store := testutil.NewStore()
	cache := testutil.NewCache()
	cache.Data["options:authors"] = []entity.User{}
	svc := newAuth(store, nil)
	svc.Cache = cache

	_, err := svc.Register(context.Background(),
		application.RegisterInput{Username: "jane", Email: "jane@example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.NotContains(t, cache.Data, "options:authors")
}

func TestAuthService_Authenticate(t *testing.T) {
	store := testutil.NewStore()
	u := testutil.SeedUser(t, store, "writer", "w@example.com", entity.RoleAuthor, "secret1")
	svc := newAuth(store, nil)
	ctx := context.Background()

	token, _, err := svc.JWT.GenerateAccessToken(u.ID)
	require.NoError(t, err)
	id, err := svc.Authenticate(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, entity.Identity{ID: u.ID, Username: "writer", Role: entity.RoleAuthor}, id)

	_, err = svc.Authenticate(ctx, "garbage")
	assert.ErrorIs(t, err, application.ErrInvalidToken)

	expired := &helpers.JWTManager{AccessSecret: []byte("secret"), AccessTTL: -time.Minute}
	old, _, err := expired.GenerateAccessToken(u.ID)
	require.NoError(t, err)
	_, err = svc.Authenticate(ctx, old)
	assert.ErrorIs(t, err, application.ErrTokenExpired)

	require.NoError(t, store.Users().Delete(ctx, u.ID))
	_, err = svc.Authenticate(ctx, token)
	assert.ErrorIs(t, err, application.ErrInvalidToken)
}
