package router

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/oksasatya/go-blog-cms/internal/application"
	"github.com/oksasatya/go-blog-cms/internal/domain/entity"
	"github.com/oksasatya/go-blog-cms/internal/testutil"
	"github.com/oksasatya/go-blog-cms/pkg/helpers"
	"github.com/oksasatya/go-blog-cms/pkg/validation"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	validation.Init()
	os.Exit(m.Run())
}

type envelope struct {
	StatusCode int               `json:"status_code"`
	Message    string            `json:"message"`
	Data       json.RawMessage   `json:"data"`
	Meta       map[string]any  `json:"meta"`
}

type app struct {
	t      *testing.T
	store  *testutil.Store
	engine *gin.Engine
	admin  *entity.User
	alice  *entity.User
	bob    *entity.User
}

func newApp(t *testing.T) *app {
	store := testutil.NewStore()
	jwt := helpers.NewJWTManager("test-secret", time.Hour)
	d := Deps{
		Auth:     application.NewAuthService(store.Users(), jwt, bcrypt.MinCost, nil, nil),
		Articles: application.NewArticleService(store.Articles(), nil, nil),
		Tags:     application.NewTagService(store.Tags(), store.Articles(), nil, nil),
		Users:    application.NewUserService(store.Users(), store.Articles(), bcrypt.MinCost, nil, nil, nil),
	}
	return &app{
		t:      t,
		store:  store,
		engine: New(d, Options{}),
		admin:  testutil.SeedUser(t, store, "demo", "demo@gmail.com", entity.RoleAdmin, "12345678"),
		alice:  testutil.SeedUser(t, store, "alice", "alice@example.com", entity.RoleAuthor, "secret1"),
		bob:    testutil.SeedUser(t, store, "bob", "bob@example.com", entity.RoleAuthor, "secret2"),
	}
}

func (a *app) call(method, path, token string, body any) (int, envelope) {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)

	var env envelope
	require.NoError(a.t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	assert.Equal(a.t, w.Code, env.StatusCode)
	return w.Code, env
}

func (a *app) login(email, password string) string {
	a.t.Helper()
	code, env := a.call(http.MethodPost, "/api/login", "", gin.H{"email": email, "password": password})
	require.Equal(a.t, http.StatusOK, code, env.Message)
	var data struct {
		Token string `json:"token"`
	}
	require.NoError(a.t, json.Unmarshal(env.Data, &data))
	require.NotEmpty(a.t, data.Token)
	return data.Token
}

type articleBody struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	AuthorID    int64      `json:"author_id"`
	Status      string     `json:"status"`
	PublishedAt *time.Time `json:"published_at"`
	Tags        []struct {
		ID int64 `json:"id"`
	} `json:"tags"`
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(raw, &v), string(raw))
	return v
}

func TestLogin(t *testing.T) {
	a := newApp(t)

	for _, creds := range []gin.H{
		{"email": "demo@gmail.com", "password": "wrong-pass"},
		{"email": "nobody@gmail.com", "password": "12345678"},
	} {
		code, env := a.call(http.MethodPost, "/api/login", "", creds)
		assert.Equal(t, http.StatusUnauthorized, code)
		assert.Equal(t, "Invalid credentials!", env.Message)
		assert.Equal(t, "null", string(env.Data))
	}

	code, env := a.call(http.MethodPost, "/api/login", "", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Equal(t, "Validation failed", env.Message)
	assert.Contains(t, env.Meta, "email")
	assert.Contains(t, env.Meta, "password")

	token := a.login("demo@gmail.com", "12345678")
	code, env = a.call(http.MethodGet, "/api/me", token, nil)
	assert.Equal(t, http.StatusOK, code)
	me := decode[entity.Identity](t, env.Data)
	assert.Equal(t, a.admin.ID, me.ID)
	assert.Equal(t, entity.RoleAdmin, me.Role)
}

func TestRegister(t *testing.T) {
	a := newApp(t)

	code, env := a.call(http.MethodPost, "/api/author/register", "", gin.H{
		"username": "carol", "email": "ALICE@example.com", "password": "secret99",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Equal(t, "Email is already taken", env.Meta["email"])

	code, env = a.call(http.MethodPost, "/api/author/register", "", gin.H{
		"username": "carol", "email": "carol@example.com", "password": "secret99",
	})
	require.Equal(t, http.StatusOK, code)
	assert.NotEmpty(t, decode[map[string]string](t, env.Data)["token"])

	token := a.login("carol@example.com", "secret99")
	_, env = a.call(http.MethodGet, "/api/me", token, nil)
	assert.Equal(t, entity.RoleAuthor, decode[entity.Identity](t, env.Data).Role)
}

func TestProtectedRoutesNeedToken(t *testing.T) {
	a := newApp(t)

	for _, path := range []string{"/api/me", "/api/articles", "/api/tags", "/api/users", "/api/tag-select-options"} {
		code, env := a.call(http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, code, path)
		assert.Equal(t, "Access denied. No token provided.", env.Message, path)
	}

	code, env := a.call(http.MethodGet, "/api/me", "not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "Invalid token!", env.Message)
}

func TestNoRoute(t *testing.T) {
	code, env := newApp(t).call(http.MethodGet, "/api/unknown", "", nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "Endpoint not found!", env.Message)
}

func TestArticle_NonAdminAuthorIDIsOverridden(t *testing.T) {
	a := newApp(t)
	tag := testutil.SeedTag(t, a.store, "Go")
	token := a.login("alice@example.com", "secret1")

	code, env := a.call(http.MethodPost, "/api/articles", token, gin.H{
		"title": "  hello world", "content": "body", "tags": []int64{tag.ID}, "author_id": a.bob.ID,
	})
	require.Equal(t, http.StatusCreated, code, env.Meta)
	assert.Equal(t, "Article created!", env.Message)

	art := decode[articleBody](t, env.Data)
	assert.Equal(t, a.alice.ID, art.AuthorID)
	assert.Equal(t, "Hello world", art.Title)
	assert.Equal(t, "DRAFT", art.Status)
	require.Len(t, art.Tags, 1)
	assert.Equal(t, tag.ID, art.Tags[0].ID)
}

func TestArticle_AdminAssignsAuthor(t *testing.T) {
	a := newApp(t)
	tag := testutil.SeedTag(t, a.store, "Go")
	token := a.login("demo@gmail.com", "12345678")

	code, env := a.call(http.MethodPost, "/api/articles", token, gin.H{
		"title": "t", "content": "c", "tags": []int64{tag.ID},
	})
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Equal(t, "Author ID is required", env.Meta["author_id"])

	code, env = a.call(http.MethodPost, "/api/articles", token, gin.H{
		"title": "t", "content": "c", "tags": []int64{tag.ID}, "author_id": a.admin.ID,
	})
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Equal(t, "Invalid author ID", env.Meta["author_id"])

	code, env = a.call(http.MethodPost, "/api/articles", token, gin.H{
		"title": "t", "content": "c", "tags": []int64{tag.ID}, "author_id": a.bob.ID,
	})
	require.Equal(t, http.StatusCreated, code)
	assert.Equal(t, a.bob.ID, decode[articleBody](t, env.Data).AuthorID)
}

func TestArticle_ValidationCollectsAllFields(t *testing.T) {
	a := newApp(t)
	token := a.login("alice@example.com", "secret1")

	code, env := a.call(http.MethodPost, "/api/articles", token, gin.H{
		"title": "", "tags": []int64{999}, "publish_date": "someday",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Equal(t, "Title is required", env.Meta["title"])
	assert.Equal(t, "Content is required", env.Meta["content"])
	assert.Equal(t, "Some tags are invalid", env.Meta["tags"])
	assert.Equal(t, "Publish date must be a valid date", env.Meta["publish_date"])
	assert.Equal(t, "null", string(env.Data))

	_, env = a.call(http.MethodGet, "/api/articles", token, nil)
	assert.Empty(t, decode[[]any](t, env.Data))
}

func TestArticle_ListIsScopedForAuthors(t *testing.T) {
	a := newApp(t)
	mine := testutil.SeedArticle(t, a.store, a.alice.ID, "mine", true)
	theirs := testutil.SeedArticle(t, a.store, a.bob.ID, "theirs", false)
	token := a.login("alice@example.com", "secret1")

	code, env := a.call(http.MethodGet, fmt.Sprintf("/api/articles?author=%d", a.bob.ID), token, nil)
	require.Equal(t, http.StatusOK, code)
	items := decode[[]articleBody](t, env.Data)
	require.Len(t, items, 1)
	assert.Equal(t, mine.ID, items[0].ID)

	code, _ = a.call(http.MethodGet, fmt.Sprintf("/api/articles/%d", theirs.ID), token, nil)
	assert.Equal(t, http.StatusNotFound, code)
	code, _ = a.call(http.MethodDelete, fmt.Sprintf("/api/articles/%d", theirs.ID), token, nil)
	assert.Equal(t, http.StatusNotFound, code)

	admin := a.login("demo@gmail.com", "12345678")
	_, env = a.call(http.MethodGet, "/api/articles?status=DRAFT", admin, nil)
	items = decode[[]articleBody](t, env.Data)
	require.Len(t, items, 1)
	assert.Equal(t, theirs.ID, items[0].ID)
}

func TestArticle_TogglePublish(t *testing.T) {
	a := newApp(t)
	art := testutil.SeedArticle(t, a.store, a.alice.ID, "draft", false)
	token := a.login("alice@example.com", "secret1")
	path := fmt.Sprintf("/api/articles/%d/toggle-publish", art.ID)

	code, env := a.call(http.MethodPatch, path, token, gin.H{"is_published": true})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Article published!", env.Message)
	body := decode[articleBody](t, env.Data)
	assert.NotNil(t, body.PublishedAt)
	assert.Equal(t, "PUBLISHED", body.Status)

	_, env = a.call(http.MethodPatch, path, token, gin.H{"is_published": false})
	body = decode[articleBody](t, env.Data)
	assert.Nil(t, body.PublishedAt)
	assert.Equal(t, "DRAFT", body.Status)

	code, env = a.call(http.MethodPatch, path, token, gin.H{})
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Contains(t, env.Meta, "is_published")
}

func TestArticle_UpdateReplacesTags(t *testing.T) {
	a := newApp(t)
	goTag := testutil.SeedTag(t, a.store, "Go")
	dbTag := testutil.SeedTag(t, a.store, "DB")
	art := testutil.SeedArticle(t, a.store, a.alice.ID, "post", false, goTag.ID)
	token := a.login("alice@example.com", "secret1")
	path := fmt.Sprintf("/api/articles/%d", art.ID)

	code, env := a.call(http.MethodPut, path, token, gin.H{"content": "new body"})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Post", decode[articleBody](t, env.Data).Title)
	assert.Equal(t, []int64{goTag.ID}, a.store.ArticleTagIDs(art.ID))

	code, _ = a.call(http.MethodPut, path, token, gin.H{"tags": []int64{dbTag.ID}})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, []int64{dbTag.ID}, a.store.ArticleTagIDs(art.ID))

	code, env = a.call(http.MethodPut, path, token, gin.H{"tags": []int64{}})
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Equal(t, "Tags are required", env.Meta["tags"])

	code, env = a.call(http.MethodPut, "/api/articles/999", token, gin.H{"content": "x"})
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "Article not found!", env.Message)
}

func TestTag_DeleteReferencedFails(t *testing.T) {
	a := newApp(t)
	tag := testutil.SeedTag(t, a.store, "Go")
	testutil.SeedArticle(t, a.store, a.alice.ID, "post", false, tag.ID)
	token := a.login("alice@example.com", "secret1")
	path := fmt.Sprintf("/api/tags/%d", tag.ID)

	code, env := a.call(http.MethodDelete, path, token, nil)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Cannot delete tag with associated articles", env.Message)

	code, _ = a.call(http.MethodGet, path, token, nil)
	assert.Equal(t, http.StatusOK, code)
}

func TestTag_CRUD(t *testing.T) {
	a := newApp(t)
	token := a.login("alice@example.com", "secret1")

	code, env := a.call(http.MethodPost, "/api/tags", token, gin.H{"title": "Golang"})
	require.Equal(t, http.StatusCreated, code)
	id := decode[struct {
		ID int64 `json:"id"`
	}](t, env.Data).ID

	code, env = a.call(http.MethodPost, "/api/tags", token, gin.H{"title": "golang"})
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Equal(t, "Tag already exists", env.Meta["title"])

	// renaming to its own title is not a conflict
	code, _ = a.call(http.MethodPut, fmt.Sprintf("/api/tags/%d", id), token, gin.H{"title": "GOLANG"})
	assert.Equal(t, http.StatusOK, code)

	code, env = a.call(http.MethodDelete, fmt.Sprintf("/api/tags/%d", id), token, nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Tag deleted successfully", env.Message)

	code, env = a.call(http.MethodGet, fmt.Sprintf("/api/tags/%d", id), token, nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "Tag not found!", env.Message)
}

func TestTag_Pagination(t *testing.T) {
	a := newApp(t)
	for i := 1; i <= 5; i++ {
		testutil.SeedTag(t, a.store, fmt.Sprintf("tag-%d", i))
	}
	token := a.login("alice@example.com", "secret1")

	code, env := a.call(http.MethodGet, "/api/tags?per_page=2", token, nil)
	require.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 1, env.Meta["current_page"])
	assert.EqualValues(t, 3, env.Meta["last_page"])
	assert.EqualValues(t, 2, env.Meta["per_page"])
	assert.EqualValues(t, 5, env.Meta["total"])
	assert.Len(t, decode[[]any](t, env.Data), 2)

	_, env = a.call(http.MethodGet, "/api/tags?per_page=2&page=3", token, nil)
	assert.Len(t, decode[[]any](t, env.Data), 1)

	_, env = a.call(http.MethodGet, "/api/tag-select-options", token, nil)
	assert.Len(t, decode[[]any](t, env.Data), 5)
}

func TestUser_WritesAreAdminOnly(t *testing.T) {
	a := newApp(t)
	token := a.login("alice@example.com", "secret1")

	code, env := a.call(http.MethodPost, "/api/users", token, gin.H{
		"username": "x", "email": "x@example.com", "password": "secret1",
	})
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "Access denied. Admin only!", env.Message)

	code, env = a.call(http.MethodGet, "/api/users", token, nil)
	require.Equal(t, http.StatusOK, code)
	users := decode[[]map[string]any](t, env.Data)
	assert.Len(t, users, 2)
	for _, u := range users {
		assert.NotEqual(t, "ADMIN", u["role"])
		assert.NotContains(t, u, "password")
	}
}

func TestUser_UpdateWithoutPasswordKeepsHash(t *testing.T) {
	a := newApp(t)
	token := a.login("demo@gmail.com", "12345678")
	before := a.alice.Password

	code, env := a.call(http.MethodPut, fmt.Sprintf("/api/users/%d", a.alice.ID), token, gin.H{"username": "alice2"})
	require.Equal(t, http.StatusOK, code, env.Meta)
	assert.Equal(t, "User updated!", env.Message)

	stored, err := a.store.Users().GetByID(context.Background(), a.alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice2", stored.Username)
	assert.Equal(t, before, stored.Password)

	code, env = a.call(http.MethodPut, fmt.Sprintf("/api/users/%d", a.alice.ID), token, gin.H{"email": "bob@example.com"})
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Equal(t, "Email is already taken", env.Meta["email"])
}

func TestUser_CreateAndDeleteCascades(t *testing.T) {
	a := newApp(t)
	token := a.login("demo@gmail.com", "12345678")

	code, env := a.call(http.MethodPost, "/api/users", token, gin.H{
		"username": "dave", "email": "dave@example.com", "password": "secret1", "role": "EDITOR",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Equal(t, "Role must be ADMIN or AUTHOR", env.Meta["role"])

	code, env = a.call(http.MethodPost, "/api/users", token, gin.H{
		"username": "dave", "email": "dave@example.com", "password": "secret1",
	})
	require.Equal(t, http.StatusCreated, code)
	created := decode[map[string]any](t, env.Data)
	assert.Equal(t, "AUTHOR", created["role"])

	art := testutil.SeedArticle(t, a.store, a.bob.ID, "bye", false)
	code, _ = a.call(http.MethodDelete, fmt.Sprintf("/api/users/%d", a.bob.ID), token, nil)
	require.Equal(t, http.StatusOK, code)

	code, _ = a.call(http.MethodGet, fmt.Sprintf("/api/articles/%d", art.ID), token, nil)
	assert.Equal(t, http.StatusNotFound, code)
	code, env = a.call(http.MethodDelete, fmt.Sprintf("/api/users/%d", a.bob.ID), token, nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "User not found!", env.Message)

	_, env = a.call(http.MethodGet, "/api/author-select-options", token, nil)
	assert.Len(t, decode[[]any](t, env.Data), 2)
}

func TestDetailEndpointsDoNotLeakOtherAuthorsArticles(t *testing.T) {
	a := newApp(t)
	tag := testutil.SeedTag(t, a.store, "Go")
	mine := testutil.SeedArticle(t, a.store, a.alice.ID, "mine", true, tag.ID)
	testutil.SeedArticle(t, a.store, a.bob.ID, "bob secret draft", false, tag.ID)
	token := a.login("alice@example.com", "secret1")

	type detail struct {
		Articles []articleBody `json:"articles"`
	}

	code, env := a.call(http.MethodGet, fmt.Sprintf("/api/tags/%d", tag.ID), token, nil)
	require.Equal(t, http.StatusOK, code)
	got := decode[detail](t, env.Data)
	require.Len(t, got.Articles, 1)
	assert.Equal(t, mine.ID, got.Articles[0].ID)

	code, env = a.call(http.MethodGet, fmt.Sprintf("/api/users/%d", a.bob.ID), token, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Empty(t, decode[detail](t, env.Data).Articles)
	assert.NotContains(t, string(env.Data), "bob secret draft")

	admin := a.login("demo@gmail.com", "12345678")
	_, env = a.call(http.MethodGet, fmt.Sprintf("/api/tags/%d", tag.ID), admin, nil)
	assert.Len(t, decode[detail](t, env.Data).Articles, 2)
}
