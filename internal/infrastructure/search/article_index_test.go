package search

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-blog-cms/internal/application"
	"github.com/oksasatya/go-blog-cms/internal/domain/entity"
)

func TestBuildQuery(t *testing.T) {
	author := int64(7)
	q := buildQuery(application.SearchQuery{
		Text:     "gin",
		AuthorID: &author,
		Page:     application.PageQuery{Page: 3, PerPage: 10},
	})

	assert.Equal(t, 20, q["from"])
	assert.Equal(t, 10, q["size"])

	b, err := json.Marshal(q)
	require.NoError(t, err)
	body := string(b)
	assert.Contains(t, body, `"fields":["title^2","content"]`)
	assert.Contains(t, body, `"term":{"author_id":7}`)
}

func TestBuildQuery_NoAuthorDefaultsPage(t *testing.T) {
	q := buildQuery(application.SearchQuery{Text: "gin"})

	assert.Equal(t, 0, q["from"])
	assert.Equal(t, application.DefaultPerPage, q["size"])
	boolQuery := q["query"].(map[string]any)["bool"].(map[string]any)
	assert.NotContains(t, boolQuery, "filter")
}

type esCall struct {
	method string
	path   string
	body   string
}

func newTestIndex(t *testing.T, status int, reply string) (*ArticleIndex, *[]esCall) {
	t.Helper()
	calls := &[]esCall{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		*calls = append(*calls, esCall{method: r.Method, path: r.URL.Path, body: string(b)})
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(reply))
	}))
	t.Cleanup(srv.Close)

	es, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{srv.URL}})
	require.NoError(t, err)
	return NewArticleIndex(es, "articles"), calls
}

func TestArticleIndex_Search(t *testing.T) {
	idx, calls := newTestIndex(t, http.StatusOK,
		`{"hits":{"total":{"value":12},"hits":[{"_id":"9"},{"_id":"4"}]}}`)

	ids, total, err := idx.Search(context.Background(), application.SearchQuery{Text: "go"})
	require.NoError(t, err)
	assert.Equal(t, []int64{9, 4}, ids)
	assert.EqualValues(t, 12, total)

	require.Len(t, *calls, 1)
	assert.Equal(t, "/articles/_search", (*calls)[0].path)
	assert.Contains(t, (*calls)[0].body, `"multi_match"`)
}

func TestArticleIndex_SearchBadID(t *testing.T) {
	idx, _ := newTestIndex(t, http.StatusOK, `{"hits":{"total":{"value":1},"hits":[{"_id":"abc"}]}}`)

	_, _, err := idx.Search(context.Background(), application.SearchQuery{Text: "go"})
	assert.Error(t, err)
}

func TestArticleIndex_SearchErrorStatus(t *testing.T) {
	idx, _ := newTestIndex(t, http.StatusInternalServerError, `{"error":"boom"}`)

	_, _, err := idx.Search(context.Background(), application.SearchQuery{Text: "go"})
	assert.Error(t, err)
}

func TestArticleIndex_IndexDocument(t *testing.T) {
	idx, calls := newTestIndex(t, http.StatusCreated, `{"result":"created"}`)
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	a := &entity.Article{
		ID: 5, Title: "Hello", Content: "world", AuthorID: 2,
		PublishedAt: &now, CreatedAt: now, UpdatedAt: now,
		Author: &entity.User{ID: 2, Username: "alice"},
		Tags:   []entity.Tag{{ID: 1, Title: "go"}},
	}

	require.NoError(t, idx.Index(context.Background(), a))
	require.Len(t, *calls, 1)
	c := (*calls)[0]
	assert.Equal(t, http.MethodPut, c.method)
	assert.True(t, strings.HasSuffix(c.path, "/_doc/5"))
	assert.Contains(t, c.body, `"tags":["go"]`)
	assert.Contains(t, c.body, `"published":true`)
	assert.Contains(t, c.body, `"author":"alice"`)
}

func TestArticleIndex_DeleteMissingIsNotAnError(t *testing.T) {
	idx, calls := newTestIndex(t, http.StatusNotFound, `{"result":"not_found"}`)

	require.NoError(t, idx.Delete(context.Background(), 5))
	require.Len(t, *calls, 1)
	assert.Equal(t, http.MethodDelete, (*calls)[0].method)
}
