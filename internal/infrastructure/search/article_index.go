package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/oksasatya/go-blog-cms/internal/application"
	"github.com/oksasatya/go-blog-cms/internal/domain/entity"
)

const requestTimeout = 3 * time.Second

// ArticleIndex stores articles in an Elasticsearch index for full-text search
type ArticleIndex struct {
	ES        *elasticsearch.Client
	IndexName string
}

func NewArticleIndex(es *elasticsearch.Client, index string) *ArticleIndex {
	return &ArticleIndex{ES: es, IndexName: index}
}

var _ application.ArticleIndexer = (*ArticleIndex)(nil)

type articleDoc struct {
	ID          int64    `json:"id"`
	Title       string   `json:"title"`
	Content     string   `json:"content"`
	AuthorID    int64    `json:"author_id"`
	Author      string   `json:"author,omitempty"`
	Tags        []string `json:"tags"`
	Published   bool     `json:"published"`
	PublishedAt string   `json:"published_at,omitempty"`
	CreatedAt   string   `json:"created_at"`
	UpdatedAt   string   `json:"updated_at"`
}

func toDoc(a *entity.Article) articleDoc {
	doc := articleDoc{
		ID:        a.ID,
		Title:     a.Title,
		Content:   a.Content,
		AuthorID:  a.AuthorID,
		Tags:      make([]string, 0, len(a.Tags)),
		Published: a.IsPublished(),
		CreatedAt: a.CreatedAt.Format(time.RFC3339Nano),
		UpdatedAt: a.UpdatedAt.Format(time.RFC3339Nano),
	}
	if a.Author != nil {
		doc.Author = a.Author.Username
	}
	if a.PublishedAt != nil {
		doc.PublishedAt = a.PublishedAt.Format(time.RFC3339Nano)
	}
	for _, t := range a.Tags {
		doc.Tags = append(doc.Tags, t.Title)
	}
	return doc
}

func (x *ArticleIndex) Index(ctx context.Context, a *entity.Article) error {
	b, err := json.Marshal(toDoc(a))
	if err != nil {
		return err
	}
	req := esapi.IndexRequest{
		Index:      x.IndexName,
		DocumentID: strconv.FormatInt(a.ID, 10),
		Body:       bytes.NewReader(b),
		Refresh:    "false",
	}
	c, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()
	res, err := req.Do(c, x.ES)
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return fmt.Errorf("es index article %d: %s", a.ID, res.Status())
	}
	return nil
}

func (x *ArticleIndex) Delete(ctx context.Context, id int64) error {
	req := esapi.DeleteRequest{Index: x.IndexName, DocumentID: strconv.FormatInt(id, 10)}
	c, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()
	res, err := req.Do(c, x.ES)
	if err != nil {
		return err
	}
	defer func() { _ = res.Body.Close() }()
	// already gone
	if res.StatusCode == http.StatusNotFound {
		return nil
	}
	if res.IsError() {
		return fmt.Errorf("es delete article %d: %s", id, res.Status())
	}
	return nil
}

// Search runs a multi_match on title and content, ranked by relevance
func (x *ArticleIndex) Search(ctx context.Context, q application.SearchQuery) ([]int64, int64, error) {
	b, err := json.Marshal(buildQuery(q))
	if err != nil {
		return nil, 0, err
	}
	c, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	res, err := x.ES.Search(
		x.ES.Search.WithContext(c),
		x.ES.Search.WithIndex(x.IndexName),
		x.ES.Search.WithBody(bytes.NewReader(b)),
	)
	if err != nil {
		return nil, 0, err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return nil, 0, fmt.Errorf("es search: %s", res.Status())
	}

	var parsed searchResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, 0, err
	}
	return parsed.ids()
}

func buildQuery(q application.SearchQuery) map[string]any {
	page := q.Page.Normalize()
	boolQuery := map[string]any{
		"must": []any{
			map[string]any{
				"multi_match": map[string]any{
					"query":     q.Text,
					"fields":    []string{"title^2", "content"},
					"fuzziness": "AUTO",
				},
			},
		},
	}
	if q.AuthorID != nil {
		boolQuery["filter"] = []any{
			map[string]any{"term": map[string]any{"author_id": *q.AuthorID}},
		}
	}
	return map[string]any{
		"query":            map[string]any{"bool": boolQuery},
		"from":             page.Offset(),
		"size":             page.Limit(),
		"track_total_hits": true,
		"_source":          false,
	}
}

type searchResponse struct {
	Hits struct {
		Total struct {
			Value int64 `json:"value"`
		} `json:"total"`
		Hits []struct {
			ID string `json:"_id"`
		} `json:"hits"`
	} `json:"hits"`
}

func (r searchResponse) ids() ([]int64, int64, error) {
	out := make([]int64, 0, len(r.Hits.Hits))
	for _, h := range r.Hits.Hits {
		id, err := strconv.ParseInt(h.ID, 10, 64)
		if err != nil {
			return nil, 0, fmt.Errorf("es hit id %q: %w", h.ID, err)
		}
		out = append(out, id)
	}
	return out, r.Hits.Total.Value, nil
}
