package testutil

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-blog-cms/internal/application"
	"github.com/oksasatya/go-blog-cms/internal/domain/entity"
)

func TestIndexer_SearchOrdersNewestFirst(t *testing.T) {
	idx := NewIndexer()
	ctx := context.Background()
	for _, id := range []int64{3, 9, 1, 7} {
		require.NoError(t, idx.Index(ctx, &entity.Article{ID: id, Title: "go notes", AuthorID: id % 2}))
	}
	require.NoError(t, idx.Index(ctx, &entity.Article{ID: 4, Title: "rust"}))

	ids, total, err := idx.Search(ctx, application.SearchQuery{Text: "GO", Page: application.PageQuery{Page: 1, PerPage: 3}})
	require.NoError(t, err)
	assert.EqualValues(t, 4, total)
	assert.Equal(t, []int64{9, 7, 3}, ids)

	ids, _, err = idx.Search(ctx, application.SearchQuery{Text: "go", Page: application.PageQuery{Page: 2, PerPage: 3}})
	require.NoError(t, err)
	assert.Equal(t, []int64{1}, ids)
}
