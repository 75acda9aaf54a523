package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/oksasatya/go-blog-cms/internal/domain/repository"
)

func TestWhere_NumbersPlaceholdersInOrder(t *testing.T) {
	w := &where{}
	assert.Equal(t, "", w.String())

	w.add("a.author_id = ?", int64(7))
	w.add("(a.title ILIKE ? OR a.content ILIKE ?)", "%x%", "%x%")
	w.add("a.published_at IS NULL")

	assert.Equal(t, " WHERE a.author_id = $1 AND (a.title ILIKE $2 OR a.content ILIKE $3) AND a.published_at IS NULL", w.String())
	assert.Equal(t, []any{int64(7), "%x%", "%x%"}, w.args)

	assert.Equal(t, " LIMIT $4 OFFSET $5", w.paginate(15, 30))
	assert.Len(t, w.args, 5)
}

func TestWhere_PaginateFirstPageAndUnbounded(t *testing.T) {
	w := &where{}
	assert.Equal(t, " LIMIT $1", w.paginate(10, 0))

	w = &where{}
	assert.Equal(t, "", w.paginate(0, 20))
	assert.Empty(t, w.args)
}

func TestLikePattern_EscapesWildcards(t *testing.T) {
	assert.Equal(t, "%go%", likePattern("go"))
	assert.Equal(t, `%100\%%`, likePattern("100%"))
	assert.Equal(t, `%snake\_case%`, likePattern("snake_case"))
	assert.Equal(t, `%a\\b%`, likePattern(`a\b`))
}

func TestMapErr(t *testing.T) {
	assert.NoError(t, mapErr(nil))
	assert.ErrorIs(t, mapErr(pgx.ErrNoRows), repository.ErrNotFound)
	assert.ErrorIs(t, mapErr(fmt.Errorf("scan: %w", pgx.ErrNoRows)), repository.ErrNotFound)
	assert.ErrorIs(t, mapErr(&pgconn.PgError{Code: "23505"}), repository.ErrDuplicate)
	assert.ErrorIs(t, mapErr(&pgconn.PgError{Code: "23503"}), repository.ErrReferenced)

	other := errors.New("boom")
	assert.Equal(t, other, mapErr(other))
}
