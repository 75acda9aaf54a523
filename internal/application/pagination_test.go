package application

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPageQuery_Normalize(t *testing.T) {
	assert.Equal(t, PageQuery{Page: 1, PerPage: 15}, PageQuery{}.Normalize())
	assert.Equal(t, PageQuery{Page: 1, PerPage: 15}, PageQuery{Page: -3, PerPage: 0}.Normalize())
	assert.Equal(t, PageQuery{Page: 2, PerPage: 1000}, PageQuery{Page: 2, PerPage: 1000}.Normalize())

	q := PageQuery{Page: 3, PerPage: 10}.Normalize()
	assert.Equal(t, 10, q.Limit())
	assert.Equal(t, 20, q.Offset())
}

func TestNewMeta_LastPageIsCeil(t *testing.T) {
	m := NewMeta(PageQuery{Page: 1, PerPage: 2}, 5)
	assert.Equal(t, Meta{CurrentPage: 1, LastPage: 3, PerPage: 2, Total: 5}, m)

	assert.Equal(t, 0, NewMeta(PageQuery{Page: 1, PerPage: 15}, 0).LastPage)
	assert.Equal(t, 1, NewMeta(PageQuery{Page: 1, PerPage: 15}, 15).LastPage)
	assert.Equal(t, 2, NewMeta(PageQuery{Page: 1, PerPage: 15}, 16).LastPage)
}
