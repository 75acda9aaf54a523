package application

const (
	DefaultPage    = 1
	DefaultPerPage = 15
)

// PageQuery is the page/per_page pair accepted by every listing
type PageQuery struct {
	Page    int
	PerPage int
}

// Normalize applies defaults to missing or non-positive values; per_page has no upper bound
func (q PageQuery) Normalize() PageQuery {
	if q.Page < 1 {
		q.Page = DefaultPage
	}
	if q.PerPage < 1 {
		q.PerPage = DefaultPerPage
	}
	return q
}

func (q PageQuery) Limit() int  { return q.PerPage }
func (q PageQuery) Offset() int { return (q.Page - 1) * q.PerPage }

type Meta struct {
	CurrentPage int   `json:"current_page"`
	LastPage    int   `json:"last_page"`
	PerPage     int   `json:"per_page"`
	Total       int64 `json:"total"`
}

// NewMeta expects a normalized query
func NewMeta(q PageQuery, total int64) Meta {
	last := int((total + int64(q.PerPage) - 1) / int64(q.PerPage))
	return Meta{
		CurrentPage: q.Page,
		LastPage:    last,
		PerPage:     q.PerPage,
		Total:       total,
	}
}

type Page[T any] struct {
	Items []T
	Meta  Meta
}
