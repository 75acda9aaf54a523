package request

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/go-blog-cms/internal/application"
)

// Page reads page and per_page; malformed values fall back to the defaults
func Page(c *gin.Context) application.PageQuery {
	return application.PageQuery{
		Page:    queryInt(c, "page"),
		PerPage: queryInt(c, "per_page"),
	}.Normalize()
}

func queryInt(c *gin.Context, key string) int {
	n, err := strconv.Atoi(strings.TrimSpace(c.Query(key)))
	if err != nil {
		return 0
	}
	return n
}

// OptionalID returns nil unless the query value is a positive integer
func OptionalID(c *gin.Context, key string) *int64 {
	n, err := strconv.ParseInt(strings.TrimSpace(c.Query(key)), 10, 64)
	if err != nil || n <= 0 {
		return nil
	}
	return &n
}

// PathID parses :id; ok is false for anything but a positive integer
func PathID(c *gin.Context) (int64, bool) {
	n, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

func ArticleQuery(c *gin.Context) application.ArticleQuery {
	return application.ArticleQuery{
		PageQuery: Page(c),
		Search:    strings.TrimSpace(c.Query("search")),
		Status:    c.Query("status"),
		TagID:     OptionalID(c, "tag"),
		AuthorID:  OptionalID(c, "author"),
	}
}
