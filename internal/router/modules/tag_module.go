package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/go-blog-cms/internal/interface/http"
	"github.com/oksasatya/go-blog-cms/internal/interface/middleware"
	"github.com/oksasatya/go-blog-cms/internal/interface/request"
)

type TagModule struct {
	Handler *handlers.TagHandler
	Tags    request.TagChecker
	Guard   []gin.HandlerFunc
}

func NewTagModule(h *handlers.TagHandler, tags request.TagChecker, guard []gin.HandlerFunc) *TagModule {
	return &TagModule{Handler: h, Tags: tags, Guard: guard}
}

func (m *TagModule) Register(rg *gin.RouterGroup) {
	create := middleware.Validate(nil, request.UniqueTagTitle(m.Tags, (*request.CreateTagRequest).TitleField))
	update := middleware.Validate(nil, request.UniqueTagTitle(m.Tags, (*request.UpdateTagRequest).TitleField))

	auth := rg.Group("/", m.Guard...)
	auth.GET("/tag-select-options", m.Handler.SelectOptions)

	g := auth.Group("/tags")
	{
		g.GET("", m.Handler.Index)
		g.POST("", create, m.Handler.Store)
		g.GET("/:id", m.Handler.Show)
		g.PUT("/:id", update, m.Handler.Update)
		g.DELETE("/:id", m.Handler.Destroy)
	}
}
