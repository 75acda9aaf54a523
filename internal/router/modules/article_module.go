package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/go-blog-cms/internal/interface/http"
	"github.com/oksasatya/go-blog-cms/internal/interface/middleware"
	"github.com/oksasatya/go-blog-cms/internal/interface/request"
)

// ArticleModule serves /api/articles; every route requires a token
type ArticleModule struct {
	Handler *handlers.ArticleHandler
	Tags    request.TagChecker
	Users   request.UserChecker
	Guard   []gin.HandlerFunc
}

func NewArticleModule(h *handlers.ArticleHandler, tags request.TagChecker, users request.UserChecker, guard []gin.HandlerFunc) *ArticleModule {
	return &ArticleModule{Handler: h, Tags: tags, Users: users, Guard: guard}
}

func (m *ArticleModule) Register(rg *gin.RouterGroup) {
	create := middleware.Validate(request.ArticleMessages,
		request.TagsExist(m.Tags, (*request.CreateArticleRequest).TagIDs),
		request.AuthorAssignable(m.Users, true, (*request.CreateArticleRequest).Author),
	)
	update := middleware.Validate(request.ArticleMessages,
		request.TagsExist(m.Tags, (*request.UpdateArticleRequest).TagIDs),
		request.AuthorAssignable(m.Users, false, (*request.UpdateArticleRequest).Author),
	)
	toggle := middleware.Validate[request.TogglePublishRequest](nil)

	g := rg.Group("/articles", m.Guard...)
	{
		g.GET("", m.Handler.Index)
		g.GET("/search", m.Handler.Search)
		g.POST("", create, m.Handler.Store)
		g.GET("/:id", m.Handler.Show)
		g.PUT("/:id", update, m.Handler.Update)
		g.DELETE("/:id", m.Handler.Destroy)
		g.PATCH("/:id/toggle-publish", toggle, m.Handler.TogglePublish)
	}
}
