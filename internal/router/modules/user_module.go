package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/go-blog-cms/internal/interface/http"
	"github.com/oksasatya/go-blog-cms/internal/interface/middleware"
	"github.com/oksasatya/go-blog-cms/internal/interface/request"
)

// UserModule serves user management. Reads need a token, writes need ADMIN.
type UserModule struct {
	Handler *handlers.UserHandler
	Users   request.UserChecker
	Guard   []gin.HandlerFunc
}

func NewUserModule(h *handlers.UserHandler, users request.UserChecker, guard []gin.HandlerFunc) *UserModule {
	return &UserModule{Handler: h, Users: users, Guard: guard}
}

func (m *UserModule) Register(rg *gin.RouterGroup) {
	create := middleware.Validate(request.UserMessages,
		request.EmailAvailable(m.Users, (*request.CreateUserRequest).EmailField))
	update := middleware.Validate(request.UserMessages,
		request.EmailAvailable(m.Users, (*request.UpdateUserRequest).EmailField))

	auth := rg.Group("/", m.Guard...)
	auth.GET("/author-select-options", m.Handler.AuthorSelectOptions)

	g := auth.Group("/users")
	{
		g.GET("", m.Handler.Index)
		g.GET("/:id", m.Handler.Show)

		admin := g.Group("", middleware.RequireAdmin())
		admin.POST("", create, m.Handler.Store)
		admin.PUT("/:id", update, m.Handler.Update)
		admin.DELETE("/:id", m.Handler.Destroy)
	}
}
