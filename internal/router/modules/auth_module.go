package modules

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	handlers "github.com/oksasatya/go-blog-cms/internal/interface/http"
	"github.com/oksasatya/go-blog-cms/internal/interface/middleware"
	"github.com/oksasatya/go-blog-cms/internal/interface/request"
)

// AuthModule wires login, registration and the current identity
// Public: POST /api/login, POST /api/author/register
// Protected: GET /api/me
type AuthModule struct {
	Handler *handlers.AuthHandler
	Users   request.UserChecker
	RDB     *redis.Client
	Guard   []gin.HandlerFunc
}

func NewAuthModule(h *handlers.AuthHandler, users request.UserChecker, rdb *redis.Client, guard []gin.HandlerFunc) *AuthModule {
	return &AuthModule{Handler: h, Users: users, RDB: rdb, Guard: guard}
}

func (m *AuthModule) Register(rg *gin.RouterGroup) {
	// Public with IP-based rate limits
	loginLimiter := middleware.RateLimit(m.RDB, 10, time.Minute, middleware.KeyByIP("login"), nil)
	registerLimiter := middleware.RateLimit(m.RDB, 5, time.Minute, middleware.KeyByIP("register"), nil)

	rg.POST("/login", loginLimiter,
		middleware.Validate[request.LoginRequest](nil),
		m.Handler.Login)
	rg.POST("/author/register", registerLimiter,
		middleware.Validate(nil, request.EmailAvailable(m.Users, (*request.RegisterRequest).EmailField)),
		m.Handler.Register)

	auth := rg.Group("/", m.Guard...)
	auth.GET("/me", m.Handler.Me)
}
