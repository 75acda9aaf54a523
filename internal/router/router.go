package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/go-blog-cms/internal/interface/http"
	"github.com/oksasatya/go-blog-cms/internal/interface/middleware"
	"github.com/oksasatya/go-blog-cms/internal/router/modules"
	"github.com/oksasatya/go-blog-cms/pkg/response"
)

type Options struct {
	CORSOrigins []string
	// HTTPLog enables the Gin access log
	HTTPLog bool
}

func corsConfig(origins []string) cors.Config {
	c := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.HeaderRequestID},
		ExposeHeaders: []string{"Content-Length", middleware.HeaderRequestID},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 {
		c.AllowAllOrigins = true
		return c
	}
	c.AllowOrigins = origins
	c.AllowCredentials = true
	return c
}

// New builds the engine with global middleware and every module
func New(d Deps, opts Options) *gin.Engine {
	r := gin.New()
	r.Use(middleware.Recovery(d.Logger))
	r.Use(middleware.RequestID(), middleware.RealIP())
	r.Use(cors.New(corsConfig(opts.CORSOrigins)))
	if opts.HTTPLog {
		r.Use(gin.Logger())
	}
	r.NoRoute(func(c *gin.Context) {
		response.NotFound(c, "Endpoint not found!")
	})

	reg := NewRegistry(r)
	InitModules(reg, d)
	reg.RegisterAll()
	return r
}

// InitModules registers every feature module with the registry.
// Protected modules share one guard chain: auth first, then the limiters.
func InitModules(r *Registry, d Deps) {
	guard := []gin.HandlerFunc{
		middleware.Auth(d.Auth, d.Logger),
		middleware.RateLimit(d.Redis, 300, time.Minute, middleware.KeyByIP("api"), nil),
		middleware.RateLimit(d.Redis, 120, time.Minute, middleware.KeyByUserID("api"), nil),
	}

	r.Add(
		modules.NewAuthModule(handlers.NewAuthHandler(d.Auth, d.Logger), d.Users, d.Redis, guard),
		modules.NewArticleModule(handlers.NewArticleHandler(d.Articles, d.Logger), d.Tags, d.Users, guard),
		modules.NewTagModule(handlers.NewTagHandler(d.Tags, d.Logger), d.Tags, guard),
		modules.NewUserModule(handlers.NewUserHandler(d.Users, d.Logger), d.Users, guard),
	)
	if d.DebugMetrics {
		r.Add(modules.NewDebugModule(d.Redis))
	}
}
