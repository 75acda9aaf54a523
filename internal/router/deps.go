package router

import (
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-blog-cms/internal/application"
	"github.com/oksasatya/go-blog-cms/internal/container"
	pginfra "github.com/oksasatya/go-blog-cms/internal/infrastructure/postgres"
	"github.com/oksasatya/go-blog-cms/internal/infrastructure/search"
	"github.com/oksasatya/go-blog-cms/pkg/helpers"
	"github.com/oksasatya/go-blog-cms/pkg/mailer"
)

// Deps is everything the HTTP modules need
type Deps struct {
	Auth     *application.AuthService
	Articles *application.ArticleService
	Tags     *application.TagService
	Users    *application.UserService

	// Redis backs the rate limiters; nil disables them
	Redis        *redis.Client
	Logger       logrus.FieldLogger
	DebugMetrics bool
}

// BuildDeps wires repositories and services from the container singletons
func BuildDeps() Deps {
	cfg := container.GetConfig()
	logger := container.GetLogger()
	pool := container.GetPGPool()

	users := pginfra.NewUserRepository(pool)
	articles := pginfra.NewArticleRepository(pool)
	tags := pginfra.NewTagRepository(pool)

	var cache application.Cache
	rdb := container.GetRedis()
	if rdb != nil {
		cache = helpers.NewRedisCache(rdb, cfg.AppName)
	}

	emails := &application.EmailComposer{
		AppName:     cfg.AppName,
		CompanyName: cfg.CompanyName,
		LoginURL:    cfg.LoginURL,
		Logger:      logger,
	}
	if pub := container.GetRabbitPub(); pub != nil && cfg.MailSendEnabled {
		emails.Queue = mailer.NewQueue(pub)
	}

	var indexer application.ArticleIndexer
	if es := container.GetES(); es != nil && cfg.SearchEnabled {
		indexer = search.NewArticleIndex(es, cfg.ESArticlesIndex)
	}

	limited := rdb
	if !cfg.RateLimitEnabled {
		limited = nil
	}

	auth := application.NewAuthService(users, container.GetJWT(), cfg.BcryptCost, emails, logger)
	auth.Cache = cache

	tagSvc := application.NewTagService(tags, articles, cache, logger)
	tagSvc.Indexer = indexer
	userSvc := application.NewUserService(users, articles, cfg.BcryptCost, emails, cache, logger)
	userSvc.Indexer = indexer

	return Deps{
		Auth:         auth,
		Articles:     application.NewArticleService(articles, indexer, logger),
		Tags:         tagSvc,
		Users:        userSvc,
		Redis:        limited,
		Logger:       logger,
		DebugMetrics: cfg.DebugMetricsEnabled,
	}
}
