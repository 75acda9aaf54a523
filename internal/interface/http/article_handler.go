package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-blog-cms/internal/application"
	"github.com/oksasatya/go-blog-cms/internal/interface/middleware"
	"github.com/oksasatya/go-blog-cms/internal/interface/request"
	"github.com/oksasatya/go-blog-cms/internal/interface/serializer"
	"github.com/oksasatya/go-blog-cms/pkg/response"
)

const msgArticleNotFound = "Article not found!"

type ArticleHandler struct {
	Svc    *application.ArticleService
	Logger logrus.FieldLogger
}

func NewArticleHandler(svc *application.ArticleService, logger logrus.FieldLogger) *ArticleHandler {
	return &ArticleHandler{Svc: svc, Logger: logger}
}

// fail answers 404 for missing articles and 500 for anything else
func (h *ArticleHandler) fail(c *gin.Context, op string, err error) {
	if errors.Is(err, application.ErrArticleNotFound) {
		response.NotFound(c, msgArticleNotFound)
		return
	}
	internalError(c, h.Logger, op, err)
}

func (h *ArticleHandler) Index(c *gin.Context) {
	page, err := h.Svc.List(c.Request.Context(), middleware.Identity(c), request.ArticleQuery(c))
	if err != nil {
		internalError(c, h.Logger, "list articles", err)
		return
	}
	response.Paginated(c, serializer.NewArticles(page.Items), page.Meta)
}

// Search GET /api/articles/search?q=
func (h *ArticleHandler) Search(c *gin.Context) {
	page, err := h.Svc.Search(c.Request.Context(), middleware.Identity(c), c.Query("q"), request.Page(c))
	if err != nil {
		internalError(c, h.Logger, "search articles", err)
		return
	}
	response.Paginated(c, serializer.NewArticles(page.Items), page.Meta)
}

func (h *ArticleHandler) Show(c *gin.Context) {
	id, ok := request.PathID(c)
	if !ok {
		response.NotFound(c, msgArticleNotFound)
		return
	}
	a, err := h.Svc.Get(c.Request.Context(), middleware.Identity(c), id)
	if err != nil {
		h.fail(c, "get article", err)
		return
	}
	response.Success(c, serializer.NewArticleDetail(a))
}

func (h *ArticleHandler) Store(c *gin.Context) {
	req := middleware.Payload[request.CreateArticleRequest](c)
	a, err := h.Svc.Create(c.Request.Context(), middleware.Identity(c), application.CreateArticleInput{
		Title:       req.Title,
		Content:     req.Content,
		TagIDs:      req.TagIDs(),
		PublishedAt: req.PublishedAt(),
		AuthorID:    req.AuthorID,
	})
	if err != nil {
		internalError(c, h.Logger, "create article", err)
		return
	}
	response.Created(c, serializer.NewArticleDetail(a), "Article created!")
}

func (h *ArticleHandler) Update(c *gin.Context) {
	id, ok := request.PathID(c)
	if !ok {
		response.NotFound(c, msgArticleNotFound)
		return
	}
	req := middleware.Payload[request.UpdateArticleRequest](c)
	a, err := h.Svc.Update(c.Request.Context(), middleware.Identity(c), id, application.UpdateArticleInput{
		Title:       req.Title,
		Content:     req.Content,
		TagIDs:      req.TagIDs(),
		PublishedAt: req.PublishedAt(),
		AuthorID:    req.AuthorID,
	})
	if err != nil {
		h.fail(c, "update article", err)
		return
	}
	response.Success(c, serializer.NewArticleDetail(a), "Article updated!")
}

func (h *ArticleHandler) Destroy(c *gin.Context) {
	id, ok := request.PathID(c)
	if !ok {
		response.NotFound(c, msgArticleNotFound)
		return
	}
	if err := h.Svc.Delete(c.Request.Context(), middleware.Identity(c), id); err != nil {
		h.fail(c, "delete article", err)
		return
	}
	response.Success[any](c, nil, "Article deleted!")
}

// TogglePublish PATCH /api/articles/:id/toggle-publish
func (h *ArticleHandler) TogglePublish(c *gin.Context) {
	id, ok := request.PathID(c)
	if !ok {
		response.NotFound(c, msgArticleNotFound)
		return
	}
	req := middleware.Payload[request.TogglePublishRequest](c)
	a, err := h.Svc.TogglePublish(c.Request.Context(), middleware.Identity(c), id, *req.IsPublished)
	if err != nil {
		h.fail(c, "toggle publish", err)
		return
	}
	msg := "Article unpublished!"
	if a.IsPublished() {
		msg = "Article published!"
	}
	response.Success(c, serializer.NewArticleDetail(a), msg)
}
