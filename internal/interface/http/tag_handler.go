package handlers

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-blog-cms/internal/application"
	"github.com/oksasatya/go-blog-cms/internal/interface/middleware"
	"github.com/oksasatya/go-blog-cms/internal/interface/request"
	"github.com/oksasatya/go-blog-cms/internal/interface/serializer"
	"github.com/oksasatya/go-blog-cms/pkg/response"
	"github.com/oksasatya/go-blog-cms/pkg/validation"
)

const msgTagNotFound = "Tag not found!"

type TagHandler struct {
	Svc    *application.TagService
	Logger logrus.FieldLogger
}

func NewTagHandler(svc *application.TagService, logger logrus.FieldLogger) *TagHandler {
	return &TagHandler{Svc: svc, Logger: logger}
}

func (h *TagHandler) fail(c *gin.Context, op string, err error) {
	switch {
	case errors.Is(err, application.ErrTagNotFound):
		response.NotFound(c, msgTagNotFound)
	case errors.Is(err, application.ErrTagTitleTaken):
		// concurrent create hit the unique index on lower(title)
		response.Unprocessable(c, "Validation failed", validation.Errors{"title": "Tag already exists"})
	case errors.Is(err, application.ErrTagInUse):
		response.BadRequest(c, "Cannot delete tag with associated articles")
	default:
		internalError(c, h.Logger, op, err)
	}
}

func (h *TagHandler) Index(c *gin.Context) {
	page, err := h.Svc.List(c.Request.Context(), application.TagQuery{
		PageQuery: request.Page(c),
		Search:    strings.TrimSpace(c.Query("search")),
	})
	if err != nil {
		internalError(c, h.Logger, "list tags", err)
		return
	}
	response.Paginated(c, serializer.NewTags(page.Items), page.Meta)
}

func (h *TagHandler) Show(c *gin.Context) {
	id, ok := request.PathID(c)
	if !ok {
		response.NotFound(c, msgTagNotFound)
		return
	}
	t, err := h.Svc.Get(c.Request.Context(), middleware.Identity(c), id)
	if err != nil {
		h.fail(c, "get tag", err)
		return
	}
	response.Success(c, serializer.NewTagDetail(t))
}

func (h *TagHandler) Store(c *gin.Context) {
	req := middleware.Payload[request.CreateTagRequest](c)
	t, err := h.Svc.Create(c.Request.Context(), req.Title)
	if err != nil {
		h.fail(c, "create tag", err)
		return
	}
	response.Created(c, serializer.NewTag(t))
}

func (h *TagHandler) Update(c *gin.Context) {
	id, ok := request.PathID(c)
	if !ok {
		response.NotFound(c, msgTagNotFound)
		return
	}
	req := middleware.Payload[request.UpdateTagRequest](c)
	t, err := h.Svc.Update(c.Request.Context(), id, req.Title)
	if err != nil {
		h.fail(c, "update tag", err)
		return
	}
	response.Success(c, serializer.NewTag(t))
}

func (h *TagHandler) Destroy(c *gin.Context) {
	id, ok := request.PathID(c)
	if !ok {
		response.NotFound(c, msgTagNotFound)
		return
	}
	if err := h.Svc.Delete(c.Request.Context(), id); err != nil {
		h.fail(c, "delete tag", err)
		return
	}
	response.Success[any](c, nil, "Tag deleted successfully")
}

// SelectOptions GET /api/tag-select-options
func (h *TagHandler) SelectOptions(c *gin.Context) {
	tags, err := h.Svc.Options(c.Request.Context())
	if err != nil {
		internalError(c, h.Logger, "tag options", err)
		return
	}
	response.Success(c, serializer.NewTagOptions(tags))
}
