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

const msgUserNotFound = "User not found!"

type UserHandler struct {
	Svc    *application.UserService
	Logger logrus.FieldLogger
}

func NewUserHandler(svc *application.UserService, logger logrus.FieldLogger) *UserHandler {
	return &UserHandler{Svc: svc, Logger: logger}
}

func (h *UserHandler) fail(c *gin.Context, op string, err error) {
	switch {
	case errors.Is(err, application.ErrUserNotFound):
		response.NotFound(c, msgUserNotFound)
	case errors.Is(err, application.ErrEmailTaken):
		response.Unprocessable(c, "Validation failed", validation.Errors{"email": "Email is already taken"})
	default:
		internalError(c, h.Logger, op, err)
	}
}

func (h *UserHandler) Index(c *gin.Context) {
	page, err := h.Svc.List(c.Request.Context(), application.UserQuery{
		PageQuery: request.Page(c),
		Search:    strings.TrimSpace(c.Query("search")),
	})
	if err != nil {
		internalError(c, h.Logger, "list users", err)
		return
	}
	response.Paginated(c, serializer.NewUsers(page.Items), page.Meta)
}

func (h *UserHandler) Show(c *gin.Context) {
	id, ok := request.PathID(c)
	if !ok {
		response.NotFound(c, msgUserNotFound)
		return
	}
	u, err := h.Svc.Get(c.Request.Context(), middleware.Identity(c), id)
	if err != nil {
		h.fail(c, "get user", err)
		return
	}
	response.Success(c, serializer.NewUserDetail(u))
}

func (h *UserHandler) Store(c *gin.Context) {
	req := middleware.Payload[request.CreateUserRequest](c)
	u, err := h.Svc.Create(c.Request.Context(), application.CreateUserInput{
		Username: strings.TrimSpace(req.Username),
		Email:    req.Email,
		Password: req.Password,
		Role:     req.RoleValue(),
	})
	if err != nil {
		h.fail(c, "create user", err)
		return
	}
	response.Created(c, serializer.NewUser(u), "User created!")
}

func (h *UserHandler) Update(c *gin.Context) {
	id, ok := request.PathID(c)
	if !ok {
		response.NotFound(c, msgUserNotFound)
		return
	}
	req := middleware.Payload[request.UpdateUserRequest](c)
	u, err := h.Svc.Update(c.Request.Context(), id, application.UpdateUserInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.RoleValue(),
	})
	if err != nil {
		h.fail(c, "update user", err)
		return
	}
	response.Success(c, serializer.NewUser(u), "User updated!")
}

func (h *UserHandler) Destroy(c *gin.Context) {
	id, ok := request.PathID(c)
	if !ok {
		response.NotFound(c, msgUserNotFound)
		return
	}
	if err := h.Svc.Delete(c.Request.Context(), id); err != nil {
		h.fail(c, "delete user", err)
		return
	}
	response.Success[any](c, nil, "User deleted!")
}

// AuthorSelectOptions GET /api/author-select-options
func (h *UserHandler) AuthorSelectOptions(c *gin.Context) {
	users, err := h.Svc.AuthorOptions(c.Request.Context())
	if err != nil {
		internalError(c, h.Logger, "author options", err)
		return
	}
	response.Success(c, serializer.NewAuthorOptions(users))
}
