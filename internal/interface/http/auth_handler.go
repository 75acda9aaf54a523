package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-blog-cms/internal/application"
	"github.com/oksasatya/go-blog-cms/internal/interface/middleware"
	"github.com/oksasatya/go-blog-cms/internal/interface/request"
	"github.com/oksasatya/go-blog-cms/pkg/response"
	"github.com/oksasatya/go-blog-cms/pkg/validation"
)

type AuthHandler struct {
	Svc    *application.AuthService
	Logger logrus.FieldLogger
}

func NewAuthHandler(svc *application.AuthService, logger logrus.FieldLogger) *AuthHandler {
	return &AuthHandler{Svc: svc, Logger: logger}
}

type tokenResponse struct {
	Token string `json:"token"`
}

// Login POST /api/login
func (h *AuthHandler) Login(c *gin.Context) {
	req := middleware.Payload[request.LoginRequest](c)
	token, err := h.Svc.Login(c.Request.Context(), req.Email, req.Password)
	if errors.Is(err, application.ErrInvalidCredentials) {
		response.Unauthorized(c, "Invalid credentials!")
		return
	}
	if err != nil {
		internalError(c, h.Logger, "login", err)
		return
	}
	response.Success(c, tokenResponse{Token: token})
}

// Register POST /api/author/register
func (h *AuthHandler) Register(c *gin.Context) {
	req := middleware.Payload[request.RegisterRequest](c)
	token, err := h.Svc.Register(c.Request.Context(), application.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if errors.Is(err, application.ErrEmailTaken) {
		response.Unprocessable(c, "Validation failed", validation.Errors{"email": "Email is already taken"})
		return
	}
	if err != nil {
		internalError(c, h.Logger, "register", err)
		return
	}
	response.Success(c, tokenResponse{Token: token})
}

// Me GET /api/me
func (h *AuthHandler) Me(c *gin.Context) {
	response.Success(c, middleware.Identity(c))
}
