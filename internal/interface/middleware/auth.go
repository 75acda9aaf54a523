package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-blog-cms/internal/application"
	"github.com/oksasatya/go-blog-cms/internal/domain/entity"
	"github.com/oksasatya/go-blog-cms/pkg/helpers"
	"github.com/oksasatya/go-blog-cms/pkg/response"
)

const (
	CtxIdentityKey = "identity"
	CtxUserIDKey   = "userID"
)

type Authenticator interface {
	Authenticate(ctx context.Context, token string) (entity.Identity, error)
}

func bearerToken(c *gin.Context) string {
	h := strings.TrimSpace(c.GetHeader("Authorization"))
	if len(h) < 7 || !strings.EqualFold(h[:7], "bearer ") {
		return ""
	}
	return strings.TrimSpace(h[7:])
}

// Auth resolves the bearer token to the stored user and attaches its identity.
// It sets identity and userID in the Gin context on success.
func Auth(auth Authenticator, logger logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			response.Unauthorized(c, "Access denied. No token provided.")
			return
		}
		id, err := auth.Authenticate(c.Request.Context(), token)
		switch {
		case err == nil:
		case errors.Is(err, application.ErrTokenExpired):
			response.Unauthorized(c, "Token expired!")
			return
		case errors.Is(err, application.ErrInvalidToken):
			response.Unauthorized(c, "Invalid token!")
			return
		default:
			helpers.LogError(logger, "authenticate failed", err, logrus.Fields{"request_id": c.GetString(CtxRequestIDKey)})
			response.InternalError(c, err)
			return
		}

		c.Set(CtxIdentityKey, id)
		c.Set(CtxUserIDKey, id.ID)
		c.Next()
	}
}

// RequireAdmin must run after Auth
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !Identity(c).IsAdmin() {
			response.Forbidden(c, "Access denied. Admin only!")
			return
		}
		c.Next()
	}
}

// Identity returns the authenticated caller, or the zero identity on public routes
func Identity(c *gin.Context) entity.Identity {
	if v, ok := c.Get(CtxIdentityKey); ok {
		if id, ok := v.(entity.Identity); ok {
			return id
		}
	}
	return entity.Identity{}
}
