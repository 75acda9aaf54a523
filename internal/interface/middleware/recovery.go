package middleware

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-blog-cms/pkg/response"
)

// Recovery turns a panic into the 500 envelope
func Recovery(logger logrus.FieldLogger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, rec any) {
		err := fmt.Errorf("panic: %v", rec)
		if logger != nil {
			logger.WithError(err).WithFields(logrus.Fields{
				"request_id": c.GetString(CtxRequestIDKey),
				"path":       c.Request.URL.Path,
			}).Error("recovered from panic")
		}
		response.InternalError(c, err)
	})
}
