package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-blog-cms/internal/interface/middleware"
	"github.com/oksasatya/go-blog-cms/pkg/helpers"
	"github.com/oksasatya/go-blog-cms/pkg/response"
)

// internalError logs err with the request id before answering 500
func internalError(c *gin.Context, logger logrus.FieldLogger, op string, err error) {
	helpers.LogError(logger, op+" failed", err, logrus.Fields{
		"request_id": c.GetString(middleware.CtxRequestIDKey),
		"method":     c.Request.Method,
		"path":       c.FullPath(),
	})
	response.InternalError(c, err)
}
