package response

import (
	"net/http"
	"sync/atomic"

	"github.com/gin-gonic/gin"
)

// APIResponse is the envelope every endpoint answers with
type APIResponse[T any] struct {
	StatusCode int         `json:"status_code"`
	Message    string      `json:"message"`
	Data       T           `json:"data"`
	Meta       interface{} `json:"meta"`
}

const internalServerError = "Internal Server Error"

var production atomic.Bool

// SetProduction hides internal error details from clients when on
func SetProduction(on bool) { production.Store(on) }

func New[T any](status int, message string, data T, meta interface{}) APIResponse[T] {
	return APIResponse[T]{
		StatusCode: status,
		Message:    message,
		Data:       data,
		Meta:       meta,
	}
}

// JSON writes the envelope with the given status
func JSON[T any](c *gin.Context, status int, message string, data T, meta interface{}) {
	c.JSON(status, New(status, message, data, meta))
}

// Abort writes a data-less envelope and stops the handler chain
func Abort(c *gin.Context, status int, message string, meta interface{}) {
	c.AbortWithStatusJSON(status, New[any](status, message, nil, meta))
}

func orDefault(msg []string, def string) string {
	if len(msg) > 0 && msg[0] != "" {
		return msg[0]
	}
	return def
}

func Success[T any](c *gin.Context, data T, message ...string) {
	JSON(c, http.StatusOK, orDefault(message, "Success!"), data, nil)
}

func Created[T any](c *gin.Context, data T, message ...string) {
	JSON(c, http.StatusCreated, orDefault(message, "Created!"), data, nil)
}

func Paginated[T any](c *gin.Context, data T, meta interface{}, message ...string) {
	JSON(c, http.StatusOK, orDefault(message, "Fetched!"), data, meta)
}

func NotFound(c *gin.Context, message ...string) {
	Abort(c, http.StatusNotFound, orDefault(message, "Not Found!"), nil)
}

func BadRequest(c *gin.Context, message ...string) {
	Abort(c, http.StatusBadRequest, orDefault(message, "Bad Request!"), nil)
}

func Unauthorized(c *gin.Context, message ...string) {
	Abort(c, http.StatusUnauthorized, orDefault(message, "Unauthorized!"), nil)
}

func Forbidden(c *gin.Context, message ...string) {
	Abort(c, http.StatusForbidden, orDefault(message, "Forbidden!"), nil)
}

// Unprocessable carries the field error map in meta
func Unprocessable(c *gin.Context, message string, meta interface{}) {
	Abort(c, http.StatusUnprocessableEntity, orDefault([]string{message}, "Unprocessable Entity!"), meta)
}

func TooManyRequests(c *gin.Context) {
	Abort(c, http.StatusTooManyRequests, "Too many requests!", nil)
}

// InternalError exposes err only outside production
func InternalError(c *gin.Context, err error) {
	if production.Load() || err == nil {
		Abort(c, http.StatusInternalServerError, internalServerError, nil)
		return
	}
	c.AbortWithStatusJSON(http.StatusInternalServerError,
		New[any](http.StatusInternalServerError, err.Error(), err.Error(), nil))
}
