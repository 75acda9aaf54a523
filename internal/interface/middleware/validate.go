package middleware

import (
	"errors"
	"io"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/oksasatya/go-blog-cms/internal/interface/request"
	"github.com/oksasatya/go-blog-cms/pkg/response"
	"github.com/oksasatya/go-blog-cms/pkg/validation"
)

const ctxPayloadKey = "payload"

// Validate binds the JSON body into T and runs its tag, Check and store rules.
// Every failing field is reported at once with 422; handlers only see valid payloads.
func Validate[T any](messages map[string]string, rules ...request.Rule[T]) gin.HandlerFunc {
	return func(c *gin.Context) {
		req := new(T)
		errs, decoded := bind(c, req, messages)
		if decoded {
			if ch, ok := any(req).(request.Checker); ok {
				ch.Check(errs)
			}
			id, _ := request.PathID(c)
			scope := request.Scope{Ctx: c.Request.Context(), Caller: Identity(c), ID: id}
			for _, rule := range rules {
				if err := rule(scope, req, errs); err != nil {
					response.InternalError(c, err)
					return
				}
			}
		}
		if len(errs) > 0 {
			response.Unprocessable(c, "Validation failed", errs)
			return
		}
		c.Set(ctxPayloadKey, req)
		c.Next()
	}
}

// bind reports decoded=false when the body is not usable JSON for T
func bind(c *gin.Context, req any, messages map[string]string) (validation.Errors, bool) {
	err := c.ShouldBindJSON(req)
	if errors.Is(err, io.EOF) {
		// an empty body still reports which fields are required
		err = binding.Validator.ValidateStruct(req)
	}
	if err == nil {
		return validation.Errors{}, true
	}
	var verrs validator.ValidationErrors
	return validation.ToDetails(err, messages), errors.As(err, &verrs)
}

// Payload returns the body stored by Validate
func Payload[T any](c *gin.Context) *T {
	v, _ := c.Get(ctxPayloadKey)
	p, _ := v.(*T)
	return p
}
