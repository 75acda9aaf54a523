package request

import (
	"strings"

	"github.com/oksasatya/go-blog-cms/pkg/validation"
)

type CreateTagRequest struct {
	Title string `json:"title" binding:"required,max=255"`
}

func (r *CreateTagRequest) Check(errs validation.Errors) {
	if !errs.Has("title") && strings.TrimSpace(r.Title) == "" {
		errs.Add("title", "Title is required")
	}
}

func (r *CreateTagRequest) TitleField() *string { return &r.Title }

type UpdateTagRequest struct {
	Title *string `json:"title" binding:"omitempty,max=255"`
}

func (r *UpdateTagRequest) Check(errs validation.Errors) {
	if r.Title != nil && strings.TrimSpace(*r.Title) == "" {
		errs.Add("title", "Title is required")
	}
}

func (r *UpdateTagRequest) TitleField() *string { return r.Title }
