package request

import (
	"strings"

	"github.com/oksasatya/go-blog-cms/internal/domain/entity"
	"github.com/oksasatya/go-blog-cms/pkg/validation"
)

var UserMessages = map[string]string{
	"role.oneof": "Role must be ADMIN or AUTHOR",
}

type CreateUserRequest struct {
	Username string `json:"username" binding:"required,max=100"`
	Email    string `json:"email" binding:"required,email,max=255"`
	Password string `json:"password" binding:"required,pwd"`
	Role     string `json:"role" binding:"omitempty,oneof=ADMIN AUTHOR"`
}

func (r *CreateUserRequest) Check(errs validation.Errors) {
	if !errs.Has("username") && strings.TrimSpace(r.Username) == "" {
		errs.Add("username", "Username is required")
	}
}

func (r *CreateUserRequest) EmailField() *string { return &r.Email }

// RoleValue defaults to AUTHOR
func (r *CreateUserRequest) RoleValue() entity.Role {
	if role, ok := entity.ParseRole(r.Role); ok {
		return role
	}
	return entity.RoleAuthor
}

// UpdateUserRequest is a partial patch; an empty password keeps the current one
type UpdateUserRequest struct {
	Username *string `json:"username" binding:"omitempty,max=100"`
	Email    *string `json:"email" binding:"omitempty,email,max=255"`
	Password *string `json:"password" binding:"omitempty,pwd"`
	Role     *string `json:"role" binding:"omitempty,oneof=ADMIN AUTHOR"`
}

func (r *UpdateUserRequest) Check(errs validation.Errors) {
	if r.Username != nil && strings.TrimSpace(*r.Username) == "" {
		errs.Add("username", "Username is required")
	}
	if r.Email != nil && strings.TrimSpace(*r.Email) == "" {
		errs.Add("email", "Email is required")
	}
}

func (r *UpdateUserRequest) EmailField() *string { return r.Email }

func (r *UpdateUserRequest) RoleValue() *entity.Role {
	if r.Role == nil {
		return nil
	}
	role, ok := entity.ParseRole(*r.Role)
	if !ok {
		return nil
	}
	return &role
}
