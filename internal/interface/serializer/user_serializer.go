package serializer

import (
	"time"

	"github.com/oksasatya/go-blog-cms/internal/domain/entity"
)

// User never carries the password hash
type User struct {
	ID            int64       `json:"id"`
	Username      string      `json:"username"`
	Email         string      `json:"email"`
	Role          entity.Role `json:"role"`
	ArticlesCount int64       `json:"articles_count"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
}

type UserDetail struct {
	User
	Articles []Article `json:"articles"`
}

func NewUser(u *entity.User) User {
	return User{
		ID:            u.ID,
		Username:      u.Username,
		Email:         u.Email,
		Role:          u.Role,
		ArticlesCount: u.ArticlesCount,
		CreatedAt:     u.CreatedAt,
		UpdatedAt:     u.UpdatedAt,
	}
}

func NewUsers(items []entity.User) []User {
	out := make([]User, 0, len(items))
	for i := range items {
		out = append(out, NewUser(&items[i]))
	}
	return out
}

func NewUserDetail(u *entity.User) UserDetail {
	return UserDetail{User: NewUser(u), Articles: NewArticles(u.Articles)}
}
