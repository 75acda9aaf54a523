package application

import "errors"

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrTokenExpired       = errors.New("token expired")
	ErrEmailTaken         = errors.New("email already taken")

	ErrUserNotFound    = errors.New("user not found")
	ErrArticleNotFound = errors.New("article not found")
	ErrTagNotFound     = errors.New("tag not found")
	ErrTagInUse        = errors.New("tag has associated articles")
	ErrTagTitleTaken   = errors.New("tag title already exists")
)
