package domain

import "errors"

// User is a registered account. The password is kept as submitted.
type User struct {
	Username string `json:"username" db:"username"`
	Password string `json:"-" db:"password"`
}

var (
	ErrUsernameTaken      = errors.New("username already exists")
	ErrInvalidCredentials = errors.New("invalid username or password")
)
