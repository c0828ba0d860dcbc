package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// User represents a user account with credential material attached. The hash
// is never serialized; handlers strip it before any response leaves the
// service layer.
type User struct {
	ID           int64
	Name         string
	Email        string
	PasswordHash string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Claims is the signed payload inside a bearer token. It identifies a
// session; it carries no authorization state. Roles are always re-read from
// storage when the session is resolved.
type Claims struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	jwt.RegisteredClaims
}
