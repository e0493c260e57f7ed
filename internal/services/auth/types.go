package auth

import (
	"errors"
	"time"

	"github.com/ivankudzin/paquera/internal/domain/enums"
)

var (
	ErrInvalidInput    = errors.New("invalid input")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrSessionNotFound = errors.New("session not found")
)

type SessionRecord struct {
	SID       string
	UserID    int64
	Role      enums.Role
	ExpiresAt time.Time
}

type AccessClaims struct {
	UserID    int64
	SID       string
	Role      enums.Role
	ExpiresAt time.Time
}

type IssueResult struct {
	AccessToken   string
	AccessExpires time.Time
	SessionID     string
	UserID        int64
	Role          enums.Role
}
