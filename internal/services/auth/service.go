package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ivankudzin/paquera/internal/domain/enums"
)

const defaultSessionTTL = 30 * 24 * time.Hour

type SessionStore interface {
	Create(ctx context.Context, session SessionRecord) error
	GetSession(ctx context.Context, sid string) (SessionRecord, error)
	DeleteSession(ctx context.Context, sid string) error
}

// Service validates access tokens minted for sessions that live in the
// shared session store. Users sign in through the external identity
// provider; IssueSession exists for operators and local tooling.
type Service struct {
	jwt        *JWTManager
	sessions   SessionStore
	sessionTTL time.Duration
	now        func() time.Time
}

func NewService(jwtManager *JWTManager, sessions SessionStore, sessionTTL time.Duration) *Service {
	if sessionTTL <= 0 {
		sessionTTL = defaultSessionTTL
	}

	return &Service{
		jwt:        jwtManager,
		sessions:   sessions,
		sessionTTL: sessionTTL,
		now:        time.Now,
	}
}

func (s *Service) IssueSession(ctx context.Context, userID int64, role string) (IssueResult, error) {
	if userID <= 0 {
		return IssueResult{}, ErrInvalidInput
	}
	if strings.TrimSpace(role) == "" {
		role = string(enums.RoleUser)
	}
	parsed, ok := enums.ParseRole(role)
	if !ok {
		return IssueResult{}, ErrInvalidInput
	}

	sessionID, err := NewSessionID()
	if err != nil {
		return IssueResult{}, fmt.Errorf("generate session id: %w", err)
	}

	session := SessionRecord{
		SID:       sessionID,
		UserID:    userID,
		Role:      parsed,
		ExpiresAt: s.now().Add(s.sessionTTL),
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return IssueResult{}, fmt.Errorf("create session: %w", err)
	}

	accessToken, accessExpires, err := s.jwt.GenerateAccessToken(userID, sessionID, parsed)
	if err != nil {
		return IssueResult{}, fmt.Errorf("generate access token: %w", err)
	}

	return IssueResult{
		AccessToken:   accessToken,
		AccessExpires: accessExpires,
		SessionID:     sessionID,
		UserID:        userID,
		Role:          parsed,
	}, nil
}

func (s *Service) Logout(ctx context.Context, sid string) error {
	if strings.TrimSpace(sid) == "" {
		return ErrInvalidInput
	}
	if err := s.sessions.DeleteSession(ctx, sid); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

func (s *Service) ValidateAccessToken(ctx context.Context, accessToken string) (AccessClaims, error) {
	claims, err := s.jwt.ParseAccessToken(accessToken)
	if err != nil {
		return AccessClaims{}, ErrUnauthorized
	}

	session, err := s.sessions.GetSession(ctx, claims.SID)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return AccessClaims{}, ErrUnauthorized
		}
		return AccessClaims{}, fmt.Errorf("get session: %w", err)
	}

	if session.UserID != claims.UserID || session.Role != claims.Role {
		return AccessClaims{}, ErrUnauthorized
	}
	if s.now().After(session.ExpiresAt) {
		return AccessClaims{}, ErrUnauthorized
	}

	return claims, nil
}
