package auth_test

import (
	"context"
	"errors"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	jwt "github.com/golang-jwt/jwt/v5"
	goredis "github.com/redis/go-redis/v9"

	"github.com/ivankudzin/paquera/internal/domain/enums"
	redrepo "github.com/ivankudzin/paquera/internal/repo/redis"
	authsvc "github.com/ivankudzin/paquera/internal/services/auth"
)

func TestIssueSessionProducesValidToken(t *testing.T) {
	svc, cleanup := newAuthServiceForTest(t)
	defer cleanup()

	ctx := context.Background()
	issued, err := svc.IssueSession(ctx, 1001, "operator")
	if err != nil {
		t.Fatalf("issue session: %v", err)
	}
	if issued.Role != enums.RoleOperator {
		t.Fatalf("unexpected role: %s", issued.Role)
	}

	claims, err := svc.ValidateAccessToken(ctx, issued.AccessToken)
	if err != nil {
		t.Fatalf("validate access token: %v", err)
	}
	if claims.UserID != 1001 || claims.SID != issued.SessionID {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestIssueSessionRejectsUnknownRole(t *testing.T) {
	svc, cleanup := newAuthServiceForTest(t)
	defer cleanup()

	if _, err := svc.IssueSession(context.Background(), 1, "superuser"); !errors.Is(err, authsvc.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}

func TestLogoutInvalidatesSession(t *testing.T) {
	svc, cleanup := newAuthServiceForTest(t)
	defer cleanup()

	ctx := context.Background()
	issued, err := svc.IssueSession(ctx, 2002, "")
	if err != nil {
		t.Fatalf("issue session: %v", err)
	}

	claims, err := svc.ValidateAccessToken(ctx, issued.AccessToken)
	if err != nil {
		t.Fatalf("validate access token before logout: %v", err)
	}

	if err := svc.Logout(ctx, claims.SID); err != nil {
		t.Fatalf("logout: %v", err)
	}

	if _, err := svc.ValidateAccessToken(ctx, issued.AccessToken); !errors.Is(err, authsvc.ErrUnauthorized) {
		t.Fatalf("access token should be unauthorized after logout, got err=%v", err)
	}
}

func TestValidateRejectsForeignSecret(t *testing.T) {
	svc, cleanup := newAuthServiceForTest(t)
	defer cleanup()

	other := authsvc.NewJWTManager("other-secret", time.Minute)
	token, _, err := other.GenerateAccessToken(5, "sid", "USER")
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	if _, err := svc.ValidateAccessToken(context.Background(), token); !errors.Is(err, authsvc.ErrUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestParseAccessTokenRejectsUnknownRole(t *testing.T) {
	manager := authsvc.NewJWTManager("test-secret", time.Minute)
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"iss":  "paquera",
		"sub":  "5",
		"sid":  "sid-5",
		"role": "ROOT",
		"iat":  now.Unix(),
		"exp":  now.Add(time.Minute).Unix(),
	})
	raw, err := token.SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	if _, err := manager.ParseAccessToken(raw); !errors.Is(err, authsvc.ErrUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestParseAccessTokenRejectsForeignIssuer(t *testing.T) {
	manager := authsvc.NewJWTManager("test-secret", time.Minute)
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"iss":  "someone-else",
		"sub":  "5",
		"sid":  "sid-5",
		"role": "USER",
		"iat":  now.Unix(),
		"exp":  now.Add(time.Minute).Unix(),
	})
	raw, err := token.SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	if _, err := manager.ParseAccessToken(raw); !errors.Is(err, authsvc.ErrUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestGenerateAccessTokenRoundTripsRole(t *testing.T) {
	manager := authsvc.NewJWTManager("test-secret", time.Minute)

	raw, _, err := manager.GenerateAccessToken(9, "sid-9", enums.RoleOwner)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	claims, err := manager.ParseAccessToken(raw)
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if claims.Role != enums.RoleOwner || claims.UserID != 9 || claims.SID != "sid-9" {
		t.Fatalf("unexpected claims: %+v", claims)
	}

	if _, _, err := manager.GenerateAccessToken(9, "sid-9", enums.Role("ROOT")); err == nil {
		t.Fatalf("expected unknown role to be refused")
	}
}

func newAuthServiceForTest(t *testing.T) (*authsvc.Service, func()) {
	t.Helper()

	mini, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}

	client := goredis.NewClient(&goredis.Options{Addr: mini.Addr()})
	repo := redrepo.NewSessionRepo(client)
	jwtManager := authsvc.NewJWTManager("test-secret", 15*time.Minute)
	svc := authsvc.NewService(jwtManager, repo, 45*24*time.Hour)

	cleanup := func() {
		_ = client.Close()
		mini.Close()
	}

	return svc, cleanup
}
