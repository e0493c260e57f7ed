package apiapp

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/ivankudzin/paquera/internal/domain/enums"
	redrepo "github.com/ivankudzin/paquera/internal/repo/redis"
	authsvc "github.com/ivankudzin/paquera/internal/services/auth"
)

func TestRequireRoleAllowsListedRole(t *testing.T) {
	mw := RequireRole(enums.RoleOperator, enums.RoleOwner)

	req := httptest.NewRequest(http.MethodGet, "/v1/admin/payments/receipts", nil)
	req = req.WithContext(authsvc.WithIdentity(context.Background(), authsvc.Identity{
		UserID: 1,
		SID:    "sid-1",
		Role:   enums.RoleOperator,
	}))
	rr := httptest.NewRecorder()

	mw(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})).ServeHTTP(rr, req)

	if rr.Code != http.StatusNoContent {
		t.Fatalf("unexpected status: got %d want %d", rr.Code, http.StatusNoContent)
	}
}

func TestRequireRoleRejectsForbiddenRole(t *testing.T) {
	mw := RequireRole(enums.RoleOperator, enums.RoleOwner)

	req := httptest.NewRequest(http.MethodGet, "/v1/admin/payments/receipts", nil)
	req = req.WithContext(authsvc.WithIdentity(context.Background(), authsvc.Identity{
		UserID: 2,
		SID:    "sid-2",
		Role:   enums.RoleUser,
	}))
	rr := httptest.NewRecorder()

	mw(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		t.Fatalf("handler must not be called for forbidden role")
	})).ServeHTTP(rr, req)

	if rr.Code != http.StatusForbidden {
		t.Fatalf("unexpected status: got %d want %d", rr.Code, http.StatusForbidden)
	}
}

func TestRequireRoleWithoutIdentityIsUnauthorized(t *testing.T) {
	mw := RequireRole(enums.RoleOwner)

	rr := httptest.NewRecorder()
	mw(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		t.Fatalf("handler must not be called without identity")
	})).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/v1/admin/payments/receipts", nil))

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("unexpected status: got %d want %d", rr.Code, http.StatusUnauthorized)
	}
}

func TestRequireRoleRejectsUnknownRole(t *testing.T) {
	mw := RequireRole(enums.RoleOperator, enums.RoleOwner)

	req := httptest.NewRequest(http.MethodGet, "/v1/admin/payments/receipts", nil)
	req = req.WithContext(authsvc.WithIdentity(context.Background(), authsvc.Identity{
		UserID: 3,
		SID:    "sid-3",
		Role:   enums.Role("operator"),
	}))
	rr := httptest.NewRecorder()

	mw(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		t.Fatalf("handler must not be called for an unnormalized role")
	})).ServeHTTP(rr, req)

	if rr.Code != http.StatusForbidden {
		t.Fatalf("unexpected status: got %d want %d", rr.Code, http.StatusForbidden)
	}
}

func newAuthService(t *testing.T) *authsvc.Service {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return authsvc.NewService(
		authsvc.NewJWTManager("test-secret", 15*time.Minute),
		redrepo.NewSessionRepo(client),
		time.Hour,
	)
}

func TestAuthMiddlewareInjectsIdentity(t *testing.T) {
	auth := newAuthService(t)
	issued, err := auth.IssueSession(context.Background(), 42, "operator")
	if err != nil {
		t.Fatalf("issue session: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/v1/access", nil)
	req.Header.Set("Authorization", "Bearer "+issued.AccessToken)
	rr := httptest.NewRecorder()

	AuthMiddleware(auth, zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, ok := authsvc.IdentityFromContext(r.Context())
		if !ok || identity.UserID != 42 || identity.Role != enums.RoleOperator {
			t.Fatalf("unexpected identity: %+v ok=%v", identity, ok)
		}
		w.WriteHeader(http.StatusNoContent)
	})).ServeHTTP(rr, req)

	if rr.Code != http.StatusNoContent {
		t.Fatalf("unexpected status: got %d want %d", rr.Code, http.StatusNoContent)
	}
}

func TestAuthMiddlewareRejectsMissingToken(t *testing.T) {
	mw := AuthMiddleware(newAuthService(t), zap.NewNop())

	rr := httptest.NewRecorder()
	mw(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		t.Fatalf("handler must not be called without token")
	})).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/v1/access", nil))

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("unexpected status: got %d want %d", rr.Code, http.StatusUnauthorized)
	}
}

func TestAdminRoutesRequireOperatorRole(t *testing.T) {
	auth := newAuthService(t)
	issued, err := auth.IssueSession(context.Background(), 7, "user")
	if err != nil {
		t.Fatalf("issue session: %v", err)
	}

	r := chi.NewRouter()
	RegisterRoutes(r, Dependencies{AuthService: auth, Logger: zap.NewNop()})

	req := httptest.NewRequest(http.MethodGet, "/v1/admin/payments/receipts", nil)
	req.Header.Set("Authorization", "Bearer "+issued.AccessToken)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	if rr.Code != http.StatusForbidden {
		t.Fatalf("unexpected status: got %d want %d", rr.Code, http.StatusForbidden)
	}
}
