package middleware

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	pkgAuth "github.com/mfigueroa/showroom-backend/pkg/auth"
	"github.com/mfigueroa/showroom-backend/pkg/config"
	pkgerrors "github.com/mfigueroa/showroom-backend/pkg/errors"
	"github.com/mfigueroa/showroom-backend/pkg/logger"
)

type stubSessionChecker struct {
	has       bool
	err       error
	checkedID string
}

func (s *stubSessionChecker) HasSession(_ context.Context, accessID string) (bool, error) {
	s.checkedID = accessID
	return s.has, s.err
}

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:            "middleware-test-secret",
		Issuer:            "showroom-test",
		ExpirationMinutes: 15,
	}
}

func mintTestToken(t *testing.T, cfg config.JWTConfig, jti string) string {
	t.Helper()
	token, err := pkgAuth.MintAccessToken(cfg, time.Now(), pkgAuth.AccessTokenPayload{
		Email: "admin@showroom.dev",
		JTI:   jti,
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func TestAuthMiddleware(t *testing.T) {
	t.Parallel()

	cfg := testJWTConfig()
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})

	newRequest := func(authorization string) *http.Request {
		req := httptest.NewRequest(http.MethodGet, "/api/admin/v1/ping", nil)
		if authorization != "" {
			req.Header.Set("Authorization", authorization)
		}
		return req
	}

	t.Run("missing header", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler := Auth(cfg, &stubSessionChecker{has: true}, logg)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
			t.Fatal("next handler must not run")
		}))
		handler.ServeHTTP(rec, newRequest(""))
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
	})

	t.Run("empty bearer", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler := Auth(cfg, &stubSessionChecker{has: true}, logg)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
			t.Fatal("next handler must not run")
		}))
		handler.ServeHTTP(rec, newRequest("Bearer "))
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
	})

	t.Run("garbage token", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler := Auth(cfg, &stubSessionChecker{has: true}, logg)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
			t.Fatal("next handler must not run")
		}))
		handler.ServeHTTP(rec, newRequest("Bearer not-a-jwt"))
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
	})

	t.Run("revoked session", func(t *testing.T) {
		checker := &stubSessionChecker{has: false}
		rec := httptest.NewRecorder()
		handler := Auth(cfg, checker, logg)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
			t.Fatal("next handler must not run")
		}))
		handler.ServeHTTP(rec, newRequest("Bearer "+mintTestToken(t, cfg, "revoked-jti")))
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
		if checker.checkedID != "revoked-jti" {
			t.Fatalf("checker saw %q", checker.checkedID)
		}
	})

	t.Run("session store down", func(t *testing.T) {
		checker := &stubSessionChecker{err: pkgerrors.New(pkgerrors.CodeDependency, "redis unavailable")}
		rec := httptest.NewRecorder()
		handler := Auth(cfg, checker, logg)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
			t.Fatal("next handler must not run")
		}))
		handler.ServeHTTP(rec, newRequest("Bearer "+mintTestToken(t, cfg, "any-jti")))
		if rec.Code != http.StatusServiceUnavailable {
			t.Fatalf("expected 503, got %d", rec.Code)
		}
	})

	t.Run("success seeds context", func(t *testing.T) {
		checker := &stubSessionChecker{has: true}
		var gotEmail, gotAccessID string
		called := false
		handler := Auth(cfg, checker, logg)(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
			called = true
			gotEmail = AdminEmailFromContext(r.Context())
			gotAccessID = AccessIDFromContext(r.Context())
		}))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, newRequest("Bearer "+mintTestToken(t, cfg, "live-jti")))

		if !called {
			t.Fatal("next handler never ran")
		}
		if gotEmail != "admin@showroom.dev" {
			t.Fatalf("admin email not seeded, got %q", gotEmail)
		}
		if gotAccessID != "live-jti" {
			t.Fatalf("access id not seeded, got %q", gotAccessID)
		}
	})
}
