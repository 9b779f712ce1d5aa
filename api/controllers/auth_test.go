package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mfigueroa/showroom-backend/api/middleware"
	authsvc "github.com/mfigueroa/showroom-backend/internal/auth"
	pkgerrors "github.com/mfigueroa/showroom-backend/pkg/errors"
)

type stubAuthService struct {
	loginReq    *authsvc.LoginRequest
	loginResp   *authsvc.TokenResponse
	loginErr    error
	refreshReq  *authsvc.RefreshRequest
	refreshResp *authsvc.TokenResponse
	refreshErr  error
	loggedOutID string
	logoutErr   error
}

func (s *stubAuthService) Login(_ context.Context, req authsvc.LoginRequest) (*authsvc.TokenResponse, error) {
	s.loginReq = &req
	return s.loginResp, s.loginErr
}

func (s *stubAuthService) Refresh(_ context.Context, req authsvc.RefreshRequest) (*authsvc.TokenResponse, error) {
	s.refreshReq = &req
	return s.refreshResp, s.refreshErr
}

func (s *stubAuthService) Logout(_ context.Context, accessID string) error {
	s.loggedOutID = accessID
	return s.logoutErr
}

func TestAdminLogin(t *testing.T) {
	t.Parallel()

	t.Run("success", func(t *testing.T) {
		stub := &stubAuthService{loginResp: &authsvc.TokenResponse{
			AccessToken:  "access",
			RefreshToken: "refresh",
			Email:        "admin@showroom.dev",
		}}
		body := bytes.NewBufferString(`{"email":"admin@showroom.dev","password":"correct horse"}`)
		req := httptest.NewRequest(http.MethodPost, "/api/admin/v1/auth/login", body)
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		AdminLogin(stub, testControllerLogger()).ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if stub.loginReq == nil || stub.loginReq.Email != "admin@showroom.dev" {
			t.Fatalf("service called with %+v", stub.loginReq)
		}

		var envelope struct {
			Data authsvc.TokenResponse `json:"data"`
		}
		if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if envelope.Data.AccessToken != "access" || envelope.Data.RefreshToken != "refresh" {
			t.Fatalf("unexpected tokens %+v", envelope.Data)
		}
	})

	t.Run("missing fields", func(t *testing.T) {
		stub := &stubAuthService{}
		body := bytes.NewBufferString(`{"email":"admin@showroom.dev"}`)
		req := httptest.NewRequest(http.MethodPost, "/api/admin/v1/auth/login", body)
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		AdminLogin(stub, testControllerLogger()).ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		if stub.loginReq != nil {
			t.Fatal("service must not be called on a bad payload")
		}
	})

	t.Run("bad credentials", func(t *testing.T) {
		stub := &stubAuthService{loginErr: pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")}
		body := bytes.NewBufferString(`{"email":"admin@showroom.dev","password":"wrong"}`)
		req := httptest.NewRequest(http.MethodPost, "/api/admin/v1/auth/login", body)
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		AdminLogin(stub, testControllerLogger()).ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
	})
}

func TestAdminRefresh(t *testing.T) {
	t.Parallel()

	t.Run("success", func(t *testing.T) {
		stub := &stubAuthService{refreshResp: &authsvc.TokenResponse{
			AccessToken:  "rotated-access",
			RefreshToken: "rotated-refresh",
			Email:        "admin@showroom.dev",
		}}
		body := bytes.NewBufferString(`{"access_token":"old-access","refresh_token":"old-refresh"}`)
		req := httptest.NewRequest(http.MethodPost, "/api/admin/v1/auth/refresh", body)
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		AdminRefresh(stub, testControllerLogger()).ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if stub.refreshReq == nil || stub.refreshReq.RefreshToken != "old-refresh" {
			t.Fatalf("service called with %+v", stub.refreshReq)
		}
	})

	t.Run("stale pair", func(t *testing.T) {
		stub := &stubAuthService{refreshErr: pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid refresh token")}
		body := bytes.NewBufferString(`{"access_token":"old-access","refresh_token":"stale"}`)
		req := httptest.NewRequest(http.MethodPost, "/api/admin/v1/auth/refresh", body)
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		AdminRefresh(stub, testControllerLogger()).ServeHTTP(rec, req)

		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
	})
}

func TestAdminLogout(t *testing.T) {
	t.Parallel()

	stub := &stubAuthService{}
	req := httptest.NewRequest(http.MethodPost, "/api/admin/v1/auth/logout", nil)
	req = req.WithContext(middleware.WithAccessID(req.Context(), "session-jti"))
	rec := httptest.NewRecorder()
	AdminLogout(stub, testControllerLogger()).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if stub.loggedOutID != "session-jti" {
		t.Fatalf("revoked %q", stub.loggedOutID)
	}
}
