package auth

import (
	"context"
	"testing"
	"time"

	pkgAuth "github.com/mfigueroa/showroom-backend/pkg/auth"
	"github.com/mfigueroa/showroom-backend/pkg/auth/session"
	"github.com/mfigueroa/showroom-backend/pkg/config"
	pkgerrors "github.com/mfigueroa/showroom-backend/pkg/errors"
	"github.com/mfigueroa/showroom-backend/pkg/security"
)

type stubSession struct {
	generated      []string
	rotateOldID    string
	rotateProvided string
	rotateErr      error
	revoked        []string
}

func (s *stubSession) Generate(_ context.Context, accessID string) (string, error) {
	s.generated = append(s.generated, accessID)
	return "refresh-" + accessID, nil
}

func (s *stubSession) Rotate(_ context.Context, oldAccessID, provided string) (string, string, error) {
	s.rotateOldID = oldAccessID
	s.rotateProvided = provided
	if s.rotateErr != nil {
		return "", "", s.rotateErr
	}
	return "rotated-access-id", "rotated-refresh-token", nil
}

func (s *stubSession) Revoke(_ context.Context, accessID string) error {
	s.revoked = append(s.revoked, accessID)
	return nil
}

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:            "test-secret",
		Issuer:            "showroom-test",
		ExpirationMinutes: 15,
	}
}

func newTestAuthService(t *testing.T, sessions *stubSession) Service {
	t.Helper()

	hash, err := security.HashPassword("correct horse", config.PasswordConfig{})
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}

	svc, err := NewService(ServiceParams{
		AdminConfig:    config.AdminConfig{Email: "admin@example.com", PasswordHash: hash},
		JWTConfig:      testJWTConfig(),
		SessionManager: sessions,
	})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func TestLoginIssuesTokenPair(t *testing.T) {
	t.Parallel()

	sessions := &stubSession{}
	svc := newTestAuthService(t, sessions)

	resp, err := svc.Login(context.Background(), LoginRequest{
		Email:    "  Admin@Example.com ",
		Password: "correct horse",
	})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	if resp.AccessToken == "" || resp.RefreshToken == "" {
		t.Fatalf("missing tokens in %+v", resp)
	}
	if len(sessions.generated) != 1 {
		t.Fatalf("expected one stored session, got %v", sessions.generated)
	}

	claims, err := pkgAuth.ParseAccessToken(testJWTConfig(), resp.AccessToken)
	if err != nil {
		t.Fatalf("parse minted token: %v", err)
	}
	if claims.Email != "admin@example.com" {
		t.Fatalf("unexpected email claim %q", claims.Email)
	}
	if claims.ID != sessions.generated[0] {
		t.Fatal("jti must match the stored session id")
	}
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	t.Parallel()

	sessions := &stubSession{}
	svc := newTestAuthService(t, sessions)

	_, err := svc.Login(context.Background(), LoginRequest{
		Email:    "admin@example.com",
		Password: "wrong",
	})
	if appErr := pkgerrors.As(err); appErr == nil || appErr.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	if len(sessions.generated) != 0 {
		t.Fatal("failed login must not open a session")
	}
}

func TestLoginRejectsUnknownEmail(t *testing.T) {
	t.Parallel()

	svc := newTestAuthService(t, &stubSession{})
	_, err := svc.Login(context.Background(), LoginRequest{
		Email:    "intruder@example.com",
		Password: "correct horse",
	})
	if appErr := pkgerrors.As(err); appErr == nil || appErr.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestRefreshRotatesSession(t *testing.T) {
	t.Parallel()

	sessions := &stubSession{}
	svc := newTestAuthService(t, sessions)

	accessToken, err := pkgAuth.MintAccessToken(testJWTConfig(), time.Now().UTC(), pkgAuth.AccessTokenPayload{
		Email: "admin@example.com",
		JTI:   "old-access-id",
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}

	resp, err := svc.Refresh(context.Background(), RefreshRequest{
		AccessToken:  accessToken,
		RefreshToken: "provided-refresh",
	})
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}

	if sessions.rotateOldID != "old-access-id" || sessions.rotateProvided != "provided-refresh" {
		t.Fatalf("rotate called with %q/%q", sessions.rotateOldID, sessions.rotateProvided)
	}
	if resp.RefreshToken != "rotated-refresh-token" {
		t.Fatalf("unexpected refresh token %q", resp.RefreshToken)
	}

	claims, err := pkgAuth.ParseAccessToken(testJWTConfig(), resp.AccessToken)
	if err != nil {
		t.Fatalf("parse rotated token: %v", err)
	}
	if claims.ID != "rotated-access-id" {
		t.Fatalf("new token must carry the rotated jti, got %q", claims.ID)
	}
}

func TestRefreshRejectsInvalidRefreshToken(t *testing.T) {
	t.Parallel()

	sessions := &stubSession{rotateErr: session.ErrInvalidRefreshToken}
	svc := newTestAuthService(t, sessions)

	accessToken, err := pkgAuth.MintAccessToken(testJWTConfig(), time.Now().UTC(), pkgAuth.AccessTokenPayload{
		Email: "admin@example.com",
		JTI:   "old-access-id",
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}

	_, err = svc.Refresh(context.Background(), RefreshRequest{
		AccessToken:  accessToken,
		RefreshToken: "stale",
	})
	if appErr := pkgerrors.As(err); appErr == nil || appErr.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestRefreshRejectsGarbageAccessToken(t *testing.T) {
	t.Parallel()

	svc := newTestAuthService(t, &stubSession{})
	_, err := svc.Refresh(context.Background(), RefreshRequest{
		AccessToken:  "not-a-jwt",
		RefreshToken: "whatever",
	})
	if appErr := pkgerrors.As(err); appErr == nil || appErr.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}

func TestLogoutRevokesSession(t *testing.T) {
	t.Parallel()

	sessions := &stubSession{}
	svc := newTestAuthService(t, sessions)

	if err := svc.Logout(context.Background(), "access-id"); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if len(sessions.revoked) != 1 || sessions.revoked[0] != "access-id" {
		t.Fatalf("unexpected revocations %v", sessions.revoked)
	}
}
