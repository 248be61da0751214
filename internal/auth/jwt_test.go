package auth

import (
	"testing"
	"time"

	"marketplace-ledger/internal/config"
)

func testManager(t *testing.T) *Manager {
	t.Helper()
	m, err := NewManager(config.AuthConfig{
		JWTSecret:       "test-secret",
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: 24 * time.Hour,
	})
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}
	return m
}

func TestIssueAndVerifyRoundTrip(t *testing.T) {
	m := testManager(t)
	now := time.Now()

	pair, err := m.IssuePair(now, "user-1", "buyer")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	claims, err := m.Verify(pair.AccessToken, TokenTypeAccess, now.Add(time.Minute))
	if err != nil {
		t.Fatalf("verify access: %v", err)
	}
	if claims.UserID != "user-1" || claims.Role != "buyer" {
		t.Fatalf("claims = %+v", claims)
	}

	// Refresh tokens verify as refresh, not as access.
	if _, err := m.Verify(pair.RefreshToken, TokenTypeAccess, now.Add(time.Minute)); err == nil {
		t.Fatalf("refresh token accepted as access token")
	}
	if _, err := m.Verify(pair.RefreshToken, TokenTypeRefresh, now.Add(time.Minute)); err != nil {
		t.Fatalf("verify refresh: %v", err)
	}
}

func TestVerifyRejectsExpired(t *testing.T) {
	m := testManager(t)
	now := time.Now()

	pair, err := m.IssuePair(now, "user-1", "seller")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	// Past the TTL plus the 30s leeway.
	if _, err := m.Verify(pair.AccessToken, TokenTypeAccess, now.Add(16*time.Minute)); err == nil {
		t.Fatalf("expired token accepted")
	}
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	m := testManager(t)
	other, err := NewManager(config.AuthConfig{
		JWTSecret:       "different-secret",
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: 24 * time.Hour,
	})
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}

	now := time.Now()
	pair, err := m.IssuePair(now, "user-1", "buyer")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := other.Verify(pair.AccessToken, TokenTypeAccess, now); err == nil {
		t.Fatalf("token verified with wrong secret")
	}
}
