package auth

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func newTestManager(t *testing.T, opts ...TokenOption) *TokenManager {
	t.Helper()
	m, err := NewTokenManager("test-secret", time.Hour, opts...)
	if err != nil {
		t.Fatalf("NewTokenManager: %v", err)
	}
	return m
}

func TestIssueAndParseRoundTrip(t *testing.T) {
	m := newTestManager(t)

	token, err := m.Issue(42, "admin")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	claims, err := m.Parse(token)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	id, err := claims.UserID()
	if err != nil {
		t.Fatalf("UserID: %v", err)
	}
	if id != 42 {
		t.Fatalf("unexpected user id: %d", id)
	}
	if claims.Role != "admin" {
		t.Fatalf("unexpected role: %s", claims.Role)
	}
	if claims.ExpiresAt.Time.Sub(claims.IssuedAt.Time) != time.Hour {
		t.Fatalf("unexpected lifetime: %v", claims.ExpiresAt.Time.Sub(claims.IssuedAt.Time))
	}
}

func TestParseRejectsExpiredToken(t *testing.T) {
	now := time.Now().UTC()
	clock := now
	m := newTestManager(t, WithClock(func() time.Time { return clock }))

	token, err := m.Issue(7, "user")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	clock = now.Add(time.Hour + time.Minute)
	if _, err := m.Parse(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for expired token, got %v", err)
	}
}

func TestParseRejectsTamperedToken(t *testing.T) {
	m := newTestManager(t)

	token, err := m.Issue(7, "user")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		t.Fatalf("unexpected token shape")
	}
	tampered := parts[0] + "." + parts[1] + "." + strings.Repeat("A", len(parts[2]))
	if _, err := m.Parse(tampered); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for tampered token, got %v", err)
	}
}

func TestParseRejectsForeignSecret(t *testing.T) {
	m := newTestManager(t)
	other, err := NewTokenManager("other-secret", time.Hour)
	if err != nil {
		t.Fatalf("NewTokenManager: %v", err)
	}

	token, err := other.Issue(7, "user")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := m.Parse(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for foreign signature, got %v", err)
	}
}

func TestParseRejectsGarbage(t *testing.T) {
	m := newTestManager(t)
	for _, token := range []string{"", "not-a-token", "a.b", "a.b.c.d"} {
		if _, err := m.Parse(token); !errors.Is(err, ErrInvalidToken) {
			t.Fatalf("expected ErrInvalidToken for %q, got %v", token, err)
		}
	}
}

func TestNewTokenManagerRequiresSecret(t *testing.T) {
	if _, err := NewTokenManager("", time.Hour); err == nil {
		t.Fatal("expected error for empty secret")
	}
	if _, err := NewTokenManager("secret", 0); err == nil {
		t.Fatal("expected error for zero ttl")
	}
}

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()
	if _, ok := ClaimsFromContext(ctx); ok {
		t.Fatal("unexpected claims in empty context")
	}

	m := newTestManager(t)
	token, err := m.Issue(9, "admin")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	claims, err := m.Parse(token)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	ctx = ContextWithClaims(ctx, claims)
	got, ok := ClaimsFromContext(ctx)
	if !ok || got.Subject != "9" {
		t.Fatalf("unexpected claims: %+v, ok=%v", got, ok)
	}
	if !HasRole(ctx, "admin") {
		t.Fatal("expected admin role in context")
	}
	if HasRole(ctx, "user") {
		t.Fatal("unexpected user role in context")
	}
}
