package auth

import (
	"testing"
	"time"

	"github.com/mzheleznov/rxpilot/internal/core/domain"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func testUser() *domain.User {
	return &domain.User{
		ID:       "u-1",
		Email:    "dr.lee@clinic.test",
		ClinicID: "clinic-1",
		Role:     domain.RoleUser,
	}
}

func TestSessionRoundTrip(t *testing.T) {
	manager, err := NewSessionManager(testSecret, time.Hour)
	if err != nil {
		t.Fatalf("NewSessionManager: %v", err)
	}

	token, err := manager.Issue(testUser())
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	principal, err := manager.Verify(token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if principal.UserID != "u-1" || principal.ClinicID != "clinic-1" || principal.Role != domain.RoleUser {
		t.Errorf("principal = %+v", principal)
	}
}

func TestSessionExpires(t *testing.T) {
	manager, err := NewSessionManager(testSecret, time.Hour)
	if err != nil {
		t.Fatalf("NewSessionManager: %v", err)
	}

	issued := time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)
	manager.now = func() time.Time { return issued }
	token, err := manager.Issue(testUser())
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	manager.now = func() time.Time { return issued.Add(2 * time.Hour) }
	if _, err := manager.Verify(token); !domain.IsKind(err, domain.ErrUnauthorized) {
		t.Fatalf("err = %v, want ErrUnauthorized", err)
	}
}

func TestSessionRejectsTamperedToken(t *testing.T) {
	manager, err := NewSessionManager(testSecret, time.Hour)
	if err != nil {
		t.Fatalf("NewSessionManager: %v", err)
	}

	token, err := manager.Issue(testUser())
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	tampered := token[:len(token)-2] + "xx"
	if _, err := manager.Verify(tampered); !domain.IsKind(err, domain.ErrUnauthorized) {
		t.Fatalf("err = %v, want ErrUnauthorized", err)
	}
}

func TestSessionRejectsForeignSecret(t *testing.T) {
	issuer, err := NewSessionManager(testSecret, time.Hour)
	if err != nil {
		t.Fatalf("NewSessionManager: %v", err)
	}
	verifier, err := NewSessionManager("ffffffffffffffffffffffffffffffff", time.Hour)
	if err != nil {
		t.Fatalf("NewSessionManager: %v", err)
	}

	token, err := issuer.Issue(testUser())
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := verifier.Verify(token); !domain.IsKind(err, domain.ErrUnauthorized) {
		t.Fatalf("err = %v, want ErrUnauthorized", err)
	}
}

func TestNewSessionManagerRejectsShortSecret(t *testing.T) {
	if _, err := NewSessionManager("short", time.Hour); err == nil {
		t.Fatal("expected an error for a short secret")
	}
}
