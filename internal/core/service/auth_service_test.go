package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Priyansh-9021/Bike-Rental-System/internal/core/domain"
	"github.com/Priyansh-9021/Bike-Rental-System/internal/registry"
)

const testSecret = "test-secret"

func newAuthService() *AuthService {
	return NewAuthService(registry.NewMemoryUsers(), testSecret, time.Hour)
}

func TestAuth_RegisterHashesPassword(t *testing.T) {
	svc := newAuthService()
	ctx := context.Background()

	user, err := svc.Register(ctx, "alice", "s3cret")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if user.PasswordHash == "s3cret" || user.PasswordHash == "" {
		t.Fatal("password must be stored hashed")
	}
}

func TestAuth_RegisterDuplicate(t *testing.T) {
	svc := newAuthService()
	ctx := context.Background()

	if _, err := svc.Register(ctx, "alice", "s3cret"); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := svc.Register(ctx, "alice", "other"); !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

func TestAuth_RegisterEmptyFields(t *testing.T) {
	svc := newAuthService()
	ctx := context.Background()

	if _, err := svc.Register(ctx, "", "pw"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("empty username: expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := svc.Register(ctx, "alice", ""); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("empty password: expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuth_LoginIssuesToken(t *testing.T) {
	svc := newAuthService()
	ctx := context.Background()

	if _, err := svc.Register(ctx, "alice", "s3cret"); err != nil {
		t.Fatalf("register: %v", err)
	}

	token, user, err := svc.Login(ctx, "alice", "s3cret")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if user.Username != "alice" {
		t.Fatalf("unexpected user: %+v", user)
	}

	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return []byte(testSecret), nil
	})
	if err != nil || !parsed.Valid {
		t.Fatalf("token must verify with the signing secret: %v", err)
	}
	if claims.Subject != "alice" {
		t.Fatalf("expected subject alice, got %q", claims.Subject)
	}
	if claims.ExpiresAt == nil || time.Until(claims.ExpiresAt.Time) > time.Hour {
		t.Fatalf("unexpected expiry: %v", claims.ExpiresAt)
	}
}

func TestAuth_LoginFailures(t *testing.T) {
	svc := newAuthService()
	ctx := context.Background()
	_, _ = svc.Register(ctx, "alice", "s3cret")

	cases := []struct {
		name     string
		username string
		password string
	}{
		{"wrong password", "alice", "nope"},
		{"unknown user", "bob", "s3cret"},
		{"empty username", "", "s3cret"},
		{"empty password", "alice", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, _, err := svc.Login(ctx, tc.username, tc.password); !errors.Is(err, domain.ErrInvalidCredentials) {
				t.Fatalf("expected ErrInvalidCredentials, got %v", err)
			}
		})
	}
}
