package session

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"fintrack/internal/core"
)

func newAuth(opts ...MockOption) (*MockAuthenticator, *MemoryStorage) {
	storage := NewMemoryStorage()
	opts = append([]MockOption{WithLatency(0)}, opts...)
	return NewMockAuthenticator(storage, opts...), storage
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	auth, storage := newAuth()

	s, err := auth.Login(ctx, "jane.doe@example.com", "secret")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if s.User.ID != "1" || s.User.Name != "jane.doe" || s.User.Email != "jane.doe@example.com" {
		t.Errorf("user = %+v", s.User)
	}
	if parts := strings.Split(s.Token, "."); len(parts) != 3 {
		t.Errorf("token %q is not header.payload.signature", s.Token)
	}

	if tok, ok, _ := storage.Get(ctx, TokenKey); !ok || tok != s.Token {
		t.Errorf("token not stored under %s", TokenKey)
	}
	if blob, ok, _ := storage.Get(ctx, UserKey); !ok || !strings.Contains(blob, `"name":"jane.doe"`) {
		t.Errorf("user blob = %q", blob)
	}
}

func TestLoginRejectsMissingCredentials(t *testing.T) {
	tests := []struct {
		email, password string
	}{
		{"", "secret"},
		{"a@b.c", ""},
		{"  ", "secret"},
	}
	for _, tt := range tests {
		auth, storage := newAuth()
		_, err := auth.Login(context.Background(), tt.email, tt.password)
		if !errors.Is(err, ErrInvalidCredentials) || !errors.Is(err, core.ErrValidation) {
			t.Errorf("Login(%q, %q) error = %v", tt.email, tt.password, err)
		}
		if _, ok, _ := storage.Get(context.Background(), TokenKey); ok {
			t.Errorf("token stored after rejected login")
		}
	}
}

func TestRegister(t *testing.T) {
	ctx := context.Background()
	auth, _ := newAuth()

	s, err := auth.Issue(ctx, Credentials{Email: "sam@example.com", Password: "pw", Name: "Sam"})
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	if s.User.Name != "Sam" || len(s.User.ID) != 9 || s.User.ID == "1" {
		t.Errorf("registered user = %+v", s.User)
	}

	if _, err := auth.Register(ctx, "sam@example.com", "pw", " "); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("Register() without name error = %v", err)
	}
}

func TestTokenClaims(t *testing.T) {
	at := time.Date(2025, 10, 12, 9, 0, 0, 0, time.UTC)
	auth, _ := newAuth(WithClock(func() time.Time { return at }))
	s, err := auth.Login(context.Background(), "a@b.c", "x")
	if err != nil {
		t.Fatal(err)
	}
	claims, err := ParseClaims(s.Token)
	if err != nil {
		t.Fatalf("ParseClaims() error = %v", err)
	}
	if claims["sub"] != "1234567890" || claims["name"] != "User" {
		t.Errorf("claims = %v", claims)
	}
	if iat, _ := claims["iat"].(float64); int64(iat) != at.UnixMilli() {
		t.Errorf("iat = %v, want %d", claims["iat"], at.UnixMilli())
	}
}

func TestValidate(t *testing.T) {
	ctx := context.Background()
	auth, _ := newAuth()
	s, _ := auth.Login(ctx, "a@b.c", "x")

	u, err := auth.Validate(ctx, s.Token)
	if err != nil || u.ID != "1" {
		t.Fatalf("Validate() = %+v, %v", u, err)
	}

	other, _ := newAuth(WithSecret("something-else"))
	foreign, _ := other.Login(ctx, "a@b.c", "x")
	if _, err := auth.Validate(ctx, foreign.Token); !errors.Is(err, ErrUnauthenticated) {
		t.Errorf("Validate(foreign token) error = %v, want ErrUnauthenticated", err)
	}
	if _, err := auth.Validate(ctx, "not-a-token"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Validate(garbage) error = %v, want ErrInvalidToken", err)
	}
}

func TestClearRemovesBothKeys(t *testing.T) {
	ctx := context.Background()
	auth, storage := newAuth()
	s, _ := auth.Login(ctx, "a@b.c", "x")

	if _, ok := auth.Current(ctx); !ok {
		t.Fatal("Current() = false after login")
	}
	if err := auth.Clear(ctx); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	if _, ok := auth.Current(ctx); ok {
		t.Errorf("Current() = true after Clear")
	}
	for _, key := range []string{TokenKey, UserKey} {
		if _, ok, _ := storage.Get(ctx, key); ok {
			t.Errorf("%s still stored", key)
		}
	}
	if _, err := auth.Validate(ctx, s.Token); !errors.Is(err, ErrUnauthenticated) {
		t.Errorf("Validate() after Clear error = %v", err)
	}
}

func TestLatencyHonoursContext(t *testing.T) {
	auth := NewMockAuthenticator(NewMemoryStorage(), WithLatency(time.Hour))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := auth.Login(ctx, "a@b.c", "x"); !errors.Is(err, context.Canceled) {
		t.Errorf("Login() error = %v, want context.Canceled", err)
	}
}
