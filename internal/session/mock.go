package session

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"fintrack/internal/log"
)

// DefaultLatency is the simulated round trip of login and register.
const DefaultLatency = 500 * time.Millisecond

// DefaultSecret signs mock tokens. Signatures are never checked.
const DefaultSecret = "mock-signature"

const (
	mockUserID  = "1"
	mockSubject = "1234567890"
	mockName    = "User"
)

// MockAuthenticator accepts any non-empty credentials and issues an HS256
// token. It stands in for a real identity provider.
type MockAuthenticator struct {
	storage BlobStorage
	latency time.Duration
	secret  []byte
	now     func() time.Time
	logger  *log.Logger
}

// MockOption configures a MockAuthenticator.
type MockOption func(*MockAuthenticator)

func WithLatency(d time.Duration) MockOption {
	return func(m *MockAuthenticator) { m.latency = d }
}

func WithSecret(secret string) MockOption {
	return func(m *MockAuthenticator) { m.secret = []byte(secret) }
}

func WithClock(now func() time.Time) MockOption {
	return func(m *MockAuthenticator) { m.now = now }
}

func WithLogger(l *log.Logger) MockOption {
	return func(m *MockAuthenticator) { m.logger = l.WithComponent(log.ComponentSession) }
}

var _ Store = (*MockAuthenticator)(nil)

func NewMockAuthenticator(storage BlobStorage, opts ...MockOption) *MockAuthenticator {
	m := &MockAuthenticator{
		storage: storage,
		latency: DefaultLatency,
		secret:  []byte(DefaultSecret),
		now:     time.Now,
		logger:  log.Nop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Login signs in the fixed mock user. Its display name is the local part of email.
func (m *MockAuthenticator) Login(ctx context.Context, email, password string) (Session, error) {
	if err := m.wait(ctx); err != nil {
		return Session{}, err
	}
	if strings.TrimSpace(email) == "" || password == "" {
		m.logger.WarnContext(ctx, "Login rejected",
			log.FieldOperation, log.OpLogin,
			log.FieldEmail, email,
			log.FieldErrorType, log.ErrorTypeAuth)
		return Session{}, ErrInvalidCredentials
	}
	name, _, _ := strings.Cut(email, "@")
	return m.start(ctx, log.OpLogin, User{ID: mockUserID, Email: email, Name: name})
}

// Register signs in a new user with a random id.
func (m *MockAuthenticator) Register(ctx context.Context, email, password, name string) (Session, error) {
	if err := m.wait(ctx); err != nil {
		return Session{}, err
	}
	if strings.TrimSpace(email) == "" || password == "" || strings.TrimSpace(name) == "" {
		m.logger.WarnContext(ctx, "Registration rejected",
			log.FieldOperation, log.OpRegister,
			log.FieldEmail, email,
			log.FieldErrorType, log.ErrorTypeAuth)
		return Session{}, fmt.Errorf("%w: email, password and name are required", ErrInvalidCredentials)
	}
	id := strings.ReplaceAll(uuid.NewString(), "-", "")[:9]
	return m.start(ctx, log.OpRegister, User{ID: id, Email: email, Name: name})
}

// Issue dispatches to Register when creds carry a name and to Login otherwise.
func (m *MockAuthenticator) Issue(ctx context.Context, creds Credentials) (Session, error) {
	if creds.Name != "" {
		return m.Register(ctx, creds.Email, creds.Password, creds.Name)
	}
	return m.Login(ctx, creds.Email, creds.Password)
}

// Validate checks that token is well formed and is the one currently
// stored. The signature is not verified.
func (m *MockAuthenticator) Validate(ctx context.Context, token string) (User, error) {
	if _, err := ParseClaims(token); err != nil {
		return User{}, err
	}
	cur, ok := m.Current(ctx)
	if !ok || cur.Token != token {
		return User{}, ErrUnauthenticated
	}
	return cur.User, nil
}

// Clear logs out by removing both stored keys.
func (m *MockAuthenticator) Clear(ctx context.Context) error {
	if err := m.storage.Delete(ctx, TokenKey); err != nil {
		return fmt.Errorf("clear token: %w", err)
	}
	if err := m.storage.Delete(ctx, UserKey); err != nil {
		return fmt.Errorf("clear user: %w", err)
	}
	m.logger.InfoContext(ctx, "Auth state changed", "state", "logged out", log.FieldOperation, log.OpLogout)
	return nil
}

// Current reads the stored session. A session without a token, or with an
// unreadable user blob, does not count.
func (m *MockAuthenticator) Current(ctx context.Context) (Session, bool) {
	token, ok, err := m.storage.Get(ctx, TokenKey)
	if err != nil || !ok || token == "" {
		return Session{}, false
	}
	raw, ok, err := m.storage.Get(ctx, UserKey)
	if err != nil || !ok {
		return Session{}, false
	}
	var u User
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		m.logger.WarnContext(ctx, "Stored user is unreadable", log.FieldError, err.Error())
		return Session{}, false
	}
	return Session{Token: token, User: u}, true
}

func (m *MockAuthenticator) start(ctx context.Context, op string, u User) (Session, error) {
	token, err := m.token()
	if err != nil {
		return Session{}, fmt.Errorf("sign token: %w", err)
	}
	blob, err := json.Marshal(u)
	if err != nil {
		return Session{}, fmt.Errorf("encode user: %w", err)
	}
	if err := m.storage.Set(ctx, TokenKey, token); err != nil {
		return Session{}, fmt.Errorf("store token: %w", err)
	}
	if err := m.storage.Set(ctx, UserKey, string(blob)); err != nil {
		return Session{}, fmt.Errorf("store user: %w", err)
	}
	m.logger.InfoContext(ctx, "Auth state changed", "state", "logged in",
		log.FieldOperation, op, log.FieldUserID, u.ID)
	return Session{Token: token, User: u}, nil
}

func (m *MockAuthenticator) token() (string, error) {
	claims := jwt.MapClaims{
		"sub":  mockSubject,
		"name": mockName,
		"iat":  m.now().UnixMilli(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

// wait simulates the network round trip. Cancelling ctx abandons the call.
func (m *MockAuthenticator) wait(ctx context.Context) error {
	if m.latency <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(m.latency)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ParseClaims decodes a header.payload.signature token without checking its
// signature.
func ParseClaims(token string) (jwt.MapClaims, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return claims, nil
}
