package service

import (
	"context"
	"crypto/subtle"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dreamspace-builders/site-backend/internal/admin/domain"
)

type SessionStore interface {
	Save(ctx context.Context, s domain.Session) error
	Get(ctx context.Context, token string) (*domain.Session, error)
	Delete(ctx context.Context, token string) error
}

// AuthService checks the configured admin credentials and manages the
// resulting server-side sessions.
type AuthService struct {
	store    SessionStore
	username string
	password string
	ttl      time.Duration
	now      func() time.Time
}

func NewAuthService(store SessionStore, username, password string, ttl time.Duration) *AuthService {
	return &AuthService{
		store:    store,
		username: username,
		password: password,
		ttl:      ttl,
		now:      time.Now,
	}
}

// Login issues a new session when the credentials match.
func (s *AuthService) Login(ctx context.Context, username, password string) (*domain.Session, error) {
	userOK := subtle.ConstantTimeCompare([]byte(strings.TrimSpace(username)), []byte(s.username)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(s.password)) == 1
	if !userOK || !passOK {
		return nil, domain.ErrInvalidCredentials
	}

	now := s.now().UTC()
	sess := domain.Session{
		Token:     uuid.NewString(),
		Username:  s.username,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}
	if err := s.store.Save(ctx, sess); err != nil {
		return nil, err
	}
	return &sess, nil
}

func (s *AuthService) Logout(ctx context.Context, token string) error {
	return s.store.Delete(ctx, token)
}

// Resolve returns the live session for token.
func (s *AuthService) Resolve(ctx context.Context, token string) (*domain.Session, error) {
	if strings.TrimSpace(token) == "" {
		return nil, domain.ErrSessionNotFound
	}
	return s.store.Get(ctx, token)
}
