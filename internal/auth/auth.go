// Package auth issues and checks the admin session token and verifies the
// admin password. There is a single admin; a session carries no identity
// beyond its expiry.
package auth

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// CookieName is the cookie the session token travels in.
const CookieName = "admin_session"

// DefaultSessionTTL is how long a session stays valid after login.
const DefaultSessionTTL = 14 * 24 * time.Hour

const issuer = "menu-admin"

// Errors returned by Manager.
var (
	ErrNoSecret       = errors.New("admin secret not configured")
	ErrNoPassword     = errors.New("admin password not configured")
	ErrBadCredentials = errors.New("invalid credentials")
	ErrInvalidSession = errors.New("invalid session")
)

// Config holds the admin credentials. PasswordHash, a bcrypt hash, takes
// precedence over Password.
type Config struct {
	Password     string
	PasswordHash string
	Secret       string
	SessionTTL   time.Duration
}

// Manager signs and verifies sessions with an HMAC secret.
type Manager struct {
	cfg Config
	now func() time.Time
}

// NewManager returns a Manager for cfg. A zero SessionTTL means
// DefaultSessionTTL.
func NewManager(cfg Config) *Manager {
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = DefaultSessionTTL
	}
	return &Manager{cfg: cfg, now: time.Now}
}

// SessionTTL returns the lifetime of issued sessions.
func (m *Manager) SessionTTL() time.Duration {
	return m.cfg.SessionTTL
}

// CheckPassword compares input with the configured password in constant
// time, or against the bcrypt hash when one is configured.
func (m *Manager) CheckPassword(input string) error {
	if m.cfg.PasswordHash != "" {
		if err := bcrypt.CompareHashAndPassword([]byte(m.cfg.PasswordHash), []byte(input)); err != nil {
			return ErrBadCredentials
		}
		return nil
	}
	if m.cfg.Password == "" {
		return ErrNoPassword
	}
	if subtle.ConstantTimeCompare([]byte(input), []byte(m.cfg.Password)) != 1 {
		return ErrBadCredentials
	}
	return nil
}

// Issue returns a signed session token and its expiry.
func (m *Manager) Issue() (string, time.Time, error) {
	if m.cfg.Secret == "" {
		return "", time.Time{}, ErrNoSecret
	}
	now := m.now()
	exp := now.Add(m.cfg.SessionTTL)
	claims := jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Issuer:    issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(m.cfg.Secret))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("signing session: %w", err)
	}
	return token, exp, nil
}

// Verify checks the signature and expiry of token. Every token is rejected
// while no secret is configured.
func (m *Manager) Verify(token string) error {
	if m.cfg.Secret == "" || token == "" {
		return ErrInvalidSession
	}
	_, err := jwt.ParseWithClaims(token, &jwt.RegisteredClaims{}, func(t *jwt.Token) (any, error) {
		return []byte(m.cfg.Secret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidSession, err)
	}
	return nil
}

// HashPassword returns a bcrypt hash for use as Config.PasswordHash.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", ErrNoPassword
	}
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}
	return string(h), nil
}
