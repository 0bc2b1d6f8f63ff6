package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueVerify(t *testing.T) {
	m := NewManager(Config{Secret: "s3cret"})
	assert.Equal(t, DefaultSessionTTL, m.SessionTTL())

	token, exp, err := m.Issue()
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(DefaultSessionTTL), exp, time.Minute)
	assert.NoError(t, m.Verify(token))
}

func TestVerifyRejects(t *testing.T) {
	m := NewManager(Config{Secret: "s3cret", SessionTTL: time.Hour})
	token, _, err := m.Issue()
	require.NoError(t, err)

	other := NewManager(Config{Secret: "different"})
	assert.ErrorIs(t, other.Verify(token), ErrInvalidSession)

	noSecret := NewManager(Config{})
	assert.ErrorIs(t, noSecret.Verify(token), ErrInvalidSession)

	assert.ErrorIs(t, m.Verify(""), ErrInvalidSession)
	assert.ErrorIs(t, m.Verify("garbage.token"), ErrInvalidSession)

	later := NewManager(Config{Secret: "s3cret", SessionTTL: time.Hour})
	later.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	assert.ErrorIs(t, later.Verify(token), ErrInvalidSession)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
		Issuer:    issuer,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	assert.ErrorIs(t, m.Verify(none), ErrInvalidSession)
}

func TestIssueWithoutSecret(t *testing.T) {
	_, _, err := NewManager(Config{Password: "pw"}).Issue()
	assert.ErrorIs(t, err, ErrNoSecret)
}

func TestCheckPassword(t *testing.T) {
	plain := NewManager(Config{Password: "letmein"})
	assert.NoError(t, plain.CheckPassword("letmein"))
	assert.ErrorIs(t, plain.CheckPassword("letmein!"), ErrBadCredentials)
	assert.ErrorIs(t, plain.CheckPassword(""), ErrBadCredentials)

	assert.ErrorIs(t, NewManager(Config{}).CheckPassword("anything"), ErrNoPassword)

	hash, err := HashPassword("letmein")
	require.NoError(t, err)
	hashed := NewManager(Config{PasswordHash: hash, Password: "ignored"})
	assert.NoError(t, hashed.CheckPassword("letmein"))
	assert.ErrorIs(t, hashed.CheckPassword("ignored"), ErrBadCredentials)

	_, err = HashPassword("")
	assert.ErrorIs(t, err, ErrNoPassword)
}
