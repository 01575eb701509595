package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTokenService() *TokenService {
	return NewTokenService("test-secret", 15*time.Minute, 7*24*time.Hour, 24*time.Hour)
}

func TestIssueValidateRoundTrip(t *testing.T) {
	svc := newTestTokenService()

	for _, scope := range []Scope{ScopeAccess, ScopeRefresh, ScopeEmailConfirm} {
		token, err := svc.Issue(scope, "a@x.com")
		require.NoError(t, err)

		subject, err := svc.Validate(token, scope)
		require.NoError(t, err)
		assert.Equal(t, "a@x.com", subject)
	}
}

func TestValidateScopeMismatch(t *testing.T) {
	svc := newTestTokenService()

	token, err := svc.Issue(ScopeAccess, "a@x.com")
	require.NoError(t, err)

	// an access token must never pass as a refresh token, and vice versa
	_, err = svc.Validate(token, ScopeRefresh)
	assert.ErrorIs(t, err, ErrInvalidToken)

	refresh, err := svc.Issue(ScopeRefresh, "a@x.com")
	require.NoError(t, err)
	_, err = svc.Validate(refresh, ScopeAccess)
	assert.ErrorIs(t, err, ErrInvalidToken)
	_, err = svc.Validate(refresh, ScopeEmailConfirm)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateExpired(t *testing.T) {
	svc := NewTokenService("test-secret", -time.Minute, -time.Minute, -time.Minute)

	token, err := svc.Issue(ScopeAccess, "a@x.com")
	require.NoError(t, err)

	_, err = svc.Validate(token, ScopeAccess)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateWrongSecret(t *testing.T) {
	token, err := newTestTokenService().Issue(ScopeAccess, "a@x.com")
	require.NoError(t, err)

	other := NewTokenService("another-secret", 15*time.Minute, time.Hour, time.Hour)
	_, err = other.Validate(token, ScopeAccess)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateGarbage(t *testing.T) {
	svc := newTestTokenService()
	_, err := svc.Validate("definitely.not.a-jwt", ScopeAccess)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestSubjectFromConfirmationToken(t *testing.T) {
	svc := newTestTokenService()

	token, err := svc.Issue(ScopeEmailConfirm, "confirm@x.com")
	require.NoError(t, err)

	email, err := svc.SubjectFromConfirmationToken(token)
	require.NoError(t, err)
	assert.Equal(t, "confirm@x.com", email)

	access, err := svc.Issue(ScopeAccess, "confirm@x.com")
	require.NoError(t, err)
	_, err = svc.SubjectFromConfirmationToken(access)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
