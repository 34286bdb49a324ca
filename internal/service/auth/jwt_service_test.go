package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adboard/adboard-api/internal/config"
)

const testSecret = "unit-test-signing-key-0123456789abcdef"

func newTestService(t *testing.T) *hmacTokenService {
	t.Helper()
	svc, err := NewTokenService(config.AuthConfig{
		JWTSecret:            testSecret,
		TokenLifetimeMinutes: 60,
	})
	require.NoError(t, err)
	return svc.(*hmacTokenService)
}

func TestNewTokenServiceRejectsShortSecret(t *testing.T) {
	t.Parallel()

	_, err := NewTokenService(config.AuthConfig{
		JWTSecret:            "too-short",
		TokenLifetimeMinutes: 60,
	})
	assert.Error(t, err)
}

func TestIssueAndVerify(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	ctx := context.Background()

	token, err := svc.Issue(ctx, 42)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.Verify(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserID)
	assert.NotEmpty(t, claims.ID, "each token carries a unique identifier")
	assert.True(t, claims.ExpiresAt.After(claims.IssuedAt))
	assert.WithinDuration(t, claims.IssuedAt.Add(time.Hour), claims.ExpiresAt, time.Second)
}

func TestVerifyExpiredToken(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	ctx := context.Background()

	issuedAt := time.Now()
	svc.timeFunc = func() time.Time { return issuedAt }

	token, err := svc.Issue(ctx, 42)
	require.NoError(t, err)

	// Just past expiry plus the clock-skew leeway.
	svc.timeFunc = func() time.Time {
		return issuedAt.Add(svc.tokenLifetime + svc.clockSkew + time.Second)
	}

	_, err = svc.Verify(ctx, token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestVerifyWithinClockSkew(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	ctx := context.Background()

	issuedAt := time.Now()
	svc.timeFunc = func() time.Time { return issuedAt }

	token, err := svc.Issue(ctx, 42)
	require.NoError(t, err)

	// Expired, but within the allowed drift.
	svc.timeFunc = func() time.Time {
		return issuedAt.Add(svc.tokenLifetime + svc.clockSkew - time.Second)
	}

	claims, err := svc.Verify(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserID)
}

func TestVerifyRejectsBadTokens(t *testing.T) {
	t.Parallel()

	svc := newTestService(t)
	ctx := context.Background()

	otherSvc, err := NewTokenService(config.AuthConfig{
		JWTSecret:            "a-completely-different-signing-key-here",
		TokenLifetimeMinutes: 60,
	})
	require.NoError(t, err)
	foreign, err := otherSvc.Issue(ctx, 42)
	require.NoError(t, err)

	good, err := svc.Issue(ctx, 42)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{name: "empty", token: ""},
		{name: "not a jwt", token: "definitely-not-a-token"},
		{name: "wrong signing key", token: foreign},
		{name: "tampered signature", token: good + "xxxx"},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			_, err := svc.Verify(ctx, tc.token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestBcryptHasher(t *testing.T) {
	t.Parallel()

	hasher := NewBcryptHasher(4) // minimum cost keeps the test fast

	hashed, err := hasher.Hash("pw123456")
	require.NoError(t, err)
	assert.NotEqual(t, "pw123456", hashed)

	assert.NoError(t, hasher.Compare(hashed, "pw123456"))
	assert.Error(t, hasher.Compare(hashed, "wrong-password"))

	// Hashing is salted: two hashes of the same input differ but both
	// verify.
	hashed2, err := hasher.Hash("pw123456")
	require.NoError(t, err)
	assert.NotEqual(t, hashed, hashed2)
	assert.NoError(t, hasher.Compare(hashed2, "pw123456"))
}

func TestBcryptHasherRejectsOverlongPassword(t *testing.T) {
	t.Parallel()

	hasher := NewBcryptHasher(4)

	// bcrypt caps input at 72 bytes; longer input is an error, not a
	// silent truncation.
	long := make([]byte, 80)
	for i := range long {
		long[i] = 'a'
	}
	_, err := hasher.Hash(string(long))
	assert.Error(t, err)
}
