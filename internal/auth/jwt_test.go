package auth_test

import (
	"strings"
	"testing"
	"time"

	"github.com/dom/taskflow/internal/auth"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-jwt-secret-key-for-testing-only"

func TestTokenManager_IssueAndVerify(t *testing.T) {
	m := auth.NewTokenManager(testSecret, time.Hour)
	userID := uuid.New()

	token, err := m.Issue(userID)
	require.NoError(t, err)

	got, err := m.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, userID, got)
}

func TestTokenManager_DistinctTokensPerUser(t *testing.T) {
	m := auth.NewTokenManager(testSecret, time.Hour)

	a, err := m.Issue(uuid.New())
	require.NoError(t, err)
	b, err := m.Issue(uuid.New())
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestTokenManager_Expired(t *testing.T) {
	issuedAt := time.Now().Add(-8 * 24 * time.Hour)
	past := auth.NewTokenManager(testSecret, 7*24*time.Hour).WithClock(func() time.Time { return issuedAt })

	token, err := past.Issue(uuid.New())
	require.NoError(t, err)

	_, err = auth.NewTokenManager(testSecret, time.Hour).Verify(token)
	assert.ErrorIs(t, err, auth.ErrTokenExpired)
	assert.NotErrorIs(t, err, auth.ErrTokenInvalid)
}

func TestTokenManager_Invalid(t *testing.T) {
	m := auth.NewTokenManager(testSecret, time.Hour)
	token, err := m.Issue(uuid.New())
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)
	sig := []byte(parts[2])
	if sig[0] == 'A' {
		sig[0] = 'B'
	} else {
		sig[0] = 'A'
	}
	tampered := parts[0] + "." + parts[1] + "." + string(sig)

	noneToken, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"id":  uuid.NewString(),
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	noExpiry, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"id": uuid.NewString(),
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	badUserID, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"id":  "not-a-uuid",
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	otherSecret, err := auth.NewTokenManager("another-secret", time.Hour).Issue(uuid.New())
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{name: "tampered signature", token: tampered},
		{name: "garbage", token: "not.a.token"},
		{name: "empty", token: ""},
		{name: "alg none", token: noneToken},
		{name: "missing expiry", token: noExpiry},
		{name: "malformed user id", token: badUserID},
		{name: "signed with other secret", token: otherSecret},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := m.Verify(tt.token)
			assert.ErrorIs(t, err, auth.ErrTokenInvalid)
			assert.NotErrorIs(t, err, auth.ErrTokenExpired)
		})
	}
}
