package tokens

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	secret := []byte("access-secret")
	exp := time.Now().Add(15 * time.Minute)

	raw, err := SignAccess("user-1", "alice", secret, exp)
	require.NoError(t, err)

	claims, err := AccessClaimsFromToken(raw, secret)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.Subject)
	assert.Equal(t, "alice", claims.Username)
	assert.WithinDuration(t, exp, claims.ExpiresAt.Time, time.Second)
}

func TestRefreshTokenRoundTrip(t *testing.T) {
	secret := []byte("refresh-secret")
	exp := time.Now().Add(168 * time.Hour)

	raw, err := SignRefresh("user-1", secret, exp)
	require.NoError(t, err)

	claims, err := RefreshClaimsFromToken(raw, secret)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.Subject)
}

func TestParse_WrongSecret(t *testing.T) {
	raw, err := SignRefresh("user-1", []byte("refresh-secret"), time.Now().Add(time.Hour))
	require.NoError(t, err)

	_, err = RefreshClaimsFromToken(raw, []byte("other-secret"))
	assert.Error(t, err)
}

func TestParse_Expired(t *testing.T) {
	raw, err := SignAccess("user-1", "alice", []byte("s"), time.Now().Add(-time.Minute))
	require.NoError(t, err)

	_, err = AccessClaimsFromToken(raw, []byte("s"))
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestParse_RejectsUnexpectedAlg(t *testing.T) {
	// A token signed with "none" must not pass even with a matching payload.
	tok := jwt.NewWithClaims(jwt.SigningMethodNone, RefreshClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	raw, err := tok.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = RefreshClaimsFromToken(raw, []byte("refresh-secret"))
	assert.Error(t, err)
}
