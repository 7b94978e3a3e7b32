package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func testService() TokenService {
	return TokenService{
		AccessSecret:  "access-secret",
		RefreshSecret: "refresh-secret",
		AccessTTL:     15 * time.Minute,
		RefreshTTL:    7 * 24 * time.Hour,
	}
}

func TestAccessTokenRoundTrip(t *testing.T) {
	s := testService()
	tok, err := s.IssueAccessToken(42, "a@b.co")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), tok.Exp, 5*time.Second)

	claims, err := s.Verify(tok.Raw, KindAccess)
	require.NoError(t, err)
	id, err := claims.UserID()
	require.NoError(t, err)
	assert.Equal(t, uint64(42), id)
	assert.Equal(t, "a@b.co", claims.Email)
	assert.Empty(t, claims.RefreshKey)
}

func TestRefreshTokenCarriesKey(t *testing.T) {
	s := testService()
	tok, err := s.IssueRefreshToken(7, "x@y.co", "opaque")
	require.NoError(t, err)

	claims, err := s.Verify(tok.Raw, KindRefresh)
	require.NoError(t, err)
	assert.Equal(t, "opaque", claims.RefreshKey)
}

func TestVerifyRejectsWrongKind(t *testing.T) {
	s := testService()
	access, err := s.IssueAccessToken(1, "a@b.co")
	require.NoError(t, err)
	refresh, err := s.IssueRefreshToken(1, "a@b.co", "k")
	require.NoError(t, err)

	_, err = s.Verify(access.Raw, KindRefresh)
	assert.ErrorIs(t, err, ErrTokenInvalid)
	_, err = s.Verify(refresh.Raw, KindAccess)
	assert.ErrorIs(t, err, ErrTokenInvalid)

	// same secret for both kinds: the typ claim still separates them
	s.RefreshSecret = s.AccessSecret
	access, err = s.IssueAccessToken(1, "a@b.co")
	require.NoError(t, err)
	_, err = s.Verify(access.Raw, KindRefresh)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestVerifyExpired(t *testing.T) {
	s := testService()
	s.AccessTTL = -time.Minute
	tok, err := s.IssueAccessToken(1, "a@b.co")
	require.NoError(t, err)

	_, err = s.Verify(tok.Raw, KindAccess)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestVerifyGarbageAndForeignSignature(t *testing.T) {
	s := testService()
	_, err := s.Verify("not-a-jwt", KindAccess)
	assert.ErrorIs(t, err, ErrTokenInvalid)

	other := testService()
	other.AccessSecret = "someone-else"
	tok, err := other.IssueAccessToken(1, "a@b.co")
	require.NoError(t, err)
	_, err = s.Verify(tok.Raw, KindAccess)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestVerifyRejectsNonHS256(t *testing.T) {
	s := testService()
	claims := Claims{Kind: KindAccess, RegisteredClaims: jwt.RegisteredClaims{
		Subject:   "1",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte(s.AccessSecret))
	require.NoError(t, err)

	_, err = s.Verify(raw, KindAccess)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestOpaqueKey(t *testing.T) {
	a, err := IssueOpaqueKey()
	require.NoError(t, err)
	b, err := IssueOpaqueKey()
	require.NoError(t, err)
	assert.Len(t, a, 96)
	assert.NotEqual(t, a, b)

	h := HashOpaqueKey(a)
	assert.Len(t, h, 64)
	assert.Equal(t, h, HashOpaqueKey(a))
	assert.NotEqual(t, h, HashOpaqueKey(b))
}

func TestPassword(t *testing.T) {
	hash, err := HashPassword("secret1", bcrypt.MinCost)
	require.NoError(t, err)
	assert.NotEqual(t, "secret1", hash)
	assert.True(t, VerifyPassword(hash, "secret1"))
	assert.False(t, VerifyPassword(hash, "secret2"))
}

func TestNeedsRehash(t *testing.T) {
	hash, err := HashPassword("secret1", bcrypt.MinCost)
	require.NoError(t, err)
	assert.False(t, NeedsRehash(hash, bcrypt.MinCost))
	assert.True(t, NeedsRehash(hash, bcrypt.MinCost+1))
	assert.True(t, NeedsRehash("not-a-hash", bcrypt.MinCost))

	// an out-of-range cost is replaced by the default
	hash, err = HashPassword("secret1", 99)
	require.NoError(t, err)
	assert.False(t, NeedsRehash(hash, bcrypt.DefaultCost))
}
