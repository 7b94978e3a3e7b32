package utils // package utils provides helper functions for token creation and hashing

import (
	"crypto/rand"   // secure random number generation
	"crypto/sha256" // SHA-256 hashing for refresh keys
	"encoding/hex"  // hex encoding and decoding functions
	"errors"        // sentinel errors for token verification
	"fmt"           // fmt wraps signing failures
	"strconv"       // strconv renders the subject claim
	"time"          // time utilities for generating expirations

	"github.com/golang-jwt/jwt/v5" // JWT library for creating and parsing signed tokens
)

// TokenKind distinguishes access tokens from refresh tokens.  The kind is
// embedded in the "typ" claim so one can never be used in place of the
// other even if the secrets were misconfigured to be equal.
type TokenKind string

const (
	KindAccess  TokenKind = "access"
	KindRefresh TokenKind = "refresh"
)

var (
	// ErrTokenExpired is returned by Verify when the token is well formed
	// and correctly signed but past its exp claim.
	ErrTokenExpired = errors.New("token expired")
	// ErrTokenInvalid covers every other verification failure.
	ErrTokenInvalid = errors.New("token invalid")
)

// Claims is the payload carried by both token kinds.  RefreshKey is only
// set on refresh tokens; it is the opaque value whose SHA-256 hash is
// stored on the user row.
type Claims struct {
	Email      string    `json:"email"`
	Kind       TokenKind `json:"typ"`
	RefreshKey string    `json:"rk,omitempty"`
	jwt.RegisteredClaims
}

// UserID parses the subject claim.
func (c *Claims) UserID() (uint64, error) {
	return strconv.ParseUint(c.Subject, 10, 64)
}

// Token is a signed JWT together with its expiry.
type Token struct {
	Raw string
	Exp time.Time
}

// TokenService signs and verifies HS256 tokens.  Access and refresh tokens
// use separate secrets and lifetimes.
type TokenService struct {
	AccessSecret  string
	RefreshSecret string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
}

// IssueAccessToken builds and signs a short-lived access token.
func (s TokenService) IssueAccessToken(userID uint64, email string) (Token, error) {
	return s.sign(KindAccess, userID, email, "")
}

// IssueRefreshToken builds and signs a refresh token carrying key.
func (s TokenService) IssueRefreshToken(userID uint64, email, key string) (Token, error) {
	return s.sign(KindRefresh, userID, email, key)
}

func (s TokenService) sign(kind TokenKind, userID uint64, email, key string) (Token, error) {
	secret, ttl := s.params(kind)
	iat := time.Now().UTC()
	exp := iat.Add(ttl)
	claims := Claims{
		Email:      email,
		Kind:       kind,
		RefreshKey: key,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(userID, 10),
			IssuedAt:  jwt.NewNumericDate(iat),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return Token{}, fmt.Errorf("sign %s token: %w", kind, err)
	}
	return Token{Raw: signed, Exp: exp}, nil
}

// Verify parses raw, checks the signature with the secret for kind and
// returns the claims.  The error is ErrTokenExpired or ErrTokenInvalid.
func (s TokenService) Verify(raw string, kind TokenKind) (*Claims, error) {
	secret, _ := s.params(kind)
	claims := &Claims{}
	tok, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}
	if !tok.Valid || claims.Kind != kind {
		return nil, ErrTokenInvalid
	}
	if _, err := claims.UserID(); err != nil {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}

func (s TokenService) params(kind TokenKind) (string, time.Duration) {
	if kind == KindRefresh {
		return s.RefreshSecret, s.RefreshTTL
	}
	return s.AccessSecret, s.AccessTTL
}

// IssueOpaqueKey returns a fresh random refresh key (96 hex chars).
func IssueOpaqueKey() (string, error) {
	return randomHex(48)
}

// HashOpaqueKey returns the SHA-256 hash of key as a hex string.  Only the
// hash is stored so a leaked users table cannot be used to refresh sessions.
func HashOpaqueKey(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:])
}

// randomHex returns a hex-encoded string generated from n bytes of
// cryptographically secure random data.
func randomHex(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
