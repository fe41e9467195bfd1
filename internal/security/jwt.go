// Package security holds the token signing/verification helpers and the
// unique id generator used for document and token identifiers.
package security

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid token")

// Claims are the claims embedded in every issued access token. The user id
// travels in the legacy "keyid" claim.
type Claims struct {
	Username string `json:"username"`
	UserID   int64  `json:"keyid"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// SignParams are the inputs bound into a new token.
type SignParams struct {
	Role     string
	Subject  string
	UserID   int64
	TokenID  int64
	Username string
}

// JWTUtil signs and verifies HS256 bearer tokens. Issuer and audience are
// pinned to the configured application name on both ends. The clock is
// injectable so expiry behavior is deterministic in tests.
type JWTUtil struct {
	secret    []byte
	appName   string
	tokenLife time.Duration
	now       func() time.Time
}

func NewJWTUtil(secret, appName string, tokenLife time.Duration) *JWTUtil {
	return &JWTUtil{
		secret:    []byte(secret),
		appName:   appName,
		tokenLife: tokenLife,
		now:       time.Now,
	}
}

// WithClock returns a copy of u using the given clock.
func (u *JWTUtil) WithClock(now func() time.Time) *JWTUtil {
	c := *u
	c.now = now
	return &c
}

// Sign issues a new HS256 token carrying the given parameters. The token id
// becomes the jti claim.
func (u *JWTUtil) Sign(p SignParams) (string, error) {
	now := u.now()
	claims := Claims{
		Username: p.Username,
		UserID:   p.UserID,
		Role:     p.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        fmt.Sprintf("%d", p.TokenID),
			Issuer:    u.appName,
			Audience:  jwt.ClaimStrings{u.appName},
			Subject:   p.Subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(u.tokenLife)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(u.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Validate verifies the signature and the standard claims, with the
// algorithm, issuer and audience pinned to the configured values.
func (u *JWTUtil) Validate(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(
		StripBearer(tokenString),
		claims,
		func(t *jwt.Token) (interface{}, error) {
			return u.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(u.appName),
		jwt.WithAudience(u.appName),
		jwt.WithTimeFunc(u.now),
	)
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// Decode extracts the claims without verifying the signature or expiry.
// The token itself remains the single source of truth for its own
// metadata: issuance reads exp and iss back from the signed string instead
// of recomputing them.
func (u *JWTUtil) Decode(tokenString string) (*Claims, error) {
	claims := &Claims{}
	_, _, err := jwt.NewParser().ParseUnverified(StripBearer(tokenString), claims)
	if err != nil {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// StripBearer removes an optional "Bearer " scheme prefix.
func StripBearer(token string) string {
	token = strings.TrimSpace(token)
	if len(token) >= 7 && strings.EqualFold(token[:7], "bearer ") {
		return strings.TrimSpace(token[7:])
	}
	return token
}
