// Package auth issues and verifies access tokens and hashes passwords.
package auth

import (
	"errors"
	"time"

	"github.com/dmitrijs2005/pecunia/internal/common"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims carries the standard registered claims (sub is the account email)
// plus the account token version.
type Claims struct {
	jwt.RegisteredClaims
	Version int64 `json:"ver"`
}

// TokenIssuer signs and verifies HS256 access tokens.
type TokenIssuer struct {
	secret   []byte
	validity time.Duration
	now      func() time.Time
}

// NewTokenIssuer returns an issuer using secret for signing. now is the clock
// used both for iat/exp and for expiry checks; nil means time.Now.
func NewTokenIssuer(secret []byte, validity time.Duration, now func() time.Time) *TokenIssuer {
	if now == nil {
		now = time.Now
	}
	return &TokenIssuer{secret: secret, validity: validity, now: now}
}

// Validity is the lifetime of issued tokens.
func (i *TokenIssuer) Validity() time.Duration {
	return i.validity
}

// Generate returns a signed token for email at the given token version.
func (i *TokenIssuer) Generate(email string, version int64) (string, error) {
	now := i.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.validity)),
			ID:        uuid.NewString(),
		},
		Version: version,
	})

	tokenString, err := token.SignedString(i.secret)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// Parse verifies the signature, algorithm and expiry of tokenString and
// returns its claims. Expired tokens yield common.ErrTokenExpired, anything
// else common.ErrInvalidToken.
func (i *TokenIssuer) Parse(tokenString string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(i.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrTokenExpired
		}
		return nil, common.ErrInvalidToken
	}

	if !token.Valid || claims.Subject == "" {
		return nil, common.ErrInvalidToken
	}

	return claims, nil
}
