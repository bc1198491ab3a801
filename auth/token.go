// Package auth issues and verifies the credentials a player presents on
// every game request. A credential is an HS256 JWT carrying the player's
// login as a claim; the server re-resolves the user by login on each request,
// so tokens never go stale when a user record is replaced.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned for any token that does not verify: missing,
// malformed, expired, or signed with a different secret. Callers get no finer
// detail than this.
var ErrInvalidToken = errors.New("invalid token")

// Claims are the token claims: the registered set plus the player's login.
type Claims struct {
	jwt.RegisteredClaims
	Login string `json:"login"`
}

// Issuer mints and verifies tokens with a shared secret.
type Issuer struct {
	secret   []byte
	validity time.Duration
}

// NewIssuer creates an Issuer signing with secret. Issued tokens expire after
// validity.
func NewIssuer(secret string, validity time.Duration) *Issuer {
	return &Issuer{
		secret:   []byte(secret),
		validity: validity,
	}
}

// Issue returns a signed token embedding login, expiring after the
// configured validity.
func (i *Issuer) Issue(login string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(i.validity)),
		},
		Login: login,
	})

	return token.SignedString(i.secret)
}

// Verify checks the token signature and expiry and returns the embedded
// login. Expiry is checked exactly, with no leeway. Every failure collapses
// to ErrInvalidToken.
func (i *Issuer) Verify(tokenString string) (string, error) {
	if tokenString == "" {
		return "", ErrInvalidToken
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return i.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return "", ErrInvalidToken
	}

	if claims.Login == "" {
		return "", ErrInvalidToken
	}

	return claims.Login, nil
}
