// Package auth derives the bearer credential for backend requests from the
// locally stored user.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid token")

// DefaultValidity is the lifetime of signed tokens.
const DefaultValidity = time.Hour

// Claims carries the local user id as both subject and UserID.
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"uid"`
}

// TokenSource turns a user id into a credential. Without a secret the raw id
// is used as the credential; with one, an HS256 JWT is minted per call.
type TokenSource struct {
	secret   []byte
	validity time.Duration
	now      func() time.Time
}

func NewTokenSource(secret string, validity time.Duration) *TokenSource {
	if validity <= 0 {
		validity = DefaultValidity
	}
	return &TokenSource{secret: []byte(secret), validity: validity, now: time.Now}
}

func (s *TokenSource) Token(userID string) (string, error) {
	if userID == "" {
		return "", ErrInvalidToken
	}
	if len(s.secret) == 0 {
		return userID, nil
	}
	return GenerateToken(userID, s.secret, s.now(), s.validity)
}

func GenerateToken(userID string, secretKey []byte, issuedAt time.Time, validity time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(validity)),
		},
		UserID: userID,
	})

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", err
	}
	return tokenString, nil
}

// GetUserIDFromToken validates an HS256 token and returns its user id.
func GetUserIDFromToken(tokenString string, secretKey []byte) (string, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", err
	}
	if !token.Valid {
		return "", ErrInvalidToken
	}
	return claims.UserID, nil
}
