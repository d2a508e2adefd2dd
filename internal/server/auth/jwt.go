// Package auth verifies the bearer tokens the HTTP layer uses to scope
// requests to a user. Token issuance lives in the external auth service;
// both sides share the HS256 secret.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/vkraskov/contactsync/internal/common"
)

// Claims extends the registered claims with the owning user id.
type Claims struct {
	jwt.RegisteredClaims
	UserID string
}

// GenerateToken signs a token for userID, valid for validityDuration.
func GenerateToken(userID string, secretKey []byte, validityDuration time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(validityDuration)),
		},
		UserID: userID,
	})

	return token.SignedString(secretKey)
}

// GetUserIDFromToken validates the token signature and expiry and returns
// the embedded user id.
func GetUserIDFromToken(tokenString string, secretKey []byte) (string, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, common.ErrInvalidToken
		}
		return secretKey, nil
	})
	if err != nil {
		return "", errors.Join(common.ErrInvalidToken, err)
	}
	if !token.Valid || claims.UserID == "" {
		return "", common.ErrInvalidToken
	}

	return claims.UserID, nil
}
