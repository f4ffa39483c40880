// Package auth covers token issuance/verification, password hashing and the
// role/capability matrix. Credential storage itself lives in the user store.
package auth

import (
	"fmt"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"voisafe/backend/internal/apperr"
)

const issuer = "voisafe-service"

// TokenManager signs and verifies the HS256 tokens that carry the
// authenticated actor. Secret and expiry are injected from config.
type TokenManager struct {
	secret []byte
	expiry time.Duration
}

// NewTokenManager створює TokenManager із секретом та строком дії з конфігурації.
func NewTokenManager(secret []byte, expiry time.Duration) *TokenManager {
	return &TokenManager{secret: secret, expiry: expiry}
}

// Issue returns a signed token for the given user.
func (m *TokenManager) Issue(userID, role string) (string, error) {
	claims := jwt.MapClaims{
		"user_id": userID,
		"role":    role,
		"iat":     time.Now().Unix(),
		"exp":     time.Now().Add(m.expiry).Unix(),
		"iss":     issuer,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// Verify parses a token and returns the user id it carries.
func (m *TokenManager) Verify(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	}, jwt.WithIssuer(issuer), jwt.WithExpirationRequired())
	if err != nil || !token.Valid {
		return "", fmt.Errorf("auth: invalid token: %w", apperr.ErrUnauthorized)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", fmt.Errorf("auth: invalid token payload: %w", apperr.ErrUnauthorized)
	}
	userID, _ := claims["user_id"].(string)
	if userID == "" {
		return "", fmt.Errorf("auth: token missing user id: %w", apperr.ErrUnauthorized)
	}
	return userID, nil
}
