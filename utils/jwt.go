package utils

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ConfirmationTokenTTL bounds how long an email confirmation link stays valid.
const ConfirmationTokenTTL = time.Hour

// ErrInvalidToken is returned for any token that fails signature or
// expiry verification, or that carries unexpected claims.
var ErrInvalidToken = errors.New("invalid or expired token")

// SessionClaims is what a verified session token asserts about the caller.
type SessionClaims struct {
	UserID string
	Role   string
}

// GenerateSessionToken creates a signed session JWT embedding the user
// ID and role.
func GenerateSessionToken(userID, role string, secret []byte, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"id":   userID,
		"role": role,
		"iat":  now.Unix(),
		"exp":  now.Add(ttl).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// ParseSessionToken verifies a session JWT and extracts its claims.
func ParseSessionToken(tokenStr string, secret []byte) (*SessionClaims, error) {
	claims, err := parseHMAC(tokenStr, secret)
	if err != nil {
		return nil, err
	}

	id, ok := claims["id"].(string)
	if !ok || id == "" {
		return nil, ErrInvalidToken
	}
	role, _ := claims["role"].(string)

	return &SessionClaims{UserID: id, Role: role}, nil
}

// GenerateConfirmationToken creates a short-lived signed JWT embedding
// only the email address it is meant to confirm.
func GenerateConfirmationToken(email string, secret []byte) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"email": email,
		"iat":   now.Unix(),
		"exp":   now.Add(ConfirmationTokenTTL).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// ParseConfirmationToken verifies a confirmation JWT and returns the
// embedded email.
func ParseConfirmationToken(tokenStr string, secret []byte) (string, error) {
	claims, err := parseHMAC(tokenStr, secret)
	if err != nil {
		return "", err
	}

	email, ok := claims["email"].(string)
	if !ok || email == "" {
		return "", ErrInvalidToken
	}
	return email, nil
}

func parseHMAC(tokenStr string, secret []byte) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		// enforce HMAC signing method
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
