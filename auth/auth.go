// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/danielhkuo/pollhub/models"
)

var (
	ErrInvalidToken = errors.New("invalid session token")
	ErrEmptySecret  = errors.New("session secret is empty")
)

// BcryptCost is the work factor for new password hashes.
// Tests lower it to bcrypt.MinCost.
var BcryptCost = bcrypt.DefaultCost

// HashPassword creates a salted bcrypt hash of the plaintext password
func HashPassword(plain string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), BcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(b), nil
}

// VerifyPassword reports whether plain matches the stored hash.
// bcrypt compares in constant time.
func VerifyPassword(plain, storedHash string) bool {
	if storedHash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(storedHash), []byte(plain)) == nil
}

var (
	dummyOnce sync.Once
	dummyHash string
)

// BurnPasswordCheck spends the same work as VerifyPassword so a lookup miss
// costs as much as a wrong password
func BurnPasswordCheck(plain string) {
	dummyOnce.Do(func() {
		b, err := bcrypt.GenerateFromPassword([]byte("pollhub-dummy-password"), BcryptCost)
		if err == nil {
			dummyHash = string(b)
		}
	})
	VerifyPassword(plain, dummyHash)
}

// Claims carried by a session token. Subject is the user id, ID the session id.
type Claims struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// Identity converts verified claims back to the principal
func (c *Claims) Identity() (models.Identity, error) {
	uid, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil {
		return models.Identity{}, ErrInvalidToken
	}
	role := models.Role(c.Role)
	if !role.Valid() {
		return models.Identity{}, ErrInvalidToken
	}
	return models.Identity{UserID: uid, Username: c.Username, Role: role}, nil
}

// IssueToken signs an HS256 session token for id valid until expiresAt
func IssueToken(secret []byte, sessionID string, id models.Identity, issuedAt, expiresAt time.Time) (string, error) {
	if len(secret) == 0 {
		return "", ErrEmptySecret
	}
	claims := Claims{
		Username: id.Username,
		Role:     string(id.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        sessionID,
			Subject:   strconv.FormatInt(id.UserID, 10),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}
	return signed, nil
}

// ParseToken verifies signature and expiry against now
func ParseToken(secret []byte, token string, now time.Time) (*Claims, error) {
	if len(secret) == 0 {
		return nil, ErrEmptySecret
	}
	var claims Claims
	parsed, err := jwt.ParseWithClaims(token, &claims,
		func(t *jwt.Token) (any, error) { return secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	if claims.ID == "" {
		return nil, ErrInvalidToken
	}
	return &claims, nil
}
