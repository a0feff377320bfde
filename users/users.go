// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package users is the credential store: user records and password checks.
package users

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/danielhkuo/pollhub/auth"
	"github.com/danielhkuo/pollhub/models"
)

// ErrUserNotFound is returned by lookups that match no row
var ErrUserNotFound = errors.New("user not found")

type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// FindByUsername looks up a user. No side effects.
func (s *Store) FindByUsername(ctx context.Context, username string) (models.User, error) {
	var u models.User
	var role string
	err := s.db.QueryRowContext(ctx, `
		SELECT id, username, password_hash, role FROM users WHERE username = $1
	`, username).Scan(&u.ID, &u.Username, &u.PasswordHash, &role)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, ErrUserNotFound
	}
	if err != nil {
		return models.User{}, models.Storage("users.find", err)
	}
	u.Role = models.Role(role)
	return u, nil
}

// Create provisions a user with a freshly hashed password
func (s *Store) Create(ctx context.Context, username, password string, role models.Role) (models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return models.User{}, &models.ValidationError{Field: "username", Message: "is required"}
	}
	if password == "" {
		return models.User{}, &models.ValidationError{Field: "password", Message: "is required"}
	}
	if !role.Valid() {
		return models.User{}, &models.ValidationError{Field: "role", Message: "must be admin or user"}
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return models.User{}, err
	}

	u := models.User{Username: username, PasswordHash: hash, Role: role}
	err = s.db.QueryRowContext(ctx, `
		INSERT INTO users (username, password_hash, role)
		VALUES ($1, $2, $3)
		RETURNING id
	`, u.Username, u.PasswordHash, string(u.Role)).Scan(&u.ID)
	if err != nil {
		return models.User{}, models.Storage("users.create", err)
	}
	return u, nil
}

// VerifyPassword checks plaintext against the stored hash in constant time
func (s *Store) VerifyPassword(plain, storedHash string) bool {
	return auth.VerifyPassword(plain, storedHash)
}
