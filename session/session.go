// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package session

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/danielhkuo/pollhub/auth"
	"github.com/danielhkuo/pollhub/metrics"
	"github.com/danielhkuo/pollhub/models"
	"github.com/danielhkuo/pollhub/users"
)

// Credentials is what the guard needs from the credential store
type Credentials interface {
	FindByUsername(ctx context.Context, username string) (models.User, error)
	VerifyPassword(plain, storedHash string) bool
}

type Guard struct {
	db     *sql.DB
	creds  Credentials
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewGuard(db *sql.DB, creds Credentials, secret string, ttl time.Duration) *Guard {
	return &Guard{
		db:     db,
		creds:  creds,
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
	}
}

// WithClock replaces the time source
func (g *Guard) WithClock(now func() time.Time) *Guard {
	g.now = now
	return g
}

// Authenticate checks credentials and issues a session bound to the user.
// Unknown users and wrong passwords both return models.ErrAuth.
func (g *Guard) Authenticate(ctx context.Context, username, password string) (models.Session, error) {
	u, err := g.creds.FindByUsername(ctx, username)
	if errors.Is(err, users.ErrUserNotFound) {
		auth.BurnPasswordCheck(password)
		metrics.LoginAttempts.WithLabelValues("failure").Inc()
		return models.Session{}, models.ErrAuth
	}
	if err != nil {
		return models.Session{}, models.Storage("session.authenticate", err)
	}

	if !g.creds.VerifyPassword(password, u.PasswordHash) {
		metrics.LoginAttempts.WithLabelValues("failure").Inc()
		return models.Session{}, models.ErrAuth
	}

	now := g.now().UTC()
	s := models.Session{
		ID:        uuid.NewString(),
		Identity:  models.Identity{UserID: u.ID, Username: u.Username, Role: u.Role},
		ExpiresAt: now.Add(g.ttl),
	}
	s.Token, err = auth.IssueToken(g.secret, s.ID, s.Identity, now, s.ExpiresAt)
	if err != nil {
		return models.Session{}, err
	}

	metrics.LoginAttempts.WithLabelValues("success").Inc()
	slog.Info("session issued", "user_id", u.ID, "role", u.Role)
	return s, nil
}

// Resolve maps a token to an identity. ok is false for the anonymous case:
// no token, bad signature, expired, or revoked. err is only set when the
// revocation lookup itself fails.
func (g *Guard) Resolve(ctx context.Context, token string) (id models.Identity, ok bool, err error) {
	if token == "" {
		return models.Identity{}, false, nil
	}

	claims, err := auth.ParseToken(g.secret, token, g.now())
	if err != nil {
		return models.Identity{}, false, nil
	}

	var revoked bool
	err = g.db.QueryRowContext(ctx, `
		SELECT EXISTS(SELECT 1 FROM revoked_sessions WHERE session_id = $1)
	`, claims.ID).Scan(&revoked)
	if err != nil {
		return models.Identity{}, false, models.Storage("session.resolve", err)
	}
	if revoked {
		return models.Identity{}, false, nil
	}

	id, err = claims.Identity()
	if err != nil {
		return models.Identity{}, false, nil
	}
	return id, true, nil
}

// Destroy revokes the session behind token. Tokens that are already invalid
// need no record. Expired revocations are purged on the way.
func (g *Guard) Destroy(ctx context.Context, token string) error {
	now := g.now().UTC()

	claims, err := auth.ParseToken(g.secret, token, now)
	if err != nil {
		return nil
	}

	tx, err := g.db.BeginTx(ctx, nil)
	if err != nil {
		return models.Storage("session.destroy", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO revoked_sessions (session_id, expires_at)
		VALUES ($1, $2)
		ON CONFLICT (session_id) DO NOTHING
	`, claims.ID, claims.ExpiresAt.Time.UTC())
	if err != nil {
		return models.Storage("session.destroy", err)
	}

	// A revocation only matters until the token would have expired anyway
	_, err = tx.ExecContext(ctx, `DELETE FROM revoked_sessions WHERE expires_at < $1`, now)
	if err != nil {
		return models.Storage("session.destroy", err)
	}

	if err := tx.Commit(); err != nil {
		return models.Storage("session.destroy", err)
	}

	slog.Info("session destroyed", "user_id", claims.Subject)
	return nil
}

// RequireRole allows id only when it is present and holds one of allowed.
// Anonymous callers get models.ErrUnauthenticated, wrong roles models.ErrForbidden.
func RequireRole(id *models.Identity, allowed ...models.Role) error {
	if id == nil {
		return models.ErrUnauthenticated
	}
	for _, r := range allowed {
		if id.Role == r {
			return nil
		}
	}
	return models.ErrForbidden
}
