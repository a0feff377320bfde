// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package session

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/danielhkuo/pollhub/models"
	"github.com/danielhkuo/pollhub/testutil"
	"github.com/danielhkuo/pollhub/users"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func newTestGuard(t *testing.T) (*Guard, *sql.DB, *clock) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	c := &clock{t: time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC)}
	g := NewGuard(db, users.NewStore(db), testutil.TestSecret, time.Hour).WithClock(c.now)
	return g, db, c
}

func TestAuthenticate(t *testing.T) {
	g, db, _ := newTestGuard(t)
	defer db.Close()
	ctx := context.Background()

	u := testutil.CreateTestUser(t, db, "alice", models.RoleAdmin)

	s, err := g.Authenticate(ctx, "alice", testutil.TestPassword("alice"))
	require.NoError(t, err)
	require.NotEmpty(t, s.Token)
	require.NotEmpty(t, s.ID)
	require.Equal(t, models.Identity{UserID: u.ID, Username: "alice", Role: models.RoleAdmin}, s.Identity)
	require.Equal(t, time.Date(2025, 5, 1, 10, 0, 0, 0, time.UTC), s.ExpiresAt)

	// Both failure causes look identical to the caller
	_, errWrongPw := g.Authenticate(ctx, "alice", "nope")
	_, errNoUser := g.Authenticate(ctx, "mallory", "nope")
	require.ErrorIs(t, errWrongPw, models.ErrAuth)
	require.ErrorIs(t, errNoUser, models.ErrAuth)
	require.Equal(t, errWrongPw.Error(), errNoUser.Error())
}

func TestResolve(t *testing.T) {
	g, db, c := newTestGuard(t)
	defer db.Close()
	ctx := context.Background()

	testutil.CreateTestUser(t, db, "bob", models.RoleUser)
	s, err := g.Authenticate(ctx, "bob", testutil.TestPassword("bob"))
	require.NoError(t, err)

	id, ok, err := g.Resolve(ctx, s.Token)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, s.Identity, id)

	tests := []struct {
		name  string
		token string
	}{
		{"empty token", ""},
		{"garbage token", "abc.def.ghi"},
		{"tampered token", s.Token[:len(s.Token)-2] + "xx"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok, err := g.Resolve(ctx, tt.token)
			require.NoError(t, err)
			require.False(t, ok)
		})
	}

	// Past the fixed expiry the session is anonymous
	c.t = c.t.Add(time.Hour + time.Second)
	_, ok, err = g.Resolve(ctx, s.Token)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestResolve_OtherSecret(t *testing.T) {
	g, db, c := newTestGuard(t)
	defer db.Close()
	ctx := context.Background()

	testutil.CreateTestUser(t, db, "bob", models.RoleUser)
	s, err := g.Authenticate(ctx, "bob", testutil.TestPassword("bob"))
	require.NoError(t, err)

	other := NewGuard(db, users.NewStore(db), "another-secret", time.Hour).WithClock(c.now)
	_, ok, err := other.Resolve(ctx, s.Token)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestDestroy(t *testing.T) {
	g, db, _ := newTestGuard(t)
	defer db.Close()
	ctx := context.Background()

	testutil.CreateTestUser(t, db, "carol", models.RoleUser)
	s1, err := g.Authenticate(ctx, "carol", testutil.TestPassword("carol"))
	require.NoError(t, err)
	s2, err := g.Authenticate(ctx, "carol", testutil.TestPassword("carol"))
	require.NoError(t, err)

	require.NoError(t, g.Destroy(ctx, s1.Token))

	_, ok, err := g.Resolve(ctx, s1.Token)
	require.NoError(t, err)
	require.False(t, ok, "destroyed session must resolve to anonymous")

	// Other sessions of the same user survive
	_, ok, err = g.Resolve(ctx, s2.Token)
	require.NoError(t, err)
	require.True(t, ok)

	// Destroying twice or destroying junk is harmless
	require.NoError(t, g.Destroy(ctx, s1.Token))
	require.NoError(t, g.Destroy(ctx, "junk"))
	require.Equal(t, 1, testutil.CountRows(t, db, "revoked_sessions", ""))
}

func TestDestroy_PurgesExpiredRevocations(t *testing.T) {
	g, db, c := newTestGuard(t)
	defer db.Close()
	ctx := context.Background()

	testutil.CreateTestUser(t, db, "dave", models.RoleUser)
	old, err := g.Authenticate(ctx, "dave", testutil.TestPassword("dave"))
	require.NoError(t, err)
	require.NoError(t, g.Destroy(ctx, old.Token))

	c.t = c.t.Add(2 * time.Hour)
	fresh, err := g.Authenticate(ctx, "dave", testutil.TestPassword("dave"))
	require.NoError(t, err)
	require.NoError(t, g.Destroy(ctx, fresh.Token))

	require.Equal(t, 0, testutil.CountRows(t, db, "revoked_sessions", "session_id = $1", old.ID))
	require.Equal(t, 1, testutil.CountRows(t, db, "revoked_sessions", "session_id = $1", fresh.ID))
}

func TestRequireRole(t *testing.T) {
	admin := &models.Identity{UserID: 1, Username: "admin", Role: models.RoleAdmin}
	user := &models.Identity{UserID: 2, Username: "user", Role: models.RoleUser}

	tests := []struct {
		name    string
		id      *models.Identity
		allowed []models.Role
		want    error
	}{
		{"anonymous on user route", nil, []models.Role{models.RoleAdmin, models.RoleUser}, models.ErrUnauthenticated},
		{"anonymous on admin route", nil, []models.Role{models.RoleAdmin}, models.ErrUnauthenticated},
		{"user on user route", user, []models.Role{models.RoleAdmin, models.RoleUser}, nil},
		{"user on admin route", user, []models.Role{models.RoleAdmin}, models.ErrForbidden},
		{"admin on user route", admin, []models.Role{models.RoleAdmin, models.RoleUser}, nil},
		{"admin on admin route", admin, []models.Role{models.RoleAdmin}, nil},
		{"empty allow list", admin, nil, models.ErrForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, RequireRole(tt.id, tt.allowed...))
		})
	}
}
