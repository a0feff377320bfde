// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/danielhkuo/pollhub/auth"
	"github.com/danielhkuo/pollhub/cliparse"
	"github.com/danielhkuo/pollhub/db"
	"github.com/danielhkuo/pollhub/models"
)

// TestDBURLEnv names the env variable that points tests at a live Postgres.
// Unset, every test gets its own SQLite file.
const TestDBURLEnv = "TEST_DATABASE_URL"

// TestSecret signs session tokens in tests
const TestSecret = "test-session-secret"

func init() {
	// Full bcrypt cost makes the suite crawl
	auth.BcryptCost = bcrypt.MinCost
}

// SetupTestDB creates a fresh test database with the full schema and default choices
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	ctx := context.Background()

	dialect := db.SQLite
	url := filepath.Join(t.TempDir(), "pollhub_test.db")
	if pg := os.Getenv(TestDBURLEnv); pg != "" {
		dialect, url = db.Postgres, pg
	}

	conn, err := db.Open(ctx, dialect, url)
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	if dialect == db.Postgres {
		// Clean up tables before each test
		_, err = conn.Exec(`
			DROP TABLE IF EXISTS event_participants CASCADE;
			DROP TABLE IF EXISTS events CASCADE;
			DROP TABLE IF EXISTS vote_log CASCADE;
			DROP TABLE IF EXISTS choices CASCADE;
			DROP TABLE IF EXISTS revoked_sessions CASCADE;
			DROP TABLE IF EXISTS users CASCADE;
			DROP TABLE IF EXISTS schema_migrations CASCADE;
		`)
		if err != nil {
			t.Fatalf("Failed to clean database: %v", err)
		}
	}

	if err := db.Migrate(ctx, conn, dialect); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}
	if err := db.Seed(ctx, conn, db.SeedData{Choices: db.DefaultChoices}); err != nil {
		t.Fatalf("Failed to seed choices: %v", err)
	}

	return conn
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:          3318,
		DatabaseURL:   "file:test.db",
		DatabaseType:  "sqlite",
		SessionSecret: TestSecret,
		SessionTTL:    time.Hour,
		CORSOrigins:   []string{"*"},
	}
}

// TestPassword is the password CreateTestUser gives every account
func TestPassword(username string) string {
	return "pw-" + username
}

// CreateTestUser inserts a user whose password is TestPassword(username)
func CreateTestUser(t *testing.T, conn *sql.DB, username string, role models.Role) models.User {
	t.Helper()

	hash, err := auth.HashPassword(TestPassword(username))
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}

	u := models.User{Username: username, PasswordHash: hash, Role: role}
	err = conn.QueryRow(`
		INSERT INTO users (username, password_hash, role)
		VALUES ($1, $2, $3)
		RETURNING id
	`, username, hash, string(role)).Scan(&u.ID)
	if err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}

	return u
}

// CreateTestEvent inserts an event and returns its ID
func CreateTestEvent(t *testing.T, conn *sql.DB, name string, schema models.FieldSchema) int64 {
	t.Helper()

	var id int64
	err := conn.QueryRow(`
		INSERT INTO events (name, date, location, type, custom_field_schema)
		VALUES ($1, '2025-06-01', 'Main Hall', 'meetup', $2)
		RETURNING id
	`, name, schema).Scan(&id)
	if err != nil {
		t.Fatalf("Failed to create test event: %v", err)
	}

	return id
}

// CountRows returns the number of rows in table matching an optional WHERE clause
func CountRows(t *testing.T, conn *sql.DB, table, where string, args ...any) int {
	t.Helper()

	q := "SELECT COUNT(*) FROM " + table
	if where != "" {
		q += " WHERE " + where
	}
	var n int
	if err := conn.QueryRow(q, args...).Scan(&n); err != nil {
		t.Fatalf("Failed to count %s: %v", table, err)
	}
	return n
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// BearerHeader builds the Authorization header for a session token
func BearerHeader(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
