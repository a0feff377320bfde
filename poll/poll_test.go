// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package poll

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/danielhkuo/pollhub/models"
	"github.com/danielhkuo/pollhub/testutil"
)

func tallies(choices []models.Choice) map[string]int64 {
	out := make(map[string]int64, len(choices))
	for _, c := range choices {
		out[c.Label] = c.PickCount
	}
	return out
}

// requireConsistent checks every pick_count against the vote log
func requireConsistent(t *testing.T, db *sql.DB) {
	t.Helper()
	rows, err := db.Query(`SELECT label, pick_count FROM choices`)
	require.NoError(t, err)
	defer rows.Close()

	counts := map[string]int64{}
	for rows.Next() {
		var label string
		var n int64
		require.NoError(t, rows.Scan(&label, &n))
		counts[label] = n
	}
	require.NoError(t, rows.Err())

	for label, n := range counts {
		logged := testutil.CountRows(t, db, "vote_log", "choice_label = $1", label)
		require.Equal(t, n, int64(logged), "choice %s", label)
	}
}

func TestListChoices_SeededOrder(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	e := NewEngine(db)
	choices, err := e.ListChoices(context.Background())
	require.NoError(t, err)
	require.Len(t, choices, 3)
	require.Equal(t, "HTML", choices[0].Label)
	require.Equal(t, "CSS", choices[1].Label)
	require.Equal(t, "JavaScript", choices[2].Label)
	for _, c := range choices {
		require.Zero(t, c.PickCount)
	}
}

func TestCastVote(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()
	ctx := context.Background()

	at := time.Date(2025, 4, 2, 15, 4, 5, 0, time.UTC)
	e := NewEngine(db).WithClock(func() time.Time { return at })

	choices, err := e.CastVote(ctx, "CSS")
	require.NoError(t, err)
	require.Equal(t, map[string]int64{"HTML": 0, "CSS": 1, "JavaScript": 0}, tallies(choices))

	log, err := e.RecentLog(ctx, 20)
	require.NoError(t, err)
	require.Len(t, log, 1)
	require.Equal(t, "CSS", log[0].ChoiceLabel)
	require.True(t, log[0].CastAt.Equal(at), "cast_at = %s, want %s", log[0].CastAt, at)

	// Unknown choice: validation error, nothing changes
	_, err = e.CastVote(ctx, "Rust")
	var ve *models.ValidationError
	require.ErrorAs(t, err, &ve)
	require.Equal(t, "choice", ve.Field)

	choices, err = e.ListChoices(ctx)
	require.NoError(t, err)
	require.Equal(t, map[string]int64{"HTML": 0, "CSS": 1, "JavaScript": 0}, tallies(choices))
	require.Equal(t, 1, testutil.CountRows(t, db, "vote_log", ""))

	// Labels are case sensitive
	_, err = e.CastVote(ctx, "css")
	require.ErrorAs(t, err, &ve)

	requireConsistent(t, db)
}

func TestRecentLog(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()
	ctx := context.Background()

	e := NewEngine(db)
	labels := []string{"HTML", "CSS", "JavaScript"}
	for i := 0; i < 25; i++ {
		_, err := e.CastVote(ctx, labels[i%3])
		require.NoError(t, err)
	}

	tests := []struct {
		name  string
		limit int
		want  int
	}{
		{"within cap", 5, 5},
		{"exactly cap", 20, 20},
		{"above cap", 100, 20},
		{"zero means cap", 0, 20},
		{"negative means cap", -3, 20},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log, err := e.RecentLog(ctx, tt.limit)
			require.NoError(t, err)
			require.Len(t, log, tt.want)
		})
	}

	// Newest first: vote 25 was HTML (index 24)
	log, err := e.RecentLog(ctx, 3)
	require.NoError(t, err)
	require.Equal(t, "HTML", log[0].ChoiceLabel)
	require.Equal(t, "JavaScript", log[1].ChoiceLabel)
	require.Equal(t, "CSS", log[2].ChoiceLabel)
	require.Greater(t, log[0].ID, log[1].ID)

	requireConsistent(t, db)
}

func TestResetAll(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()
	ctx := context.Background()

	e := NewEngine(db)
	for _, label := range []string{"HTML", "HTML", "CSS", "JavaScript"} {
		_, err := e.CastVote(ctx, label)
		require.NoError(t, err)
	}

	first, err := e.ResetAll(ctx)
	require.NoError(t, err)
	require.Empty(t, first.Log)
	require.Equal(t, map[string]int64{"HTML": 0, "CSS": 0, "JavaScript": 0}, tallies(first.Choices))

	// Second reset is observably identical
	second, err := e.ResetAll(ctx)
	require.NoError(t, err)
	require.Equal(t, first, second)

	log, err := e.RecentLog(ctx, 20)
	require.NoError(t, err)
	require.Empty(t, log)
	requireConsistent(t, db)

	// Voting works again after a reset
	choices, err := e.CastVote(ctx, "JavaScript")
	require.NoError(t, err)
	require.Equal(t, int64(1), tallies(choices)["JavaScript"])
	requireConsistent(t, db)
}

func TestCastVote_Concurrent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()
	ctx := context.Background()

	e := NewEngine(db)
	const voters = 12

	var wg sync.WaitGroup
	errs := make(chan error, voters)
	for i := 0; i < voters; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := e.CastVote(ctx, "CSS")
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	choices, err := e.ListChoices(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(voters), tallies(choices)["CSS"])
	requireConsistent(t, db)
}

func TestCastVote_CancelledContext(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewEngine(db).CastVote(ctx, "CSS")
	var se *models.StorageError
	require.ErrorAs(t, err, &se)

	requireConsistent(t, db)
	require.Equal(t, 0, testutil.CountRows(t, db, "vote_log", ""))
}
