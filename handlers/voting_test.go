// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/danielhkuo/pollhub/models"
	"github.com/danielhkuo/pollhub/testutil"
)

func TestCastVote(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	handler := NewPollHandler(db)

	tests := []struct {
		name           string
		body           interface{}
		expectedStatus int
		expectedTally  map[string]int64
	}{
		{
			name:           "valid vote",
			body:           models.CastVoteRequest{Choice: "CSS"},
			expectedStatus: http.StatusOK,
			expectedTally:  map[string]int64{"HTML": 0, "CSS": 1, "JavaScript": 0},
		},
		{
			name:           "unknown choice",
			body:           models.CastVoteRequest{Choice: "Rust"},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "missing choice",
			body:           map[string]string{},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "second vote for the same choice",
			body:           models.CastVoteRequest{Choice: "CSS"},
			expectedStatus: http.StatusOK,
			expectedTally:  map[string]int64{"HTML": 0, "CSS": 2, "JavaScript": 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testutil.MakeRequest("POST", "/poll/votes", tt.body, nil)
			w := httptest.NewRecorder()

			handler.CastVote(w, req)

			testutil.AssertStatus(t, w, tt.expectedStatus)
			if tt.expectedTally == nil {
				return
			}

			var resp models.CastVoteResponse
			testutil.AssertJSON(t, w, &resp)
			got := tally(resp.Choices)
			for label, n := range tt.expectedTally {
				if got[label] != n {
					t.Errorf("Expected %s=%d, got %d", label, n, got[label])
				}
			}
		})
	}

	// Rejected votes left no trace
	if n := testutil.CountRows(t, db, "vote_log", ""); n != 2 {
		t.Errorf("Expected 2 log rows, got %d", n)
	}
}

func TestCastVoteInvalidJSON(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	handler := NewPollHandler(db)

	req := httptest.NewRequest("POST", "/poll/votes", strings.NewReader("{choice:"))
	w := httptest.NewRecorder()
	handler.CastVote(w, req)

	testutil.AssertStatus(t, w, http.StatusBadRequest)
}

func TestCastVoteStorageFailure(t *testing.T) {
	db := testutil.SetupTestDB(t)
	handler := NewPollHandler(db)
	db.Close()

	req := testutil.MakeRequest("POST", "/poll/votes", models.CastVoteRequest{Choice: "CSS"}, nil)
	w := httptest.NewRecorder()
	handler.CastVote(w, req)

	testutil.AssertStatus(t, w, http.StatusInternalServerError)

	var resp models.ErrorResponse
	testutil.AssertJSON(t, w, &resp)
	if resp.Message != "internal error" {
		t.Errorf("Expected generic message, got %q", resp.Message)
	}
}
