// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/danielhkuo/pollhub/models"
	"github.com/danielhkuo/pollhub/testutil"
)

func TestParticipate(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	handler := NewParticipationHandler(db)
	eventID := testutil.CreateTestEvent(t, db, "Dinner", models.FieldSchema{
		{Name: "dietary", Type: models.FieldString},
		{Name: "guests", Type: models.FieldInteger},
	})
	idStr := strconv.FormatInt(eventID, 10)
	u := testutil.CreateTestUser(t, db, "eve", models.RoleUser)

	tests := []struct {
		name            string
		id              string
		body            interface{}
		expectedStatus  int
		expectedCreated bool
	}{
		{
			name:            "first registration",
			id:              idStr,
			body:            map[string]interface{}{"status": "going", "fields": map[string]interface{}{"dietary": "vegan"}},
			expectedStatus:  http.StatusCreated,
			expectedCreated: true,
		},
		{
			name:           "update keeps one record",
			id:             idStr,
			body:           map[string]interface{}{"status": "maybe", "fields": map[string]interface{}{"dietary": "vegan", "guests": "2"}},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "unknown field",
			id:             idStr,
			body:           map[string]interface{}{"status": "going", "fields": map[string]interface{}{"shoe": "42"}},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "wrong type",
			id:             idStr,
			body:           map[string]interface{}{"status": "going", "fields": map[string]interface{}{"guests": "many"}},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "missing status",
			id:             idStr,
			body:           map[string]interface{}{},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "missing event",
			id:             "99999",
			body:           map[string]interface{}{"status": "going"},
			expectedStatus: http.StatusNotFound,
		},
	}

	var firstID int64
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testutil.MakeRequest("PUT", "/events/"+tt.id+"/participation", tt.body, nil)
			req.SetPathValue("id", tt.id)
			w := httptest.NewRecorder()

			handler.Participate(w, asCaller(req, u))

			testutil.AssertStatus(t, w, tt.expectedStatus)
			if tt.expectedStatus >= 300 {
				return
			}

			var resp models.ParticipateResponse
			testutil.AssertJSON(t, w, &resp)
			if resp.Created != tt.expectedCreated {
				t.Errorf("Expected created=%v, got %v", tt.expectedCreated, resp.Created)
			}
			if firstID == 0 {
				firstID = resp.ParticipationID
			} else if resp.ParticipationID != firstID {
				t.Errorf("Expected same participation %d, got %d", firstID, resp.ParticipationID)
			}
		})
	}

	if n := testutil.CountRows(t, db, "event_participants", ""); n != 1 {
		t.Errorf("Expected exactly 1 participation, got %d", n)
	}

	// The caller's own view reflects the last write
	w := httptest.NewRecorder()
	handler.ListMine(w, asCaller(httptest.NewRequest("GET", "/participations/me", nil), u))
	testutil.AssertStatus(t, w, http.StatusOK)

	var mine []models.ParticipationWithEvent
	testutil.AssertJSON(t, w, &mine)
	if len(mine) != 1 {
		t.Fatalf("Expected 1 participation, got %d", len(mine))
	}
	if mine[0].Status != "maybe" {
		t.Errorf("Expected status 'maybe', got %q", mine[0].Status)
	}
	if n, ok := mine[0].Fields["guests"].Int(); !ok || n != 2 {
		t.Errorf("Expected guests=2 stored as integer, got %v", mine[0].Fields["guests"])
	}
	if mine[0].Event.Name != "Dinner" {
		t.Errorf("Expected joined event 'Dinner', got %q", mine[0].Event.Name)
	}
}

func TestParticipateRequiresCaller(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	handler := NewParticipationHandler(db)
	req := testutil.MakeRequest("PUT", "/events/1/participation", models.ParticipateRequest{Status: "going"}, nil)
	req.SetPathValue("id", "1")
	w := httptest.NewRecorder()

	handler.Participate(w, req)

	testutil.AssertStatus(t, w, http.StatusUnauthorized)
}

func TestListParticipations(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer db.Close()

	handler := NewParticipationHandler(db)
	e1 := testutil.CreateTestEvent(t, db, "One", nil)
	e2 := testutil.CreateTestEvent(t, db, "Two", nil)
	alice := testutil.CreateTestUser(t, db, "alice", models.RoleUser)
	bob := testutil.CreateTestUser(t, db, "bob", models.RoleUser)

	register := func(eventID int64, u models.User) {
		idStr := strconv.FormatInt(eventID, 10)
		req := testutil.MakeRequest("PUT", "/events/"+idStr+"/participation", models.ParticipateRequest{Status: "going"}, nil)
		req.SetPathValue("id", idStr)
		w := httptest.NewRecorder()
		handler.Participate(w, asCaller(req, u))
		testutil.AssertStatus(t, w, http.StatusCreated)
	}
	register(e1, alice)
	register(e2, alice)
	register(e1, bob)

	// Each user only sees their own
	w := httptest.NewRecorder()
	handler.ListMine(w, asCaller(httptest.NewRequest("GET", "/participations/me", nil), bob))
	var mine []models.ParticipationWithEvent
	testutil.AssertJSON(t, w, &mine)
	if len(mine) != 1 || mine[0].UserID != bob.ID {
		t.Errorf("Expected only bob's participation, got %+v", mine)
	}

	// The admin view covers everyone
	w = httptest.NewRecorder()
	handler.ListAll(w, httptest.NewRequest("GET", "/participations", nil))
	testutil.AssertStatus(t, w, http.StatusOK)

	var all []models.ParticipationDetails
	testutil.AssertJSON(t, w, &all)
	if len(all) != 3 {
		t.Fatalf("Expected 3 participations, got %d", len(all))
	}
	for _, d := range all {
		if d.Username == "" || d.Event.Name == "" {
			t.Errorf("Expected joined user and event, got %+v", d)
		}
	}
}
