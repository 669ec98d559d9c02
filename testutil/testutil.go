package testutil

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/pizzanight/server/localstore"
	"github.com/pizzanight/server/models"
)

// NewStore opens a fresh SQLite store under the test's temp directory and
// closes it with the test.
func NewStore(t *testing.T) *localstore.Store {
	t.Helper()

	store, err := localstore.Open(filepath.Join(t.TempDir(), "pizzanight.db"))
	if err != nil {
		t.Fatalf("Failed to open test store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("Failed to close test store: %v", err)
		}
	})
	return store
}

// SeedDocument returns a small but fully populated document: two entries
// with votes from two users, one media item with a comment thread and a
// reaction, and two accounts.
func SeedDocument() models.Document {
	return models.Document{
		Entries: []models.Entry{
			{
				ID:               "7",
				SavoryAppearance: map[string]float64{"@ana": 7, "@ben": 8},
				SavoryTaste:      map[string]float64{"@ana": 9, "@ben": 6.5},
				SavoryBonus:      map[string]int{"@ana": 1},
				ConfirmedVotes:   map[string]bool{"@ana": true},
				Notes:            "wood-fired",
				Media: []models.MediaItem{
					{
						ID:       "m1",
						URL:      "https://example.test/margherita.jpg",
						Type:     models.MediaImage,
						Category: models.MediaCategoryPizza,
						Date:     time.Date(2026, 8, 1, 19, 0, 0, 0, time.UTC),
					},
				},
			},
			{
				ID:            "8",
				SweetTaste:    map[string]float64{"@ana": 8},
				SweetBonus:    map[string]int{"@ben": 2},
				ScheduledDate: "2026-09-04",
			},
		},
		Social: models.SocialData{
			Likes: map[string]map[string]string{
				"m1": {"@ben": "🔥"},
			},
			Comments: map[string][]models.Comment{
				"m1": {
					{
						ID:   "c1",
						User: "@ana",
						Text: "crust of the year",
						Date: time.Date(2026, 8, 1, 19, 5, 0, 0, time.UTC),
						Replies: []models.Reply{
							{ID: "r1", User: "@ben", Text: "agreed", Date: time.Date(2026, 8, 1, 19, 6, 0, 0, time.UTC)},
						},
					},
				},
			},
		},
		Users: []models.UserAccount{
			{Nickname: "@ana", Password: "1234", IsVerified: true},
			{Nickname: "@ben", Password: "4321"},
		},
	}
}

// MakeRequest creates an HTTP test request with an optional JSON body.
func MakeRequest(method, path string, body interface{}) *http.Request {
	if body == nil {
		return httptest.NewRequest(method, path, nil)
	}
	jsonBody, _ := json.Marshal(body)
	req := httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
	req.Header.Set("Content-Type", "application/json")
	return req
}

// AssertStatus checks that the response has the expected status code.
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct.
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
