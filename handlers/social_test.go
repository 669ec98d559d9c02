package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pizzanight/server/models"
	"github.com/pizzanight/server/session"
	"github.com/pizzanight/server/testutil"
)

func TestAddMedia(t *testing.T) {
	addMedia := func(t *testing.T, sess *session.Session, body any) *httptest.ResponseRecorder {
		t.Helper()
		h := NewSocialHandler(sess, testConfig())
		req := testutil.MakeRequest("POST", "/entries/7/media", body)
		req.SetPathValue("id", "7")
		w := httptest.NewRecorder()
		h.AddMedia(w, req)
		return w
	}

	t.Run("attaches to the entry", func(t *testing.T) {
		sess := newTestSession(t)
		seedEntries(t, sess)

		w := addMedia(t, sess, models.MediaAdd{
			Item: models.MediaItem{ID: "m2", URL: "https://example.test/oven.jpg", Type: models.MediaImage},
		})

		testutil.AssertStatus(t, w, http.StatusCreated)
		doc1 := sess.Document()
		if got := len(doc1.EntryByID("7").Media); got != 2 {
			t.Errorf("Expected 2 media items, got %d", got)
		}
	})

	t.Run("generates an id when absent", func(t *testing.T) {
		sess := newTestSession(t)
		seedEntries(t, sess)

		w := addMedia(t, sess, models.MediaAdd{
			Item: models.MediaItem{URL: "https://example.test/team.jpg", Type: models.MediaImage},
		})

		testutil.AssertStatus(t, w, http.StatusCreated)

		var item models.MediaItem
		testutil.AssertJSON(t, w, &item)
		if item.ID == "" {
			t.Error("Handler should assign an id")
		}
		if item.Date.IsZero() {
			t.Error("Handler should assign a date")
		}
	})
}

func TestUpdateMediaRequiresEntryID(t *testing.T) {
	sess := newTestSession(t)
	seedEntries(t, sess)
	h := NewSocialHandler(sess, testConfig())

	req := testutil.MakeRequest("PUT", "/media/m1", map[string]string{"caption": "no entry"})
	req.SetPathValue("mediaId", "m1")
	w := httptest.NewRecorder()
	h.UpdateMedia(w, req)

	testutil.AssertStatus(t, w, http.StatusBadRequest)
}

func TestCommentEndpoints(t *testing.T) {
	sess := newTestSession(t)
	seedEntries(t, sess)
	h := NewSocialHandler(sess, testConfig())

	t.Run("add requires user and text", func(t *testing.T) {
		req := testutil.MakeRequest("POST", "/media/m1/comments", models.CommentAdd{
			Comment: models.Comment{User: "@ana"},
		})
		req.SetPathValue("mediaId", "m1")
		w := httptest.NewRecorder()
		h.AddComment(w, req)
		testutil.AssertStatus(t, w, http.StatusBadRequest)
	})

	t.Run("add assigns an id and lands in the thread", func(t *testing.T) {
		req := testutil.MakeRequest("POST", "/media/m1/comments", models.CommentAdd{
			Comment: models.Comment{User: "@ana", Text: "crispy"},
		})
		req.SetPathValue("mediaId", "m1")
		w := httptest.NewRecorder()
		h.AddComment(w, req)
		testutil.AssertStatus(t, w, http.StatusCreated)

		var c models.Comment
		testutil.AssertJSON(t, w, &c)
		if c.ID == "" {
			t.Fatal("Comment id missing")
		}
		found := false
		for _, got := range sess.Document().Social.Comments["m1"] {
			if got.ID == c.ID {
				found = true
			}
		}
		if !found {
			t.Error("Comment not applied to the document")
		}
	})

	t.Run("edit and delete address by path", func(t *testing.T) {
		req := testutil.MakeRequest("POST", "/media/m1/comments", models.CommentAdd{
			Comment: models.Comment{ID: "cx", User: "@ben", Text: "first draft"},
		})
		req.SetPathValue("mediaId", "m1")
		h.AddComment(httptest.NewRecorder(), req)

		req = testutil.MakeRequest("PUT", "/media/m1/comments/cx", map[string]string{"text": "final draft"})
		req.SetPathValue("mediaId", "m1")
		req.SetPathValue("commentId", "cx")
		w := httptest.NewRecorder()
		h.EditComment(w, req)
		testutil.AssertStatus(t, w, http.StatusOK)

		var edited bool
		for _, c := range sess.Document().Social.Comments["m1"] {
			if c.ID == "cx" && c.Text == "final draft" {
				edited = true
			}
		}
		if !edited {
			t.Error("Edit not applied")
		}

		req = testutil.MakeRequest("DELETE", "/media/m1/comments/cx", nil)
		req.SetPathValue("mediaId", "m1")
		req.SetPathValue("commentId", "cx")
		w = httptest.NewRecorder()
		h.DeleteComment(w, req)
		testutil.AssertStatus(t, w, http.StatusOK)

		for _, c := range sess.Document().Social.Comments["m1"] {
			if c.ID == "cx" {
				t.Error("Comment still present after delete")
			}
		}
	})
}

func TestSetReaction(t *testing.T) {
	sess := newTestSession(t)
	seedEntries(t, sess)
	h := NewSocialHandler(sess, testConfig())

	t.Run("requires userId and emoji", func(t *testing.T) {
		req := testutil.MakeRequest("PUT", "/media/m1/reactions", map[string]string{"userId": "@ana"})
		req.SetPathValue("mediaId", "m1")
		w := httptest.NewRecorder()
		h.SetReaction(w, req)
		testutil.AssertStatus(t, w, http.StatusBadRequest)
	})

	t.Run("stores the reaction", func(t *testing.T) {
		req := testutil.MakeRequest("PUT", "/media/m1/reactions", map[string]string{
			"userId": "@ana", "emoji": "🔥",
		})
		req.SetPathValue("mediaId", "m1")
		w := httptest.NewRecorder()
		h.SetReaction(w, req)
		testutil.AssertStatus(t, w, http.StatusOK)

		if got := sess.Document().Social.Likes["m1"]["@ana"]; got != "🔥" {
			t.Errorf("Expected 🔥, got %q", got)
		}
	})
}

func TestSetPollVote(t *testing.T) {
	sess := newTestSession(t)
	seedEntries(t, sess)
	h := NewSocialHandler(sess, testConfig())

	// Attach a poll to vote on.
	req := testutil.MakeRequest("POST", "/entries/7/media", models.MediaAdd{
		Item: models.MediaItem{
			ID:   "p1",
			Type: models.MediaPoll,
			Poll: &models.Poll{
				Question: "best topping?",
				Options:  []models.PollOption{{ID: "o1", Text: "basil"}, {ID: "o2", Text: "anchovy"}},
			},
		},
	})
	req.SetPathValue("id", "7")
	h.AddMedia(httptest.NewRecorder(), req)

	t.Run("requires userId", func(t *testing.T) {
		req := testutil.MakeRequest("PUT", "/media/p1/poll-votes", map[string]any{"optionIds": []string{"o1"}})
		req.SetPathValue("mediaId", "p1")
		w := httptest.NewRecorder()
		h.SetPollVote(w, req)
		testutil.AssertStatus(t, w, http.StatusBadRequest)
	})

	t.Run("records the ballot", func(t *testing.T) {
		req := testutil.MakeRequest("PUT", "/media/p1/poll-votes", map[string]any{
			"userId": "@ana", "optionIds": []string{"o1"},
		})
		req.SetPathValue("mediaId", "p1")
		w := httptest.NewRecorder()
		h.SetPollVote(w, req)
		testutil.AssertStatus(t, w, http.StatusOK)

		var poll *models.Poll
		doc2 := sess.Document()
		for _, m := range doc2.EntryByID("7").Media {
			if m.ID == "p1" {
				poll = m.Poll
			}
		}
		if poll == nil {
			t.Fatal("Poll missing")
		}
		if got := poll.Votes["@ana"]; len(got) != 1 || got[0] != "o1" {
			t.Errorf("Expected ballot [o1], got %v", got)
		}
	})
}
