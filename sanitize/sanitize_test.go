package sanitize

import (
	"math"
	"reflect"
	"testing"

	"github.com/pizzanight/server/models"
)

func TestStripMarkup(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		expected string
	}{
		{"plain text untouched", "crust of the year", "crust of the year"},
		{"emoji untouched", "🔥🍕", "🔥🍕"},
		{"tag removed", "hello <b>world</b>", "hello world"},
		{"script removed", "<script>alert(1)</script>ok", "alert(1)ok"},
		{"unterminated tag drops the rest", "before <img src=x onerror=", "before"},
		{"control characters dropped", "a\x00b\x01c", "abc"},
		{"newline survives", "line one\nline two", "line one\nline two"},
		{"tab survives", "col\tcol", "col\tcol"},
		{"delete char dropped", "a\x7fb", "ab"},
		{"empty string", "", ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := StripMarkup(tc.input); got != tc.expected {
				t.Errorf("StripMarkup(%q) = %q, expected %q", tc.input, got, tc.expected)
			}
		})
	}
}

func TestScore(t *testing.T) {
	testCases := []struct {
		name     string
		input    float64
		expected float64
	}{
		{"in range", 7.5, 7.5},
		{"zero is a valid score", 0, 0},
		{"upper bound", 10, 10},
		{"clamped high", 99, 10},
		{"clamped low", -0.5, 0},
		{"NaN collapses", math.NaN(), 0},
		{"positive infinity collapses", math.Inf(1), 0},
		{"negative infinity collapses", math.Inf(-1), 0},
		{"deletion sentinel passes through", models.DeleteScore, models.DeleteScore},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Score(tc.input); got != tc.expected {
				t.Errorf("Score(%v) = %v, expected %v", tc.input, got, tc.expected)
			}
		})
	}
}

func TestDocument(t *testing.T) {
	doc := models.Document{
		Entries: []models.Entry{
			{
				ID:            "7",
				Notes:         "good <script>x</script>pizza",
				ScheduledDate: "2026-09-04",
				SavoryTaste:   map[string]float64{"@ana": math.NaN()},
				UserNotes:     map[string]string{"@ana": "too <b>salty</b>"},
				Media: []models.MediaItem{
					{
						ID:      "m1",
						Caption: "oven <i>shot</i>",
						Poll: &models.Poll{
							Question: "best<br>topping?",
							Options:  []models.PollOption{{ID: "o1", Text: "basil<hr>"}},
						},
					},
				},
			},
		},
		Social: models.SocialData{
			Likes: map[string]map[string]string{
				"m1": {"@ben": "🔥<img>"},
			},
			Comments: map[string][]models.Comment{
				"m1": {
					{
						ID:        "c1",
						User:      "@ana<b>",
						Text:      "crust <u>report</u>",
						Reactions: map[string]string{"@ben": "👍<s>"},
						Replies: []models.Reply{
							{ID: "r1", User: "@ben", Text: "agreed<p>"},
						},
					},
				},
			},
		},
		Users: []models.UserAccount{
			{Nickname: "@ana<script>", Phone: "555<b>0100"},
		},
	}

	out := Document(doc)

	if got := out.Entries[0].Notes; got != "good pizza" {
		t.Errorf("Notes not cleaned: %q", got)
	}
	if got := out.Entries[0].UserNotes["@ana"]; got != "too salty" {
		t.Errorf("User note not cleaned: %q", got)
	}
	if got := out.Entries[0].SavoryTaste["@ana"]; got != 0 {
		t.Errorf("Non-finite score must collapse to 0, got %v", got)
	}
	if got := out.Entries[0].Media[0].Caption; got != "oven shot" {
		t.Errorf("Caption not cleaned: %q", got)
	}
	if got := out.Entries[0].Media[0].Poll.Question; got != "besttopping?" {
		t.Errorf("Poll question not cleaned: %q", got)
	}
	if got := out.Entries[0].Media[0].Poll.Options[0].Text; got != "basil" {
		t.Errorf("Poll option not cleaned: %q", got)
	}
	if got := out.Social.Likes["m1"]["@ben"]; got != "🔥" {
		t.Errorf("Reaction emoji not cleaned: %q", got)
	}
	if got := out.Social.Comments["m1"][0].Text; got != "crust report" {
		t.Errorf("Comment not cleaned: %q", got)
	}
	if got := out.Social.Comments["m1"][0].Replies[0].Text; got != "agreed" {
		t.Errorf("Reply not cleaned: %q", got)
	}
	if got := out.Users[0].Nickname; got != "@ana" {
		t.Errorf("Nickname not cleaned: %q", got)
	}

	// Cleaning works on a clone; the input stays dirty.
	if doc.Entries[0].Notes != "good <script>x</script>pizza" {
		t.Error("Document must not mutate its input")
	}
}

func TestDelta(t *testing.T) {
	t.Run("vote value is clamped", func(t *testing.T) {
		out := Delta(models.VoteSet{EntryID: "7", UserID: "@ana", Value: 42}).(models.VoteSet)
		if out.Value != 10 {
			t.Errorf("Expected clamped value 10, got %v", out.Value)
		}
	})

	t.Run("sentinel survives the clamp", func(t *testing.T) {
		out := Delta(models.VoteSet{Value: models.DeleteScore}).(models.VoteSet)
		if out.Value != models.DeleteScore {
			t.Errorf("Deletion sentinel must pass through, got %v", out.Value)
		}
	})

	t.Run("note text is stripped", func(t *testing.T) {
		out := Delta(models.GlobalNoteSet{Notes: "fine <script>evil()</script>crust"}).(models.GlobalNoteSet)
		if out.Notes != "fine crust" {
			t.Errorf("Expected stripped notes, got %q", out.Notes)
		}
	})

	t.Run("comment is cleaned", func(t *testing.T) {
		out := Delta(models.CommentAdd{
			MediaID: "m1",
			Comment: models.Comment{ID: "c1", User: "@ana<b>", Text: "nice<i>!"},
		}).(models.CommentAdd)
		if out.Comment.User != "@ana" || out.Comment.Text != "nice!" {
			t.Errorf("Comment not cleaned: %+v", out.Comment)
		}
	})

	t.Run("caption pointer is rewritten", func(t *testing.T) {
		dirty := "oven <img>shot"
		out := Delta(models.MediaUpdate{MediaID: "m1", Caption: &dirty}).(models.MediaUpdate)
		if *out.Caption != "oven shot" {
			t.Errorf("Expected cleaned caption, got %q", *out.Caption)
		}
		if dirty != "oven <img>shot" {
			t.Error("Original caption string must not be rewritten in place")
		}
	})

	t.Run("kinds without text pass through", func(t *testing.T) {
		in := models.DeleteEntry{EntryID: "7"}
		out := Delta(in)
		if !reflect.DeepEqual(out, in) {
			t.Errorf("Expected pass-through, got %+v", out)
		}
	})
}

type scrubCycle struct {
	Name string      `json:"name"`
	Self *scrubCycle `json:"self,omitempty"`
}

func TestScrub(t *testing.T) {
	t.Run("functions and channels are dropped", func(t *testing.T) {
		in := map[string]any{
			"ok":   "value",
			"fn":   func() {},
			"ch":   make(chan int),
			"nest": []any{1.0, func() {}},
		}
		out := Scrub(in).(map[string]any)

		if out["ok"] != "value" {
			t.Errorf("Plain value lost: %v", out["ok"])
		}
		if out["fn"] != nil || out["ch"] != nil {
			t.Error("Functions and channels must scrub to nil")
		}
		nest := out["nest"].([]any)
		if nest[0] != 1.0 || nest[1] != nil {
			t.Errorf("Nested scrub wrong: %v", nest)
		}
	})

	t.Run("non-finite floats collapse", func(t *testing.T) {
		out := Scrub(map[string]any{"nan": math.NaN(), "inf": math.Inf(1)}).(map[string]any)
		if out["nan"] != float64(0) || out["inf"] != float64(0) {
			t.Errorf("Non-finite floats must scrub to 0: %v", out)
		}
	})

	t.Run("reference cycles are cut", func(t *testing.T) {
		node := &scrubCycle{Name: "loop"}
		node.Self = node

		out := Scrub(node).(map[string]any)
		if out["name"] != "loop" {
			t.Errorf("Expected name to survive, got %v", out["name"])
		}
		if out["self"] != nil {
			t.Errorf("Cycle must scrub to nil, got %v", out["self"])
		}
	})

	t.Run("struct fields follow json tags", func(t *testing.T) {
		out := Scrub(models.VoteSet{EntryID: "7", UserID: "@ana", Value: 8}).(map[string]any)
		if out["entryId"] != "7" || out["userId"] != "@ana" {
			t.Errorf("Expected json tag names, got %v", out)
		}
	})

	t.Run("nil input", func(t *testing.T) {
		if out := Scrub(nil); out != nil {
			t.Errorf("Expected nil, got %v", out)
		}
	})
}
