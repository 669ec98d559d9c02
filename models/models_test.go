package models

import (
	"encoding/json"
	"testing"
)

func sampleDocument() Document {
	return Document{
		Entries: []Entry{
			{
				ID:               "7",
				SavoryAppearance: map[string]float64{"@ana": 7},
				SavoryTaste:      map[string]float64{"@ana": 9, "@ben": 6.5},
				SavoryBonus:      map[string]int{"@ana": 1},
				ConfirmedVotes:   map[string]bool{"@ana": true},
				UserNotes:        map[string]string{"@ana": "salty"},
				Media: []MediaItem{
					{
						ID: "p1",
						Poll: &Poll{
							Question: "best topping?",
							Options:  []PollOption{{ID: "o1", Text: "basil"}},
							Votes:    map[string][]string{"@ana": {"o1"}},
						},
					},
				},
			},
		},
		Social: SocialData{
			Likes: map[string]map[string]string{"p1": {"@ben": "🔥"}},
			Comments: map[string][]Comment{
				"p1": {
					{
						ID:        "c1",
						User:      "@ana",
						Text:      "hot take",
						Reactions: map[string]string{"@ben": "👍"},
						Replies:   []Reply{{ID: "r1", User: "@ben", Text: "agreed"}},
					},
				},
			},
		},
		Users: []UserAccount{{Nickname: "@ana", Password: "1234"}},
	}
}

func TestCloneIsDeep(t *testing.T) {
	doc := sampleDocument()
	before, _ := json.Marshal(doc)

	cp := doc.Clone()
	cp.Entries[0].SavoryTaste["@ana"] = 0
	cp.Entries[0].ConfirmedVotes["@ben"] = true
	cp.Entries[0].UserNotes["@ana"] = "changed"
	cp.Entries[0].Media[0].Poll.Votes["@ana"] = []string{"o2"}
	cp.Entries[0].Media[0].Poll.Options[0].Text = "anchovy"
	cp.Social.Likes["p1"]["@ben"] = "💀"
	cp.Social.Comments["p1"][0].Text = "changed"
	cp.Social.Comments["p1"][0].Reactions["@ben"] = "💀"
	cp.Social.Comments["p1"][0].Replies[0].Text = "changed"
	cp.Users[0].Password = "0000"

	after, _ := json.Marshal(doc)
	if string(before) != string(after) {
		t.Errorf("Mutating a clone leaked into the original:\nbefore: %s\nafter:  %s", before, after)
	}
}

func TestCloneRoundTripsJSON(t *testing.T) {
	doc := sampleDocument()
	a, _ := json.Marshal(doc)
	b, _ := json.Marshal(doc.Clone())
	if string(a) != string(b) {
		t.Errorf("Clone must be JSON-identical to the original:\na: %s\nb: %s", a, b)
	}
}

func TestEntryByID(t *testing.T) {
	doc := sampleDocument()
	if doc.EntryByID("7") == nil {
		t.Error("Expected to find entry 7")
	}
	if doc.EntryByID("nope") != nil {
		t.Error("Unknown id must return nil")
	}

	// The pointer addresses the live slice element.
	doc.EntryByID("7").Notes = "live"
	if doc.Entries[0].Notes != "live" {
		t.Error("EntryByID must return a pointer into Entries")
	}
}

func TestUserByNickname(t *testing.T) {
	doc := sampleDocument()
	if doc.UserByNickname("@ANA") == nil {
		t.Error("Nickname lookup must be case-insensitive")
	}
	if doc.UserByNickname("@ben") != nil {
		t.Error("Unknown nickname must return nil")
	}
}

func TestScoresAndSetScores(t *testing.T) {
	var e Entry
	for _, category := range []string{CategorySavory, CategorySweet} {
		for _, field := range []string{FieldAppearance, FieldTaste} {
			m := map[string]float64{"@ana": 5}
			e.SetScores(category, field, m)
			got := e.Scores(category, field)
			if got["@ana"] != 5 {
				t.Errorf("Scores(%s, %s) lost the installed map", category, field)
			}
		}
	}
	if e.Scores("savory", "aroma") != nil {
		t.Error("Unknown field must return nil")
	}
	if e.Scores("umami", "taste") != nil {
		t.Error("Unknown category must return nil")
	}
}

func TestSumScores(t *testing.T) {
	e := Entry{
		SavoryAppearance: map[string]float64{"@ana": 7, "@ben": 8},
		SavoryTaste:      map[string]float64{"@ana": 9},
		SweetTaste:       map[string]float64{"@ana": 10},
	}
	if got := e.SumScores(CategorySavory); got != 24 {
		t.Errorf("Expected savory sum 24, got %v", got)
	}
	if got := e.SumScores(CategorySweet); got != 10 {
		t.Errorf("Expected sweet sum 10, got %v", got)
	}
}

func TestHasVotes(t *testing.T) {
	e := Entry{
		SavoryAppearance: map[string]float64{"@ana": 7},
		SavoryTaste:      map[string]float64{"@ana": 9, "@ben": 6},
	}

	testCases := []struct {
		name     string
		user     string
		category string
		expected bool
	}{
		{"both fields present", "@ana", CategorySavory, true},
		{"taste only", "@ben", CategorySavory, false},
		{"no votes at all", "@cara", CategorySavory, false},
		{"wrong category", "@ana", CategorySweet, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := e.HasVotes(tc.user, tc.category); got != tc.expected {
				t.Errorf("HasVotes(%q, %q) = %v, expected %v", tc.user, tc.category, got, tc.expected)
			}
		})
	}

	t.Run("zero is a real vote", func(t *testing.T) {
		e := Entry{
			SweetAppearance: map[string]float64{"@ana": 0},
			SweetTaste:      map[string]float64{"@ana": 0},
		}
		if !e.HasVotes("@ana", CategorySweet) {
			t.Error("A stored 0 must count as a present vote")
		}
	})
}

func TestIsEmpty(t *testing.T) {
	testCases := []struct {
		name     string
		doc      Document
		expected bool
	}{
		{"zero value", Document{}, true},
		{"released flag alone is still empty", Document{VotingReleased: true}, true},
		{"one entry", Document{Entries: []Entry{{ID: "1"}}}, false},
		{"one user", Document{Users: []UserAccount{{Nickname: "@ana"}}}, false},
		{"one like", Document{Social: SocialData{Likes: map[string]map[string]string{"m": {"@a": "x"}}}}, false},
		{"one comment", Document{Social: SocialData{Comments: map[string][]Comment{"m": {{ID: "c"}}}}}, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.doc.IsEmpty(); got != tc.expected {
				t.Errorf("IsEmpty() = %v, expected %v", got, tc.expected)
			}
		})
	}
}

func TestDecodeDelta(t *testing.T) {
	t.Run("known kind", func(t *testing.T) {
		d, err := DecodeDelta(KindVoteSet, []byte(`{"entryId":"7","userId":"@ana","category":"savory","field":"taste","value":8.5}`))
		if err != nil {
			t.Fatalf("DecodeDelta failed: %v", err)
		}
		v, ok := d.(VoteSet)
		if !ok {
			t.Fatalf("Expected VoteSet, got %T", d)
		}
		if v.EntryID != "7" || v.Value != 8.5 {
			t.Errorf("Decoded wrong payload: %+v", v)
		}
	})

	t.Run("payload-free kind with empty body", func(t *testing.T) {
		d, err := DecodeDelta(KindSyncRequest, nil)
		if err != nil {
			t.Fatalf("DecodeDelta failed: %v", err)
		}
		if _, ok := d.(SyncRequest); !ok {
			t.Errorf("Expected SyncRequest, got %T", d)
		}
	})

	t.Run("unknown kind", func(t *testing.T) {
		if _, err := DecodeDelta(Kind("pineapple"), []byte(`{}`)); err == nil {
			t.Error("Expected error for unknown kind")
		}
	})

	t.Run("malformed payload", func(t *testing.T) {
		if _, err := DecodeDelta(KindVoteSet, []byte(`{not json`)); err == nil {
			t.Error("Expected error for malformed payload")
		}
	})

	t.Run("every kind decodes an empty object", func(t *testing.T) {
		for _, kind := range AllKinds {
			d, err := DecodeDelta(kind, []byte(`{}`))
			if err != nil {
				t.Errorf("Kind %s failed on empty object: %v", kind, err)
				continue
			}
			if d.DeltaKind() != kind {
				t.Errorf("Kind %s decoded into %s", kind, d.DeltaKind())
			}
		}
	})
}
