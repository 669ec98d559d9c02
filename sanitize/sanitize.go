package sanitize

import (
	"math"
	"reflect"
	"strings"

	"github.com/pizzanight/server/models"
)

// StripMarkup removes injected tag markup and control characters from
// free-text input. Newlines and tabs survive; everything between '<' and
// the matching '>' is dropped, and an unterminated '<' drops the rest of
// the string.
func StripMarkup(s string) string {
	if !strings.ContainsAny(s, "<\x00") && !hasControl(s) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	inTag := false
	for _, r := range s {
		switch {
		case inTag:
			if r == '>' {
				inTag = false
			}
		case r == '<':
			inTag = true
		case r == '\n' || r == '\t':
			b.WriteRune(r)
		case r < 0x20 || r == 0x7f:
			// drop control characters
		default:
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}

func hasControl(s string) bool {
	for _, r := range s {
		if (r < 0x20 && r != '\n' && r != '\t') || r == 0x7f {
			return true
		}
	}
	return false
}

// Score normalizes a score value before it reaches a reducer: non-finite
// values collapse to 0, the deletion sentinel passes through, and
// everything else is clamped into [0, 10].
func Score(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	if v == models.DeleteScore {
		return v
	}
	if v < 0 {
		return 0
	}
	if v > 10 {
		return 10
	}
	return v
}

// Document cleans every free-text field of a document copy. Score values
// are scrubbed for non-finite numbers but not re-clamped; clamping is the
// mutation caller's job.
func Document(doc models.Document) models.Document {
	out := doc.Clone()
	for i := range out.Entries {
		cleanEntry(&out.Entries[i])
	}
	for mediaID, byUser := range out.Social.Likes {
		for user, emoji := range byUser {
			out.Social.Likes[mediaID][user] = StripMarkup(emoji)
		}
	}
	for mediaID, list := range out.Social.Comments {
		for i := range list {
			cleanComment(&list[i])
		}
		out.Social.Comments[mediaID] = list
	}
	for i := range out.Users {
		u := &out.Users[i]
		u.Nickname = StripMarkup(u.Nickname)
		u.Phone = StripMarkup(u.Phone)
	}
	return out
}

func cleanEntry(e *models.Entry) {
	e.Notes = StripMarkup(e.Notes)
	e.ScheduledDate = StripMarkup(e.ScheduledDate)
	for user, note := range e.UserNotes {
		e.UserNotes[user] = StripMarkup(note)
	}
	for _, category := range []string{models.CategorySavory, models.CategorySweet} {
		for _, field := range []string{models.FieldAppearance, models.FieldTaste} {
			m := e.Scores(category, field)
			for user, v := range m {
				if math.IsNaN(v) || math.IsInf(v, 0) {
					m[user] = 0
				}
			}
		}
	}
	for i := range e.Media {
		cleanMedia(&e.Media[i])
	}
}

func cleanMedia(m *models.MediaItem) {
	m.Caption = StripMarkup(m.Caption)
	if m.Poll != nil {
		m.Poll.Question = StripMarkup(m.Poll.Question)
		for i := range m.Poll.Options {
			m.Poll.Options[i].Text = StripMarkup(m.Poll.Options[i].Text)
		}
	}
}

func cleanComment(c *models.Comment) {
	c.User = StripMarkup(c.User)
	c.Text = StripMarkup(c.Text)
	for user, emoji := range c.Reactions {
		c.Reactions[user] = StripMarkup(emoji)
	}
	for i := range c.Replies {
		r := &c.Replies[i]
		r.User = StripMarkup(r.User)
		r.Text = StripMarkup(r.Text)
		for user, emoji := range r.Reactions {
			r.Reactions[user] = StripMarkup(emoji)
		}
	}
}

// Delta cleans the free-text fields of an outbound delta before it is
// broadcast. Routine filtering, not exceptional control flow: unknown
// kinds pass through unchanged.
func Delta(d models.Delta) models.Delta {
	switch v := d.(type) {
	case models.VoteSet:
		v.Value = Score(v.Value)
		return v
	case models.GlobalNoteSet:
		v.Notes = StripMarkup(v.Notes)
		return v
	case models.FullSync:
		v.Document = Document(v.Document)
		return v
	case models.AddEntry:
		cleanEntry(&v.Entry)
		return v
	case models.MediaAdd:
		cleanMedia(&v.Item)
		return v
	case models.MediaUpdate:
		if v.Caption != nil {
			c := StripMarkup(*v.Caption)
			v.Caption = &c
		}
		return v
	case models.DateSet:
		v.ScheduledDate = StripMarkup(v.ScheduledDate)
		return v
	case models.CommentAdd:
		cleanComment(&v.Comment)
		return v
	case models.CommentEdit:
		v.Text = StripMarkup(v.Text)
		return v
	case models.ReactionSet:
		v.Emoji = StripMarkup(v.Emoji)
		return v
	case models.CommentReactionSet:
		v.Emoji = StripMarkup(v.Emoji)
		return v
	case models.ReplyAdd:
		v.Reply.User = StripMarkup(v.Reply.User)
		v.Reply.Text = StripMarkup(v.Reply.Text)
		return v
	case models.ReplyEdit:
		v.Text = StripMarkup(v.Text)
		return v
	case models.ReplyReactionSet:
		v.Emoji = StripMarkup(v.Emoji)
		return v
	case models.AppNotification:
		v.From = StripMarkup(v.From)
		v.Message = StripMarkup(v.Message)
		return v
	case models.UserUpdate:
		v.Nickname = StripMarkup(v.Nickname)
		if v.Phone != nil {
			p := StripMarkup(*v.Phone)
			v.Phone = &p
		}
		return v
	default:
		return d
	}
}

// Scrub walks an arbitrary value and returns a plain-data copy safe for
// JSON serialization: functions, channels and unsafe pointers are dropped,
// non-finite floats collapse to 0, and reference cycles are cut. The
// framework-object checks of the original guard are gone; this is the
// generic defense that remains.
func Scrub(v any) any {
	return scrub(reflect.ValueOf(v), map[uintptr]bool{})
}

func scrub(v reflect.Value, seen map[uintptr]bool) any {
	if !v.IsValid() {
		return nil
	}
	switch v.Kind() {
	case reflect.Interface:
		if v.IsNil() {
			return nil
		}
		return scrub(v.Elem(), seen)
	case reflect.Pointer:
		if v.IsNil() {
			return nil
		}
		ptr := v.Pointer()
		if seen[ptr] {
			return nil // cycle
		}
		seen[ptr] = true
		out := scrub(v.Elem(), seen)
		delete(seen, ptr)
		return out
	case reflect.Map:
		if v.IsNil() {
			return nil
		}
		ptr := v.Pointer()
		if seen[ptr] {
			return nil
		}
		seen[ptr] = true
		out := make(map[string]any, v.Len())
		iter := v.MapRange()
		for iter.Next() {
			key, ok := iter.Key().Interface().(string)
			if !ok {
				continue
			}
			out[key] = scrub(iter.Value(), seen)
		}
		delete(seen, ptr)
		return out
	case reflect.Slice:
		if v.IsNil() {
			return nil
		}
		ptr := v.Pointer()
		if seen[ptr] {
			return nil
		}
		seen[ptr] = true
		out := scrubList(v, seen)
		delete(seen, ptr)
		return out
	case reflect.Array:
		return scrubList(v, seen)
	case reflect.Struct:
		t := v.Type()
		out := make(map[string]any, t.NumField())
		for i := 0; i < t.NumField(); i++ {
			f := t.Field(i)
			if !f.IsExported() {
				continue
			}
			name := f.Name
			if tag, ok := f.Tag.Lookup("json"); ok {
				tagName, _, _ := strings.Cut(tag, ",")
				if tagName == "-" {
					continue
				}
				if tagName != "" {
					name = tagName
				}
			}
			out[name] = scrub(v.Field(i), seen)
		}
		return out
	case reflect.Float32, reflect.Float64:
		f := v.Float()
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return float64(0)
		}
		return f
	case reflect.Func, reflect.Chan, reflect.UnsafePointer:
		return nil // not plain data
	default:
		return v.Interface()
	}
}

func scrubList(v reflect.Value, seen map[uintptr]bool) []any {
	out := make([]any, v.Len())
	for i := 0; i < v.Len(); i++ {
		out[i] = scrub(v.Index(i), seen)
	}
	return out
}
