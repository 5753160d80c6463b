package collect

import (
	"tabletalk/internal/models"
	"tabletalk/internal/schema"
)

// Phase is the lifecycle stage of a collection session.
type Phase string

const (
	// PhaseCollecting means at least one field is still unfilled.
	PhaseCollecting Phase = "collecting"
	// PhaseComplete means every field is filled; the row may still be
	// waiting to be persisted.
	PhaseComplete Phase = "complete"
)

// Session walks a schema's fields one input at a time for a single
// (user, conversation) pair. A rejected input leaves the cursor where
// it was so the same field can be re-prompted.
type Session struct {
	UserID         string
	ConversationID string
	Schema         *models.Schema

	values map[string]models.TypedValue
	cursor int
}

func NewSession(userID, conversationID string, sc *models.Schema) *Session {
	return &Session{
		UserID:         userID,
		ConversationID: conversationID,
		Schema:         sc,
		values:         make(map[string]models.TypedValue, len(sc.Fields)),
	}
}

func (s *Session) Phase() Phase {
	if s.cursor >= len(s.Schema.Fields) {
		return PhaseComplete
	}
	return PhaseCollecting
}

// Cursor is the index of the next unfilled field.
func (s *Session) Cursor() int { return s.cursor }

// Prompt returns the label of the field awaiting input, or "" once the
// session is complete.
func (s *Session) Prompt() string {
	if s.Phase() == PhaseComplete {
		return ""
	}
	return s.Schema.Fields[s.cursor].Label
}

// Submit validates raw against the current field. On success the value
// is recorded and the cursor advances; the returned prompt is the next
// field's label, or "" when the session just completed. On failure the
// session is unchanged and the validation error is returned for
// re-prompting.
func (s *Session) Submit(raw string) (next string, err error) {
	if s.Phase() == PhaseComplete {
		return "", nil
	}
	spec := s.Schema.Fields[s.cursor]
	value, err := schema.Validate(spec, raw)
	if err != nil {
		return spec.Label, err
	}
	s.values[spec.Name] = value
	s.cursor++
	return s.Prompt(), nil
}

// Values returns a copy of the filled values keyed by field name.
func (s *Session) Values() map[string]models.TypedValue {
	out := make(map[string]models.TypedValue, len(s.values))
	for k, v := range s.values {
		out[k] = v
	}
	return out
}
