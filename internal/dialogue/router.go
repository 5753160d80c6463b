package dialogue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"tabletalk/internal/collect"
	"tabletalk/internal/history"
	"tabletalk/internal/llm"
	"tabletalk/internal/models"
	"tabletalk/internal/schema"
)

// ErrModelCall marks a transient failure of the generative model. The
// user's message has already been appended to history when this is
// returned, so the turn can be retried without losing context.
var ErrModelCall = errors.New("model call failed")

// Turn is one incoming user interaction: an optional schema document
// (starts or replaces a collection session) and a free-text input.
type Turn struct {
	UserID         string
	ConversationID string
	SchemaDoc      string
	Input          string
}

// Router decides per turn whether the user is filling a schema or
// asking a free-form question, and drives the matching path.
type Router struct {
	model    llm.ChatModel
	history  *history.Store
	tables   TableManager
	sessions *collect.Registry
	logger   *slog.Logger
}

// TableManager is the slice of the dynamic table layer the router uses.
type TableManager interface {
	EnsureTable(ctx context.Context, sc *models.Schema) error
	InsertRow(ctx context.Context, sc *models.Schema, values map[string]models.TypedValue) error
}

func NewRouter(model llm.ChatModel, hist *history.Store, tables TableManager, logger *slog.Logger) *Router {
	if logger == nil {
		logger = slog.Default()
	}
	return &Router{
		model:    model,
		history:  hist,
		tables:   tables,
		sessions: collect.NewRegistry(),
		logger:   logger,
	}
}

// Handle processes one turn and returns the assistant's reply: the next
// collection prompt, a validation re-prompt, a completion confirmation
// or the model's answer.
func (r *Router) Handle(ctx context.Context, turn Turn) (string, error) {
	if turn.SchemaDoc != "" {
		return r.startCollection(turn)
	}
	if sess, ok := r.sessions.Lookup(turn.UserID, turn.ConversationID); ok {
		return r.continueCollection(ctx, sess, turn.Input)
	}
	return r.freeForm(ctx, turn)
}

func (r *Router) startCollection(turn Turn) (string, error) {
	sc, err := schema.Parse([]byte(turn.SchemaDoc))
	if err != nil {
		// Malformed schemas are a per-turn condition: tell the user,
		// keep the process and any prior session alive.
		if errors.Is(err, schema.ErrBadDocument) {
			return "Invalid JSON format for schema.", nil
		}
		return fmt.Sprintf("Schema rejected: %v.", err), nil
	}
	sess := r.sessions.Start(turn.UserID, turn.ConversationID, sc)
	r.logger.Info("collection session started",
		"user_id", turn.UserID,
		"conversation_id", turn.ConversationID,
		"table", sc.TableName,
		"fields", len(sc.Fields))
	return sess.Prompt(), nil
}

func (r *Router) continueCollection(ctx context.Context, sess *collect.Session, input string) (string, error) {
	if sess.Phase() == collect.PhaseCollecting {
		prompt, err := sess.Submit(input)
		if err != nil {
			var verr *schema.ValidationError
			if errors.As(err, &verr) {
				// Cursor is unchanged; re-prompt the same field.
				return fmt.Sprintf("%s. %s", verr.Reason, prompt), nil
			}
			return "", err
		}
		if sess.Phase() == collect.PhaseCollecting {
			return prompt, nil
		}
	}
	// All fields are filled: persist, then discard. A storage failure
	// keeps the session so the next turn retries without re-collecting.
	if err := r.persist(ctx, sess); err != nil {
		r.logger.Error("persist collected row failed",
			"user_id", sess.UserID,
			"table", sess.Schema.TableName,
			"error", err)
		return "", err
	}
	r.sessions.Remove(sess.UserID, sess.ConversationID)
	return fmt.Sprintf("Data successfully saved to table '%s'.", sess.Schema.TableName), nil
}

func (r *Router) persist(ctx context.Context, sess *collect.Session) error {
	if err := r.tables.EnsureTable(ctx, sess.Schema); err != nil {
		return err
	}
	return r.tables.InsertRow(ctx, sess.Schema, sess.Values())
}

func (r *Router) freeForm(ctx context.Context, turn Turn) (string, error) {
	// Append first so the turn is part of the context even if the model
	// call fails. A failed turn still occupies a history slot.
	err := r.history.Append(ctx, models.ChatMessage{
		UserID:         turn.UserID,
		ConversationID: turn.ConversationID,
		Type:           models.RoleUser,
		Content:        turn.Input,
	})
	if err != nil {
		return "", err
	}

	messages, err := r.history.History(ctx, turn.UserID, turn.ConversationID)
	if err != nil {
		return "", err
	}

	reply, err := r.model.Generate(ctx, llm.BuildPrompt(messages))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrModelCall, err)
	}

	err = r.history.Append(ctx, models.ChatMessage{
		UserID:         turn.UserID,
		ConversationID: turn.ConversationID,
		Type:           models.RoleAssistant,
		Content:        reply.Content,
	})
	if err != nil {
		return "", err
	}
	return reply.Content, nil
}
