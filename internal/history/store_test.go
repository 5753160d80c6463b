package history

import (
	"context"
	"database/sql"
	"testing"

	"tabletalk/internal/config"
	"tabletalk/internal/models"
	"tabletalk/internal/storage"
)

func newTestStore(t *testing.T) (*Store, *sql.DB) {
	t.Helper()
	db, err := storage.Open("sqlite3", &config.Config{DSN: ":memory:"})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	db.SetMaxOpenConns(1)
	if err := storage.Migrate(db, "sqlite3"); err != nil {
		t.Fatalf("migrate db: %v", err)
	}
	return NewStore(db, storage.DialectFor("sqlite3")), db
}

func TestHistoryPreservesInsertionOrder(t *testing.T) {
	store, db := newTestStore(t)
	defer db.Close()
	ctx := context.Background()

	contents := []string{"first", "second", "third"}
	roles := []models.Role{models.RoleUser, models.RoleAssistant, models.RoleUser}
	for i, content := range contents {
		err := store.Append(ctx, models.ChatMessage{
			UserID:         "u1",
			ConversationID: "c1",
			Type:           roles[i],
			Content:        content,
		})
		if err != nil {
			t.Fatalf("append %q: %v", content, err)
		}
	}

	messages, err := store.History(ctx, "u1", "c1")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(messages) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(messages))
	}
	for i, content := range contents {
		if messages[i].Content != content {
			t.Errorf("message %d: expected %q, got %q", i, content, messages[i].Content)
		}
		if messages[i].Type != roles[i] {
			t.Errorf("message %d: expected role %q, got %q", i, roles[i], messages[i].Type)
		}
	}
}

func TestHistoryIsScopedToConversation(t *testing.T) {
	store, db := newTestStore(t)
	defer db.Close()
	ctx := context.Background()

	err := store.Append(ctx, models.ChatMessage{
		UserID: "u1", ConversationID: "c1", Type: models.RoleUser, Content: "hello",
	})
	if err != nil {
		t.Fatalf("append: %v", err)
	}

	other, err := store.History(ctx, "u1", "c2")
	if err != nil {
		t.Fatalf("history for other conversation: %v", err)
	}
	if len(other) != 0 {
		t.Fatalf("expected empty history, got %d messages", len(other))
	}

	otherUser, err := store.History(ctx, "u2", "c1")
	if err != nil {
		t.Fatalf("history for other user: %v", err)
	}
	if len(otherUser) != 0 {
		t.Fatalf("expected empty history for other user, got %d", len(otherUser))
	}
}

func TestClearRemovesOnlyAddressedPair(t *testing.T) {
	store, db := newTestStore(t)
	defer db.Close()
	ctx := context.Background()

	pairs := []struct{ user, conv string }{
		{"u1", "c1"},
		{"u1", "c2"},
		{"u2", "c1"},
	}
	for _, p := range pairs {
		err := store.Append(ctx, models.ChatMessage{
			UserID: p.user, ConversationID: p.conv, Type: models.RoleUser, Content: "msg",
		})
		if err != nil {
			t.Fatalf("append %v: %v", p, err)
		}
	}

	if err := store.Clear(ctx, "u1", "c1"); err != nil {
		t.Fatalf("clear: %v", err)
	}

	cleared, _ := store.History(ctx, "u1", "c1")
	if len(cleared) != 0 {
		t.Fatalf("expected cleared history, got %d", len(cleared))
	}
	kept, _ := store.History(ctx, "u1", "c2")
	if len(kept) != 1 {
		t.Fatalf("sibling conversation lost messages: %d", len(kept))
	}
	keptOther, _ := store.History(ctx, "u2", "c1")
	if len(keptOther) != 1 {
		t.Fatalf("other user lost messages: %d", len(keptOther))
	}
}
