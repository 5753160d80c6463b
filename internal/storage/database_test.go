package storage

import (
	"database/sql"
	"testing"

	"tabletalk/internal/config"
	"tabletalk/internal/models"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	cfg := &config.Config{DSN: ":memory:"}
	db, err := Open("sqlite3", cfg)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	db.SetMaxOpenConns(1)
	return db
}

func TestMigrateCreatesHistoryTable(t *testing.T) {
	db := openTestDB(t)
	defer db.Close()

	if err := Migrate(db, "sqlite3"); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	// Migrate twice must be a no-op.
	if err := Migrate(db, "sqlite3"); err != nil {
		t.Fatalf("second migrate: %v", err)
	}

	if _, err := db.Exec(
		`INSERT INTO chat_history (user_id, conversation_id, message_type, content) VALUES (?, ?, ?, ?)`,
		"u1", "c1", "user", "hello",
	); err != nil {
		t.Fatalf("insert into migrated table: %v", err)
	}
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	if _, err := Open("oracle", &config.Config{}); err == nil {
		t.Fatal("expected error for unknown driver")
	}
}

func TestOpenRequiresSqliteDSN(t *testing.T) {
	if _, err := Open("sqlite3", &config.Config{}); err == nil {
		t.Fatal("expected error for missing dsn")
	}
}

func TestDialectPlaceholders(t *testing.T) {
	pg := DialectFor("postgres")
	if got := pg.Placeholders(3); got != "$1, $2, $3" {
		t.Errorf("postgres placeholders: %q", got)
	}
	lite := DialectFor("sqlite3")
	if got := lite.Placeholders(2); got != "?, ?" {
		t.Errorf("sqlite placeholders: %q", got)
	}
	if got := DialectFor("mysql").Placeholder(5); got != "?" {
		t.Errorf("mysql placeholder: %q", got)
	}
}

func TestDialectColumnTypes(t *testing.T) {
	cases := []struct {
		driver string
		field  models.FieldType
		want   string
	}{
		{"postgres", models.FieldText, "TEXT"},
		{"postgres", models.FieldNumber, "NUMERIC"},
		{"sqlite3", models.FieldNumber, "NUMERIC"},
		{"mysql", models.FieldNumber, "DOUBLE"},
		{"mysql", models.FieldText, "TEXT"},
	}
	for _, tc := range cases {
		if got := DialectFor(tc.driver).ColumnType(tc.field); got != tc.want {
			t.Errorf("%s/%s: expected %s, got %s", tc.driver, tc.field, tc.want, got)
		}
	}
}
