package dyntable

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"tabletalk/internal/config"
	"tabletalk/internal/models"
	"tabletalk/internal/storage"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := storage.Open("sqlite3", &config.Config{DSN: ":memory:"})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	db.SetMaxOpenConns(1)
	return db
}

func userDataSchema() *models.Schema {
	return &models.Schema{
		TableName: "user_data",
		Fields: []models.FieldSpec{
			{Name: "age", Type: models.FieldNumber, Label: "Age"},
			{Name: "city", Type: models.FieldText, Label: "City"},
		},
	}
}

func TestEnsureTableIsIdempotent(t *testing.T) {
	db := openTestDB(t)
	defer db.Close()
	mgr := NewManager(db, storage.DialectFor("sqlite3"))
	ctx := context.Background()
	sc := userDataSchema()

	if err := mgr.EnsureTable(ctx, sc); err != nil {
		t.Fatalf("first ensure: %v", err)
	}
	if err := mgr.EnsureTable(ctx, sc); err != nil {
		t.Fatalf("second ensure: %v", err)
	}

	var count int
	err := db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = 'user_data'`).Scan(&count)
	if err != nil {
		t.Fatalf("count tables: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected exactly one table, got %d", count)
	}
}

func TestInsertRowPersistsValues(t *testing.T) {
	db := openTestDB(t)
	defer db.Close()
	mgr := NewManager(db, storage.DialectFor("sqlite3"))
	ctx := context.Background()
	sc := userDataSchema()

	if err := mgr.EnsureTable(ctx, sc); err != nil {
		t.Fatalf("ensure: %v", err)
	}
	values := map[string]models.TypedValue{
		"age":  models.NumberValue(30),
		"city": models.TextValue("Lisbon"),
	}
	if err := mgr.InsertRow(ctx, sc, values); err != nil {
		t.Fatalf("insert: %v", err)
	}

	var age float64
	var city string
	if err := db.QueryRow(`SELECT age, city FROM user_data`).Scan(&age, &city); err != nil {
		t.Fatalf("read back row: %v", err)
	}
	if age != 30 || city != "Lisbon" {
		t.Fatalf("unexpected row: age=%v city=%q", age, city)
	}
}

func TestInsertRowRejectsIncompleteValues(t *testing.T) {
	db := openTestDB(t)
	defer db.Close()
	mgr := NewManager(db, storage.DialectFor("sqlite3"))
	ctx := context.Background()
	sc := userDataSchema()

	if err := mgr.EnsureTable(ctx, sc); err != nil {
		t.Fatalf("ensure: %v", err)
	}

	missing := map[string]models.TypedValue{"age": models.NumberValue(30)}
	if err := mgr.InsertRow(ctx, sc, missing); !errors.Is(err, ErrIncompleteRow) {
		t.Fatalf("expected ErrIncompleteRow for missing field, got %v", err)
	}

	wrong := map[string]models.TypedValue{
		"age":   models.NumberValue(30),
		"color": models.TextValue("red"),
	}
	if err := mgr.InsertRow(ctx, sc, wrong); !errors.Is(err, ErrIncompleteRow) {
		t.Fatalf("expected ErrIncompleteRow for wrong field set, got %v", err)
	}
}

func TestInsertRowSurfacesStoreFailure(t *testing.T) {
	db := openTestDB(t)
	defer db.Close()
	mgr := NewManager(db, storage.DialectFor("sqlite3"))
	ctx := context.Background()
	sc := userDataSchema()

	// Table never created: the store's own error must come back wrapped.
	values := map[string]models.TypedValue{
		"age":  models.NumberValue(30),
		"city": models.TextValue("Lisbon"),
	}
	err := mgr.InsertRow(ctx, sc, values)
	var cerr *ConstraintError
	if !errors.As(err, &cerr) {
		t.Fatalf("expected ConstraintError, got %v", err)
	}
	if cerr.Table != "user_data" {
		t.Fatalf("expected table in error, got %q", cerr.Table)
	}
}

func TestEnsureTableRefusesUnsafeNames(t *testing.T) {
	db := openTestDB(t)
	defer db.Close()
	mgr := NewManager(db, storage.DialectFor("sqlite3"))

	sc := &models.Schema{
		TableName: "x; DROP TABLE users",
		Fields:    []models.FieldSpec{{Name: "a", Type: models.FieldText, Label: "A"}},
	}
	if err := mgr.EnsureTable(context.Background(), sc); err == nil {
		t.Fatal("expected unsafe table name to be refused")
	}
}
