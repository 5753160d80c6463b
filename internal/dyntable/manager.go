package dyntable

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"tabletalk/internal/models"
	"tabletalk/internal/schema"
	"tabletalk/internal/storage"
)

// ErrIncompleteRow means the supplied values do not cover the schema's
// field set exactly.
var ErrIncompleteRow = errors.New("row does not cover the schema's fields")

// ConstraintError surfaces a failure the store itself raised while
// inserting a row, e.g. a type check at the storage layer.
type ConstraintError struct {
	Table string
	Err   error
}

func (e *ConstraintError) Error() string {
	return fmt.Sprintf("insert into %s rejected by store: %v", e.Table, e.Err)
}

func (e *ConstraintError) Unwrap() error { return e.Err }

// Manager maps schemas onto relational tables created at runtime.
type Manager struct {
	db *sql.DB
	d  storage.Dialect
}

func NewManager(db *sql.DB, d storage.Dialect) *Manager {
	return &Manager{db: db, d: d}
}

// EnsureTable creates the schema's table if it does not exist yet.
// Safe to call repeatedly; concurrent creation of the same table relies
// on the store's own IF NOT EXISTS semantics. An existing table with a
// different column set is left untouched.
func (m *Manager) EnsureTable(ctx context.Context, sc *models.Schema) error {
	if err := schema.CheckIdentifier(sc.TableName); err != nil {
		return fmt.Errorf("table %q: %w", sc.TableName, err)
	}
	cols := make([]string, 0, len(sc.Fields))
	for _, f := range sc.Fields {
		if err := schema.CheckIdentifier(f.Name); err != nil {
			return fmt.Errorf("column %q: %w", f.Name, err)
		}
		cols = append(cols, fmt.Sprintf("%s %s", f.Name, m.d.ColumnType(f.Type)))
	}
	stmt := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", sc.TableName, strings.Join(cols, ", "))
	if _, err := m.db.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("ensure table %s: %w", sc.TableName, err)
	}
	return nil
}

// InsertRow persists one collected row. The values must cover exactly
// the schema's field set; order does not matter.
func (m *Manager) InsertRow(ctx context.Context, sc *models.Schema, values map[string]models.TypedValue) error {
	if len(values) != len(sc.Fields) {
		return fmt.Errorf("%w: got %d values for %d fields", ErrIncompleteRow, len(values), len(sc.Fields))
	}
	names := make([]string, 0, len(sc.Fields))
	args := make([]any, 0, len(sc.Fields))
	for _, f := range sc.Fields {
		v, ok := values[f.Name]
		if !ok {
			return fmt.Errorf("%w: missing %q", ErrIncompleteRow, f.Name)
		}
		names = append(names, f.Name)
		args = append(args, v.Arg())
	}
	stmt := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		sc.TableName, strings.Join(names, ", "), m.d.Placeholders(len(names)))
	if _, err := m.db.ExecContext(ctx, stmt, args...); err != nil {
		return &ConstraintError{Table: sc.TableName, Err: err}
	}
	return nil
}
