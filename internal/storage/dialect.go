package storage

import (
	"fmt"
	"strings"

	"tabletalk/internal/models"
)

// Dialect owns the per-driver SQL differences: placeholder style and
// the field type → column type mapping for dynamically created tables.
type Dialect struct {
	driver string
}

func DialectFor(driver string) Dialect {
	return Dialect{driver: strings.ToLower(driver)}
}

func (d Dialect) postgres() bool {
	return d.driver == "postgres" || d.driver == "pgx"
}

// Placeholder returns the n-th (1-based) statement placeholder.
func (d Dialect) Placeholder(n int) string {
	if d.postgres() {
		return fmt.Sprintf("$%d", n)
	}
	return "?"
}

// Placeholders returns a comma-joined list of n placeholders.
func (d Dialect) Placeholders(n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = d.Placeholder(i + 1)
	}
	return strings.Join(parts, ", ")
}

// ColumnType maps a schema field type to a column type. MySQL's bare
// NUMERIC truncates to scale zero, so numbers get DOUBLE there.
func (d Dialect) ColumnType(t models.FieldType) string {
	if t == models.FieldNumber {
		if d.driver == "mysql" {
			return "DOUBLE"
		}
		return "NUMERIC"
	}
	return "TEXT"
}
