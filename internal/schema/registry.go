package schema

import (
	"errors"
	"fmt"
	"strings"

	"github.com/bytedance/sonic"

	"tabletalk/internal/models"
)

// DefaultTableName is used for schema documents that omit table_name.
const DefaultTableName = "dynamic_data"

var (
	ErrBadDocument      = errors.New("schema document is not valid JSON")
	ErrNoFields         = errors.New("fields must be a non-empty list")
	ErrMissingAttribute = errors.New("missing required attribute")
	ErrDuplicateField   = errors.New("duplicate field name")
	ErrUnsupportedType  = errors.New("unsupported field type")
	ErrUnsafeIdentifier = errors.New("unsafe identifier")
)

// reservedWords are SQL keywords refused as table or column names.
// Lower-case; matched case-insensitively.
var reservedWords = map[string]struct{}{
	"select": {}, "insert": {}, "update": {}, "delete": {}, "drop": {},
	"create": {}, "alter": {}, "table": {}, "from": {}, "where": {},
	"group": {}, "order": {}, "user": {}, "values": {}, "into": {},
	"index": {}, "grant": {}, "join": {}, "union": {},
}

// Parse decodes and validates a caller-supplied schema document. The
// returned Schema is never mutated afterwards; it does not touch the
// database.
func Parse(doc []byte) (*models.Schema, error) {
	var s models.Schema
	if err := sonic.Unmarshal(doc, &s); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadDocument, err)
	}

	if s.TableName == "" {
		s.TableName = DefaultTableName
	}
	if err := CheckIdentifier(s.TableName); err != nil {
		return nil, fmt.Errorf("table_name %q: %w", s.TableName, err)
	}
	if len(s.Fields) == 0 {
		return nil, ErrNoFields
	}

	seen := make(map[string]struct{}, len(s.Fields))
	for i, f := range s.Fields {
		if f.Name == "" {
			return nil, fmt.Errorf("field %d: name: %w", i, ErrMissingAttribute)
		}
		if f.Label == "" {
			return nil, fmt.Errorf("field %q: label: %w", f.Name, ErrMissingAttribute)
		}
		if f.Type == "" {
			return nil, fmt.Errorf("field %q: type: %w", f.Name, ErrMissingAttribute)
		}
		if !f.Type.Known() {
			return nil, fmt.Errorf("field %q: type %q: %w", f.Name, f.Type, ErrUnsupportedType)
		}
		if err := CheckIdentifier(f.Name); err != nil {
			return nil, fmt.Errorf("field %q: %w", f.Name, err)
		}
		if _, dup := seen[f.Name]; dup {
			return nil, fmt.Errorf("field %q: %w", f.Name, ErrDuplicateField)
		}
		seen[f.Name] = struct{}{}
	}
	return &s, nil
}

// CheckIdentifier verifies a name is safe to interpolate into DDL:
// alphanumeric/underscore, not digit-leading, not a reserved word.
func CheckIdentifier(name string) error {
	if name == "" {
		return ErrUnsafeIdentifier
	}
	for i, r := range name {
		switch {
		case r == '_':
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
			if i == 0 {
				return ErrUnsafeIdentifier
			}
		default:
			return ErrUnsafeIdentifier
		}
	}
	if _, ok := reservedWords[strings.ToLower(name)]; ok {
		return ErrUnsafeIdentifier
	}
	return nil
}
