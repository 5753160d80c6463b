package models

import "strconv"

// FieldType is the closed set of value kinds a schema field may declare.
type FieldType string

const (
	FieldText   FieldType = "text"
	FieldNumber FieldType = "number"
)

// Known reports whether t is one of the supported field types.
func (t FieldType) Known() bool {
	return t == FieldText || t == FieldNumber
}

// FieldSpec describes a single collectable field of a schema.
type FieldSpec struct {
	Name       string    `json:"name"`
	Type       FieldType `json:"type"`
	Label      string    `json:"label"`
	Validation string    `json:"validation,omitempty"`
}

// Schema is a caller-supplied description of a record shape: an ordered
// field list and the table the collected rows land in. Immutable after
// parsing.
type Schema struct {
	TableName string      `json:"table_name"`
	Fields    []FieldSpec `json:"fields"`
}

// TypedValue is a tagged variant holding one validated field value.
type TypedValue struct {
	Kind   FieldType
	Text   string
	Number float64
}

func TextValue(s string) TypedValue {
	return TypedValue{Kind: FieldText, Text: s}
}

func NumberValue(f float64) TypedValue {
	return TypedValue{Kind: FieldNumber, Number: f}
}

// Arg returns the value as a driver argument for SQL statements.
func (v TypedValue) Arg() any {
	if v.Kind == FieldNumber {
		return v.Number
	}
	return v.Text
}

func (v TypedValue) String() string {
	if v.Kind == FieldNumber {
		return strconv.FormatFloat(v.Number, 'f', -1, 64)
	}
	return v.Text
}
