// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// FieldType is the declared type of a custom event field
type FieldType string

const (
	FieldString  FieldType = "string"
	FieldInteger FieldType = "integer"
)

// FieldDef declares one custom field on an event
type FieldDef struct {
	Name string    `json:"name" validate:"required,max=64"`
	Type FieldType `json:"type" validate:"required,oneof=string integer"`
}

// FieldSchema is the ordered custom field declaration of an event.
// Stored as a JSON array.
type FieldSchema []FieldDef

// Lookup returns the definition for name
func (s FieldSchema) Lookup(name string) (FieldDef, bool) {
	for _, def := range s {
		if def.Name == name {
			return def, true
		}
	}
	return FieldDef{}, false
}

// Check rejects duplicate field names
func (s FieldSchema) Check() error {
	seen := make(map[string]bool, len(s))
	for _, def := range s {
		if seen[def.Name] {
			return &ValidationError{Field: "custom_fields", Message: "duplicate field " + strconv.Quote(def.Name)}
		}
		seen[def.Name] = true
	}
	return nil
}

// Conform validates values against the schema and returns a normalized copy.
// Unknown keys are rejected. Decimal strings are accepted for integer fields
// since form submissions carry everything as text.
func (s FieldSchema) Conform(values FieldValues) (FieldValues, error) {
	out := make(FieldValues, len(values))
	for name, v := range values {
		def, ok := s.Lookup(name)
		if !ok {
			return nil, &ValidationError{Field: name, Message: "not a field of this event"}
		}

		switch def.Type {
		case FieldString:
			if v.Kind() != FieldString {
				return nil, &ValidationError{Field: name, Message: "must be a string"}
			}
			out[name] = v
		case FieldInteger:
			switch v.Kind() {
			case FieldInteger:
				out[name] = v
			case FieldString:
				n, err := strconv.ParseInt(strings.TrimSpace(v.str), 10, 64)
				if err != nil {
					return nil, &ValidationError{Field: name, Message: "must be an integer"}
				}
				out[name] = IntegerValue(n)
			default:
				return nil, &ValidationError{Field: name, Message: "must be an integer"}
			}
		default:
			return nil, &ValidationError{Field: name, Message: "unsupported field type " + string(def.Type)}
		}
	}
	return out, nil
}

// Value implements driver.Valuer. A string keeps lib/pq from sending bytea.
func (s FieldSchema) Value() (driver.Value, error) {
	if s == nil {
		s = FieldSchema{}
	}
	b, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner
func (s *FieldSchema) Scan(src any) error {
	b, err := jsonBytes(src)
	if err != nil {
		return fmt.Errorf("scan field schema: %w", err)
	}
	if len(b) == 0 {
		*s = FieldSchema{}
		return nil
	}
	return json.Unmarshal(b, s)
}

// FieldValue is a tagged union of the supported custom field types
type FieldValue struct {
	kind FieldType
	str  string
	num  int64
}

func StringValue(s string) FieldValue { return FieldValue{kind: FieldString, str: s} }

func IntegerValue(n int64) FieldValue { return FieldValue{kind: FieldInteger, num: n} }

func (v FieldValue) Kind() FieldType { return v.kind }

// String returns the string payload, or the decimal form of an integer
func (v FieldValue) String() string {
	if v.kind == FieldInteger {
		return strconv.FormatInt(v.num, 10)
	}
	return v.str
}

// Int returns the integer payload; ok is false for non-integers
func (v FieldValue) Int() (int64, bool) {
	return v.num, v.kind == FieldInteger
}

func (v FieldValue) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case FieldInteger:
		return []byte(strconv.FormatInt(v.num, 10)), nil
	case FieldString:
		return json.Marshal(v.str)
	}
	return []byte("null"), nil
}

func (v *FieldValue) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 {
		return fmt.Errorf("empty field value")
	}
	switch b[0] {
	case '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*v = StringValue(s)
		return nil
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		n, err := strconv.ParseInt(string(b), 10, 64)
		if err != nil {
			return fmt.Errorf("field value %s is not an integer", b)
		}
		*v = IntegerValue(n)
		return nil
	}
	return fmt.Errorf("unsupported field value %s", b)
}

// FieldValues maps a field name to its typed value. Stored as a JSON object.
type FieldValues map[string]FieldValue

// Value implements driver.Valuer
func (fv FieldValues) Value() (driver.Value, error) {
	if fv == nil {
		fv = FieldValues{}
	}
	b, err := json.Marshal(map[string]FieldValue(fv))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner
func (fv *FieldValues) Scan(src any) error {
	b, err := jsonBytes(src)
	if err != nil {
		return fmt.Errorf("scan field values: %w", err)
	}
	out := FieldValues{}
	if len(b) > 0 {
		if err := json.Unmarshal(b, (*map[string]FieldValue)(&out)); err != nil {
			return err
		}
	}
	*fv = out
	return nil
}

// jsonBytes normalizes JSONB ([]byte from lib/pq) and TEXT (string from sqlite)
func jsonBytes(src any) ([]byte, error) {
	switch v := src.(type) {
	case nil:
		return nil, nil
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	}
	return nil, fmt.Errorf("unsupported type %T", src)
}
