package export

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestSQLLiteral(t *testing.T) {
	id := uuid.MustParse("0199a3b2-7c4d-7e8f-9a0b-1c2d3e4f5a6b")
	ts := time.Date(2024, 3, 5, 12, 30, 0, 0, time.UTC)
	name := "Zé"
	var nilName *string

	tests := []struct {
		name     string
		value    any
		expected string
	}{
		{name: "null", value: nil, expected: "NULL"},
		{name: "typed nil pointer", value: nilName, expected: "NULL"},
		{name: "true", value: true, expected: "TRUE"},
		{name: "false", value: false, expected: "FALSE"},
		{name: "int", value: 42, expected: "42"},
		{name: "negative int64", value: int64(-7), expected: "-7"},
		{name: "float", value: 1.5, expected: "1.5"},
		{name: "json number", value: json.Number("123.4500"), expected: "123.4500"},
		{name: "NaN is quoted", value: math.NaN(), expected: "'NaN'"},
		{name: "string", value: "hello", expected: "'hello'"},
		{name: "single quote doubled", value: "O'Brien", expected: "'O''Brien'"},
		{name: "pointer to string", value: &name, expected: "'Zé'"},
		{name: "uuid", value: id, expected: "'0199a3b2-7c4d-7e8f-9a0b-1c2d3e4f5a6b'"},
		{name: "timestamp", value: ts, expected: "'2024-03-05T12:30:00Z'"},
		{name: "string array", value: []string{"mon", "tue"}, expected: "ARRAY['mon','tue']::text[]"},
		{name: "array quotes doubled", value: []any{"d'Ávila", 3}, expected: "ARRAY['d''Ávila','3']::text[]"},
		{name: "empty array", value: []string{}, expected: "ARRAY[]::text[]"},
		{name: "array with null", value: []any{"a", nil}, expected: "ARRAY['a',NULL]::text[]"},
		{name: "json object", value: map[string]any{"lat": 1.5}, expected: `'{"lat":1.5}'`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, SQLLiteral(tt.value))
		})
	}
}

func TestCSVField(t *testing.T) {
	tests := []struct {
		name     string
		value    any
		expected string
	}{
		{name: "null is empty", value: nil, expected: ""},
		{name: "plain", value: "Ana", expected: "Ana"},
		{name: "comma", value: "A, B", expected: `"A, B"`},
		{name: "quote", value: `say "hi"`, expected: `"say ""hi"""`},
		{name: "newline", value: "line1\nline2", expected: "\"line1\nline2\""},
		{name: "bool", value: true, expected: "true"},
		{name: "number", value: 480, expected: "480"},
		{name: "array joined and quoted", value: []string{"a", "b"}, expected: `"a,b"`},
		{name: "single element array", value: []string{"a"}, expected: "a"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, CSVField(tt.value))
		})
	}
}
