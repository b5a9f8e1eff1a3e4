package export

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"
)

// TimestampLayout is used for every time value written to an export.
const TimestampLayout = time.RFC3339Nano

type valueKind int

const (
	kindNull valueKind = iota
	kindBool
	kindNumber
	kindSequence
	kindText
)

func classify(v any) valueKind {
	switch val := v.(type) {
	case nil:
		return kindNull
	case bool:
		return kindBool
	case int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		json.Number:
		return kindNumber
	case float32:
		return numberKind(float64(val))
	case float64:
		return numberKind(val)
	case []byte, string:
		return kindText
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		// uuid.UUID and friends are fixed size byte arrays with a String method
		if _, ok := v.(fmt.Stringer); ok {
			return kindText
		}
		return kindSequence
	case reflect.Pointer:
		if rv.IsNil() {
			return kindNull
		}
		return classify(rv.Elem().Interface())
	}

	return kindText
}

// NaN and the infinities have no unquoted SQL literal form.
func numberKind(f float64) valueKind {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return kindText
	}
	return kindNumber
}

// elements returns the members of a sequence value.
func elements(v any) []any {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		rv = rv.Elem()
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out
}

// stringify renders v as plain text, without any quoting.
func stringify(v any) string {
	if classify(v) == kindNull {
		return ""
	}
	if rv := reflect.ValueOf(v); rv.Kind() == reflect.Pointer {
		return stringify(rv.Elem().Interface())
	}

	switch val := v.(type) {
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case json.Number:
		return val.String()
	case float32:
		return formatFloat(float64(val), 32)
	case float64:
		return formatFloat(val, 64)
	case time.Time:
		return val.UTC().Format(TimestampLayout)
	case []byte:
		return `\x` + hex.EncodeToString(val)
	case fmt.Stringer:
		return val.String()
	case map[string]any:
		b, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprint(val)
		}
		return string(b)
	}

	if classify(v) == kindSequence {
		elems := elements(v)
		parts := make([]string, len(elems))
		for i, e := range elems {
			parts[i] = stringify(e)
		}
		return strings.Join(parts, ",")
	}

	return fmt.Sprint(v)
}

func formatFloat(f float64, bits int) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	}
	return strconv.FormatFloat(f, 'f', -1, bits)
}
