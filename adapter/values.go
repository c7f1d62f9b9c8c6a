// ABOUTME: Value coercion helpers shared by every record normalizer
// ABOUTME: Resolves fallback key chains, lookup objects and loose numeric input
package adapter

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/harperreed/crmdesk/apper"
)

// Lookup is a decoded foreign key. Name is empty when the backend sent a bare id.
type Lookup struct {
	ID   int
	Name string
}

func present(v any) bool {
	switch s := v.(type) {
	case nil:
		return false
	case string:
		return s != ""
	}
	return true
}

// first returns the first non-empty value along the key chain.
func first(rec apper.Record, keys ...string) any {
	for _, k := range keys {
		if v, ok := rec[k]; ok && present(v) {
			return v
		}
	}
	return nil
}

// String reads a text field. Lookup objects yield their display name.
func String(rec apper.Record, keys ...string) string {
	switch v := first(rec, keys...).(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case json.Number:
		return v.String()
	case bool:
		return strconv.FormatBool(v)
	case map[string]any:
		return nameOf(v)
	case apper.Record:
		return nameOf(v)
	}
	return ""
}

func nameOf(m map[string]any) string {
	if s, ok := m[apper.FieldName].(string); ok {
		return s
	}
	return ""
}

// Float reads a numeric field. Numeric strings are parsed; anything else is 0.
func Float(rec apper.Record, keys ...string) float64 {
	switch v := first(rec, keys...).(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case json.Number:
		f, _ := v.Float64()
		return f
	case string:
		return ParseAmount(v)
	}
	return 0
}

// Int reads an integer field, truncating fractional input.
func Int(rec apper.Record, keys ...string) int {
	v := first(rec, keys...)
	if v == nil {
		return 0
	}
	if n, ok := apper.IntValue(v); ok {
		return n
	}
	return int(Float(rec, keys...))
}

// Bool reads a boolean field. "true"/"1" strings and non-zero numbers count as true.
func Bool(rec apper.Record, keys ...string) bool {
	switch v := first(rec, keys...).(type) {
	case bool:
		return v
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		return err == nil && b
	case float64:
		return v != 0
	case int:
		return v != 0
	}
	return false
}

// LookupOf decodes a lookup that arrives either as {Id, Name} or as a bare id.
func LookupOf(rec apper.Record, keys ...string) Lookup {
	switch v := first(rec, keys...).(type) {
	case nil:
		return Lookup{}
	case map[string]any:
		id, _ := apper.IntValue(v[apper.FieldID])
		return Lookup{ID: id, Name: nameOf(v)}
	case apper.Record:
		id, _ := apper.IntValue(v[apper.FieldID])
		return Lookup{ID: id, Name: nameOf(v)}
	default:
		id, _ := apper.IntValue(v)
		return Lookup{ID: id}
	}
}

// ParseID parses a form value as a foreign key. Blank or malformed input is 0.
func ParseID(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

var amountPattern = regexp.MustCompile(`^-?\$?(?:\d{1,3}(?:,\d{3})+|\d*)(?:\.\d+)?$`)

// ParseAmountStrict parses a monetary or percentage value, allowing a leading
// dollar sign and thousands separators. Anything else is an error.
func ParseAmountStrict(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if !amountPattern.MatchString(s) {
		return 0, fmt.Errorf("malformed amount %q", s)
	}
	s = strings.ReplaceAll(strings.Replace(s, "$", "", 1), ",", "")
	return strconv.ParseFloat(s, 64)
}

// ParseAmount is ParseAmountStrict with malformed input read as 0.
func ParseAmount(s string) float64 {
	f, err := ParseAmountStrict(s)
	if err != nil {
		return 0
	}
	return f
}

// NullableID maps the empty foreign key to null.
func NullableID(id int) any {
	if id == 0 {
		return nil
	}
	return id
}

// NullableString maps the empty string to null.
func NullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// putIfSet writes a timestamp only when one is known, so a full replacement
// never blanks a column the UI never held.
func putIfSet(rec apper.Record, key, value string) {
	if value != "" {
		rec[key] = value
	}
}

// joinIDs renders ids as the comma list stored in multi-reference columns.
func joinIDs(ids []int) string {
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, strconv.Itoa(id))
	}
	return strings.Join(parts, ",")
}

// splitIDs reads a comma list or a JSON array of ids, dropping malformed entries.
func splitIDs(rec apper.Record, keys ...string) []int {
	var raw []string
	switch v := first(rec, keys...).(type) {
	case string:
		raw = strings.Split(v, ",")
	case []any:
		for _, item := range v {
			if n, ok := apper.IntValue(item); ok {
				raw = append(raw, strconv.Itoa(n))
			}
		}
	}

	ids := make([]int, 0, len(raw))
	for _, s := range raw {
		if n := ParseID(s); n > 0 {
			ids = append(ids, n)
		}
	}
	return ids
}
