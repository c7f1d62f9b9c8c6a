// ABOUTME: In-process evaluation of record queries: filtering, ordering, paging, projection
// ABOUTME: Shared by the memory client and the SQLite record store
package apper

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// IntValue reads an integer id from a JSON-ish value. Expanded lookup objects
// yield their Id.
func IntValue(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	case json.Number:
		i, err := strconv.Atoi(n.String())
		if err != nil {
			f, ferr := n.Float64()
			if ferr != nil {
				return 0, false
			}
			return int(f), true
		}
		return i, true
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(n))
		return i, err == nil
	case map[string]any:
		return IntValue(n[FieldID])
	case Record:
		return IntValue(n[FieldID])
	}
	return 0, false
}

func text(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case map[string]any:
		return text(s[FieldID])
	case Record:
		return text(s[FieldID])
	}
	return fmt.Sprint(v)
}

func matches(rec Record, c Condition) bool {
	got := text(rec[c.Field])
	switch c.Operator {
	case OpContains:
		for _, v := range c.Values {
			if strings.Contains(strings.ToLower(got), strings.ToLower(text(v))) {
				return true
			}
		}
		return false
	case OpNotEqualTo:
		for _, v := range c.Values {
			if got == text(v) {
				return false
			}
		}
		return true
	default:
		for _, v := range c.Values {
			if got == text(v) {
				return true
			}
		}
		return false
	}
}

func matchesGroup(rec Record, g WhereGroup) bool {
	if len(g.Conditions) == 0 {
		return true
	}
	or := strings.EqualFold(g.Operator, "OR")
	for _, c := range g.Conditions {
		ok := matches(rec, c)
		if or && ok {
			return true
		}
		if !or && !ok {
			return false
		}
	}
	return !or
}

// Match reports whether rec satisfies every condition and group of q.
func Match(rec Record, q Query) bool {
	for _, c := range q.Where {
		if !matches(rec, c) {
			return false
		}
	}
	for _, g := range q.WhereGroups {
		if !matchesGroup(rec, g) {
			return false
		}
	}
	return true
}

func less(a, b any) bool {
	af, aerr := strconv.ParseFloat(text(a), 64)
	bf, berr := strconv.ParseFloat(text(b), 64)
	if aerr == nil && berr == nil {
		return af < bf
	}
	return text(a) < text(b)
}

// Apply filters, orders and pages records. It returns the page and the
// number of matches before paging.
func Apply(records []Record, q Query) ([]Record, int) {
	out := make([]Record, 0, len(records))
	for _, r := range records {
		if Match(r, q) {
			out = append(out, r)
		}
	}

	if len(q.OrderBy) > 0 {
		sort.SliceStable(out, func(i, j int) bool {
			for _, o := range q.OrderBy {
				a, b := out[i][o.Field], out[j][o.Field]
				if text(a) == text(b) {
					continue
				}
				if strings.EqualFold(o.Direction, Desc) {
					return less(b, a)
				}
				return less(a, b)
			}
			return false
		})
	}

	total := len(out)
	if q.Paging.Offset > 0 {
		if q.Paging.Offset >= len(out) {
			return []Record{}, total
		}
		out = out[q.Paging.Offset:]
	}
	if q.Paging.Limit > 0 && len(out) > q.Paging.Limit {
		out = out[:q.Paging.Limit]
	}
	return out, total
}

// Resolver loads a record from another table for lookup expansion.
type Resolver func(table string, id int) (Record, bool)

// Project copies the requested fields of rec (always including Id) and
// expands referenced lookups. An empty field list keeps every column.
func Project(rec Record, fields []FieldSpec, resolve Resolver) Record {
	var out Record
	if len(fields) == 0 {
		out = rec.Clone()
	} else {
		out = Record{FieldID: rec[FieldID]}
		for _, f := range fields {
			if v, ok := rec[f.Name]; ok {
				out[f.Name] = v
			}
		}
	}

	for _, f := range fields {
		if f.Reference == nil || resolve == nil {
			continue
		}
		id, ok := IntValue(out[f.Name])
		if !ok || id == 0 {
			continue
		}
		ref, found := resolve(f.Reference.Table, id)
		if !found {
			continue
		}
		parts := make([]string, 0, len(f.Reference.Fields))
		for _, name := range f.Reference.Fields {
			if s := strings.TrimSpace(text(ref[name])); s != "" {
				parts = append(parts, s)
			}
		}
		out[f.Name] = map[string]any{FieldID: id, FieldName: strings.Join(parts, " ")}
	}
	return out
}
