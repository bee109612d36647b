package model

import (
	"bytes"
	"encoding/json"
	"math"
	"sort"
	"strconv"
)

// Table is a column-oriented result as returned by the Tushare Pro API:
// a list of field names and rows of positional values.
type Table struct {
	Fields []string `json:"fields"`
	Items  [][]any  `json:"items"`
}

// Len returns the number of rows
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Items)
}

// Column returns the index of a field, or -1
func (t *Table) Column(name string) int {
	if t == nil {
		return -1
	}
	for i, f := range t.Fields {
		if f == name {
			return i
		}
	}
	return -1
}

// Value returns the raw cell at row i for the named field
func (t *Table) Value(i int, name string) any {
	col := t.Column(name)
	if col < 0 || i < 0 || i >= len(t.Items) || col >= len(t.Items[i]) {
		return nil
	}
	return t.Items[i][col]
}

// String returns the cell as a string. Numbers are formatted without exponent.
func (t *Table) String(i int, name string) string {
	switch v := t.Value(i, name).(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case json.Number:
		return v.String()
	default:
		return ""
	}
}

// Float returns the cell as a nullable float
func (t *Table) Float(i int, name string) Float {
	return ToFloat(t.Value(i, name))
}

// SortBy sorts rows ascending by a string-valued column (dates sort lexically)
func (t *Table) SortBy(name string) {
	col := t.Column(name)
	if col < 0 {
		return
	}
	sort.SliceStable(t.Items, func(a, b int) bool {
		return t.String(a, name) < t.String(b, name)
	})
}

// Dedupe keeps the first row for every distinct value of the named column
func (t *Table) Dedupe(name string) {
	if t.Column(name) < 0 {
		return
	}
	seen := make(map[string]bool, len(t.Items))
	kept := t.Items[:0]
	for i := range t.Items {
		key := t.String(i, name)
		if seen[key] {
			continue
		}
		seen[key] = true
		kept = append(kept, t.Items[i])
	}
	t.Items = kept
}

// Append adds the rows of other, mapping columns by name
func (t *Table) Append(other *Table) {
	if other.Len() == 0 {
		return
	}
	if len(t.Fields) == 0 {
		t.Fields = append([]string(nil), other.Fields...)
	}
	for i := range other.Items {
		row := make([]any, len(t.Fields))
		for c, f := range t.Fields {
			row[c] = other.Value(i, f)
		}
		t.Items = append(t.Items, row)
	}
}

// Records converts rows to maps keyed by field name
func (t *Table) Records() []map[string]any {
	out := make([]map[string]any, 0, t.Len())
	for i := 0; i < t.Len(); i++ {
		rec := make(map[string]any, len(t.Fields))
		for c, f := range t.Fields {
			if c < len(t.Items[i]) {
				rec[f] = t.Items[i][c]
			}
		}
		out = append(out, rec)
	}
	return out
}

// MarshalRecords encodes the table as a JSON array of objects, keeping
// the provider's field order. Non-finite numbers are written as null.
func (t *Table) MarshalRecords() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i := 0; i < t.Len(); i++ {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteByte('{')
		for c, f := range t.Fields {
			if c > 0 {
				buf.WriteByte(',')
			}
			key, err := json.Marshal(f)
			if err != nil {
				return nil, err
			}
			buf.Write(key)
			buf.WriteByte(':')

			var v any
			if c < len(t.Items[i]) {
				v = t.Items[i][c]
			}
			if fv, ok := v.(float64); ok && (math.IsNaN(fv) || math.IsInf(fv, 0)) {
				v = nil
			}
			val, err := json.Marshal(v)
			if err != nil {
				return nil, err
			}
			buf.Write(val)
		}
		buf.WriteByte('}')
	}
	buf.WriteByte(']')
	return buf.Bytes(), nil
}
