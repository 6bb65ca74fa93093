// internal/query/fields.go
//
// Field Validator.
//
// Context
// -------
// Admin endpoints accept arbitrary JSON objects.  Validate is the single
// choke point between those maps and statement construction: each key must
// be a column in the target table's allow-list, a declared link field, or a
// system column (which is discarded).  Anything else rejects the whole
// request with *apperr.UnknownFieldError.  Nothing is silently dropped
// except system columns, which admin clients echo back from reads.
//
// Notes
// -----
//   - Only value shape is checked (scalars for columns, integer arrays for
//     link fields).  json.Number becomes int64 or float64 so every driver
//     binds a native number.
//   - When several keys are unknown the first in sorted order is reported
//     so the error is deterministic.
package query

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"

	"github.com/joel-cespedes/petit/internal/apperr"
	"github.com/joel-cespedes/petit/internal/schema"
)

// Field is one validated column/value pair.
type Field struct {
	Column string
	Value  any
}

// FieldSet is the validated, allow-listed payload for one table.  Fields
// are ordered by the table's column declaration order.  Build trusts the
// order but still re-checks every column name.
type FieldSet struct {
	table  *schema.Table
	fields []Field
	links  map[string][]int64
}

// NewFieldSet builds a FieldSet from already-trusted pairs, in the given
// order.  Used by internal callers (submissions, mark-read) that construct
// payloads in code.  Build rejects any column outside the allow-list.
func NewFieldSet(t *schema.Table, fields ...Field) FieldSet {
	return FieldSet{table: t, fields: fields}
}

// Table returns the descriptor the set was validated against.
func (fs FieldSet) Table() *schema.Table { return fs.table }

// Len is the number of column fields (links excluded).
func (fs FieldSet) Len() int { return len(fs.fields) }

// Fields returns the ordered pairs.
func (fs FieldSet) Fields() []Field { return append([]Field(nil), fs.fields...) }

// Columns returns the ordered column names.
func (fs FieldSet) Columns() []string {
	out := make([]string, len(fs.fields))
	for i, f := range fs.fields {
		out[i] = f.Column
	}
	return out
}

// Value returns the value bound to col.
func (fs FieldSet) Value(col string) (any, bool) {
	for _, f := range fs.fields {
		if f.Column == col {
			return f.Value, true
		}
	}
	return nil, false
}

// With returns a copy with col set to v, keeping declaration order.  It is
// a no-op when col is not allow-listed.
func (fs FieldSet) With(col string, v any) FieldSet {
	if !fs.table.Has(col) {
		return fs
	}
	present := map[string]any{col: v}
	for _, f := range fs.fields {
		if f.Column != col {
			present[f.Column] = f.Value
		}
	}
	out := FieldSet{table: fs.table, links: fs.links}
	for _, c := range fs.table.Columns() {
		if val, ok := present[c]; ok {
			out.fields = append(out.fields, Field{Column: c, Value: val})
		}
	}
	return out
}

// Links returns the id arrays supplied for link fields, keyed by field.
func (fs FieldSet) Links() map[string][]int64 { return fs.links }

// Validate checks input against t's allow-list for an operation of kind op.
func Validate(t *schema.Table, input map[string]any, op Kind) (FieldSet, error) {
	if len(input) == 0 {
		return FieldSet{}, apperr.ErrEmptyPayload
	}

	keys := make([]string, 0, len(input))
	for k := range input {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fs := FieldSet{table: t}
	for _, k := range keys {
		switch {
		case schema.IsSystem(k):
			continue
		case t.Has(k):
			if !scalar(input[k]) {
				return FieldSet{}, apperr.Invalid("field %q must be a scalar value", k)
			}
		default:
			if _, ok := t.Link(k); !ok {
				return FieldSet{}, &apperr.UnknownFieldError{Table: t.Name, Field: k}
			}
			ids, err := linkIDs(k, input[k])
			if err != nil {
				return FieldSet{}, err
			}
			if fs.links == nil {
				fs.links = make(map[string][]int64)
			}
			fs.links[k] = ids
		}
	}

	for _, c := range t.Columns() {
		if v, ok := input[c]; ok {
			fs.fields = append(fs.fields, Field{Column: c, Value: number(v)})
		}
	}

	if len(fs.fields) == 0 && len(fs.links) == 0 {
		return FieldSet{}, apperr.ErrEmptyPayload
	}
	if op == Insert && len(fs.fields) == 0 {
		return FieldSet{}, apperr.ErrEmptyPayload
	}
	return fs, nil
}

func scalar(v any) bool {
	switch v.(type) {
	case nil, string, bool, json.Number,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return true
	default:
		return false
	}
}

func number(v any) any {
	n, ok := v.(json.Number)
	if !ok {
		return v
	}
	if i, err := n.Int64(); err == nil {
		return i
	}
	if f, err := n.Float64(); err == nil {
		return f
	}
	return n.String()
}

// linkIDs converts a JSON array of integers into a de-duplicated []int64,
// preserving first-seen order.  null clears the association.
func linkIDs(field string, v any) ([]int64, error) {
	if v == nil {
		return []int64{}, nil
	}
	raw, ok := v.([]any)
	if !ok {
		return nil, apperr.Invalid("field %q must be an array of ids", field)
	}
	seen := make(map[int64]struct{}, len(raw))
	out := make([]int64, 0, len(raw))
	for _, e := range raw {
		id, err := toID(e)
		if err != nil {
			return nil, apperr.Invalid("field %q: %v", field, err)
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out, nil
}

func toID(v any) (int64, error) {
	var id int64
	switch n := v.(type) {
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, fmt.Errorf("id %q is not an integer", n.String())
		}
		id = i
	case float64:
		if n != math.Trunc(n) {
			return 0, fmt.Errorf("id %v is not an integer", n)
		}
		// 2^63 itself is not representable as int64.
		if n >= math.MaxInt64 || n < math.MinInt64 {
			return 0, fmt.Errorf("id %v is out of range", n)
		}
		id = int64(n)
	case int64:
		id = n
	case int:
		id = int64(n)
	default:
		return 0, fmt.Errorf("id %v is not a number", v)
	}
	if id <= 0 {
		return 0, fmt.Errorf("id %d must be positive", id)
	}
	return id, nil
}
