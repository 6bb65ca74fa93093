// internal/query/statement.go
//
// Dynamic Statement Builder.
//
// Context
// -------
// Build turns a validated FieldSet into one parameterized INSERT, UPDATE, or
// DELETE.  Statement text is assembled only from descriptor identifiers and
// fixed keywords; every value travels in Params and is bound by the driver.
// Placeholders use sqlx named syntax (`:col`), rebound to the driver's
// bindvar style by the store.
//
// Workflow
// --------
//   - Insert → INSERT INTO t (c1, c2) VALUES (:c1, :c2) [RETURNING id]
//   - Update → UPDATE t SET c1 = :c1 [, updated_at = CURRENT_TIMESTAMP]
//     WHERE id = :pk_id
//   - Delete → DELETE FROM t WHERE id = :pk_id
//
// Notes
// -----
//   - The key is always the id column and always bound as :pk_id, which no
//     allow-listed column may use.
//   - Columns are re-checked against the table even though Validate already
//     did; a FieldSet built with NewFieldSet goes through the same gate.
package query

import (
	"errors"
	"fmt"
	"strings"

	"github.com/joel-cespedes/petit/internal/apperr"
	"github.com/joel-cespedes/petit/internal/schema"
)

// Kind is the statement verb.
type Kind int

const (
	Insert Kind = iota + 1
	Update
	Delete
	Select
)

func (k Kind) String() string {
	switch k {
	case Insert:
		return "insert"
	case Update:
		return "update"
	case Delete:
		return "delete"
	case Select:
		return "select"
	default:
		return "unknown"
	}
}

// Dialect selects the few syntax differences between supported drivers.
type Dialect int

const (
	MySQL Dialect = iota
	Postgres
	SQLite
)

// DialectFor maps a database/sql driver name onto a Dialect.
func DialectFor(driver string) Dialect {
	switch driver {
	case "pgx", "postgres":
		return Postgres
	case "sqlite3", "sqlite":
		return SQLite
	default:
		return MySQL
	}
}

// KeyParam is the reserved named parameter carrying the row id.
const KeyParam = "pk_id"

var (
	ErrNoKey       = errors.New("query: statement requires a key")
	ErrUnknownKind = errors.New("query: unsupported statement kind")
)

// Key addresses one row by id.
type Key struct {
	ID int64
}

// Statement is parameterized text plus its bound values.  Text never
// contains a caller-supplied value.
type Statement struct {
	Table     string
	Kind      Kind
	Text      string
	Params    map[string]any
	Returning bool // Text ends in RETURNING id; run as a query
}

// Builder assembles statements for one dialect.
type Builder struct {
	dialect Dialect
}

// NewBuilder returns a Builder for d.
func NewBuilder(d Dialect) Builder { return Builder{dialect: d} }

// Dialect reports the builder's dialect.
func (b Builder) Dialect() Dialect { return b.dialect }

// Build assembles a write statement for t.
func (b Builder) Build(t *schema.Table, kind Kind, fs FieldSet, key *Key) (Statement, error) {
	if t.Has(KeyParam) {
		return Statement{}, fmt.Errorf("query: %s declares reserved column %s", t.Name, KeyParam)
	}
	for _, f := range fs.fields {
		if !t.Has(f.Column) {
			return Statement{}, &apperr.UnknownFieldError{Table: t.Name, Field: f.Column}
		}
	}

	switch kind {
	case Insert:
		return b.insert(t, fs)
	case Update:
		if key == nil {
			return Statement{}, ErrNoKey
		}
		return b.update(t, fs, key.ID)
	case Delete:
		if key == nil {
			return Statement{}, ErrNoKey
		}
		return Statement{
			Table:  t.Name,
			Kind:   Delete,
			Text:   "DELETE FROM " + t.Name + " WHERE id = :" + KeyParam,
			Params: map[string]any{KeyParam: key.ID},
		}, nil
	default:
		return Statement{}, ErrUnknownKind
	}
}

func (b Builder) insert(t *schema.Table, fs FieldSet) (Statement, error) {
	if len(fs.fields) == 0 {
		return Statement{}, apperr.ErrEmptyPayload
	}
	cols := make([]string, 0, len(fs.fields))
	binds := make([]string, 0, len(fs.fields))
	params := make(map[string]any, len(fs.fields))
	for _, f := range fs.fields {
		cols = append(cols, f.Column)
		binds = append(binds, ":"+f.Column)
		params[f.Column] = f.Value
	}

	var sb strings.Builder
	sb.WriteString("INSERT INTO ")
	sb.WriteString(t.Name)
	sb.WriteString(" (")
	sb.WriteString(strings.Join(cols, ", "))
	sb.WriteString(") VALUES (")
	sb.WriteString(strings.Join(binds, ", "))
	sb.WriteString(")")

	st := Statement{Table: t.Name, Kind: Insert, Params: params}
	if b.dialect == Postgres {
		sb.WriteString(" RETURNING id")
		st.Returning = true
	}
	st.Text = sb.String()
	return st, nil
}

func (b Builder) update(t *schema.Table, fs FieldSet, id int64) (Statement, error) {
	sets := make([]string, 0, len(fs.fields)+1)
	params := make(map[string]any, len(fs.fields)+1)
	for _, f := range fs.fields {
		sets = append(sets, f.Column+" = :"+f.Column)
		params[f.Column] = f.Value
	}
	if t.Stamped {
		sets = append(sets, schema.ColUpdatedAt+" = CURRENT_TIMESTAMP")
	}
	if len(sets) == 0 {
		return Statement{}, apperr.ErrEmptyPayload
	}
	params[KeyParam] = id

	return Statement{
		Table:  t.Name,
		Kind:   Update,
		Text:   "UPDATE " + t.Name + " SET " + strings.Join(sets, ", ") + " WHERE id = :" + KeyParam,
		Params: params,
	}, nil
}

// ReplaceLinks returns the delete + insert pair that makes owner's
// associations exactly ids.  An empty ids yields only the delete.
func (b Builder) ReplaceLinks(l *schema.Link, owner int64, ids []int64) []Statement {
	stmts := []Statement{{
		Table:  l.JoinTable,
		Kind:   Delete,
		Text:   "DELETE FROM " + l.JoinTable + " WHERE " + l.OwnerColumn + " = :owner_id",
		Params: map[string]any{"owner_id": owner},
	}}
	if len(ids) == 0 {
		return stmts
	}

	rows := make([]string, len(ids))
	params := make(map[string]any, len(ids)+1)
	params["owner_id"] = owner
	for i, id := range ids {
		name := fmt.Sprintf("target_%d", i)
		rows[i] = "(:owner_id, :" + name + ")"
		params[name] = id
	}
	return append(stmts, Statement{
		Table: l.JoinTable,
		Kind:  Insert,
		Text: "INSERT INTO " + l.JoinTable + " (" + l.OwnerColumn + ", " + l.TargetColumn +
			") VALUES " + strings.Join(rows, ", "),
		Params: params,
	})
}
