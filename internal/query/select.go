// internal/query/select.go
//
// Read statements for the content resolver and the editor.  Same rule as
// the write path: identifiers from descriptors, values in Params.
package query

import (
	"fmt"
	"strings"

	"github.com/joel-cespedes/petit/internal/lang"
	"github.com/joel-cespedes/petit/internal/schema"
)

// PageID is the fixed row id of every singleton page.
const PageID = 1

// Filter narrows a collection read.
type Filter struct {
	Tag string // tag slug; "" for none
}

func projection(prefix string, ps []schema.Projection) string {
	parts := make([]string, len(ps))
	for i, p := range ps {
		col := prefix + p.Column
		if p.Column == p.As && prefix == "" {
			parts[i] = col
			continue
		}
		parts[i] = col + " AS " + p.As
	}
	return strings.Join(parts, ", ")
}

func sel(t *schema.Table, text string, params map[string]any) Statement {
	return Statement{Table: t.Name, Kind: Select, Text: text, Params: params}
}

// SelectPage reads the singleton row in one language.
func SelectPage(t *schema.Table, l lang.Code) Statement {
	return sel(t,
		"SELECT "+projection("", t.LocalizedFor(l))+" FROM "+t.Name+" WHERE id = :"+KeyParam,
		map[string]any{KeyParam: PageID})
}

// SelectCollection reads a collection in one language, published rows
// only when the table has a publish flag, in the table's fixed order.
func SelectCollection(t *schema.Table, l lang.Code, f Filter) Statement {
	var where []string
	params := map[string]any{}
	if t.Published != "" {
		where = append(where, t.Published+" = TRUE")
	}
	if f.Tag != "" {
		if link := tagLink(t); link != nil {
			where = append(where, "id IN (SELECT jt."+link.OwnerColumn+" FROM "+link.JoinTable+
				" jt JOIN "+link.Target.Name+" tg ON tg.id = jt."+link.TargetColumn+
				" WHERE tg."+link.Target.Slug+" = :tag)")
			params["tag"] = f.Tag
		}
	}

	var sb strings.Builder
	sb.WriteString("SELECT id, ")
	sb.WriteString(projection("", t.LocalizedFor(l)))
	sb.WriteString(" FROM ")
	sb.WriteString(t.Name)
	if len(where) > 0 {
		sb.WriteString(" WHERE ")
		sb.WriteString(strings.Join(where, " AND "))
	}
	sb.WriteString(" ORDER BY ")
	sb.WriteString(t.Order.Clause())
	return sel(t, sb.String(), params)
}

// tagLink returns the first link whose target is slug-addressed.
func tagLink(t *schema.Table) *schema.Link {
	for i := range t.Links {
		if t.Links[i].Target != nil && t.Links[i].Target.Slug != "" {
			return &t.Links[i]
		}
	}
	return nil
}

// SelectBySlug reads one published row by slug.
func SelectBySlug(t *schema.Table, l lang.Code, slug string) Statement {
	text := "SELECT id, " + projection("", t.LocalizedFor(l)) + " FROM " + t.Name +
		" WHERE " + t.Slug + " = :slug"
	if t.Published != "" {
		text += " AND " + t.Published + " = TRUE"
	}
	return sel(t, text+" LIMIT 1", map[string]any{"slug": slug})
}

// SelectByID reads one row with every admin column.
func SelectByID(t *schema.Table, id int64) Statement {
	return sel(t,
		"SELECT "+strings.Join(t.AdminColumns(), ", ")+" FROM "+t.Name+" WHERE id = :"+KeyParam,
		map[string]any{KeyParam: id})
}

// SelectAll reads every row with every admin column, in table order.
func SelectAll(t *schema.Table) Statement {
	return sel(t,
		"SELECT "+strings.Join(t.AdminColumns(), ", ")+" FROM "+t.Name+" ORDER BY "+t.Order.Clause(),
		map[string]any{})
}

// SelectTagsFor reads the localized targets of link for the given owners.
// Each row carries owner_id plus the target's id and projected columns.
func SelectTagsFor(link *schema.Link, l lang.Code, owners []int64) Statement {
	binds := make([]string, len(owners))
	params := make(map[string]any, len(owners))
	for i, id := range owners {
		name := fmt.Sprintf("owner_%d", i)
		binds[i] = ":" + name
		params[name] = id
	}
	text := "SELECT jt." + link.OwnerColumn + " AS owner_id, tg.id AS id, " +
		projection("tg.", link.Target.LocalizedFor(l)) +
		" FROM " + link.JoinTable + " jt JOIN " + link.Target.Name + " tg ON tg.id = jt." + link.TargetColumn +
		" WHERE jt." + link.OwnerColumn + " IN (" + strings.Join(binds, ", ") + ")" +
		" ORDER BY tg.id ASC"
	return Statement{Table: link.JoinTable, Kind: Select, Text: text, Params: params}
}

// SelectLinkIDs reads the target ids linked to one owner.
func SelectLinkIDs(link *schema.Link, owner int64) Statement {
	return Statement{
		Table: link.JoinTable,
		Kind:  Select,
		Text: "SELECT " + link.TargetColumn + " AS id FROM " + link.JoinTable +
			" WHERE " + link.OwnerColumn + " = :owner_id ORDER BY " + link.TargetColumn + " ASC",
		Params: map[string]any{"owner_id": owner},
	}
}

// SelectPageAdmin reads the singleton row with every language and no
// system columns.
func SelectPageAdmin(t *schema.Table) Statement {
	return sel(t,
		"SELECT "+strings.Join(t.Columns(), ", ")+" FROM "+t.Name+" WHERE id = :"+KeyParam,
		map[string]any{KeyParam: PageID})
}
