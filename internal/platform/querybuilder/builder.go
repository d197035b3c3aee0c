// Package querybuilder renders the handful of Postgres statements the
// repositories issue. Placeholders are numbered $1..$n in the order values
// are bound, so callers may mix plain values with "?" expressions freely.
package querybuilder

import (
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
)

// binder collects bound values and hands out their positional placeholders.
type binder struct {
	values []any
}

func (b *binder) bind(v any) string {
	b.values = append(b.values, v)
	return "$" + strconv.Itoa(len(b.values))
}

// expand replaces each "?" in expr with the next placeholder. Extra markers
// beyond len(vals) are left untouched.
func (b *binder) expand(expr string, vals []any) string {
	if len(vals) == 0 {
		return expr
	}

	var out strings.Builder
	out.Grow(len(expr) + 2*len(vals))
	next := 0
	for i := 0; i < len(expr); i++ {
		c := expr[i]
		if c != '?' || next >= len(vals) {
			out.WriteByte(c)
			continue
		}
		out.WriteString(b.bind(vals[next]))
		next++
	}
	return out.String()
}

type Condition interface {
	render(sb *strings.Builder, b *binder)
}

type eq struct {
	column string
	value  any
}

func Eq(column string, value any) Condition { return eq{column: column, value: value} }

func (c eq) render(sb *strings.Builder, b *binder) {
	sb.WriteString(c.column + " = " + b.bind(c.value))
}

type in struct {
	column string
	values []any
}

// In matches column against values. An empty set matches nothing.
func In(column string, values []any) Condition { return in{column: column, values: values} }

func (c in) render(sb *strings.Builder, b *binder) {
	if len(c.values) == 0 {
		sb.WriteString("1=0")
		return
	}
	marks := make([]string, len(c.values))
	for i, v := range c.values {
		marks[i] = b.bind(v)
	}
	sb.WriteString(c.column + " IN (" + strings.Join(marks, ", ") + ")")
}

type isNull string

func IsNull(column string) Condition { return isNull(column) }

func (c isNull) render(sb *strings.Builder, _ *binder) {
	sb.WriteString(string(c) + " IS NULL")
}

type expr struct {
	sql  string
	args []any
}

// Expr is a raw fragment whose "?" markers are bound to args in order.
func Expr(sql string, args ...any) Condition { return expr{sql: sql, args: args} }

func (c expr) render(sb *strings.Builder, b *binder) {
	sb.WriteString(b.expand(c.sql, c.args))
}

func renderWhere(sb *strings.Builder, b *binder, conds []Condition) {
	for i, c := range conds {
		if i == 0 {
			sb.WriteString(" WHERE ")
		} else {
			sb.WriteString(" AND ")
		}
		c.render(sb, b)
	}
}

type SelectBuilder struct {
	columns []string
	table   string
	where   []Condition
	orderBy []string
}

func Select(columns ...string) *SelectBuilder {
	return &SelectBuilder{columns: append([]string(nil), columns...)}
}

func (s *SelectBuilder) From(table string) *SelectBuilder {
	s.table = table
	return s
}

func (s *SelectBuilder) Where(conds ...Condition) *SelectBuilder {
	s.where = append(s.where, conds...)
	return s
}

func (s *SelectBuilder) OrderBy(terms ...string) *SelectBuilder {
	s.orderBy = append(s.orderBy, terms...)
	return s
}

func (s *SelectBuilder) ToSQL() (string, []any, error) {
	switch {
	case len(s.columns) == 0:
		return "", nil, errors.New("querybuilder: select needs at least one column")
	case strings.TrimSpace(s.table) == "":
		return "", nil, errors.New("querybuilder: select needs a table")
	}

	var (
		sb strings.Builder
		b  binder
	)
	sb.WriteString("SELECT " + strings.Join(s.columns, ", ") + " FROM " + s.table)
	renderWhere(&sb, &b, s.where)
	if len(s.orderBy) > 0 {
		sb.WriteString(" ORDER BY " + strings.Join(s.orderBy, ", "))
	}
	return sb.String(), b.values, nil
}

type InsertBuilder struct {
	table   string
	columns []string
	rows    [][]any
	suffix  string
}

func InsertInto(table string) *InsertBuilder {
	return &InsertBuilder{table: table}
}

func (i *InsertBuilder) Columns(columns ...string) *InsertBuilder {
	i.columns = append([]string(nil), columns...)
	return i
}

// Values appends one row; call it repeatedly for multi-row inserts.
func (i *InsertBuilder) Values(values ...any) *InsertBuilder {
	i.rows = append(i.rows, append([]any(nil), values...))
	return i
}

// Suffix is appended verbatim, typically an ON CONFLICT or RETURNING clause.
func (i *InsertBuilder) Suffix(sql string) *InsertBuilder {
	i.suffix = strings.TrimSpace(sql)
	return i
}

func (i *InsertBuilder) ToSQL() (string, []any, error) {
	switch {
	case strings.TrimSpace(i.table) == "":
		return "", nil, errors.New("querybuilder: insert needs a table")
	case len(i.columns) == 0:
		return "", nil, errors.New("querybuilder: insert needs columns")
	case len(i.rows) == 0:
		return "", nil, errors.New("querybuilder: insert needs at least one row")
	}

	var (
		sb strings.Builder
		b  binder
	)
	sb.WriteString("INSERT INTO " + i.table + " (" + strings.Join(i.columns, ", ") + ") VALUES ")
	for n, row := range i.rows {
		if len(row) != len(i.columns) {
			return "", nil, errors.Newf("querybuilder: insert row %d has %d values for %d columns", n, len(row), len(i.columns))
		}
		if n > 0 {
			sb.WriteString(", ")
		}
		marks := make([]string, len(row))
		for c, v := range row {
			marks[c] = b.bind(v)
		}
		sb.WriteString("(" + strings.Join(marks, ", ") + ")")
	}
	if i.suffix != "" {
		sb.WriteString(" " + i.suffix)
	}
	return sb.String(), b.values, nil
}

type assignment struct {
	column string
	value  any
	raw    *expr
}

type UpdateBuilder struct {
	table  string
	sets   []assignment
	where  []Condition
	suffix string
}

func Update(table string) *UpdateBuilder {
	return &UpdateBuilder{table: table}
}

func (u *UpdateBuilder) Set(column string, value any) *UpdateBuilder {
	u.sets = append(u.sets, assignment{column: column, value: value})
	return u
}

// SetExpr assigns a SQL expression such as "version + 1" or "NOW()".
func (u *UpdateBuilder) SetExpr(column, sql string, args ...any) *UpdateBuilder {
	u.sets = append(u.sets, assignment{column: column, raw: &expr{sql: sql, args: args}})
	return u
}

func (u *UpdateBuilder) Where(conds ...Condition) *UpdateBuilder {
	u.where = append(u.where, conds...)
	return u
}

func (u *UpdateBuilder) Suffix(sql string) *UpdateBuilder {
	u.suffix = strings.TrimSpace(sql)
	return u
}

func (u *UpdateBuilder) ToSQL() (string, []any, error) {
	switch {
	case strings.TrimSpace(u.table) == "":
		return "", nil, errors.New("querybuilder: update needs a table")
	case len(u.sets) == 0:
		return "", nil, errors.New("querybuilder: update needs at least one assignment")
	}

	var (
		sb strings.Builder
		b  binder
	)
	sb.WriteString("UPDATE " + u.table + " SET ")
	for n, a := range u.sets {
		if n > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(a.column + " = ")
		if a.raw != nil {
			sb.WriteString(b.expand(a.raw.sql, a.raw.args))
			continue
		}
		sb.WriteString(b.bind(a.value))
	}
	renderWhere(&sb, &b, u.where)
	if u.suffix != "" {
		sb.WriteString(" " + u.suffix)
	}
	return sb.String(), b.values, nil
}
