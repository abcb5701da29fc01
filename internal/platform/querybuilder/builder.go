package querybuilder

import (
	"fmt"
	"strconv"
	"strings"
)

// Placeholder renders the bind marker for the i-th argument, starting at 1.
type Placeholder func(i int) string

// Dollar renders $1, $2, ...
func Dollar(i int) string {
	return "$" + strconv.Itoa(i)
}

// Question renders positional ? markers, as used by SQLite and MySQL.
func Question(int) string {
	return "?"
}

type sqlState struct {
	args        []any
	index       int
	placeholder Placeholder
}

func newState(placeholder Placeholder, capacity int) *sqlState {
	if placeholder == nil {
		placeholder = Dollar
	}
	return &sqlState{args: make([]any, 0, capacity), index: 1, placeholder: placeholder}
}

func (s *sqlState) bind(v any) string {
	s.args = append(s.args, v)
	p := s.placeholder(s.index)
	s.index++
	return p
}

type Condition interface {
	appendSQL(buf *strings.Builder, st *sqlState)
}

type eqCondition struct {
	column string
	value  any
}

func Eq(column string, value any) Condition {
	return eqCondition{column: column, value: value}
}

func (c eqCondition) appendSQL(buf *strings.Builder, st *sqlState) {
	buf.WriteString(c.column)
	buf.WriteString(" = ")
	buf.WriteString(st.bind(c.value))
}

type SelectBuilder struct {
	columns     []string
	table       string
	where       []Condition
	placeholder Placeholder
}

func Select(columns ...string) *SelectBuilder {
	return &SelectBuilder{columns: append([]string(nil), columns...)}
}

func (b *SelectBuilder) From(table string) *SelectBuilder {
	b.table = table
	return b
}

func (b *SelectBuilder) Where(conditions ...Condition) *SelectBuilder {
	b.where = append(b.where, conditions...)
	return b
}

func (b *SelectBuilder) PlaceholderFormat(p Placeholder) *SelectBuilder {
	b.placeholder = p
	return b
}

func (b *SelectBuilder) ToSQL() (string, []any, error) {
	if len(b.columns) == 0 {
		return "", nil, fmt.Errorf("select columns are required")
	}
	if strings.TrimSpace(b.table) == "" {
		return "", nil, fmt.Errorf("select table is required")
	}

	var buf strings.Builder
	buf.WriteString("SELECT ")
	buf.WriteString(strings.Join(b.columns, ", "))
	buf.WriteString(" FROM ")
	buf.WriteString(b.table)

	st := newState(b.placeholder, len(b.where))
	appendWhereClause(&buf, b.where, st)

	return buf.String(), st.args, nil
}

type InsertBuilder struct {
	table       string
	columns     []string
	rows        [][]any
	suffix      string
	placeholder Placeholder
}

func InsertInto(table string) *InsertBuilder {
	return &InsertBuilder{table: table}
}

func (b *InsertBuilder) Columns(columns ...string) *InsertBuilder {
	b.columns = append([]string(nil), columns...)
	return b
}

func (b *InsertBuilder) Values(values ...any) *InsertBuilder {
	b.rows = append(b.rows, append([]any(nil), values...))
	return b
}

func (b *InsertBuilder) Suffix(sql string) *InsertBuilder {
	b.suffix = strings.TrimSpace(sql)
	return b
}

func (b *InsertBuilder) PlaceholderFormat(p Placeholder) *InsertBuilder {
	b.placeholder = p
	return b
}

func (b *InsertBuilder) ToSQL() (string, []any, error) {
	if strings.TrimSpace(b.table) == "" {
		return "", nil, fmt.Errorf("insert table is required")
	}
	if len(b.columns) == 0 {
		return "", nil, fmt.Errorf("insert columns are required")
	}
	if len(b.rows) == 0 {
		return "", nil, fmt.Errorf("insert values are required")
	}

	var buf strings.Builder
	buf.WriteString("INSERT INTO ")
	buf.WriteString(b.table)
	buf.WriteString(" (")
	buf.WriteString(strings.Join(b.columns, ", "))
	buf.WriteString(") VALUES ")

	st := newState(b.placeholder, len(b.rows)*len(b.columns))
	for rowIdx, row := range b.rows {
		if len(row) != len(b.columns) {
			return "", nil, fmt.Errorf("insert row %d has %d values, expected %d", rowIdx, len(row), len(b.columns))
		}
		if rowIdx > 0 {
			buf.WriteString(", ")
		}
		buf.WriteString("(")
		for colIdx, value := range row {
			if colIdx > 0 {
				buf.WriteString(", ")
			}
			buf.WriteString(st.bind(value))
		}
		buf.WriteString(")")
	}

	if b.suffix != "" {
		buf.WriteString(" ")
		buf.WriteString(b.suffix)
	}

	return buf.String(), st.args, nil
}

type DeleteBuilder struct {
	table       string
	where       []Condition
	placeholder Placeholder
}

func Delete(table string) *DeleteBuilder {
	return &DeleteBuilder{table: table}
}

func (b *DeleteBuilder) Where(conditions ...Condition) *DeleteBuilder {
	b.where = append(b.where, conditions...)
	return b
}

func (b *DeleteBuilder) PlaceholderFormat(p Placeholder) *DeleteBuilder {
	b.placeholder = p
	return b
}

// ToSQL refuses to build an unconditional delete.
func (b *DeleteBuilder) ToSQL() (string, []any, error) {
	if strings.TrimSpace(b.table) == "" {
		return "", nil, fmt.Errorf("delete table is required")
	}
	if len(b.where) == 0 {
		return "", nil, fmt.Errorf("delete requires a where clause")
	}

	var buf strings.Builder
	buf.WriteString("DELETE FROM ")
	buf.WriteString(b.table)

	st := newState(b.placeholder, len(b.where))
	appendWhereClause(&buf, b.where, st)
	return buf.String(), st.args, nil
}

func appendWhereClause(buf *strings.Builder, conditions []Condition, st *sqlState) {
	if len(conditions) == 0 {
		return
	}
	buf.WriteString(" WHERE ")
	for i, c := range conditions {
		if i > 0 {
			buf.WriteString(" AND ")
		}
		c.appendSQL(buf, st)
	}
}
