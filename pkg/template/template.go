// Package template builds query trees from tagged record structs.
//
// A record is a struct whose exported fields map to columns. The column name
// comes from the db tag, or the snake_case field name when the tag is absent.
// The auto option marks database-generated columns, which are never written
// by updates:
//
//	type User struct {
//	    ID       int32  `db:"id,auto"`
//	    Email    string `db:"email"`
//	    Password string `db:"password"`
//	    Internal string `db:"-"`
//	}
//
//	func (User) TableName() string { return "users" }
//
//	users, _ := template.For[User]()
//	qc, _ := users.Delete(u, "id")          // DELETE FROM users WHERE id = '7'
//	stmt, _ := users.Update(u, []string{"id"}, "password")
//	// UPDATE users SET password = 'secret' WHERE id = '7'
package template

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/pthm/sqltemplate/pkg/query"
)

var (
	// ErrNotStruct is returned when the record type is not a struct.
	ErrNotStruct = errors.New("sqltemplate: record type must be a struct")

	// ErrNoColumns is returned when a record type maps to no columns.
	ErrNoColumns = errors.New("sqltemplate: record type has no columns")

	// ErrUnknownColumn is returned when a by or on column is not part of the record.
	ErrUnknownColumn = errors.New("sqltemplate: unknown column")

	// ErrNilValue is returned when a nil pointer field is used as a value.
	ErrNilValue = errors.New("sqltemplate: nil value")
)

// Template derives statements for the record type T.
type Template[T any] struct {
	meta     *metadata
	compiler *query.Compiler
}

// Option configures a Template.
type Option func(*options)

type options struct {
	compiler *query.Compiler
}

// WithCompiler sets the compiler used by Update. The default inlines literals.
func WithCompiler(c *query.Compiler) Option {
	return func(o *options) {
		o.compiler = c
	}
}

// For returns the Template for T. Reflection results are cached per type.
func For[T any](opts ...Option) (*Template[T], error) {
	o := options{compiler: query.NewCompiler()}
	for _, opt := range opts {
		opt(&o)
	}

	meta, err := metadataFor(reflect.TypeOf((*T)(nil)).Elem())
	if err != nil {
		return nil, err
	}
	return &Template[T]{meta: meta, compiler: o.compiler}, nil
}

// Table returns the table the record maps to.
func (t *Template[T]) Table() string {
	return t.meta.table
}

// Columns returns the record's columns in field order.
func (t *Template[T]) Columns() []string {
	names := make([]string, len(t.meta.columns))
	for i, c := range t.meta.columns {
		names[i] = c.name
	}
	return names
}

// Select returns a SELECT * of the record's table, restricted to rows whose
// by columns equal the values in rec. With no by columns the SELECT is
// unrestricted. The projection is left empty: a parenthesized column list
// renders as a single row value, which scans as one column.
func (t *Template[T]) Select(rec T, by ...string) (query.QueryComponent, error) {
	conds, err := t.conditions(rec, by)
	if err != nil {
		return query.QueryComponent{}, err
	}
	return query.SelectFrom(t.meta.table).Where(conds...), nil
}

// Delete returns a DELETE of the rows whose by columns equal the values in
// rec. Compiling it without by columns fails with query.ErrMissingDeleteCondition.
func (t *Template[T]) Delete(rec T, by ...string) (query.QueryComponent, error) {
	conds, err := t.conditions(rec, by)
	if err != nil {
		return query.QueryComponent{}, err
	}
	return query.DeleteFrom(t.meta.table, conds...), nil
}

// Update renders an UPDATE of the on columns, filtered by equality on the by
// columns. When on is empty every column that is neither auto nor in by is
// written.
func (t *Template[T]) Update(rec T, by []string, on ...string) (query.Statement, error) {
	if len(on) == 0 {
		on = t.writable(by)
	}

	v := reflect.ValueOf(rec)
	params := make(map[string]string, len(on))
	for _, name := range on {
		col, err := t.column(name)
		if err != nil {
			return query.Statement{}, err
		}
		s, err := literal(v.FieldByIndex(col.index))
		if err != nil {
			return query.Statement{}, fmt.Errorf("column %s: %w", name, err)
		}
		params[name] = s
	}

	conds, err := t.conditions(rec, by)
	if err != nil {
		return query.Statement{}, err
	}
	return t.compiler.FilteredUpdate(query.UpdateTable(t.meta.table, params), conds)
}

// writable returns the columns that are neither auto nor in by, in a slice
// owned by the caller.
func (t *Template[T]) writable(by []string) []string {
	skip := make(map[string]bool, len(by))
	for _, b := range by {
		skip[b] = true
	}
	cols := make([]string, 0, len(t.meta.columns))
	for _, c := range t.meta.columns {
		if !c.auto && !skip[c.name] {
			cols = append(cols, c.name)
		}
	}
	return cols
}

func (t *Template[T]) column(name string) (column, error) {
	col, ok := t.meta.byName[name]
	if !ok {
		return column{}, fmt.Errorf("%w: %s.%s", ErrUnknownColumn, t.meta.table, name)
	}
	return col, nil
}

// conditions builds AND-joined equality conditions for the by columns.
func (t *Template[T]) conditions(rec T, by []string) ([]query.WhereCondition, error) {
	if len(by) == 0 {
		return nil, nil
	}
	v := reflect.ValueOf(rec)
	conds := make([]query.WhereCondition, len(by))
	for i, name := range by {
		col, err := t.column(name)
		if err != nil {
			return nil, err
		}
		s, err := literal(v.FieldByIndex(col.index))
		if err != nil {
			return nil, fmt.Errorf("column %s: %w", name, err)
		}
		conds[i] = query.Eq(name, s)
	}
	return query.AllOf(conds...), nil
}
