package query

import (
	"errors"
	"sort"
	"strings"
)

// ErrMissingTableName is returned when a statement has neither a table nor,
// for SELECT, a subquery to read from.
var ErrMissingTableName = errors.New("sqltemplate: missing table name")

// Compiler turns QueryComponent trees into SQL text.
//
// The zero configuration inlines every literal between single quotes without
// escaping, so callers must only pass values that are already safe. Use
// WithEscapedLiterals or CompileParams when values come from untrusted input.
//
// A Compiler holds no mutable state and is safe for concurrent use.
type Compiler struct {
	style  PlaceholderStyle
	escape bool
}

// Option configures a Compiler.
type Option func(*Compiler)

// WithEscapedLiterals doubles single quotes inside inlined literals.
func WithEscapedLiterals() Option {
	return func(c *Compiler) {
		c.escape = true
	}
}

// WithPlaceholders selects the placeholder syntax used by CompileParams.
func WithPlaceholders(style PlaceholderStyle) Option {
	return func(c *Compiler) {
		c.style = style
	}
}

// NewCompiler returns a Compiler configured by opts.
func NewCompiler(opts ...Option) *Compiler {
	c := &Compiler{}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var defaultCompiler = NewCompiler()

// Compile renders qc with the default compiler: literals are inlined and not escaped.
func Compile(qc QueryComponent) (string, error) {
	return defaultCompiler.Compile(qc)
}

// SerializeConditions renders a WHERE clause with the default compiler.
// It is exposed so that callers can attach a separately assembled filter to
// statements whose model has no WHERE support, such as UPDATE.
func SerializeConditions(conds []WhereCondition) (string, error) {
	return defaultCompiler.SerializeConditions(conds)
}

// Compile renders qc as a single SQL statement with inlined literals.
//
// When a subquery fails, the returned error is a *NestedError that unwraps to
// the innermost cause. No SQL is returned alongside an error.
func (c *Compiler) Compile(qc QueryComponent) (string, error) {
	r := renderer{escape: c.escape}
	return r.statement(&qc)
}

// SerializeConditions renders conds as a WHERE clause with inlined literals.
func (c *Compiler) SerializeConditions(conds []WhereCondition) (string, error) {
	r := renderer{escape: c.escape}
	return r.where(conds)
}

// Parameterized reports whether the compiler was configured with a placeholder style.
func (c *Compiler) Parameterized() bool {
	return c.style != PlaceholderNone
}

// renderer carries the literal policy for a single compilation. In
// parameterized mode it also collects the arguments in textual order.
type renderer struct {
	escape bool
	style  PlaceholderStyle
	args   []any
}

func (r *renderer) statement(qc *QueryComponent) (string, error) {
	switch qc.Action {
	case Select:
		return r.selectStmt(qc)
	case Update:
		return r.updateStmt(qc)
	case Delete:
		return r.deleteStmt(qc)
	default:
		return "", ErrUnknownAction
	}
}

func (r *renderer) selectStmt(qc *QueryComponent) (string, error) {
	parts := []string{Select.String()}

	if len(qc.FieldNames) == 0 {
		parts = append(parts, "*")
	} else {
		parts = append(parts, "( "+strings.Join(qc.FieldNames, ",")+" )")
	}

	parts = append(parts, "FROM")
	switch {
	case qc.OperatedIn != nil:
		inner, err := r.statement(qc.OperatedIn)
		if err != nil {
			return "", nested(err)
		}
		parts = append(parts, "( "+inner+" )")
	case qc.TableName == "":
		return "", ErrMissingTableName
	default:
		parts = append(parts, qc.TableName)
	}

	if qc.HasConditions() {
		where, err := r.where(qc.WhereConditions)
		if err != nil {
			return "", err
		}
		parts = append(parts, where)
	}

	return strings.Join(parts, " "), nil
}

func (r *renderer) updateStmt(qc *QueryComponent) (string, error) {
	if qc.TableName == "" {
		return "", ErrMissingTableName
	}
	if len(qc.Params) == 0 {
		return "", ErrMissingUpdateParams
	}

	columns := make([]string, 0, len(qc.Params))
	for col := range qc.Params {
		columns = append(columns, col)
	}
	sort.Strings(columns)

	assignments := make([]string, len(columns))
	for i, col := range columns {
		assignments[i] = col + " = " + r.literal(qc.Params[col])
	}

	return Update.String() + " " + qc.TableName + " SET " + strings.Join(assignments, ", "), nil
}

func (r *renderer) deleteStmt(qc *QueryComponent) (string, error) {
	if qc.TableName == "" {
		return "", ErrMissingTableName
	}
	if !qc.HasConditions() {
		return "", ErrMissingDeleteCondition
	}

	where, err := r.where(qc.WhereConditions)
	if err != nil {
		return "", err
	}
	return Delete.String() + " FROM " + qc.TableName + " " + where, nil
}

// literal renders v as a quoted literal, or records it and returns a
// placeholder when the renderer is parameterized.
func (r *renderer) literal(v string) string {
	if r.style != PlaceholderNone {
		r.args = append(r.args, v)
		return r.style.placeholder(len(r.args))
	}
	if r.escape {
		v = strings.ReplaceAll(v, "'", "''")
	}
	return "'" + v + "'"
}
