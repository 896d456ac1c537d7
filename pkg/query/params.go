package query

import (
	"fmt"
	"strconv"
	"strings"
)

// PlaceholderStyle selects how CompileParams marks bound arguments.
type PlaceholderStyle int

const (
	// PlaceholderNone inlines literals. CompileParams treats it as Dollar.
	PlaceholderNone PlaceholderStyle = iota
	// Dollar emits $1, $2, ... (PostgreSQL: lib/pq, pgx).
	Dollar
	// Question emits ? for every argument (MySQL, SQLite).
	Question
)

func (s PlaceholderStyle) placeholder(n int) string {
	if s == Question {
		return "?"
	}
	return "$" + strconv.Itoa(n)
}

// String returns the configuration name of the style.
func (s PlaceholderStyle) String() string {
	switch s {
	case Dollar:
		return "dollar"
	case Question:
		return "question"
	default:
		return "none"
	}
}

// ParsePlaceholderStyle maps a configuration value to a PlaceholderStyle.
func ParsePlaceholderStyle(s string) (PlaceholderStyle, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return PlaceholderNone, nil
	case "dollar", "$", "postgres":
		return Dollar, nil
	case "question", "?", "mysql", "sqlite":
		return Question, nil
	default:
		return PlaceholderNone, fmt.Errorf("unknown placeholder style %q", s)
	}
}

// Statement is SQL text with its bound arguments in placeholder order.
type Statement struct {
	SQL  string
	Args []any
}

// CompileParams renders qc with placeholders instead of inlined literals.
// Values are returned as arguments, LIKE patterns already wrapped in %.
// Statement shape and error behavior match Compile.
func (c *Compiler) CompileParams(qc QueryComponent) (Statement, error) {
	r := renderer{style: c.style}
	if r.style == PlaceholderNone {
		r.style = Dollar
	}
	sql, err := r.statement(&qc)
	if err != nil {
		return Statement{}, err
	}
	return Statement{SQL: sql, Args: r.args}, nil
}

// Statement renders qc according to the compiler's configuration: inlined
// literals when no placeholder style was set, bound arguments otherwise.
func (c *Compiler) Statement(qc QueryComponent) (Statement, error) {
	if c.Parameterized() {
		return c.CompileParams(qc)
	}
	sql, err := c.Compile(qc)
	if err != nil {
		return Statement{}, err
	}
	return Statement{SQL: sql}, nil
}

// FilteredUpdate renders an UPDATE followed by a WHERE clause built from
// conds. The UPDATE model itself carries no conditions, so the filter is
// assembled separately and numbered after the assignments. An empty conds
// yields the unconditional UPDATE.
func (c *Compiler) FilteredUpdate(qc QueryComponent, conds []WhereCondition) (Statement, error) {
	if qc.Action != Update {
		return Statement{}, fmt.Errorf("%w: got %s", ErrNotUpdate, qc.Action)
	}
	r := renderer{style: c.style, escape: c.escape}
	sql, err := r.statement(&qc)
	if err != nil {
		return Statement{}, err
	}
	if len(conds) > 0 {
		where, err := r.where(conds)
		if err != nil {
			return Statement{}, err
		}
		sql += " " + where
	}
	return Statement{SQL: sql, Args: r.args}, nil
}
