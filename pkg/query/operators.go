package query

import (
	"fmt"
	"strings"
)

// QueryOperator is the comparison applied by a WhereCondition.
type QueryOperator int

const (
	Equal QueryOperator = iota
	NotEqual
	In
	NotIn
	Like
	NotLike
)

// String returns the SQL token for the operator, or "" for values outside the set.
func (o QueryOperator) String() string {
	switch o {
	case Equal:
		return "="
	case NotEqual:
		return "<>"
	case In:
		return "IN"
	case NotIn:
		return "NOT IN"
	case Like:
		return "LIKE"
	case NotLike:
		return "NOT LIKE"
	default:
		return ""
	}
}

// Valid reports whether o is one of the declared operators.
func (o QueryOperator) Valid() bool { return o.String() != "" }

// IsList reports whether the operator consumes the whole value list.
func (o QueryOperator) IsList() bool { return o == In || o == NotIn }

func (o QueryOperator) name() string {
	switch o {
	case Equal:
		return "equal"
	case NotEqual:
		return "not_equal"
	case In:
		return "in"
	case NotIn:
		return "not_in"
	case Like:
		return "like"
	case NotLike:
		return "not_like"
	default:
		return ""
	}
}

// MarshalText implements encoding.TextMarshaler.
func (o QueryOperator) MarshalText() ([]byte, error) {
	if !o.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownOperator, int(o))
	}
	return []byte(o.name()), nil
}

// UnmarshalText accepts the snake_case name ("not_in") or the SQL token ("NOT IN").
func (o *QueryOperator) UnmarshalText(text []byte) error {
	s := normalize(text)
	for _, op := range []QueryOperator{Equal, NotEqual, In, NotIn, Like, NotLike} {
		if s == op.name() || s == normalize([]byte(op.String())) {
			*o = op
			return nil
		}
	}
	switch s {
	case "eq":
		*o = Equal
	case "ne", "neq", "!=":
		*o = NotEqual
	default:
		return fmt.Errorf("%w: %q", ErrUnknownOperator, string(text))
	}
	return nil
}

// LogicOperator joins a condition to the one before it.
// The zero value, LogicNone, means the condition has no connector.
type LogicOperator int

const (
	LogicNone LogicOperator = iota
	Not
	And
	Or
)

// String returns the SQL keyword for the connector. LogicNone renders as "".
func (l LogicOperator) String() string {
	switch l {
	case Not:
		return "NOT"
	case And:
		return "AND"
	case Or:
		return "OR"
	default:
		return ""
	}
}

// MarshalText implements encoding.TextMarshaler.
func (l LogicOperator) MarshalText() ([]byte, error) {
	if l == LogicNone {
		return []byte{}, nil
	}
	if l.String() == "" {
		return nil, fmt.Errorf("%w: logic operator %d", ErrUnknownOperator, int(l))
	}
	return []byte(strings.ToLower(l.String())), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. An empty string decodes to LogicNone.
func (l *LogicOperator) UnmarshalText(text []byte) error {
	switch normalize(text) {
	case "", "none":
		*l = LogicNone
	case "not":
		*l = Not
	case "and":
		*l = And
	case "or":
		*l = Or
	default:
		return fmt.Errorf("%w: logic operator %q", ErrUnknownOperator, string(text))
	}
	return nil
}

// QueryAction is the statement kind of a QueryComponent.
type QueryAction int

const (
	Select QueryAction = iota
	Update
	Delete
)

// String returns the SQL keyword for the action.
func (a QueryAction) String() string {
	switch a {
	case Select:
		return "SELECT"
	case Update:
		return "UPDATE"
	case Delete:
		return "DELETE"
	default:
		return ""
	}
}

// MarshalText implements encoding.TextMarshaler.
func (a QueryAction) MarshalText() ([]byte, error) {
	if a.String() == "" {
		return nil, fmt.Errorf("%w: %d", ErrUnknownAction, int(a))
	}
	return []byte(strings.ToLower(a.String())), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *QueryAction) UnmarshalText(text []byte) error {
	switch normalize(text) {
	case "select":
		*a = Select
	case "update":
		*a = Update
	case "delete":
		*a = Delete
	default:
		return fmt.Errorf("%w: %q", ErrUnknownAction, string(text))
	}
	return nil
}

// normalize lower-cases text and folds spaces and dashes into underscores.
func normalize(text []byte) string {
	s := strings.ToLower(strings.TrimSpace(string(text)))
	s = strings.Join(strings.Fields(s), "_")
	return strings.ReplaceAll(s, "-", "_")
}
