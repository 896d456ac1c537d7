package query

import (
	"fmt"
	"strings"
)

// where renders the WHERE clause for conds. Connectors are emitted exactly as
// given, including one attached to the first condition.
func (r *renderer) where(conds []WhereCondition) (string, error) {
	parts := make([]string, 0, len(conds)+1)
	parts = append(parts, "WHERE")

	for i, cond := range conds {
		fragment, err := r.condition(cond)
		if err != nil {
			return "", fmt.Errorf("condition %d (%s): %w", i, cond.FieldName, err)
		}
		if cond.LogicOperator != LogicNone {
			logic := cond.LogicOperator.String()
			if logic == "" {
				return "", fmt.Errorf("condition %d (%s): %w", i, cond.FieldName, ErrUnknownOperator)
			}
			fragment = logic + " " + fragment
		}
		parts = append(parts, fragment)
	}

	return strings.Join(parts, " "), nil
}

func (r *renderer) condition(cond WhereCondition) (string, error) {
	if len(cond.Value) == 0 {
		return "", ErrEmptyValueList
	}

	field := cond.FieldName
	switch cond.Operator {
	case Equal, NotEqual:
		return field + " " + cond.Operator.String() + " " + r.literal(cond.Value[0]), nil
	case Like, NotLike:
		return field + " " + cond.Operator.String() + " " + r.literal("%"+cond.Value[0]+"%"), nil
	case In, NotIn:
		return field + " " + cond.Operator.String() + " " + r.valueList(cond.Value), nil
	default:
		return "", ErrUnknownOperator
	}
}

// valueList renders values as ( 'v1','v2',...,'vN' ) in input order.
func (r *renderer) valueList(values []string) string {
	items := make([]string, len(values))
	for i, v := range values {
		items[i] = r.literal(v)
	}
	return "( " + strings.Join(items, ",") + " )"
}
