package query

import (
	"errors"
	"fmt"
)

// Construction errors. They describe a structurally invalid tree; none of them
// originate from a database.
var (
	// ErrMissingUpdateParams is returned when an UPDATE has no assignments.
	ErrMissingUpdateParams = errors.New("sqltemplate: missing update params")

	// ErrMissingDeleteCondition is returned when a DELETE has no WHERE chain.
	// Unconditional deletes cannot be expressed.
	ErrMissingDeleteCondition = errors.New("sqltemplate: missing delete condition")

	// ErrEmptyValueList is returned when a WhereCondition carries no values.
	ErrEmptyValueList = errors.New("sqltemplate: empty value list")

	// ErrUnknownOperator is returned for QueryOperator or LogicOperator values
	// outside the declared set.
	ErrUnknownOperator = errors.New("sqltemplate: unknown operator")

	// ErrUnknownAction is returned for QueryAction values outside the declared set.
	ErrUnknownAction = errors.New("sqltemplate: unknown action")

	// ErrNotUpdate is returned by FilteredUpdate for components whose action
	// is not Update.
	ErrNotUpdate = errors.New("sqltemplate: filtered statement is not an update")
)

// NestedError reports that a subquery reached through OperatedIn failed to
// compile. Err is always the innermost cause; Depth is the number of
// OperatedIn hops from the root component to the one that failed.
type NestedError struct {
	Depth int
	Err   error
}

func (e *NestedError) Error() string {
	return fmt.Sprintf("sqltemplate: subquery at depth %d: %v", e.Depth, e.Err)
}

func (e *NestedError) Unwrap() error {
	return e.Err
}

// nested lifts an error produced by a child component one level up.
func nested(err error) error {
	var ne *NestedError
	if errors.As(err, &ne) {
		return &NestedError{Depth: ne.Depth + 1, Err: ne.Err}
	}
	return &NestedError{Depth: 1, Err: err}
}

// IsMissingUpdateParamsErr returns true if err is or wraps ErrMissingUpdateParams.
func IsMissingUpdateParamsErr(err error) bool {
	return errors.Is(err, ErrMissingUpdateParams)
}

// IsMissingDeleteConditionErr returns true if err is or wraps ErrMissingDeleteCondition.
func IsMissingDeleteConditionErr(err error) bool {
	return errors.Is(err, ErrMissingDeleteCondition)
}

// IsEmptyValueListErr returns true if err is or wraps ErrEmptyValueList.
func IsEmptyValueListErr(err error) bool {
	return errors.Is(err, ErrEmptyValueList)
}

// IsNestedErr returns true if err is or wraps a *NestedError.
func IsNestedErr(err error) bool {
	var ne *NestedError
	return errors.As(err, &ne)
}
