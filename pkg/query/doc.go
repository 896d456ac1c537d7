// Package query composes SELECT, UPDATE and DELETE statements from a small
// tree model and renders them as SQL text.
//
// # Model
//
// A QueryComponent describes one statement. SELECT reads either from
// TableName or from a nested QueryComponent in OperatedIn, which is rendered
// recursively and wrapped in parentheses. WHERE chains are ordered lists of
// WhereCondition values; each condition names the connector (AND, OR, NOT)
// that joins it to the condition before it.
//
//	qc := query.QueryComponent{
//	    Action:     query.Select,
//	    TableName:  "users",
//	    FieldNames: []string{"id", "email"},
//	    WhereConditions: []query.WhereCondition{
//	        {FieldName: "org", Value: []string{"1", "2"}, Operator: query.In},
//	        {FieldName: "active", Value: []string{"true"}, Operator: query.Equal, LogicOperator: query.And},
//	    },
//	}
//	sql, err := query.Compile(qc)
//	// SELECT ( id,email ) FROM users WHERE org IN ( '1','2' ) AND active = 'true'
//
// # Literals
//
// Compile inlines values between single quotes and does not escape them.
// Identifiers are never quoted. Two alternatives are available on Compiler:
//
//	query.NewCompiler(query.WithEscapedLiterals())   // doubles embedded quotes
//	query.NewCompiler(query.WithPlaceholders(query.Dollar)).CompileParams(qc)
//	// SELECT ( id,email ) FROM users WHERE org IN ( $1,$2 ) AND active = $3
//
// # Errors
//
// Compilation fails when a required part is missing: UPDATE without Params
// (ErrMissingUpdateParams), DELETE without conditions
// (ErrMissingDeleteCondition) or a condition without values
// (ErrEmptyValueList). A failure inside a subquery is reported as a
// *NestedError that unwraps to the original cause.
package query
