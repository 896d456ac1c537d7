package query

// Condition constructors. The connector is attached with Chain or by setting
// LogicOperator directly.

// Eq returns field = 'value'.
func Eq(field, value string) WhereCondition {
	return WhereCondition{FieldName: field, Value: []string{value}, Operator: Equal}
}

// Ne returns field <> 'value'.
func Ne(field, value string) WhereCondition {
	return WhereCondition{FieldName: field, Value: []string{value}, Operator: NotEqual}
}

// Contains returns field LIKE '%value%'.
func Contains(field, value string) WhereCondition {
	return WhereCondition{FieldName: field, Value: []string{value}, Operator: Like}
}

// NotContains returns field NOT LIKE '%value%'.
func NotContains(field, value string) WhereCondition {
	return WhereCondition{FieldName: field, Value: []string{value}, Operator: NotLike}
}

// AnyOf returns field IN ( 'v1',... ).
func AnyOf(field string, values ...string) WhereCondition {
	return WhereCondition{FieldName: field, Value: values, Operator: In}
}

// NoneOf returns field NOT IN ( 'v1',... ).
func NoneOf(field string, values ...string) WhereCondition {
	return WhereCondition{FieldName: field, Value: values, Operator: NotIn}
}

// With returns a copy of w joined to its predecessor by op.
func (w WhereCondition) With(op LogicOperator) WhereCondition {
	w.LogicOperator = op
	return w
}

// Chain joins conds with op. The first condition keeps whatever connector
// it already has; every following condition gets op.
func Chain(op LogicOperator, conds ...WhereCondition) []WhereCondition {
	out := make([]WhereCondition, len(conds))
	for i, c := range conds {
		if i > 0 {
			c.LogicOperator = op
		}
		out[i] = c
	}
	return out
}

// AllOf joins conds with AND.
func AllOf(conds ...WhereCondition) []WhereCondition {
	return Chain(And, conds...)
}

// EitherOf joins conds with OR.
func EitherOf(conds ...WhereCondition) []WhereCondition {
	return Chain(Or, conds...)
}

// SelectFrom returns a SELECT over table projecting fields (all when empty).
func SelectFrom(table string, fields ...string) QueryComponent {
	return QueryComponent{Action: Select, TableName: table, FieldNames: fields}
}

// SelectFromQuery returns a SELECT reading from the subquery sub.
func SelectFromQuery(sub QueryComponent, fields ...string) QueryComponent {
	return QueryComponent{Action: Select, OperatedIn: &sub, FieldNames: fields}
}

// UpdateTable returns an UPDATE of table with the given assignments.
func UpdateTable(table string, params map[string]string) QueryComponent {
	return QueryComponent{Action: Update, TableName: table, Params: params}
}

// DeleteFrom returns a DELETE from table restricted by conds.
func DeleteFrom(table string, conds ...WhereCondition) QueryComponent {
	return QueryComponent{Action: Delete, TableName: table, WhereConditions: conds}
}

// Where returns a copy of qc with conds as its WHERE chain.
func (qc QueryComponent) Where(conds ...WhereCondition) QueryComponent {
	qc.WhereConditions = conds
	return qc
}
