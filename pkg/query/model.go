package query

// WhereCondition is one predicate in a WHERE chain.
type WhereCondition struct {
	// FieldName is the column being tested.
	FieldName string `json:"field_name"`
	// Value holds the literal(s). IN and NOT IN use every entry; the other
	// operators only read Value[0].
	Value []string `json:"value"`
	// LogicOperator joins this condition to the previous one.
	LogicOperator LogicOperator `json:"logic_operator,omitempty"`
	Operator      QueryOperator `json:"operator"`
}

// QueryComponent is one statement or sub-statement.
//
// A component exclusively owns its OperatedIn child; trees are never shared
// between components and cannot contain cycles.
type QueryComponent struct {
	Action    QueryAction `json:"action"`
	TableName string      `json:"table_name,omitempty"`
	// FieldNames is the SELECT projection. Empty selects every column.
	FieldNames []string `json:"field_names,omitempty"`
	// OperatedIn replaces TableName as the FROM source of a SELECT.
	OperatedIn *QueryComponent `json:"operated_in,omitempty"`
	// Params holds UPDATE assignments keyed by column.
	Params          map[string]string `json:"params,omitempty"`
	WhereConditions []WhereCondition  `json:"where_conditions,omitempty"`
}

// HasConditions reports whether the component carries a non-empty WHERE chain.
func (c QueryComponent) HasConditions() bool {
	return len(c.WhereConditions) > 0
}

// Depth returns the number of components in the OperatedIn chain, including c.
func (c QueryComponent) Depth() int {
	n := 0
	for cur := &c; cur != nil; cur = cur.OperatedIn {
		n++
	}
	return n
}
