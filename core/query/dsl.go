// Package query defines the small filter language used to narrow document
// listings. A filter is either a single condition on a document field or a
// group of filters combined with a logical operator. Backends translate filters
// into their native query syntax; Match evaluates them in memory.
package query

// LogicalOperator combines the members of a FilterGroup.
type LogicalOperator string

// Logical operators for combining filter conditions.
const (
	LogicalOperatorAnd LogicalOperator = "and" // All conditions must be true
	LogicalOperatorOr  LogicalOperator = "or"  // At least one condition must be true
	LogicalOperatorNot LogicalOperator = "not" // None of the conditions may be true
)

// ComparisonOperator defines the set of operators that can be used in a filter condition.
type ComparisonOperator string

// Supported comparison operators.
const (
	ComparisonOperatorEq         ComparisonOperator = "eq"
	ComparisonOperatorNeq        ComparisonOperator = "neq"
	ComparisonOperatorIn         ComparisonOperator = "in"
	ComparisonOperatorNin        ComparisonOperator = "nin"
	ComparisonOperatorContains   ComparisonOperator = "contains"
	ComparisonOperatorStartsWith ComparisonOperator = "startswith"
	ComparisonOperatorExists     ComparisonOperator = "exists"
	ComparisonOperatorNotExists  ComparisonOperator = "nexists"
)

var standardComparisonOperators = map[ComparisonOperator]struct{}{
	ComparisonOperatorEq:         {},
	ComparisonOperatorNeq:        {},
	ComparisonOperatorIn:         {},
	ComparisonOperatorNin:        {},
	ComparisonOperatorContains:   {},
	ComparisonOperatorStartsWith: {},
	ComparisonOperatorExists:     {},
	ComparisonOperatorNotExists:  {},
}

// IsStandard reports whether the operator is understood by every backend.
func (o ComparisonOperator) IsStandard() bool {
	_, ok := standardComparisonOperators[o]
	return ok
}

// GetStandardComparisonOperators returns a copy of the set of supported operators.
func GetStandardComparisonOperators() map[ComparisonOperator]struct{} {
	out := make(map[ComparisonOperator]struct{}, len(standardComparisonOperators))
	for op := range standardComparisonOperators {
		out[op] = struct{}{}
	}
	return out
}

// FilterValue represents the value used in a filter condition.
type FilterValue any

// FilterCondition defines a single condition on a top-level document field.
type FilterCondition struct {
	Field    string             `json:"field"`
	Operator ComparisonOperator `json:"operator"`
	Value    FilterValue        `json:"value,omitempty"`
}

// FilterGroup combines multiple filters using a logical operator.
type FilterGroup struct {
	Operator   LogicalOperator `json:"operator"`
	Conditions []QueryFilter   `json:"conditions"`
}

// QueryFilter is a union type that can represent either a single filter condition
// or a group of conditions. Exactly one of the two members is set.
type QueryFilter struct {
	Condition *FilterCondition `json:",omitempty"`
	Group     *FilterGroup     `json:",omitempty"`
}
