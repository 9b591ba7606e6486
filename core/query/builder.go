package query

// QueryBuilder provides a fluent API for building a QueryFilter.
//
//	filter := query.NewQueryBuilder().Where("tag").Eq("usaco").Build()
type QueryBuilder struct {
	filter *QueryFilter
}

// NewQueryBuilder creates a new, empty query builder instance.
func NewQueryBuilder() *QueryBuilder {
	return &QueryBuilder{}
}

// Build returns the constructed filter, or nil when nothing was added.
func (qb *QueryBuilder) Build() *QueryFilter {
	return qb.filter
}

// Reset clears the builder.
func (qb *QueryBuilder) Reset() *QueryBuilder {
	qb.filter = nil
	return qb
}

// Where begins a condition on a single field. A builder holds one top-level
// filter; use WhereGroup to combine several conditions.
func (qb *QueryBuilder) Where(field string) *FilterConditionBuilder {
	return &FilterConditionBuilder{
		done: func(f QueryFilter) *QueryBuilder {
			qb.filter = &f
			return qb
		},
		field: field,
	}
}

// WhereGroup begins a group of filters combined with operator.
func (qb *QueryBuilder) WhereGroup(operator LogicalOperator) *FilterGroupBuilder {
	return &FilterGroupBuilder{
		operator: operator,
		end: func(f QueryFilter) *QueryBuilder {
			qb.filter = &f
			return qb
		},
	}
}

// FilterConditionBuilder is used to build a single filter condition (e.g., field = value).
type FilterConditionBuilder struct {
	done  func(QueryFilter) *QueryBuilder
	field string
}

// Eq adds an equality condition.
func (fcb *FilterConditionBuilder) Eq(value FilterValue) *QueryBuilder {
	return fcb.addCondition(ComparisonOperatorEq, value)
}

// Neq adds a not-equal condition.
func (fcb *FilterConditionBuilder) Neq(value FilterValue) *QueryBuilder {
	return fcb.addCondition(ComparisonOperatorNeq, value)
}

// In adds a membership condition.
func (fcb *FilterConditionBuilder) In(values ...FilterValue) *QueryBuilder {
	return fcb.addCondition(ComparisonOperatorIn, values)
}

// Nin adds a non-membership condition.
func (fcb *FilterConditionBuilder) Nin(values ...FilterValue) *QueryBuilder {
	return fcb.addCondition(ComparisonOperatorNin, values)
}

// Contains adds a substring condition.
func (fcb *FilterConditionBuilder) Contains(value string) *QueryBuilder {
	return fcb.addCondition(ComparisonOperatorContains, value)
}

// StartsWith adds a prefix condition.
func (fcb *FilterConditionBuilder) StartsWith(value string) *QueryBuilder {
	return fcb.addCondition(ComparisonOperatorStartsWith, value)
}

// Exists requires the field to be present.
func (fcb *FilterConditionBuilder) Exists() *QueryBuilder {
	return fcb.addCondition(ComparisonOperatorExists, nil)
}

// NotExists requires the field to be absent.
func (fcb *FilterConditionBuilder) NotExists() *QueryBuilder {
	return fcb.addCondition(ComparisonOperatorNotExists, nil)
}

func (fcb *FilterConditionBuilder) addCondition(operator ComparisonOperator, value FilterValue) *QueryBuilder {
	return fcb.done(QueryFilter{Condition: &FilterCondition{
		Field:    fcb.field,
		Operator: operator,
		Value:    value,
	}})
}

// FilterGroupBuilder is used to build a group of filter conditions.
type FilterGroupBuilder struct {
	operator   LogicalOperator
	conditions []QueryFilter
	end        func(QueryFilter) *QueryBuilder
}

// Where adds a condition to the group.
func (fgb *FilterGroupBuilder) Where(field string) *FilterConditionBuilderInGroup {
	return &FilterConditionBuilderInGroup{group: fgb, field: field}
}

// Filter appends an already built filter to the group. Nil filters are ignored.
func (fgb *FilterGroupBuilder) Filter(f *QueryFilter) *FilterGroupBuilder {
	if f != nil {
		fgb.conditions = append(fgb.conditions, *f)
	}
	return fgb
}

// End finalizes the group and returns to the main query builder.
func (fgb *FilterGroupBuilder) End() *QueryBuilder {
	return fgb.end(QueryFilter{Group: &FilterGroup{
		Operator:   fgb.operator,
		Conditions: fgb.conditions,
	}})
}

// FilterConditionBuilderInGroup is used to build a filter condition within a group.
type FilterConditionBuilderInGroup struct {
	group *FilterGroupBuilder
	field string
}

// Eq adds an equality condition to the group.
func (b *FilterConditionBuilderInGroup) Eq(value FilterValue) *FilterGroupBuilder {
	return b.add(ComparisonOperatorEq, value)
}

// Neq adds a not-equal condition to the group.
func (b *FilterConditionBuilderInGroup) Neq(value FilterValue) *FilterGroupBuilder {
	return b.add(ComparisonOperatorNeq, value)
}

// In adds a membership condition to the group.
func (b *FilterConditionBuilderInGroup) In(values ...FilterValue) *FilterGroupBuilder {
	return b.add(ComparisonOperatorIn, values)
}

// Exists adds a presence condition to the group.
func (b *FilterConditionBuilderInGroup) Exists() *FilterGroupBuilder {
	return b.add(ComparisonOperatorExists, nil)
}

// NotExists adds an absence condition to the group.
func (b *FilterConditionBuilderInGroup) NotExists() *FilterGroupBuilder {
	return b.add(ComparisonOperatorNotExists, nil)
}

func (b *FilterConditionBuilderInGroup) add(operator ComparisonOperator, value FilterValue) *FilterGroupBuilder {
	b.group.conditions = append(b.group.conditions, QueryFilter{Condition: &FilterCondition{
		Field:    b.field,
		Operator: operator,
		Value:    value,
	}})
	return b.group
}
