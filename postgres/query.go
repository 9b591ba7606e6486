package postgres

import (
	"fmt"
	"strings"

	"github.com/asaidimu/go-folio/core/query"
)

// FilterCompiler translates query filters into PostgreSQL expressions over a
// JSONB column. Values are compared as text through the ->> operator, which
// renders numbers and booleans the way fmt.Sprint does.
type FilterCompiler struct {
	column string
}

var _ query.FilterCompiler = (*FilterCompiler)(nil)

// NewFilterCompiler returns a compiler targeting the given JSONB column.
func NewFilterCompiler(column string) *FilterCompiler {
	return &FilterCompiler{column: column}
}

// compileState tracks the numbered placeholders handed out while compiling.
type compileState struct {
	offset int
	params []any
}

func (s *compileState) bind(v any) string {
	s.params = append(s.params, v)
	return fmt.Sprintf("$%d", s.offset+len(s.params))
}

// CompileFilter implements query.FilterCompiler. Placeholders start at
// argOffset+1.
func (c *FilterCompiler) CompileFilter(filter *query.QueryFilter, argOffset int) (string, []any, error) {
	if filter == nil {
		return "TRUE", nil, nil
	}
	st := &compileState{offset: argOffset}
	clause, err := c.buildWhereClause(filter, st)
	if err != nil {
		return "", nil, err
	}
	return clause, st.params, nil
}

func (c *FilterCompiler) buildWhereClause(filter *query.QueryFilter, st *compileState) (string, error) {
	if filter.Condition != nil {
		return c.buildCondition(filter.Condition, st)
	}
	if filter.Group == nil {
		return "", fmt.Errorf("invalid filter structure: neither Condition nor Group is set")
	}

	var clauses []string
	for idx := range filter.Group.Conditions {
		clause, err := c.buildWhereClause(&filter.Group.Conditions[idx], st)
		if err != nil {
			return "", err
		}
		clauses = append(clauses, clause)
	}

	switch filter.Group.Operator {
	case query.LogicalOperatorAnd:
		if len(clauses) == 0 {
			return "TRUE", nil
		}
		return "(" + strings.Join(clauses, " AND ") + ")", nil
	case query.LogicalOperatorOr:
		if len(clauses) == 0 {
			return "FALSE", nil
		}
		return "(" + strings.Join(clauses, " OR ") + ")", nil
	case query.LogicalOperatorNot:
		if len(clauses) == 0 {
			return "TRUE", nil
		}
		return "NOT (" + strings.Join(clauses, " OR ") + ")", nil
	default:
		return "", fmt.Errorf("unsupported logical operator %q", filter.Group.Operator)
	}
}

func (c *FilterCompiler) buildCondition(cond *query.FilterCondition, st *compileState) (string, error) {
	switch cond.Operator {
	case query.ComparisonOperatorExists:
		return fmt.Sprintf("jsonb_exists(%s, %s)", c.column, st.bind(cond.Field)), nil
	case query.ComparisonOperatorNotExists:
		return fmt.Sprintf("NOT jsonb_exists(%s, %s)", c.column, st.bind(cond.Field)), nil
	}

	var vals []any
	if cond.Operator == query.ComparisonOperatorIn || cond.Operator == query.ComparisonOperatorNin {
		var ok bool
		if vals, ok = query.ListValues(cond.Value); !ok {
			return "", fmt.Errorf("operator %q on field %q needs a list value", cond.Operator, cond.Field)
		}
		// nothing may be bound for a constant clause
		if len(vals) == 0 {
			if cond.Operator == query.ComparisonOperatorIn {
				return "FALSE", nil
			}
			return "TRUE", nil
		}
	}

	accessor := fmt.Sprintf("(%s ->> %s)", c.column, st.bind(cond.Field))

	switch cond.Operator {
	case query.ComparisonOperatorEq:
		return fmt.Sprintf("%s = %s", accessor, st.bind(textOf(cond.Value))), nil
	case query.ComparisonOperatorNeq:
		return fmt.Sprintf("%s IS DISTINCT FROM %s", accessor, st.bind(textOf(cond.Value))), nil
	case query.ComparisonOperatorIn, query.ComparisonOperatorNin:
		placeholders := make([]string, len(vals))
		for idx, v := range vals {
			placeholders[idx] = st.bind(textOf(v))
		}
		list := strings.Join(placeholders, ", ")
		if cond.Operator == query.ComparisonOperatorIn {
			return fmt.Sprintf("%s IN (%s)", accessor, list), nil
		}
		return fmt.Sprintf("(%s IS NULL OR %s NOT IN (%s))", accessor, accessor, list), nil
	case query.ComparisonOperatorContains:
		return fmt.Sprintf("strpos(%s, %s) > 0", accessor, st.bind(textOf(cond.Value))), nil
	case query.ComparisonOperatorStartsWith:
		return fmt.Sprintf("strpos(%s, %s) = 1", accessor, st.bind(textOf(cond.Value))), nil
	default:
		return "", fmt.Errorf("unsupported comparison operator for direct SQL: %s", cond.Operator)
	}
}

func textOf(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}
