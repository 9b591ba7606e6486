package sqlite

import (
	"fmt"
	"strings"

	"github.com/asaidimu/go-folio/core/query"
)

// FilterCompiler translates query filters into SQLite expressions over the
// JSON data column. Missing keys and JSON nulls both read as SQL NULL, so
// they behave as absent fields just like the in-memory matcher.
type FilterCompiler struct {
	column string
}

var _ query.FilterCompiler = (*FilterCompiler)(nil)

// NewFilterCompiler returns a compiler targeting the given JSON column.
func NewFilterCompiler(column string) *FilterCompiler {
	return &FilterCompiler{column: column}
}

// jsonPath builds a JSON path selecting a top-level key verbatim, so keys
// containing dots are not treated as nested paths.
func jsonPath(field string) string {
	return `$."` + strings.ReplaceAll(field, `"`, `\"`) + `"`
}

// CompileFilter implements query.FilterCompiler. SQLite uses anonymous "?"
// placeholders, so argOffset is not needed.
func (c *FilterCompiler) CompileFilter(filter *query.QueryFilter, argOffset int) (string, []any, error) {
	if filter == nil {
		return "1=1", nil, nil
	}
	var params []any
	clause, err := c.buildWhereClause(filter, &params)
	if err != nil {
		return "", nil, err
	}
	return clause, params, nil
}

// buildWhereClause recursively builds the WHERE clause from a query.QueryFilter.
func (c *FilterCompiler) buildWhereClause(filter *query.QueryFilter, params *[]any) (string, error) {
	if filter.Condition != nil {
		return c.buildCondition(filter.Condition, params)
	}
	if filter.Group == nil {
		return "", fmt.Errorf("invalid filter structure: neither Condition nor Group is set")
	}

	var clauses []string
	for idx := range filter.Group.Conditions {
		clause, err := c.buildWhereClause(&filter.Group.Conditions[idx], params)
		if err != nil {
			return "", err
		}
		clauses = append(clauses, clause)
	}

	switch filter.Group.Operator {
	case query.LogicalOperatorAnd:
		if len(clauses) == 0 {
			return "1=1", nil
		}
		return "(" + strings.Join(clauses, " AND ") + ")", nil
	case query.LogicalOperatorOr:
		if len(clauses) == 0 {
			return "1=0", nil
		}
		return "(" + strings.Join(clauses, " OR ") + ")", nil
	case query.LogicalOperatorNot:
		if len(clauses) == 0 {
			return "1=1", nil
		}
		return "NOT (" + strings.Join(clauses, " OR ") + ")", nil
	default:
		return "", fmt.Errorf("unsupported logical operator %q", filter.Group.Operator)
	}
}

// buildCondition translates a single query.FilterCondition into a SQL condition string.
func (c *FilterCompiler) buildCondition(cond *query.FilterCondition, params *[]any) (string, error) {
	path := jsonPath(cond.Field)
	accessor := fmt.Sprintf("json_extract(%s, ?)", c.column)

	switch cond.Operator {
	case query.ComparisonOperatorEq:
		*params = append(*params, path, cond.Value)
		return accessor + " = ?", nil
	case query.ComparisonOperatorNeq:
		*params = append(*params, path, path, cond.Value)
		return fmt.Sprintf("(%s IS NULL OR %s != ?)", accessor, accessor), nil
	case query.ComparisonOperatorIn, query.ComparisonOperatorNin:
		vals, ok := query.ListValues(cond.Value)
		if !ok {
			return "", fmt.Errorf("operator %q on field %q needs a list value", cond.Operator, cond.Field)
		}
		if len(vals) == 0 {
			if cond.Operator == query.ComparisonOperatorIn {
				return "1=0", nil
			}
			return "1=1", nil
		}
		placeholders := strings.Repeat("?,", len(vals)-1) + "?"
		if cond.Operator == query.ComparisonOperatorIn {
			*params = append(*params, path)
			*params = append(*params, vals...)
			return fmt.Sprintf("%s IN (%s)", accessor, placeholders), nil
		}
		*params = append(*params, path, path)
		*params = append(*params, vals...)
		return fmt.Sprintf("(%s IS NULL OR %s NOT IN (%s))", accessor, accessor, placeholders), nil
	case query.ComparisonOperatorContains:
		*params = append(*params, path, fmt.Sprint(cond.Value))
		return fmt.Sprintf("instr(%s, ?) > 0", accessor), nil
	case query.ComparisonOperatorStartsWith:
		*params = append(*params, path, fmt.Sprint(cond.Value))
		return fmt.Sprintf("instr(%s, ?) = 1", accessor), nil
	case query.ComparisonOperatorExists:
		*params = append(*params, path)
		return fmt.Sprintf("json_type(%s, ?) IS NOT NULL", c.column), nil
	case query.ComparisonOperatorNotExists:
		*params = append(*params, path)
		return fmt.Sprintf("json_type(%s, ?) IS NULL", c.column), nil
	default:
		return "", fmt.Errorf("unsupported comparison operator for direct SQL: %s", cond.Operator)
	}
}
