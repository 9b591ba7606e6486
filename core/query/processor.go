package query

import (
	"fmt"
	"reflect"
	"strings"
)

// Match reports whether doc satisfies filter. A nil filter matches every
// document. Numbers compare numerically across types, so a stored "3" equals a
// filter value of 3; two strings always compare as strings.
func Match(filter *QueryFilter, doc map[string]any) (bool, error) {
	if filter == nil {
		return true, nil
	}
	switch {
	case filter.Condition != nil:
		return matchCondition(filter.Condition, doc)
	case filter.Group != nil:
		return matchGroup(filter.Group, doc)
	default:
		return false, fmt.Errorf("filter has neither a condition nor a group")
	}
}

func matchGroup(group *FilterGroup, doc map[string]any) (bool, error) {
	switch group.Operator {
	case LogicalOperatorAnd:
		for i := range group.Conditions {
			ok, err := Match(&group.Conditions[i], doc)
			if err != nil || !ok {
				return false, err
			}
		}
		return true, nil
	case LogicalOperatorOr:
		for i := range group.Conditions {
			ok, err := Match(&group.Conditions[i], doc)
			if err != nil {
				return false, err
			}
			if ok {
				return true, nil
			}
		}
		return false, nil
	case LogicalOperatorNot:
		for i := range group.Conditions {
			ok, err := Match(&group.Conditions[i], doc)
			if err != nil {
				return false, err
			}
			if ok {
				return false, nil
			}
		}
		return true, nil
	default:
		return false, fmt.Errorf("unsupported logical operator %q", group.Operator)
	}
}

func matchCondition(c *FilterCondition, doc map[string]any) (bool, error) {
	value, present := doc[c.Field]
	switch c.Operator {
	case ComparisonOperatorExists:
		return present, nil
	case ComparisonOperatorNotExists:
		return !present, nil
	case ComparisonOperatorEq:
		return present && equalValues(value, c.Value), nil
	case ComparisonOperatorNeq:
		return !present || !equalValues(value, c.Value), nil
	case ComparisonOperatorIn, ComparisonOperatorNin:
		list, ok := ListValues(c.Value)
		if !ok {
			return false, fmt.Errorf("operator %q on field %q needs a list value", c.Operator, c.Field)
		}
		found := false
		if present {
			for _, candidate := range list {
				if equalValues(value, candidate) {
					found = true
					break
				}
			}
		}
		if c.Operator == ComparisonOperatorIn {
			return found, nil
		}
		return !found, nil
	case ComparisonOperatorContains:
		return present && strings.Contains(stringOf(value), stringOf(c.Value)), nil
	case ComparisonOperatorStartsWith:
		return present && strings.HasPrefix(stringOf(value), stringOf(c.Value)), nil
	default:
		return false, fmt.Errorf("unsupported comparison operator %q", c.Operator)
	}
}

// ListValues flattens any slice value into []any.
func ListValues(v any) ([]any, bool) {
	if v == nil {
		return nil, false
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}

func equalValues(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	as, aIsString := a.(string)
	bs, bIsString := b.(string)
	if aIsString && bIsString {
		return as == bs
	}
	if af, ok := ToFloat64(a); ok {
		if bf, ok := ToFloat64(b); ok {
			return af == bf
		}
	}
	return stringOf(a) == stringOf(b)
}

func stringOf(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}
