package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComparisonOperator_IsStandard(t *testing.T) {
	tests := []struct {
		operator ComparisonOperator
		expected bool
	}{
		{ComparisonOperatorEq, true},
		{ComparisonOperatorNeq, true},
		{ComparisonOperatorIn, true},
		{ComparisonOperatorNin, true},
		{ComparisonOperatorContains, true},
		{ComparisonOperatorStartsWith, true},
		{ComparisonOperatorExists, true},
		{ComparisonOperatorNotExists, true},
		{"lt", false},
		{"custom_op", false},
	}

	for _, tt := range tests {
		t.Run(string(tt.operator), func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.operator.IsStandard())
		})
	}
}

func TestGetStandardComparisonOperators_ReturnsCopy(t *testing.T) {
	ops := GetStandardComparisonOperators()
	assert.Len(t, ops, 8)

	delete(ops, ComparisonOperatorEq)
	assert.True(t, ComparisonOperatorEq.IsStandard())
}
