package sqlite

import (
	"testing"

	"github.com/asaidimu/go-folio/core/query"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilterCompiler_CompileFilter(t *testing.T) {
	c := NewFilterCompiler("data")

	tests := []struct {
		name       string
		filter     *query.QueryFilter
		wantSQL    string
		wantParams []any
	}{
		{
			name:    "nil filter",
			filter:  nil,
			wantSQL: "1=1",
		},
		{
			name:       "eq",
			filter:     query.NewQueryBuilder().Where("tag").Eq("usaco").Build(),
			wantSQL:    "json_extract(data, ?) = ?",
			wantParams: []any{`$."tag"`, "usaco"},
		},
		{
			name:       "quoted key",
			filter:     query.NewQueryBuilder().Where(`a"b`).Exists().Build(),
			wantSQL:    "json_type(data, ?) IS NOT NULL",
			wantParams: []any{`$."a\"b"`},
		},
		{
			name:       "nin",
			filter:     query.NewQueryBuilder().Where("d").Nin("x", "y").Build(),
			wantSQL:    "(json_extract(data, ?) IS NULL OR json_extract(data, ?) NOT IN (?,?))",
			wantParams: []any{`$."d"`, `$."d"`, "x", "y"},
		},
		{
			name: "and group",
			filter: query.NewQueryBuilder().WhereGroup(query.LogicalOperatorAnd).
				Where("a").Eq(1).
				Where("b").NotExists().
				End().Build(),
			wantSQL:    "(json_extract(data, ?) = ? AND json_type(data, ?) IS NULL)",
			wantParams: []any{`$."a"`, 1, `$."b"`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql, params, err := c.CompileFilter(tt.filter, 0)
			require.NoError(t, err)
			assert.Equal(t, tt.wantSQL, sql)
			assert.Equal(t, tt.wantParams, params)
		})
	}
}

func TestFilterCompiler_Errors(t *testing.T) {
	c := NewFilterCompiler("data")

	_, _, err := c.CompileFilter(&query.QueryFilter{}, 0)
	assert.Error(t, err)

	_, _, err = c.CompileFilter(&query.QueryFilter{Condition: &query.FilterCondition{Field: "a", Operator: "gt", Value: 1}}, 0)
	assert.Error(t, err)

	_, _, err = c.CompileFilter(&query.QueryFilter{Condition: &query.FilterCondition{Field: "a", Operator: query.ComparisonOperatorIn, Value: "x"}}, 0)
	assert.Error(t, err)

	_, _, err = c.CompileFilter(&query.QueryFilter{Group: &query.FilterGroup{Operator: "xor"}}, 0)
	assert.Error(t, err)
}
