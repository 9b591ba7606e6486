package postgres

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
		offset     int
		wantSQL    string
		wantParams []any
	}{
		{
			name:    "nil filter",
			wantSQL: "TRUE",
		},
		{
			name:       "tag eq after collection param",
			filter:     query.NewQueryBuilder().Where("tag").Eq("usaco").Build(),
			offset:     1,
			wantSQL:    "(data ->> $2) = $3",
			wantParams: []any{"tag", "usaco"},
		},
		{
			name:       "numbers compare as text",
			filter:     query.NewQueryBuilder().Where("views").Neq(3).Build(),
			wantSQL:    "(data ->> $1) IS DISTINCT FROM $2",
			wantParams: []any{"views", "3"},
		},
		{
			name:       "in",
			filter:     query.NewQueryBuilder().Where("division").In("Gold", "Silver").Build(),
			wantSQL:    "(data ->> $1) IN ($2, $3)",
			wantParams: []any{"division", "Gold", "Silver"},
		},
		{
			name:    "empty nin binds nothing",
			filter:  query.NewQueryBuilder().Where("division").Nin().Build(),
			wantSQL: "TRUE",
		},
		{
			name: "not group",
			filter: query.NewQueryBuilder().WhereGroup(query.LogicalOperatorNot).
				Where("tag").Exists().
				Where("title").Eq("x").
				End().Build(),
			wantSQL:    "NOT (jsonb_exists(data, $1) OR (data ->> $2) = $3)",
			wantParams: []any{"tag", "title", "x"},
		},
		{
			name:       "contains",
			filter:     query.NewQueryBuilder().Where("title").Contains("Cow").Build(),
			wantSQL:    "strpos((data ->> $1), $2) > 0",
			wantParams: []any{"title", "Cow"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql, params, err := c.CompileFilter(tt.filter, tt.offset)
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

	_, _, err = c.CompileFilter(&query.QueryFilter{Condition: &query.FilterCondition{Field: "a", Operator: "lt"}}, 0)
	assert.Error(t, err)

	_, _, err = c.CompileFilter(&query.QueryFilter{Group: &query.FilterGroup{Operator: "xor"}}, 0)
	assert.Error(t, err)
}
