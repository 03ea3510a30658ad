package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/csvquery/csvsql/internal/common"
	"github.com/csvquery/csvsql/internal/scanner"
)

var testHeader = scanner.Header{"id", "amount", "region", "amount"}

func TestParseAggregate(t *testing.T) {
	tests := []struct {
		label string
		want  AggregateSpec
	}{
		{"SUM(amount)", AggregateSpec{Label: "SUM(amount)", Kind: KindSum, Column: "amount", Index: -1}},
		{"avg( amount )", AggregateSpec{Label: "avg( amount )", Kind: KindAvg, Column: "amount", Index: -1}},
		{"COUNT(*)", AggregateSpec{Label: "COUNT(*)", Kind: KindCount, Index: -1, Star: true}},
		{"MIN(SUM)", AggregateSpec{Label: "MIN(SUM)", Kind: KindMin, Column: "SUM", Index: -1}},
	}
	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			got, err := ParseAggregate(tt.label)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseAggregateErrors(t *testing.T) {
	for _, label := range []string{"SUM(amount", "SUM amount)", "MEDIAN(a)", "SUM()", "SUM(*)", "(a)"} {
		t.Run(label, func(t *testing.T) {
			_, err := ParseAggregate(label)
			assert.ErrorIs(t, err, common.ErrInvalidQuerySyntax)
		})
	}
}

func TestResolveProjection(t *testing.T) {
	cmd := CommandSpec{Columns: []string{"region", "missing", "id"}, DataFile: "d.csv"}
	rc, err := cmd.Resolve(testHeader)
	require.NoError(t, err)

	assert.False(t, rc.Aggregate)
	assert.Nil(t, rc.Where)
	assert.Equal(t, []string{"region", "missing", "id"}, rc.Labels)
	assert.Equal(t, []int{2, 0}, rc.Projection)
	assert.Equal(t, []string{"region", "id"}, rc.Columns)
	assert.Equal(t, []string{"region", "missing", "id"}, cmd.Columns, "command must not change")
}

func TestResolveSelectStar(t *testing.T) {
	cmd := CommandSpec{Columns: []string{"*"}, DataFile: "d.csv", Condition: "amount > 1"}
	rc, err := cmd.Resolve(testHeader)
	require.NoError(t, err)

	assert.Equal(t, []string(testHeader), rc.Labels)
	assert.Equal(t, []int{0, 1, 2, 3}, rc.Projection)
	require.NotNil(t, rc.Where)
}

func TestResolveAggregates(t *testing.T) {
	cmd := CommandSpec{
		Columns:  []string{"COUNT(*)", "SUM(amount)", "MAX(amount)", "SUM(amount)", "region", "AVG(nope)"},
		DataFile: "d.csv",
	}
	rc, err := cmd.Resolve(testHeader)
	require.NoError(t, err)

	assert.True(t, rc.Aggregate)
	assert.Equal(t, cmd.Columns, rc.Labels)
	require.Len(t, rc.Aggregates, 4)

	star := rc.Aggregates[0]
	assert.Equal(t, "COUNT(*)", star.Label)
	assert.True(t, star.Star)
	assert.Equal(t, "id", star.Column)
	assert.Equal(t, 0, star.Index)

	assert.Equal(t, 1, rc.Aggregates[1].Index, "first matching header wins")
	assert.Equal(t, KindMax, rc.Aggregates[2].Kind)
	assert.Equal(t, -1, rc.Aggregates[3].Index)

	reg := rc.NewRegistry()
	assert.Equal(t, []string{"COUNT(*)", "SUM(amount)", "MAX(amount)", "AVG(nope)"}, reg.Labels())
}

func TestResolveBadCondition(t *testing.T) {
	cmd := CommandSpec{Columns: []string{"id"}, DataFile: "d.csv", Condition: "region = 'open"}
	_, err := cmd.Resolve(testHeader)
	assert.ErrorIs(t, err, common.ErrInvalidQuerySyntax)
}
