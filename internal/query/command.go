package query

import (
	"fmt"
	"strings"

	"github.com/csvquery/csvsql/internal/common"
	"github.com/csvquery/csvsql/internal/scanner"
)

// AggregateSpec is the structured form of one aggregate column such as
// "SUM(amount)".
type AggregateSpec struct {
	Label  string // column text as requested; also the registry key
	Kind   Kind
	Column string // target column; the first header name for COUNT(*)
	Index  int    // header position of Column, -1 when absent
	Star   bool   // COUNT(*): counts every matching row
}

// IsAggregateCall reports whether col has the shape FUNC(...) for one of the
// supported aggregate functions.
func IsAggregateCall(col string) bool {
	open := strings.IndexByte(col, '(')
	if open <= 0 {
		return false
	}
	_, ok := ParseKind(strings.TrimSpace(col[:open]))
	return ok
}

// ParseAggregate splits an aggregate call into its function and target
// column. COUNT(*) yields Star with an empty Column; binding it to a header
// happens in Resolve.
func ParseAggregate(label string) (AggregateSpec, error) {
	open := strings.IndexByte(label, '(')
	if open <= 0 || !strings.HasSuffix(label, ")") {
		return AggregateSpec{}, fmt.Errorf("%w: malformed aggregate %q", common.ErrInvalidQuerySyntax, label)
	}
	kind, ok := ParseKind(strings.TrimSpace(label[:open]))
	if !ok {
		return AggregateSpec{}, fmt.Errorf("%w: unknown aggregate function in %q", common.ErrInvalidQuerySyntax, label)
	}

	target := strings.TrimSpace(label[open+1 : len(label)-1])
	switch {
	case target == "":
		return AggregateSpec{}, fmt.Errorf("%w: aggregate %q has no column", common.ErrInvalidQuerySyntax, label)
	case target == "*" && kind != KindCount:
		return AggregateSpec{}, fmt.Errorf("%w: %s(*) is not supported", common.ErrInvalidQuerySyntax, kind)
	case target == "*":
		return AggregateSpec{Label: label, Kind: kind, Index: -1, Star: true}, nil
	}
	return AggregateSpec{Label: label, Kind: kind, Column: target, Index: -1}, nil
}

// ResolvedCommand is a CommandSpec bound to the header of its data file.
type ResolvedCommand struct {
	Spec   CommandSpec
	Header scanner.Header

	// Aggregate is true when at least one column is an aggregate call.
	Aggregate bool

	// Labels are the output column labels in request order. For projections
	// "*" expands to the header names; everything else is echoed verbatim,
	// including names that matched no header column.
	Labels []string

	// Projection holds the header positions of the projected fields and
	// Columns their header names. Unmatched names are absent from both.
	Projection []int
	Columns    []string

	// Aggregates lists each distinct aggregate label once, in request order.
	Aggregates []AggregateSpec

	// Where is nil when the query has no condition.
	Where *Condition
}

// Resolve binds the command to header. COUNT(*) is rebound to the first
// header column so it has a column like every other aggregate, while its
// label stays COUNT(*).
func (c CommandSpec) Resolve(header scanner.Header) (*ResolvedCommand, error) {
	rc := &ResolvedCommand{
		Spec:      c,
		Header:    header,
		Aggregate: c.IsAggregate(),
	}

	if c.HasCondition() {
		where, err := ParseCondition(c.Condition)
		if err != nil {
			return nil, err
		}
		where.ResolveColumns(header)
		rc.Where = where
	}

	if rc.Aggregate {
		seen := make(map[string]bool, len(c.Columns))
		for _, col := range c.Columns {
			rc.Labels = append(rc.Labels, col)
			if !IsAggregateCall(col) || seen[col] {
				continue
			}
			seen[col] = true

			agg, err := ParseAggregate(col)
			if err != nil {
				return nil, err
			}
			if agg.Star {
				agg.Column = header[0]
				agg.Index = 0
			} else {
				agg.Index = header.Index(agg.Column)
			}
			rc.Aggregates = append(rc.Aggregates, agg)
		}
		return rc, nil
	}

	for _, col := range c.Columns {
		if col == "*" {
			for i, name := range header {
				rc.Labels = append(rc.Labels, name)
				rc.Projection = append(rc.Projection, i)
				rc.Columns = append(rc.Columns, name)
			}
			continue
		}
		rc.Labels = append(rc.Labels, col)
		if idx := header.Index(col); idx >= 0 {
			rc.Projection = append(rc.Projection, idx)
			rc.Columns = append(rc.Columns, col)
		}
	}
	return rc, nil
}

// NewRegistry creates a registry with one accumulator per aggregate.
func (rc *ResolvedCommand) NewRegistry() *Registry {
	r := NewRegistry()
	for _, agg := range rc.Aggregates {
		r.Add(agg.Label, agg.Kind)
	}
	return r
}
