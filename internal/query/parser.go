package query

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/csvquery/csvsql/internal/common"
)

// queryPattern accepts SELECT <columns> FROM <file.csv> [WHERE <condition>].
// Keywords are case-insensitive; the condition runs to the end of the text.
var queryPattern = regexp.MustCompile(
	`(?is)^\s*SELECT\s+(?P<columns>.+?)\s+FROM\s+(?P<file>(?:\.{1,2}/)*[\w/.\-]+\.csv)(?:\s+WHERE\s+(?P<condition>.+?))?\s*$`,
)

// CommandSpec is the parsed, header-independent form of a query.
// It is never modified after parsing; Resolve derives a ResolvedCommand.
type CommandSpec struct {
	Columns   []string // requested columns, trimmed, in order
	DataFile  string   // path to the CSV file
	Condition string   // WHERE text, empty when absent
}

// HasCondition reports whether the query carries a WHERE clause.
func (c CommandSpec) HasCondition() bool {
	return c.Condition != ""
}

// ParseCommand extracts columns, data file and condition from query text.
func ParseCommand(text string) (CommandSpec, error) {
	m := queryPattern.FindStringSubmatchIndex(text)
	if m == nil {
		return CommandSpec{}, fmt.Errorf("%w: expected SELECT <columns> FROM <file.csv> [WHERE <condition>]", common.ErrInvalidQuerySyntax)
	}

	group := func(name string) string {
		i := queryPattern.SubexpIndex(name)
		if m[2*i] < 0 {
			return ""
		}
		return text[m[2*i]:m[2*i+1]]
	}

	raw := strings.Split(group("columns"), ",")
	columns := make([]string, 0, len(raw))
	for _, col := range raw {
		col = strings.TrimSpace(col)
		if col == "" {
			return CommandSpec{}, fmt.Errorf("%w: empty column in select list", common.ErrInvalidQuerySyntax)
		}
		columns = append(columns, col)
	}

	return CommandSpec{
		Columns:   columns,
		DataFile:  group("file"),
		Condition: strings.TrimSpace(group("condition")),
	}, nil
}

// IsCountStar reports whether the query is exactly SELECT COUNT(*) FROM f.
func (c CommandSpec) IsCountStar() bool {
	return len(c.Columns) == 1 && isCountStar(c.Columns[0]) && !c.HasCondition()
}

// IsSelectStar reports whether the query is exactly SELECT * FROM f.
func (c CommandSpec) IsSelectStar() bool {
	return len(c.Columns) == 1 && c.Columns[0] == "*" && !c.HasCondition()
}

// IsAggregate reports whether any requested column is an aggregate call.
func (c CommandSpec) IsAggregate() bool {
	for _, col := range c.Columns {
		if IsAggregateCall(col) {
			return true
		}
	}
	return false
}

func isCountStar(col string) bool {
	return strings.EqualFold(strings.ReplaceAll(col, " ", ""), "COUNT(*)")
}
