package query

import (
	"fmt"
	"math"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/csvquery/csvsql/internal/common"
	"github.com/csvquery/csvsql/internal/scanner"
)

// FilterOp defines comparison operators
type FilterOp string

const (
	OpEq   FilterOp = "="
	OpEqEq FilterOp = "=="
	OpNeq  FilterOp = "!="
	OpGt   FilterOp = ">"
	OpLt   FilterOp = "<"
	OpGte  FilterOp = ">="
	OpLte  FilterOp = "<="

	opAnd FilterOp = "AND"
	opOr  FilterOp = "OR"
)

func (op FilterOp) valid() bool {
	switch op {
	case OpEq, OpEqEq, OpNeq, OpGt, OpLt, OpGte, OpLte:
		return true
	}
	return false
}

// Row gives positional access to the fields of one data row.
// Positions past the end of the row read as "".
type Row interface {
	Get(i int) string
}

// Condition is a node of the WHERE tree. The tree always has two levels:
// an OR root whose children are AND nodes whose children are comparisons.
type Condition struct {
	Operator FilterOp    `json:"operator"`
	Column   string      `json:"column,omitempty"`
	Value    string      `json:"value,omitempty"`
	Quoted   bool        `json:"quoted,omitempty"` // string comparison instead of numeric
	Text     string      `json:"text,omitempty"`   // source text of a malformed comparison
	Children []Condition `json:"children,omitempty"`

	malformed      bool
	number         float64 // Value parsed as float64, NaN when not numeric
	resolvedColIdx int     // header position of Column, -1 if unresolved
}

// ParseCondition tokenizes a WHERE clause and builds its OR-of-AND tree.
//
// Tokens are separated by whitespace; a single-quoted literal is one token
// and may contain spaces or the words AND/OR. Two single quotes inside a
// literal stand for one quote character. Only unquoted, upper-case AND and
// OR tokens split clauses, with AND binding tighter than OR. A comparison
// that is not exactly <column> <op> <value> is kept as malformed and
// evaluates to false.
func ParseCondition(text string) (*Condition, error) {
	tokens, err := tokenize(text)
	if err != nil {
		return nil, err
	}

	root := &Condition{Operator: opOr}
	and := Condition{Operator: opAnd}
	var clause []token

	flushClause := func() {
		and.Children = append(and.Children, newComparison(clause))
		clause = nil
	}
	for _, tok := range tokens {
		switch {
		case !tok.quoted && tok.text == string(opAnd):
			flushClause()
		case !tok.quoted && tok.text == string(opOr):
			flushClause()
			root.Children = append(root.Children, and)
			and = Condition{Operator: opAnd}
		default:
			clause = append(clause, tok)
		}
	}
	flushClause()
	root.Children = append(root.Children, and)

	root.resolvedColIdx = -1
	return root, nil
}

func newComparison(tokens []token) Condition {
	c := Condition{resolvedColIdx: -1, number: math.NaN()}
	if len(tokens) != 3 || tokens[1].quoted || !FilterOp(tokens[1].text).valid() {
		c.malformed = true
		parts := make([]string, len(tokens))
		for i, tok := range tokens {
			parts[i] = tok.text
		}
		c.Text = strings.Join(parts, " ")
		return c
	}

	c.Column = tokens[0].text
	c.Operator = FilterOp(tokens[1].text)
	c.Value = tokens[2].text
	c.Quoted = tokens[2].quoted
	if !c.Quoted {
		c.number = parseNumber(c.Value)
	}
	return c
}

// ResolveColumns pre-maps column names to header positions.
// Must be called once before Evaluate.
func (c *Condition) ResolveColumns(header scanner.Header) {
	c.resolvedColIdx = -1
	if c.Column != "" {
		c.resolvedColIdx = header.Index(c.Column)
	}
	for i := range c.Children {
		c.Children[i].ResolveColumns(header)
	}
}

// Evaluate checks if a row matches the condition.
// A nil condition matches every row.
func (c *Condition) Evaluate(row Row) bool {
	if c == nil {
		return true
	}
	switch c.Operator {
	case opAnd:
		for i := range c.Children {
			if !c.Children[i].Evaluate(row) {
				return false
			}
		}
		return true
	case opOr:
		for i := range c.Children {
			if c.Children[i].Evaluate(row) {
				return true
			}
		}
		return false
	}

	// Leaf nodes
	if c.malformed || c.resolvedColIdx < 0 {
		return false
	}
	val := row.Get(c.resolvedColIdx)

	if c.Quoted {
		switch c.Operator {
		case OpEq, OpEqEq:
			return val == c.Value
		case OpNeq:
			return val != c.Value
		}
		return false
	}

	// IEEE-754: every comparison with NaN is false except !=.
	field := parseNumber(strings.TrimSpace(val))
	switch c.Operator {
	case OpLt:
		return field < c.number
	case OpGt:
		return field > c.number
	case OpLte:
		return field <= c.number
	case OpGte:
		return field >= c.number
	case OpEq, OpEqEq:
		return field == c.number
	case OpNeq:
		return field != c.number
	}
	return false
}

// Columns returns the distinct column names the condition compares.
// A nil condition compares none.
func (c *Condition) Columns() []string {
	if c == nil {
		return nil
	}
	var cols []string
	seen := make(map[string]bool)
	var walk func(n *Condition)
	walk = func(n *Condition) {
		if n.Column != "" && !seen[n.Column] {
			seen[n.Column] = true
			cols = append(cols, n.Column)
		}
		for i := range n.Children {
			walk(&n.Children[i])
		}
	}
	walk(c)
	return cols
}

type token struct {
	text   string
	quoted bool
}

func tokenize(s string) ([]token, error) {
	var tokens []token
	i := 0
	for i < len(s) {
		r, size := utf8.DecodeRuneInString(s[i:])
		if unicode.IsSpace(r) {
			i += size
			continue
		}

		if s[i] == '\'' {
			var b strings.Builder
			j := i + 1
			closed := false
			for j < len(s) {
				if s[j] == '\'' {
					if j+1 < len(s) && s[j+1] == '\'' {
						b.WriteByte('\'')
						j += 2
						continue
					}
					closed = true
					j++
					break
				}
				b.WriteByte(s[j])
				j++
			}
			if !closed {
				return nil, fmt.Errorf("%w: unterminated quoted literal at offset %d", common.ErrInvalidQuerySyntax, i)
			}
			tokens = append(tokens, token{text: b.String(), quoted: true})
			i = j
			continue
		}

		j := i
		for j < len(s) {
			r, size := utf8.DecodeRuneInString(s[j:])
			if unicode.IsSpace(r) {
				break
			}
			j += size
		}
		tokens = append(tokens, token{text: s[i:j]})
		i = j
	}
	return tokens, nil
}
