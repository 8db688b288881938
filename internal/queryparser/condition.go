package queryparser

import (
	"fmt"
	"regexp"
	"strings"
)

var reCondition = regexp.MustCompile(`(?is)^\s*((?:[A-Za-z_]\w*\.)?[A-Za-z_]\w*)\s*(!=|<>|<=|>=|=|<|>|LIKE)\s*(.+?)\s*$`)

// parseWhere parses a flat condition sequence connected by AND/OR,
// with no operator precedence: conditions combine strictly in the
// order the connectives preceding them appear.
func parseWhere(text string) (*WhereClause, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("queryparser: empty WHERE clause")
	}
	pieces, connectives := splitOnConnectives(text)
	conds := make([]Condition, 0, len(pieces))
	for _, p := range pieces {
		c, err := parseCondition(p)
		if err != nil {
			return nil, err
		}
		conds = append(conds, c)
	}
	return &WhereClause{Conditions: conds, Connectives: connectives}, nil
}

// splitOnConnectives splits text on top-level, whole-word AND/OR
// tokens (outside quoted strings), returning the conditions between
// them and the connective that preceded each one after the first.
func splitOnConnectives(text string) ([]string, []string) {
	var pieces []string
	var connectives []string
	start := 0
	for {
		idxAnd := findTopLevelWordFrom(text, "AND", start)
		idxOr := findTopLevelWordFrom(text, "OR", start)
		idx, word := idxAnd, "AND"
		if idxOr != -1 && (idx == -1 || idxOr < idx) {
			idx, word = idxOr, "OR"
		}
		if idx == -1 {
			pieces = append(pieces, text[start:])
			break
		}
		pieces = append(pieces, text[start:idx])
		connectives = append(connectives, word)
		start = idx + len(word)
	}
	return pieces, connectives
}

func findTopLevelWordFrom(s, word string, from int) int {
	if from > len(s) {
		return -1
	}
	idx := findTopLevelWord(s[from:], word)
	if idx == -1 {
		return -1
	}
	return from + idx
}

func parseCondition(s string) (Condition, error) {
	m := reCondition.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return Condition{}, fmt.Errorf("queryparser: invalid condition %q", s)
	}
	op := strings.ToUpper(m[2])
	if op == "<>" {
		op = "!="
	}
	lit, err := parseLiteral(m[3])
	if err != nil {
		return Condition{}, err
	}
	return Condition{
		Left:  columnOperand(m[1]),
		Op:    op,
		Right: Operand{Literal: lit},
	}, nil
}
