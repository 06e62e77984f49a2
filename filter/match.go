package filter

import (
	"strings"

	"github.com/samber/lo"
)

// Lookup returns the string value of a field and whether it is present.
// A NULL field is reported as not present and never matches.
type Lookup func(field string) (string, bool)

// Match evaluates the predicate in memory with the same semantics as the SQL translation.
func (p Predicate) Match(lookup Lookup) bool {
	for _, c := range p {
		if !c.Match(lookup) {
			return false
		}
	}
	return true
}

// Match evaluates a single condition.
func (c Condition) Match(lookup Lookup) bool {
	v, ok := lookup(c.Field)
	if !ok {
		return false
	}
	switch c.Operator {
	case OperatorEquals:
		return v == c.Value
	case OperatorIn:
		list, _ := c.Value.([]string)
		return lo.Contains(list, v)
	}

	s, _ := c.Value.(string)
	v, s = strings.ToLower(v), strings.ToLower(s)
	switch c.Operator {
	case OperatorContains:
		return strings.Contains(v, s)
	case OperatorStartsWith:
		return strings.HasPrefix(v, s)
	case OperatorEndsWith:
		return strings.HasSuffix(v, s)
	default:
		return false
	}
}
