package filter

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"github.com/samber/lo"
)

// Operator is a single matching rule applied to a field.
type Operator string

const (
	OperatorEquals     Operator = "Equals"
	OperatorContains   Operator = "Contains"
	OperatorStartsWith Operator = "StartsWith"
	OperatorEndsWith   Operator = "EndsWith"
	OperatorIn         Operator = "In"
)

// Condition is an atomic predicate over one field.
// Value is a string for every operator except In, where it is a []string.
type Condition struct {
	Field    string
	Operator Operator
	Value    any
}

// Predicate is the conjunction of its conditions. An empty predicate matches everything.
type Predicate []Condition

// Fields returns the distinct fields referenced by the predicate, in order of appearance.
func (p Predicate) Fields() []string {
	return lo.Uniq(lo.Map(p, func(c Condition, _ int) string {
		return c.Field
	}))
}

// InvalidError reports a malformed filter value.
type InvalidError struct {
	Field   string
	Message string
}

func (e *InvalidError) Error() string {
	return fmt.Sprintf("invalid filter %s: %s", e.Field, e.Message)
}

func invalid(field, format string, args ...any) error {
	return errors.WithStack(&InvalidError{Field: field, Message: fmt.Sprintf(format, args...)})
}

// Compile converts a filter struct (or a map produced by ToMap) into a Predicate.
// Fields and operators are visited in sorted order so the result is deterministic.
func Compile(v any) (Predicate, error) {
	filterMap, ok := v.(map[string]any)
	if !ok {
		var err error
		filterMap, err = ToMap(v)
		if err != nil {
			return nil, err
		}
	}

	keys := lo.Keys(filterMap)
	sort.Strings(keys)

	var predicate Predicate
	for _, field := range keys {
		value := filterMap[field]
		if value == nil {
			continue
		}
		ops, ok := value.(map[string]any)
		if !ok {
			return nil, invalid(field, "expected an object of operators, got %T", value)
		}
		conds, err := compileField(field, ops)
		if err != nil {
			return nil, err
		}
		predicate = append(predicate, conds...)
	}
	return predicate, nil
}

func compileField(field string, ops map[string]any) ([]Condition, error) {
	names := lo.Keys(ops)
	sort.Strings(names)

	conds := make([]Condition, 0, len(names))
	for _, name := range names {
		value := ops[name]
		if value == nil {
			continue
		}
		path := field + "." + name

		switch op := Operator(name); op {
		case OperatorEquals, OperatorContains, OperatorStartsWith, OperatorEndsWith:
			str, ok := value.(string)
			if !ok {
				return nil, invalid(path, "expected a string, got %T", value)
			}
			conds = append(conds, Condition{Field: field, Operator: op, Value: str})

		case OperatorIn:
			list, err := toStrings(value)
			if err != nil {
				return nil, invalid(path, "%s", err.Error())
			}
			if len(list) == 0 {
				return nil, invalid(path, "list must not be empty")
			}
			conds = append(conds, Condition{Field: field, Operator: op, Value: list})

		default:
			return nil, invalid(path, "unknown operator")
		}
	}
	return conds, nil
}

func toStrings(value any) ([]string, error) {
	switch vs := value.(type) {
	case []string:
		return vs, nil
	case []any:
		result := make([]string, len(vs))
		for i, v := range vs {
			s, ok := v.(string)
			if !ok {
				return nil, errors.Errorf("expected a list of strings, got %T at index %d", v, i)
			}
			result[i] = s
		}
		return result, nil
	default:
		return nil, errors.Errorf("expected a list of strings, got %T", value)
	}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// LikePattern returns the lower-cased LIKE pattern for Contains, StartsWith and EndsWith.
// Wildcards in the value are escaped with a backslash.
func (c Condition) LikePattern() (string, bool) {
	s, ok := c.Value.(string)
	if !ok {
		return "", false
	}
	s = likeEscaper.Replace(strings.ToLower(s))
	switch c.Operator {
	case OperatorContains:
		return "%" + s + "%", true
	case OperatorStartsWith:
		return s + "%", true
	case OperatorEndsWith:
		return "%" + s, true
	default:
		return "", false
	}
}
