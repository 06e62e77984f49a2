package pagequery

import (
	"github.com/samber/lo"
)

type OrderDirection string

const (
	OrderDirectionAsc  OrderDirection = "ASC"
	OrderDirectionDesc OrderDirection = "DESC"
)

// Order is one (field, direction) pair. Field is the Go struct field name of the entity.
type Order struct {
	Field     string         `json:"field"`
	Direction OrderDirection `json:"direction"`
}

// SortDirective is an entity-scoped enum value such as "model_ASC".
type SortDirective string

// Schema describes how an entity's sort directives map to orderings.
type Schema struct {
	Name  string
	Sorts map[SortDirective]Order
	// PrimaryOrderBy is appended to every ordering to break ties, and is the
	// whole ordering when no directive is given.
	PrimaryOrderBy []Order
}

// OrderBy translates directives into a composite ordering. The first directive is the
// primary sort key. When a field is referenced more than once only its first directive
// is effective.
func (s *Schema) OrderBy(directives []SortDirective) ([]Order, error) {
	orderBy := make([]Order, 0, len(directives)+len(s.PrimaryOrderBy))
	for _, d := range directives {
		order, ok := s.Sorts[d]
		if !ok {
			return nil, NewValidationError("sort", "unknown %s sort %q", s.Name, d)
		}
		orderBy = append(orderBy, order)
	}
	orderBy = lo.UniqBy(orderBy, func(o Order) string {
		return o.Field
	})
	return AppendPrimaryOrderBy(orderBy, s.PrimaryOrderBy...), nil
}

func AppendPrimaryOrderBy(orderBy []Order, primaryOrderBy ...Order) []Order {
	if len(primaryOrderBy) == 0 {
		return orderBy
	}
	orderByFields := lo.SliceToMap(orderBy, func(orderBy Order) (string, bool) {
		return orderBy.Field, true
	})
	// If there are fields in primaryOrderBy that are not in orderBy, add them to orderBy
	for _, primaryOrderBy := range primaryOrderBy {
		if _, ok := orderByFields[primaryOrderBy.Field]; !ok {
			orderBy = append(orderBy, primaryOrderBy)
		}
	}
	return orderBy
}
