package gormquery

import (
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/schema"

	"github.com/theplant/pagequery/filter"
)

// Scope applies a predicate to a query whose model is already set.
func Scope(predicate filter.Predicate) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if db == nil || len(predicate) == 0 {
			return db
		}
		model := db.Statement.Model
		if model == nil {
			model = db.Statement.Dest
		}
		if model == nil {
			db.AddError(errors.New("model is nil"))
			return db
		}
		s, err := parseSchema(db, model)
		if err != nil {
			db.AddError(err)
			return db
		}
		expr, err := buildPredicateExpr(s, predicate)
		if err != nil {
			db.AddError(err)
			return db
		}
		return db.Where(expr)
	}
}

func buildPredicateExpr(s *schema.Schema, predicate filter.Predicate) (clause.Expression, error) {
	exprs := make([]clause.Expression, 0, len(predicate))
	for _, cond := range predicate {
		expr, err := buildConditionExpr(s, cond)
		if err != nil {
			return nil, err
		}
		exprs = append(exprs, expr)
	}
	return combineExprs(exprs...), nil
}

func buildConditionExpr(s *schema.Schema, cond filter.Condition) (clause.Expression, error) {
	errField := "filter." + cond.Field + "." + string(cond.Operator)
	col, err := column(s, cond.Field, errField)
	if err != nil {
		return nil, err
	}

	switch cond.Operator {
	case filter.OperatorEquals:
		return clause.Eq{Column: col, Value: cond.Value}, nil

	case filter.OperatorIn:
		values, ok := cond.Value.([]string)
		if !ok || len(values) == 0 {
			return nil, errors.Errorf("invalid IN values for field %q", cond.Field)
		}
		return clause.IN{Column: col, Values: lo.ToAnySlice(values)}, nil

	case filter.OperatorContains, filter.OperatorStartsWith, filter.OperatorEndsWith:
		pattern, ok := cond.LikePattern()
		if !ok {
			return nil, errors.Errorf("invalid %s value for field %q", cond.Operator, cond.Field)
		}
		return clause.Expr{SQL: "LOWER(?) LIKE ?", Vars: []any{col, pattern}}, nil

	default:
		return nil, errors.Errorf("unknown operator %s for field %q", cond.Operator, cond.Field)
	}
}

// combineExprs combines multiple expressions into a single expression
func combineExprs(exprs ...clause.Expression) clause.Expression {
	switch len(exprs) {
	case 0:
		return nil
	case 1:
		return exprs[0]
	default:
		return clause.And(exprs...)
	}
}
