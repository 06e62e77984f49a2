package gormquery

import (
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/schema"

	"github.com/theplant/pagequery"
)

func parseSchema(db *gorm.DB, model any) (*schema.Schema, error) {
	stmt := &gorm.Statement{DB: db}
	if err := stmt.Parse(model); err != nil {
		return nil, errors.Wrap(err, "failed to parse schema for model")
	}
	return stmt.Schema, nil
}

const postgresDialect = "postgres"

// column resolves a struct field name to its column in the current table.
func column(s *schema.Schema, fieldName string, errField string) (clause.Column, error) {
	col, _, err := resolveField(s, fieldName, errField)
	return col, err
}

func resolveField(s *schema.Schema, fieldName string, errField string) (clause.Column, *schema.Field, error) {
	field, ok := s.FieldsByName[fieldName]
	if !ok || field.DBName == "" {
		return clause.Column{}, nil, pagequery.NewValidationError(errField, "missing field %q in schema %s", fieldName, s.Name)
	}
	return clause.Column{Table: clause.CurrentTable, Name: field.DBName}, field, nil
}

// buildOrderBy sorts NULL before any value, as MySQL and the in-memory store do.
// PostgreSQL sorts NULL last in ascending order, so with explicitNulls the placement of
// nullable columns is spelled out.
func buildOrderBy(s *schema.Schema, orderBy []pagequery.Order, explicitNulls bool) (clause.Expression, error) {
	if len(orderBy) == 0 {
		return nil, nil
	}
	columns := make([]clause.OrderByColumn, 0, len(orderBy))
	exprs := make([]clause.Expression, 0, len(orderBy))
	explicit := false
	for _, order := range orderBy {
		col, field, err := resolveField(s, order.Field, "sort")
		if err != nil {
			return nil, err
		}
		desc := order.Direction == pagequery.OrderDirectionDesc
		columns = append(columns, clause.OrderByColumn{Column: col, Desc: desc})

		nullable := explicitNulls && !field.PrimaryKey && !field.NotNull
		explicit = explicit || nullable
		exprs = append(exprs, clause.Expr{SQL: orderSQL(desc, nullable), Vars: []any{col}})
	}
	if explicit {
		return clause.OrderBy{Expression: clause.CommaExpression{Exprs: exprs}}, nil
	}
	return clause.OrderBy{Columns: columns}, nil
}

func orderSQL(desc, nullable bool) string {
	switch {
	case desc && nullable:
		return "? DESC NULLS LAST"
	case desc:
		return "? DESC"
	case nullable:
		return "? NULLS FIRST"
	default:
		return "?"
	}
}
