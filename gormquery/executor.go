package gormquery

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/theplant/pagequery"
)

type Option func(*options)

type options struct {
	snapshot bool
}

// WithoutSnapshot runs the count and the row query outside a shared read-only
// transaction. They may then observe different states under concurrent writes.
func WithoutSnapshot() Option {
	return func(o *options) { o.snapshot = false }
}

// Executor runs list queries for model T. The count and the row fetch share one
// WHERE expression and, unless WithoutSnapshot is given, one repeatable-read
// read-only transaction.
type Executor[T any] struct {
	db   *gorm.DB
	opts options
}

var _ pagequery.Executor[struct{}] = (*Executor[struct{}])(nil)

func NewExecutor[T any](db *gorm.DB, opts ...Option) *Executor[T] {
	if db == nil {
		panic("db must be set")
	}
	o := options{snapshot: true}
	for _, opt := range opts {
		opt(&o)
	}
	return &Executor[T]{db: db, opts: o}
}

func (e *Executor[T]) Execute(ctx context.Context, query *pagequery.Query) (*pagequery.Result[T], error) {
	if query.Offset < 0 || query.Limit < 0 {
		return nil, errors.Errorf("negative offset %d or limit %d", query.Offset, query.Limit)
	}

	db := e.db
	if db.Statement.Context != ctx {
		db = db.WithContext(ctx)
	}

	var model T
	s, err := parseSchema(db, &model)
	if err != nil {
		return nil, err
	}
	where, err := buildPredicateExpr(s, query.Predicate)
	if err != nil {
		return nil, err
	}
	orderBy, err := buildOrderBy(s, query.OrderBy, db.Dialector.Name() == postgresDialect)
	if err != nil {
		return nil, err
	}

	scope := func(tx *gorm.DB) *gorm.DB {
		tx = tx.Model(&model)
		if where != nil {
			tx = tx.Where(where)
		}
		return tx
	}

	result := &pagequery.Result[T]{Rows: make([]T, 0)}
	run := func(tx *gorm.DB) error {
		var totalCount int64
		if err := tx.Scopes(scope).Count(&totalCount).Error; err != nil {
			return errors.Wrap(err, "count")
		}
		result.TotalCount = int(totalCount)

		if query.Limit <= 0 || int64(query.Offset) >= totalCount {
			return nil
		}

		find := tx.Scopes(scope)
		if orderBy != nil {
			find = find.Order(orderBy)
		}
		if query.Offset > 0 {
			find = find.Offset(query.Offset)
		}
		var rows []T
		if err := find.Limit(query.Limit).Find(&rows).Error; err != nil {
			return errors.Wrap(err, "find")
		}
		if rows != nil {
			result.Rows = rows
		}
		return nil
	}

	if e.opts.snapshot {
		err = db.Transaction(run, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true})
	} else {
		err = run(db)
	}
	if err != nil {
		return nil, translateError(err)
	}
	return result, nil
}
