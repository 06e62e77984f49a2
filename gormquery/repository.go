package gormquery

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/theplant/pagequery"
)

// Repository persists records of model T and serves list queries through Executor.
type Repository[T any] struct {
	*Executor[T]
	db *gorm.DB
}

var _ pagequery.Repository[struct{}] = (*Repository[struct{}])(nil)

func NewRepository[T any](db *gorm.DB, opts ...Option) *Repository[T] {
	return &Repository[T]{
		Executor: NewExecutor[T](db, opts...),
		db:       db,
	}
}

func (r *Repository[T]) Get(ctx context.Context, id string) (*T, error) {
	var record T
	err := r.db.WithContext(ctx).Where(clause.Eq{Column: clause.PrimaryColumn, Value: id}).Take(&record).Error
	if err != nil {
		return nil, translateError(err)
	}
	return &record, nil
}

func (r *Repository[T]) Create(ctx context.Context, record *T) error {
	return translateError(r.db.WithContext(ctx).Create(record).Error)
}

// Save updates every column of an existing record. It fails with pagequery.ErrNotFound
// when no row has the record's primary key.
func (r *Repository[T]) Save(ctx context.Context, record *T) error {
	tx := r.db.WithContext(ctx).Model(record).Select("*").Updates(record)
	if tx.Error != nil {
		return translateError(tx.Error)
	}
	if tx.RowsAffected == 0 {
		return translateError(gorm.ErrRecordNotFound)
	}
	return nil
}
