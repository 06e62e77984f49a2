package gormquery

import (
	"github.com/go-sql-driver/mysql"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/theplant/pagequery"
)

const mysqlDuplicateEntry = 1062

// translateError maps driver errors onto the pagequery sentinels, keeping the original
// error in the message.
func translateError(err error) error {
	if err == nil {
		return nil
	}
	if pagequery.IsValidationError(err) {
		return err
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errors.WithStack(pagequery.ErrNotFound)
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return errors.Wrap(pagequery.ErrDuplicate, err.Error())
	}
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) && mysqlErr.Number == mysqlDuplicateEntry {
		return errors.Wrap(pagequery.ErrDuplicate, mysqlErr.Message)
	}
	return err
}
