package gormquery

import (
	"net"
	"net/url"
	"strconv"

	mysqldriver "github.com/go-sql-driver/mysql"
	"github.com/pkg/errors"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/theplant/pagequery/config"
)

// Dialector returns the GORM dialector for the configured database.
func Dialector(cfg config.Database) (gorm.Dialector, error) {
	switch cfg.Dialect {
	case config.DialectMySQL:
		dsn := mysqldriver.NewConfig()
		dsn.User = cfg.Username
		dsn.Passwd = cfg.Password
		dsn.Net = "tcp"
		dsn.Addr = net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))
		dsn.DBName = cfg.Database
		dsn.ParseTime = true
		// matched rows, not changed rows, so saving an unchanged record is not a miss
		dsn.ClientFoundRows = true
		return mysql.Open(dsn.FormatDSN()), nil
	case config.DialectPostgres:
		dsn := url.URL{
			Scheme:   "postgres",
			User:     url.UserPassword(cfg.Username, cfg.Password),
			Host:     net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
			Path:     "/" + cfg.Database,
			RawQuery: "sslmode=disable",
		}
		return postgres.Open(dsn.String()), nil
	default:
		return nil, errors.Errorf("unsupported dialect %q", cfg.Dialect)
	}
}

// Open connects to the configured database. Driver errors for duplicate keys are
// translated so repositories can report them.
func Open(cfg config.Database, log logger.Interface) (*gorm.DB, error) {
	dialector, err := Dialector(cfg)
	if err != nil {
		return nil, err
	}
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         log,
		TranslateError: true,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "open %s database", cfg.Dialect)
	}
	return db, nil
}

// Migrate creates or updates the tables of the given models.
func Migrate(db *gorm.DB, models ...any) error {
	return errors.Wrap(db.AutoMigrate(models...), "migrate")
}
