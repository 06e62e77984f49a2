// Package config builds the process configuration once at start-up. The returned
// Config is never mutated afterwards and is passed by pointer to whoever needs it.
package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
)

type Config struct {
	App        App
	DB         Database
	SMTP       SMTP
	S3         S3
	Pagination Pagination
	Log        Log
}

type App struct {
	Mode    string
	Secret  string
	Origins []string
	Port    string
}

type Database struct {
	Dialect  string
	Host     string
	Port     int
	Username string
	Password string
	Database string
}

type SMTP struct {
	User     string
	Host     string
	Port     string
	Secure   bool
	Password string
}

type S3 struct {
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	Region          string
	Bucket          string
	URL             string
}

type Pagination struct {
	DefaultPerPage int
	MaxPerPage     int
}

type Log struct {
	Level  string
	Format string
}

const (
	DialectMySQL    = "mysql"
	DialectPostgres = "postgres"
)

// RequiredKeys must be present and non-empty.
var RequiredKeys = []string{
	"APP_MODE",
	"APP_SECRET",
	"APP_ORIGIN",
	"APP_PORT",
	"DB_HOST",
	"DB_PORT",
	"DB_USERNAME",
	"DB_PASSWORD",
	"DB_DATABASE",
	"S3_ENDPOINT",
	"S3_ACCESS_KEY_ID",
	"S3_SECRET_ACCESS_KEY",
	"S3_REGION",
	"S3_BUCKET",
	"S3_URL",
}

// legacyKeys are the database keys of existing deployments, read when the DB_* key is unset.
var legacyKeys = map[string]string{
	"DB_HOST":     "TYPEORM_HOST",
	"DB_PORT":     "TYPEORM_PORT",
	"DB_USERNAME": "TYPEORM_USERNAME",
	"DB_PASSWORD": "TYPEORM_PASSWORD",
	"DB_DATABASE": "TYPEORM_DATABASE",
}

// IsProduction reports whether the app runs in any mode other than development.
func (c *Config) IsProduction() bool {
	return c.App.Mode != "development"
}

// Load reads the given dotenv files (".env" when none is given; missing files are
// ignored) into the process environment and builds the Config from it.
func Load(filenames ...string) (*Config, error) {
	if len(filenames) == 0 {
		filenames = []string{".env"}
	}
	for _, filename := range filenames {
		if err := godotenv.Load(filename); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return nil, errors.Wrapf(err, "load %s", filename)
		}
	}
	return FromLookup(os.LookupEnv)
}

// FromLookup builds the Config from a lookup function such as os.LookupEnv.
func FromLookup(lookup func(key string) (string, bool)) (*Config, error) {
	get := func(key string) string {
		v, _ := lookup(key)
		if v = strings.TrimSpace(v); v == "" && legacyKeys[key] != "" {
			v, _ = lookup(legacyKeys[key])
			v = strings.TrimSpace(v)
		}
		return v
	}

	var missing []string
	for _, key := range RequiredKeys {
		if get(key) == "" {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return nil, errors.Errorf("config error - missing env %s", strings.Join(missing, ", "))
	}

	p := &parser{get: get}
	cfg := &Config{
		App: App{
			Mode:    get("APP_MODE"),
			Secret:  get("APP_SECRET"),
			Origins: splitList(get("APP_ORIGIN")),
			Port:    get("APP_PORT"),
		},
		DB: Database{
			Dialect:  p.str("DB_DIALECT", DialectMySQL),
			Host:     get("DB_HOST"),
			Port:     p.integer("DB_PORT", 0),
			Username: get("DB_USERNAME"),
			Password: get("DB_PASSWORD"),
			Database: get("DB_DATABASE"),
		},
		SMTP: SMTP{
			User:     get("SMTP_USER"),
			Host:     get("SMTP_HOST"),
			Port:     get("SMTP_PORT"),
			Secure:   p.boolean("SMTP_SECURE", false),
			Password: get("SMTP_PASSWORD"),
		},
		S3: S3{
			Endpoint:        get("S3_ENDPOINT"),
			AccessKeyID:     get("S3_ACCESS_KEY_ID"),
			SecretAccessKey: get("S3_SECRET_ACCESS_KEY"),
			Region:          get("S3_REGION"),
			Bucket:          get("S3_BUCKET"),
			URL:             get("S3_URL"),
		},
		Pagination: Pagination{
			DefaultPerPage: p.integer("PAGINATION_DEFAULT_PER_PAGE", 12),
			MaxPerPage:     p.integer("PAGINATION_MAX_PER_PAGE", 100),
		},
		Log: Log{
			Level:  p.str("LOG_LEVEL", "info"),
			Format: p.str("LOG_FORMAT", "text"),
		},
	}
	if p.err != nil {
		return nil, p.err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.DB.Dialect {
	case DialectMySQL, DialectPostgres:
	default:
		return errors.Errorf("config error - DB_DIALECT must be %s or %s, got %q", DialectMySQL, DialectPostgres, c.DB.Dialect)
	}
	for _, origin := range c.App.Origins {
		if origin != "*" && !strings.HasPrefix(origin, "http://") && !strings.HasPrefix(origin, "https://") {
			return errors.Errorf("config error - APP_ORIGIN entries must be * or start with http:// or https://, got %q", origin)
		}
	}
	if c.DB.Port <= 0 {
		return errors.Errorf("config error - DB_PORT must be a positive integer, got %d", c.DB.Port)
	}
	if c.Pagination.DefaultPerPage <= 0 {
		return errors.New("config error - PAGINATION_DEFAULT_PER_PAGE must be greater than 0")
	}
	if c.Pagination.MaxPerPage < c.Pagination.DefaultPerPage {
		return errors.New("config error - PAGINATION_MAX_PER_PAGE must be greater than or equal to PAGINATION_DEFAULT_PER_PAGE")
	}
	return nil
}

// parser keeps the first conversion error.
type parser struct {
	get func(key string) string
	err error
}

func (p *parser) str(key, fallback string) string {
	if v := p.get(key); v != "" {
		return v
	}
	return fallback
}

func (p *parser) integer(key string, fallback int) int {
	v := p.get(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil && p.err == nil {
		p.err = errors.Wrapf(err, "config error - %s must be an integer", key)
	}
	return n
}

func (p *parser) boolean(key string, fallback bool) bool {
	v := p.get(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil && p.err == nil {
		p.err = errors.Wrapf(err, "config error - %s must be a boolean", key)
	}
	return b
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
