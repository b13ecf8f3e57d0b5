package database

import (
	"context"
	"fmt"
	"strings"

	"todo-api/internal/config"
	"todo-api/pkg/logger"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

func init() {
	sqlx.BindDriver(DriverSQLite, sqlx.QUESTION)
}

// ParseURL maps a DATABASE_URL to a driver name and DSN.
// postgres:// and postgresql:// are passed to lib/pq unchanged. sqlite:///relative.db and
// sqlite:////abs/path.db follow the SQLAlchemy convention.
func ParseURL(raw string) (driver, dsn string, err error) {
	raw = strings.TrimSpace(raw)
	switch {
	case strings.HasPrefix(raw, "postgres://"), strings.HasPrefix(raw, "postgresql://"):
		return DriverPostgres, raw, nil
	case strings.HasPrefix(raw, "sqlite://"):
		path := strings.TrimPrefix(raw, "sqlite://")
		path = strings.TrimPrefix(path, "/")
		if path == "" {
			return "", "", fmt.Errorf("sqlite url %q has no path", raw)
		}
		return DriverSQLite, sqliteDSN(path), nil
	default:
		return "", "", fmt.Errorf("unsupported database url %q", raw)
	}
}

func sqliteDSN(path string) string {
	if path == ":memory:" {
		return path
	}
	return "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)"
}

// Open connects to the configured database and sizes the pool.
func Open(ctx context.Context, cfg *config.Config) (*sqlx.DB, error) {
	driver, dsn, err := ParseURL(cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	db, err := sqlx.ConnectContext(ctx, driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", driver, err)
	}
	poolSize := cfg.DBPoolSize
	if poolSize <= 0 {
		poolSize = 1
	}
	if dsn == ":memory:" {
		// every connection would otherwise get its own empty database
		poolSize = 1
	}
	db.SetMaxOpenConns(poolSize)
	db.SetMaxIdleConns(max(poolSize/2, 1))
	logger.Info(ctx, "Database pool initialized", "driver", driver, "max_open", poolSize)
	return db, nil
}

// MigrateOrCreateSchema creates the todos table if it does not exist.
func MigrateOrCreateSchema(ctx context.Context, db *sqlx.DB) error {
	idColumn := "id INTEGER PRIMARY KEY AUTOINCREMENT"
	if db.DriverName() == DriverPostgres {
		idColumn = "id SERIAL PRIMARY KEY"
	}
	schema := `
CREATE TABLE IF NOT EXISTS todos (
    ` + idColumn + `,
    title TEXT NOT NULL,
    description TEXT,
    completed BOOLEAN NOT NULL DEFAULT FALSE,
    urgency TEXT NOT NULL DEFAULT 'can do later'
)`
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create todos table: %w", err)
	}
	return nil
}
