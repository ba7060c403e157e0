package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/marcboeker/go-duckdb/v2"
	_ "github.com/mattn/go-sqlite3"

	"github.com/pizzabot/pizzabot/internal/catalog"
)

const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "pgx"
	DriverDuckDB   = "duckdb"
)

type DBConfig struct {
	Driver          string
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxIdleTime time.Duration
	ConnMaxLifetime time.Duration
	BusyTimeout     time.Duration
	PingTimeout     time.Duration
}

func Open(ctx context.Context, cfg DBConfig) (*sql.DB, error) {
	driver := strings.TrimSpace(cfg.Driver)
	if driver == "" {
		driver = DriverSQLite
	}
	dsn := strings.TrimSpace(cfg.DSN)
	switch driver {
	case DriverSQLite:
		if dsn == "" {
			return nil, fmt.Errorf("catalog dsn is required")
		}
		dsn = sqliteDSN(dsn, cfg.BusyTimeout)
	case DriverPostgres:
		if dsn == "" {
			return nil, fmt.Errorf("catalog dsn is required")
		}
	case DriverDuckDB:
		// an empty DSN opens an in-memory database
	default:
		return nil, fmt.Errorf("unsupported catalog driver %q", driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open catalog db: %w", err)
	}

	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxIdleTime > 0 {
		db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	pingTimeout := cfg.PingTimeout
	if pingTimeout <= 0 {
		pingTimeout = 5 * time.Second
	}
	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: ping catalog db: %v", catalog.ErrStoreUnavailable, err)
	}

	return db, nil
}

// sqliteDSN turns a bare path into a go-sqlite3 URI with WAL journaling and a
// busy timeout applied to every pooled connection.
func sqliteDSN(dsn string, busyTimeout time.Duration) string {
	if busyTimeout <= 0 {
		busyTimeout = 5 * time.Second
	}
	params := []string{}
	if !strings.Contains(dsn, "_busy_timeout") && !strings.Contains(dsn, "_timeout") {
		params = append(params, "_busy_timeout="+strconv.FormatInt(busyTimeout.Milliseconds(), 10))
	}
	if !isMemoryDSN(dsn) && !strings.Contains(dsn, "_journal_mode") && !strings.Contains(dsn, "_journal=") {
		params = append(params, "_journal_mode=WAL")
	}
	if len(params) == 0 {
		return dsn
	}
	if !strings.HasPrefix(dsn, "file:") && !strings.HasPrefix(dsn, ":memory:") {
		dsn = "file:" + dsn
	}
	separator := "?"
	if strings.Contains(dsn, "?") {
		separator = "&"
	}
	return dsn + separator + strings.Join(params, "&")
}

func isMemoryDSN(dsn string) bool {
	return strings.Contains(dsn, ":memory:") || strings.Contains(dsn, "mode=memory")
}
