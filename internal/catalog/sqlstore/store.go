package sqlstore

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/mattn/go-sqlite3"
	"golang.org/x/sync/semaphore"

	"github.com/pizzabot/pizzabot/internal/catalog"
	"github.com/pizzabot/pizzabot/internal/observability"
)

const maxConcurrentReads = 64

type Options struct {
	Driver      string
	LockTimeout time.Duration
	Logger      *slog.Logger
}

type Store struct {
	db          *sql.DB
	driver      string
	lockTimeout time.Duration
	logger      *slog.Logger
	gate        *semaphore.Weighted
}

func New(db *sql.DB, opts Options) *Store {
	driver := opts.Driver
	if driver == "" {
		driver = DriverSQLite
	}
	lockTimeout := opts.LockTimeout
	if lockTimeout <= 0 {
		lockTimeout = 30 * time.Second
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Store{
		db:          db,
		driver:      driver,
		lockTimeout: lockTimeout,
		logger:      logger,
		gate:        semaphore.NewWeighted(maxConcurrentReads),
	}
}

func (s *Store) Reload(ctx context.Context, items []catalog.MenuItem) (err error) {
	defer func() { observability.ObserveCatalogReload(len(items), err) }()

	if err := catalog.ValidateItems(items); err != nil {
		return fmt.Errorf("validate menu items: %w", err)
	}

	release, err := s.acquire(ctx, maxConcurrentReads)
	if err != nil {
		return err
	}
	defer release()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return s.classify("begin reload tx", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM `+catalog.TableName); err != nil {
		return s.classify("clear menu", err)
	}

	stmt, err := tx.PrepareContext(ctx, s.insertSQL())
	if err != nil {
		return s.classify("prepare menu insert", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, item := range items {
		if _, err := stmt.ExecContext(ctx, item.ID, item.Name, string(item.Size), item.Price, item.Ingredients); err != nil {
			return s.classify(fmt.Sprintf("insert menu item %d", item.ID), err)
		}
	}
	if err := tx.Commit(); err != nil {
		return s.classify("commit reload", err)
	}

	s.logger.Info("catalog reloaded", slog.Int("items", len(items)), slog.String("driver", s.driver))
	return nil
}

func (s *Store) Execute(ctx context.Context, query string) (catalog.Result, error) {
	if !catalog.IsReadOnlyQuery(query) {
		return catalog.Result{}, &catalog.QueryError{Query: query, Err: catalog.ErrNotReadOnly}
	}

	release, err := s.acquire(ctx, 1)
	if err != nil {
		return catalog.Result{}, err
	}
	defer release()

	s.logger.DebugContext(ctx, "executing catalog query", slog.String("sql", query))
	var result catalog.Result
	err = s.readOnly(ctx, func(tx *sql.Tx) error {
		rows, err := tx.QueryContext(ctx, stripTrailingSemicolons(query))
		if err != nil {
			return err
		}
		defer func() { _ = rows.Close() }()

		columns, err := rows.Columns()
		if err != nil {
			return err
		}
		resultRows := make([][]any, 0)
		for rows.Next() {
			values := make([]any, len(columns))
			scanTargets := make([]any, len(columns))
			for i := range values {
				scanTargets[i] = &values[i]
			}
			if err := rows.Scan(scanTargets...); err != nil {
				return err
			}
			resultRows = append(resultRows, normalizeValues(values))
		}
		if err := rows.Err(); err != nil {
			return err
		}
		result = catalog.Result{Columns: columns, Rows: resultRows}
		return nil
	})
	if err != nil {
		if isUnavailable(err) {
			return catalog.Result{}, fmt.Errorf("%w: %v", catalog.ErrStoreUnavailable, err)
		}
		return catalog.Result{}, &catalog.QueryError{Query: query, Err: err}
	}
	return result, nil
}

// readOnly runs fn in a transaction that is always rolled back. Postgres opens
// it as BEGIN READ ONLY. sqlite ignores that option, so the connection is
// pinned with PRAGMA query_only for the call instead. duckdb rejects read-only
// transactions and relies on the rollback.
func (s *Store) readOnly(ctx context.Context, fn func(*sql.Tx) error) error {
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = conn.Close() }()

	if s.driver == DriverSQLite {
		if _, err := conn.ExecContext(ctx, `PRAGMA query_only = ON`); err != nil {
			return err
		}
		defer s.releaseQueryOnly(conn)
	}

	tx, err := conn.BeginTx(ctx, &sql.TxOptions{ReadOnly: s.driver != DriverDuckDB})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()
	return fn(tx)
}

// releaseQueryOnly drops the connection from the pool when query_only cannot
// be switched off, so a later Reload never lands on it.
func (s *Store) releaseQueryOnly(conn *sql.Conn) {
	if _, err := conn.ExecContext(context.Background(), `PRAGMA query_only = OFF`); err != nil {
		s.logger.Warn("discarding sqlite connection stuck in query_only", slog.String("error", err.Error()))
		_ = conn.Raw(func(any) error { return driver.ErrBadConn })
	}
}

func (s *Store) DescribeSchema() string {
	return catalog.DescribeSchema()
}

func (s *Store) Items(ctx context.Context) ([]catalog.MenuItem, error) {
	release, err := s.acquire(ctx, 1)
	if err != nil {
		return nil, err
	}
	defer release()

	rows, err := s.db.QueryContext(ctx, `SELECT id, name, tamanho, preco, ingredientes FROM `+catalog.TableName+` ORDER BY id`)
	if err != nil {
		return nil, s.classify("query menu", err)
	}
	defer func() { _ = rows.Close() }()

	var items []catalog.MenuItem
	for rows.Next() {
		var item catalog.MenuItem
		var size string
		if err := rows.Scan(&item.ID, &item.Name, &size, &item.Price, &item.Ingredients); err != nil {
			return nil, fmt.Errorf("scan menu item: %w", err)
		}
		item.Size = catalog.Size(size)
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return items, nil
}

func (s *Store) Count(ctx context.Context) (int, error) {
	release, err := s.acquire(ctx, 1)
	if err != nil {
		return 0, err
	}
	defer release()

	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM `+catalog.TableName).Scan(&count); err != nil {
		return 0, s.classify("count menu", err)
	}
	return count, nil
}

func (s *Store) HealthCheck(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: %v", catalog.ErrStoreUnavailable, err)
	}
	return nil
}

// acquire bounds the wait for the read/reload gate by lockTimeout. Reload takes
// every slot so it runs alone.
func (s *Store) acquire(ctx context.Context, weight int64) (func(), error) {
	waitCtx, cancel := context.WithTimeout(ctx, s.lockTimeout)
	defer cancel()
	if err := s.gate.Acquire(waitCtx, weight); err != nil {
		return nil, fmt.Errorf("%w: waited %s for catalog lock: %v", catalog.ErrStoreUnavailable, s.lockTimeout, err)
	}
	return func() { s.gate.Release(weight) }, nil
}

func (s *Store) insertSQL() string {
	placeholders := make([]string, 5)
	for i := range placeholders {
		if s.driver == DriverPostgres {
			placeholders[i] = "$" + strconv.Itoa(i+1)
		} else {
			placeholders[i] = "?"
		}
	}
	return `INSERT INTO ` + catalog.TableName + ` (id, name, tamanho, preco, ingredientes) VALUES (` + strings.Join(placeholders, ", ") + `)`
}

func (s *Store) classify(action string, err error) error {
	if isUnavailable(err) {
		return fmt.Errorf("%w: %s: %v", catalog.ErrStoreUnavailable, action, err)
	}
	return fmt.Errorf("%s: %w", action, err)
}

func isUnavailable(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, driver.ErrBadConn) || errors.Is(err, sql.ErrConnDone) {
		return true
	}
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code == sqlite3.ErrBusy || sqliteErr.Code == sqlite3.ErrLocked || sqliteErr.Code == sqlite3.ErrCantOpen
	}
	return false
}

func normalizeValues(values []any) []any {
	normalized := make([]any, len(values))
	for i, value := range values {
		switch typed := value.(type) {
		case []byte:
			normalized[i] = string(typed)
		default:
			normalized[i] = typed
		}
	}
	return normalized
}

func stripTrailingSemicolons(sqlText string) string {
	trimmed := strings.TrimSpace(sqlText)
	for strings.HasSuffix(trimmed, ";") {
		trimmed = strings.TrimSpace(strings.TrimSuffix(trimmed, ";"))
	}
	return trimmed
}
