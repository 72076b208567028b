package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"kala/internal/config"
	"kala/internal/database"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// SQLDB adapts a database/sql handle to database.DB. It backs the
// repositories when they run over the pgx stdlib driver or sqlmock.
type SQLDB struct {
	db *sql.DB
}

func NewSQLDB(db *sql.DB) *SQLDB {
	return &SQLDB{db: db}
}

// Open connects through the pgx stdlib driver. The pool settings map onto
// the database/sql connection limits.
func Open(ctx context.Context, cfg config.DatabaseConfig) (*SQLDB, error) {
	db, err := sql.Open("pgx", cfg.DSN())
	if err != nil {
		return nil, err
	}
	if cfg.PoolMaxConns > 0 {
		db.SetMaxOpenConns(int(cfg.PoolMaxConns))
	}
	if cfg.PoolMinConns > 0 {
		db.SetMaxIdleConns(int(cfg.PoolMinConns))
	}
	db.SetConnMaxLifetime(cfg.PoolMaxConnLifetime)
	db.SetConnMaxIdleTime(cfg.PoolMaxConnIdleTime)

	pingCtx := ctx
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		pingCtx, cancel = context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
	}
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &SQLDB{db: db}, nil
}

func (s *SQLDB) Ping(ctx context.Context) error {
	if s == nil || s.db == nil {
		return database.ErrNilDB
	}
	return s.db.PingContext(ctx)
}

func (s *SQLDB) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *SQLDB) Exec(ctx context.Context, query string, args ...any) (int64, error) {
	if s == nil || s.db == nil {
		return 0, database.ErrNilDB
	}
	return execAffected(s.db.ExecContext(ctx, query, args...))
}

func (s *SQLDB) Query(ctx context.Context, query string, args ...any) (database.Rows, error) {
	if s == nil || s.db == nil {
		return nil, database.ErrNilDB
	}
	r, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return sqlRows{r}, nil
}

func (s *SQLDB) QueryRow(ctx context.Context, query string, args ...any) database.Row {
	if s == nil || s.db == nil {
		return nilRow{}
	}
	return s.db.QueryRowContext(ctx, query, args...)
}

func (s *SQLDB) Begin(ctx context.Context) (database.Tx, error) {
	if s == nil || s.db == nil {
		return nil, database.ErrNilDB
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return sqlTx{tx}, nil
}

func (s *SQLDB) SQLDB() *sql.DB {
	if s == nil {
		return nil
	}
	return s.db
}

type sqlTx struct {
	tx *sql.Tx
}

func (t sqlTx) Exec(ctx context.Context, query string, args ...any) (int64, error) {
	return execAffected(t.tx.ExecContext(ctx, query, args...))
}

func (t sqlTx) Query(ctx context.Context, query string, args ...any) (database.Rows, error) {
	r, err := t.tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return sqlRows{r}, nil
}

func (t sqlTx) QueryRow(ctx context.Context, query string, args ...any) database.Row {
	return t.tx.QueryRowContext(ctx, query, args...)
}

func (t sqlTx) Commit(context.Context) error   { return t.tx.Commit() }
func (t sqlTx) Rollback(context.Context) error { return t.tx.Rollback() }

type sqlRows struct {
	*sql.Rows
}

func (r sqlRows) Close() { _ = r.Rows.Close() }

type nilRow struct{}

func (nilRow) Scan(_ ...any) error { return database.ErrNilDB }

func execAffected(res sql.Result, err error) (int64, error) {
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
