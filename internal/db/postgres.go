package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yigit/coursereview/internal/config"
	"github.com/yigit/coursereview/internal/pkg/helpers"
	"github.com/yigit/coursereview/internal/pkg/logger"
)

// Querier is implemented by both the pool and pgx.Tx. Repositories accept it so the
// caller decides whether a statement runs inside a transaction.
type Querier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Conn is the part of *pgxpool.Pool used by PostgresDB.
type Conn interface {
	Querier
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
	Ping(ctx context.Context) error
	Close()
}

// PostgresDB database connection structure
type PostgresDB struct {
	Pool      Conn
	txOptions pgx.TxOptions
	txTimeout time.Duration
}

// Option customises a PostgresDB.
type Option func(*PostgresDB)

// WithTxOptions sets the options every transaction begins with.
func WithTxOptions(opts pgx.TxOptions) Option {
	return func(db *PostgresDB) {
		db.txOptions = opts
	}
}

// WithTxTimeout bounds transactions whose context carries no deadline.
func WithTxTimeout(d time.Duration) Option {
	return func(db *PostgresDB) {
		db.txTimeout = d
	}
}

// New wraps an existing connection, typically a pool or a test double.
func New(conn Conn, opts ...Option) *PostgresDB {
	db := &PostgresDB{Pool: conn, txTimeout: 30 * time.Second}
	for _, opt := range opts {
		opt(db)
	}
	return db
}

// NewPostgresDB creates a new PostgreSQL connection pool
func NewPostgresDB(cfg *config.Config) (*PostgresDB, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	poolConfig, err := pgxpool.ParseConfig(cfg.GetPostgresConnectionString())
	if err != nil {
		return nil, fmt.Errorf("failed to parse pgxpool config: %w", err)
	}

	poolConfig.MaxConns = int32(cfg.Database.MaxOpenConns)
	poolConfig.MinConns = int32(cfg.Database.MaxIdleConns)
	poolConfig.MaxConnLifetime = helpers.ParseDuration(cfg.Database.ConnMaxLifetime, time.Hour)

	poolConfig.BeforeAcquire = func(ctx context.Context, conn *pgx.Conn) bool {
		if err := conn.Ping(ctx); err != nil {
			logger.Warn().Err(err).Msg("Unhealthy connection detected")
			return false
		}
		return true
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create database connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to establish database connection: %w", err)
	}

	txOptions, err := cfg.ReviewTxOptions()
	if err != nil {
		pool.Close()
		return nil, err
	}

	return New(pool,
		WithTxOptions(txOptions),
		WithTxTimeout(helpers.ParseDuration(cfg.Database.TxTimeout, 30*time.Second)),
	), nil
}

// Close closing method
func (db *PostgresDB) Close() {
	if db.Pool != nil {
		db.Pool.Close()
	}
}

// Ping checks that the database is reachable.
func (db *PostgresDB) Ping(ctx context.Context) error {
	return db.Pool.Ping(ctx)
}

// Querier returns the pool for statements that run outside a transaction.
func (db *PostgresDB) Querier() Querier {
	return db.Pool
}

// TransactionFn is a function that executes within a transaction. It must not
// commit or roll back tx.
type TransactionFn func(ctx context.Context, tx pgx.Tx) error

// WithTransaction runs fn within a transaction. The transaction commits only when fn
// returns nil; any error, panic or cancellation of ctx rolls it back.
func (db *PostgresDB) WithTransaction(ctx context.Context, fn TransactionFn) (err error) {
	if _, hasDeadline := ctx.Deadline(); !hasDeadline && db.txTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, db.txTimeout)
		defer cancel()
	}

	tx, err := db.Pool.BeginTx(ctx, db.txOptions)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	committed := false
	defer func() {
		if committed {
			return
		}
		// The request context may already be cancelled; the rollback must still be sent.
		rbCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if rbErr := tx.Rollback(rbCtx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			logger.Error().Err(rbErr).Msg("Failed to rollback transaction")
			if err != nil {
				err = fmt.Errorf("%w (rollback error: %v)", err, rbErr)
			}
		}
	}()

	if err := fn(ctx, tx); err != nil {
		return err
	}

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("transaction aborted: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	committed = true

	return nil
}
