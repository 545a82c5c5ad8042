package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"
)

var postgresQueries = sqlQueries{
	save: `
		INSERT INTO support_records (id, status, priority, created_at, data)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			status = EXCLUDED.status,
			priority = EXCLUDED.priority,
			created_at = EXCLUDED.created_at,
			data = EXCLUDED.data
	`,
	get:    `SELECT data FROM support_records WHERE id = $1`,
	delete: `DELETE FROM support_records WHERE id = $1`,
}

// PostgresStore is a PostgreSQL implementation of the RecordRepository interface
type PostgresStore struct {
	sqlStore
}

// NewPostgresStore connects to PostgreSQL through pgx and creates the records
// table if needed. Every query is logged at debug level.
func NewPostgresStore(dsn string, logger *zap.Logger) (*PostgresStore, error) {
	connCfg, err := pgx.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse PostgreSQL DSN: %w", err)
	}
	connCfg.Tracer = &queryTracer{logger: logger}

	db := stdlib.OpenDB(*connCfg)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to PostgreSQL database: %w", err)
	}

	_, err = db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS support_records (
			id TEXT PRIMARY KEY,
			status TEXT NOT NULL,
			priority TEXT NOT NULL,
			created_at BIGINT NOT NULL,
			data JSONB NOT NULL
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	_, err = db.ExecContext(ctx, `
		CREATE INDEX IF NOT EXISTS idx_support_records_created_at ON support_records(created_at)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create index: %w", err)
	}

	logger.Info("Opened PostgreSQL store", zap.String("host", connCfg.Host), zap.String("database", connCfg.Database))
	return &PostgresStore{sqlStore{db: db, logger: logger, queries: postgresQueries}}, nil
}

type queryStartKey struct{}

type queryStart struct {
	sql string
	at  time.Time
}

// queryTracer logs each statement with its duration
type queryTracer struct {
	logger *zap.Logger
}

func (t *queryTracer) TraceQueryStart(ctx context.Context, _ *pgx.Conn, data pgx.TraceQueryStartData) context.Context {
	return context.WithValue(ctx, queryStartKey{}, queryStart{sql: data.SQL, at: time.Now()})
}

func (t *queryTracer) TraceQueryEnd(ctx context.Context, _ *pgx.Conn, data pgx.TraceQueryEndData) {
	start, _ := ctx.Value(queryStartKey{}).(queryStart)

	fields := []zap.Field{
		zap.String("sql", compactSQL(start.sql)),
		zap.String("command", data.CommandTag.String()),
	}
	if !start.at.IsZero() {
		fields = append(fields, zap.Duration("duration", time.Since(start.at)))
	}
	if data.Err != nil {
		t.logger.Warn("PostgreSQL query failed", append(fields, zap.Error(data.Err))...)
		return
	}
	t.logger.Debug("PostgreSQL query", fields...)
}
