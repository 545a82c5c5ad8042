package store

import (
	"database/sql"
	"fmt"

	_ "github.com/go-sql-driver/mysql"
	"go.uber.org/zap"
)

// MySQLStore is a MySQL implementation of the RecordRepository interface
type MySQLStore struct {
	sqlStore
}

// NewMySQLStore connects to MySQL and creates the records table if needed
func NewMySQLStore(dsn string, logger *zap.Logger) (*MySQLStore, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open MySQL database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to MySQL database: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS support_records (
			id VARCHAR(26) PRIMARY KEY,
			status VARCHAR(16) NOT NULL,
			priority VARCHAR(16) NOT NULL,
			created_at BIGINT NOT NULL,
			data LONGTEXT NOT NULL,
			INDEX idx_support_records_created_at (created_at)
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	return &MySQLStore{sqlStore{db: db, logger: logger, queries: replaceQueries}}, nil
}
