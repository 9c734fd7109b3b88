package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

const kvSchema = `
CREATE TABLE IF NOT EXISTS kv_store (
	key TEXT PRIMARY KEY,
	value JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
`

// PostgresStore 以 kv_store 資料表儲存
type PostgresStore struct {
	db *sqlx.DB
}

// NewPostgresStore 連線並建立資料表
func NewPostgresStore(dataSourceName string) (*PostgresStore, error) {
	db, err := sqlx.Connect("postgres", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if _, err := db.Exec(kvSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create kv_store table: %w", err)
	}

	return &PostgresStore{db: db}, nil
}

// Get 讀取
func (s *PostgresStore) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := s.db.GetContext(ctx, &value, "SELECT value FROM kv_store WHERE key = $1", key)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get %s: %w", key, err)
	}
	return value, nil
}

// Put 寫入或覆蓋
func (s *PostgresStore) Put(ctx context.Context, key string, value []byte) error {
	if err := upsert(ctx, s.db, key, value); err != nil {
		return fmt.Errorf("failed to put %s: %w", key, err)
	}
	return nil
}

// Update 在交易中以 SELECT ... FOR UPDATE 鎖定該列
func (s *PostgresStore) Update(ctx context.Context, key string, fn UpdateFunc) (err error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	// 鍵不存在時先插入占位列，讓 FOR UPDATE 有列可鎖
	if _, err = tx.ExecContext(ctx,
		"INSERT INTO kv_store (key, value) VALUES ($1, 'null'::jsonb) ON CONFLICT (key) DO NOTHING", key); err != nil {
		return fmt.Errorf("failed to reserve %s: %w", key, err)
	}

	var current []byte
	if err = tx.GetContext(ctx, &current, "SELECT value FROM kv_store WHERE key = $1 FOR UPDATE", key); err != nil {
		return fmt.Errorf("failed to lock %s: %w", key, err)
	}
	if string(current) == "null" {
		current = nil
	}

	next, err := fn(current)
	if err != nil {
		return err
	}

	if err = upsert(ctx, tx, key, next); err != nil {
		return fmt.Errorf("failed to update %s: %w", key, err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit %s: %w", key, err)
	}
	return nil
}

// Delete 刪除
func (s *PostgresStore) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM kv_store WHERE key = $1", key); err != nil {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

// Close 關閉連線
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

func upsert(ctx context.Context, db sqlx.ExecerContext, key string, value []byte) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO kv_store (key, value, updated_at) VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()`,
		key, string(value))
	return err
}
