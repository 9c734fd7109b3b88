// Package storage 提供以固定鍵儲存 JSON 文件的鍵值持久化
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"recipe-finder/internal/infrastructure/config"
	"recipe-finder/internal/pkg/common"

	"go.uber.org/zap"
)

// 固定的集合鍵
const (
	KeyFavorites      = "rf_favorites"
	KeyPantry         = "rf_pantry"
	KeyRecentSearches = "rf_recent_searches"
	KeyUserHistory    = "rf_user_history"
)

var (
	// ErrNotFound 鍵不存在
	ErrNotFound = errors.New("storage: key not found")
	// ErrConflict 樂觀鎖重試次數用盡
	ErrConflict = errors.New("storage: update conflict")
)

// UpdateFunc 讀取目前內容（不存在時為 nil）並回傳新的內容
type UpdateFunc func(current []byte) ([]byte, error)

// Store 鍵值儲存
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	// Update 以原子方式完成讀取、計算、寫入
	Update(ctx context.Context, key string, fn UpdateFunc) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// New 依設定建立儲存後端
func New(cfg *config.Config) (Store, error) {
	switch cfg.Storage.Driver {
	case "", "memory":
		common.LogInfo("使用記憶體儲存")
		return NewMemoryStore(), nil
	case "redis":
		s, err := NewRedisStore(&cfg.Redis)
		if err != nil {
			return nil, err
		}
		common.LogInfo("使用 Redis 儲存", zap.String("addr", cfg.Redis.Addr))
		return s, nil
	case "postgres":
		s, err := NewPostgresStore(cfg.Postgres.DSN)
		if err != nil {
			return nil, err
		}
		common.LogInfo("使用 Postgres 儲存")
		return s, nil
	default:
		return nil, fmt.Errorf("unknown storage driver: %s", cfg.Storage.Driver)
	}
}

// GetJSON 讀取並解析 JSON，鍵不存在時 found 為 false
func GetJSON(ctx context.Context, s Store, key string, v interface{}) (found bool, err error) {
	data, err := s.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("failed to unmarshal %s: %w", key, err)
	}
	return true, nil
}

// PutJSON 序列化後寫入
func PutJSON(ctx context.Context, s Store, key string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", key, err)
	}
	return s.Put(ctx, key, data)
}

// UpdateJSON 以 JSON 型別包裝 Update；fn 收到的 v 在鍵不存在時為零值
func UpdateJSON[T any](ctx context.Context, s Store, key string, fn func(v *T) error) (T, error) {
	var result T
	err := s.Update(ctx, key, func(current []byte) ([]byte, error) {
		var v T
		if current != nil {
			if err := json.Unmarshal(current, &v); err != nil {
				return nil, fmt.Errorf("failed to unmarshal %s: %w", key, err)
			}
		}
		if err := fn(&v); err != nil {
			return nil, err
		}
		next, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal %s: %w", key, err)
		}
		result = v
		return next, nil
	})
	return result, err
}
