package pantry

import (
	"context"
	"fmt"
	"strings"

	"recipe-finder/internal/pkg/common"
	"recipe-finder/internal/storage"

	"go.uber.org/zap"
	"golang.org/x/text/unicode/norm"
)

// Service 庫存清單，最新加入者在最前面
type Service struct {
	store storage.Store
}

// NewService 建立庫存服務
func NewService(store storage.Store) *Service {
	return &Service{store: store}
}

// CleanItem 將輸入正規化為庫存項目：NFKC、去除首尾空白、合併空白、小寫
func CleanItem(item string) string {
	item = norm.NFKC.String(item)
	return strings.ToLower(common.CollapseSpaces(item))
}

// List 取得庫存
func (s *Service) List(ctx context.Context) ([]string, error) {
	var items []string
	if _, err := storage.GetJSON(ctx, s.store, storage.KeyPantry, &items); err != nil {
		return nil, fmt.Errorf("failed to load pantry: %w", err)
	}
	if items == nil {
		items = []string{}
	}
	return items, nil
}

// Add 加入項目；空字串不處理，重複項目不會再加入
func (s *Service) Add(ctx context.Context, item string) ([]string, error) {
	cleaned := CleanItem(item)
	if cleaned == "" {
		return nil, common.NewValidationError("pantry item is empty")
	}

	items, err := storage.UpdateJSON(ctx, s.store, storage.KeyPantry, func(items *[]string) error {
		for _, existing := range *items {
			if strings.EqualFold(existing, cleaned) {
				return nil
			}
		}
		*items = append([]string{cleaned}, *items...)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to add pantry item: %w", err)
	}

	common.LogDebug("庫存已更新", zap.String("item", cleaned), zap.Int("count", len(items)))
	return nonNil(items), nil
}

// Remove 移除項目（不分大小寫）
func (s *Service) Remove(ctx context.Context, item string) ([]string, error) {
	cleaned := CleanItem(item)

	items, err := storage.UpdateJSON(ctx, s.store, storage.KeyPantry, func(items *[]string) error {
		next := make([]string, 0, len(*items))
		for _, existing := range *items {
			if !strings.EqualFold(existing, cleaned) {
				next = append(next, existing)
			}
		}
		*items = next
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to remove pantry item: %w", err)
	}
	return nonNil(items), nil
}

// Clear 清空庫存
func (s *Service) Clear(ctx context.Context) error {
	if err := s.store.Delete(ctx, storage.KeyPantry); err != nil {
		return fmt.Errorf("failed to clear pantry: %w", err)
	}
	return nil
}

// Query 將庫存組成以逗號分隔的食材搜尋字串
func Query(items []string) string {
	return strings.Join(items, ",")
}

func nonNil(items []string) []string {
	if items == nil {
		return []string{}
	}
	return items
}
