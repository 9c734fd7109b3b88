// Package favorites 管理收藏的食譜
package favorites

import (
	"context"
	"fmt"

	"recipe-finder/internal/core/history"
	"recipe-finder/internal/core/mealdb"
	"recipe-finder/internal/core/recipe"
	"recipe-finder/internal/pkg/common"
	"recipe-finder/internal/storage"

	"go.uber.org/zap"
)

// Service 收藏服務，最新收藏在最前面
type Service struct {
	store    storage.Store
	enricher *recipe.Enricher
	history  *history.Service
}

// NewService 創建收藏服務；enricher 與 historySvc 可為 nil
func NewService(store storage.Store, enricher *recipe.Enricher, historySvc *history.Service) *Service {
	return &Service{
		store:    store,
		enricher: enricher,
		history:  historySvc,
	}
}

// List 取得收藏
func (s *Service) List(ctx context.Context) ([]recipe.Record, error) {
	var list []recipe.Record
	if _, err := storage.GetJSON(ctx, s.store, storage.KeyFavorites, &list); err != nil {
		return nil, fmt.Errorf("failed to load favorites: %w", err)
	}
	return nonNil(list), nil
}

// Contains 是否已收藏
func (s *Service) Contains(ctx context.Context, id string) (bool, error) {
	list, err := s.List(ctx)
	if err != nil {
		return false, err
	}
	return indexOf(list, id) >= 0, nil
}

// Toggle 未收藏則加到最前面，已收藏則移除
func (s *Service) Toggle(ctx context.Context, meal mealdb.MealStub) (bool, []recipe.Record, error) {
	if meal.ID == "" {
		return false, nil, common.NewValidationError("idMeal is required")
	}

	added := false
	list, err := storage.UpdateJSON(ctx, s.store, storage.KeyFavorites, func(list *[]recipe.Record) error {
		added = false
		if i := indexOf(*list, meal.ID); i >= 0 {
			*list = append((*list)[:i:i], (*list)[i+1:]...)
			return nil
		}
		*list = append([]recipe.Record{recipe.FromStub(meal)}, *list...)
		added = true
		return nil
	})
	if err != nil {
		return false, nil, fmt.Errorf("failed to toggle favorite: %w", err)
	}

	if added && s.history != nil {
		s.history.TrackQuietly(ctx, history.ActionFavorite, meal.ID)
	}
	return added, nonNil(list), nil
}

// Save 覆蓋整份收藏
func (s *Service) Save(ctx context.Context, list []recipe.Record) error {
	if err := storage.PutJSON(ctx, s.store, storage.KeyFavorites, nonNil(list)); err != nil {
		return fmt.Errorf("failed to save favorites: %w", err)
	}
	return nil
}

// Remove 移除指定收藏
func (s *Service) Remove(ctx context.Context, id string) ([]recipe.Record, error) {
	list, err := storage.UpdateJSON(ctx, s.store, storage.KeyFavorites, func(list *[]recipe.Record) error {
		if i := indexOf(*list, id); i >= 0 {
			*list = append((*list)[:i:i], (*list)[i+1:]...)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to remove favorite: %w", err)
	}
	return nonNil(list), nil
}

// ApplyOverride 合併覆寫到同 id 的收藏
func (s *Service) ApplyOverride(ctx context.Context, id string, partial recipe.UserOverride) (bool, error) {
	applied := false
	_, err := storage.UpdateJSON(ctx, s.store, storage.KeyFavorites, func(list *[]recipe.Record) error {
		applied = recipe.ApplyOverrideTo(*list, id, partial)
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("failed to apply favorite override: %w", err)
	}
	return applied, nil
}

// EnrichMissing 為尚未標記的收藏查詢細節並推導標籤
//
// 順序與覆寫保持不變；查詢失敗的收藏維持原狀，下次再試。
func (s *Service) EnrichMissing(ctx context.Context) ([]recipe.Record, int, error) {
	list, err := s.List(ctx)
	if err != nil {
		return nil, 0, err
	}
	if s.enricher == nil {
		return list, 0, nil
	}

	var ids []string
	for _, r := range list {
		if !r.Tagged && r.ID != "" {
			ids = append(ids, r.ID)
		}
	}
	if len(ids) == 0 {
		return list, 0, nil
	}

	meals := s.enricher.Details(ctx, ids)
	found := make(map[string]*mealdb.Meal, len(ids))
	for i, id := range ids {
		if meals[i] != nil {
			found[id] = meals[i]
		}
	}

	enriched := 0
	list, err = storage.UpdateJSON(ctx, s.store, storage.KeyFavorites, func(list *[]recipe.Record) error {
		enriched = 0
		for i := range *list {
			r := &(*list)[i]
			meal, ok := found[r.ID]
			if r.Tagged || !ok {
				continue
			}
			r.Category = meal.Category
			r.Area = meal.Area
			r.ApplyTags(meal.IngredientLines())
			enriched++
		}
		return nil
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to save enriched favorites: %w", err)
	}

	common.LogInfo("收藏標籤補全",
		zap.Int("pending", len(ids)),
		zap.Int("enriched", enriched),
	)
	return nonNil(list), enriched, nil
}

func indexOf(list []recipe.Record, id string) int {
	for i, r := range list {
		if r.ID == id {
			return i
		}
	}
	return -1
}

func nonNil(list []recipe.Record) []recipe.Record {
	if list == nil {
		return []recipe.Record{}
	}
	return list
}
