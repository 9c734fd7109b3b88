package recipe

import (
	"context"
	"time"

	"recipe-finder/internal/core/mealdb"
	"recipe-finder/internal/pkg/common"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// MealLookup 取得完整食譜
type MealLookup interface {
	Lookup(ctx context.Context, id string) (*mealdb.Meal, error)
}

// Enricher 並行查詢食譜細節並推導標籤
type Enricher struct {
	lookup  MealLookup
	limit   int
	workers int
	timeout time.Duration
}

// NewEnricher 創建補全器；limit 為單次最多處理筆數，workers 為同時請求數
func NewEnricher(lookup MealLookup, limit, workers int, timeout time.Duration) *Enricher {
	if limit <= 0 {
		limit = 40
	}
	if workers <= 0 {
		workers = 8
	}
	return &Enricher{
		lookup:  lookup,
		limit:   limit,
		workers: workers,
		timeout: timeout,
	}
}

// Limit 單次最多處理筆數
func (e *Enricher) Limit() int {
	return e.limit
}

// Details 依 ids 順序回傳完整食譜，失敗者為 nil
//
// 整批受 timeout 限制；單筆失敗不影響其他筆，也不重試。
func (e *Enricher) Details(ctx context.Context, ids []string) []*mealdb.Meal {
	meals := make([]*mealdb.Meal, len(ids))
	if len(ids) == 0 {
		return meals
	}

	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)

	for i, id := range ids {
		i, id := i, id
		g.Go(func() error {
			meal, err := e.lookup.Lookup(gctx, id)
			if err != nil {
				common.LogWarn("食譜細節查詢失敗",
					zap.String("id", id),
					zap.Error(err),
				)
				return nil
			}
			meals[i] = meal
			return nil
		})
	}
	_ = g.Wait()

	return meals
}

// Enrich 為前 limit 筆精簡資料查詢細節並推導標籤，輸出順序與輸入相同
//
// 查詢失敗的項目使用空的食材清單，得到中性標籤。
func (e *Enricher) Enrich(ctx context.Context, stubs []mealdb.MealStub) []Record {
	if len(stubs) > e.limit {
		stubs = stubs[:e.limit]
	}

	ids := make([]string, len(stubs))
	for i, s := range stubs {
		ids[i] = s.ID
	}
	meals := e.Details(ctx, ids)

	records := make([]Record, len(stubs))
	for i, stub := range stubs {
		r := FromStub(stub)
		var ingredients []string
		if meal := meals[i]; meal != nil {
			r.Category = meal.Category
			r.Area = meal.Area
			ingredients = meal.IngredientLines()
		}
		r.ApplyTags(ingredients)
		records[i] = r
	}

	common.LogDebug("食譜補全完成", zap.Int("count", len(records)))
	return records
}
