package recipe

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"recipe-finder/internal/core/history"
	"recipe-finder/internal/core/mealdb"
	"recipe-finder/internal/core/pantry"
	"recipe-finder/internal/core/tagging"
	"recipe-finder/internal/pkg/common"

	"go.uber.org/zap"
)

// Catalog 食譜來源
type Catalog interface {
	MealLookup
	FilterByIngredient(ctx context.Context, ingredients string) ([]mealdb.MealStub, error)
	FilterByCategory(ctx context.Context, category string) ([]mealdb.MealStub, error)
	FilterByArea(ctx context.Context, area string) ([]mealdb.MealStub, error)
	SearchByName(ctx context.Context, name string) ([]mealdb.Meal, error)
	ListCategories(ctx context.Context) ([]string, error)
	ListAreas(ctx context.Context) ([]string, error)
}

// FavoriteStore 收藏清單
type FavoriteStore interface {
	List(ctx context.Context) ([]Record, error)
	ApplyOverride(ctx context.Context, id string, partial UserOverride) (bool, error)
}

// SearchResult 目前的結果集
type SearchResult struct {
	Query   string   `json:"query"`
	Recipes []Record `json:"recipes"`
	Ranked  bool     `json:"ranked"`
}

// Detail 單一食譜的完整資料與標籤
type Detail struct {
	Meal          *mealdb.Meal       `json:"meal"`
	Recipe        Record             `json:"recipe"`
	EffectiveTags tagging.DietTagSet `json:"effectiveTags"`
}

// Workspace 保存目前搜尋結果並協調搜尋、補全、排序與覆寫
//
// 每次搜尋取得遞增的世代編號；只有最新世代的結果會被保存。
type Workspace struct {
	catalog   Catalog
	enricher  *Enricher
	pantry    *pantry.Service
	history   *history.Service
	favorites FavoriteStore

	gen atomic.Uint64

	mu      sync.RWMutex
	query   string
	results []Record
	ranked  bool
}

// NewWorkspace 創建工作區，favorites 可為 nil
func NewWorkspace(catalog Catalog, enricher *Enricher, pantrySvc *pantry.Service, historySvc *history.Service, favorites FavoriteStore) *Workspace {
	return &Workspace{
		catalog:   catalog,
		enricher:  enricher,
		pantry:    pantrySvc,
		history:   historySvc,
		favorites: favorites,
		results:   []Record{},
	}
}

// Search 依食材搜尋，無結果時改以菜名搜尋
func (w *Workspace) Search(ctx context.Context, query string) (*SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, common.NewValidationError("query is required")
	}

	gen := w.gen.Add(1)
	if _, err := w.history.RecordSearch(ctx, query); err != nil {
		common.LogWarn("最近搜尋保存失敗", zap.Error(err))
	}
	w.history.TrackQuietly(ctx, history.ActionSearch, query)

	stubs, err := w.catalog.FilterByIngredient(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("ingredient search failed: %w", err)
	}

	if len(stubs) == 0 {
		meals, err := w.catalog.SearchByName(ctx, query)
		if err != nil {
			return nil, fmt.Errorf("name search failed: %w", err)
		}
		stubs = make([]mealdb.MealStub, len(meals))
		for i := range meals {
			stubs[i] = meals[i].Stub()
		}
	}

	if len(stubs) == 0 {
		w.reset(gen, query)
		return nil, &NoResultsError{Query: query, Suggestions: Suggest(query)}
	}

	return w.load(ctx, gen, query, stubs)
}

// SearchByCategory 依分類搜尋
func (w *Workspace) SearchByCategory(ctx context.Context, category string) (*SearchResult, error) {
	return w.searchBy(ctx, history.ActionCategory, category, w.catalog.FilterByCategory)
}

// SearchByArea 依地區搜尋
func (w *Workspace) SearchByArea(ctx context.Context, area string) (*SearchResult, error) {
	return w.searchBy(ctx, history.ActionArea, area, w.catalog.FilterByArea)
}

// SearchByPantry 以庫存食材組成查詢
func (w *Workspace) SearchByPantry(ctx context.Context) (*SearchResult, error) {
	items, err := w.pantry.List(ctx)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, common.NewValidationError("pantry is empty")
	}
	return w.Search(ctx, pantry.Query(items))
}

func (w *Workspace) searchBy(ctx context.Context, action history.Action, value string, filter func(context.Context, string) ([]mealdb.MealStub, error)) (*SearchResult, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, common.NewValidationError(fmt.Sprintf("%s is required", action))
	}

	gen := w.gen.Add(1)
	w.history.TrackQuietly(ctx, action, value)

	stubs, err := filter(ctx, value)
	if err != nil {
		return nil, fmt.Errorf("%s search failed: %w", action, err)
	}
	if len(stubs) == 0 {
		w.reset(gen, value)
		return nil, &NoResultsError{
			Query:       value,
			Suggestions: Suggestions{Alternates: []string{}, Ingredients: []string{}},
		}
	}
	return w.load(ctx, gen, value, stubs)
}

func (w *Workspace) load(ctx context.Context, gen uint64, query string, stubs []mealdb.MealStub) (*SearchResult, error) {
	records := w.enricher.Enrich(ctx, stubs)

	items, err := w.pantry.List(ctx)
	if err != nil {
		common.LogWarn("庫存讀取失敗，略過排序", zap.Error(err))
		items = nil
	}
	records, ranked := pantry.Rank(records, items,
		func(r *Record) []string { return r.Ingredients },
		func(r *Record, p int) { r.MatchPercent = &p },
	)

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.gen.Load() != gen {
		common.LogDebug("搜尋已被取代", zap.String("query", query))
		return nil, ErrSuperseded
	}
	w.mergeFavoriteOverrides(ctx, records)
	w.query = query
	w.results = records
	w.ranked = ranked

	return &SearchResult{
		Query:   query,
		Recipes: copyRecords(records),
		Ranked:  ranked,
	}, nil
}

// reset 清空結果集（僅限最新世代）
func (w *Workspace) reset(gen uint64, query string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.gen.Load() != gen {
		return
	}
	w.query = query
	w.results = []Record{}
	w.ranked = false
}

// Results 目前結果集，依飲食條件篩選
func (w *Workspace) Results(filter DietFilter) SearchResult {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return SearchResult{
		Query:   w.query,
		Recipes: filter.Apply(w.results),
		Ranked:  w.ranked,
	}
}

// Favorites 收藏清單，依飲食條件篩選
func (w *Workspace) Favorites(ctx context.Context, filter DietFilter) ([]Record, error) {
	if w.favorites == nil {
		return []Record{}, nil
	}
	favs, err := w.favorites.List(ctx)
	if err != nil {
		return nil, err
	}
	return filter.Apply(favs), nil
}

// mergeFavoriteOverrides 將收藏中的覆寫帶入同 id 的結果（呼叫者須持有 w.mu）
func (w *Workspace) mergeFavoriteOverrides(ctx context.Context, records []Record) {
	if w.favorites == nil {
		return
	}
	favs, err := w.favorites.List(ctx)
	if err != nil {
		common.LogWarn("收藏讀取失敗，略過覆寫合併", zap.Error(err))
		return
	}
	for _, fav := range favs {
		if fav.Override.IsEmpty() {
			continue
		}
		for i := range records {
			if records[i].ID == fav.ID {
				records[i].Override = records[i].Override.Merge(fav.Override)
			}
		}
	}
}

// Details 查詢完整食譜；覆寫取自結果集，其次取自收藏
func (w *Workspace) Details(ctx context.Context, id string) (*Detail, error) {
	meal, err := w.catalog.Lookup(ctx, id)
	if err != nil {
		return nil, err
	}

	r := FromStub(meal.Stub())
	r.Category = meal.Category
	r.Area = meal.Area
	r.ApplyTags(meal.IngredientLines())

	found := false
	w.mu.RLock()
	for _, existing := range w.results {
		if existing.ID == id {
			r.Override = existing.Override
			r.MatchPercent = existing.MatchPercent
			found = true
			break
		}
	}
	w.mu.RUnlock()

	if !found && w.favorites != nil {
		favs, err := w.favorites.List(ctx)
		if err != nil {
			return nil, err
		}
		for _, fav := range favs {
			if fav.ID == id {
				r.Override = fav.Override
				break
			}
		}
	}

	return &Detail{Meal: meal, Recipe: r, EffectiveTags: EffectiveTags(r)}, nil
}

// ApplyOverride 合併覆寫到結果集與收藏中所有同 id 的紀錄
//
// 找不到任何紀錄時不做任何事並回傳 false。
func (w *Workspace) ApplyOverride(ctx context.Context, id string, partial UserOverride) (bool, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	applied := ApplyOverrideTo(w.results, id, partial)
	if w.favorites != nil {
		favApplied, err := w.favorites.ApplyOverride(ctx, id, partial)
		if err != nil {
			return applied, err
		}
		applied = applied || favApplied
	}
	return applied, nil
}

// Categories 所有分類
func (w *Workspace) Categories(ctx context.Context) ([]string, error) {
	return w.catalog.ListCategories(ctx)
}

// Areas 所有地區
func (w *Workspace) Areas(ctx context.Context) ([]string, error) {
	return w.catalog.ListAreas(ctx)
}

func copyRecords(records []Record) []Record {
	out := make([]Record, len(records))
	copy(out, records)
	return out
}
