// Package history 記錄最近搜尋與使用者行為，並產生個人化推薦
package history

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"recipe-finder/internal/pkg/common"
	"recipe-finder/internal/storage"

	"go.uber.org/zap"
)

const (
	maxRecentSearches  = 8
	maxHistorySearches = 50
)

// Action 使用者行為類型
type Action string

const (
	ActionSearch        Action = "search"
	ActionFavorite      Action = "favorite"
	ActionDietaryFilter Action = "dietaryFilter"
	ActionCategory      Action = "category"
	ActionArea          Action = "area"
)

// 飲食偏好名稱
const (
	DietVegetarian = "vegetarian"
	DietVegan      = "vegan"
	DietGlutenFree = "glutenFree"
)

// ErrUnknownAction 未知的行為類型
var ErrUnknownAction = errors.New("history: unknown action")

// DietaryPreferences 篩選條件使用次數
type DietaryPreferences struct {
	Vegetarian int `json:"vegetarian"`
	Vegan      int `json:"vegan"`
	GlutenFree int `json:"glutenFree"`
}

// UserHistory 使用者行為紀錄
type UserHistory struct {
	Searches           []string           `json:"searches"`
	FavoriteCount      int                `json:"favoriteCount"`
	DietaryPreferences DietaryPreferences `json:"dietaryPreferences"`
	Categories         map[string]int     `json:"categories"`
	Areas              map[string]int     `json:"areas"`
	LastUpdated        int64              `json:"lastUpdated"` // Unix 毫秒
}

// Recommendations 推薦摘要
type Recommendations struct {
	TopSearches    []string `json:"topSearches"`
	TopCategories  []string `json:"topCategories"`
	TopAreas       []string `json:"topAreas"`
	PreferredDiets []string `json:"preferredDiets"`
	SearchCount    int      `json:"searchCount"`
	FavoritesCount int      `json:"favoritesCount"`
}

// Service 搜尋紀錄服務
type Service struct {
	store storage.Store
	now   func() time.Time
}

// NewService 創建搜尋紀錄服務
func NewService(store storage.Store) *Service {
	return &Service{store: store, now: time.Now}
}

// RecordSearch 將查詢放到最近搜尋的最前面（去重，最多 8 筆）
func (s *Service) RecordSearch(ctx context.Context, query string) ([]string, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return s.Recent(ctx)
	}

	recent, err := storage.UpdateJSON(ctx, s.store, storage.KeyRecentSearches, func(list *[]string) error {
		*list = common.PrependUnique(*list, query, maxRecentSearches)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to record search: %w", err)
	}
	return recent, nil
}

// Recent 最近搜尋
func (s *Service) Recent(ctx context.Context) ([]string, error) {
	var recent []string
	if _, err := storage.GetJSON(ctx, s.store, storage.KeyRecentSearches, &recent); err != nil {
		return nil, fmt.Errorf("failed to load recent searches: %w", err)
	}
	if recent == nil {
		recent = []string{}
	}
	return recent, nil
}

// Track 記錄一次使用者行為
func (s *Service) Track(ctx context.Context, action Action, data string) error {
	switch action {
	case ActionSearch, ActionFavorite, ActionDietaryFilter, ActionCategory, ActionArea:
	default:
		return fmt.Errorf("%w: %s", ErrUnknownAction, action)
	}

	_, err := storage.UpdateJSON(ctx, s.store, storage.KeyUserHistory, func(h *UserHistory) error {
		h.ensure()
		switch action {
		case ActionSearch:
			h.Searches = common.PrependUnique(h.Searches, data, maxHistorySearches)
		case ActionFavorite:
			h.FavoriteCount++
		case ActionDietaryFilter:
			h.DietaryPreferences.increment(data)
		case ActionCategory:
			h.Categories[data]++
		case ActionArea:
			h.Areas[data]++
		}
		h.LastUpdated = s.now().UnixMilli()
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to track %s: %w", action, err)
	}
	return nil
}

// TrackQuietly 記錄行為，失敗只寫日誌
func (s *Service) TrackQuietly(ctx context.Context, action Action, data string) {
	if err := s.Track(ctx, action, data); err != nil {
		common.LogWarn("Error tracking user action",
			zap.String("action", string(action)),
			zap.Error(err),
		)
	}
}

// History 讀取紀錄，不存在時回傳 nil
func (s *Service) History(ctx context.Context) (*UserHistory, error) {
	var h UserHistory
	found, err := storage.GetJSON(ctx, s.store, storage.KeyUserHistory, &h)
	if err != nil {
		return nil, fmt.Errorf("failed to load user history: %w", err)
	}
	if !found {
		return nil, nil
	}
	h.ensure()
	return &h, nil
}

// Recommendations 沒有任何搜尋紀錄時回傳 nil
func (s *Service) Recommendations(ctx context.Context) (*Recommendations, error) {
	h, err := s.History(ctx)
	if err != nil {
		return nil, err
	}
	return recommend(h), nil
}

// PersonalizedMessage 依紀錄產生提示文字
func (s *Service) PersonalizedMessage(ctx context.Context) (string, error) {
	h, err := s.History(ctx)
	if err != nil {
		return "", err
	}
	return personalizedMessage(h), nil
}

// Clear 清除使用者行為紀錄與最近搜尋
func (s *Service) Clear(ctx context.Context) error {
	for _, key := range []string{storage.KeyUserHistory, storage.KeyRecentSearches} {
		if err := s.store.Delete(ctx, key); err != nil {
			return fmt.Errorf("failed to clear %s: %w", key, err)
		}
	}
	return nil
}

func recommend(h *UserHistory) *Recommendations {
	if h == nil || len(h.Searches) == 0 {
		return nil
	}

	return &Recommendations{
		TopSearches:    head(h.Searches, 5),
		TopCategories:  head(rankCounts(h.Categories), 3),
		TopAreas:       head(rankCounts(h.Areas), 3),
		PreferredDiets: h.DietaryPreferences.preferred(),
		SearchCount:    len(h.Searches),
		FavoritesCount: h.FavoriteCount,
	}
}

func personalizedMessage(h *UserHistory) string {
	if h == nil {
		return "Start searching to get personalized recommendations!"
	}

	if len(h.Searches) < 3 {
		return fmt.Sprintf("You've searched %d recipe. Keep exploring to unlock personalized recommendations!", len(h.Searches))
	}

	topSearch := h.Searches[0]
	stats := recommend(h)

	if h.DietaryPreferences.Vegan > 0 {
		return fmt.Sprintf("You seem to love vegan recipes! Try searching \"%s\" with vegan filter.", topSearch)
	}
	if h.DietaryPreferences.Vegetarian > 0 {
		return fmt.Sprintf("Vegetarian enthusiast? Explore \"%s\" with our vegetarian filter.", topSearch)
	}
	if len(stats.TopCategories) > 0 {
		return fmt.Sprintf("Based on your %s searches, you might enjoy exploring related recipes.", stats.TopCategories[0])
	}

	return fmt.Sprintf("You've explored %d recipes! Here are some recommendations based on your favorites.", stats.SearchCount)
}

func (h *UserHistory) ensure() {
	if h.Searches == nil {
		h.Searches = []string{}
	}
	if h.Categories == nil {
		h.Categories = map[string]int{}
	}
	if h.Areas == nil {
		h.Areas = map[string]int{}
	}
}

// increment 接受 "gluten-free" 與 "glutenFree" 兩種寫法
func (d *DietaryPreferences) increment(diet string) {
	switch strings.ToLower(strings.ReplaceAll(diet, "-", "")) {
	case "vegetarian":
		d.Vegetarian++
	case "vegan":
		d.Vegan++
	case "glutenfree":
		d.GlutenFree++
	}
}

// preferred 次數大於 0 的飲食偏好，依次數由高到低（同分維持固定順序）
func (d DietaryPreferences) preferred() []string {
	type diet struct {
		name  string
		count int
	}
	diets := []diet{
		{DietVegetarian, d.Vegetarian},
		{DietVegan, d.Vegan},
		{DietGlutenFree, d.GlutenFree},
	}
	sort.SliceStable(diets, func(i, j int) bool { return diets[i].count > diets[j].count })

	names := []string{}
	for _, dt := range diets {
		if dt.count > 0 {
			names = append(names, dt.name)
		}
	}
	return names
}

// rankCounts 依次數由高到低排序，同分依名稱排序
func rankCounts(counts map[string]int) []string {
	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if counts[names[i]] != counts[names[j]] {
			return counts[names[i]] > counts[names[j]]
		}
		return names[i] < names[j]
	})
	return names
}

func head(list []string, n int) []string {
	if len(list) > n {
		list = list[:n]
	}
	out := make([]string, len(list))
	copy(out, list)
	return out
}
