// Package mealdb 是 TheMealDB 相容 API 的客戶端
package mealdb

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"recipe-finder/internal/core/cache"
	"recipe-finder/internal/infrastructure/config"
	"recipe-finder/internal/pkg/common"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

var (
	// ErrMealNotFound 查無此食譜
	ErrMealNotFound = errors.New("mealdb: meal not found")
	// ErrUpstream 來源服務無法連線或回應非 200
	ErrUpstream = errors.New("mealdb: upstream error")
)

// Client MealDB 客戶端
type Client struct {
	client *resty.Client
	cache  *cache.Manager
}

// NewClient 創建 MealDB 客戶端，cache 可為 nil
func NewClient(cfg config.MealDBConfig, c *cache.Manager) *Client {
	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetHeader("Accept", "application/json")

	return &Client{
		client: client,
		cache:  c,
	}
}

// Lookup 取得完整食譜（lookup.php?i=）
func (c *Client) Lookup(ctx context.Context, id string) (*Meal, error) {
	key := "mealdb:lookup:" + id
	if v, ok := c.cache.Get(key); ok {
		if meal, ok := v.(Meal); ok {
			return &meal, nil
		}
	}

	var meals []Meal
	if err := c.get(ctx, "/lookup.php", map[string]string{"i": id}, &meals); err != nil {
		return nil, err
	}
	if len(meals) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrMealNotFound, id)
	}

	meal := meals[0]
	c.cache.Put(key, meal)
	return &meal, nil
}

// FilterByIngredient 依食材搜尋，多個食材以逗號分隔（filter.php?i=）
func (c *Client) FilterByIngredient(ctx context.Context, ingredients string) ([]MealStub, error) {
	return c.filter(ctx, "i", ingredients)
}

// FilterByCategory 依分類搜尋（filter.php?c=）
func (c *Client) FilterByCategory(ctx context.Context, category string) ([]MealStub, error) {
	return c.filter(ctx, "c", category)
}

// FilterByArea 依地區搜尋（filter.php?a=）
func (c *Client) FilterByArea(ctx context.Context, area string) ([]MealStub, error) {
	return c.filter(ctx, "a", area)
}

// SearchByName 依菜名搜尋（search.php?s=）
func (c *Client) SearchByName(ctx context.Context, name string) ([]Meal, error) {
	var meals []Meal
	if err := c.get(ctx, "/search.php", map[string]string{"s": name}, &meals); err != nil {
		return nil, err
	}
	return meals, nil
}

// ListCategories 列出所有分類（list.php?c=list）
func (c *Client) ListCategories(ctx context.Context) ([]string, error) {
	var rows []struct {
		Category string `json:"strCategory"`
	}
	if err := c.get(ctx, "/list.php", map[string]string{"c": "list"}, &rows); err != nil {
		return nil, err
	}

	names := make([]string, 0, len(rows))
	for _, r := range rows {
		names = append(names, r.Category)
	}
	return names, nil
}

// ListAreas 列出所有地區（list.php?a=list）
func (c *Client) ListAreas(ctx context.Context) ([]string, error) {
	var rows []struct {
		Area string `json:"strArea"`
	}
	if err := c.get(ctx, "/list.php", map[string]string{"a": "list"}, &rows); err != nil {
		return nil, err
	}

	names := make([]string, 0, len(rows))
	for _, r := range rows {
		names = append(names, r.Area)
	}
	return names, nil
}

func (c *Client) filter(ctx context.Context, param, value string) ([]MealStub, error) {
	var stubs []MealStub
	if err := c.get(ctx, "/filter.php", map[string]string{param: value}, &stubs); err != nil {
		return nil, err
	}
	return stubs, nil
}

// get 發送請求並解析 {"meals": [...]}；meals 為 null 或非陣列時視為空
func (c *Client) get(ctx context.Context, path string, params map[string]string, out interface{}) error {
	start := time.Now()
	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParams(params).
		Get(path)
	common.LogUpstreamCall("mealdb", path, time.Since(start), err)

	if err != nil {
		return fmt.Errorf("%w: failed to send request: %w", ErrUpstream, err)
	}

	if resp.StatusCode() != http.StatusOK {
		return fmt.Errorf("%w: %s returned %d", ErrUpstream, path, resp.StatusCode())
	}

	// 解析回應
	var envelope struct {
		Meals json.RawMessage `json:"meals"`
	}
	if err := common.ParseJSONBytes(resp.Body(), &envelope); err != nil {
		return fmt.Errorf("failed to parse mealdb response: %w", err)
	}

	body := bytes.TrimSpace(envelope.Meals)
	if len(body) == 0 || body[0] != '[' {
		common.LogDebug("mealdb 無結果", zap.String("path", path), zap.Any("params", params))
		return nil
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to parse mealdb meals: %w", err)
	}
	return nil
}
