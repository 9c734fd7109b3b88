// Package nutrition 以 USDA FoodData Central 估算食材與食譜的營養成分
package nutrition

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"

	"recipe-finder/internal/core/cache"
	"recipe-finder/internal/infrastructure/config"
	"recipe-finder/internal/pkg/common"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// ErrNoNutritionData 查無營養資料
var ErrNoNutritionData = errors.New("nutrition: no data")

// USDA 營養素代碼
const (
	nutrientEnergy   = 1008 // kcal
	nutrientProtein  = 1003 // g
	nutrientCarbs    = 1005 // g
	nutrientFat      = 1004 // g
	nutrientFiber    = 1079 // g
	nutrientSugar    = 2000 // g
	nutrientCalcium  = 1087 // mg
	nutrientIron     = 1089 // mg
	nutrientSodium   = 1093 // mg
	nutrientVitaminC = 1162 // mg
	nutrientVitaminA = 1104 // mcg
)

const standardServing = "100g (standard serving)"

// Facts 單一食材每 100g 的營養成分
type Facts struct {
	FoodName string  `json:"foodName"`
	Serving  string  `json:"serving"`
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
	Fiber    float64 `json:"fiber"`
	Sugar    float64 `json:"sugar"`
	Calcium  float64 `json:"calcium"`
	Iron     float64 `json:"iron"`
	Sodium   float64 `json:"sodium"`
	VitaminC float64 `json:"vitaminC"`
	VitaminA float64 `json:"vitaminA"`
}

// Estimate 食譜營養估算
type Estimate struct {
	EstimatedCalories   int     `json:"estimatedCalories"`
	EstimatedProtein    float64 `json:"estimatedProtein"`
	EstimatedCarbs      float64 `json:"estimatedCarbs"`
	EstimatedFat        float64 `json:"estimatedFat"`
	IngredientsAnalyzed int     `json:"ingredientsAnalyzed"`
}

// Service 營養查詢服務
type Service struct {
	client         *resty.Client
	cache          *cache.Manager
	apiKey         string
	maxIngredients int
}

// NewService 創建營養查詢服務，快取由服務持有
func NewService(cfg config.NutritionConfig, c *cache.Manager) *Service {
	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetHeader("Accept", "application/json")

	maxIngredients := cfg.MaxIngredients
	if maxIngredients <= 0 {
		maxIngredients = 15
	}

	return &Service{
		client:         client,
		cache:          c,
		apiKey:         cfg.APIKey,
		maxIngredients: maxIngredients,
	}
}

// Search 查詢單一食材，結果以小寫食材名稱快取
func (s *Service) Search(ctx context.Context, ingredient string) (*Facts, error) {
	key := strings.ToLower(strings.TrimSpace(ingredient))
	if key == "" {
		return nil, ErrNoNutritionData
	}

	if v, ok := s.cache.Get(key); ok {
		if facts, ok := v.(Facts); ok {
			return &facts, nil
		}
	}

	params := map[string]string{
		"query":    ingredient,
		"pageSize": "1",
	}
	if s.apiKey != "" {
		params["api_key"] = s.apiKey
	}

	start := time.Now()
	resp, err := s.client.R().
		SetContext(ctx).
		SetQueryParams(params).
		Get("/foods/search")
	common.LogUpstreamCall("usda", "/foods/search", time.Since(start), err)

	if err != nil {
		return nil, fmt.Errorf("failed to send request to usda: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("usda returned status %d", resp.StatusCode())
	}

	var result searchResponse
	if err := common.ParseJSONBytes(resp.Body(), &result); err != nil {
		return nil, fmt.Errorf("failed to parse usda response: %w", err)
	}
	if len(result.Foods) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoNutritionData, ingredient)
	}

	facts := result.Foods[0].facts()
	s.cache.Put(key, facts)
	return &facts, nil
}

// Estimate 估算整份食譜的營養，只分析前 maxIngredients 項，再依成功比例放大
func (s *Service) Estimate(ctx context.Context, ingredients []string) (*Estimate, error) {
	if len(ingredients) == 0 {
		return nil, ErrNoNutritionData
	}

	limited := ingredients
	if len(limited) > s.maxIngredients {
		limited = limited[:s.maxIngredients]
	}

	var calories, protein, carbs, fat float64
	success := 0
	for _, ingredient := range limited {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		facts, err := s.Search(ctx, ingredient)
		if err != nil {
			common.LogDebug("營養資料查詢失敗", zap.String("ingredient", ingredient), zap.Error(err))
			continue
		}
		calories += facts.Calories
		protein += facts.Protein
		carbs += facts.Carbs
		fat += facts.Fat
		success++
	}

	if success == 0 {
		return nil, ErrNoNutritionData
	}

	n := float64(success)
	factor := float64(len(ingredients)) / n
	return &Estimate{
		EstimatedCalories:   int(math.Round(calories / n * factor)),
		EstimatedProtein:    round1(protein / n * factor),
		EstimatedCarbs:      round1(carbs / n * factor),
		EstimatedFat:        round1(fat / n * factor),
		IngredientsAnalyzed: success,
	}, nil
}

// ClearCache 清空營養資料快取
func (s *Service) ClearCache() {
	s.cache.Clear()
}

type searchResponse struct {
	Foods []food `json:"foods"`
}

type food struct {
	Description   string         `json:"description"`
	FoodNutrients []foodNutrient `json:"foodNutrients"`
}

type foodNutrient struct {
	NutrientID int     `json:"nutrientId"`
	Value      float64 `json:"value"`
}

func (f food) nutrient(id int) float64 {
	for _, n := range f.FoodNutrients {
		if n.NutrientID == id {
			return round1(n.Value)
		}
	}
	return 0
}

func (f food) facts() Facts {
	return Facts{
		FoodName: f.Description,
		Serving:  standardServing,
		Calories: f.nutrient(nutrientEnergy),
		Protein:  f.nutrient(nutrientProtein),
		Carbs:    f.nutrient(nutrientCarbs),
		Fat:      f.nutrient(nutrientFat),
		Fiber:    f.nutrient(nutrientFiber),
		Sugar:    f.nutrient(nutrientSugar),
		Calcium:  f.nutrient(nutrientCalcium),
		Iron:     f.nutrient(nutrientIron),
		Sodium:   f.nutrient(nutrientSodium),
		VitaminC: f.nutrient(nutrientVitaminC),
		VitaminA: f.nutrient(nutrientVitaminA),
	}
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
