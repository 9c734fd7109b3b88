package nutrition

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"recipe-finder/internal/core/cache"
	"recipe-finder/internal/infrastructure/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUSDAServer(t *testing.T, calls *int32) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(calls, 1)
		assert.Equal(t, "/foods/search", r.URL.Path)
		assert.Equal(t, "1", r.URL.Query().Get("pageSize"))

		switch r.URL.Query().Get("query") {
		case "apple":
			_, _ = w.Write([]byte(`{"foods":[{"description":"Apples, raw","foodNutrients":[
				{"nutrientId":1008,"value":52.04},{"nutrientId":1003,"value":0.26},
				{"nutrientId":1005,"value":13.81},{"nutrientId":1004,"value":0.17},
				{"nutrientId":1162,"value":4.6}]}]}`))
		case "butter":
			_, _ = w.Write([]byte(`{"foods":[{"description":"Butter","foodNutrients":[
				{"nutrientId":1008,"value":717},{"nutrientId":1004,"value":81.1}]}]}`))
		default:
			_, _ = w.Write([]byte(`{"foods":[]}`))
		}
	}))
}

func newTestService(url string) *Service {
	c := cache.NewManager("nutrition", config.CacheConfig{Enabled: true, MaxSize: 100, TTL: time.Hour})
	return NewService(config.NutritionConfig{BaseURL: url, Timeout: 5 * time.Second, MaxIngredients: 2}, c)
}

func TestSearch(t *testing.T) {
	var calls int32
	srv := newUSDAServer(t, &calls)
	defer srv.Close()
	svc := newTestService(srv.URL)

	facts, err := svc.Search(context.Background(), "apple")
	require.NoError(t, err)
	assert.Equal(t, "Apples, raw", facts.FoodName)
	assert.Equal(t, 52.0, facts.Calories)
	assert.Equal(t, 0.3, facts.Protein)
	assert.Equal(t, 4.6, facts.VitaminC)
	assert.Equal(t, 0.0, facts.Iron)
	assert.Equal(t, standardServing, facts.Serving)

	// 大小寫與空白不同仍命中快取
	before := atomic.LoadInt32(&calls)
	_, err = svc.Search(context.Background(), " APPLE ")
	require.NoError(t, err)
	assert.Equal(t, before, atomic.LoadInt32(&calls))

	svc.ClearCache()
	_, err = svc.Search(context.Background(), "apple")
	require.NoError(t, err)
	assert.Equal(t, before+1, atomic.LoadInt32(&calls))

	_, err = svc.Search(context.Background(), "  ")
	assert.ErrorIs(t, err, ErrNoNutritionData)
}

func TestEstimate(t *testing.T) {
	var calls int32
	srv := newUSDAServer(t, &calls)
	defer srv.Close()
	svc := newTestService(srv.URL)

	// 只分析前兩項；一項成功，放大倍率為 3/1
	est, err := svc.Estimate(context.Background(), []string{"apple", "mystery", "butter"})
	require.NoError(t, err)
	assert.Equal(t, 1, est.IngredientsAnalyzed)
	assert.Equal(t, 156, est.EstimatedCalories)
	assert.Equal(t, 0.9, est.EstimatedProtein)
	assert.Equal(t, 41.4, est.EstimatedCarbs)

	_, err = svc.Estimate(context.Background(), []string{"mystery"})
	assert.ErrorIs(t, err, ErrNoNutritionData)

	_, err = svc.Estimate(context.Background(), nil)
	assert.ErrorIs(t, err, ErrNoNutritionData)
}
