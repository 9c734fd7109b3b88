package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"recipe-finder/internal/core/detection"
	"recipe-finder/internal/core/favorites"
	"recipe-finder/internal/core/history"
	"recipe-finder/internal/core/mealdb"
	"recipe-finder/internal/core/nutrition"
	"recipe-finder/internal/core/pantry"
	"recipe-finder/internal/core/recipe"
	"recipe-finder/internal/infrastructure/config"
	"recipe-finder/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const stewLookup = `{"meals":[{"idMeal":"100","strMeal":"Beef Stew","strMealThumb":"stew.jpg",
	"strCategory":"Beef","strArea":"British",
	"strIngredient1":"beef","strMeasure1":"1kg",
	"strIngredient2":"plain flour","strMeasure2":"2 tbsp"}]}`

func newMealDBServer() *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		switch r.URL.Path {
		case "/filter.php":
			if q.Get("i") == "beef" {
				_, _ = w.Write([]byte(`{"meals":[{"idMeal":"100","strMeal":"Beef Stew","strMealThumb":"stew.jpg"}]}`))
				return
			}
			_, _ = w.Write([]byte(`{"meals":null}`))
		case "/search.php":
			_, _ = w.Write([]byte(`{"meals":null}`))
		case "/lookup.php":
			if q.Get("i") == "100" {
				_, _ = w.Write([]byte(stewLookup))
				return
			}
			_, _ = w.Write([]byte(`{"meals":null}`))
		case "/list.php":
			_, _ = w.Write([]byte(`{"meals":[{"strCategory":"Beef"}]}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
}

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	upstream := newMealDBServer()
	t.Cleanup(upstream.Close)

	cfg := &config.Config{
		App:         config.AppConfig{Debug: true, Version: "test"},
		Server:      config.ServerConfig{RequestTimeout: 5 * time.Second, MaxBodyBytes: 1 << 20},
		MealDB:      config.MealDBConfig{BaseURL: upstream.URL, Timeout: 2 * time.Second},
		Storage:     config.StorageConfig{Driver: "memory"},
		DedupWindow: time.Millisecond,
	}

	store := storage.NewMemoryStore()
	client := mealdb.NewClient(cfg.MealDB, nil)
	enricher := recipe.NewEnricher(client, 40, 4, 2*time.Second)
	historySvc := history.NewService(store)
	pantrySvc := pantry.NewService(store)
	favoritesSvc := favorites.NewService(store, enricher, historySvc)

	router, cleanup, err := SetupRouter(cfg, &Services{
		Store:     store,
		Workspace: recipe.NewWorkspace(client, enricher, pantrySvc, historySvc, favoritesSvc),
		Favorites: favoritesSvc,
		Pantry:    pantrySvc,
		History:   historySvc,
		Nutrition: nutrition.NewService(cfg.Nutrition, nil),
		Detection: detection.NewService(cfg.Detection),
	})
	require.NoError(t, err)
	t.Cleanup(cleanup)
	return router
}

func do(t *testing.T, router http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v))
}

func TestHealthRoutes(t *testing.T) {
	router := newTestRouter(t)

	for _, path := range []string{"/health", "/ready", "/live"} {
		w := do(t, router, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusOK, w.Code, path)
	}
	assert.NotEmpty(t, do(t, router, http.MethodGet, "/live", nil).Header().Get("X-Request-ID"))
}

func TestTagsAndMatch(t *testing.T) {
	router := newTestRouter(t)

	w := do(t, router, http.MethodPost, "/api/v1/tags", gin.H{
		"ingredients": []string{"2 cups Plain Flour", "1 tsp Baking Powder", "Butter"},
	})
	require.Equal(t, http.StatusOK, w.Code)
	var analysis struct {
		Tags struct {
			IsVegetarian bool `json:"isVegetarian"`
			IsVegan      bool `json:"isVegan"`
			IsGlutenFree bool `json:"isGlutenFree"`
		} `json:"tags"`
	}
	decode(t, w, &analysis)
	assert.True(t, analysis.Tags.IsVegetarian)
	assert.False(t, analysis.Tags.IsVegan)
	assert.False(t, analysis.Tags.IsGlutenFree)

	w = do(t, router, http.MethodPost, "/api/v1/pantry/match", gin.H{
		"pantry":      []string{"flour", "egg"},
		"ingredients": []string{"200g plain flour", "2 eggs", "100ml milk", "1 tbsp sugar"},
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"match_percent":50}`, w.Body.String())
}

func TestSearchOverrideAndFilter(t *testing.T) {
	router := newTestRouter(t)

	w := do(t, router, http.MethodGet, "/api/v1/recipes/search?q=beef", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var res recipe.SearchResult
	decode(t, w, &res)
	require.Len(t, res.Recipes, 1)
	assert.Equal(t, []string{"1kg beef", "2 tbsp plain flour"}, res.Recipes[0].Ingredients)
	assert.False(t, res.Recipes[0].Tags.IsVegetarian)

	w = do(t, router, http.MethodGet, "/api/v1/recipes?vegetarian=true", nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &res)
	assert.Empty(t, res.Recipes)

	w = do(t, router, http.MethodPatch, "/api/v1/recipes/100/override", gin.H{"isVegetarian": true})
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"idMeal":"100","applied":true}`, w.Body.String())

	w = do(t, router, http.MethodGet, "/api/v1/recipes?vegetarian=true", nil)
	decode(t, w, &res)
	assert.Len(t, res.Recipes, 1)

	w = do(t, router, http.MethodPatch, "/api/v1/recipes/100/override", gin.H{"isVegan": "1"})
	require.Equal(t, http.StatusOK, w.Code)
	w = do(t, router, http.MethodGet, "/api/v1/recipes?vegan=true", nil)
	decode(t, w, &res)
	assert.Len(t, res.Recipes, 1)

	w = do(t, router, http.MethodPatch, "/api/v1/recipes/100/override", gin.H{"isKeto": true})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "UNKNOWN_TAG")

	w = do(t, router, http.MethodGet, "/api/v1/recipes?vegan=maybe", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSearchNoResults(t *testing.T) {
	router := newTestRouter(t)

	w := do(t, router, http.MethodGet, "/api/v1/recipes/search?q=biriyani", nil)
	require.Equal(t, http.StatusNotFound, w.Code)

	var body struct {
		Error       string             `json:"error"`
		Code        string             `json:"code"`
		Suggestions recipe.Suggestions `json:"suggestions"`
	}
	decode(t, w, &body)
	assert.Equal(t, recipe.NoResultsMessage, body.Error)
	assert.Equal(t, "NO_RECIPES", body.Code)
	assert.Equal(t, []string{"biryani"}, body.Suggestions.Alternates)
	assert.Equal(t, []string{"rice", "chicken"}, body.Suggestions.Ingredients)
}

func TestCollections(t *testing.T) {
	router := newTestRouter(t)

	w := do(t, router, http.MethodPost, "/api/v1/pantry", gin.H{"item": "  Beef "})
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"items":["beef"]}`, w.Body.String())

	w = do(t, router, http.MethodPost, "/api/v1/pantry/search", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var res recipe.SearchResult
	decode(t, w, &res)
	assert.True(t, res.Ranked)
	require.NotNil(t, res.Recipes[0].MatchPercent)
	assert.Equal(t, 50, *res.Recipes[0].MatchPercent)

	w = do(t, router, http.MethodPost, "/api/v1/favorites", gin.H{"idMeal": "100", "strMeal": "Beef Stew"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"added":true`)

	w = do(t, router, http.MethodPost, "/api/v1/favorites/enrich", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"enriched":1`)

	w = do(t, router, http.MethodGet, "/api/v1/favorites?gluten_free=true", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"favorites":[]}`, w.Body.String())

	w = do(t, router, http.MethodGet, "/api/v1/history/recent", nil)
	assert.JSONEq(t, `{"searches":["beef"]}`, w.Body.String())

	w = do(t, router, http.MethodDelete, "/api/v1/history", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = do(t, router, http.MethodDelete, "/api/v1/favorites/100", nil)
	assert.JSONEq(t, `{"favorites":[]}`, w.Body.String())
}

func TestDetectDisabled(t *testing.T) {
	router := newTestRouter(t)

	w := do(t, router, http.MethodPost, "/api/v1/detect", gin.H{"image": "data:image/png;base64,AAAA"})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "DETECTOR_DISABLED")

	w = do(t, router, http.MethodPost, "/api/v1/detect/labels", gin.H{
		"predictions": []gin.H{{"class": "banana", "score": 0.9}, {"class": "person", "score": 0.99}},
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"ingredients":[{"name":"banana","confidence":90,"cocoLabel":"banana"}]}`, w.Body.String())
}
