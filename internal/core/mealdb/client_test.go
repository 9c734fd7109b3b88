package mealdb

import (
	"context"
	"encoding/json"
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

const lookupBody = `{"meals":[{
	"idMeal":"52772","strMeal":"Teriyaki Chicken Casserole","strCategory":"Chicken","strArea":"Japanese",
	"strMealThumb":"https://example.com/t.jpg","strInstructions":"Bake.",
	"strIngredient1":"soy sauce","strMeasure1":"3/4 cup",
	"strIngredient2":"water","strMeasure2":"1/2 cup",
	"strIngredient3":"","strMeasure3":"",
	"strIngredient4":"chicken breasts","strMeasure4":null,
	"strIngredient5":null,"strMeasure5":"1 tsp"
}]}`

func newTestServer(t *testing.T, lookups *int32) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		switch r.URL.Path {
		case "/lookup.php":
			atomic.AddInt32(lookups, 1)
			if q.Get("i") == "52772" {
				_, _ = w.Write([]byte(lookupBody))
				return
			}
			_, _ = w.Write([]byte(`{"meals":null}`))
		case "/filter.php":
			switch {
			case q.Get("i") == "chicken,rice":
				_, _ = w.Write([]byte(`{"meals":[{"idMeal":"1","strMeal":"A","strMealThumb":"a.jpg"},{"idMeal":"2","strMeal":"B","strMealThumb":"b.jpg"}]}`))
			case q.Get("c") == "Seafood":
				_, _ = w.Write([]byte(`{"meals":[{"idMeal":"3","strMeal":"C","strMealThumb":"c.jpg"}]}`))
			case q.Get("a") != "":
				_, _ = w.Write([]byte(`{"meals":"Invalid"}`))
			default:
				_, _ = w.Write([]byte(`{"meals":null}`))
			}
		case "/search.php":
			_, _ = w.Write([]byte(lookupBody))
		case "/list.php":
			if q.Get("c") == "list" {
				_, _ = w.Write([]byte(`{"meals":[{"strCategory":"Beef"},{"strCategory":"Vegan"}]}`))
				return
			}
			_, _ = w.Write([]byte(`{"meals":[{"strArea":"Indian"}]}`))
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
}

func newTestClient(url string, c *cache.Manager) *Client {
	return NewClient(config.MealDBConfig{BaseURL: url, Timeout: 5 * time.Second}, c)
}

func TestLookup(t *testing.T) {
	var lookups int32
	srv := newTestServer(t, &lookups)
	defer srv.Close()

	c := cache.NewManager("mealdb", config.CacheConfig{Enabled: true, MaxSize: 10, TTL: time.Minute})
	defer c.Close()
	client := newTestClient(srv.URL, c)

	meal, err := client.Lookup(context.Background(), "52772")
	require.NoError(t, err)
	assert.Equal(t, "Teriyaki Chicken Casserole", meal.Name)
	assert.Equal(t, "Japanese", meal.Area)
	assert.Equal(t, []string{"3/4 cup soy sauce", "1/2 cup water", "chicken breasts"}, meal.IngredientLines())

	// 第二次由快取取得
	_, err = client.Lookup(context.Background(), "52772")
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&lookups))

	_, err = client.Lookup(context.Background(), "0")
	assert.ErrorIs(t, err, ErrMealNotFound)
}

func TestFilters(t *testing.T) {
	var lookups int32
	srv := newTestServer(t, &lookups)
	defer srv.Close()
	client := newTestClient(srv.URL, nil)
	ctx := context.Background()

	stubs, err := client.FilterByIngredient(ctx, "chicken,rice")
	require.NoError(t, err)
	assert.Equal(t, []MealStub{{ID: "1", Name: "A", Thumbnail: "a.jpg"}, {ID: "2", Name: "B", Thumbnail: "b.jpg"}}, stubs)

	stubs, err = client.FilterByIngredient(ctx, "unobtainium")
	require.NoError(t, err)
	assert.Empty(t, stubs)

	stubs, err = client.FilterByCategory(ctx, "Seafood")
	require.NoError(t, err)
	assert.Len(t, stubs, 1)

	stubs, err = client.FilterByArea(ctx, "Nowhere")
	require.NoError(t, err)
	assert.Empty(t, stubs)

	meals, err := client.SearchByName(ctx, "teriyaki")
	require.NoError(t, err)
	require.Len(t, meals, 1)
	assert.Equal(t, MealStub{ID: "52772", Name: "Teriyaki Chicken Casserole", Thumbnail: "https://example.com/t.jpg"}, meals[0].Stub())

	categories, err := client.ListCategories(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Beef", "Vegan"}, categories)

	areas, err := client.ListAreas(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Indian"}, areas)
}

func TestUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL, nil).Lookup(context.Background(), "1")
	assert.ErrorIs(t, err, ErrUpstream)
}

func TestMealJSONRoundTripKeepsSlots(t *testing.T) {
	var meal Meal
	require.NoError(t, json.Unmarshal([]byte(`{"idMeal":"9","strIngredient20":"salt","strMeasure20":null}`), &meal))
	assert.Equal(t, "salt", meal.Ingredients[19])

	data, err := json.Marshal(meal)
	require.NoError(t, err)

	var raw map[string]string
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, "9", raw["idMeal"])
	assert.Equal(t, "salt", raw["strIngredient20"])
	assert.Equal(t, "", raw["strMeasure20"])
}
