package pantry

import (
	"context"
	"testing"

	"recipe-finder/internal/pkg/common"
	"recipe-finder/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchPercent(t *testing.T) {
	ingredients := []string{"1 tomato, chopped", "1 onion", "2 cloves garlic", "1 cup rice"}
	assert.Equal(t, 50, MatchPercent([]string{"tomato", "onion"}, ingredients))

	assert.Equal(t, 100, MatchPercent([]string{" Garlic ", "rice", "tomato", "onion"}, ingredients))
	assert.Equal(t, 0, MatchPercent([]string{"beef"}, ingredients))
	assert.Equal(t, 0, MatchPercent([]string{"beef"}, nil))
	// 1/8 = 12.5 四捨五入
	assert.Equal(t, 13, MatchPercent([]string{"salt"}, []string{"salt", "a", "b", "c", "d", "e", "f", "g"}))
	// 2/3 = 66.67
	assert.Equal(t, 67, MatchPercent([]string{"salt", "pepper"}, []string{"Salt", "black pepper", "oil"}))
	assert.Equal(t, 0, MatchPercent([]string{"", "  "}, ingredients))
}

type item struct {
	id          string
	ingredients []string
	percent     *int
}

func ingredientsOf(i *item) []string { return i.ingredients }
func setPercent(i *item, p int) { i.percent = &p }

func TestRank(t *testing.T) {
	records := []item{
		{id: "a", ingredients: []string{"beef", "salt"}},
		{id: "b", ingredients: []string{"tomato", "onion"}},
		{id: "c", ingredients: []string{"tomato", "beef"}},
		{id: "d", ingredients: []string{"onion", "rice"}},
	}

	ranked, ok := Rank(records, []string{"Tomato", "onion"}, ingredientsOf, setPercent)
	require.True(t, ok)

	ids := make([]string, len(ranked))
	for i, r := range ranked {
		ids[i] = r.id
	}
	// c 與 d 同分，維持原相對順序
	assert.Equal(t, []string{"b", "c", "d", "a"}, ids)
	assert.Equal(t, 100, *ranked[0].percent)
	assert.Equal(t, 0, *ranked[3].percent)

	// 原始切片不變
	assert.Nil(t, records[0].percent)
}

func TestRankEmptyPantry(t *testing.T) {
	records := []item{{id: "a"}, {id: "b"}}

	ranked, ok := Rank(records, nil, ingredientsOf, setPercent)
	assert.False(t, ok)
	assert.Equal(t, "a", ranked[0].id)
	assert.Nil(t, ranked[0].percent)
}

func TestServiceAddRemove(t *testing.T) {
	ctx := context.Background()
	svc := NewService(storage.NewMemoryStore())

	items, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, items)

	_, err = svc.Add(ctx, "  Tomato ")
	require.NoError(t, err)
	_, err = svc.Add(ctx, "ＯＮＩＯＮ")
	require.NoError(t, err)
	items, err = svc.Add(ctx, "tomato")
	require.NoError(t, err)
	assert.Equal(t, []string{"onion", "tomato"}, items)

	_, err = svc.Add(ctx, "   ")
	assert.True(t, common.IsValidationError(err))

	items, err = svc.Remove(ctx, "TOMATO")
	require.NoError(t, err)
	assert.Equal(t, []string{"onion"}, items)

	require.NoError(t, svc.Clear(ctx))
	items, err = svc.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestQuery(t *testing.T) {
	assert.Equal(t, "onion,tomato", Query([]string{"onion", "tomato"}))
}
