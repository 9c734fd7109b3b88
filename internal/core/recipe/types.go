// Package recipe 管理搜尋結果、標籤覆寫與食譜補全
package recipe

import (
	"errors"

	"recipe-finder/internal/core/mealdb"
	"recipe-finder/internal/core/tagging"
)

var (
	// ErrNoRecipes 搜尋沒有任何結果
	ErrNoRecipes = errors.New("recipe: no recipes found")
	// ErrSuperseded 搜尋已被較新的搜尋取代，結果不保存
	ErrSuperseded = errors.New("recipe: search superseded")
)

// NoResultsMessage 無結果時顯示的訊息
const NoResultsMessage = `No recipes found — try common ingredients like "chicken" or "rice", or a dish name (e.g. "arrabiata").`

// Record 已標記的食譜
type Record struct {
	ID           string             `json:"idMeal"`
	Name         string             `json:"strMeal"`
	Thumbnail    string             `json:"strMealThumb"`
	Category     string             `json:"strCategory,omitempty"`
	Area         string             `json:"strArea,omitempty"`
	Ingredients  []string           `json:"ingredientsList"`
	Tags         tagging.DietTagSet `json:"tags"`
	Tagged       bool               `json:"tagged"`
	Override     UserOverride       `json:"userOverride"`
	MatchPercent *int               `json:"matchPercent,omitempty"`
}

// FromStub 由精簡資料建立尚未標記的食譜
func FromStub(stub mealdb.MealStub) Record {
	return Record{
		ID:          stub.ID,
		Name:        stub.Name,
		Thumbnail:   stub.Thumbnail,
		Ingredients: []string{},
	}
}

// ApplyTags 以完整食材清單重新推導標籤
func (r *Record) ApplyTags(ingredients []string) {
	if ingredients == nil {
		ingredients = []string{}
	}
	r.Ingredients = ingredients
	r.Tags = tagging.TagFromIngredients(ingredients)
	r.Tagged = true
}

// derived 推導值；未知標籤為 false
func (r Record) derived(tag Tag) bool {
	switch tag {
	case TagVegetarian:
		return r.Tags.IsVegetarian
	case TagVegan:
		return r.Tags.IsVegan
	case TagGlutenFree:
		return r.Tags.IsGlutenFree
	}
	return false
}

// EffectiveTag 覆寫優先，否則為推導值
func EffectiveTag(r Record, tag Tag) bool {
	return r.Override.Get(tag).Resolve(r.derived(tag))
}

// EffectiveTags 三個標籤的實際值
func EffectiveTags(r Record) tagging.DietTagSet {
	return tagging.DietTagSet{
		IsVegetarian: EffectiveTag(r, TagVegetarian),
		IsVegan:      EffectiveTag(r, TagVegan),
		IsGlutenFree: EffectiveTag(r, TagGlutenFree),
	}
}

// ApplyOverrideTo 合併覆寫到指定 id 的所有紀錄，回傳是否有符合的紀錄
func ApplyOverrideTo(records []Record, id string, partial UserOverride) bool {
	found := false
	for i := range records {
		if records[i].ID == id {
			records[i].Override = records[i].Override.Merge(partial)
			found = true
		}
	}
	return found
}

// DietFilter 飲食篩選條件
type DietFilter struct {
	Vegetarian bool
	Vegan      bool
	GlutenFree bool
}

// Active 是否有任何篩選條件
func (f DietFilter) Active() bool {
	return f.Vegetarian || f.Vegan || f.GlutenFree
}

// Match 依實際標籤判斷是否符合
func (f DietFilter) Match(r Record) bool {
	if f.Vegetarian && !EffectiveTag(r, TagVegetarian) {
		return false
	}
	if f.Vegan && !EffectiveTag(r, TagVegan) {
		return false
	}
	if f.GlutenFree && !EffectiveTag(r, TagGlutenFree) {
		return false
	}
	return true
}

// Apply 篩選並回傳新的切片
func (f DietFilter) Apply(records []Record) []Record {
	out := make([]Record, 0, len(records))
	for _, r := range records {
		if !f.Active() || f.Match(r) {
			out = append(out, r)
		}
	}
	return out
}
