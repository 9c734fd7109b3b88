package mealdb

import (
	"encoding/json"
	"fmt"
	"strings"
)

// MaxIngredientSlots 每道菜最多 20 組食材與份量
const MaxIngredientSlots = 20

// MealStub filter.php 回傳的精簡資料
type MealStub struct {
	ID        string `json:"idMeal"`
	Name      string `json:"strMeal"`
	Thumbnail string `json:"strMealThumb"`
}

// Meal lookup.php / search.php 回傳的完整資料
type Meal struct {
	ID           string
	Name         string
	Category     string
	Area         string
	Instructions string
	Thumbnail    string
	Tags         string
	YouTube      string
	Source       string
	Ingredients  [MaxIngredientSlots]string
	Measures     [MaxIngredientSlots]string
}

// mealFields 固定欄位對應
func (m *Meal) mealFields() map[string]*string {
	return map[string]*string{
		"idMeal":          &m.ID,
		"strMeal":         &m.Name,
		"strCategory":     &m.Category,
		"strArea":         &m.Area,
		"strInstructions": &m.Instructions,
		"strMealThumb":    &m.Thumbnail,
		"strTags":         &m.Tags,
		"strYoutube":      &m.YouTube,
		"strSource":       &m.Source,
	}
}

// UnmarshalJSON 解析編號欄位 strIngredientN / strMeasureN，null 視為空字串
func (m *Meal) UnmarshalJSON(data []byte) error {
	var raw map[string]*string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("failed to parse meal: %w", err)
	}

	value := func(key string) string {
		if v, ok := raw[key]; ok && v != nil {
			return *v
		}
		return ""
	}

	*m = Meal{}
	for key, field := range m.mealFields() {
		*field = value(key)
	}
	for i := 0; i < MaxIngredientSlots; i++ {
		m.Ingredients[i] = value(fmt.Sprintf("strIngredient%d", i+1))
		m.Measures[i] = value(fmt.Sprintf("strMeasure%d", i+1))
	}
	return nil
}

// MarshalJSON 輸出與來源相同的欄位格式
func (m Meal) MarshalJSON() ([]byte, error) {
	out := make(map[string]string, 9+2*MaxIngredientSlots)
	for key, field := range m.mealFields() {
		out[key] = *field
	}
	for i := 0; i < MaxIngredientSlots; i++ {
		out[fmt.Sprintf("strIngredient%d", i+1)] = m.Ingredients[i]
		out[fmt.Sprintf("strMeasure%d", i+1)] = m.Measures[i]
	}
	return json.Marshal(out)
}

// IngredientLines 依序組出 "{份量} {食材}"，跳過食材名稱空白的欄位
func (m *Meal) IngredientLines() []string {
	lines := make([]string, 0, MaxIngredientSlots)
	for i := 0; i < MaxIngredientSlots; i++ {
		ing := m.Ingredients[i]
		if strings.TrimSpace(ing) == "" {
			continue
		}
		lines = append(lines, strings.TrimSpace(m.Measures[i]+" "+ing))
	}
	return lines
}

// Stub 轉為精簡資料
func (m *Meal) Stub() MealStub {
	return MealStub{ID: m.ID, Name: m.Name, Thumbnail: m.Thumbnail}
}
