package detection

import (
	"math"
	"strings"
)

// Prediction 偵測模型輸出
type Prediction struct {
	Class string    `json:"class"`
	Score float64   `json:"score"`
	BBox  []float64 `json:"bbox,omitempty"`
}

// Ingredient 由圖片辨識出的食材
type Ingredient struct {
	Name       string `json:"name"`
	Confidence int    `json:"confidence"` // 百分比
	Label      string `json:"cocoLabel"`
}

// labelIngredients COCO 標籤對應的食材；空字串代表略過
var labelIngredients = map[string]string{
	"apple":        "apple",
	"banana":       "banana",
	"orange":       "orange",
	"broccoli":     "broccoli",
	"carrot":       "carrot",
	"hot dog":      "sausage",
	"pizza":        "flour",
	"donut":        "flour",
	"cake":         "flour",
	"sandwich":     "bread",
	"chicken":      "chicken",
	"cow":          "beef",
	"person":       "",
	"potted plant": "",
	"cup":          "",
	"chair":        "",
	"backpack":     "",
	"handbag":      "",
	"sports ball":  "",
	"bottle":       "",
	"wine glass":   "",
	"fork":         "",
	"knife":        "",
	"spoon":        "",
	"bowl":         "",
	"dining table": "",
}

var foodKeywords = []string{
	"food", "fruit", "vegetable", "meat", "fish", "bread", "cheese", "milk",
	"egg", "rice", "pasta", "sauce", "soup", "salad", "dessert", "drink",
	"herb", "spice", "grain", "seed", "nut", "bean", "lentil",
}

// MapPredictions 將高於門檻的預測轉為食材，依首次出現順序去重
func MapPredictions(preds []Prediction, threshold float64) []Ingredient {
	ingredients := make([]Ingredient, 0, len(preds))
	seen := make(map[string]bool)

	for _, p := range preds {
		if p.Score <= threshold {
			continue
		}

		label := strings.ToLower(p.Class)
		name, known := labelIngredients[label]
		if !known {
			if !isFoodLike(label) {
				continue
			}
			name = label
		}
		if name == "" || seen[name] {
			continue
		}

		seen[name] = true
		ingredients = append(ingredients, Ingredient{
			Name:       name,
			Confidence: int(math.Round(p.Score * 100)),
			Label:      label,
		})
	}
	return ingredients
}

// Names 取出食材名稱
func Names(ingredients []Ingredient) []string {
	names := make([]string, len(ingredients))
	for i, ing := range ingredients {
		names[i] = ing.Name
	}
	return names
}

func isFoodLike(label string) bool {
	for _, kw := range foodKeywords {
		if strings.Contains(label, kw) {
			return true
		}
	}
	return false
}
