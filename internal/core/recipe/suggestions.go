package recipe

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	maxAlternates           = 3
	maxIngredientSuggestion = 4
)

// spellingMap 常見菜名拼法
var spellingMap = map[string]string{
	"biriyani":     "biryani",
	"biryani":      "biryani",
	"briyani":      "biryani",
	"chiken":       "chicken",
	"chiken curry": "chicken curry",
}

var biryaniPattern = regexp.MustCompile(`(?i)biri|bry|biriy`)

// Suggestions 無結果時的替代搜尋
type Suggestions struct {
	Alternates  []string `json:"alternates"`
	Ingredients []string `json:"ingredients"`
}

// NoResultsError 搜尋沒有結果，附帶替代建議
type NoResultsError struct {
	Query       string
	Suggestions Suggestions
}

func (e *NoResultsError) Error() string {
	return fmt.Sprintf("no recipes found for %q", e.Query)
}

// Unwrap 讓 errors.Is(err, ErrNoRecipes) 成立
func (e *NoResultsError) Unwrap() error {
	return ErrNoRecipes
}

// Suggest 依拼法對照與簡單規則產生建議
func Suggest(query string) Suggestions {
	q := strings.ToLower(strings.TrimSpace(query))

	alternates := []string{}
	if alt, ok := spellingMap[q]; ok && q != "" && alt != q {
		alternates = append(alternates, alt)
	}

	var candidates []string
	if biryaniPattern.MatchString(q) {
		candidates = append(candidates, "rice", "chicken")
	} else {
		if fields := strings.Fields(q); len(fields) > 0 && utf8.RuneCountInString(fields[0]) > 2 {
			candidates = append(candidates, fields[0])
		}
		candidates = append(candidates, "rice", "chicken")
	}

	ingredients := make([]string, 0, maxIngredientSuggestion)
	seen := make(map[string]bool, len(candidates))
	for _, c := range candidates {
		if seen[c] || len(ingredients) == maxIngredientSuggestion {
			continue
		}
		seen[c] = true
		ingredients = append(ingredients, c)
	}

	if len(alternates) > maxAlternates {
		alternates = alternates[:maxAlternates]
	}
	return Suggestions{Alternates: alternates, Ingredients: ingredients}
}
