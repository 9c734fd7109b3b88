// Package pantry 管理使用者的食材庫存並計算與食譜的符合度
package pantry

import (
	"math"
	"sort"
	"strings"
)

// normalizeItems 轉小寫並去除空白，忽略空字串
func normalizeItems(pantry []string) []string {
	items := make([]string, 0, len(pantry))
	for _, p := range pantry {
		p = strings.ToLower(strings.TrimSpace(p))
		if p != "" {
			items = append(items, p)
		}
	}
	return items
}

// MatchPercent 計算食材清單中有多少比例出現在庫存中（0..100）
//
// 比對使用原始食材字串（小寫）做子字串包含，不經過標準化。
func MatchPercent(pantry, phrases []string) int {
	return matchPercent(normalizeItems(pantry), phrases)
}

func matchPercent(items, phrases []string) int {
	matched := 0
	for _, phrase := range phrases {
		name := strings.ToLower(phrase)
		for _, item := range items {
			if strings.Contains(name, item) {
				matched++
				break
			}
		}
	}

	total := len(phrases)
	if total < 1 {
		total = 1
	}
	return int(math.Round(float64(matched) / float64(total) * 100))
}

// Rank 為每一筆計算符合度並依高到低穩定排序
//
// 庫存為空時不計算、不排序，回傳原順序的副本與 false。
func Rank[T any](records []T, pantry []string, ingredients func(*T) []string, setPercent func(*T, int)) ([]T, bool) {
	out := make([]T, len(records))
	copy(out, records)

	items := normalizeItems(pantry)
	if len(items) == 0 {
		return out, false
	}

	percents := make([]int, len(out))
	for i := range out {
		percents[i] = matchPercent(items, ingredients(&out[i]))
		setPercent(&out[i], percents[i])
	}

	idx := make([]int, len(out))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return percents[idx[a]] > percents[idx[b]]
	})

	ranked := make([]T, len(out))
	for i, j := range idx {
		ranked[i] = out[j]
	}
	return ranked, true
}
