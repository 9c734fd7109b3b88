// Package tagging 由食材清單推導素食、全素、無麩質標籤
//
// 所有函式皆為純函式，可同時於多個 goroutine 使用。
package tagging

import "strings"

// Analysis 標籤分析結果，包含中間文字方便除錯
type Analysis struct {
	Normalized string     `json:"normalized"`
	Aliased    string     `json:"aliased"`
	Signals    Signals    `json:"signals"`
	Tags       DietTagSet `json:"tags"`
}

// Analyze 執行完整流程：標準化 → 同義詞 → 停用字 → 分類
func Analyze(phrases []string) Analysis {
	normalized := make([]string, len(phrases))
	for i, p := range phrases {
		normalized[i] = Normalize(p)
	}

	joined := strings.Join(normalized, " ")
	aliased := ApplyAliases(joined)
	signals := Detect(aliased)

	return Analysis{
		Normalized: joined,
		Aliased:    aliased,
		Signals:    signals,
		Tags:       signals.Tags(),
	}
}

// TagFromIngredients 由食材清單推導標籤，空清單回傳 Neutral()
func TagFromIngredients(phrases []string) DietTagSet {
	if len(phrases) == 0 {
		return Neutral()
	}
	return Analyze(phrases).Tags
}
