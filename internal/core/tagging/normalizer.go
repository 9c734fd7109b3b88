package tagging

import (
	"regexp"
	"strings"
)

var (
	parenPattern  = regexp.MustCompile(`\(.*?\)`)
	numberPattern = regexp.MustCompile(`\d+/\d+|\d+`)

	// 單位字，必須是完整單字
	unitPattern     = regexp.MustCompile(`\b(tbsps?|tbsp|tsp|teaspoons?|tablespoons?|cups?|kg|g|grams?|oz|ounce|ounces|ml|l|pinch|clove|cloves|slice|slices|strip|strips|can|cans|package|packages|stick|sticks)\b`)
	nonAlphaPattern = regexp.MustCompile(`[^a-z\s]`)
)

// Normalize 將單一食材字串轉為標準化文字
//
// 步驟依序為：小寫、移除括號內容、移除數字與分數、移除單位字、
// 移除非字母字元、合併空白，最後做一次單數化（不連續套用）。
func Normalize(phrase string) string {
	if phrase == "" {
		return ""
	}

	t := strings.ToLower(phrase)
	t = parenPattern.ReplaceAllString(t, " ")
	t = numberPattern.ReplaceAllString(t, " ")
	t = unitPattern.ReplaceAllString(t, " ")
	t = nonAlphaPattern.ReplaceAllString(t, " ")
	t = collapse(t)

	return singularize(t)
}

// Tokens 回傳標準化後長度大於 1 的單字
func Tokens(phrase string) []string {
	n := Normalize(phrase)
	if n == "" {
		return nil
	}

	tokens := make([]string, 0, 4)
	for _, w := range strings.Split(n, " ") {
		if len(w) > 1 {
			tokens = append(tokens, w)
		}
	}
	return tokens
}

// singularize 只處理整段文字的結尾，"potatoes" 會變成 "potatoe"
func singularize(t string) string {
	switch {
	case strings.HasSuffix(t, "ies"):
		return strings.TrimSuffix(t, "ies") + "y"
	case strings.HasSuffix(t, "ses"):
		return strings.TrimSuffix(t, "ses") + "s"
	case strings.HasSuffix(t, "s"):
		return t[:len(t)-1]
	}
	return t
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
