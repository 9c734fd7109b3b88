package tagging

import "strings"

// alias 同義詞替換規則
type alias struct {
	from string
	to   string
}

// aliases 依宣告順序套用，後面的規則會看到前面規則的結果
var aliases = []alias{
	{"veg stock", "vegetable stock"},
	{"vegetable stock", "vegetable stock"},
	{"fish sauce", "fish"},
	{"soy sauce", "soy sauce"},
	{"light soy", "soy sauce"},
	{"dark soy", "soy sauce"},
	{"prawns", "shrimp"},
	{"shrimp paste", "shrimp"},
	{"scallions", "spring onion"},
	{"spring onions", "spring onion"},
	{"green onion", "spring onion"},
	{"chilies", "chili"},
	{"chilli", "chili"},
	{"chili flakes", "chili"},
	{"bell pepper", "pepper"},
	{"capsicum", "pepper"},
	{"cilantro", "coriander"},
	{"coriander leaves", "coriander"},
	{"cornflour", "cornstarch"},
	{"corn starch", "cornstarch"},
	{"cornstarch", "cornstarch"},
	{"mayonnaise", "egg"},
	{"anchovy paste", "anchovy"},
	{"worcestershire sauce", "anchovy"},
	{"bicarbonate of soda", "baking soda"},
	{"baking powder", "baking powder"},
	{"breadcrumbs", "breadcrumbs"},
	{"bread crumbs", "breadcrumbs"},
	{"plain flour", "flour"},
	{"all purpose flour", "flour"},
	{"self raising flour", "flour"},
}

// stopwords 描述性或單位字，依序移除
var stopwords = []string{
	"fresh", "dried", "minced", "chopped", "large", "small", "ground", "to", "taste", "optional", "slice", "slices",
	"finely", "roughly", "peeled", "seeded", "grated", "zest", "juice", "packed", "softened", "room", "temperature",
	"beaten", "divided", "halved", "trimmed", "rinsed", "drained", "drained and patted dry", "for serving", "garnish",
	"about", "approximately", "cup", "cups", "tbsp", "tsp", "tablespoon", "tablespoons", "teaspoon", "teaspoons",
}

// ApplyAliases 套用同義詞表，再移除停用字並合併空白
func ApplyAliases(text string) string {
	out := text
	for _, a := range aliases {
		out = replaceWord(out, a.from, a.to)
	}
	for _, w := range stopwords {
		out = replaceWord(out, w, " ")
	}
	return collapse(out)
}

// replaceWord 將所有完整單字（或片語）出現處替換為 repl
//
// 由左至右掃描、不重疊，邊界以原字串判斷。
func replaceWord(s, word, repl string) string {
	if word == "" || !strings.Contains(s, word) {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))

	last, i := 0, 0
	for i <= len(s)-len(word) {
		j := strings.Index(s[i:], word)
		if j < 0 {
			break
		}
		start := i + j
		end := start + len(word)
		if !isBoundary(s, start) || !isBoundary(s, end) {
			i = start + 1
			continue
		}
		b.WriteString(s[last:start])
		b.WriteString(repl)
		last, i = end, end
	}
	b.WriteString(s[last:])

	return b.String()
}

// containsWord 判斷 s 是否包含完整單字（或片語）
func containsWord(s, word string) bool {
	if word == "" {
		return false
	}
	for i := 0; i <= len(s)-len(word); {
		j := strings.Index(s[i:], word)
		if j < 0 {
			return false
		}
		start := i + j
		if isBoundary(s, start) && isBoundary(s, start+len(word)) {
			return true
		}
		i = start + 1
	}
	return false
}

// isBoundary ASCII 單字邊界，與 [A-Za-z0-9_] 的 \b 相同
func isBoundary(s string, pos int) bool {
	before := pos > 0 && isWordByte(s[pos-1])
	after := pos < len(s) && isWordByte(s[pos])
	return before != after
}

func isWordByte(c byte) bool {
	return c == '_' ||
		('a' <= c && c <= 'z') ||
		('A' <= c && c <= 'Z') ||
		('0' <= c && c <= '9')
}
