package tagging

// DietTagSet 飲食標籤
type DietTagSet struct {
	IsVegetarian bool `json:"isVegetarian"`
	IsVegan      bool `json:"isVegan"`
	IsGlutenFree bool `json:"isGlutenFree"`
}

// Signals 分類器偵測到的關鍵字類別
type Signals struct {
	HasMeat   bool `json:"hasMeat"`
	HasDairy  bool `json:"hasDairy"`
	HasGluten bool `json:"hasGluten"`
}

// Neutral 沒有任何排除關鍵字時的標籤
func Neutral() DietTagSet {
	return DietTagSet{IsVegetarian: true, IsVegan: true, IsGlutenFree: true}
}

var (
	meatMarkers = []string{
		"chicken", "beef", "pork", "lamb", "bacon", "ham", "anchovy", "anchovies", "fish", "salmon",
		"tuna", "shrimp", "prawn", "crab", "lobster", "turkey", "duck", "sausage", "veal", "prosciutto",
		"pepperoni", "salami", "mackerel", "sardine", "octopus", "squid",
	}
	dairyMarkers = []string{
		"egg", "eggs", "milk", "cheese", "butter", "cream", "yogurt", "ghee", "paneer", "custard",
		"yoghurt", "honey",
	}
	// 單數化會把 "breadcrumbs" 變成 "breadcrumb"，兩種都要算
	glutenMarkers = []string{
		"flour", "wheat", "breadcrumbs", "breadcrumb", "pasta", "noodle", "noodles", "cracker",
		"soy sauce", "barley", "rye", "semolina", "couscous", "bulgur",
	}
)

// Detect 回傳文字中的關鍵字訊號
func Detect(aliasedText string) Signals {
	return Signals{
		HasMeat:   containsAny(aliasedText, meatMarkers),
		HasDairy:  containsAny(aliasedText, dairyMarkers),
		HasGluten: containsAny(aliasedText, glutenMarkers),
	}
}

// Tags 由訊號推導飲食標籤
func (s Signals) Tags() DietTagSet {
	return DietTagSet{
		IsVegetarian: !s.HasMeat,
		IsVegan:      !s.HasMeat && !s.HasDairy,
		IsGlutenFree: !s.HasGluten,
	}
}

// Classify 分類已套用同義詞的文字
func Classify(aliasedText string) DietTagSet {
	return Detect(aliasedText).Tags()
}

func containsAny(text string, markers []string) bool {
	for _, m := range markers {
		if containsWord(text, m) {
			return true
		}
	}
	return false
}
