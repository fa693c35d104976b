package extract

import (
	"regexp"
	"strings"

	"github.com/octobees/company-discovery/internal/catalog"
	"github.com/octobees/company-discovery/internal/entity"
)

type keywordSet struct {
	industry string
	keywords []string
}

var industryKeywords = []keywordSet{
	{"technology", []string{"software", "technology", "it services", "saas", "cloud", "digital transformation", "artificial intelligence", "システム開発", "ソフトウェア", "テクノロジー"}},
	{"manufacturing", []string{"manufactur", "factory", "production line", "industrial", "製造", "工場", "生産"}},
	{"consulting", []string{"consulting", "consultancy", "advisory", "コンサルティング", "コンサル"}},
	{"healthcare", []string{"healthcare", "medical", "clinic", "hospital", "pharma", "医療", "病院", "クリニック"}},
	{"finance", []string{"finance", "financial", "insurance", "accounting", "fintech", "金融", "保険", "会計"}},
	{"retail", []string{"retail", "shop", "store", "ecommerce", "e-commerce", "小売", "通販", "ショップ"}},
	{"education", []string{"education", "school", "training", "academy", "university", "教育", "学校", "研修"}},
	{"food_service", []string{"restaurant", "food", "cafe", "catering", "飲食", "食品", "レストラン"}},
	{"logistics", []string{"logistics", "shipping", "freight", "transport", "warehouse", "物流", "運送", "倉庫"}},
}

// financeTriggers force "finance" and suppress a spurious "retail" match.
var financeTriggers = []string{"bank", "banking", "loan", "mortgage", "investment", "銀行", "金融", "投資", "ローン", "証券", "保険"}

var (
	specialtyPatternEN = regexp.MustCompile(`(?i)(?:speciali[sz](?:e|es|ing)\s+in|expertise\s+in|focus(?:es|ing)?\s+on|services\s+include|we\s+offer|providing|solutions\s+for)\s+([^.;:!?\n]{3,160})`)
	specialtyPatternJA = regexp.MustCompile(`(?:サービス|事業内容|取り扱い|取扱い|提供)[：:\s]*([^。\n]{2,120})`)
	specialtySplit     = regexp.MustCompile(`\s*(?:,|、|・|／|/|;|\band\b|&)\s*`)

	employeesPatternEN = regexp.MustCompile(`(?i)(\d[\d,]*)\s*\+?\s*(?:full[- ]time\s+)?(?:employees|staff|people|team members|workers)`)
	employeesPatternJA = regexp.MustCompile(`(?:従業員数?|社員数?|スタッフ数?)[^\d]{0,12}(\d[\d,]*)\s*[人名]`)
	headcountPatternJA = regexp.MustCompile(`(\d[\d,]*)\s*[人名]の(?:社員|従業員|スタッフ)`)

	locationContextPattern = regexp.MustCompile(`(?i)(?:address|location|located in|headquarters|headquartered in|hq|所在地|本社|住所)[:：\s]*([^\n]{0,160})`)
	jpPostalPattern        = regexp.MustCompile(`〒\s?\d{3}-\d{4}`)
)

var genericSpecialties = map[string]struct{}{
	"home": {}, "more": {}, "read more": {}, "contact": {}, "contact us": {}, "about us": {},
	"learn more": {}, "click here": {}, "services": {}, "products": {}, "詳しくはこちら": {},
	"お問い合わせ": {}, "会社概要": {},
}

var largeKeywords = []string{"fortune 500", "multinational", "global leader", "大手企業", "大企業"}
var microKeywords = []string{"startup", "start-up", "small business", "スタートアップ"}
var mediumKeywords = []string{"medium", "mid-sized", "growing company", "中堅企業"}

type countryEntry struct {
	name    string
	aliases []string
}

var countries = []countryEntry{
	{"Japan", []string{"japan", "日本"}},
	{"United States", []string{"united states", "usa", "u.s.a.", "america", "アメリカ", "米国"}},
	{"United Kingdom", []string{"united kingdom", "england", "britain", "イギリス", "英国"}},
	{"Thailand", []string{"thailand", "タイ王国"}},
	{"Singapore", []string{"singapore", "シンガポール"}},
	{"China", []string{"china", "中国"}},
	{"South Korea", []string{"south korea", "korea", "韓国"}},
	{"Taiwan", []string{"taiwan", "台湾"}},
	{"Vietnam", []string{"vietnam", "viet nam", "ベトナム"}},
	{"Malaysia", []string{"malaysia", "マレーシア"}},
	{"Indonesia", []string{"indonesia", "インドネシア"}},
	{"Philippines", []string{"philippines", "フィリピン"}},
	{"India", []string{"india", "インド"}},
	{"Germany", []string{"germany", "ドイツ"}},
	{"France", []string{"france", "フランス"}},
	{"Canada", []string{"canada", "カナダ"}},
	{"Australia", []string{"australia", "オーストラリア"}},
}

type cityEntry struct {
	name    string
	country string
	aliases []string
}

var cities = []cityEntry{
	{"Tokyo", "Japan", []string{"tokyo", "東京"}},
	{"Osaka", "Japan", []string{"osaka", "大阪"}},
	{"Nagoya", "Japan", []string{"nagoya", "名古屋"}},
	{"Yokohama", "Japan", []string{"yokohama", "横浜"}},
	{"Fukuoka", "Japan", []string{"fukuoka", "福岡"}},
	{"Kyoto", "Japan", []string{"kyoto", "京都"}},
	{"Sapporo", "Japan", []string{"sapporo", "札幌"}},
	{"Kobe", "Japan", []string{"kobe", "神戸"}},
	{"Bangkok", "Thailand", []string{"bangkok", "バンコク"}},
	{"Singapore", "Singapore", []string{"singapore"}},
	{"London", "United Kingdom", []string{"london", "ロンドン"}},
	{"New York", "United States", []string{"new york", "ニューヨーク"}},
	{"San Francisco", "United States", []string{"san francisco", "サンフランシスコ"}},
	{"Los Angeles", "United States", []string{"los angeles", "ロサンゼルス"}},
	{"Shanghai", "China", []string{"shanghai", "上海"}},
	{"Beijing", "China", []string{"beijing", "北京"}},
	{"Seoul", "South Korea", []string{"seoul", "ソウル"}},
	{"Ho Chi Minh City", "Vietnam", []string{"ho chi minh", "ホーチミン"}},
	{"Kuala Lumpur", "Malaysia", []string{"kuala lumpur", "クアラルンプール"}},
	{"Jakarta", "Indonesia", []string{"jakarta", "ジャカルタ"}},
}

var isoCountries = map[string]string{
	"jp": "Japan", "us": "United States", "gb": "United Kingdom", "uk": "United Kingdom",
	"th": "Thailand", "sg": "Singapore", "cn": "China", "kr": "South Korea", "tw": "Taiwan",
	"vn": "Vietnam", "my": "Malaysia", "id": "Indonesia", "ph": "Philippines", "in": "India",
	"de": "Germany", "fr": "France", "ca": "Canada", "au": "Australia",
}

func matchKeyword(text, keyword string) bool {
	if len(keyword) <= 3 {
		return catalog.ContainsTerm(text, keyword)
	}
	return strings.Contains(text, keyword)
}

// InferIndustry resolves the industry set: explicit hint, then structured
// data, then a keyword scan of text. It never returns an empty set.
func InferIndustry(hint string, structured []string, text string) []string {
	hint = strings.ToLower(strings.TrimSpace(hint))
	if hint != "" && hint != "all" {
		return []string{hint}
	}

	if set := normalizeSet(structured, 5); len(set) > 0 {
		return set
	}

	lower := strings.ToLower(text)
	var found []string
	for _, entry := range industryKeywords {
		for _, kw := range entry.keywords {
			if matchKeyword(lower, kw) {
				found = append(found, entry.industry)
				break
			}
		}
	}

	for _, trigger := range financeTriggers {
		if matchKeyword(lower, trigger) {
			if !containsString(found, "finance") {
				found = append(found, "finance")
			}
			break
		}
	}
	if containsString(found, "finance") {
		found = removeString(found, "retail")
	}

	if len(found) == 0 {
		return []string{entity.DefaultIndustry}
	}
	return found
}

// InferSpecialties merges keyword candidates with phrases that follow
// "specializing in", "we offer", "事業内容" and similar, returning at most five.
func InferSpecialties(keywords []string, text string) []string {
	candidates := append([]string(nil), keywords...)
	for _, m := range specialtyPatternEN.FindAllStringSubmatch(text, 5) {
		candidates = append(candidates, specialtySplit.Split(m[1], -1)...)
	}
	for _, m := range specialtyPatternJA.FindAllStringSubmatch(text, 5) {
		candidates = append(candidates, specialtySplit.Split(m[1], -1)...)
	}

	seen := make(map[string]struct{})
	out := make([]string, 0, 5)
	for _, raw := range candidates {
		if looksLikeHTML(raw) {
			continue
		}
		s := strings.Trim(SanitizeText(raw), " .,:;!?-\"'()（）「」")
		n := len([]rune(s))
		if n < 3 || n > 50 || IsBoilerplate(s) {
			continue
		}
		key := strings.ToLower(s)
		if _, generic := genericSpecialties[key]; generic {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, s)
		if len(out) == 5 {
			break
		}
	}
	return out
}

// SizeForCount maps a headcount onto the size buckets.
func SizeForCount(n int) entity.CompanySize {
	switch {
	case n < 10:
		return entity.SizeMicro
	case n < 50:
		return entity.SizeSmall
	case n < 250:
		return entity.SizeMedium
	default:
		return entity.SizeLarge
	}
}

// InferSize uses a structured headcount, then one mentioned in text, then
// qualitative wording. Defaults to small.
func InferSize(structured int, text string) entity.CompanySize {
	if structured > 0 {
		return SizeForCount(structured)
	}
	for _, re := range []*regexp.Regexp{employeesPatternEN, employeesPatternJA, headcountPatternJA} {
		if m := re.FindStringSubmatch(text); m != nil {
			if n, ok := parseCount(m[1]); ok {
				return SizeForCount(n)
			}
		}
	}
	lower := strings.ToLower(text)
	switch {
	case containsAny(lower, largeKeywords):
		return entity.SizeLarge
	case containsAny(lower, microKeywords):
		return entity.SizeMicro
	case containsAny(lower, mediumKeywords):
		return entity.SizeMedium
	}
	return entity.SizeSmall
}

// inferLocation looks for a country and city near address-like keywords.
func inferLocation(text string) (string, string) {
	var country, city string
	for _, m := range locationContextPattern.FindAllStringSubmatch(text, 10) {
		if country == "" {
			country = findCountry(m[1])
		}
		if city == "" {
			city = findCity(m[1])
		}
		if country != "" && city != "" {
			break
		}
	}
	if country == "" && city != "" {
		country = cityCountry(city)
	}
	if country == "" && jpPostalPattern.MatchString(text) {
		country = "Japan"
	}
	return country, city
}

func findCountry(text string) string {
	lower := strings.ToLower(text)
	for _, c := range countries {
		for _, alias := range c.aliases {
			if matchKeyword(lower, alias) {
				return c.name
			}
		}
	}
	return ""
}

func findCity(text string) string {
	lower := strings.ToLower(text)
	for _, c := range cities {
		for _, alias := range c.aliases {
			if strings.Contains(lower, alias) {
				return c.name
			}
		}
	}
	return ""
}

func cityCountry(city string) string {
	for _, c := range cities {
		if c.name == city {
			return c.country
		}
	}
	return ""
}

// countryName expands ISO codes found in structured addresses.
func countryName(value string) string {
	value = strings.TrimSpace(value)
	if name, ok := isoCountries[strings.ToLower(value)]; ok {
		return name
	}
	if name := findCountry(value); name != "" {
		return name
	}
	return value
}

func normalizeSet(values []string, limit int) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, v := range values {
		v = strings.ToLower(SanitizeText(v))
		if v == "" || looksLikeHTML(v) {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
		if len(out) == limit {
			break
		}
	}
	return out
}

func containsAny(text string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(text, n) {
			return true
		}
	}
	return false
}

func containsString(values []string, target string) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}

func removeString(values []string, target string) []string {
	out := values[:0]
	for _, v := range values {
		if v != target {
			out = append(out, v)
		}
	}
	return out
}
