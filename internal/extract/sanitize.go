package extract

import (
	"html"
	"net/url"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/net/idna"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/octobees/company-discovery/internal/entity"
)

// PlaceholderDescription marks a record for which no real description was found.
const PlaceholderDescription = "Company information extracted from website"

const MaxDescriptionRunes = 500

var (
	tagPattern      = regexp.MustCompile(`(?s)<[^>]*>`)
	htmlishPattern  = regexp.MustCompile(`(?i)</?[a-z][a-z0-9]*[^>]*>|&lt;|&gt;|\{\{|\}\}`)
	mojibakePattern = regexp.MustCompile(`Ã[\x{0080}-\x{00BF}]|Â[\x{0080}-\x{00BF}]|â€|ã[\x{0080}-\x{00BF}]|ï¿½|&#65533;|\\u00[0-9a-fA-F]{2}`)
)

var boilerplatePhrases = []string{
	"cookie",
	"privacy policy",
	"privacy notice",
	"all rights reserved",
	"copyright",
	"©",
	"official site",
	"official website",
	"enable javascript",
	"terms of use",
	"クッキー",
	"プライバシーポリシー",
	"個人情報保護方針",
	"著作権",
	"無断転載",
	"公式サイト",
	"公式ホームページ",
}

var genericNames = map[string]struct{}{
	"home": {}, "homepage": {}, "home page": {}, "top": {}, "top page": {}, "welcome": {},
	"index": {}, "untitled": {}, "default": {}, "website": {}, "official site": {},
	"ホーム": {}, "ホームページ": {}, "トップ": {}, "トップページ": {}, "公式サイト": {},
	"公式ホームページ": {}, "ようこそ": {},
}

// SanitizeText strips tags, unescapes entities, drops control characters and
// collapses whitespace.
func SanitizeText(s string) string {
	if s == "" {
		return ""
	}
	s = tagPattern.ReplaceAllString(s, " ")
	s = html.UnescapeString(s)
	s = strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' || r == '\r' {
			return ' '
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
	return strings.Join(strings.Fields(s), " ")
}

// Truncate cuts s to at most n runes.
func Truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return strings.TrimSpace(string(runes[:n]))
}

// IsBoilerplate reports whether s reads like cookie, privacy or copyright text.
func IsBoilerplate(s string) bool {
	lower := strings.ToLower(s)
	for _, phrase := range boilerplatePhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}

func looksLikeHTML(s string) bool {
	return htmlishPattern.MatchString(s)
}

// IsGarbled reports whether the text fields of c were decoded with the wrong
// charset.
func IsGarbled(c *entity.Company) bool {
	if c == nil {
		return false
	}
	joined := strings.Join([]string{c.Name, c.Description, entity.Deref(c.LocationCountry), entity.Deref(c.LocationCity)}, " ")
	if strings.Count(joined, "�") >= 3 {
		return true
	}
	return len(mojibakePattern.FindAllStringIndex(joined, 2)) >= 2
}

// IsGenericName reports whether name is a placeholder page title rather than a
// company name.
func IsGenericName(name string) bool {
	n := strings.ToLower(strings.TrimSpace(name))
	if len([]rune(n)) < 2 {
		return true
	}
	_, ok := genericNames[n]
	return ok
}

// DisplayName derives a readable name from the website's domain label, falling
// back to the industry and city.
func DisplayName(websiteURL string, industry []string, city string) string {
	if label := domainLabel(websiteURL); label != "" {
		return label
	}
	ind := entity.DefaultIndustry
	if len(industry) > 0 && industry[0] != "" {
		ind = industry[0]
	}
	name := titleCase(strings.ReplaceAll(ind, "_", " ")) + " Company"
	if city != "" {
		name += " (" + city + ")"
	}
	return name
}

func domainLabel(raw string) string {
	if raw == "" {
		return ""
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	host := strings.ToLower(u.Hostname())
	if uni, err := idna.ToUnicode(host); err == nil {
		host = uni
	}
	host = strings.TrimPrefix(host, "www.")
	parts := strings.Split(host, ".")
	if len(parts) == 0 || parts[0] == "" {
		return ""
	}
	label := strings.NewReplacer("-", " ", "_", " ").Replace(parts[0])
	return titleCase(label)
}

// titleCase builds a fresh Caser per call; a Caser must not be shared across
// goroutines.
func titleCase(s string) string {
	return cases.Title(language.English).String(s)
}
