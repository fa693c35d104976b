package extract

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/nyaruka/phonenumbers"
	"golang.org/x/net/idna"
)

var (
	emailFindPattern = regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`)
	emailPattern     = regexp.MustCompile(`^[a-z0-9._%+\-']+@[a-z0-9.-]+\.[a-z]{2,}$`)
	jpPhonePattern   = regexp.MustCompile(`0\d{1,4}[-(（]\s?\d{1,4}[-)）]\s?\d{3,4}`)
	intlPhonePattern = regexp.MustCompile(`\+\d{1,3}[\s.\-]?\(?\d{1,4}\)?(?:[\s.\-]?\d{2,4}){2,4}`)
)

var assetSuffixes = []string{".png", ".jpg", ".jpeg", ".gif", ".webp", ".svg"}

// countryRegions maps country names to phone regions used to validate numbers.
var countryRegions = map[string]string{
	"Japan":          "JP",
	"United States":  "US",
	"United Kingdom": "GB",
	"Thailand":       "TH",
	"Singapore":      "SG",
	"China":          "CN",
	"South Korea":    "KR",
	"Taiwan":         "TW",
	"Vietnam":        "VN",
	"Malaysia":       "MY",
	"Indonesia":      "ID",
	"Philippines":    "PH",
	"India":          "IN",
	"Germany":        "DE",
	"France":         "FR",
	"Canada":         "CA",
	"Australia":      "AU",
}

const defaultPhoneRegion = "JP"

// CleanEmail lowercases and validates an address, rejecting asset file names
// and malformed domains.
func CleanEmail(raw string) string {
	email := strings.ToLower(strings.TrimSpace(raw))
	email = strings.TrimPrefix(email, "mailto:")
	if i := strings.IndexByte(email, '?'); i >= 0 {
		email = email[:i]
	}
	if unescaped, err := url.PathUnescape(email); err == nil {
		email = unescaped
	}
	if email == "" || !emailPattern.MatchString(email) {
		return ""
	}
	for _, suffix := range assetSuffixes {
		if strings.HasSuffix(email, suffix) {
			return ""
		}
	}
	domain := email[strings.IndexByte(email, '@')+1:]
	if !isDomainValid(domain) {
		return ""
	}
	if _, err := idna.Lookup.ToASCII(domain); err != nil {
		return ""
	}
	return email
}

func findEmail(text string) string {
	for _, candidate := range emailFindPattern.FindAllString(text, 10) {
		if email := CleanEmail(candidate); email != "" {
			return email
		}
	}
	return ""
}

// CleanPhone strips a tel: prefix and rejects values with fewer than six digits.
func CleanPhone(raw string) string {
	raw = strings.TrimPrefix(strings.TrimSpace(raw), "tel:")
	if unescaped, err := url.PathUnescape(raw); err == nil {
		raw = unescaped
	}
	raw = strings.TrimSpace(raw)
	digits := 0
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			digits++
		}
	}
	if digits < 6 {
		return ""
	}
	return raw
}

// findPhone looks for a Japanese-format number first, then an international
// one that phonenumbers accepts as valid.
func findPhone(text, country string) string {
	if m := jpPhonePattern.FindString(text); m != "" {
		return strings.TrimSpace(m)
	}
	region := countryRegions[country]
	if region == "" {
		region = defaultPhoneRegion
	}
	for _, candidate := range intlPhonePattern.FindAllString(text, 5) {
		num, err := phonenumbers.Parse(candidate, region)
		if err != nil || !phonenumbers.IsValidNumber(num) {
			continue
		}
		return strings.TrimSpace(candidate)
	}
	return ""
}

func isDomainValid(domain string) bool {
	if strings.Count(domain, ".") == 0 {
		return false
	}
	for _, part := range strings.Split(domain, ".") {
		if part == "" || strings.HasPrefix(part, "-") || strings.HasSuffix(part, "-") {
			return false
		}
	}
	return true
}
