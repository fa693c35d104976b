package extract

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var orgTypePattern = regexp.MustCompile(`(?i)organization|corporation|localbusiness|company`)

// ldNode is a decoded JSON-LD object.
type ldNode map[string]any

// findOrganization returns the first Organization-like node across every
// JSON-LD block in the document, looking inside @graph arrays too.
func findOrganization(doc *goquery.Document) ldNode {
	var found ldNode
	doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		var payload any
		if err := json.Unmarshal([]byte(strings.TrimSpace(s.Text())), &payload); err != nil {
			return true
		}
		found = searchOrganization(payload)
		return found == nil
	})
	return found
}

func searchOrganization(v any) ldNode {
	switch t := v.(type) {
	case []any:
		for _, item := range t {
			if n := searchOrganization(item); n != nil {
				return n
			}
		}
	case map[string]any:
		if isOrganizationType(t["@type"]) {
			return ldNode(t)
		}
		if graph, ok := t["@graph"]; ok {
			return searchOrganization(graph)
		}
	}
	return nil
}

func isOrganizationType(v any) bool {
	switch t := v.(type) {
	case string:
		return orgTypePattern.MatchString(t)
	case []any:
		for _, item := range t {
			if s, ok := item.(string); ok && orgTypePattern.MatchString(s) {
				return true
			}
		}
	}
	return false
}

// str reads a scalar field, unwrapping {"name": ...} or {"@value": ...} objects
// and taking the first element of arrays.
func (n ldNode) str(key string) string {
	if n == nil {
		return ""
	}
	return scalar(n[key])
}

func scalar(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case []any:
		for _, item := range t {
			if s := scalar(item); s != "" {
				return s
			}
		}
	case map[string]any:
		for _, key := range []string{"name", "@value", "value"} {
			if s := scalar(t[key]); s != "" {
				return s
			}
		}
	}
	return ""
}

// list reads a field that may be a comma separated string or an array.
func (n ldNode) list(key string) []string {
	if n == nil {
		return nil
	}
	var out []string
	switch t := n[key].(type) {
	case string:
		out = append(out, splitKeywords(t)...)
	case []any:
		for _, item := range t {
			if s := scalar(item); s != "" {
				out = append(out, s)
			}
		}
	case map[string]any:
		if s := scalar(t); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// address returns (country, city) from a PostalAddress or a plain string.
func (n ldNode) address() (string, string) {
	if n == nil {
		return "", ""
	}
	switch t := n["address"].(type) {
	case string:
		return findCountry(t), findCity(t)
	case map[string]any:
		return scalar(t["addressCountry"]), scalar(t["addressLocality"])
	case []any:
		for _, item := range t {
			if m, ok := item.(map[string]any); ok {
				return scalar(m["addressCountry"]), scalar(m["addressLocality"])
			}
		}
	}
	return "", ""
}

// employees reads numberOfEmployees as a number, numeric string or
// QuantitativeValue.
func (n ldNode) employees() (int, bool) {
	if n == nil {
		return 0, false
	}
	return employeeCount(n["numberOfEmployees"])
}

func employeeCount(v any) (int, bool) {
	switch t := v.(type) {
	case float64:
		return int(t), t > 0
	case string:
		return parseCount(t)
	case map[string]any:
		for _, key := range []string{"value", "maxValue", "minValue"} {
			if c, ok := employeeCount(t[key]); ok {
				return c, true
			}
		}
	}
	return 0, false
}

func parseCount(s string) (int, bool) {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		if r == ',' {
			return -1
		}
		return ' '
	}, s)
	fields := strings.Fields(digits)
	if len(fields) == 0 {
		return 0, false
	}
	n, err := strconv.Atoi(fields[0])
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

func splitKeywords(s string) []string {
	parts := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == '、' || r == '，' || r == ';'
	})
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
