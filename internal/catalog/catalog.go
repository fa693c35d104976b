// Package catalog holds the bilingual lookup tables used to plan company searches.
package catalog

import (
	_ "embed"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"
)

//go:embed tables.yaml
var defaultTables []byte

// Category is an industry vertical recognised in free-text queries.
type Category struct {
	Key         string   `yaml:"key"`
	Labels      []string `yaml:"labels"`
	SearchTerms []string `yaml:"search_terms"`
	MatchTerms  []string `yaml:"match_terms"`
	Industries  []string `yaml:"industries"`
}

// Region maps a geographic name to the countries it covers.
type Region struct {
	Key       string   `yaml:"key"`
	Aliases   []string `yaml:"aliases"`
	Countries []string `yaml:"countries"`
}

// IndustrySynonym expands an industry filter into the stored term variants.
type IndustrySynonym struct {
	Key     string   `yaml:"key"`
	Aliases []string `yaml:"aliases"`
	Terms   []string `yaml:"terms"`
}

// Tables is the immutable set of lookup tables. Order is significant: earlier
// entries win when several match.
type Tables struct {
	Categories       []Category        `yaml:"categories"`
	Regions          []Region          `yaml:"regions"`
	IndustrySynonyms []IndustrySynonym `yaml:"industry_synonyms"`
}

// Default returns the tables compiled into the binary.
func Default() *Tables {
	t, err := Parse(defaultTables)
	if err != nil {
		panic(fmt.Sprintf("catalog: embedded tables are invalid: %v", err))
	}
	return t
}

// Load decodes tables from r.
func Load(r io.Reader) (*Tables, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return Parse(data)
}

// LoadFile reads tables from path, or returns the defaults when path is empty.
func LoadFile(path string) (*Tables, error) {
	if path == "" {
		return Default(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()
	return Load(f)
}

// Parse decodes YAML tables and normalises every term.
func Parse(data []byte) (*Tables, error) {
	var t Tables
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	for i := range t.Categories {
		c := &t.Categories[i]
		if c.Key == "" {
			return nil, fmt.Errorf("category %d has no key", i)
		}
		c.Labels = normalizeAll(c.Labels)
		c.SearchTerms = normalizeAll(c.SearchTerms)
		c.MatchTerms = normalizeAll(c.MatchTerms)
	}
	for i := range t.Regions {
		r := &t.Regions[i]
		if r.Key == "" || len(r.Countries) == 0 {
			return nil, fmt.Errorf("region %d is incomplete", i)
		}
		r.Aliases = normalizeAll(r.Aliases)
	}
	for i := range t.IndustrySynonyms {
		s := &t.IndustrySynonyms[i]
		s.Aliases = normalizeAll(s.Aliases)
	}
	return &t, nil
}

// DetectCategory finds the category named by text: an exact label or term
// match first, then a term contained in text.
func (t *Tables) DetectCategory(text string) (*Category, bool) {
	q := Normalize(text)
	if q == "" {
		return nil, false
	}
	for i := range t.Categories {
		c := &t.Categories[i]
		if q == c.Key || contains(c.Labels, q) || contains(c.SearchTerms, q) {
			return c, true
		}
	}
	for i := range t.Categories {
		c := &t.Categories[i]
		for _, term := range c.SearchTerms {
			if ContainsTerm(q, term) {
				return c, true
			}
		}
	}
	return nil, false
}

// Category returns the category with the given key.
func (t *Tables) Category(key string) (*Category, bool) {
	for i := range t.Categories {
		if t.Categories[i].Key == key {
			return &t.Categories[i], true
		}
	}
	return nil, false
}

// DetectRegion finds the first region whose alias appears in text.
func (t *Tables) DetectRegion(text string) (*Region, bool) {
	q := Normalize(text)
	if q == "" {
		return nil, false
	}
	for i := range t.Regions {
		r := &t.Regions[i]
		if q == r.Key || contains(r.Aliases, q) {
			return r, true
		}
	}
	for i := range t.Regions {
		r := &t.Regions[i]
		for _, alias := range r.Aliases {
			if ContainsTerm(q, alias) {
				return r, true
			}
		}
	}
	return nil, false
}

// IndustryTerms expands an industry filter value into stored term variants.
// Unknown values expand to themselves.
func (t *Tables) IndustryTerms(industry string) []string {
	q := Normalize(industry)
	if q == "" {
		return nil
	}
	for _, s := range t.IndustrySynonyms {
		if q == s.Key || contains(s.Aliases, q) {
			return append([]string(nil), s.Terms...)
		}
	}
	return []string{strings.TrimSpace(industry)}
}

// Normalize applies NFKC folding, lowercasing and whitespace collapsing.
func Normalize(s string) string {
	s = norm.NFKC.String(s)
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// ContainsTerm reports whether term occurs in text. ASCII terms must sit on
// word boundaries so "tech" does not match inside "fintech".
func ContainsTerm(text, term string) bool {
	if term == "" {
		return false
	}
	if !isASCII(term) {
		return strings.Contains(text, term)
	}
	from := 0
	for {
		idx := strings.Index(text[from:], term)
		if idx < 0 {
			return false
		}
		start := from + idx
		end := start + len(term)
		if boundaryBefore(text, start) && boundaryAfter(text, end) {
			return true
		}
		from = start + 1
	}
}

func boundaryBefore(text string, idx int) bool {
	if idx == 0 {
		return true
	}
	return !isWordByte(text[idx-1])
}

func boundaryAfter(text string, idx int) bool {
	if idx >= len(text) {
		return true
	}
	return !isWordByte(text[idx])
}

func isWordByte(b byte) bool {
	return b < 0x80 && (b == '_' || unicode.IsLetter(rune(b)) || unicode.IsDigit(rune(b)))
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			return false
		}
	}
	return true
}

func normalizeAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if n := Normalize(v); n != "" {
			out = append(out, n)
		}
	}
	return out
}

func contains(values []string, target string) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}
