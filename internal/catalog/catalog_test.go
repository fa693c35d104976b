package catalog

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultTablesMatchTermsAreDisjoint(t *testing.T) {
	tables := Default()
	owner := map[string]string{}
	for _, c := range tables.Categories {
		for _, term := range c.MatchTerms {
			prev, taken := owner[term]
			assert.False(t, taken, "term %q shared by %s and %s", term, prev, c.Key)
			owner[term] = c.Key
		}
	}
}

func TestDetectCategory(t *testing.T) {
	tables := Default()
	tests := []struct {
		query string
		want  string
		found bool
	}{
		{query: "manufacturing", want: "manufacturing", found: true},
		{query: "製造業", want: "manufacturing", found: true},
		{query: "Fintech", want: "fintech", found: true},
		{query: "fintech startups in singapore", want: "fintech", found: true},
		{query: "bank partners in thailand", want: "finance", found: true},
		{query: "東京の銀行", want: "finance", found: true},
		{query: "ＭＡＮＵＦＡＣＴＵＲＩＮＧ", want: "manufacturing", found: true},
		{query: "bakery", found: false},
		{query: "", found: false},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			c, ok := tables.DetectCategory(tt.query)
			require.Equal(t, tt.found, ok)
			if ok {
				assert.Equal(t, tt.want, c.Key)
			}
		})
	}
}

func TestDetectRegion(t *testing.T) {
	tables := Default()

	r, ok := tables.DetectRegion("logistics in southeast asia")
	require.True(t, ok)
	assert.Equal(t, "southeast_asia", r.Key)

	r, ok = tables.DetectRegion("東南アジアの商社")
	require.True(t, ok)
	assert.Equal(t, "southeast_asia", r.Key)

	r, ok = tables.DetectRegion("Japan")
	require.True(t, ok)
	assert.Contains(t, r.Countries, "Japan")

	_, ok = tables.DetectRegion("mars colony")
	assert.False(t, ok)
}

func TestIndustryTerms(t *testing.T) {
	tables := Default()
	assert.Equal(t, []string{"consulting", "コンサルティング"}, tables.IndustryTerms("コンサル"))
	assert.Equal(t, []string{"Shipbuilding"}, tables.IndustryTerms(" Shipbuilding "))
	assert.Nil(t, tables.IndustryTerms(""))
}

func TestLoadSubstituteTables(t *testing.T) {
	src := `
categories:
  - key: bakery
    labels: [Bakery]
    search_terms: [bread]
    match_terms: [bread]
    industries: [food_service]
regions:
  - key: moon
    aliases: [moon]
    countries: [Luna]
`
	tables, err := Load(strings.NewReader(src))
	require.NoError(t, err)

	c, ok := tables.DetectCategory("fresh bread")
	require.True(t, ok)
	assert.Equal(t, "bakery", c.Key)
	assert.Equal(t, []string{"bakery"}, c.Labels)

	_, err = Load(strings.NewReader("regions:\n  - key: empty\n"))
	require.Error(t, err)
}

func TestContainsTerm(t *testing.T) {
	assert.True(t, ContainsTerm("tech companies", "tech"))
	assert.False(t, ContainsTerm("fintech companies", "tech"))
	assert.True(t, ContainsTerm("it企業", "it"))
	assert.False(t, ContainsTerm("fruit", "it"))
	assert.True(t, ContainsTerm("東京の製造会社", "製造"))
}
