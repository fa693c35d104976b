package scraper

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeURL_Equivalence(t *testing.T) {
	variants := []string{
		"https://example.com",
		"HTTP://Example.COM/",
		"example.com",
		"  https://example.com/?utm_source=ads#top ",
		"https://example.com:443/",
		"http://example.com:80",
		"https://example.com.",
	}
	for _, v := range variants {
		got, err := NormalizeURL(v)
		require.NoError(t, err, v)
		assert.Equal(t, "https://example.com", got, v)
	}
}

func TestNormalizeURL_Forms(t *testing.T) {
	tests := map[string]string{
		"www.Example.com/About/":       "https://www.example.com/About",
		"https://例え.jp/company/":       "https://xn--r8jz45g.jp/company",
		"https://example.com:8443/a/b/": "https://example.com:8443/a/b",
		"http://93.184.216.34:9000/":    "https://93.184.216.34:9000",
	}
	for in, want := range tests {
		got, err := NormalizeURL(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
}

func TestNormalizeURL_Invalid(t *testing.T) {
	for _, raw := range []string{"", "   ", "ftp://example.com", "https://", "not a url", "https://nodot"} {
		_, err := NormalizeURL(raw)
		assert.Error(t, err, raw)
	}
}

func TestNormalizeURL_RejectsNonPublicHosts(t *testing.T) {
	for _, raw := range []string{
		"http://localhost:8080/admin",
		"api.localhost",
		"http://127.0.0.1/",
		"http://10.0.0.5",
		"192.168.1.1",
		"http://172.16.0.10:8443",
		"http://169.254.169.254/latest/meta-data",
		"http://[::1]:9000",
		"http://[fe80::1]/",
		"http://0.0.0.0",
	} {
		_, err := NormalizeURL(raw)
		assert.ErrorIs(t, err, ErrNonPublicHost, raw)
	}
}

func TestCanonicalURLs(t *testing.T) {
	got := canonicalURLs([]string{"example.com", "https://EXAMPLE.com/", "bad url", "b.example.org"})
	assert.Equal(t, []string{"https://example.com", "https://b.example.org"}, got)
}
