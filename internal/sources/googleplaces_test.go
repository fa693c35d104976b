package sources

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"

	"github.com/octobees/company-discovery/internal/entity"
)

const placesResponse = `{"places":[
 {"id":"p1","displayName":{"text":"Osaka Precision Works"},"formattedAddress":"1-2 Umeda, Kita-ku, Osaka, Japan",
  "types":["corporate_office","point_of_interest","establishment"],"websiteUri":"https://Osaka-Precision.example.jp/",
  "nationalPhoneNumber":"06-6123-4567",
  "addressComponents":[{"longText":"Osaka","shortText":"Osaka","types":["locality","political"]},
                       {"longText":"Japan","shortText":"JP","types":["country","political"]}],
  "businessStatus":"OPERATIONAL"},
 {"id":"p2","displayName":{"text":"Sakura Boutique"},"types":["store"],"businessStatus":"CLOSED_TEMPORARILY"},
 {"id":"p3"}
]}`

func newPlacesServer(t *testing.T, onSearch func(body map[string]any)) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, "/v1/places:searchText"):
			assert.NotEmpty(t, r.Header.Get("X-Goog-FieldMask"))
			var body map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			if onSearch != nil {
				onSearch(body)
			}
			_, _ = w.Write([]byte(placesResponse))
		case r.Method == http.MethodGet && strings.HasSuffix(r.URL.Path, "/v1/places/ChIJ-osaka"):
			_, _ = w.Write([]byte(`{"id":"ChIJ-osaka","location":{"latitude":34.69,"longitude":135.50}}`))
		default:
			http.NotFound(w, r)
		}
	}))
}

func newTestPlaces(t *testing.T, srv *httptest.Server) *GooglePlaces {
	t.Helper()
	g, err := NewGooglePlaces(context.Background(), "test-key", 0,
		option.WithEndpoint(srv.URL+"/"), option.WithHTTPClient(srv.Client()))
	require.NoError(t, err)
	return g
}

func TestGooglePlaces_KeylessReturnsEmpty(t *testing.T) {
	g, err := NewGooglePlaces(context.Background(), "", 0)
	require.NoError(t, err)

	assert.Empty(t, g.Search(context.Background(), Query{Industry: "manufacturing"}))
	assert.False(t, g.TestConnection(context.Background()))
}

func TestGooglePlaces_Search(t *testing.T) {
	var body map[string]any
	srv := newPlacesServer(t, func(b map[string]any) { body = b })
	defer srv.Close()

	got := newTestPlaces(t, srv).Search(context.Background(), Query{Text: "precision parts", Location: "Osaka", MaxResults: 10})

	assert.Equal(t, "precision parts company business in Osaka", body["textQuery"])
	assert.Nil(t, body["locationBias"])
	require.Len(t, got, 2)

	first := got[0]
	assert.Equal(t, "Osaka Precision Works", first.Name)
	assert.Equal(t, "https://osaka-precision.example.jp", entity.Deref(first.WebsiteURL))
	assert.True(t, strings.HasPrefix(entity.Deref(first.Phone), "+81 6"))
	assert.Equal(t, "Japan", entity.Deref(first.LocationCountry))
	assert.Equal(t, "Osaka", entity.Deref(first.LocationCity))
	assert.Equal(t, []string{"business_services"}, first.Industry)
	assert.Equal(t, "p1", entity.Deref(first.ExternalID))
	assert.True(t, first.Verified)
	assert.Contains(t, first.Description, "1-2 Umeda")

	second := got[1]
	assert.Equal(t, []string{"fashion"}, second.Industry)
	assert.False(t, second.Verified)
	assert.Nil(t, second.WebsiteURL)
}

func TestGooglePlaces_LocationBiasAndTruncation(t *testing.T) {
	var body map[string]any
	srv := newPlacesServer(t, func(b map[string]any) { body = b })
	defer srv.Close()

	got := newTestPlaces(t, srv).Search(context.Background(), Query{Industry: "Manufacturing", LocationPlaceID: "ChIJ-osaka", MaxResults: 1})

	require.Len(t, got, 1)
	assert.Equal(t, "manufacturing companies", body["textQuery"])
	bias, ok := body["locationBias"].(map[string]any)
	require.True(t, ok)
	circle := bias["circle"].(map[string]any)
	assert.Equal(t, 50000.0, circle["radius"])
	center := circle["center"].(map[string]any)
	assert.Equal(t, 34.69, center["latitude"])
}

func TestGooglePlaces_ProviderErrorDegrades(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"code":403,"message":"API key invalid"}}`, http.StatusForbidden)
	}))
	defer srv.Close()

	g := newTestPlaces(t, srv)
	assert.Empty(t, g.Search(context.Background(), Query{Text: "anything"}))
	assert.False(t, g.TestConnection(context.Background()))
}

func TestTextQuery(t *testing.T) {
	assert.Equal(t, "companies", textQuery(Query{}))
	assert.Equal(t, "drone companies in Thailand", textQuery(Query{Industry: "Drone", Location: "Thailand"}))
	assert.Equal(t, "fashion and apparel companies", textQuery(Query{Industry: "fashion"}))
}

func TestPlaceIndustry(t *testing.T) {
	assert.Equal(t, []string{"food_service"}, placeIndustry("Kyoto Cafe", []string{"cafe", "restaurant", "establishment"}))
	assert.Equal(t, []string{"fashion"}, placeIndustry("Tokyo Apparel", []string{"store"}))
	assert.Equal(t, []string{"fashion"}, placeIndustry("Shop", []string{"clothing_store"}))
	assert.Equal(t, []string{"healthcare", "retail"}, placeIndustry("X", []string{"pharmacy", "store"}))
	assert.Equal(t, []string{entity.DefaultIndustry}, placeIndustry("X", []string{"establishment"}))
}
