package sources

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/nyaruka/phonenumbers"
	"go.uber.org/zap"
	"google.golang.org/api/option"
	places "google.golang.org/api/places/v1"

	"github.com/octobees/company-discovery/internal/entity"
	"github.com/octobees/company-discovery/internal/extract"
	"github.com/octobees/company-discovery/internal/scraper"
)

const (
	placesBiasRadiusMeters = 50000.0
	placesMaxPageSize      = 20

	placesSearchFieldMask = "places.id,places.displayName,places.formattedAddress,places.types,places.websiteUri," +
		"places.nationalPhoneNumber,places.internationalPhoneNumber,places.addressComponents," +
		"places.businessStatus,places.editorialSummary"
	placesDetailsFieldMask = "id,location"
)

var industryPhrases = map[string]string{
	"manufacturing": "manufacturing companies",
	"technology":    "technology companies",
	"software":      "software companies",
	"logistics":     "logistics and freight companies",
	"medical":       "medical clinics and healthcare companies",
	"healthcare":    "medical clinics and healthcare companies",
	"finance":       "financial services companies",
	"trade":         "import export trading companies",
	"fashion":       "fashion and apparel companies",
	"automotive":    "automotive companies",
	"food":          "food and beverage companies",
	"retail":        "retail stores",
	"construction":  "construction companies",
}

var placeTypeIndustry = map[string]string{
	"restaurant":         "food_service",
	"cafe":               "food_service",
	"bakery":             "food_service",
	"bar":                "food_service",
	"meal_takeaway":      "food_service",
	"meal_delivery":      "food_service",
	"hospital":           "healthcare",
	"doctor":             "healthcare",
	"dentist":            "healthcare",
	"pharmacy":           "healthcare",
	"physiotherapist":    "healthcare",
	"medical_lab":        "healthcare",
	"bank":               "finance",
	"accounting":         "finance",
	"insurance_agency":   "finance",
	"car_dealer":         "automotive",
	"car_repair":         "automotive",
	"car_rental":         "automotive",
	"clothing_store":     "fashion",
	"shoe_store":         "fashion",
	"jewelry_store":      "fashion",
	"store":              "retail",
	"supermarket":        "retail",
	"grocery_store":      "retail",
	"shopping_mall":      "retail",
	"department_store":   "retail",
	"electronics_store":  "retail",
	"furniture_store":    "retail",
	"hardware_store":     "retail",
	"home_goods_store":   "retail",
	"lodging":            "hospitality",
	"hotel":              "hospitality",
	"travel_agency":      "travel",
	"real_estate_agency": "real_estate",
	"lawyer":             "legal",
	"moving_company":     "logistics",
	"storage":            "logistics",
	"school":             "education",
	"university":         "education",
	"electrician":        "construction",
	"plumber":            "construction",
	"general_contractor": "construction",
	"roofing_contractor": "construction",
	"corporate_office":   "business_services",
}

var fashionKeywords = []string{"fashion", "apparel", "clothing", "boutique", "garment"}

var genericPlaceTypes = map[string]bool{
	"point_of_interest": true,
	"establishment":     true,
	"premise":           true,
	"political":         true,
}

// GooglePlaces searches the Places API (New).
type GooglePlaces struct {
	svc     *places.Service
	timeout time.Duration
}

// NewGooglePlaces builds the adapter. Without an API key the adapter is
// inert and every search returns no results.
func NewGooglePlaces(ctx context.Context, apiKey string, timeout time.Duration, opts ...option.ClientOption) (*GooglePlaces, error) {
	g := &GooglePlaces{timeout: timeout}
	if g.timeout <= 0 {
		g.timeout = defaultTimeout
	}
	if apiKey == "" {
		return g, nil
	}
	svc, err := places.NewService(ctx, append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("create places service: %w", err)
	}
	g.svc = svc
	return g, nil
}

// Configured reports whether an API key was supplied.
func (g *GooglePlaces) Configured() bool { return g.svc != nil }

func (g *GooglePlaces) Name() entity.DataSource { return entity.SourceGooglePlaces }

func (g *GooglePlaces) Synthetic() bool { return false }

func (g *GooglePlaces) Search(ctx context.Context, q Query) []entity.Company {
	if g.svc == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	limit := q.limit()
	req := &places.GoogleMapsPlacesV1SearchTextRequest{
		TextQuery:      textQuery(q),
		MaxResultCount: int64(min(limit, placesMaxPageSize)),
	}
	if q.LocationPlaceID != "" {
		if center := g.resolvePlace(ctx, q.LocationPlaceID); center != nil {
			req.LocationBias = &places.GoogleMapsPlacesV1SearchTextRequestLocationBias{
				Circle: &places.GoogleMapsPlacesV1Circle{Center: center, Radius: placesBiasRadiusMeters},
			}
		}
	}

	call := g.svc.Places.SearchText(req).Context(ctx)
	call.Header().Set("X-Goog-FieldMask", placesSearchFieldMask)
	resp, err := call.Do()
	if err != nil {
		zap.L().Warn("google places search failed", zap.String("query", req.TextQuery), zap.Error(err))
		return nil
	}

	out := make([]entity.Company, 0, len(resp.Places))
	for _, p := range resp.Places {
		if c, ok := mapPlace(p); ok {
			out = append(out, c)
		}
	}
	return truncate(out, limit)
}

func (g *GooglePlaces) TestConnection(ctx context.Context) bool {
	if g.svc == nil {
		return false
	}
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	call := g.svc.Places.SearchText(&places.GoogleMapsPlacesV1SearchTextRequest{TextQuery: "company", MaxResultCount: 1}).Context(ctx)
	call.Header().Set("X-Goog-FieldMask", "places.id")
	_, err := call.Do()
	return err == nil
}

// resolvePlace looks up the coordinates of a place id used as a location hint.
func (g *GooglePlaces) resolvePlace(ctx context.Context, placeID string) *places.GoogleTypeLatLng {
	call := g.svc.Places.Get("places/" + placeID).Context(ctx)
	call.Header().Set("X-Goog-FieldMask", placesDetailsFieldMask)
	p, err := call.Do()
	if err != nil {
		zap.L().Warn("google places details failed", zap.String("place_id", placeID), zap.Error(err))
		return nil
	}
	return p.Location
}

func textQuery(q Query) string {
	var text string
	switch {
	case strings.TrimSpace(q.Text) != "":
		text = strings.TrimSpace(q.Text) + " company business"
	case q.Industry != "":
		industry := strings.ToLower(strings.TrimSpace(q.Industry))
		if phrase, ok := industryPhrases[industry]; ok {
			text = phrase
		} else {
			text = industry + " companies"
		}
	default:
		text = "companies"
	}
	if loc := strings.TrimSpace(q.Location); loc != "" {
		text += " in " + loc
	}
	return text
}

func mapPlace(p *places.GoogleMapsPlacesV1Place) (entity.Company, bool) {
	if p == nil || p.DisplayName == nil || strings.TrimSpace(p.DisplayName.Text) == "" {
		return entity.Company{}, false
	}
	name := extract.SanitizeText(p.DisplayName.Text)

	var countryName, countryCode, city string
	for _, comp := range p.AddressComponents {
		for _, t := range comp.Types {
			switch t {
			case "country":
				countryName, countryCode = comp.LongText, comp.ShortText
			case "locality":
				city = comp.LongText
			case "administrative_area_level_1":
				if city == "" {
					city = comp.LongText
				}
			}
		}
	}

	description := ""
	if p.EditorialSummary != nil {
		description = extract.SanitizeText(p.EditorialSummary.Text)
	}
	if description == "" && p.FormattedAddress != "" {
		description = fmt.Sprintf("%s, located at %s.", name, p.FormattedAddress)
	}

	c := entity.Company{
		Name:            name,
		Description:     extract.Truncate(description, extract.MaxDescriptionRunes),
		Phone:           entity.StringPtr(placePhone(p, countryCode)),
		LocationCountry: entity.StringPtr(countryName),
		LocationCity:    entity.StringPtr(city),
		Industry:        placeIndustry(name, p.Types),
		Specialties:     placeSpecialties(p.Types),
		CompanySize:     entity.SizeSmall,
		Verified:        p.BusinessStatus == "OPERATIONAL",
		ExternalID:      entity.StringPtr(p.Id),
	}
	if website, err := scraper.NormalizeURL(p.WebsiteUri); err == nil {
		c.WebsiteURL = &website
	}
	return c, true
}

func placePhone(p *places.GoogleMapsPlacesV1Place, region string) string {
	raw := firstNonEmpty(p.InternationalPhoneNumber, p.NationalPhoneNumber)
	if raw == "" {
		return ""
	}
	if region == "" {
		region = "JP"
	}
	num, err := phonenumbers.Parse(raw, strings.ToUpper(region))
	if err != nil || !phonenumbers.IsValidNumber(num) {
		return ""
	}
	return phonenumbers.Format(num, phonenumbers.INTERNATIONAL)
}

// placeIndustry maps place types through the lookup table, with fashion
// wording in the name or types taking precedence.
func placeIndustry(name string, types []string) []string {
	haystack := strings.ToLower(name + " " + strings.Join(types, " "))
	for _, kw := range fashionKeywords {
		if strings.Contains(haystack, kw) {
			return []string{"fashion"}
		}
	}

	var out []string
	for _, t := range types {
		industry, ok := placeTypeIndustry[t]
		if !ok {
			continue
		}
		dup := false
		for _, existing := range out {
			if existing == industry {
				dup = true
				break
			}
		}
		if !dup {
			out = append(out, industry)
		}
	}
	if len(out) == 0 {
		return []string{entity.DefaultIndustry}
	}
	return out
}

func placeSpecialties(types []string) []string {
	var labels []string
	for _, t := range types {
		if genericPlaceTypes[t] {
			continue
		}
		labels = append(labels, strings.ReplaceAll(t, "_", " "))
	}
	return extract.InferSpecialties(labels, "")
}
