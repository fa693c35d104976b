package sources

import (
	"context"
	"encoding/binary"
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/google/uuid"

	"github.com/octobees/company-discovery/internal/entity"
)

const syntheticMaxResults = 5

// syntheticNamespace seeds the deterministic generators.
var syntheticNamespace = uuid.MustParse("6f1c2d0e-6b0a-4b52-9a57-4f3c0e2a9d11")

var syntheticSizes = []entity.CompanySize{entity.SizeMicro, entity.SizeSmall, entity.SizeMedium, entity.SizeLarge}

// Synthetic generates placeholder companies for demos. Its records are always
// flagged synthetic and never verified.
type Synthetic struct {
	name     entity.DataSource
	prefixes []string
	suffixes []string
	phone    string
}

// NewCrunchbase returns the demo Crunchbase generator.
func NewCrunchbase() *Synthetic {
	return &Synthetic{
		name:     entity.SourceCrunchbase,
		prefixes: []string{"Nova", "Apex", "Quantum", "Vertex", "Orbit", "Lumen", "Helix", "Stratus"},
		suffixes: []string{"Labs", "Technologies", "Ventures", "Systems", "Dynamics", "Networks"},
		phone:    "+1-555-01%02d",
	}
}

// NewYellowPages returns the demo Yellow Pages generator.
func NewYellowPages() *Synthetic {
	return &Synthetic{
		name:     entity.SourceYellowPages,
		prefixes: []string{"City", "Golden", "Central", "Sunrise", "Harbor", "Maple", "Riverside", "Pioneer"},
		suffixes: []string{"Trading", "Services", "Supplies", "Works", "& Co.", "Partners"},
		phone:    "+1-555-02%02d",
	}
}

func (s *Synthetic) Name() entity.DataSource { return s.name }

func (s *Synthetic) Synthetic() bool { return true }

func (s *Synthetic) TestConnection(context.Context) bool { return true }

func (s *Synthetic) Search(_ context.Context, q Query) []entity.Company {
	n := min(q.limit(), syntheticMaxResults)
	key := strings.ToLower(strings.Join([]string{q.Text, q.Industry, q.Location}, "|"))
	seed := uuid.NewSHA1(syntheticNamespace, []byte(string(s.name)+"|"+key))
	rng := rand.New(rand.NewPCG(binary.BigEndian.Uint64(seed[:8]), binary.BigEndian.Uint64(seed[8:])))

	industry := strings.ToLower(strings.TrimSpace(q.Industry))
	if industry == "" || industry == "all" {
		industry = entity.DefaultIndustry
	}
	country := firstNonEmpty(q.Location, "United States")

	out := make([]entity.Company, 0, n)
	for i := 0; i < n; i++ {
		name := s.prefixes[rng.IntN(len(s.prefixes))] + " " + s.suffixes[rng.IntN(len(s.suffixes))]
		out = append(out, entity.Company{
			Name:            name,
			Description:     fmt.Sprintf("Sample %s company generated for demonstration purposes.", strings.ReplaceAll(industry, "_", " ")),
			Phone:           entity.StringPtr(fmt.Sprintf(s.phone, rng.IntN(100))),
			LocationCountry: entity.StringPtr(country),
			Industry:        []string{industry},
			Specialties:     []string{},
			CompanySize:     syntheticSizes[rng.IntN(len(syntheticSizes))],
			Synthetic:       true,
			ExternalID:      entity.StringPtr(fmt.Sprintf("%s-%s-%d", s.name, seed.String()[:8], i)),
		})
	}
	return out
}
