// Package enrich fills gaps in heuristically extracted company records using a
// language model. Enrichment is best effort: any failure returns the input
// record unchanged.
package enrich

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/octobees/company-discovery/internal/entity"
	"github.com/octobees/company-discovery/internal/extract"
)

const (
	defaultTimeout      = 20 * time.Second
	defaultExcerpt      = 6000
	sentinelIndustryAll = "all"
)

const systemPrompt = `You extract company profiles from website text. Reply with a single JSON object and nothing else.`

const promptTemplate = `Website: %s

Extract the company behind this website into JSON with exactly these keys:
{"name": string, "description": string, "industry": [string], "specialties": [string],
 "company_size": "micro"|"small"|"medium"|"large", "contact_email": string, "phone": string,
 "location_city": string, "location_country": string}
Use "" or [] for anything the text does not state. Keep description under 400 characters.

Text:
%s`

var sizeSynonyms = map[string]entity.CompanySize{
	"micro":      entity.SizeMicro,
	"tiny":       entity.SizeMicro,
	"startup":    entity.SizeMicro,
	"small":      entity.SizeSmall,
	"medium":     entity.SizeMedium,
	"midsize":    entity.SizeMedium,
	"mid-size":   entity.SizeMedium,
	"mid":        entity.SizeMedium,
	"large":      entity.SizeLarge,
	"enterprise": entity.SizeLarge,
	"big":        entity.SizeLarge,
}

// Enricher decides whether a record needs model help and merges the reply.
type Enricher struct {
	model      Model
	timeout    time.Duration
	maxExcerpt int
}

// Option configures an Enricher.
type Option func(*Enricher)

// WithTimeout bounds each model call.
func WithTimeout(d time.Duration) Option {
	return func(e *Enricher) {
		if d > 0 {
			e.timeout = d
		}
	}
}

// WithMaxExcerpt caps the number of characters of page text sent to the model.
func WithMaxExcerpt(n int) Option {
	return func(e *Enricher) {
		if n > 0 {
			e.maxExcerpt = n
		}
	}
}

// New creates an Enricher. A nil model disables enrichment.
func New(model Model, opts ...Option) *Enricher {
	e := &Enricher{model: model, timeout: defaultTimeout, maxExcerpt: defaultExcerpt}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Enabled reports whether a model is configured.
func (e *Enricher) Enabled() bool {
	return e != nil && e.model != nil
}

// Apply returns c merged with the model's reading of text. The model is only
// consulted when requested, configured and the record is weak.
func (e *Enricher) Apply(ctx context.Context, c entity.Company, text string, requested bool) entity.Company {
	if !requested || !e.Enabled() || !IsWeak(c) {
		return c
	}

	callCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	raw, err := e.model.Complete(callCtx, systemPrompt, e.prompt(c, text))
	if err != nil {
		zap.L().Warn("enrichment call failed", zap.String("website", entity.Deref(c.WebsiteURL)), zap.Error(err))
		return c
	}

	out, err := parseReply(raw)
	if err != nil {
		zap.L().Warn("enrichment reply unusable", zap.String("website", entity.Deref(c.WebsiteURL)), zap.Error(err))
		return c
	}
	return merge(c, out)
}

func (e *Enricher) prompt(c entity.Company, text string) string {
	excerpt := extract.Truncate(extract.SanitizeText(text), e.maxExcerpt)
	return fmt.Sprintf(promptTemplate, entity.Deref(c.WebsiteURL), excerpt)
}

// IsWeak reports whether a record is missing enough information to justify a
// model call.
func IsWeak(c entity.Company) bool {
	switch {
	case c.ContactEmail == nil && c.Phone == nil:
		return true
	case onlySentinelIndustry(c.Industry):
		return true
	case len(c.Specialties) == 0:
		return true
	case c.Description == "" || c.Description == extract.PlaceholderDescription:
		return true
	case c.CompanySize == "" || c.CompanySize == entity.SizeSmall:
		return true
	}
	return false
}

func onlySentinelIndustry(industry []string) bool {
	for _, v := range industry {
		if v != entity.DefaultIndustry && v != sentinelIndustryAll && v != "" {
			return false
		}
	}
	return true
}

type reply struct {
	Name            string   `json:"name"`
	Description     string   `json:"description"`
	Industry        []string `json:"industry"`
	Specialties     []string `json:"specialties"`
	CompanySize     string   `json:"company_size"`
	ContactEmail    string   `json:"contact_email"`
	Phone           string   `json:"phone"`
	LocationCity    string   `json:"location_city"`
	LocationCountry string   `json:"location_country"`
}

// parseReply decodes the reply directly, else the first {...} block in it.
func parseReply(text string) (*reply, error) {
	var out reply
	if err := json.Unmarshal([]byte(strings.TrimSpace(text)), &out); err == nil {
		return &out, nil
	}
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return nil, eris.New("no JSON object in reply")
	}
	if err := json.Unmarshal([]byte(text[start:end+1]), &out); err != nil {
		return nil, eris.Wrap(err, "decode reply")
	}
	return &out, nil
}

func merge(c entity.Company, r *reply) entity.Company {
	if name := extract.SanitizeText(r.Name); name != "" && (c.Name == "" || extract.IsGenericName(c.Name)) {
		c.Name = extract.Truncate(name, 120)
	}

	if c.Description == "" || c.Description == extract.PlaceholderDescription {
		if d := extract.SanitizeText(r.Description); d != "" && !extract.IsBoilerplate(d) {
			c.Description = extract.Truncate(d, extract.MaxDescriptionRunes)
		}
	}

	if onlySentinelIndustry(c.Industry) {
		var industry []string
		for _, v := range r.Industry {
			v = strings.ToLower(extract.SanitizeText(v))
			if v != "" && v != sentinelIndustryAll && !containsString(industry, v) {
				industry = append(industry, v)
			}
		}
		if len(industry) > 0 {
			if len(industry) > 5 {
				industry = industry[:5]
			}
			c.Industry = industry
		}
	}

	if len(c.Specialties) == 0 {
		if specialties := extract.InferSpecialties(r.Specialties, ""); len(specialties) > 0 {
			c.Specialties = specialties
		}
	}

	if c.ContactEmail == nil {
		c.ContactEmail = entity.StringPtr(extract.CleanEmail(r.ContactEmail))
	}
	if c.Phone == nil {
		c.Phone = entity.StringPtr(extract.CleanPhone(r.Phone))
	}
	if c.LocationCity == nil {
		c.LocationCity = entity.StringPtr(extract.SanitizeText(r.LocationCity))
	}
	if c.LocationCountry == nil {
		c.LocationCountry = entity.StringPtr(extract.SanitizeText(r.LocationCountry))
	}

	// A non-default size came from a headcount or explicit wording.
	if c.CompanySize == "" || c.CompanySize == entity.SizeSmall {
		if size, ok := NormalizeSize(r.CompanySize); ok {
			c.CompanySize = size
		}
	}
	return c
}

// NormalizeSize maps free-form size wording onto the size enum.
func NormalizeSize(raw string) (entity.CompanySize, bool) {
	size, ok := sizeSynonyms[strings.ToLower(strings.TrimSpace(raw))]
	return size, ok
}

func containsString(values []string, target string) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}
