// Package extract turns raw company web pages into structured candidate records.
package extract

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/octobees/company-discovery/internal/entity"
)

// Extraction is a pre-enrichment record plus the plain page text it was
// derived from. Text is internal and never returned to callers.
type Extraction struct {
	Company entity.Company
	Text    string
}

// page collects the signals read from either HTML or markdown input.
type page struct {
	ld              ldNode
	siteName        string
	socialTitle     string
	title           string
	h1              string
	metaDescription string
	metaKeywords    []string
	paragraphs      []string
	mailto          []string
	tel             []string
	text            string
}

var (
	titleSeparator  = regexp.MustCompile(`\s*(?:[|｜:：•·]|\s[-–—]\s)\s*`)
	htmlDocPattern  = regexp.MustCompile(`(?i)<(?:!doctype|html|head|body|meta|div|p|title)[\s>]`)
	mdHeadingPrefix = regexp.MustCompile(`^#{1,6}\s+`)
	mdLinkPattern   = regexp.MustCompile(`\[([^\]]*)\]\(([^)\s]+)(?:\s+"[^"]*")?\)`)
	mdImagePattern  = regexp.MustCompile(`!\[[^\]]*\]\([^)]*\)`)
	mdEmphasis      = regexp.MustCompile("[*_`>]+")
)

// Extract builds a candidate company record from page content fetched from
// pageURL. It returns nil when the content is empty or the URL has no host.
func Extract(content, pageURL, industryHint string) *Extraction {
	if strings.TrimSpace(content) == "" {
		return nil
	}
	u, err := url.Parse(pageURL)
	if err != nil || u.Host == "" {
		return nil
	}

	var p *page
	if htmlDocPattern.MatchString(content) {
		p = parseHTML(content)
	} else {
		p = parseMarkdown(content)
	}
	if p == nil {
		return nil
	}

	c := entity.Company{
		DataSource: entity.SourceWebScraping,
		WebsiteURL: entity.StringPtr(pageURL),
	}

	country, city := p.ld.address()
	if country != "" {
		country = countryName(country)
	}
	if country == "" || city == "" {
		inferredCountry, inferredCity := inferLocation(p.text)
		if country == "" {
			country = inferredCountry
		}
		if city == "" {
			city = inferredCity
		}
	}
	c.LocationCountry = entity.StringPtr(SanitizeText(country))
	c.LocationCity = entity.StringPtr(SanitizeText(city))

	if email := CleanEmail(p.ld.str("email")); email != "" {
		c.ContactEmail = &email
	} else if email := firstEmail(p.mailto); email != "" {
		c.ContactEmail = &email
	} else if email := findEmail(p.text); email != "" {
		c.ContactEmail = &email
	}

	if phone := CleanPhone(p.ld.str("telephone")); phone != "" {
		c.Phone = &phone
	} else if phone := firstTel(p.tel); phone != "" {
		c.Phone = &phone
	} else if phone := findPhone(p.text, country); phone != "" {
		c.Phone = &phone
	}

	structured := append(p.ld.list("industry"), p.ld.list("keywords")...)
	structured = append(structured, p.ld.list("knowsAbout")...)
	c.Industry = InferIndustry(industryHint, structured, p.text+" "+strings.Join(p.metaKeywords, " "))

	keywords := append(append([]string(nil), p.metaKeywords...), p.ld.list("keywords")...)
	keywords = append(keywords, p.ld.list("knowsAbout")...)
	c.Specialties = InferSpecialties(keywords, p.text)

	employees, _ := p.ld.employees()
	c.CompanySize = InferSize(employees, p.text)

	c.Description = resolveDescription(p)
	c.Name = resolveName(p, pageURL, c.Industry, city)

	return &Extraction{Company: c, Text: p.text}
}

func resolveName(p *page, pageURL string, industry []string, city string) string {
	candidates := []string{
		p.ld.str("name"),
		p.siteName,
		stripTitleSuffix(p.socialTitle),
		stripTitleSuffix(p.title),
		stripTitleSuffix(p.h1),
	}
	for _, candidate := range candidates {
		name := SanitizeText(candidate)
		if name == "" || IsGenericName(name) || looksLikeHTML(name) {
			continue
		}
		return Truncate(name, 120)
	}
	return DisplayName(pageURL, industry, city)
}

func resolveDescription(p *page) string {
	for _, candidate := range []string{p.ld.str("description"), p.metaDescription} {
		if d := SanitizeText(candidate); d != "" && !IsBoilerplate(d) {
			return Truncate(d, MaxDescriptionRunes)
		}
	}
	for _, para := range p.paragraphs {
		if looksLikeHTML(para) {
			continue
		}
		d := SanitizeText(para)
		n := len([]rune(d))
		if n < 60 || n > 400 || IsBoilerplate(d) {
			continue
		}
		return Truncate(d, MaxDescriptionRunes)
	}
	return PlaceholderDescription
}

// stripTitleSuffix keeps the part of a page title before the first separator.
func stripTitleSuffix(title string) string {
	title = strings.TrimSpace(title)
	if title == "" {
		return ""
	}
	for _, part := range titleSeparator.Split(title, -1) {
		if part = strings.TrimSpace(part); part != "" {
			return part
		}
	}
	return ""
}

func parseHTML(content string) *page {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return nil
	}

	p := &page{ld: findOrganization(doc)}
	meta := func(attr, key string) string {
		v, _ := doc.Find(`meta[` + attr + `="` + key + `"]`).First().Attr("content")
		return strings.TrimSpace(v)
	}
	p.siteName = meta("property", "og:site_name")
	p.socialTitle = meta("property", "og:title")
	if p.socialTitle == "" {
		p.socialTitle = meta("name", "twitter:title")
	}
	p.title = strings.TrimSpace(doc.Find("title").First().Text())
	p.h1 = strings.TrimSpace(doc.Find("h1").First().Text())
	p.metaDescription = meta("name", "description")
	if p.metaDescription == "" {
		p.metaDescription = meta("property", "og:description")
	}
	p.metaKeywords = splitKeywords(meta("name", "keywords"))

	doc.Find(`a[href^="mailto:"]`).Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		p.mailto = append(p.mailto, href)
	})
	doc.Find(`a[href^="tel:"]`).Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		p.tel = append(p.tel, href)
	})

	doc.Find("script, style, noscript, template").Remove()
	doc.Find("p").Each(func(_ int, s *goquery.Selection) {
		p.paragraphs = append(p.paragraphs, s.Text())
	})

	var sb strings.Builder
	doc.Find("body").Each(func(_ int, s *goquery.Selection) {
		s.Find("br, p, div, li, h1, h2, h3, h4, td, tr, section, footer, header, address").Each(func(_ int, el *goquery.Selection) {
			el.AppendHtml("\n")
		})
		sb.WriteString(s.Text())
	})
	if sb.Len() == 0 {
		sb.WriteString(doc.Text())
	}
	p.text = collapseLines(sb.String())
	return p
}

func parseMarkdown(content string) *page {
	p := &page{}
	for _, m := range mdLinkPattern.FindAllStringSubmatch(content, -1) {
		switch {
		case strings.HasPrefix(m[2], "mailto:"):
			p.mailto = append(p.mailto, m[2])
		case strings.HasPrefix(m[2], "tel:"):
			p.tel = append(p.tel, m[2])
		}
	}

	stripped := mdImagePattern.ReplaceAllString(content, "")
	stripped = mdLinkPattern.ReplaceAllString(stripped, "$1")

	var block []string
	flush := func() {
		if len(block) > 0 {
			p.paragraphs = append(p.paragraphs, strings.Join(block, " "))
			block = nil
		}
	}
	var lines []string
	for _, raw := range strings.Split(stripped, "\n") {
		line := strings.TrimSpace(raw)
		switch {
		case line == "":
			flush()
		case mdHeadingPrefix.MatchString(line):
			flush()
			heading := strings.TrimSpace(mdHeadingPrefix.ReplaceAllString(line, ""))
			if strings.HasPrefix(line, "# ") && p.title == "" {
				p.title = heading
				p.h1 = heading
			}
			line = heading
		case strings.HasPrefix(line, "- "), strings.HasPrefix(line, "* "), strings.HasPrefix(line, "|"):
			flush()
		default:
			block = append(block, mdEmphasis.ReplaceAllString(line, ""))
		}
		lines = append(lines, mdEmphasis.ReplaceAllString(line, ""))
	}
	flush()
	p.text = collapseLines(strings.Join(lines, "\n"))
	return p
}

// collapseLines keeps line breaks, which the location and specialty patterns
// rely on, while collapsing runs of spaces.
func collapseLines(s string) string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		if line = strings.Join(strings.Fields(line), " "); line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}

func firstEmail(hrefs []string) string {
	for _, h := range hrefs {
		if email := CleanEmail(h); email != "" {
			return email
		}
	}
	return ""
}

func firstTel(hrefs []string) string {
	for _, h := range hrefs {
		if tel := CleanPhone(h); tel != "" {
			return tel
		}
	}
	return ""
}
