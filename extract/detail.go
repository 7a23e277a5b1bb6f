package extract

import (
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/use-agent/maisonscan/models"
)

var (
	detailTitleSelectors = compileSelectors(
		`h1[itemprop="name"]`,
		"h1.listing-title",
		`[data-id="PageTitle"]`,
		"h1",
	)
	detailPriceSelectors = compileSelectors(
		`[itemprop="price"]`,
		"#buy-price",
		".price",
		".listing-price",
	)
	detailAddressSelectors = compileSelectors(
		`h2[itemprop="address"]`,
		`[itemprop="address"]`,
		".address",
		"h2.address",
	)
	detailDescriptionSelectors = compileSelectors(
		`[itemprop="description"]`,
		".description-text",
		"#description",
		".description",
	)
	detailFeatureSelectors = compileSelectors(
		"ul.features li",
		".feature-list li",
		`[data-testid="features"] li`,
	)
	detailImageSelectors = compileSelectors(
		".gallery img",
		".photos img",
		`[data-testid="gallery"] img`,
		"img.listing-photo",
	)
	detailSpecRowSelectors = compileSelectors(
		".carac-container",
		".spec-row",
		"table.specs tr",
		"dl.specs > div",
	)
	detailBrokerSelectors = compileSelectors(
		".broker-info",
		`[itemprop="seller"]`,
		".broker-card",
	)
	detailDateSelectors = compileSelectors(
		".listing-date",
		`[data-label="listing-date"]`,
		"time[datetime]",
	)
)

var (
	reMLSNumber = regexp.MustCompile(`(?i)(?:mls|centris)\s*(?:no\.?|#|:)?\s*(\d{6,})`)
	rePhone     = regexp.MustCompile(`\(?\d{3}\)?[\s.-]?\d{3}[\s.-]?\d{4}`)
)

// Spec-table row labels, matched as lowercase substrings against the
// row label text. First hit wins per row.
type specField int

const (
	specNone specField = iota
	specBedrooms
	specBathrooms
	specLivingArea
	specLotSize
	specYearBuilt
	specMunicipalTax
	specSchoolTax
	specPropertyType
)

var specLabels = []struct {
	field    specField
	keywords []string
}{
	{specBedrooms, []string{"chambre", "bedroom", "cac"}},
	{specBathrooms, []string{"salle de bain", "salles de bain", "bathroom", "sdb"}},
	{specLivingArea, []string{"superficie habitable", "living area", "superficie nette"}},
	{specLotSize, []string{"terrain", "lot size", "lot area", "superficie du terrain"}},
	{specYearBuilt, []string{"année de construction", "annee de construction", "year built", "construction"}},
	{specMunicipalTax, []string{"taxes municipales", "municipal tax"}},
	{specSchoolTax, []string{"taxes scolaires", "school tax"}},
	{specPropertyType, []string{"type de propriété", "type de propriete", "property type", "catégorie", "categorie"}},
}

// ParseDetailPage extracts the full field set from a listing's own page.
// Extraction is best-effort throughout: any field whose patterns miss is
// simply left unset.
func ParseDetailPage(rawHTML, sourceURL string, now time.Time) (*models.ListingDetail, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return nil, models.NewCrawlError(models.ErrCodeExtraction, "detail page is not parseable HTML", err)
	}

	base, _ := url.Parse(sourceURL)
	detail := &models.ListingDetail{}

	if sel := firstMatch(doc.Selection, detailTitleSelectors); sel != nil {
		detail.Title = cleanText(sel.Text())
	}
	if sel := firstMatch(doc.Selection, detailPriceSelectors); sel != nil {
		text := sel.AttrOr("content", "")
		if text == "" {
			text = sel.Text()
		}
		detail.Price = Price(text)
	}
	if sel := firstMatch(doc.Selection, detailAddressSelectors); sel != nil {
		detail.AddressRaw = cleanText(sel.Text())
	}
	if sel := firstMatch(doc.Selection, detailDescriptionSelectors); sel != nil {
		detail.Description = cleanText(sel.Text())
	}

	parseSpecRows(doc, detail)
	detail.Features = parseFeatures(doc)
	detail.Images = parseImages(doc, base)
	parseBroker(doc, detail)

	if m := reMLSNumber.FindStringSubmatch(doc.Text()); m != nil {
		detail.MLSNumber = m[1]
	}

	// Coordinates usually live in an inline map script, not the DOM.
	doc.Find("script").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if c := Coordinates(s.Text()); c != nil {
			detail.Latitude = &c.Latitude
			detail.Longitude = &c.Longitude
			return false
		}
		return true
	})

	if sel := firstMatch(doc.Selection, detailDateSelectors); sel != nil {
		text := sel.AttrOr("datetime", "")
		if text == "" {
			text = sel.Text()
		}
		detail.ListingDate = Date(text, now)
	}

	return detail, nil
}

// parseSpecRows walks the specification table rows, pairing each row's
// label with its value text and dispatching to the matching extractor.
func parseSpecRows(doc *goquery.Document, detail *models.ListingDetail) {
	for _, sel := range detailSpecRowSelectors {
		rows := doc.FindMatcher(sel)
		if rows.Length() == 0 {
			continue
		}
		rows.Each(func(_ int, row *goquery.Selection) {
			label, value := splitSpecRow(row)
			if label == "" {
				return
			}
			applySpec(detail, matchSpecLabel(label), value)
		})
		return
	}
}

// splitSpecRow supports dt/dd, th/td and title/value class pair markups.
// When no recognizable pair exists, the whole row text is the value and
// the label is its leading run (useful for "Année de construction 1995").
func splitSpecRow(row *goquery.Selection) (label, value string) {
	pairs := [][2]string{
		{"dt", "dd"},
		{"th", "td"},
		{".carac-title", ".carac-value"},
		{".spec-label", ".spec-value"},
	}
	for _, p := range pairs {
		l := row.Find(p[0]).First()
		v := row.Find(p[1]).First()
		if l.Length() > 0 && v.Length() > 0 {
			return cleanText(l.Text()), cleanText(v.Text())
		}
	}
	text := cleanText(row.Text())
	return text, text
}

func matchSpecLabel(label string) specField {
	lower := strings.ToLower(label)
	for _, entry := range specLabels {
		for _, kw := range entry.keywords {
			if strings.Contains(lower, kw) {
				return entry.field
			}
		}
	}
	return specNone
}

func applySpec(detail *models.ListingDetail, field specField, value string) {
	switch field {
	case specBedrooms:
		if detail.Bedrooms == nil {
			detail.Bedrooms = Count(value)
		}
	case specBathrooms:
		if detail.Bathrooms == nil {
			detail.Bathrooms = Count(value)
		}
	case specLivingArea:
		if detail.LivingArea == nil {
			detail.LivingArea = Area(value)
		}
	case specLotSize:
		if detail.LotSize == nil {
			detail.LotSize = Area(value)
		}
	case specYearBuilt:
		if detail.YearBuilt == nil {
			detail.YearBuilt = Year(value)
		}
	case specMunicipalTax:
		if detail.MunicipalTaxes == nil {
			detail.MunicipalTaxes = Price(value)
		}
	case specSchoolTax:
		if detail.SchoolTaxes == nil {
			detail.SchoolTaxes = Price(value)
		}
	case specPropertyType:
		if detail.PropertyType == "" {
			detail.PropertyType = stripSpecLabel(value)
		}
	}
}

// stripSpecLabel removes a leading label remnant from a whole-row value,
// e.g. "Type de propriété Maison à étages" → "Maison à étages".
func stripSpecLabel(value string) string {
	lower := strings.ToLower(value)
	for _, entry := range specLabels {
		if entry.field != specPropertyType {
			continue
		}
		for _, kw := range entry.keywords {
			if idx := strings.Index(lower, kw); idx == 0 {
				return strings.TrimSpace(value[len(kw):])
			}
		}
	}
	return value
}

func parseFeatures(doc *goquery.Document) []string {
	for _, sel := range detailFeatureSelectors {
		items := doc.FindMatcher(sel)
		if items.Length() == 0 {
			continue
		}
		var features []string
		seen := make(map[string]struct{})
		items.Each(func(_ int, s *goquery.Selection) {
			text := cleanText(s.Text())
			if text == "" {
				return
			}
			key := strings.ToLower(text)
			if _, dup := seen[key]; dup {
				return
			}
			seen[key] = struct{}{}
			features = append(features, text)
		})
		return features
	}
	return nil
}

// parseImages collects gallery image URLs: deduplicated, in document
// order, absolute.
func parseImages(doc *goquery.Document, base *url.URL) []string {
	for _, sel := range detailImageSelectors {
		imgs := doc.FindMatcher(sel)
		if imgs.Length() == 0 {
			continue
		}
		var images []string
		seen := make(map[string]struct{})
		imgs.Each(func(_ int, s *goquery.Selection) {
			src, ok := s.Attr("src")
			if !ok || src == "" || strings.HasPrefix(src, "data:") {
				src = s.AttrOr("data-src", "")
			}
			abs := resolveURL(base, src)
			if abs == "" {
				return
			}
			if _, dup := seen[abs]; dup {
				return
			}
			seen[abs] = struct{}{}
			images = append(images, abs)
		})
		return images
	}
	return nil
}

func parseBroker(doc *goquery.Document, detail *models.ListingDetail) {
	block := firstMatch(doc.Selection, detailBrokerSelectors)
	if block == nil {
		return
	}
	if name := block.Find(`.broker-name, [itemprop="name"]`).First(); name.Length() > 0 {
		detail.BrokerName = cleanText(name.Text())
	}
	if agency := block.Find(`.broker-agency, [itemprop="affiliation"]`).First(); agency.Length() > 0 {
		detail.BrokerAgency = cleanText(agency.Text())
	}
	if tel := block.Find(`a[href^="tel:"]`).First(); tel.Length() > 0 {
		detail.BrokerPhone = strings.TrimPrefix(tel.AttrOr("href", ""), "tel:")
	} else if m := rePhone.FindString(block.Text()); m != "" {
		detail.BrokerPhone = m
	}
}
