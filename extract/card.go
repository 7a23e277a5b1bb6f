package extract

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"

	"github.com/use-agent/maisonscan/models"
)

// SearchPage is the result of parsing one search-results page.
type SearchPage struct {
	Summaries []models.ListingSummary
	// NextURL is the resolved "next page" link, or "" when none was
	// found. The scheduler decides whether to follow it.
	NextURL string
}

// Selector fallback lists, ordered most-specific first. Compiled once;
// a site markup change means appending here, nothing else.
var (
	cardSelectors = compileSelectors(
		".property-thumbnail-item",
		`[data-testid="listing-card"]`,
		"article.listing",
		".listing-card",
		`[itemtype="https://schema.org/Offer"]`,
	)
	cardPriceSelectors = compileSelectors(
		".price",
		`[itemprop="price"]`,
		".property-price",
		".listing-price",
	)
	cardAddressSelectors = compileSelectors(
		".address",
		`[itemprop="address"]`,
		".property-address",
		".listing-address",
	)
	cardTypeSelectors = compileSelectors(
		".category",
		".property-type",
		`[itemprop="category"]`,
		".listing-category",
	)
	cardBedroomsSelectors = compileSelectors(
		".cac",
		".bedrooms",
		`[data-label="bedrooms"]`,
	)
	cardBathroomsSelectors = compileSelectors(
		".sdb",
		".bathrooms",
		`[data-label="bathrooms"]`,
	)
	nextLinkSelectors = compileSelectors(
		`a[rel="next"]`,
		"li.next a[href]",
		"a.next[href]",
		`a[aria-label="Next"]`,
		`a[aria-label="Suivant"]`,
	)
)

// Listing IDs embedded in listing URLs, e.g. ".../maison-a-vendre/12345678".
var reListingID = regexp.MustCompile(`(\d{5,})`)

// ParseSearchPage extracts listing summary cards and the next-page link
// from a rendered search-results page. A page with no recognizable
// cards is not an error: the caller treats it as end-of-results.
func ParseSearchPage(rawHTML, sourceURL string) (*SearchPage, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return nil, models.NewCrawlError(models.ErrCodeExtraction, "search page is not parseable HTML", err)
	}

	base, err := url.Parse(sourceURL)
	if err != nil {
		base = nil
	}

	page := &SearchPage{}
	seen := make(map[string]struct{})

	for _, card := range firstNonEmpty(doc, cardSelectors) {
		summary, ok := parseCard(card, base)
		if !ok {
			continue
		}
		if _, dup := seen[summary.SourceURL]; dup {
			continue
		}
		seen[summary.SourceURL] = struct{}{}
		page.Summaries = append(page.Summaries, summary)
	}

	if link := firstMatch(doc.Selection, nextLinkSelectors); link != nil {
		if href, ok := link.Attr("href"); ok {
			page.NextURL = resolveURL(base, href)
		}
	}

	return page, nil
}

// parseCard reads one summary card. A card without a usable listing link
// is dropped: the URL is the record identity for the whole run.
func parseCard(card *goquery.Selection, base *url.URL) (models.ListingSummary, bool) {
	var summary models.ListingSummary

	link := card.Find("a[href]").First()
	href, ok := link.Attr("href")
	if !ok || href == "" {
		return summary, false
	}
	summary.SourceURL = resolveURL(base, href)
	if summary.SourceURL == "" {
		return summary, false
	}

	if u, err := url.Parse(summary.SourceURL); err == nil {
		if m := reListingID.FindString(u.Path); m != "" {
			summary.ExternalID = m
		}
	}

	if sel := firstMatch(card, cardPriceSelectors); sel != nil {
		summary.PriceRaw = cleanText(sel.Text())
		summary.Price = Price(summary.PriceRaw)
	}
	if sel := firstMatch(card, cardAddressSelectors); sel != nil {
		summary.AddressRaw = cleanText(sel.Text())
	}
	if sel := firstMatch(card, cardTypeSelectors); sel != nil {
		summary.PropertyTypeRaw = cleanText(sel.Text())
	}
	if sel := firstMatch(card, cardBedroomsSelectors); sel != nil {
		summary.Bedrooms = Count(sel.Text())
	}
	if sel := firstMatch(card, cardBathroomsSelectors); sel != nil {
		summary.Bathrooms = Count(sel.Text())
	}

	if img := card.Find("img").First(); img.Length() > 0 {
		src, ok := img.Attr("src")
		if !ok || src == "" || strings.HasPrefix(src, "data:") {
			src, _ = img.Attr("data-src")
		}
		if src != "" && !strings.HasPrefix(src, "data:") {
			summary.MainImageURL = resolveURL(base, src)
		}
	}

	return summary, true
}

// firstNonEmpty returns the matches of the first selector in the list
// that matches at least one element.
func firstNonEmpty(doc *goquery.Document, selectors []cascadia.Selector) []*goquery.Selection {
	for _, sel := range selectors {
		matched := doc.FindMatcher(sel)
		if matched.Length() == 0 {
			continue
		}
		nodes := make([]*goquery.Selection, 0, matched.Length())
		matched.Each(func(_ int, s *goquery.Selection) {
			nodes = append(nodes, s)
		})
		return nodes
	}
	return nil
}

// firstMatch returns the first element matched by the first selector
// that matches anything inside root, or nil.
func firstMatch(root *goquery.Selection, selectors []cascadia.Selector) *goquery.Selection {
	for _, sel := range selectors {
		if matched := root.FindMatcher(sel); matched.Length() > 0 {
			return matched.First()
		}
	}
	return nil
}

func compileSelectors(raw ...string) []cascadia.Selector {
	out := make([]cascadia.Selector, 0, len(raw))
	for _, r := range raw {
		out = append(out, cascadia.MustCompile(r))
	}
	return out
}

// resolveURL resolves href against base and keeps only http(s) results.
func resolveURL(base *url.URL, href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	var resolved *url.URL
	var err error
	if base != nil {
		resolved, err = base.Parse(href)
	} else {
		resolved, err = url.Parse(href)
	}
	if err != nil {
		return ""
	}
	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return ""
	}
	resolved.Fragment = ""
	return resolved.String()
}

var reWhitespace = regexp.MustCompile(`\s+`)

func cleanText(s string) string {
	return strings.TrimSpace(reWhitespace.ReplaceAllString(s, " "))
}
