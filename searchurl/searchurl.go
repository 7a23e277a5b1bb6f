// Package searchurl builds canonical search URLs for the listings site.
// Filter values become query parameters on a best-effort basis: the
// upstream endpoint may ignore them, which is why the pipeline always
// filters client-side after extraction. URL-level filtering is an
// optimization, never the correctness boundary.
package searchurl

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/use-agent/maisonscan/filter"
)

const siteBase = "https://www.centris.ca"

// Query carries everything the builder needs to produce one search URL.
type Query struct {
	Region        string
	SearchType    string // "buy" or "rent"
	Language      string // "fr" or "en"
	Neighborhoods []string
	Features      []string
	ListingAge    string // "24h", "7days", "30days", "90days", "any"
	SortBy        string
	Filters       filter.Spec
}

// regionSlugs maps normalized (lowercase, accent-folded) region names to
// their canonical URL slug. Covers FR/EN and accented/unaccented
// variants; misses fall back to slugifying the input.
var regionSlugs = map[string]string{
	"montreal":             "montreal",
	"montreal island":      "montreal",
	"ile de montreal":      "montreal",
	"quebec":               "quebec",
	"quebec city":          "quebec",
	"ville de quebec":      "quebec",
	"laval":                "laval",
	"gatineau":             "gatineau",
	"sherbrooke":           "sherbrooke",
	"trois-rivieres":       "trois-rivieres",
	"trois rivieres":       "trois-rivieres",
	"longueuil":            "longueuil",
	"levis":                "levis",
	"saguenay":             "saguenay",
	"terrebonne":           "terrebonne",
	"rive-nord":            "rive-nord",
	"rive nord":            "rive-nord",
	"north shore":          "rive-nord",
	"rive-sud":             "rive-sud",
	"rive sud":             "rive-sud",
	"south shore":          "rive-sud",
	"estrie":               "estrie",
	"eastern townships":    "estrie",
	"cantons-de-l'est":     "estrie",
	"cantons de l'est":     "estrie",
	"outaouais":            "outaouais",
	"laurentides":          "laurentides",
	"laurentians":          "laurentides",
	"monteregie":           "monteregie",
	"mauricie":             "mauricie",
	"lanaudiere":           "lanaudiere",
	"bas-saint-laurent":    "bas-saint-laurent",
	"gaspesie":             "gaspesie",
	"abitibi":              "abitibi-temiscamingue",
	"charlevoix":           "charlevoix",
	"chaudiere-appalaches": "chaudiere-appalaches",
}

// accentFolder strips the accents the FR region names use.
var accentFolder = strings.NewReplacer(
	"à", "a", "â", "a", "ä", "a",
	"é", "e", "è", "e", "ê", "e", "ë", "e",
	"î", "i", "ï", "i",
	"ô", "o", "ö", "o",
	"ù", "u", "û", "u", "ü", "u",
	"ç", "c", "œ", "oe",
)

// RegionSlug resolves a free-text region name to its canonical slug,
// falling back to a slugified version of the input on a table miss.
func RegionSlug(region string) string {
	key := strings.Join(strings.Fields(accentFolder.Replace(strings.ToLower(strings.TrimSpace(region)))), " ")
	if slug, ok := regionSlugs[key]; ok {
		return slug
	}
	return Slugify(region)
}

// Slugify lowercases, folds accents, and converts whitespace runs to
// single hyphens.
func Slugify(s string) string {
	s = accentFolder.Replace(strings.ToLower(strings.TrimSpace(s)))
	return strings.Join(strings.Fields(s), "-")
}

// pathSegment returns the transaction path segment for the language,
// e.g. fr+buy → "proprietes~a-vendre".
func pathSegment(searchType, language string) string {
	rent := searchType == "rent"
	if language == "fr" {
		if rent {
			return "proprietes~a-louer"
		}
		return "proprietes~a-vendre"
	}
	if rent {
		return "properties~for-rent"
	}
	return "properties~for-sale"
}

// Build produces the canonical absolute search URL for the query. It is
// pure and deterministic: identical inputs yield byte-identical strings,
// which the scheduler relies on for URL-identity dedup.
func Build(q Query) string {
	lang := q.Language
	if lang != "fr" {
		lang = "en"
	}

	u := url.URL{
		Scheme: "https",
		Host:   strings.TrimPrefix(siteBase, "https://"),
		Path:   "/" + lang + "/" + pathSegment(q.SearchType, lang) + "~" + RegionSlug(q.Region),
	}

	params := url.Values{}
	addRangeHint(params, "price", q.Filters.Price)
	addRangeHint(params, "beds", q.Filters.Bedrooms)
	addRangeHint(params, "baths", q.Filters.Bathrooms)
	addRangeHint(params, "area", q.Filters.LivingArea)
	addRangeHint(params, "lot", q.Filters.LotSize)
	addRangeHint(params, "year", q.Filters.YearBuilt)

	if len(q.Neighborhoods) > 0 {
		slugs := make([]string, 0, len(q.Neighborhoods))
		for _, n := range q.Neighborhoods {
			if slug := Slugify(n); slug != "" {
				slugs = append(slugs, slug)
			}
		}
		if len(slugs) > 0 {
			params.Set("areas", strings.Join(slugs, ","))
		}
	}
	if len(q.Features) > 0 {
		slugs := make([]string, 0, len(q.Features))
		for _, f := range q.Features {
			if slug := Slugify(f); slug != "" {
				slugs = append(slugs, slug)
			}
		}
		if len(slugs) > 0 {
			params.Set("features", strings.Join(slugs, ","))
		}
	}
	if age := listingAgeParam(q.ListingAge); age != "" {
		params.Set("age", age)
	}
	if q.SortBy != "" {
		params.Set("sort", q.SortBy)
	}

	// url.Values.Encode sorts keys, keeping the output deterministic.
	u.RawQuery = params.Encode()
	return u.String()
}

// PageURL canonicalizes a pagination URL: page 1 is the bare URL, later
// pages carry an explicit page parameter.
func PageURL(baseURL string, page int) string {
	if page <= 1 {
		return baseURL
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return baseURL
	}
	params := u.Query()
	params.Set("page", strconv.Itoa(page))
	u.RawQuery = params.Encode()
	return u.String()
}

func addRangeHint(params url.Values, name string, r filter.Range) {
	if r.Min > 0 {
		params.Set(name+"-min", strconv.Itoa(r.Min))
	}
	if r.Max > 0 {
		params.Set(name+"-max", strconv.Itoa(r.Max))
	}
}

func listingAgeParam(age string) string {
	switch age {
	case "24h":
		return "1"
	case "7days":
		return "7"
	case "30days":
		return "30"
	case "90days":
		return "90"
	default:
		return ""
	}
}
