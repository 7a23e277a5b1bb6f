// Package filter evaluates normalized listings against the run's filter
// specification. URL-level filter parameters are hints the upstream site
// may ignore, so this client-side pass is the correctness boundary.
package filter

import (
	"strings"

	"github.com/use-agent/maisonscan/models"
)

// Range is a numeric bound pair. A value of 0 on either side means
// unbounded on that side, never "must equal zero".
type Range struct {
	Min int
	Max int
}

// Spec is the immutable filter specification built once from run
// configuration.
type Spec struct {
	Price      Range
	Bedrooms   Range
	Bathrooms  Range
	LivingArea Range
	LotSize    Range
	YearBuilt  Range

	// PropertyTypes maps each requested category to its accepted
	// synonym substrings. Empty map: all property types pass.
	PropertyTypes map[string][]string
}

// Category synonym table: requested category (lowercase) → substrings
// accepted in the listing's free-text property type, both languages.
var propertyTypeSynonyms = map[string][]string{
	"house":     {"maison", "house", "bungalow", "cottage", "étages", "etages", "plain-pied", "unifamiliale"},
	"condo":     {"condo", "appartement", "apartment", "copropriété", "copropriete", "loft", "studio"},
	"plex":      {"duplex", "triplex", "quadruplex", "quintuplex", "plex", "revenus", "income"},
	"land":      {"terrain", "land", "lot", "vacant"},
	"cottage":   {"chalet", "cottage", "bord de l'eau", "waterfront"},
	"farm":      {"ferme", "farm", "fermette", "hobby farm", "agricole"},
	"commerce":  {"commercial", "commerce", "bureau", "office", "industriel", "industrial"},
	"townhouse": {"jumelé", "jumele", "townhouse", "rangée", "rangee", "semi-detached"},
}

// NewSpec builds a Spec from requested property-type categories and the
// configured bounds. Unknown categories fall back to matching their own
// name as a substring, so an unrecognized request degrades instead of
// silently matching nothing.
func NewSpec(price, bedrooms, bathrooms, livingArea, lotSize, yearBuilt Range, propertyTypes []string) Spec {
	spec := Spec{
		Price:      price,
		Bedrooms:   bedrooms,
		Bathrooms:  bathrooms,
		LivingArea: livingArea,
		LotSize:    lotSize,
		YearBuilt:  yearBuilt,
	}
	if len(propertyTypes) > 0 {
		spec.PropertyTypes = make(map[string][]string, len(propertyTypes))
		for _, requested := range propertyTypes {
			key := strings.ToLower(strings.TrimSpace(requested))
			if key == "" {
				continue
			}
			if synonyms, ok := propertyTypeSynonyms[key]; ok {
				spec.PropertyTypes[key] = synonyms
			} else {
				spec.PropertyTypes[key] = []string{key}
			}
		}
	}
	return spec
}

// Matches reports whether the record passes every active bound. It is
// pure and total.
//
// A nil (unknown) record field never causes rejection on a range bound:
// extraction is best-effort and lossy, and treating unknown as reject
// would shrink results unpredictably with markup drift.
func Matches(record *models.NormalizedListing, spec Spec) bool {
	if !MatchesBounds(record, spec) {
		return false
	}
	return matchesPropertyType(record.PropertyType, spec.PropertyTypes)
}

// MatchesBounds checks only the numeric range bounds, not the
// property-type categories. Used for the cheap pre-filter on summary
// cards, whose free-text category label is less reliable than the
// detail page's.
func MatchesBounds(record *models.NormalizedListing, spec Spec) bool {
	if !inRange(record.Price, spec.Price) {
		return false
	}
	if !inRange(record.Bedrooms, spec.Bedrooms) {
		return false
	}
	if !inRange(record.Bathrooms, spec.Bathrooms) {
		return false
	}
	if !inRange(record.LivingArea, spec.LivingArea) {
		return false
	}
	if !inRange(record.LotSize, spec.LotSize) {
		return false
	}
	return inRange(record.YearBuilt, spec.YearBuilt)
}

func inRange(value *int, bound Range) bool {
	if value == nil {
		return true
	}
	if bound.Min > 0 && *value < bound.Min {
		return false
	}
	if bound.Max > 0 && *value > bound.Max {
		return false
	}
	return true
}

func matchesPropertyType(propertyType string, categories map[string][]string) bool {
	if len(categories) == 0 {
		return true
	}
	lower := strings.ToLower(propertyType)
	for _, synonyms := range categories {
		for _, syn := range synonyms {
			if strings.Contains(lower, syn) {
				return true
			}
		}
	}
	return false
}
