// Package extract turns uncontrolled page text and markup into typed
// listing fields. Every extractor is best-effort: it tries an ordered
// list of recognition patterns and resolves to nil on a miss, never an
// error. Markup drift is expected to land here and nowhere else.
package extract

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/use-agent/maisonscan/models"
)

// Kind tags the field extractors for callers that dispatch generically.
type Kind string

const (
	KindPrice       Kind = "price"
	KindCount       Kind = "integer-count"
	KindArea        Kind = "area"
	KindYear        Kind = "year"
	KindDate        Kind = "date"
	KindCoordinates Kind = "coordinates"
)

// sqMetersToSqFeet converts m² to ft² (1 ft = 0.3048 m).
const sqMetersToSqFeet = 1.0 / (0.3048 * 0.3048)

var (
	reDigits = regexp.MustCompile(`\d`)

	// "3 + 1" style counts (above + below grade) come before plain integers.
	rePlusCount = regexp.MustCompile(`(\d+)\s*\+\s*(\d+)`)
	reFirstInt  = regexp.MustCompile(`\d+`)

	reAreaImperial = regexp.MustCompile(`(?i)([\d\s\x{00a0}\x{202f},.]+?)\s*(?:pi2|pi²|pc\b|sq\.?\s?ft|sqft|ft2|ft²)`)
	reAreaMetric   = regexp.MustCompile(`(?i)([\d\s\x{00a0}\x{202f},.]+?)\s*(?:m2|m²|mètres? carrés|metres? carres|square met(?:er|re)s?)`)

	reYear = regexp.MustCompile(`\b(1[6-9]\d{2}|20\d{2})\b`)

	reISODate   = regexp.MustCompile(`\b(\d{4})-(\d{2})-(\d{2})\b`)
	reENDate    = regexp.MustCompile(`(?i)\b(january|february|march|april|may|june|july|august|september|october|november|december)\s+(\d{1,2})(?:st|nd|rd|th)?,?\s+(\d{4})`)
	reFRDate    = regexp.MustCompile(`(?i)\b(\d{1,2})(?:er)?\s+(janvier|février|fevrier|mars|avril|mai|juin|juillet|août|aout|septembre|octobre|novembre|décembre|decembre)\s+(\d{4})`)
	reDaysAgoEN = regexp.MustCompile(`(?i)\b(\d+)\s+days?\s+ago`)
	reDaysAgoFR = regexp.MustCompile(`(?i)il y a\s+(\d+)\s+jours?`)

	rePairCoords = regexp.MustCompile(`(-?\d{1,3}\.\d+)\s*[,;]\s*(-?\d{1,3}\.\d+)`)
	reLatNamed   = regexp.MustCompile(`(?i)"?lat(?:itude)?"?\s*[:=]\s*"?(-?\d{1,3}\.\d+)`)
	reLngNamed   = regexp.MustCompile(`(?i)"?(?:lng|lon|longitude)"?\s*[:=]\s*"?(-?\d{1,3}\.\d+)`)
)

var enMonths = map[string]time.Month{
	"january": time.January, "february": time.February, "march": time.March,
	"april": time.April, "may": time.May, "june": time.June, "july": time.July,
	"august": time.August, "september": time.September, "october": time.October,
	"november": time.November, "december": time.December,
}

var frMonths = map[string]time.Month{
	"janvier": time.January, "février": time.February, "fevrier": time.February,
	"mars": time.March, "avril": time.April, "mai": time.May, "juin": time.June,
	"juillet": time.July, "août": time.August, "aout": time.August,
	"septembre": time.September, "octobre": time.October,
	"novembre": time.November, "décembre": time.December, "decembre": time.December,
}

// Price strips every non-digit character from the fragment and parses
// the remainder. An empty remainder yields nil, never zero: zero is a
// legitimate price ("0 $") and must stay distinguishable from unknown.
func Price(fragment string) *int {
	digits := strings.Join(reDigits.FindAllString(fragment, -1), "")
	if digits == "" {
		return nil
	}
	n, err := strconv.Atoi(digits)
	if err != nil {
		// Overflow on absurdly long digit runs; treat as unknown.
		return nil
	}
	return &n
}

// Count extracts a small non-negative integer count (bedrooms,
// bathrooms, garages). "3 + 1" phrasings sum both parts.
func Count(fragment string) *int {
	if m := rePlusCount.FindStringSubmatch(fragment); m != nil {
		a, errA := strconv.Atoi(m[1])
		b, errB := strconv.Atoi(m[2])
		if errA == nil && errB == nil {
			n := a + b
			return &n
		}
	}
	if m := reFirstInt.FindString(fragment); m != "" {
		if n, err := strconv.Atoi(m); err == nil {
			return &n
		}
	}
	return nil
}

// Area extracts a surface area and normalizes it to square feet so all
// downstream comparisons are unit-consistent. Metric values are
// converted and rounded to the nearest integer.
func Area(fragment string) *int {
	if m := reAreaImperial.FindStringSubmatch(fragment); m != nil {
		if v := parseLocalizedNumber(m[1]); v != nil {
			n := int(*v + 0.5)
			return &n
		}
	}
	if m := reAreaMetric.FindStringSubmatch(fragment); m != nil {
		if v := parseLocalizedNumber(m[1]); v != nil {
			n := int(*v*sqMetersToSqFeet + 0.5)
			return &n
		}
	}
	return nil
}

// SquareFeetToSquareMeters is the inverse conversion, exposed for
// callers that need to echo metric values back.
func SquareFeetToSquareMeters(sqft int) int {
	return int(float64(sqft)/sqMetersToSqFeet + 0.5)
}

// Year extracts a plausible construction year (1600–2099).
func Year(fragment string) *int {
	if m := reYear.FindStringSubmatch(fragment); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			return &n
		}
	}
	return nil
}

// Date extracts a calendar date from ISO, English or French phrasings,
// falling back to relative "N days ago" / "il y a N jours" forms
// resolved against now.
func Date(fragment string, now time.Time) *time.Time {
	if m := reISODate.FindStringSubmatch(fragment); m != nil {
		y, _ := strconv.Atoi(m[1])
		mo, _ := strconv.Atoi(m[2])
		d, _ := strconv.Atoi(m[3])
		if mo >= 1 && mo <= 12 && d >= 1 && d <= 31 {
			t := time.Date(y, time.Month(mo), d, 0, 0, 0, 0, time.UTC)
			return &t
		}
	}
	if m := reENDate.FindStringSubmatch(fragment); m != nil {
		mo := enMonths[strings.ToLower(m[1])]
		d, _ := strconv.Atoi(m[2])
		y, _ := strconv.Atoi(m[3])
		if mo != 0 && d >= 1 && d <= 31 {
			t := time.Date(y, mo, d, 0, 0, 0, 0, time.UTC)
			return &t
		}
	}
	if m := reFRDate.FindStringSubmatch(fragment); m != nil {
		d, _ := strconv.Atoi(m[1])
		mo := frMonths[strings.ToLower(m[2])]
		y, _ := strconv.Atoi(m[3])
		if mo != 0 && d >= 1 && d <= 31 {
			t := time.Date(y, mo, d, 0, 0, 0, 0, time.UTC)
			return &t
		}
	}
	for _, re := range []*regexp.Regexp{reDaysAgoEN, reDaysAgoFR} {
		if m := re.FindStringSubmatch(fragment); m != nil {
			n, err := strconv.Atoi(m[1])
			if err != nil {
				continue
			}
			t := now.UTC().AddDate(0, 0, -n).Truncate(24 * time.Hour)
			return &t
		}
	}
	lower := strings.ToLower(fragment)
	if strings.Contains(lower, "today") || strings.Contains(lower, "aujourd'hui") {
		t := now.UTC().Truncate(24 * time.Hour)
		return &t
	}
	if strings.Contains(lower, "yesterday") || strings.Contains(lower, "hier") {
		t := now.UTC().AddDate(0, 0, -1).Truncate(24 * time.Hour)
		return &t
	}
	return nil
}

// Coordinates extracts a latitude/longitude pair from free text, such
// as an embedded map script. Out-of-range pairs are rejected.
func Coordinates(fragment string) *models.Coordinates {
	if m := rePairCoords.FindStringSubmatch(fragment); m != nil {
		if c := coordsFrom(m[1], m[2]); c != nil {
			return c
		}
	}
	latM := reLatNamed.FindStringSubmatch(fragment)
	lngM := reLngNamed.FindStringSubmatch(fragment)
	if latM != nil && lngM != nil {
		return coordsFrom(latM[1], lngM[1])
	}
	return nil
}

func coordsFrom(latS, lngS string) *models.Coordinates {
	lat, errLat := strconv.ParseFloat(latS, 64)
	lng, errLng := strconv.ParseFloat(lngS, 64)
	if errLat != nil || errLng != nil {
		return nil
	}
	if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return nil
	}
	return &models.Coordinates{Latitude: lat, Longitude: lng}
}

// parseLocalizedNumber parses "1 200", "1,200", "1 200,5" and plain
// numbers, tolerating non-breaking spaces used as FR thousand separators.
func parseLocalizedNumber(s string) *float64 {
	s = strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\u00a0', '\u202f':
			return -1
		}
		return r
	}, s)
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}

	// A single comma followed by 1-2 digits is an FR decimal mark;
	// every other comma is a thousands separator.
	if i := strings.LastIndexByte(s, ','); i >= 0 {
		frac := s[i+1:]
		if strings.Count(s, ",") == 1 && len(frac) > 0 && len(frac) <= 2 {
			s = s[:i] + "." + frac
		} else {
			s = strings.ReplaceAll(s, ",", "")
		}
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}
