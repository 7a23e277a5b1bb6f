package extract

import (
	"regexp"
	"strings"

	"github.com/use-agent/maisonscan/models"
)

// Canadian postal code, e.g. "H2X 1Y6" or "h2x1y6".
var rePostalCode = regexp.MustCompile(`(?i)\b([A-Z]\d[A-Z])\s?(\d[A-Z]\d)\b`)

// ParseAddress decomposes a free-text address into structured subfields.
// The text is split on commas: position 0 is the street, 1 the city,
// 2 the region (with an embedded postal code pulled out when present),
// and 3, if present, overrides the postal code. Missing segments simply
// leave the corresponding field empty.
func ParseAddress(fullAddress string) models.Address {
	addr := models.Address{FullAddress: strings.TrimSpace(fullAddress)}

	var segments []string
	for _, seg := range strings.Split(fullAddress, ",") {
		if s := strings.TrimSpace(seg); s != "" {
			segments = append(segments, s)
		}
	}

	if len(segments) > 0 {
		addr.Street = segments[0]
	}
	if len(segments) > 1 {
		addr.City = segments[1]
	}
	if len(segments) > 2 {
		region := segments[2]
		if m := rePostalCode.FindStringSubmatch(region); m != nil {
			addr.PostalCode = normalizePostalCode(m[1], m[2])
			region = strings.TrimSpace(rePostalCode.ReplaceAllString(region, ""))
		}
		addr.Region = region
	}
	if len(segments) > 3 {
		if m := rePostalCode.FindStringSubmatch(segments[3]); m != nil {
			addr.PostalCode = normalizePostalCode(m[1], m[2])
		} else {
			addr.PostalCode = segments[3]
		}
	}

	return addr
}

func normalizePostalCode(fsa, ldu string) string {
	return strings.ToUpper(fsa) + " " + strings.ToUpper(ldu)
}
