package extract

import (
	"strconv"
	"time"

	"github.com/use-agent/maisonscan/models"
)

// Merge builds the canonical output record from a summary-card
// extraction and an optional detail-page extraction. Detail fields win
// on every key they define; summary fields fill the gaps. The
// transaction type and ScrapedAt timestamp are set here and nowhere
// else, so the timestamp reflects completion of extraction.
func Merge(summary models.ListingSummary, detail *models.ListingDetail, tx models.TransactionType) models.NormalizedListing {
	now := time.Now().UTC()

	listing := models.NormalizedListing{
		ID:              summary.ExternalID,
		ExternalID:      summary.ExternalID,
		URL:             summary.SourceURL,
		Price:           nonNegative(summary.Price),
		PropertyType:    summary.PropertyTypeRaw,
		TransactionType: tx,
		Bedrooms:        nonNegative(summary.Bedrooms),
		Bathrooms:       nonNegative(summary.Bathrooms),
		ScrapedAt:       now,
	}

	addressRaw := summary.AddressRaw
	if summary.MainImageURL != "" {
		listing.Images = []string{summary.MainImageURL}
	}

	if detail != nil {
		if detail.Title != "" {
			listing.Title = detail.Title
		}
		if detail.Price != nil {
			listing.Price = nonNegative(detail.Price)
		}
		if detail.AddressRaw != "" {
			addressRaw = detail.AddressRaw
		}
		if detail.PropertyType != "" {
			listing.PropertyType = detail.PropertyType
		}
		if detail.Bedrooms != nil {
			listing.Bedrooms = nonNegative(detail.Bedrooms)
		}
		if detail.Bathrooms != nil {
			listing.Bathrooms = nonNegative(detail.Bathrooms)
		}
		listing.LivingArea = nonNegative(detail.LivingArea)
		listing.LotSize = nonNegative(detail.LotSize)
		listing.YearBuilt = detail.YearBuilt
		listing.Features = detail.Features
		listing.Description = detail.Description
		listing.MLSNumber = detail.MLSNumber
		listing.MunicipalTaxes = nonNegative(detail.MunicipalTaxes)
		listing.SchoolTaxes = nonNegative(detail.SchoolTaxes)

		if len(detail.Images) > 0 {
			listing.Images = dedupeOrdered(detail.Images)
		}
		if detail.BrokerName != "" || detail.BrokerAgency != "" || detail.BrokerPhone != "" {
			listing.Broker = &models.Broker{
				Name:   detail.BrokerName,
				Agency: detail.BrokerAgency,
				Phone:  detail.BrokerPhone,
			}
		}
		if detail.Latitude != nil && detail.Longitude != nil {
			listing.Coordinates = &models.Coordinates{
				Latitude:  *detail.Latitude,
				Longitude: *detail.Longitude,
			}
		}
		if detail.ListingDate != nil {
			days := int(now.Sub(*detail.ListingDate).Hours() / 24)
			if days >= 0 {
				listing.DaysOnMarket = &days
			}
		}
	}

	listing.Address = ParseAddress(addressRaw)
	if listing.Price != nil {
		listing.PriceFormatted = FormatPrice(*listing.Price)
	}
	if listing.ID == "" {
		listing.ID = listing.URL
	}

	return listing
}

// FormatPrice renders an integer price in the site's display style,
// e.g. 750000 → "750 000 $".
func FormatPrice(price int) string {
	digits := strconv.Itoa(price)
	var grouped []byte
	for i, d := range []byte(digits) {
		if i > 0 && (len(digits)-i)%3 == 0 {
			grouped = append(grouped, ' ')
		}
		grouped = append(grouped, d)
	}
	return string(grouped) + " $"
}

func nonNegative(v *int) *int {
	if v == nil || *v < 0 {
		return nil
	}
	return v
}

func dedupeOrdered(urls []string) []string {
	seen := make(map[string]struct{}, len(urls))
	out := make([]string, 0, len(urls))
	for _, u := range urls {
		if _, dup := seen[u]; dup {
			continue
		}
		seen[u] = struct{}{}
		out = append(out, u)
	}
	return out
}
