package extract

import (
	"testing"
	"time"

	"github.com/use-agent/maisonscan/models"
)

func summaryFixture() models.ListingSummary {
	return models.ListingSummary{
		SourceURL:       "https://www.centris.ca/fr/maison~a-vendre~montreal/12345678",
		ExternalID:      "12345678",
		PriceRaw:        "750 000 $",
		Price:           intPtr(750000),
		AddressRaw:      "123 Rue Principale, Montréal, Québec, H2X 1Y6",
		PropertyTypeRaw: "Maison à étages",
		Bedrooms:        intPtr(3),
		Bathrooms:       intPtr(2),
		MainImageURL:    "https://www.centris.ca/media/photos/1.jpg",
	}
}

func TestMerge_SummaryOnly(t *testing.T) {
	got := Merge(summaryFixture(), nil, models.TransactionSale)

	if got.ID != "12345678" {
		t.Errorf("ID = %q", got.ID)
	}
	if got.URL != "https://www.centris.ca/fr/maison~a-vendre~montreal/12345678" {
		t.Errorf("URL = %q", got.URL)
	}
	if got.Price == nil || *got.Price != 750000 {
		t.Errorf("Price = %v, want 750000", got.Price)
	}
	if got.PriceFormatted != "750 000 $" {
		t.Errorf("PriceFormatted = %q, want %q", got.PriceFormatted, "750 000 $")
	}
	if got.TransactionType != models.TransactionSale {
		t.Errorf("TransactionType = %q", got.TransactionType)
	}
	if got.Address.City != "Montréal" {
		t.Errorf("Address.City = %q", got.Address.City)
	}
	if got.Address.PostalCode != "H2X 1Y6" {
		t.Errorf("Address.PostalCode = %q", got.Address.PostalCode)
	}
	if len(got.Images) != 1 || got.Images[0] != "https://www.centris.ca/media/photos/1.jpg" {
		t.Errorf("Images = %v", got.Images)
	}
	if got.ScrapedAt.IsZero() {
		t.Error("ScrapedAt is zero")
	}
}

func TestMerge_DetailWins(t *testing.T) {
	listedAt := time.Now().UTC().AddDate(0, 0, -12)
	detail := &models.ListingDetail{
		Title:        "Maison à étages à vendre",
		Price:        intPtr(765000),
		AddressRaw:   "123 Rue Principale, Montréal, Québec, H2X 1Y6",
		PropertyType: "Maison à étages",
		Bedrooms:     intPtr(4),
		LivingArea:   intPtr(1850),
		Images: []string{
			"https://www.centris.ca/media/photos/1.jpg",
			"https://www.centris.ca/media/photos/2.jpg",
			"https://www.centris.ca/media/photos/1.jpg",
		},
		BrokerName:  "Marie Tremblay",
		MLSNumber:   "12345678",
		Latitude:    floatPtr(45.5017),
		Longitude:   floatPtr(-73.5673),
		ListingDate: &listedAt,
	}

	got := Merge(summaryFixture(), detail, models.TransactionSale)

	if got.Price == nil || *got.Price != 765000 {
		t.Errorf("Price = %v, want detail price 765000", got.Price)
	}
	if got.PriceFormatted != "765 000 $" {
		t.Errorf("PriceFormatted = %q", got.PriceFormatted)
	}
	if got.Bedrooms == nil || *got.Bedrooms != 4 {
		t.Errorf("Bedrooms = %v, want detail count 4", got.Bedrooms)
	}
	// Summary fills gaps the detail page left open.
	if got.Bathrooms == nil || *got.Bathrooms != 2 {
		t.Errorf("Bathrooms = %v, want summary count 2", got.Bathrooms)
	}
	if len(got.Images) != 2 {
		t.Errorf("Images = %v, want 2 deduplicated", got.Images)
	}
	if got.Broker == nil || got.Broker.Name != "Marie Tremblay" {
		t.Errorf("Broker = %+v", got.Broker)
	}
	if got.Coordinates == nil || got.Coordinates.Latitude != 45.5017 {
		t.Errorf("Coordinates = %+v", got.Coordinates)
	}
	if got.DaysOnMarket == nil || *got.DaysOnMarket != 12 {
		t.Errorf("DaysOnMarket = %v, want 12", got.DaysOnMarket)
	}
}

func TestMerge_NegativeValuesBecomeNil(t *testing.T) {
	summary := summaryFixture()
	summary.Price = intPtr(-1)
	summary.Bedrooms = intPtr(-3)

	got := Merge(summary, nil, models.TransactionSale)
	if got.Price != nil {
		t.Errorf("Price = %v, want nil for negative input", got.Price)
	}
	if got.Bedrooms != nil {
		t.Errorf("Bedrooms = %v, want nil for negative input", got.Bedrooms)
	}
	if got.PriceFormatted != "" {
		t.Errorf("PriceFormatted = %q, want empty", got.PriceFormatted)
	}
}

func TestMerge_IDFallsBackToURL(t *testing.T) {
	summary := summaryFixture()
	summary.ExternalID = ""

	got := Merge(summary, nil, models.TransactionRental)
	if got.ID != summary.SourceURL {
		t.Errorf("ID = %q, want the source URL", got.ID)
	}
	if got.TransactionType != models.TransactionRental {
		t.Errorf("TransactionType = %q", got.TransactionType)
	}
}

func TestFormatPrice(t *testing.T) {
	tests := []struct {
		price int
		want  string
	}{
		{0, "0 $"},
		{950, "950 $"},
		{1500, "1 500 $"},
		{750000, "750 000 $"},
		{1250000, "1 250 000 $"},
	}
	for _, tt := range tests {
		if got := FormatPrice(tt.price); got != tt.want {
			t.Errorf("FormatPrice(%d) = %q, want %q", tt.price, got, tt.want)
		}
	}
}

func floatPtr(f float64) *float64 { return &f }
