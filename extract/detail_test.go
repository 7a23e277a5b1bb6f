package extract

import (
	"testing"
	"time"
)

const detailPageURL = "https://www.centris.ca/fr/maison~a-vendre~montreal/12345678"

const detailPageHTML = `
<html>
<body>
	<h1 data-id="PageTitle">Maison à étages à vendre à Montréal</h1>
	<div id="buy-price">750 000 $</div>
	<h2 itemprop="address">123 Rue Principale, Montréal, Québec, H2X 1Y6</h2>

	<div class="carac-container">
		<div class="carac-title">Type de propriété</div>
		<div class="carac-value">Maison à étages</div>
	</div>
	<div class="carac-container">
		<div class="carac-title">Chambres</div>
		<div class="carac-value">3 + 1</div>
	</div>
	<div class="carac-container">
		<div class="carac-title">Salles de bain</div>
		<div class="carac-value">2</div>
	</div>
	<div class="carac-container">
		<div class="carac-title">Superficie habitable</div>
		<div class="carac-value">1 850 pi²</div>
	</div>
	<div class="carac-container">
		<div class="carac-title">Superficie du terrain</div>
		<div class="carac-value">4 200 pi²</div>
	</div>
	<div class="carac-container">
		<div class="carac-title">Année de construction</div>
		<div class="carac-value">1995</div>
	</div>
	<div class="carac-container">
		<div class="carac-title">Taxes municipales</div>
		<div class="carac-value">4 500 $</div>
	</div>
	<div class="carac-container">
		<div class="carac-title">Taxes scolaires</div>
		<div class="carac-value">620 $</div>
	</div>

	<div itemprop="description">Belle maison familiale près des écoles et du métro.</div>

	<ul class="features">
		<li>Garage</li>
		<li>Piscine creusée</li>
		<li>Garage</li>
	</ul>

	<div class="gallery">
		<img src="/media/photos/1.jpg">
		<img src="/media/photos/2.jpg">
		<img src="/media/photos/1.jpg">
		<img src="data:image/gif;base64,R0lGOD" data-src="/media/photos/3.jpg">
	</div>

	<div class="broker-info">
		<span class="broker-name">Marie Tremblay</span>
		<span class="broker-agency">Immobilier XYZ</span>
		<a href="tel:514-555-0199">514-555-0199</a>
	</div>

	<p>No Centris 12345678</p>
	<span class="listing-date">il y a 10 jours</span>

	<script>
		var map = initMap({"lat": 45.5017, "lng": -73.5673});
	</script>
</body>
</html>`

func TestParseDetailPage(t *testing.T) {
	now := time.Date(2024, time.June, 15, 12, 0, 0, 0, time.UTC)

	detail, err := ParseDetailPage(detailPageHTML, detailPageURL, now)
	if err != nil {
		t.Fatalf("ParseDetailPage: %v", err)
	}

	if detail.Title != "Maison à étages à vendre à Montréal" {
		t.Errorf("Title = %q", detail.Title)
	}
	if detail.Price == nil || *detail.Price != 750000 {
		t.Errorf("Price = %v, want 750000", detail.Price)
	}
	if detail.AddressRaw != "123 Rue Principale, Montréal, Québec, H2X 1Y6" {
		t.Errorf("AddressRaw = %q", detail.AddressRaw)
	}
	if detail.PropertyType != "Maison à étages" {
		t.Errorf("PropertyType = %q", detail.PropertyType)
	}
	if detail.Bedrooms == nil || *detail.Bedrooms != 4 {
		t.Errorf("Bedrooms = %v, want 4 (3 above + 1 below grade)", detail.Bedrooms)
	}
	if detail.Bathrooms == nil || *detail.Bathrooms != 2 {
		t.Errorf("Bathrooms = %v, want 2", detail.Bathrooms)
	}
	if detail.LivingArea == nil || *detail.LivingArea != 1850 {
		t.Errorf("LivingArea = %v, want 1850", detail.LivingArea)
	}
	if detail.LotSize == nil || *detail.LotSize != 4200 {
		t.Errorf("LotSize = %v, want 4200", detail.LotSize)
	}
	if detail.YearBuilt == nil || *detail.YearBuilt != 1995 {
		t.Errorf("YearBuilt = %v, want 1995", detail.YearBuilt)
	}
	if detail.MunicipalTaxes == nil || *detail.MunicipalTaxes != 4500 {
		t.Errorf("MunicipalTaxes = %v, want 4500", detail.MunicipalTaxes)
	}
	if detail.SchoolTaxes == nil || *detail.SchoolTaxes != 620 {
		t.Errorf("SchoolTaxes = %v, want 620", detail.SchoolTaxes)
	}
	if detail.Description == "" {
		t.Error("Description is empty")
	}

	wantFeatures := []string{"Garage", "Piscine creusée"}
	if len(detail.Features) != len(wantFeatures) {
		t.Fatalf("Features = %v, want %v", detail.Features, wantFeatures)
	}
	for i, f := range wantFeatures {
		if detail.Features[i] != f {
			t.Errorf("Features[%d] = %q, want %q", i, detail.Features[i], f)
		}
	}

	wantImages := []string{
		"https://www.centris.ca/media/photos/1.jpg",
		"https://www.centris.ca/media/photos/2.jpg",
		"https://www.centris.ca/media/photos/3.jpg",
	}
	if len(detail.Images) != len(wantImages) {
		t.Fatalf("Images = %v, want %v", detail.Images, wantImages)
	}
	for i, u := range wantImages {
		if detail.Images[i] != u {
			t.Errorf("Images[%d] = %q, want %q", i, detail.Images[i], u)
		}
	}

	if detail.BrokerName != "Marie Tremblay" {
		t.Errorf("BrokerName = %q", detail.BrokerName)
	}
	if detail.BrokerAgency != "Immobilier XYZ" {
		t.Errorf("BrokerAgency = %q", detail.BrokerAgency)
	}
	if detail.BrokerPhone != "514-555-0199" {
		t.Errorf("BrokerPhone = %q", detail.BrokerPhone)
	}
	if detail.MLSNumber != "12345678" {
		t.Errorf("MLSNumber = %q, want 12345678", detail.MLSNumber)
	}

	if detail.Latitude == nil || detail.Longitude == nil {
		t.Fatal("expected coordinates from map script")
	}
	if *detail.Latitude != 45.5017 || *detail.Longitude != -73.5673 {
		t.Errorf("coordinates = (%f, %f)", *detail.Latitude, *detail.Longitude)
	}

	wantDate := time.Date(2024, time.June, 5, 0, 0, 0, 0, time.UTC)
	if detail.ListingDate == nil || !detail.ListingDate.Equal(wantDate) {
		t.Errorf("ListingDate = %v, want %s", detail.ListingDate, wantDate)
	}
}

func TestParseDetailPage_SparsePage(t *testing.T) {
	detail, err := ParseDetailPage(`<html><body><h1>Propriété</h1></body></html>`, detailPageURL, time.Now())
	if err != nil {
		t.Fatalf("ParseDetailPage: %v", err)
	}
	if detail.Title != "Propriété" {
		t.Errorf("Title = %q", detail.Title)
	}
	if detail.Price != nil || detail.Bedrooms != nil || detail.LivingArea != nil {
		t.Error("expected numeric fields to stay nil on a sparse page")
	}
	if detail.Features != nil || detail.Images != nil {
		t.Error("expected feature and image lists to stay nil on a sparse page")
	}
}
