package searchurl

import (
	"strings"
	"testing"

	"github.com/use-agent/maisonscan/filter"
)

func TestBuild_Deterministic(t *testing.T) {
	q := Query{
		Region:     "Montréal",
		SearchType: "buy",
		Language:   "fr",
		Features:   []string{"Piscine", "Garage"},
		ListingAge: "7days",
		Filters: filter.Spec{
			Price:    filter.Range{Min: 300000, Max: 800000},
			Bedrooms: filter.Range{Min: 2},
		},
	}

	first := Build(q)
	for i := 0; i < 20; i++ {
		if got := Build(q); got != first {
			t.Fatalf("Build is not deterministic:\n%s\n%s", first, got)
		}
	}
}

func TestBuild_PathSegments(t *testing.T) {
	tests := []struct {
		name       string
		searchType string
		language   string
		wantPath   string
	}{
		{"fr buy", "buy", "fr", "/fr/proprietes~a-vendre~montreal"},
		{"fr rent", "rent", "fr", "/fr/proprietes~a-louer~montreal"},
		{"en buy", "buy", "en", "/en/properties~for-sale~montreal"},
		{"en rent", "rent", "en", "/en/properties~for-rent~montreal"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Build(Query{Region: "Montréal", SearchType: tt.searchType, Language: tt.language})
			want := "https://www.centris.ca" + tt.wantPath
			if got != want {
				t.Errorf("Build = %q, want %q", got, want)
			}
		})
	}
}

func TestBuild_FilterHints(t *testing.T) {
	got := Build(Query{
		Region:     "Laval",
		SearchType: "buy",
		Language:   "fr",
		Filters: filter.Spec{
			Price:    filter.Range{Min: 300000, Max: 800000},
			Bedrooms: filter.Range{Min: 2},
		},
	})

	for _, want := range []string{"price-min=300000", "price-max=800000", "beds-min=2"} {
		if !strings.Contains(got, want) {
			t.Errorf("Build = %q, missing %q", got, want)
		}
	}
	if strings.Contains(got, "beds-max") {
		t.Errorf("Build = %q, unbounded side must not emit a hint", got)
	}
}

func TestRegionSlug(t *testing.T) {
	tests := []struct {
		name   string
		region string
		want   string
	}{
		{"accented fr", "Québec", "quebec"},
		{"english variant", "Quebec City", "quebec"},
		{"plain", "quebec", "quebec"},
		{"english shore", "South Shore", "rive-sud"},
		{"fr shore", "Rive-Sud", "rive-sud"},
		{"laurentians en", "Laurentians", "laurentides"},
		{"unknown falls back to slug", "Baie-Sainte-Catherine", "baie-sainte-catherine"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RegionSlug(tt.region); got != tt.want {
				t.Errorf("RegionSlug(%q) = %q, want %q", tt.region, got, tt.want)
			}
		})
	}
}

func TestRegionSlug_VariantsCollapse(t *testing.T) {
	// All spellings of the same region must produce the same seed URL,
	// or the run would crawl the region twice.
	variants := []string{"Québec", "quebec", "Quebec City", "ville de Québec"}
	want := RegionSlug(variants[0])
	for _, v := range variants[1:] {
		if got := RegionSlug(v); got != want {
			t.Errorf("RegionSlug(%q) = %q, want %q", v, got, want)
		}
	}
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Le Plateau-Mont-Royal", "le-plateau-mont-royal"},
		{"  Trois   Rivières  ", "trois-rivieres"},
		{"Piscine creusée", "piscine-creusee"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := Slugify(tt.in); got != tt.want {
			t.Errorf("Slugify(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestPageURL(t *testing.T) {
	base := "https://www.centris.ca/fr/proprietes~a-vendre~montreal?price-max=800000"

	if got := PageURL(base, 1); got != base {
		t.Errorf("page 1 must be the bare URL, got %q", got)
	}
	if got := PageURL(base, 0); got != base {
		t.Errorf("page 0 must be the bare URL, got %q", got)
	}

	got := PageURL(base, 3)
	if !strings.Contains(got, "page=3") {
		t.Errorf("PageURL = %q, missing page=3", got)
	}
	if !strings.Contains(got, "price-max=800000") {
		t.Errorf("PageURL = %q, dropped existing query params", got)
	}
}

func TestPageURL_Canonical(t *testing.T) {
	// The same page number must always yield the same URL so the
	// frontier's URL dedup recognizes repeats.
	base := "https://www.centris.ca/fr/proprietes~a-vendre~montreal"
	if PageURL(base, 2) != PageURL(base, 2) {
		t.Error("PageURL is not deterministic")
	}
}
