package extract

import "testing"

func TestParseAddress(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		street string
		city   string
		region string
		postal string
	}{
		{
			name:   "full four segments",
			input:  "123 Rue Principale, Montréal, Québec, H2X 1Y6",
			street: "123 Rue Principale",
			city:   "Montréal",
			region: "Québec",
			postal: "H2X 1Y6",
		},
		{
			name:   "postal embedded in region",
			input:  "45 Avenue du Parc, Laval, Québec H7N 3T8",
			street: "45 Avenue du Parc",
			city:   "Laval",
			region: "Québec",
			postal: "H7N 3T8",
		},
		{
			name:   "lowercase compact postal",
			input:  "9 Ch. des Érables, Sherbrooke, Estrie, j1h2r4",
			street: "9 Ch. des Érables",
			city:   "Sherbrooke",
			region: "Estrie",
			postal: "J1H 2R4",
		},
		{
			name:   "street only",
			input:  "800 Boulevard René-Lévesque",
			street: "800 Boulevard René-Lévesque",
		},
		{
			name:  "empty",
			input: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseAddress(tt.input)
			if got.Street != tt.street {
				t.Errorf("Street = %q, want %q", got.Street, tt.street)
			}
			if got.City != tt.city {
				t.Errorf("City = %q, want %q", got.City, tt.city)
			}
			if got.Region != tt.region {
				t.Errorf("Region = %q, want %q", got.Region, tt.region)
			}
			if got.PostalCode != tt.postal {
				t.Errorf("PostalCode = %q, want %q", got.PostalCode, tt.postal)
			}
		})
	}
}

func TestParseAddressKeepsFullText(t *testing.T) {
	input := "  123 Rue Principale, Montréal  "
	got := ParseAddress(input)
	if got.FullAddress != "123 Rue Principale, Montréal" {
		t.Errorf("FullAddress = %q", got.FullAddress)
	}
}
