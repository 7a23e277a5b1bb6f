package models

import "time"

// TransactionType is the kind of listing transaction.
type TransactionType string

const (
	TransactionSale   TransactionType = "Sale"
	TransactionRental TransactionType = "Rental"
)

// ListingSummary holds the fields extractable from a single card on a
// search-results page. It is created once per discovered card and never
// mutated afterwards.
type ListingSummary struct {
	SourceURL       string
	ExternalID      string
	PriceRaw        string
	Price           *int
	AddressRaw      string
	PropertyTypeRaw string
	Bedrooms        *int
	Bathrooms       *int
	MainImageURL    string
}

// ListingDetail holds the fields extractable only from a listing's own
// page. Created at most once per external ID; owned by the task that
// fetched it until merged.
type ListingDetail struct {
	Title          string
	Price          *int
	AddressRaw     string
	PropertyType   string
	Bedrooms       *int
	Bathrooms      *int
	LivingArea     *int
	LotSize        *int
	YearBuilt      *int
	Description    string
	Features       []string
	Images         []string
	BrokerName     string
	BrokerAgency   string
	BrokerPhone    string
	MLSNumber      string
	MunicipalTaxes *int
	SchoolTaxes    *int
	Latitude       *float64
	Longitude      *float64
	ListingDate    *time.Time
}

// Address is the structured decomposition of a free-text address.
type Address struct {
	Street       string `json:"street,omitempty"`
	City         string `json:"city,omitempty"`
	Neighborhood string `json:"neighborhood,omitempty"`
	Region       string `json:"region,omitempty"`
	PostalCode   string `json:"postalCode,omitempty"`
	FullAddress  string `json:"fullAddress,omitempty"`
}

// Broker identifies the listing broker.
type Broker struct {
	Name   string `json:"name,omitempty"`
	Agency string `json:"agency,omitempty"`
	Phone  string `json:"phone,omitempty"`
}

// Coordinates are geographic coordinates of the property.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// NormalizedListing is the canonical output record and the de facto wire
// format. Detail fields win on conflict; summary fields fill gaps when
// details were not fetched.
//
// Invariants: Price, Bedrooms and Bathrooms are non-negative or nil;
// Images is deduplicated, ordered, absolute URLs; ScrapedAt is set
// exactly once at emission time.
type NormalizedListing struct {
	ID              string          `json:"id"`
	ExternalID      string          `json:"externalId,omitempty"`
	URL             string          `json:"url"`
	Title           string          `json:"title,omitempty"`
	Address         Address         `json:"address"`
	Price           *int            `json:"price"`
	PriceFormatted  string          `json:"priceFormatted,omitempty"`
	PropertyType    string          `json:"propertyType,omitempty"`
	TransactionType TransactionType `json:"transactionType"`
	Bedrooms        *int            `json:"bedrooms"`
	Bathrooms       *int            `json:"bathrooms"`
	LivingArea      *int            `json:"livingArea"`
	LotSize         *int            `json:"lotSize"`
	YearBuilt       *int            `json:"yearBuilt"`
	Features        []string        `json:"features,omitempty"`
	Description     string          `json:"description,omitempty"`
	Images          []string        `json:"images,omitempty"`
	Broker          *Broker         `json:"broker,omitempty"`
	MLSNumber       string          `json:"mlsNumber,omitempty"`
	MunicipalTaxes  *int            `json:"municipalTaxes,omitempty"`
	SchoolTaxes     *int            `json:"schoolTaxes,omitempty"`
	Coordinates     *Coordinates    `json:"coordinates,omitempty"`
	DaysOnMarket    *int            `json:"daysOnMarket,omitempty"`
	ScrapedAt       time.Time       `json:"scrapedAt"`
}

// ErrorRecord is emitted to the output sink for a task that exhausted
// its retries.
type ErrorRecord struct {
	URL      string    `json:"url"`
	Code     string    `json:"code"`
	Message  string    `json:"message"`
	Attempts int       `json:"attempts"`
	FailedAt time.Time `json:"failedAt"`
}
