package enums

import "fmt"

// OfferSourceType identifies how a supplier offer entered the catalog.
type OfferSourceType string

const (
	OfferSourceCatalogImport OfferSourceType = "catalog_import"
	OfferSourceManual        OfferSourceType = "manual"
	OfferSourceAPIFeed       OfferSourceType = "api_feed"
)

var validOfferSourceTypes = []OfferSourceType{
	OfferSourceCatalogImport,
	OfferSourceManual,
	OfferSourceAPIFeed,
}

// String implements fmt.Stringer.
func (s OfferSourceType) String() string {
	return string(s)
}

// IsValid reports whether the value is a known OfferSourceType.
func (s OfferSourceType) IsValid() bool {
	for _, candidate := range validOfferSourceTypes {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseOfferSourceType converts raw input into an OfferSourceType.
func ParseOfferSourceType(value string) (OfferSourceType, error) {
	for _, candidate := range validOfferSourceTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid offer source type %q", value)
}
