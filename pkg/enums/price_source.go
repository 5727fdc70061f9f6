package enums

import "fmt"

// PriceSource records which leg of the fallback chain produced a public price.
type PriceSource string

const (
	// PriceSourceSupplierPVP means the supplier's suggested resale price won.
	PriceSourceSupplierPVP PriceSource = "supplier_pvp"
	// PriceSourceCoef means the price was derived from the purchase price and
	// a category coefficient.
	PriceSourceCoef PriceSource = "coef"
	// PriceSourceUnavailable means no price could be derived.
	PriceSourceUnavailable PriceSource = "unavailable"
)

var validPriceSources = []PriceSource{
	PriceSourceSupplierPVP,
	PriceSourceCoef,
	PriceSourceUnavailable,
}

// String implements fmt.Stringer.
func (s PriceSource) String() string {
	return string(s)
}

// IsValid reports whether the value is a known PriceSource.
func (s PriceSource) IsValid() bool {
	for _, candidate := range validPriceSources {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParsePriceSource converts raw input into a PriceSource.
func ParsePriceSource(value string) (PriceSource, error) {
	for _, candidate := range validPriceSources {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid price source %q", value)
}
