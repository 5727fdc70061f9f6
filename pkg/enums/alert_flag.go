package enums

import "fmt"

// AlertFlag marks an availability or pricing condition on a product rollup.
// Flags are independent predicates; a rollup may carry several at once.
type AlertFlag string

const (
	// AlertNoPriceAvailable fires when offers exist but no public price
	// could be derived from any of them.
	AlertNoPriceAvailable AlertFlag = "no_price_available"
	// AlertCoefficientFallbackUsed fires when the public price came from a
	// category coefficient rather than a supplier PVP.
	AlertCoefficientFallbackUsed AlertFlag = "coefficient_fallback_used"
	// AlertOutOfStockAllOffers fires when every known offer reports zero or
	// unknown stock.
	AlertOutOfStockAllOffers AlertFlag = "out_of_stock_all_offers"
	// AlertNoOffers fires when no supplier sells the product at all.
	AlertNoOffers AlertFlag = "no_offers"
)

var validAlertFlags = []AlertFlag{
	AlertNoPriceAvailable,
	AlertCoefficientFallbackUsed,
	AlertOutOfStockAllOffers,
	AlertNoOffers,
}

// String implements fmt.Stringer.
func (f AlertFlag) String() string {
	return string(f)
}

// IsValid reports whether the value is a known AlertFlag.
func (f AlertFlag) IsValid() bool {
	for _, candidate := range validAlertFlags {
		if candidate == f {
			return true
		}
	}
	return false
}

// ParseAlertFlag converts raw input into an AlertFlag.
func ParseAlertFlag(value string) (AlertFlag, error) {
	for _, candidate := range validAlertFlags {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid alert flag %q", value)
}
