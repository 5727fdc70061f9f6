package pricing

import (
	"github.com/plumehq/plume-backend/pkg/db/models"
	"github.com/plumehq/plume-backend/pkg/enums"
)

// Alerts derives the merchandising alert flags for a product from its ranked
// offer set and resolved public price. Each flag is evaluated independently,
// so several can apply at once. The returned order is deterministic.
func Alerts(offers []models.SupplierOffer, price PublicPriceResult) []enums.AlertFlag {
	var flags []enums.AlertFlag

	if len(offers) == 0 {
		flags = append(flags, enums.AlertNoOffers)
	}
	// An empty set already carries no_offers; no_price_available is reserved
	// for products whose offers exist but yield no public price.
	if len(offers) > 0 && price.PriceTTC == nil {
		flags = append(flags, enums.AlertNoPriceAvailable)
	}
	if price.Source == enums.PriceSourceCoef {
		flags = append(flags, enums.AlertCoefficientFallbackUsed)
	}
	if len(offers) > 0 && allOutOfStock(offers) {
		flags = append(flags, enums.AlertOutOfStockAllOffers)
	}
	return flags
}

func allOutOfStock(offers []models.SupplierOffer) bool {
	for _, offer := range offers {
		if offer.StockQuantity != nil && *offer.StockQuantity > 0 {
			return false
		}
	}
	return true
}
