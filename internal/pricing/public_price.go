package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/plumehq/plume-backend/pkg/db/models"
	"github.com/plumehq/plume-backend/pkg/enums"
	pkgerrors "github.com/plumehq/plume-backend/pkg/errors"
)

// CoefficientLookup returns the resale coefficient configured for a product
// category, or nil when none is configured. A subfamily-specific entry takes
// precedence over the family default.
type CoefficientLookup func(family string, subfamily *string) (*decimal.Decimal, error)

// PublicPriceResult is the outcome of the public price fallback chain.
type PublicPriceResult struct {
	PriceTTC        *decimal.Decimal
	Source          enums.PriceSource
	CoefficientUsed *decimal.Decimal
}

// PublicPrice derives the storefront tax-inclusive price from the best-first
// offer set. The supplier's suggested resale price wins when it converts to a
// positive TTC amount; otherwise the category coefficient is applied to the
// best offer's purchase price. When neither path yields a price the product
// is unavailable.
func PublicPrice(
	offers []models.SupplierOffer,
	vatRatePercent decimal.Decimal,
	family string,
	subfamily *string,
	lookup CoefficientLookup,
) (PublicPriceResult, error) {
	unavailable := PublicPriceResult{Source: enums.PriceSourceUnavailable}
	if len(offers) == 0 {
		return unavailable, nil
	}

	best := offers[0]
	if best.PricePVP != nil {
		ttc, err := TaxInclusive(*best.PricePVP, vatRatePercent)
		if err != nil {
			return unavailable, err
		}
		if ttc.IsPositive() {
			rounded := RoundMoney(ttc)
			return PublicPriceResult{
				PriceTTC: &rounded,
				Source:   enums.PriceSourceSupplierPVP,
			}, nil
		}
	}

	if lookup != nil && best.UnitPriceHT != nil {
		coefficient, err := lookup(family, subfamily)
		if err != nil {
			return unavailable, pkgerrors.Wrap(
				pkgerrors.CodeDependency, err, "coefficient lookup failed")
		}
		if coefficient != nil && coefficient.IsPositive() {
			// The coefficient maps directly from purchase HT to resale TTC.
			rounded := RoundMoney(best.UnitPriceHT.Mul(*coefficient))
			return PublicPriceResult{
				PriceTTC:        &rounded,
				Source:          enums.PriceSourceCoef,
				CoefficientUsed: coefficient,
			}, nil
		}
	}

	return unavailable, nil
}
