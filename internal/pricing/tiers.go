package pricing

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/plumehq/plume-backend/pkg/db/models"
	pkgerrors "github.com/plumehq/plume-backend/pkg/errors"
)

var oneHundred = decimal.NewFromInt(100)

// ResolveTier picks the tier that applies to the requested quantity: the last
// tier, in ascending tier order, whose MinQty does not exceed it. When the
// quantity is below every threshold the first tier applies. Equal MinQty
// values resolve to the higher tier ordinal.
func ResolveTier(tiers []models.OfferPriceTier, requestedQty int) (models.OfferPriceTier, error) {
	if requestedQty <= 0 {
		return models.OfferPriceTier{}, pkgerrors.New(
			pkgerrors.CodeValidation, "requested quantity must be positive")
	}
	if len(tiers) == 0 {
		return models.OfferPriceTier{}, pkgerrors.New(
			pkgerrors.CodeInternal, "cannot resolve a price tier from an empty tier set")
	}

	ordered := make([]models.OfferPriceTier, len(tiers))
	copy(ordered, tiers)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Tier < ordered[j].Tier
	})

	selected := ordered[0]
	for _, tier := range ordered {
		if tier.MinQty <= requestedQty {
			selected = tier
		}
	}
	return selected, nil
}

// TaxInclusive converts a tax-exclusive amount to tax-inclusive using a
// percentage VAT rate. The result is unrounded; callers round with RoundMoney
// when presenting.
func TaxInclusive(priceHT, vatRatePercent decimal.Decimal) (decimal.Decimal, error) {
	if vatRatePercent.IsNegative() {
		return decimal.Zero, pkgerrors.New(
			pkgerrors.CodeValidation, "vat rate must not be negative")
	}
	multiplier := decimal.NewFromInt(1).Add(vatRatePercent.Div(oneHundred))
	return priceHT.Mul(multiplier), nil
}

// RoundMoney rounds to 2 decimal places, half up.
func RoundMoney(amount decimal.Decimal) decimal.Decimal {
	return amount.Round(2)
}
