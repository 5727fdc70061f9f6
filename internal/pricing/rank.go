package pricing

import (
	"math"
	"sort"

	"github.com/google/uuid"

	"github.com/plumehq/plume-backend/pkg/db/models"
)

// Rank merges a product's direct offers with offers from EAN-linked sibling
// products and returns them best-first. Direct offers win on ID collision.
// The sort is stable: preferred suppliers first, then ascending priority rank
// (absent rank sorts last), then ascending unit price (absent price sorts
// last). Inputs are never mutated.
func Rank(direct, linked []models.SupplierOffer) []models.SupplierOffer {
	merged := make([]models.SupplierOffer, 0, len(direct)+len(linked))
	seen := make(map[uuid.UUID]struct{}, len(direct)+len(linked))

	for _, offer := range direct {
		if _, ok := seen[offer.ID]; ok {
			continue
		}
		seen[offer.ID] = struct{}{}
		merged = append(merged, offer)
	}
	for _, offer := range linked {
		if _, ok := seen[offer.ID]; ok {
			continue
		}
		seen[offer.ID] = struct{}{}
		merged = append(merged, offer)
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return offerLess(merged[i], merged[j])
	})
	return merged
}

func offerLess(a, b models.SupplierOffer) bool {
	if a.IsPreferred != b.IsPreferred {
		return a.IsPreferred
	}

	ra, rb := effectiveRank(a), effectiveRank(b)
	if ra != rb {
		return ra < rb
	}

	switch {
	case a.UnitPriceHT == nil && b.UnitPriceHT == nil:
		return false
	case a.UnitPriceHT == nil:
		return false
	case b.UnitPriceHT == nil:
		return true
	default:
		return a.UnitPriceHT.LessThan(*b.UnitPriceHT)
	}
}

// effectiveRank resolves the offer's priority, falling back to the supplier's
// default when the offer carries none. Absent ranks sort last.
func effectiveRank(offer models.SupplierOffer) int {
	if offer.PriorityRank != nil {
		return *offer.PriorityRank
	}
	if offer.Supplier != nil && offer.Supplier.PriorityRank != nil {
		return *offer.Supplier.PriorityRank
	}
	return math.MaxInt
}
