package offers

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/plumehq/plume-backend/internal/pricing"
	"github.com/plumehq/plume-backend/pkg/config"
	"github.com/plumehq/plume-backend/pkg/db/models"
	pkgerrors "github.com/plumehq/plume-backend/pkg/errors"
	"github.com/plumehq/plume-backend/pkg/logger"
)

// Aggregator assembles a product's best-first offer set, folding in offers
// from EAN-linked sibling products.
type Aggregator interface {
	BestFirst(ctx context.Context, productID uuid.UUID) ([]models.SupplierOffer, error)
}

type offerStore interface {
	GetOffers(ctx context.Context, productID uuid.UUID) ([]models.SupplierOffer, error)
	GetLinkedProductIDs(ctx context.Context, productID uuid.UUID) ([]uuid.UUID, error)
	GetOffersForProducts(ctx context.Context, productIDs []uuid.UUID) ([]models.SupplierOffer, error)
}

type aggregator struct {
	store         offerStore
	logg          *logger.Logger
	degradeOnLink bool
}

// NewAggregator constructs the offer aggregator. With DegradeOnLinkFailure
// set, a failing sibling lookup degrades to direct offers only instead of
// failing the whole aggregation.
func NewAggregator(store offerStore, cfg config.PricingConfig, logg *logger.Logger) (Aggregator, error) {
	if store == nil {
		return nil, fmt.Errorf("offer store required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &aggregator{
		store:         store,
		logg:          logg,
		degradeOnLink: cfg.DegradeOnLinkFailure,
	}, nil
}

func (a *aggregator) BestFirst(ctx context.Context, productID uuid.UUID) ([]models.SupplierOffer, error) {
	direct, err := a.store.GetOffers(ctx, productID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err,
			fmt.Sprintf("load offers (product_id=%s)", productID))
	}

	linked, err := a.linkedOffers(ctx, productID)
	if err != nil {
		if !a.degradeOnLink {
			return nil, err
		}
		wctx := a.logg.WithFields(ctx, map[string]any{
			"product_id": productID.String(),
			"error":      err.Error(),
		})
		a.logg.Warn(wctx, "sibling offer lookup failed, continuing with direct offers only")
		linked = nil
	}

	return pricing.Rank(direct, linked), nil
}

func (a *aggregator) linkedOffers(ctx context.Context, productID uuid.UUID) ([]models.SupplierOffer, error) {
	ids, err := a.store.GetLinkedProductIDs(ctx, productID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err,
			fmt.Sprintf("resolve linked products (product_id=%s)", productID))
	}
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := a.store.GetOffersForProducts(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err,
			fmt.Sprintf("load linked offers (product_id=%s)", productID))
	}
	return rows, nil
}
