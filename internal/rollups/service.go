package rollups

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/plumehq/plume-backend/internal/pricing"
	"github.com/plumehq/plume-backend/pkg/config"
	"github.com/plumehq/plume-backend/pkg/db/models"
	"github.com/plumehq/plume-backend/pkg/enums"
	pkgerrors "github.com/plumehq/plume-backend/pkg/errors"
	"github.com/plumehq/plume-backend/pkg/logger"
)

// Service computes and serves per-product pricing rollups.
type Service interface {
	// Recompute rebuilds the snapshot for one product and persists it.
	Recompute(ctx context.Context, productID uuid.UUID) (*RollupDTO, error)
	// Get serves the snapshot, recomputing on a full miss.
	Get(ctx context.Context, productID uuid.UUID) (*RollupDTO, error)
	// Quote prices a product live for a requested quantity.
	Quote(ctx context.Context, productID uuid.UUID, quantity int) (*QuoteDTO, error)
	// RecomputeBatch processes one page of the full catalog recompute.
	RecomputeBatch(ctx context.Context, limit, offset int) (*BatchResult, error)
}

type offerAggregator interface {
	BestFirst(ctx context.Context, productID uuid.UUID) ([]models.SupplierOffer, error)
}

type productLoader interface {
	FindProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

type coefficientResolver interface {
	Resolve(ctx context.Context, family string, subfamily *string) (*decimal.Decimal, error)
}

type snapshotStore interface {
	Upsert(ctx context.Context, rollup *models.ProductRollup) error
	FindByProduct(ctx context.Context, productID uuid.UUID) (*models.ProductRollup, error)
}

type productPager interface {
	ListProductIDsPaged(ctx context.Context, limit, offset int) ([]uuid.UUID, int64, error)
}

type service struct {
	aggregator   offerAggregator
	products     productLoader
	coefficients coefficientResolver
	snapshots    snapshotStore
	pager        productPager
	cache        *Cache
	logg         *logger.Logger
	batchSize    int
}

// NewService constructs the rollup service. The cache may be nil.
func NewService(
	aggregator offerAggregator,
	products productLoader,
	coefficients coefficientResolver,
	snapshots snapshotStore,
	pager productPager,
	cache *Cache,
	cfg config.RollupConfig,
	logg *logger.Logger,
) (Service, error) {
	if aggregator == nil {
		return nil, fmt.Errorf("offer aggregator required")
	}
	if products == nil {
		return nil, fmt.Errorf("product loader required")
	}
	if coefficients == nil {
		return nil, fmt.Errorf("coefficient resolver required")
	}
	if snapshots == nil {
		return nil, fmt.Errorf("snapshot store required")
	}
	if pager == nil {
		return nil, fmt.Errorf("product pager required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = 100
	}
	return &service{
		aggregator:   aggregator,
		products:     products,
		coefficients: coefficients,
		snapshots:    snapshots,
		pager:        pager,
		cache:        cache,
		logg:         logg,
		batchSize:    batchSize,
	}, nil
}

func (s *service) Recompute(ctx context.Context, productID uuid.UUID) (*RollupDTO, error) {
	product, err := s.loadProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	offers, price, flags, err := s.compute(ctx, product, 1)
	if err != nil {
		return nil, err
	}

	snapshot := &models.ProductRollup{
		ProductID:       product.ID,
		PriceTTC:        price.PriceTTC,
		PriceSource:     price.Source,
		CoefficientUsed: price.CoefficientUsed,
		AlertFlags:      flagStrings(flags),
		OfferCount:      len(offers),
		ComputedAt:      time.Now().UTC(),
	}
	if len(offers) > 0 {
		best := offers[0].ID
		snapshot.BestOfferID = &best
	}

	if err := s.snapshots.Upsert(ctx, snapshot); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err,
			fmt.Sprintf("persist rollup (product_id=%s)", productID))
	}

	dto := toRollupDTO(snapshot)
	s.cache.Set(ctx, dto)
	return dto, nil
}

func (s *service) Get(ctx context.Context, productID uuid.UUID) (*RollupDTO, error) {
	if dto := s.cache.Get(ctx, productID); dto != nil {
		return dto, nil
	}

	row, err := s.snapshots.FindByProduct(ctx, productID)
	if err == nil {
		dto := toRollupDTO(row)
		s.cache.Set(ctx, dto)
		return dto, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err,
			fmt.Sprintf("load rollup (product_id=%s)", productID))
	}

	// First read for this product; compute the snapshot inline.
	return s.Recompute(ctx, productID)
}

func (s *service) Quote(ctx context.Context, productID uuid.UUID, quantity int) (*QuoteDTO, error) {
	if quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}
	product, err := s.loadProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	offers, price, flags, err := s.compute(ctx, product, quantity)
	if err != nil {
		return nil, err
	}
	return &QuoteDTO{
		ProductID:       product.ID,
		Quantity:        quantity,
		PriceTTC:        price.PriceTTC,
		PriceSource:     price.Source,
		CoefficientUsed: price.CoefficientUsed,
		AlertFlags:      flags,
		OfferCount:      len(offers),
	}, nil
}

func (s *service) RecomputeBatch(ctx context.Context, limit, offset int) (*BatchResult, error) {
	if offset < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "offset must not be negative")
	}
	if limit <= 0 {
		limit = s.batchSize
	}

	ids, total, err := s.pager.ListProductIDsPaged(ctx, limit, offset)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "page products for recompute")
	}

	result := &BatchResult{Total: total, NextOffset: offset + len(ids)}
	for _, id := range ids {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if _, err := s.Recompute(ctx, id); err != nil {
			result.Errors++
			ectx := s.logg.WithFields(ctx, map[string]any{
				"product_id": id.String(),
				"error":      err.Error(),
			})
			s.logg.Warn(ectx, "rollup recompute failed, continuing batch")
			continue
		}
		result.Processed++
	}
	result.Done = len(ids) == 0 || int64(result.NextOffset) >= total
	return result, nil
}

// compute aggregates offers, applies the tier ladder for the quantity, and
// resolves the public price and alert flags. Re-ranks after tier pricing
// since the effective unit price can reorder offers.
func (s *service) compute(
	ctx context.Context,
	product *models.Product,
	quantity int,
) ([]models.SupplierOffer, pricing.PublicPriceResult, []enums.AlertFlag, error) {
	offers, err := s.aggregator.BestFirst(ctx, product.ID)
	if err != nil {
		return nil, pricing.PublicPriceResult{}, nil, err
	}

	adjusted, err := tierAdjusted(offers, quantity)
	if err != nil {
		return nil, pricing.PublicPriceResult{}, nil, err
	}
	adjusted = pricing.Rank(adjusted, nil)

	lookup := func(family string, subfamily *string) (*decimal.Decimal, error) {
		return s.coefficients.Resolve(ctx, family, subfamily)
	}
	price, err := pricing.PublicPrice(adjusted, product.VATRate, product.Family, product.Subfamily, lookup)
	if err != nil {
		return nil, pricing.PublicPriceResult{}, nil, err
	}

	return adjusted, price, pricing.Alerts(adjusted, price), nil
}

// tierAdjusted returns offer copies whose unit price and PVP reflect the tier
// resolved for the quantity. Offers without a ladder pass through unchanged.
func tierAdjusted(offers []models.SupplierOffer, quantity int) ([]models.SupplierOffer, error) {
	adjusted := make([]models.SupplierOffer, len(offers))
	copy(adjusted, offers)
	for i := range adjusted {
		if len(adjusted[i].PriceTiers) == 0 {
			continue
		}
		tier, err := pricing.ResolveTier(adjusted[i].PriceTiers, quantity)
		if err != nil {
			return nil, err
		}
		priceHT := tier.PriceHT
		adjusted[i].UnitPriceHT = &priceHT
		if tier.PricePVP != nil {
			pvp := *tier.PricePVP
			adjusted[i].PricePVP = &pvp
		}
	}
	return adjusted, nil
}

func (s *service) loadProduct(ctx context.Context, productID uuid.UUID) (*models.Product, error) {
	product, err := s.products.FindProductByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err,
			fmt.Sprintf("load product (id=%s)", productID))
	}
	return product, nil
}

func flagStrings(flags []enums.AlertFlag) pq.StringArray {
	out := make(pq.StringArray, 0, len(flags))
	for _, flag := range flags {
		out = append(out, flag.String())
	}
	return out
}
