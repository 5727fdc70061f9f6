package rollups

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/plumehq/plume-backend/pkg/config"
	"github.com/plumehq/plume-backend/pkg/db/models"
	"github.com/plumehq/plume-backend/pkg/enums"
	pkgerrors "github.com/plumehq/plume-backend/pkg/errors"
	"github.com/plumehq/plume-backend/pkg/logger"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func intPtr(v int) *int { return &v }

type fakeAggregator struct {
	offers map[uuid.UUID][]models.SupplierOffer
	err    error
}

func (f *fakeAggregator) BestFirst(ctx context.Context, productID uuid.UUID) ([]models.SupplierOffer, error) {
	return f.offers[productID], f.err
}

type fakeProducts struct {
	products map[uuid.UUID]*models.Product
}

func (f *fakeProducts) FindProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	if p, ok := f.products[id]; ok {
		return p, nil
	}
	return nil, gorm.ErrRecordNotFound
}

type fakeCoefficients struct {
	coefficient *decimal.Decimal
	err         error
}

func (f *fakeCoefficients) Resolve(ctx context.Context, family string, subfamily *string) (*decimal.Decimal, error) {
	return f.coefficient, f.err
}

type fakeSnapshots struct {
	rows      map[uuid.UUID]*models.ProductRollup
	upsertErr error
}

func (f *fakeSnapshots) Upsert(ctx context.Context, rollup *models.ProductRollup) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	if f.rows == nil {
		f.rows = make(map[uuid.UUID]*models.ProductRollup)
	}
	f.rows[rollup.ProductID] = rollup
	return nil
}

func (f *fakeSnapshots) FindByProduct(ctx context.Context, productID uuid.UUID) (*models.ProductRollup, error) {
	if row, ok := f.rows[productID]; ok {
		return row, nil
	}
	return nil, gorm.ErrRecordNotFound
}

type fakePager struct {
	ids   []uuid.UUID
	total int64
}

func (f *fakePager) ListProductIDsPaged(ctx context.Context, limit, offset int) ([]uuid.UUID, int64, error) {
	if offset >= len(f.ids) {
		return nil, f.total, nil
	}
	end := offset + limit
	if end > len(f.ids) {
		end = len(f.ids)
	}
	return f.ids[offset:end], f.total, nil
}

type deps struct {
	aggregator *fakeAggregator
	products   *fakeProducts
	coef       *fakeCoefficients
	snapshots  *fakeSnapshots
	pager      *fakePager
}

func newTestService(t *testing.T, d deps) Service {
	t.Helper()
	if d.aggregator == nil {
		d.aggregator = &fakeAggregator{}
	}
	if d.products == nil {
		d.products = &fakeProducts{products: map[uuid.UUID]*models.Product{}}
	}
	if d.coef == nil {
		d.coef = &fakeCoefficients{}
	}
	if d.snapshots == nil {
		d.snapshots = &fakeSnapshots{}
	}
	if d.pager == nil {
		d.pager = &fakePager{}
	}
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	svc, err := NewService(d.aggregator, d.products, d.coef, d.snapshots, d.pager, nil,
		config.RollupConfig{BatchSize: 100}, logg)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func activeProduct(vat string) *models.Product {
	return &models.Product{ID: uuid.New(), SKU: "PLM-001", Family: "papier", VATRate: dec(vat), IsActive: true}
}

func TestRecompute(t *testing.T) {
	ctx := context.Background()

	t.Run("snapshot records the supplier resale price path", func(t *testing.T) {
		product := activeProduct("20.00")
		offer := models.SupplierOffer{ID: uuid.New(), PricePVP: decPtr("10.00"), StockQuantity: intPtr(4)}
		snapshots := &fakeSnapshots{}
		svc := newTestService(t, deps{
			products:   &fakeProducts{products: map[uuid.UUID]*models.Product{product.ID: product}},
			aggregator: &fakeAggregator{offers: map[uuid.UUID][]models.SupplierOffer{product.ID: {offer}}},
			snapshots:  snapshots,
		})

		dto, err := svc.Recompute(ctx, product.ID)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if dto.PriceSource != enums.PriceSourceSupplierPVP {
			t.Fatalf("got source %s, want %s", dto.PriceSource, enums.PriceSourceSupplierPVP)
		}
		if dto.PriceTTC == nil || !dto.PriceTTC.Equal(dec("12.00")) {
			t.Fatalf("got price %v, want 12.00", dto.PriceTTC)
		}
		if dto.BestOfferID == nil || *dto.BestOfferID != offer.ID {
			t.Fatalf("got best offer %v, want %v", dto.BestOfferID, offer.ID)
		}
		if len(dto.AlertFlags) != 0 {
			t.Fatalf("expected no alerts, got %v", dto.AlertFlags)
		}
		if snapshots.rows[product.ID] == nil {
			t.Fatal("snapshot was not persisted")
		}
	})

	t.Run("coefficient fallback is flagged on the snapshot", func(t *testing.T) {
		product := activeProduct("20.00")
		offer := models.SupplierOffer{ID: uuid.New(), UnitPriceHT: decPtr("5.00"), StockQuantity: intPtr(1)}
		svc := newTestService(t, deps{
			products:   &fakeProducts{products: map[uuid.UUID]*models.Product{product.ID: product}},
			aggregator: &fakeAggregator{offers: map[uuid.UUID][]models.SupplierOffer{product.ID: {offer}}},
			coef:       &fakeCoefficients{coefficient: decPtr("2.5")},
		})

		dto, err := svc.Recompute(ctx, product.ID)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if dto.PriceSource != enums.PriceSourceCoef {
			t.Fatalf("got source %s, want %s", dto.PriceSource, enums.PriceSourceCoef)
		}
		if dto.PriceTTC == nil || !dto.PriceTTC.Equal(dec("12.50")) {
			t.Fatalf("got price %v, want 12.50", dto.PriceTTC)
		}
		if len(dto.AlertFlags) != 1 || dto.AlertFlags[0] != enums.AlertCoefficientFallbackUsed {
			t.Fatalf("got flags %v, want coefficient_fallback_used", dto.AlertFlags)
		}
	})

	t.Run("product without offers snapshots as unavailable", func(t *testing.T) {
		product := activeProduct("20.00")
		svc := newTestService(t, deps{
			products: &fakeProducts{products: map[uuid.UUID]*models.Product{product.ID: product}},
		})

		dto, err := svc.Recompute(ctx, product.ID)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if dto.PriceSource != enums.PriceSourceUnavailable || dto.PriceTTC != nil {
			t.Fatalf("expected unavailable, got %+v", dto)
		}
		if dto.BestOfferID != nil || dto.OfferCount != 0 {
			t.Fatalf("expected empty offer fields, got %+v", dto)
		}
		if len(dto.AlertFlags) != 1 || dto.AlertFlags[0] != enums.AlertNoOffers {
			t.Fatalf("got flags %v, want no_offers only", dto.AlertFlags)
		}
	})

	t.Run("unknown product is a not found error", func(t *testing.T) {
		svc := newTestService(t, deps{})
		_, err := svc.Recompute(ctx, uuid.New())
		if pkgerrors.As(err).Code() != pkgerrors.CodeNotFound {
			t.Fatalf("expected not found, got %v", err)
		}
	})

	t.Run("persistence failure surfaces as a dependency error", func(t *testing.T) {
		product := activeProduct("20.00")
		svc := newTestService(t, deps{
			products:  &fakeProducts{products: map[uuid.UUID]*models.Product{product.ID: product}},
			snapshots: &fakeSnapshots{upsertErr: errors.New("connection refused")},
		})

		_, err := svc.Recompute(ctx, product.ID)
		if pkgerrors.As(err).Code() != pkgerrors.CodeDependency {
			t.Fatalf("expected dependency error, got %v", err)
		}
	})
}

func TestGet(t *testing.T) {
	ctx := context.Background()

	t.Run("existing snapshot is served without recompute", func(t *testing.T) {
		product := activeProduct("20.00")
		snapshots := &fakeSnapshots{rows: map[uuid.UUID]*models.ProductRollup{
			product.ID: {
				ProductID:   product.ID,
				PriceTTC:    decPtr("9.99"),
				PriceSource: enums.PriceSourceSupplierPVP,
				OfferCount:  2,
			},
		}}
		svc := newTestService(t, deps{snapshots: snapshots})

		dto, err := svc.Get(ctx, product.ID)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if dto.PriceTTC == nil || !dto.PriceTTC.Equal(dec("9.99")) {
			t.Fatalf("got price %v, want 9.99", dto.PriceTTC)
		}
	})

	t.Run("miss triggers an inline recompute", func(t *testing.T) {
		product := activeProduct("20.00")
		offer := models.SupplierOffer{ID: uuid.New(), PricePVP: decPtr("10.00"), StockQuantity: intPtr(1)}
		snapshots := &fakeSnapshots{}
		svc := newTestService(t, deps{
			products:   &fakeProducts{products: map[uuid.UUID]*models.Product{product.ID: product}},
			aggregator: &fakeAggregator{offers: map[uuid.UUID][]models.SupplierOffer{product.ID: {offer}}},
			snapshots:  snapshots,
		})

		dto, err := svc.Get(ctx, product.ID)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if dto.PriceTTC == nil || !dto.PriceTTC.Equal(dec("12.00")) {
			t.Fatalf("got price %v, want 12.00", dto.PriceTTC)
		}
		if snapshots.rows[product.ID] == nil {
			t.Fatal("recompute-on-miss did not persist the snapshot")
		}
	})
}

func TestQuote(t *testing.T) {
	ctx := context.Background()

	t.Run("tier ladder reprices the quantity", func(t *testing.T) {
		product := activeProduct("20.00")
		offer := models.SupplierOffer{
			ID:            uuid.New(),
			UnitPriceHT:   decPtr("10.00"),
			StockQuantity: intPtr(100),
			PriceTiers: []models.OfferPriceTier{
				{Tier: 1, MinQty: 1, PriceHT: dec("10.00")},
				{Tier: 2, MinQty: 10, PriceHT: dec("8.00")},
			},
		}
		svc := newTestService(t, deps{
			products:   &fakeProducts{products: map[uuid.UUID]*models.Product{product.ID: product}},
			aggregator: &fakeAggregator{offers: map[uuid.UUID][]models.SupplierOffer{product.ID: {offer}}},
			coef:       &fakeCoefficients{coefficient: decPtr("2")},
		})

		quote, err := svc.Quote(ctx, product.ID, 10)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if quote.PriceTTC == nil || !quote.PriceTTC.Equal(dec("16.00")) {
			t.Fatalf("got price %v, want 16.00", quote.PriceTTC)
		}
		if quote.PriceSource != enums.PriceSourceCoef {
			t.Fatalf("got source %s, want %s", quote.PriceSource, enums.PriceSourceCoef)
		}
	})

	t.Run("tier resale price overrides the offer resale price", func(t *testing.T) {
		product := activeProduct("20.00")
		offer := models.SupplierOffer{
			ID:            uuid.New(),
			StockQuantity: intPtr(100),
			PriceTiers: []models.OfferPriceTier{
				{Tier: 1, MinQty: 1, PriceHT: dec("10.00"), PricePVP: decPtr("15.00")},
			},
		}
		svc := newTestService(t, deps{
			products:   &fakeProducts{products: map[uuid.UUID]*models.Product{product.ID: product}},
			aggregator: &fakeAggregator{offers: map[uuid.UUID][]models.SupplierOffer{product.ID: {offer}}},
		})

		quote, err := svc.Quote(ctx, product.ID, 1)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if quote.PriceSource != enums.PriceSourceSupplierPVP {
			t.Fatalf("got source %s, want %s", quote.PriceSource, enums.PriceSourceSupplierPVP)
		}
		if quote.PriceTTC == nil || !quote.PriceTTC.Equal(dec("18.00")) {
			t.Fatalf("got price %v, want 18.00", quote.PriceTTC)
		}
	})

	t.Run("non-positive quantity is rejected", func(t *testing.T) {
		svc := newTestService(t, deps{})
		_, err := svc.Quote(ctx, uuid.New(), 0)
		if pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
			t.Fatalf("expected validation error, got %v", err)
		}
	})
}

func TestRecomputeBatch(t *testing.T) {
	ctx := context.Background()

	seed := func(n int) (*fakeProducts, *fakeAggregator, *fakePager) {
		products := &fakeProducts{products: map[uuid.UUID]*models.Product{}}
		aggregator := &fakeAggregator{offers: map[uuid.UUID][]models.SupplierOffer{}}
		pager := &fakePager{total: int64(n)}
		for i := 0; i < n; i++ {
			p := activeProduct("20.00")
			products.products[p.ID] = p
			aggregator.offers[p.ID] = []models.SupplierOffer{
				{ID: uuid.New(), PricePVP: decPtr("10.00"), StockQuantity: intPtr(1)},
			}
			pager.ids = append(pager.ids, p.ID)
		}
		return products, aggregator, pager
	}

	t.Run("a middle page reports progress and not done", func(t *testing.T) {
		products, aggregator, pager := seed(5)
		svc := newTestService(t, deps{products: products, aggregator: aggregator, pager: pager})

		result, err := svc.RecomputeBatch(ctx, 2, 2)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.Processed != 2 || result.Errors != 0 {
			t.Fatalf("got processed=%d errors=%d, want 2/0", result.Processed, result.Errors)
		}
		if result.NextOffset != 4 || result.Done {
			t.Fatalf("got next_offset=%d done=%v, want 4/false", result.NextOffset, result.Done)
		}
	})

	t.Run("the final page reports done", func(t *testing.T) {
		products, aggregator, pager := seed(5)
		svc := newTestService(t, deps{products: products, aggregator: aggregator, pager: pager})

		result, err := svc.RecomputeBatch(ctx, 3, 3)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.Processed != 2 || result.NextOffset != 5 || !result.Done {
			t.Fatalf("unexpected final page: %+v", result)
		}
	})

	t.Run("an offset past the end is done immediately", func(t *testing.T) {
		products, aggregator, pager := seed(2)
		svc := newTestService(t, deps{products: products, aggregator: aggregator, pager: pager})

		result, err := svc.RecomputeBatch(ctx, 10, 50)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.Processed != 0 || !result.Done {
			t.Fatalf("unexpected past-the-end page: %+v", result)
		}
	})

	t.Run("per-product failures are counted, not fatal", func(t *testing.T) {
		products, aggregator, pager := seed(3)
		// Unregister one product so its recompute fails with not found.
		missing := pager.ids[1]
		delete(products.products, missing)

		svc := newTestService(t, deps{products: products, aggregator: aggregator, pager: pager})
		result, err := svc.RecomputeBatch(ctx, 10, 0)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if result.Processed != 2 || result.Errors != 1 {
			t.Fatalf("got processed=%d errors=%d, want 2/1", result.Processed, result.Errors)
		}
		if !result.Done {
			t.Fatal("expected done on full scan")
		}
	})

	t.Run("negative offset is rejected", func(t *testing.T) {
		svc := newTestService(t, deps{})
		_, err := svc.RecomputeBatch(ctx, 10, -1)
		if pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
			t.Fatalf("expected validation error, got %v", err)
		}
	})
}
