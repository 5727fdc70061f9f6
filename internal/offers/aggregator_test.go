package offers

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/plumehq/plume-backend/pkg/config"
	"github.com/plumehq/plume-backend/pkg/db/models"
	pkgerrors "github.com/plumehq/plume-backend/pkg/errors"
	"github.com/plumehq/plume-backend/pkg/logger"
)

type fakeOfferStore struct {
	direct       []models.SupplierOffer
	linkedIDs    []uuid.UUID
	linked       []models.SupplierOffer
	offersErr    error
	linkedIDsErr error
	linkedErr    error

	linkedCalled bool
}

func (f *fakeOfferStore) GetOffers(ctx context.Context, productID uuid.UUID) ([]models.SupplierOffer, error) {
	return f.direct, f.offersErr
}

func (f *fakeOfferStore) GetLinkedProductIDs(ctx context.Context, productID uuid.UUID) ([]uuid.UUID, error) {
	return f.linkedIDs, f.linkedIDsErr
}

func (f *fakeOfferStore) GetOffersForProducts(ctx context.Context, productIDs []uuid.UUID) ([]models.SupplierOffer, error) {
	f.linkedCalled = true
	return f.linked, f.linkedErr
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func testOffer(priceHT string) models.SupplierOffer {
	d, err := decimal.NewFromString(priceHT)
	if err != nil {
		panic(err)
	}
	return models.SupplierOffer{ID: uuid.New(), UnitPriceHT: &d}
}

func newTestAggregator(t *testing.T, store offerStore, degrade bool) Aggregator {
	t.Helper()
	agg, err := NewAggregator(store, config.PricingConfig{DegradeOnLinkFailure: degrade}, testLogger())
	if err != nil {
		t.Fatalf("NewAggregator: %v", err)
	}
	return agg
}

func TestAggregatorBestFirst(t *testing.T) {
	ctx := context.Background()

	t.Run("linked sibling offers join the ranked set", func(t *testing.T) {
		direct := testOffer("8.00")
		linked := testOffer("3.00")
		store := &fakeOfferStore{
			direct:    []models.SupplierOffer{direct},
			linkedIDs: []uuid.UUID{uuid.New()},
			linked:    []models.SupplierOffer{linked},
		}

		got, err := newTestAggregator(t, store, false).BestFirst(ctx, uuid.New())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(got) != 2 || got[0].ID != linked.ID {
			t.Fatalf("expected cheaper linked offer first, got %+v", got)
		}
	})

	t.Run("no linked products skips the sibling offer query", func(t *testing.T) {
		store := &fakeOfferStore{direct: []models.SupplierOffer{testOffer("5.00")}}

		got, err := newTestAggregator(t, store, false).BestFirst(ctx, uuid.New())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(got) != 1 {
			t.Fatalf("expected 1 offer, got %d", len(got))
		}
		if store.linkedCalled {
			t.Fatal("sibling offer query must not run without linked products")
		}
	})

	t.Run("direct offer load failure always fails aggregation", func(t *testing.T) {
		store := &fakeOfferStore{offersErr: errors.New("connection refused")}

		_, err := newTestAggregator(t, store, true).BestFirst(ctx, uuid.New())
		if pkgerrors.As(err).Code() != pkgerrors.CodeDependency {
			t.Fatalf("expected dependency error, got %v", err)
		}
	})

	t.Run("sibling failure degrades to direct offers when configured", func(t *testing.T) {
		direct := testOffer("5.00")
		store := &fakeOfferStore{
			direct:       []models.SupplierOffer{direct},
			linkedIDsErr: errors.New("timeout"),
		}

		got, err := newTestAggregator(t, store, true).BestFirst(ctx, uuid.New())
		if err != nil {
			t.Fatalf("expected degraded success, got error: %v", err)
		}
		if len(got) != 1 || got[0].ID != direct.ID {
			t.Fatalf("expected the direct offer only, got %+v", got)
		}
	})

	t.Run("sibling failure is fatal when degradation is off", func(t *testing.T) {
		store := &fakeOfferStore{
			direct:       []models.SupplierOffer{testOffer("5.00")},
			linkedIDsErr: errors.New("timeout"),
		}

		_, err := newTestAggregator(t, store, false).BestFirst(ctx, uuid.New())
		if pkgerrors.As(err).Code() != pkgerrors.CodeDependency {
			t.Fatalf("expected dependency error, got %v", err)
		}
	})

	t.Run("linked offer load failure honours the degrade flag", func(t *testing.T) {
		store := &fakeOfferStore{
			direct:    []models.SupplierOffer{testOffer("5.00")},
			linkedIDs: []uuid.UUID{uuid.New()},
			linkedErr: errors.New("timeout"),
		}

		got, err := newTestAggregator(t, store, true).BestFirst(ctx, uuid.New())
		if err != nil {
			t.Fatalf("expected degraded success, got error: %v", err)
		}
		if len(got) != 1 {
			t.Fatalf("expected the direct offer only, got %d offers", len(got))
		}
	})
}
