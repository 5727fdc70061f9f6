package pricing

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/plumehq/plume-backend/pkg/db/models"
	"github.com/plumehq/plume-backend/pkg/enums"
	pkgerrors "github.com/plumehq/plume-backend/pkg/errors"
)

func pvp(s string) func(*models.SupplierOffer) {
	return func(o *models.SupplierOffer) { o.PricePVP = decPtr(s) }
}

func staticCoefficient(s string) CoefficientLookup {
	return func(family string, subfamily *string) (*decimal.Decimal, error) {
		return decPtr(s), nil
	}
}

func noCoefficient(family string, subfamily *string) (*decimal.Decimal, error) {
	return nil, nil
}

func TestPublicPrice(t *testing.T) {
	vat := dec("20.00")

	t.Run("supplier resale price wins when present", func(t *testing.T) {
		offers := []models.SupplierOffer{offer(pvp("10.00"), price("4.00"))}

		got, err := PublicPrice(offers, vat, "papier", nil, staticCoefficient("99"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.Source != enums.PriceSourceSupplierPVP {
			t.Fatalf("got source %s, want %s", got.Source, enums.PriceSourceSupplierPVP)
		}
		if got.PriceTTC == nil || !got.PriceTTC.Equal(dec("12.00")) {
			t.Fatalf("got price %v, want 12.00", got.PriceTTC)
		}
		if got.CoefficientUsed != nil {
			t.Fatal("coefficient must not be recorded on the resale price path")
		}
	})

	t.Run("coefficient applies to the best purchase price", func(t *testing.T) {
		offers := []models.SupplierOffer{offer(price("5.00"))}

		got, err := PublicPrice(offers, vat, "papier", nil, staticCoefficient("2.5"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.Source != enums.PriceSourceCoef {
			t.Fatalf("got source %s, want %s", got.Source, enums.PriceSourceCoef)
		}
		if got.PriceTTC == nil || !got.PriceTTC.Equal(dec("12.50")) {
			t.Fatalf("got price %v, want 12.50", got.PriceTTC)
		}
		if got.CoefficientUsed == nil || !got.CoefficientUsed.Equal(dec("2.5")) {
			t.Fatalf("got coefficient %v, want 2.5", got.CoefficientUsed)
		}
	})

	t.Run("unusable resale price falls through to the coefficient", func(t *testing.T) {
		offers := []models.SupplierOffer{offer(pvp("0"), price("5.00"))}

		got, err := PublicPrice(offers, vat, "papier", nil, staticCoefficient("2"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.Source != enums.PriceSourceCoef {
			t.Fatalf("got source %s, want %s", got.Source, enums.PriceSourceCoef)
		}
	})

	t.Run("empty offer set is unavailable without consulting the lookup", func(t *testing.T) {
		called := false
		lookup := func(family string, subfamily *string) (*decimal.Decimal, error) {
			called = true
			return decPtr("2"), nil
		}

		got, err := PublicPrice(nil, vat, "papier", nil, lookup)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.Source != enums.PriceSourceUnavailable || got.PriceTTC != nil {
			t.Fatalf("expected unavailable, got %+v", got)
		}
		if called {
			t.Fatal("lookup must not run for an empty offer set")
		}
	})

	t.Run("no coefficient configured means unavailable", func(t *testing.T) {
		offers := []models.SupplierOffer{offer(price("5.00"))}

		got, err := PublicPrice(offers, vat, "papier", nil, noCoefficient)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.Source != enums.PriceSourceUnavailable {
			t.Fatalf("got source %s, want %s", got.Source, enums.PriceSourceUnavailable)
		}
	})

	t.Run("best offer without a purchase price skips the coefficient path", func(t *testing.T) {
		offers := []models.SupplierOffer{offer()}

		got, err := PublicPrice(offers, vat, "papier", nil, staticCoefficient("2"))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.Source != enums.PriceSourceUnavailable {
			t.Fatalf("got source %s, want %s", got.Source, enums.PriceSourceUnavailable)
		}
	})

	t.Run("lookup failure surfaces as a dependency error", func(t *testing.T) {
		offers := []models.SupplierOffer{offer(price("5.00"))}
		lookup := func(family string, subfamily *string) (*decimal.Decimal, error) {
			return nil, errors.New("connection refused")
		}

		_, err := PublicPrice(offers, vat, "papier", nil, lookup)
		if pkgerrors.As(err).Code() != pkgerrors.CodeDependency {
			t.Fatalf("expected dependency error, got %v", err)
		}
	})
}
