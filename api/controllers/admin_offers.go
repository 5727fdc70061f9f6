package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/plumehq/plume-backend/api/responses"
	"github.com/plumehq/plume-backend/api/validators"
	"github.com/plumehq/plume-backend/internal/offers"
	"github.com/plumehq/plume-backend/pkg/enums"
	pkgerrors "github.com/plumehq/plume-backend/pkg/errors"
	"github.com/plumehq/plume-backend/pkg/logger"
)

type tierPayload struct {
	Tier     int              `json:"tier" validate:"required,gt=0"`
	MinQty   int              `json:"min_qty" validate:"required,gt=0"`
	PriceHT  decimal.Decimal  `json:"price_ht" validate:"required"`
	PricePVP *decimal.Decimal `json:"price_pvp,omitempty"`
	TaxCOP   *decimal.Decimal `json:"tax_cop,omitempty"`
	TaxD3E   *decimal.Decimal `json:"tax_d3e,omitempty"`
}

type createOfferPayload struct {
	SupplierID        string           `json:"supplier_id" validate:"required,uuid4"`
	ProductID         string           `json:"product_id" validate:"required,uuid4"`
	SupplierReference *string          `json:"supplier_reference,omitempty"`
	UnitPriceHT       *decimal.Decimal `json:"unit_price_ht,omitempty"`
	PricePVP          *decimal.Decimal `json:"price_pvp,omitempty"`
	StockQuantity     *int             `json:"stock_quantity,omitempty"`
	LeadTimeDays      *int             `json:"lead_time_days,omitempty"`
	MinOrderQuantity  int              `json:"min_order_quantity,omitempty"`
	SourceType        string           `json:"source_type" validate:"required"`
	IsPreferred       bool             `json:"is_preferred,omitempty"`
	PriorityRank      *int             `json:"priority_rank,omitempty"`
	Tiers             []tierPayload    `json:"tiers,omitempty" validate:"dive"`
}

type updateOfferPayload struct {
	SupplierReference *string          `json:"supplier_reference,omitempty"`
	UnitPriceHT       *decimal.Decimal `json:"unit_price_ht,omitempty"`
	PricePVP          *decimal.Decimal `json:"price_pvp,omitempty"`
	StockQuantity     *int             `json:"stock_quantity,omitempty"`
	LeadTimeDays      *int             `json:"lead_time_days,omitempty"`
	MinOrderQuantity  *int             `json:"min_order_quantity,omitempty"`
	SourceType        *string          `json:"source_type,omitempty"`
	IsPreferred       *bool            `json:"is_preferred,omitempty"`
	PriorityRank      *int             `json:"priority_rank,omitempty"`
}

type replaceTiersPayload struct {
	Tiers []tierPayload `json:"tiers" validate:"required,dive"`
}

// AdminListProductOffers lists every offer registered for a product.
func AdminListProductOffers(svc offers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		productID, err := validators.ParseURLUUID(chi.URLParam(r, "productID"), "productID")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		rows, err := svc.ListProductOffers(ctx, productID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}

// AdminGetOffer returns one offer with its tier ladder.
func AdminGetOffer(svc offers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		offerID, err := validators.ParseURLUUID(chi.URLParam(r, "offerID"), "offerID")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		offer, err := svc.GetOffer(ctx, offerID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, offer)
	}
}

// AdminCreateOffer registers a supplier offer for a product.
func AdminCreateOffer(svc offers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		var payload createOfferPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		sourceType, err := enums.ParseOfferSourceType(payload.SourceType)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid offer source type"))
			return
		}

		input := offers.CreateOfferInput{
			SupplierID:        uuid.MustParse(payload.SupplierID),
			ProductID:         uuid.MustParse(payload.ProductID),
			SupplierReference: payload.SupplierReference,
			UnitPriceHT:       payload.UnitPriceHT,
			PricePVP:          payload.PricePVP,
			StockQuantity:     payload.StockQuantity,
			LeadTimeDays:      payload.LeadTimeDays,
			MinOrderQuantity:  payload.MinOrderQuantity,
			SourceType:        sourceType,
			IsPreferred:       payload.IsPreferred,
			PriorityRank:      payload.PriorityRank,
			Tiers:             tierInputs(payload.Tiers),
		}

		offer, err := svc.CreateOffer(ctx, input)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, offer)
	}
}

// AdminUpdateOffer applies a partial update to an offer.
func AdminUpdateOffer(svc offers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		offerID, err := validators.ParseURLUUID(chi.URLParam(r, "offerID"), "offerID")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var payload updateOfferPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		input := offers.UpdateOfferInput{
			SupplierReference: payload.SupplierReference,
			UnitPriceHT:       payload.UnitPriceHT,
			PricePVP:          payload.PricePVP,
			StockQuantity:     payload.StockQuantity,
			LeadTimeDays:      payload.LeadTimeDays,
			MinOrderQuantity:  payload.MinOrderQuantity,
			IsPreferred:       payload.IsPreferred,
			PriorityRank:      payload.PriorityRank,
		}
		if payload.SourceType != nil {
			sourceType, err := enums.ParseOfferSourceType(*payload.SourceType)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid offer source type"))
				return
			}
			input.SourceType = &sourceType
		}

		offer, err := svc.UpdateOffer(ctx, offerID, input)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, offer)
	}
}

// AdminDeleteOffer removes an offer and its tiers.
func AdminDeleteOffer(svc offers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		offerID, err := validators.ParseURLUUID(chi.URLParam(r, "offerID"), "offerID")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		if err := svc.DeleteOffer(ctx, offerID); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

// AdminReplaceOfferTiers swaps the full tier ladder of an offer.
func AdminReplaceOfferTiers(svc offers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		offerID, err := validators.ParseURLUUID(chi.URLParam(r, "offerID"), "offerID")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var payload replaceTiersPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		offer, err := svc.ReplaceTiers(ctx, offerID, tierInputs(payload.Tiers))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, offer)
	}
}

func tierInputs(payloads []tierPayload) []offers.TierInput {
	tiers := make([]offers.TierInput, 0, len(payloads))
	for _, p := range payloads {
		tier := offers.TierInput{
			Tier:     p.Tier,
			MinQty:   p.MinQty,
			PriceHT:  p.PriceHT,
			PricePVP: p.PricePVP,
		}
		if p.TaxCOP != nil {
			tier.TaxCOP = *p.TaxCOP
		}
		if p.TaxD3E != nil {
			tier.TaxD3E = *p.TaxD3E
		}
		tiers = append(tiers, tier)
	}
	return tiers
}
