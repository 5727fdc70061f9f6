package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/plumehq/plume-backend/api/responses"
	"github.com/plumehq/plume-backend/api/validators"
	"github.com/plumehq/plume-backend/internal/rollups"
	pkgerrors "github.com/plumehq/plume-backend/pkg/errors"
	"github.com/plumehq/plume-backend/pkg/logger"
)

const maxQuoteQuantity = 100000

// ProductPrice serves the storefront price for a product. An optional qty
// query parameter reprices against the offer tier ladders; it defaults to 1.
func ProductPrice(svc rollups.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "rollup service unavailable"))
			return
		}

		productID, err := validators.ParseURLUUID(chi.URLParam(r, "productID"), "productID")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		qty, err := validators.ParseQueryInt(r, "qty", 1, 1, maxQuoteQuantity)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		quote, err := svc.Quote(ctx, productID, qty)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, quote)
	}
}

// ProductRollup serves the cached pricing snapshot for a product, computing
// it inline on a first read.
func ProductRollup(svc rollups.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "rollup service unavailable"))
			return
		}

		productID, err := validators.ParseURLUUID(chi.URLParam(r, "productID"), "productID")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		rollup, err := svc.Get(ctx, productID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, rollup)
	}
}
