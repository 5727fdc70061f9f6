package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/plumehq/plume-backend/api/responses"
	"github.com/plumehq/plume-backend/api/validators"
	"github.com/plumehq/plume-backend/internal/rollups"
	"github.com/plumehq/plume-backend/pkg/logger"
)

type recomputeBatchPayload struct {
	Limit  int `json:"limit,omitempty" validate:"min=0,max=500"`
	Offset int `json:"offset" validate:"min=0"`
}

// AdminRecomputeProduct rebuilds the rollup for one product immediately.
func AdminRecomputeProduct(svc rollups.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		productID, err := validators.ParseURLUUID(chi.URLParam(r, "productID"), "productID")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		rollup, err := svc.Recompute(ctx, productID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, rollup)
	}
}

// AdminRecomputeBatch processes one page of the catalog-wide recompute. The
// caller drives pagination by feeding next_offset back until done.
func AdminRecomputeBatch(svc rollups.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		var payload recomputeBatchPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		result, err := svc.RecomputeBatch(ctx, payload.Limit, payload.Offset)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
