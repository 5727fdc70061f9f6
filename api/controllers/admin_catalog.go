package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/plumehq/plume-backend/api/responses"
	"github.com/plumehq/plume-backend/api/validators"
	"github.com/plumehq/plume-backend/internal/catalog"
	"github.com/plumehq/plume-backend/pkg/logger"
)

type createProductPayload struct {
	SKU       string           `json:"sku" validate:"required"`
	Name      string           `json:"name" validate:"required"`
	EAN       *string          `json:"ean,omitempty"`
	Family    string           `json:"family" validate:"required"`
	Subfamily *string          `json:"subfamily,omitempty"`
	VATRate   *decimal.Decimal `json:"vat_rate,omitempty"`
	Tags      []string         `json:"tags,omitempty"`
	IsActive  bool             `json:"is_active,omitempty"`
}

type updateProductPayload struct {
	Name      *string          `json:"name,omitempty"`
	EAN       *string          `json:"ean,omitempty"`
	Family    *string          `json:"family,omitempty"`
	Subfamily *string          `json:"subfamily,omitempty"`
	VATRate   *decimal.Decimal `json:"vat_rate,omitempty"`
	Tags      *[]string        `json:"tags,omitempty"`
	IsActive  *bool            `json:"is_active,omitempty"`
}

type supplierPayload struct {
	Name                string `json:"name" validate:"required"`
	Code                string `json:"code" validate:"required"`
	IsPreferred         bool   `json:"is_preferred,omitempty"`
	PriorityRank        *int   `json:"priority_rank,omitempty"`
	DefaultLeadTimeDays *int   `json:"default_lead_time_days,omitempty"`
	IsActive            bool   `json:"is_active,omitempty"`
}

type coefficientPayload struct {
	Family      string          `json:"family" validate:"required"`
	Subfamily   *string         `json:"subfamily,omitempty"`
	Coefficient decimal.Decimal `json:"coefficient" validate:"required"`
}

// AdminListProducts lists catalog products with optional family and search
// filters.
func AdminListProducts(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		limit, err := validators.ParseQueryInt(r, "limit", 50, 1, 200)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		filter := catalog.ProductListFilter{
			Query: r.URL.Query().Get("q"),
			Limit: limit,
		}
		if family := strings.TrimSpace(r.URL.Query().Get("family")); family != "" {
			filter.Family = &family
		}
		products, err := svc.ListProducts(ctx, filter)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, products)
	}
}

// AdminGetProduct returns one product.
func AdminGetProduct(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		productID, err := validators.ParseURLUUID(chi.URLParam(r, "productID"), "productID")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		product, err := svc.GetProduct(ctx, productID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}

// AdminCreateProduct registers a new catalog product.
func AdminCreateProduct(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		var payload createProductPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		product, err := svc.CreateProduct(ctx, catalog.CreateProductInput{
			SKU:       payload.SKU,
			Name:      payload.Name,
			EAN:       payload.EAN,
			Family:    payload.Family,
			Subfamily: payload.Subfamily,
			VATRate:   payload.VATRate,
			Tags:      payload.Tags,
			IsActive:  payload.IsActive,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, product)
	}
}

// AdminUpdateProduct applies a partial update to a product.
func AdminUpdateProduct(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		productID, err := validators.ParseURLUUID(chi.URLParam(r, "productID"), "productID")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		var payload updateProductPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		product, err := svc.UpdateProduct(ctx, productID, catalog.UpdateProductInput{
			Name:      payload.Name,
			EAN:       payload.EAN,
			Family:    payload.Family,
			Subfamily: payload.Subfamily,
			VATRate:   payload.VATRate,
			Tags:      payload.Tags,
			IsActive:  payload.IsActive,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}

// AdminListSuppliers lists all suppliers.
func AdminListSuppliers(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		suppliers, err := svc.ListSuppliers(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, suppliers)
	}
}

// AdminCreateSupplier registers a supplier.
func AdminCreateSupplier(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		var payload supplierPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		supplier, err := svc.CreateSupplier(ctx, supplierInput(payload))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, supplier)
	}
}

// AdminUpdateSupplier replaces a supplier's attributes.
func AdminUpdateSupplier(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		supplierID, err := validators.ParseURLUUID(chi.URLParam(r, "supplierID"), "supplierID")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		var payload supplierPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		supplier, err := svc.UpdateSupplier(ctx, supplierID, supplierInput(payload))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, supplier)
	}
}

// AdminListCoefficients lists the resale coefficient table.
func AdminListCoefficients(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		rows, err := svc.ListCoefficients(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}

// AdminPutCoefficient creates or replaces one coefficient entry.
func AdminPutCoefficient(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		var payload coefficientPayload
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		row, err := svc.PutCoefficient(ctx, catalog.CoefficientInput{
			Family:      payload.Family,
			Subfamily:   payload.Subfamily,
			Coefficient: payload.Coefficient,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, row)
	}
}

// AdminDeleteCoefficient removes one coefficient entry.
func AdminDeleteCoefficient(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		id, err := validators.ParseURLUUID(chi.URLParam(r, "coefficientID"), "coefficientID")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		if err := svc.DeleteCoefficient(ctx, id); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

func supplierInput(payload supplierPayload) catalog.SupplierInput {
	return catalog.SupplierInput{
		Name:                payload.Name,
		Code:                payload.Code,
		IsPreferred:         payload.IsPreferred,
		PriorityRank:        payload.PriorityRank,
		DefaultLeadTimeDays: payload.DefaultLeadTimeDays,
		IsActive:            payload.IsActive,
	}
}
