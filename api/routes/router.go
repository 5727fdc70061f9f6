package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/plumehq/plume-backend/api/controllers"
	"github.com/plumehq/plume-backend/api/middleware"
	"github.com/plumehq/plume-backend/internal/catalog"
	"github.com/plumehq/plume-backend/internal/offers"
	"github.com/plumehq/plume-backend/internal/rollups"
	"github.com/plumehq/plume-backend/pkg/config"
	"github.com/plumehq/plume-backend/pkg/logger"
)

// Deps carries everything the router wires into handlers.
type Deps struct {
	Config         *config.Config
	Logger         *logger.Logger
	DBPinger       controllers.Pinger
	RedisPinger    controllers.Pinger
	CatalogService catalog.Service
	OfferService   offers.Service
	RollupService  rollups.Service
}

// NewRouter assembles the HTTP surface: public price reads plus the
// back-office catalog, offer, and rollup endpoints.
func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(deps.Logger),
		middleware.RequestID(deps.Logger),
		middleware.Logging(deps.Logger),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(deps.Config))
		r.Get("/ready", controllers.HealthReady(deps.Config, deps.Logger, deps.DBPinger, deps.RedisPinger))
	})

	r.Route("/api/v1/products/{productID}", func(r chi.Router) {
		r.Get("/price", controllers.ProductPrice(deps.RollupService, deps.Logger))
		r.Get("/rollup", controllers.ProductRollup(deps.RollupService, deps.Logger))
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.AdminListProducts(deps.CatalogService, deps.Logger))
			r.Post("/", controllers.AdminCreateProduct(deps.CatalogService, deps.Logger))
			r.Route("/{productID}", func(r chi.Router) {
				r.Get("/", controllers.AdminGetProduct(deps.CatalogService, deps.Logger))
				r.Patch("/", controllers.AdminUpdateProduct(deps.CatalogService, deps.Logger))
				r.Get("/offers", controllers.AdminListProductOffers(deps.OfferService, deps.Logger))
				r.Post("/recompute", controllers.AdminRecomputeProduct(deps.RollupService, deps.Logger))
			})
		})

		r.Route("/offers", func(r chi.Router) {
			r.Post("/", controllers.AdminCreateOffer(deps.OfferService, deps.Logger))
			r.Route("/{offerID}", func(r chi.Router) {
				r.Get("/", controllers.AdminGetOffer(deps.OfferService, deps.Logger))
				r.Patch("/", controllers.AdminUpdateOffer(deps.OfferService, deps.Logger))
				r.Delete("/", controllers.AdminDeleteOffer(deps.OfferService, deps.Logger))
				r.Put("/tiers", controllers.AdminReplaceOfferTiers(deps.OfferService, deps.Logger))
			})
		})

		r.Route("/suppliers", func(r chi.Router) {
			r.Get("/", controllers.AdminListSuppliers(deps.CatalogService, deps.Logger))
			r.Post("/", controllers.AdminCreateSupplier(deps.CatalogService, deps.Logger))
			r.Put("/{supplierID}", controllers.AdminUpdateSupplier(deps.CatalogService, deps.Logger))
		})

		r.Route("/coefficients", func(r chi.Router) {
			r.Get("/", controllers.AdminListCoefficients(deps.CatalogService, deps.Logger))
			r.Put("/", controllers.AdminPutCoefficient(deps.CatalogService, deps.Logger))
			r.Delete("/{coefficientID}", controllers.AdminDeleteCoefficient(deps.CatalogService, deps.Logger))
		})

		r.Post("/rollups/recompute-batch", controllers.AdminRecomputeBatch(deps.RollupService, deps.Logger))
	})

	return r
}
