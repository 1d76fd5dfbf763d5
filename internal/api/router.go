package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/Cheertaboi/catalog-discount-service/internal/api/handlers"
	"github.com/Cheertaboi/catalog-discount-service/internal/api/middleware"
	"github.com/Cheertaboi/catalog-discount-service/internal/metrics"
	"github.com/Cheertaboi/catalog-discount-service/internal/models"
)

type Deps struct {
	Discounts   handlers.Discounts
	Credentials handlers.Credentials
	Logger      *zap.Logger
	Metrics     *metrics.Metrics
	CORSOrigins []string

	// Gatherer backs /metrics; nil uses the default registry.
	Gatherer prometheus.Gatherer
}

// NewRouter builds the HTTP router for the discount service
func NewRouter(d Deps) http.Handler {
	log := d.Logger
	if log == nil {
		log = zap.NewNop()
	}
	gatherer := d.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(log.Named("http"), d.Metrics))
	r.Use(middleware.Recoverer(log.Named("http")))
	r.Use(middleware.CORS(d.CORSOrigins))

	discounts := handlers.NewDiscountHandler(d.Discounts, log.Named("discounts"))
	catalog := handlers.NewCatalogHandler(d.Discounts, log.Named("catalog"))
	creds := handlers.NewCredentialsHandler(d.Credentials, log.Named("credentials"))

	r.Route("/api", func(r chi.Router) {
		r.Route("/discounts", func(r chi.Router) {
			r.Get("/", discounts.ListDiscounts)
			r.Post("/", discounts.CreateDiscount)
			r.Delete("/{id}", discounts.DeleteDiscount)
		})
		r.Post("/preview-matching-products", catalog.PreviewMatchingProducts)
		r.Get("/product-manufacturer", catalog.Attributes(models.ConditionManufacturer))
		r.Get("/category", catalog.Attributes(models.ConditionCategory))
		r.Get("/tag", catalog.Attributes(models.ConditionTag))

		r.Get("/credentials", creds.GetCredentials)
		r.Post("/credentials", creds.SaveCredentials)
		r.Post("/connect", creds.Connect)
	})

	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	// health
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	return r
}
