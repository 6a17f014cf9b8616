package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	pb "github.com/light-bringer/provenance-ledger/api/ledger/v1"
	"github.com/light-bringer/provenance-ledger/internal/platform/auth"
)

// NewRouter mounts the ledger JSON API, health and metrics endpoints.
func NewRouter(ledger pb.LedgerServiceServer, tokens *auth.TokenService, gatherer prometheus.Gatherer, logger *slog.Logger) http.Handler {
	h := NewHandler(ledger, logger)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	r.Route("/v1", func(r chi.Router) {
		r.Use(authMiddleware(tokens))

		r.Get("/products/{productID}", h.getProduct)
		r.Get("/products/{productID}/history", h.listStatusHistory)
		r.Get("/products/{productID}/history/{sequence}", h.getStatusHistory)
		r.Get("/roles/{identity}", h.getRole)
		r.Get("/audit", h.listAuditEntries)
		r.Get("/audit/{txID}", h.getAuditEntry)

		r.Group(func(r chi.Router) {
			r.Use(requireIdentity)
			r.Post("/products", h.registerProduct)
			r.Post("/products/{productID}/status", h.updateProductStatus)
			r.Put("/roles/{identity}", h.assignRole)
		})
	})

	return otelhttp.NewHandler(r, "ledger.http")
}
