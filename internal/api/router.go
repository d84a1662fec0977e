package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"ico-sale-engine/internal/observability"
)

// SetupRouter wires the sale API routes and middleware.
func (h *Handler) SetupRouter() *chi.Mux {
	r := chi.NewRouter()

	r.Use(requestLogger(h.logger))

	r.Route("/api/sales", func(r chi.Router) {
		r.Post("/", h.CreateSale)
		r.Get("/", h.ListSales)

		r.Route("/{address}", func(r chi.Router) {
			r.Get("/", h.GetSale)
			r.Post("/purchase", h.Purchase)
			r.Post("/pause", h.TogglePause)
			r.Post("/end", h.EndSale)
			r.Post("/withdraw", h.Withdraw)
			r.Patch("/params", h.UpdateParams)

			r.Get("/contributions", h.ListContributions)
			r.Get("/contributions/{user}", h.GetContribution)
			r.Get("/events", h.ListEvents)
		})
	})

	r.Route("/api/accounts", func(r chi.Router) {
		r.Post("/", h.CreateAccount)
		r.Get("/{address}", h.GetAccount)
		r.Post("/{address}/mint", h.Mint)
	})

	r.Get("/health", h.Health)
	r.Handle("/metrics", observability.Handler())

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
	})

	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
	})

	return r
}
