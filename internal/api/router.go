package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func NewRouter(h *Handler, mw *Middleware) http.Handler {
	router := chi.NewRouter()

	router.Use(mw.Log, mw.Recover, mw.Cors, mw.LimitBody)

	router.Route("/api", func(r chi.Router) {
		r.Get("/health", h.Health)

		r.Get("/clients", h.ListClients)
		r.Post("/clients", h.AddClient)
		r.Delete("/clients", h.DeleteClient)
		r.Get("/clients/details", h.ClientDetails)

		r.Post("/submissions", h.CreateSubmission)
		r.Post("/pricesheets", h.ImportPriceSheets)
	})

	return router
}
