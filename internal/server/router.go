// Package server assembles the HTTP API.
package server

import (
	"net/http"

	"github.com/GideonMwiti/garagemaster-sub000/internal/api"
	"github.com/GideonMwiti/garagemaster-sub000/internal/auth"
	invH "github.com/GideonMwiti/garagemaster-sub000/internal/inventory/handler"
	invoiceH "github.com/GideonMwiti/garagemaster-sub000/internal/invoice/handler"
	jobH "github.com/GideonMwiti/garagemaster-sub000/internal/jobcard/handler"
	payH "github.com/GideonMwiti/garagemaster-sub000/internal/payment/handler"
	"github.com/GideonMwiti/garagemaster-sub000/pkg/logger"
	"github.com/GideonMwiti/garagemaster-sub000/pkg/middleware"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

type Handlers struct {
	Inventory *invH.InventoryHandler
	JobCards  *jobH.JobCardHandler
	Invoices  *invoiceH.InvoiceHandler
	Payments  *payH.PaymentHandler
}

type Options struct {
	AllowedOrigins []string
}

func NewRouter(h Handlers, tokens *auth.Tokens, opts Options, log logger.ZapLogger) http.Handler {
	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization", auth.TenantHeader},
		AllowCredentials: true,
	}))
	r.Use(chimw.RequestID)
	r.Use(middleware.AccessLog(log))
	r.Use(chimw.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		api.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Group(func(pr chi.Router) {
		pr.Use(auth.Middleware(tokens))

		pr.Route("/inventory", h.Inventory.Routes)
		pr.Route("/jobcards", h.JobCards.Routes)
		pr.Route("/invoices", func(r chi.Router) {
			h.Invoices.Routes(r)
			r.Get("/{id}/payments", h.Payments.ListByInvoice)
		})
		pr.Route("/payments", h.Payments.Routes)
	})

	return r
}
