package handler

import (
	"net/http"

	"github.com/GideonMwiti/garagemaster-sub000/internal/api"
	"github.com/GideonMwiti/garagemaster-sub000/internal/auth"
	"github.com/GideonMwiti/garagemaster-sub000/internal/model"
	"github.com/GideonMwiti/garagemaster-sub000/internal/payment"
	"github.com/GideonMwiti/garagemaster-sub000/internal/payment/dto"
	"github.com/GideonMwiti/garagemaster-sub000/pkg/logger"
	"github.com/go-chi/chi/v5"
)

type PaymentHandler struct {
	uc     payment.UseCase
	logger logger.ZapLogger
}

func NewPaymentHandler(uc payment.UseCase, log logger.ZapLogger) *PaymentHandler {
	return &PaymentHandler{
		uc:     uc,
		logger: log,
	}
}

func (h *PaymentHandler) Routes(r chi.Router) {
	r.With(auth.RequireRole(model.RoleOwner, model.RoleManager, model.RoleAdmin, model.RoleCashier)).Post("/", h.Record)
	r.With(auth.RequireRole(model.RoleOwner, model.RoleManager, model.RoleAdmin)).Delete("/{id}", h.Delete)
}

func (h *PaymentHandler) Record(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.ActorFrom(r.Context())

	var input dto.RecordPaymentInput
	if err := api.DecodeJSON(r, &input); err != nil {
		api.RespondMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	p, err := h.uc.Record(r.Context(), actor, &input)
	if err != nil {
		api.RespondError(w, r, h.logger, err)
		return
	}
	api.RespondJSON(w, http.StatusCreated, p)
}

func (h *PaymentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.ActorFrom(r.Context())

	if err := h.uc.Delete(r.Context(), actor, chi.URLParam(r, "id")); err != nil {
		api.RespondError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListByInvoice serves GET /invoices/{id}/payments.
func (h *PaymentHandler) ListByInvoice(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.ActorFrom(r.Context())

	payments, err := h.uc.ListByInvoice(r.Context(), actor, chi.URLParam(r, "id"))
	if err != nil {
		api.RespondError(w, r, h.logger, err)
		return
	}
	api.RespondJSON(w, http.StatusOK, payments)
}
