package handler

import (
	"net/http"

	"github.com/GideonMwiti/garagemaster-sub000/internal/api"
	"github.com/GideonMwiti/garagemaster-sub000/internal/auth"
	"github.com/GideonMwiti/garagemaster-sub000/internal/invoice"
	"github.com/GideonMwiti/garagemaster-sub000/internal/invoice/dto"
	"github.com/GideonMwiti/garagemaster-sub000/internal/model"
	"github.com/GideonMwiti/garagemaster-sub000/pkg/logger"
	"github.com/go-chi/chi/v5"
)

type InvoiceHandler struct {
	uc     invoice.UseCase
	logger logger.ZapLogger
}

func NewInvoiceHandler(uc invoice.UseCase, log logger.ZapLogger) *InvoiceHandler {
	return &InvoiceHandler{
		uc:     uc,
		logger: log,
	}
}

func (h *InvoiceHandler) Routes(r chi.Router) {
	billing := auth.RequireRole(model.RoleOwner, model.RoleManager, model.RoleAdmin, model.RoleCashier)
	managers := auth.RequireRole(model.RoleOwner, model.RoleManager, model.RoleAdmin)

	r.Get("/", h.List)
	r.Get("/{id}", h.Get)
	r.With(billing).Post("/", h.Create)
	r.With(billing).Post("/{id}/status", h.UpdateStatus)
	r.With(managers).Delete("/{id}", h.Delete)
}

func (h *InvoiceHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.ActorFrom(r.Context())

	var input dto.CreateInvoiceInput
	if err := api.DecodeJSON(r, &input); err != nil {
		api.RespondMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	inv, err := h.uc.Create(r.Context(), actor, &input)
	if err != nil {
		api.RespondError(w, r, h.logger, err)
		return
	}
	api.RespondJSON(w, http.StatusCreated, inv)
}

func (h *InvoiceHandler) Get(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.ActorFrom(r.Context())

	view, err := h.uc.Get(r.Context(), actor, chi.URLParam(r, "id"))
	if err != nil {
		api.RespondError(w, r, h.logger, err)
		return
	}
	api.RespondJSON(w, http.StatusOK, view)
}

func (h *InvoiceHandler) List(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.ActorFrom(r.Context())
	page, pageSize := api.Pagination(r)

	views, total, err := h.uc.List(r.Context(), actor, &dto.InvoiceFilters{
		Status:     model.InvoiceStatus(r.URL.Query().Get("status")),
		CustomerID: r.URL.Query().Get("customer_id"),
		Page:       page,
		PageSize:   pageSize,
	})
	if err != nil {
		api.RespondError(w, r, h.logger, err)
		return
	}
	api.RespondJSON(w, http.StatusOK, api.Page[dto.InvoiceView]{Items: views, Total: total, Page: page, PageSize: pageSize})
}

func (h *InvoiceHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.ActorFrom(r.Context())

	var input dto.UpdateStatusInput
	if err := api.DecodeJSON(r, &input); err != nil {
		api.RespondMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	input.InvoiceID = chi.URLParam(r, "id")

	inv, err := h.uc.UpdateStatus(r.Context(), actor, &input)
	if err != nil {
		api.RespondError(w, r, h.logger, err)
		return
	}
	api.RespondJSON(w, http.StatusOK, inv)
}

func (h *InvoiceHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.ActorFrom(r.Context())

	if err := h.uc.Delete(r.Context(), actor, chi.URLParam(r, "id")); err != nil {
		api.RespondError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
