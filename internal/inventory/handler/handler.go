package handler

import (
	"net/http"
	"time"

	"github.com/GideonMwiti/garagemaster-sub000/internal/api"
	"github.com/GideonMwiti/garagemaster-sub000/internal/apperror"
	"github.com/GideonMwiti/garagemaster-sub000/internal/auth"
	"github.com/GideonMwiti/garagemaster-sub000/internal/inventory"
	"github.com/GideonMwiti/garagemaster-sub000/internal/inventory/dto"
	"github.com/GideonMwiti/garagemaster-sub000/internal/model"
	"github.com/GideonMwiti/garagemaster-sub000/pkg/logger"
	"github.com/go-chi/chi/v5"
)

type InventoryHandler struct {
	uc     inventory.UseCase
	logger logger.ZapLogger
}

func NewInventoryHandler(uc inventory.UseCase, log logger.ZapLogger) *InventoryHandler {
	return &InventoryHandler{
		uc:     uc,
		logger: log,
	}
}

func (h *InventoryHandler) Routes(r chi.Router) {
	managers := auth.RequireRole(model.RoleOwner, model.RoleManager, model.RoleAdmin)
	staff := auth.RequireRole(model.RoleOwner, model.RoleManager, model.RoleAdmin, model.RoleTechnician)

	r.Get("/low-stock", h.ListLowStock)
	r.Get("/{id}", h.GetItem)
	r.Get("/{id}/adjustments", h.ListAdjustments)
	r.With(staff).Post("/{id}/adjust", h.AdjustStock)
	r.With(managers).Post("/{id}/force", h.ForceSetQuantity)
	r.With(managers).Delete("/{id}", h.DeleteItem)
}

func (h *InventoryHandler) GetItem(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.ActorFrom(r.Context())

	item, err := h.uc.GetItem(r.Context(), actor, chi.URLParam(r, "id"))
	if err != nil {
		api.RespondError(w, r, h.logger, err)
		return
	}
	api.RespondJSON(w, http.StatusOK, item)
}

func (h *InventoryHandler) ListLowStock(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.ActorFrom(r.Context())
	page, pageSize := api.Pagination(r)

	items, total, err := h.uc.ListLowStock(r.Context(), actor, page, pageSize)
	if err != nil {
		api.RespondError(w, r, h.logger, err)
		return
	}
	api.RespondJSON(w, http.StatusOK, api.Page[model.InventoryItem]{Items: items, Total: total, Page: page, PageSize: pageSize})
}

func (h *InventoryHandler) AdjustStock(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.ActorFrom(r.Context())

	var input dto.AdjustStockInput
	if err := api.DecodeJSON(r, &input); err != nil {
		api.RespondMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	input.ItemID = chi.URLParam(r, "id")

	item, err := h.uc.AdjustStock(r.Context(), actor, &input)
	if err != nil {
		api.RespondError(w, r, h.logger, err)
		return
	}
	api.RespondJSON(w, http.StatusOK, item)
}

func (h *InventoryHandler) ForceSetQuantity(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.ActorFrom(r.Context())

	var input dto.ForceSetInput
	if err := api.DecodeJSON(r, &input); err != nil {
		api.RespondMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	input.ItemID = chi.URLParam(r, "id")

	item, err := h.uc.ForceSetQuantity(r.Context(), actor, &input)
	if err != nil {
		api.RespondError(w, r, h.logger, err)
		return
	}
	api.RespondJSON(w, http.StatusOK, item)
}

func (h *InventoryHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.ActorFrom(r.Context())

	if err := h.uc.DeleteItem(r.Context(), actor, chi.URLParam(r, "id")); err != nil {
		api.RespondError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListAdjustments accepts start_date and end_date as YYYY-MM-DD or RFC 3339.
func (h *InventoryHandler) ListAdjustments(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.ActorFrom(r.Context())
	page, pageSize := api.Pagination(r)

	filters := &dto.AdjustmentFilters{
		ItemID:   chi.URLParam(r, "id"),
		Page:     page,
		PageSize: pageSize,
	}
	var err error
	if filters.StartDate, err = parseDate(r.URL.Query().Get("start_date"), false); err != nil {
		api.RespondError(w, r, h.logger, err)
		return
	}
	if filters.EndDate, err = parseDate(r.URL.Query().Get("end_date"), true); err != nil {
		api.RespondError(w, r, h.logger, err)
		return
	}

	adjustments, total, err := h.uc.ListAdjustments(r.Context(), actor, filters)
	if err != nil {
		api.RespondError(w, r, h.logger, err)
		return
	}
	api.RespondJSON(w, http.StatusOK, api.Page[model.InventoryAdjustment]{Items: adjustments, Total: total, Page: page, PageSize: pageSize})
}

// parseDate reads a bare date as the start of that day, or the end of it when
// endOfDay is set.
func parseDate(value string, endOfDay bool) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return &t, nil
	}
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return nil, apperror.New(apperror.ErrInvalidInput, "invalid date %q", value)
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return &t, nil
}
