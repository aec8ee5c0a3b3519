package handler

import (
	"net/http"

	"github.com/GideonMwiti/garagemaster-sub000/internal/api"
	"github.com/GideonMwiti/garagemaster-sub000/internal/auth"
	"github.com/GideonMwiti/garagemaster-sub000/internal/jobcard"
	"github.com/GideonMwiti/garagemaster-sub000/internal/jobcard/dto"
	"github.com/GideonMwiti/garagemaster-sub000/internal/model"
	"github.com/GideonMwiti/garagemaster-sub000/pkg/logger"
	"github.com/go-chi/chi/v5"
)

type JobCardHandler struct {
	uc     jobcard.UseCase
	logger logger.ZapLogger
}

func NewJobCardHandler(uc jobcard.UseCase, log logger.ZapLogger) *JobCardHandler {
	return &JobCardHandler{
		uc:     uc,
		logger: log,
	}
}

func (h *JobCardHandler) Routes(r chi.Router) {
	managers := auth.RequireRole(model.RoleOwner, model.RoleManager, model.RoleAdmin)

	r.Post("/", h.Create)
	r.Get("/", h.List)
	r.Get("/{id}", h.Get)
	r.Patch("/{id}", h.Update)
	r.With(managers).Delete("/{id}", h.Delete)
	r.Post("/{id}/services", h.AddService)
	r.Post("/{id}/parts", h.AddPart)
	r.Delete("/lines/{lineID}", h.RemoveLine)
	r.Post("/{id}/complete", h.Complete)
	r.Post("/{id}/cancel", h.Cancel)
}

func (h *JobCardHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.ActorFrom(r.Context())

	var input dto.CreateJobCardInput
	if err := api.DecodeJSON(r, &input); err != nil {
		api.RespondMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	job, err := h.uc.Create(r.Context(), actor, &input)
	if err != nil {
		api.RespondError(w, r, h.logger, err)
		return
	}
	api.RespondJSON(w, http.StatusCreated, job)
}

func (h *JobCardHandler) List(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.ActorFrom(r.Context())
	page, pageSize := api.Pagination(r)
	q := r.URL.Query()

	jobs, total, err := h.uc.List(r.Context(), actor, &dto.JobCardFilters{
		Status:     model.JobStatus(q.Get("status")),
		CustomerID: q.Get("customer_id"),
		VehicleID:  q.Get("vehicle_id"),
		AssignedTo: q.Get("assigned_to"),
		Page:       page,
		PageSize:   pageSize,
	})
	if err != nil {
		api.RespondError(w, r, h.logger, err)
		return
	}
	api.RespondJSON(w, http.StatusOK, api.Page[model.JobCard]{Items: jobs, Total: total, Page: page, PageSize: pageSize})
}

func (h *JobCardHandler) Get(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.ActorFrom(r.Context())

	job, err := h.uc.Get(r.Context(), actor, chi.URLParam(r, "id"))
	if err != nil {
		api.RespondError(w, r, h.logger, err)
		return
	}
	api.RespondJSON(w, http.StatusOK, job)
}

func (h *JobCardHandler) Update(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.ActorFrom(r.Context())

	var input dto.UpdateJobCardInput
	if err := api.DecodeJSON(r, &input); err != nil {
		api.RespondMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	input.JobID = chi.URLParam(r, "id")

	job, err := h.uc.Update(r.Context(), actor, &input)
	if err != nil {
		api.RespondError(w, r, h.logger, err)
		return
	}
	api.RespondJSON(w, http.StatusOK, job)
}

func (h *JobCardHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.ActorFrom(r.Context())

	if err := h.uc.Delete(r.Context(), actor, chi.URLParam(r, "id")); err != nil {
		api.RespondError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *JobCardHandler) AddService(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.ActorFrom(r.Context())

	var input dto.AddServiceInput
	if err := api.DecodeJSON(r, &input); err != nil {
		api.RespondMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	input.JobID = chi.URLParam(r, "id")

	line, err := h.uc.AddService(r.Context(), actor, &input)
	if err != nil {
		api.RespondError(w, r, h.logger, err)
		return
	}
	api.RespondJSON(w, http.StatusCreated, line)
}

func (h *JobCardHandler) AddPart(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.ActorFrom(r.Context())

	var input dto.AddPartInput
	if err := api.DecodeJSON(r, &input); err != nil {
		api.RespondMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	input.JobID = chi.URLParam(r, "id")

	line, err := h.uc.AddPart(r.Context(), actor, &input)
	if err != nil {
		api.RespondError(w, r, h.logger, err)
		return
	}
	api.RespondJSON(w, http.StatusCreated, line)
}

func (h *JobCardHandler) RemoveLine(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.ActorFrom(r.Context())

	if err := h.uc.RemoveLine(r.Context(), actor, chi.URLParam(r, "lineID")); err != nil {
		api.RespondError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Complete closes the job and responds with the invoice it produced.
func (h *JobCardHandler) Complete(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.ActorFrom(r.Context())

	var input dto.CompleteInput
	if r.ContentLength != 0 {
		if err := api.DecodeJSON(r, &input); err != nil {
			api.RespondMessage(w, http.StatusBadRequest, err.Error())
			return
		}
	}
	input.JobID = chi.URLParam(r, "id")

	inv, err := h.uc.Complete(r.Context(), actor, &input)
	if err != nil {
		api.RespondError(w, r, h.logger, err)
		return
	}
	api.RespondJSON(w, http.StatusCreated, inv)
}

func (h *JobCardHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	actor, _ := auth.ActorFrom(r.Context())

	job, err := h.uc.Cancel(r.Context(), actor, chi.URLParam(r, "id"))
	if err != nil {
		api.RespondError(w, r, h.logger, err)
		return
	}
	api.RespondJSON(w, http.StatusOK, job)
}
