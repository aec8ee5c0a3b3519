// Package api holds the JSON plumbing shared by the HTTP handlers.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/GideonMwiti/garagemaster-sub000/internal/apperror"
	"github.com/GideonMwiti/garagemaster-sub000/pkg/logger"
	"go.uber.org/zap"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

type Page[T any] struct {
	Items    []T `json:"items"`
	Total    int `json:"total"`
	Page     int `json:"page"`
	PageSize int `json:"page_size"`
}

func DecodeJSON(r *http.Request, dest interface{}) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(dest)
}

func RespondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	encoder := json.NewEncoder(w)
	encoder.SetEscapeHTML(false)
	_ = encoder.Encode(payload)
}

func RespondMessage(w http.ResponseWriter, status int, message string) {
	RespondJSON(w, status, map[string]string{"error": message})
}

// RespondError maps err to a status code. Anything that is not an
// application error is logged and hidden behind a generic message.
func RespondError(w http.ResponseWriter, r *http.Request, log logger.ZapLogger, err error) {
	status := StatusOf(err)
	if status == http.StatusInternalServerError {
		log.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
	}
	RespondMessage(w, status, apperror.Message(err))
}

func StatusOf(err error) int {
	switch {
	case errors.Is(err, apperror.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperror.ErrInvalidInput), errors.Is(err, apperror.ErrInvalidAmount):
		return http.StatusBadRequest
	case errors.Is(err, apperror.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, apperror.ErrInsufficientStock),
		errors.Is(err, apperror.ErrItemInUse),
		errors.Is(err, apperror.ErrInvalidTransition),
		errors.Is(err, apperror.ErrHasPayments):
		return http.StatusUnprocessableEntity
	case errors.Is(err, apperror.ErrConflict), errors.Is(err, apperror.ErrDuplicateNumber):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// Pagination reads page and page_size, clamping page_size to 1..100.
func Pagination(r *http.Request) (page, pageSize int) {
	page, _ = strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	pageSize, _ = strconv.Atoi(r.URL.Query().Get("page_size"))
	switch {
	case pageSize <= 0:
		pageSize = defaultPageSize
	case pageSize > maxPageSize:
		pageSize = maxPageSize
	}
	return page, pageSize
}
