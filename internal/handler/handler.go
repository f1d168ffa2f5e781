package handler

import (
	"errors"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/actuallystonmai/bookshelf/internal/logging"
	"github.com/actuallystonmai/bookshelf/internal/service"
	"github.com/actuallystonmai/bookshelf/internal/validation"
)

const maxBodyBytes = 1 << 20

type Handler struct {
	service *service.Service
}

func NewHandler(svc *service.Service) *Handler {
	return &Handler{service: svc}
}

// GET /health
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status: "ok",
		Books:  h.service.CatalogSize(),
	})
}

// write JSON response
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writes JSON error response.
func writeError(w http.ResponseWriter, status int, errCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Error:   errCode,
		Message: message,
	})
}

// writeServiceError maps a service error onto a status code.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	code, msg := service.CategorizeError(err)
	status := http.StatusBadRequest
	switch code {
	case service.CodeBookNotFound:
		status = http.StatusNotFound
	case service.CodeTimeout:
		status = http.StatusServiceUnavailable
	case service.CodeInternal:
		status = http.StatusInternalServerError
		logging.Ctx(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("[handler] unexpected error")
	}
	writeError(w, status, code, msg)
}

// decodeBody reads a JSON body into v and validates it.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, service.CodeInvalidParameter, "Request body is not valid JSON")
		return false
	}
	if err := validation.Struct(v); err != nil {
		var verr *validation.Error
		if errors.As(err, &verr) {
			writeError(w, http.StatusBadRequest, service.CodeInvalidParameter, verr.Error())
			return false
		}
		writeError(w, http.StatusBadRequest, service.CodeInvalidParameter, "Invalid request body")
		return false
	}
	return true
}
