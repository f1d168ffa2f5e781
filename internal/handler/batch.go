package handler

import (
	"net/http"

	"github.com/actuallystonmai/bookshelf/internal/domain"
)

// POST /recommendations/batch
func (h *Handler) PostBatchRecommendations(w http.ResponseWriter, r *http.Request) {
	var body BatchRequest
	if !decodeBody(w, r, &body) {
		return
	}

	reqs := make([]domain.RecommendationRequest, len(body.Requests))
	for i, req := range body.Requests {
		reqs[i] = req.toDomain()
	}

	// Call service
	result, err := h.service.GetBatchRecommendations(r.Context(), reqs)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}
