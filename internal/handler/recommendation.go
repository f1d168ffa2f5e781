package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/actuallystonmai/bookshelf/internal/domain"
	"github.com/actuallystonmai/bookshelf/internal/service"
	"github.com/actuallystonmai/bookshelf/internal/validation"
)

// GET /recommendations?ids=1,2&min_pages=&max_pages=&mode=&aggregation=&limit=
func (h *Handler) GetRecommendations(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var req RecommendationRequest

	// Parse book ids
	if raw := strings.TrimSpace(q.Get("ids")); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
			if err != nil {
				writeError(w, http.StatusBadRequest, service.CodeInvalidParameter, "Invalid ids parameter")
				return
			}
			req.BookIDs = append(req.BookIDs, id)
		}
	}

	// Parse page bounds
	var ok bool
	if req.MinPages, ok = optionalInt(w, q.Get("min_pages"), "min_pages"); !ok {
		return
	}
	if req.MaxPages, ok = optionalInt(w, q.Get("max_pages"), "max_pages"); !ok {
		return
	}

	// Parse limit
	if limitStr := q.Get("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil {
			writeError(w, http.StatusBadRequest, service.CodeInvalidParameter, "Invalid limit parameter")
			return
		}
		req.Limit = parsed
	}

	req.Mode = q.Get("mode")
	req.Aggregation = q.Get("aggregation")

	if err := validation.Struct(&req); err != nil {
		writeError(w, http.StatusBadRequest, service.CodeInvalidParameter, err.Error())
		return
	}

	h.recommend(w, r, req)
}

// POST /recommendations
func (h *Handler) PostRecommendations(w http.ResponseWriter, r *http.Request) {
	var req RecommendationRequest
	if !decodeBody(w, r, &req) {
		return
	}
	h.recommend(w, r, req)
}

func (h *Handler) recommend(w http.ResponseWriter, r *http.Request, req RecommendationRequest) {
	result, err := h.service.GetRecommendations(r.Context(), req.toDomain())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	recs := result.Recommendations
	if recs == nil {
		recs = []domain.ScoredBook{}
	}

	writeJSON(w, http.StatusOK, RecommendationResponse{
		BookIDs:         req.BookIDs,
		Recommendations: recs,
		Metadata: domain.RecommendationMeta{
			CacheHit:    result.CacheHit,
			GeneratedAt: time.Now().UTC().Format(time.RFC3339),
			TotalCount:  len(recs),
			Mode:        result.Mode,
			Aggregation: result.Aggregation,
		},
	})
}

func optionalInt(w http.ResponseWriter, raw, name string) (*int, bool) {
	if raw == "" {
		return nil, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, service.CodeInvalidParameter, "Invalid "+name+" parameter")
		return nil, false
	}
	return &v, true
}
