package handler

import "github.com/actuallystonmai/bookshelf/internal/domain"

type RecommendationResponse struct {
	BookIDs         []int64                   `json:"book_ids"`
	Recommendations []domain.ScoredBook       `json:"recommendations"`
	Metadata        domain.RecommendationMeta `json:"metadata"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

type HealthResponse struct {
	Status string `json:"status"`
	Books  int    `json:"books"`
}
