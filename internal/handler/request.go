package handler

import (
	"math"

	"github.com/actuallystonmai/bookshelf/internal/domain"
)

type RecommendationRequest struct {
	BookIDs     []int64 `json:"book_ids"`
	MinPages    *int    `json:"min_pages,omitempty"`
	MaxPages    *int    `json:"max_pages,omitempty"`
	Mode        string  `json:"mode,omitempty" validate:"omitempty,oneof=content collaborative"`
	Aggregation string  `json:"aggregation,omitempty" validate:"omitempty,oneof=mean max"`
	Limit       int     `json:"limit,omitempty" validate:"gte=0"`
}

// BatchRequest items are not validated here; a bad item fails on its own.
type BatchRequest struct {
	Requests []RecommendationRequest `json:"requests" validate:"required,min=1"`
}

// toDomain converts the wire request. A missing bound defaults to the
// catalog-wide extreme, so giving only one bound still filters.
func (r RecommendationRequest) toDomain() domain.RecommendationRequest {
	req := domain.RecommendationRequest{
		BookIDs:     r.BookIDs,
		Mode:        domain.Mode(r.Mode),
		Aggregation: domain.Aggregation(r.Aggregation),
		Limit:       r.Limit,
	}
	if r.MinPages != nil || r.MaxPages != nil {
		pr := domain.PageRange{Min: 0, Max: math.MaxInt}
		if r.MinPages != nil {
			pr.Min = *r.MinPages
		}
		if r.MaxPages != nil {
			pr.Max = *r.MaxPages
		}
		req.PageRange = &pr
	}
	return req
}
