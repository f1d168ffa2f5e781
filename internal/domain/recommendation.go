package domain

import (
	"fmt"
	"strings"
)

type Aggregation string

const (
	AggregationMean Aggregation = "mean"
	AggregationMax  Aggregation = "max"
)

func ParseAggregation(s string) (Aggregation, error) {
	switch Aggregation(strings.ToLower(s)) {
	case AggregationMean:
		return AggregationMean, nil
	case AggregationMax:
		return AggregationMax, nil
	}
	return "", fmt.Errorf("unknown aggregation %q", s)
}

// Mode is the recommendation type offered to users. Both modes score against
// the same content similarity matrix; "collaborative" only switches the
// default aggregation to max and is not a user-based model.
type Mode string

const (
	ModeContent       Mode = "content"
	ModeCollaborative Mode = "collaborative"
)

func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(s)) {
	case ModeContent:
		return ModeContent, nil
	case ModeCollaborative:
		return ModeCollaborative, nil
	}
	return "", fmt.Errorf("unknown mode %q", s)
}

// DefaultAggregation returns the aggregation used when the caller names a mode only.
func (m Mode) DefaultAggregation() Aggregation {
	if m == ModeCollaborative {
		return AggregationMax
	}
	return AggregationMean
}

// PageRange is an inclusive bound on num_pages.
type PageRange struct {
	Min int `json:"min_pages"`
	Max int `json:"max_pages"`
}

func (r PageRange) Contains(pages int) bool {
	return pages >= r.Min && pages <= r.Max
}

func (r PageRange) Validate() error {
	if r.Min < 0 {
		return fmt.Errorf("%w: min_pages %d is negative", ErrInvalidPageRange, r.Min)
	}
	if r.Min > r.Max {
		return fmt.Errorf("%w: min_pages %d exceeds max_pages %d", ErrInvalidPageRange, r.Min, r.Max)
	}
	return nil
}

type RecommendationRequest struct {
	BookIDs     []int64     `json:"book_ids"`
	PageRange   *PageRange  `json:"page_range,omitempty"`
	Mode        Mode        `json:"mode"`
	Aggregation Aggregation `json:"aggregation"`
	Limit       int         `json:"limit"`
}

type ScoredBook struct {
	BookRecord
	Score float64 `json:"score"`
}

type RecommendationMeta struct {
	CacheHit    bool        `json:"cache_hit"`
	GeneratedAt string      `json:"generated_at"`
	TotalCount  int         `json:"total_count"`
	Mode        Mode        `json:"mode"`
	Aggregation Aggregation `json:"aggregation"`
}

type RecommendationResult struct {
	Recommendations []ScoredBook
	Mode            Mode
	Aggregation     Aggregation
	CacheHit        bool
}

type BatchStatus string

const (
	StatusSuccess BatchStatus = "success"
	StatusFailed  BatchStatus = "failed"
)

type BatchItemResult struct {
	Index           int          `json:"index"`
	BookIDs         []int64      `json:"book_ids"`
	Recommendations []ScoredBook `json:"recommendations,omitempty"`
	Status          BatchStatus  `json:"status"`
	Error           string       `json:"error,omitempty"`
	Message         string       `json:"message,omitempty"`
}

type BatchSummary struct {
	SuccessCount     int   `json:"success_count"`
	FailedCount      int   `json:"failed_count"`
	ProcessingTimeMs int64 `json:"processing_time_ms"`
}

type BatchMeta struct {
	GeneratedAt string `json:"generated_at"`
}

type BatchResponse struct {
	Results  []BatchItemResult `json:"results"`
	Summary  BatchSummary      `json:"summary"`
	Metadata BatchMeta         `json:"metadata"`
}

type BookPage struct {
	Books []BookListing `json:"books"`
	Page  int           `json:"page"`
	Limit int           `json:"limit"`
	Total int           `json:"total"`
}

type BookListing struct {
	BookRecord
	Label string `json:"label"`
}
