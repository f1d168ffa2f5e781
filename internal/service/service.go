package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/actuallystonmai/bookshelf/internal/cache"
	"github.com/actuallystonmai/bookshelf/internal/domain"
	"github.com/actuallystonmai/bookshelf/internal/engine"
	"github.com/actuallystonmai/bookshelf/internal/logging"
	"github.com/actuallystonmai/bookshelf/internal/metrics"
)

const (
	defaultTopN             = 5
	maxTopN                 = 50
	defaultMaxBatchSize     = 20
	defaultBatchConcurrency = 4
	defaultBookPageSize     = 20
	pageStep                = 50
)

// RecommendationCache stores finished results. The service works without one.
type RecommendationCache interface {
	Get(ctx context.Context, key cache.Key) ([]domain.ScoredBook, bool, error)
	Set(ctx context.Context, key cache.Key, recs []domain.ScoredBook) error
}

type Options struct {
	DefaultTopN      int
	MaxTopN          int
	MaxBatchSize     int
	BatchConcurrency int
}

type Service struct {
	engine      *engine.Engine
	cache       RecommendationCache
	fingerprint string
	opts        Options
}

// NewService accepts a nil cache.
func NewService(eng *engine.Engine, c RecommendationCache, fingerprint string, opts Options) *Service {
	if opts.DefaultTopN <= 0 {
		opts.DefaultTopN = defaultTopN
	}
	if opts.MaxTopN <= 0 {
		opts.MaxTopN = maxTopN
	}
	if opts.MaxBatchSize <= 0 {
		opts.MaxBatchSize = defaultMaxBatchSize
	}
	if opts.BatchConcurrency <= 0 {
		opts.BatchConcurrency = defaultBatchConcurrency
	}
	return &Service{
		engine:      eng,
		cache:       c,
		fingerprint: fingerprint,
		opts:        opts,
	}
}

func (s *Service) GetRecommendations(ctx context.Context, req domain.RecommendationRequest) (*domain.RecommendationResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	mode, agg, limit, err := s.resolve(req)
	if err != nil {
		return nil, err
	}

	engReq := engine.Request{
		SeedIDs:     req.BookIDs,
		PageRange:   req.PageRange,
		Aggregation: agg,
		TopN:        limit,
	}
	// A cached answer is never returned for a request the engine would reject.
	if err := s.engine.Validate(engReq); err != nil {
		metrics.RecordRecommendation(string(agg), "invalid", 0, 0)
		return nil, err
	}

	key := cache.Key{
		Fingerprint: s.fingerprint,
		SeedIDs:     req.BookIDs,
		PageRange:   req.PageRange,
		Aggregation: agg,
		Limit:       limit,
	}

	// Check Cache
	if s.cache != nil {
		cached, found, err := s.cache.Get(ctx, key)
		if err != nil {
			logging.Ctx(ctx).Warn().Err(err).Msg("[service] cache get error")
		}
		if found {
			return &domain.RecommendationResult{
				Recommendations: cached,
				Mode:            mode,
				Aggregation:     agg,
				CacheHit:        true,
			}, nil
		}
	}

	// Cache miss -> score with the engine
	start := time.Now()
	recs, err := s.engine.Recommend(engReq)
	if err != nil {
		metrics.RecordRecommendation(string(agg), "invalid", time.Since(start), 0)
		return nil, err
	}
	metrics.RecordRecommendation(string(agg), "success", time.Since(start), len(recs))

	if s.cache != nil {
		if cacheErr := s.cache.Set(ctx, key, recs); cacheErr != nil {
			logging.Ctx(ctx).Warn().Err(cacheErr).Msg("[service] cache set error")
		}
	}

	return &domain.RecommendationResult{
		Recommendations: recs,
		Mode:            mode,
		Aggregation:     agg,
		CacheHit:        false,
	}, nil
}

// resolve fills in the mode default aggregation and the default limit.
func (s *Service) resolve(req domain.RecommendationRequest) (domain.Mode, domain.Aggregation, int, error) {
	mode := req.Mode
	if mode == "" {
		mode = domain.ModeContent
	}
	if _, err := domain.ParseMode(string(mode)); err != nil {
		return "", "", 0, fmt.Errorf("%w: %v", ErrInvalidParameter, err)
	}

	agg := req.Aggregation
	if agg == "" {
		agg = mode.DefaultAggregation()
	}
	if _, err := domain.ParseAggregation(string(agg)); err != nil {
		return "", "", 0, fmt.Errorf("%w: %v", ErrInvalidParameter, err)
	}

	limit := req.Limit
	switch {
	case limit == 0:
		limit = s.opts.DefaultTopN
	case limit < 0:
		return "", "", 0, fmt.Errorf("%w: limit must be positive, got %d", domain.ErrInvalidLimit, limit)
	case limit > s.opts.MaxTopN:
		limit = s.opts.MaxTopN
	}
	return mode, agg, limit, nil
}

func (s *Service) GetBatchRecommendations(ctx context.Context, reqs []domain.RecommendationRequest) (*domain.BatchResponse, error) {
	if len(reqs) == 0 {
		return nil, fmt.Errorf("%w: batch is empty", ErrInvalidParameter)
	}
	if len(reqs) > s.opts.MaxBatchSize {
		return nil, fmt.Errorf("%w: %d requests, at most %d allowed", domain.ErrBatchTooLarge, len(reqs), s.opts.MaxBatchSize)
	}

	start := time.Now()
	results := make([]domain.BatchItemResult, len(reqs))

	var g errgroup.Group
	g.SetLimit(s.opts.BatchConcurrency)
	for i, req := range reqs {
		i, req := i, req
		g.Go(func() error {
			results[i] = s.processBatchItem(ctx, i, req)
			return nil
		})
	}
	_ = g.Wait()

	// summary
	successCount := 0
	failedCount := 0
	for _, r := range results {
		if r.Status == domain.StatusSuccess {
			successCount++
		} else {
			failedCount++
		}
	}

	return &domain.BatchResponse{
		Results: results,
		Summary: domain.BatchSummary{
			SuccessCount:     successCount,
			FailedCount:      failedCount,
			ProcessingTimeMs: time.Since(start).Milliseconds(),
		},
		Metadata: domain.BatchMeta{
			GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		},
	}, nil
}

// processBatchItem never fails; errors are recorded on the item.
func (s *Service) processBatchItem(ctx context.Context, idx int, req domain.RecommendationRequest) domain.BatchItemResult {
	result, err := s.GetRecommendations(ctx, req)
	if err != nil {
		code, msg := CategorizeError(err)
		if code == CodeInternal {
			logging.Ctx(ctx).Error().Err(err).Int("index", idx).Msg("[service] batch item failed")
		}
		return domain.BatchItemResult{
			Index:   idx,
			BookIDs: req.BookIDs,
			Status:  domain.StatusFailed,
			Error:   code,
			Message: msg,
		}
	}

	return domain.BatchItemResult{
		Index:           idx,
		BookIDs:         req.BookIDs,
		Recommendations: result.Recommendations,
		Status:          domain.StatusSuccess,
	}
}

func (s *Service) GetBook(id int64) (domain.BookRecord, error) {
	return s.engine.Catalog().Get(id)
}

// ListBooks pages through the catalog for the book selector; page is 1-based.
func (s *Service) ListBooks(query string, page, limit int) domain.BookPage {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultBookPageSize
	}

	books, total := s.engine.Catalog().Search(query, (page-1)*limit, limit)
	listings := make([]domain.BookListing, len(books))
	for i, b := range books {
		listings[i] = domain.BookListing{BookRecord: b, Label: b.Label()}
	}

	return domain.BookPage{
		Books: listings,
		Page:  page,
		Limit: limit,
		Total: total,
	}
}

// PageRange returns slider bounds: zero to the largest page count rounded up
// to the next hundred.
func (s *Service) PageRange() domain.PageBounds {
	_, hi := s.engine.Catalog().PageBounds()
	return domain.PageBounds{
		Min:  0,
		Max:  (hi + 99) / 100 * 100,
		Step: pageStep,
	}
}

func (s *Service) CatalogSize() int {
	return s.engine.Catalog().Len()
}

func (s *Service) MaxSeeds() int {
	return s.engine.MaxSeeds()
}

var ErrInvalidParameter = errors.New("invalid parameter")

const (
	CodeInvalidSelection = "invalid_selection"
	CodeUnknownBook      = "unknown_book"
	CodeInvalidPageRange = "invalid_page_range"
	CodeInvalidParameter = "invalid_parameter"
	CodeBookNotFound     = "book_not_found"
	CodeTimeout          = "request_timeout"
	CodeInternal         = "internal_error"
)

// CategorizeError maps an error to an API error code and a message that is
// safe to show to users.
func CategorizeError(err error) (string, string) {
	switch {
	case errors.Is(err, domain.ErrUnknownBook):
		return CodeUnknownBook, err.Error()
	case errors.Is(err, domain.ErrInvalidSelection):
		return CodeInvalidSelection, err.Error()
	case errors.Is(err, domain.ErrInvalidPageRange):
		return CodeInvalidPageRange, err.Error()
	case errors.Is(err, domain.ErrInvalidLimit),
		errors.Is(err, domain.ErrBatchTooLarge),
		errors.Is(err, ErrInvalidParameter):
		return CodeInvalidParameter, err.Error()
	case errors.Is(err, domain.ErrBookNotFound):
		return CodeBookNotFound, err.Error()
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return CodeTimeout, "request timed out, please try again"
	}
	return CodeInternal, "an unexpected error occurred"
}
