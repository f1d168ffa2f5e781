// Package engine ranks catalog books by their similarity to a set of seed
// books. An Engine only reads immutable data, so one instance can serve any
// number of concurrent callers.
package engine

import (
	"fmt"
	"math"
	"slices"
	"sort"

	"github.com/actuallystonmai/bookshelf/internal/catalog"
	"github.com/actuallystonmai/bookshelf/internal/domain"
	"github.com/actuallystonmai/bookshelf/internal/similarity"
)

const DefaultMaxSeeds = 5

type Engine struct {
	catalog  *catalog.Catalog
	matrix   *similarity.Matrix
	maxSeeds int
}

type Request struct {
	SeedIDs     []int64
	PageRange   *domain.PageRange
	Aggregation domain.Aggregation
	TopN        int
}

// New checks that the matrix rows line up with catalog order.
func New(c *catalog.Catalog, m *similarity.Matrix, maxSeeds int) (*Engine, error) {
	if maxSeeds <= 0 {
		maxSeeds = DefaultMaxSeeds
	}
	if !slices.Equal(c.IDs(), m.IDs()) {
		return nil, fmt.Errorf("similarity matrix ids (%d) are not aligned with catalog ids (%d)",
			m.Size(), c.Len())
	}
	return &Engine{catalog: c, matrix: m, maxSeeds: maxSeeds}, nil
}

func (e *Engine) MaxSeeds() int {
	return e.maxSeeds
}

func (e *Engine) Catalog() *catalog.Catalog {
	return e.catalog
}

// Validate checks seeds, then top_n, then the page range, then the
// aggregation. Callers that answer from a cache must run it first.
func (e *Engine) Validate(req Request) error {
	if err := e.validateSeeds(req.SeedIDs); err != nil {
		return err
	}
	if req.TopN < 1 {
		return fmt.Errorf("%w: top_n must be positive, got %d", domain.ErrInvalidLimit, req.TopN)
	}
	if req.PageRange != nil {
		if err := req.PageRange.Validate(); err != nil {
			return err
		}
	}
	_, err := aggregator(req.Aggregation)
	return err
}

// Recommend validates the request before doing any scoring work.
func (e *Engine) Recommend(req Request) ([]domain.ScoredBook, error) {
	if err := e.Validate(req); err != nil {
		return nil, err
	}
	aggregate, err := aggregator(req.Aggregation)
	if err != nil {
		return nil, err
	}

	seedRows := make([][]float64, len(req.SeedIDs))
	isSeed := make(map[int64]bool, len(req.SeedIDs))
	for i, id := range req.SeedIDs {
		seedRows[i], _ = e.matrix.RowView(id)
		isSeed[id] = true
	}

	scored := make([]domain.ScoredBook, 0, e.catalog.Len())
	for j := 0; j < e.catalog.Len(); j++ {
		book := e.catalog.At(j)
		if isSeed[book.ID] {
			continue
		}
		if req.PageRange != nil && !req.PageRange.Contains(book.NumPages) {
			continue
		}
		scored = append(scored, domain.ScoredBook{
			BookRecord: book,
			Score:      aggregate(seedRows, j),
		})
	}

	// Stable so equal scores keep catalog order
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if len(scored) > req.TopN {
		scored = scored[:req.TopN]
	}
	return scored, nil
}

func (e *Engine) validateSeeds(ids []int64) error {
	if len(ids) == 0 {
		return emptySelection()
	}
	if len(ids) > e.maxSeeds {
		return tooManySeeds(len(ids), e.maxSeeds)
	}
	seen := make(map[int64]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			return duplicateSeed(id)
		}
		seen[id] = true
		if !e.catalog.Contains(id) {
			return unknownSeed(id)
		}
	}
	return nil
}

type aggregateFunc func(seedRows [][]float64, col int) float64

func aggregator(a domain.Aggregation) (aggregateFunc, error) {
	switch a {
	case domain.AggregationMean, "":
		return meanScore, nil
	case domain.AggregationMax:
		return maxScore, nil
	}
	return nil, fmt.Errorf("unsupported aggregation %q", a)
}

func meanScore(seedRows [][]float64, col int) float64 {
	sum := 0.0
	for _, row := range seedRows {
		sum += row[col]
	}
	return sum / float64(len(seedRows))
}

func maxScore(seedRows [][]float64, col int) float64 {
	best := math.Inf(-1)
	for _, row := range seedRows {
		best = max(best, row[col])
	}
	return best
}
