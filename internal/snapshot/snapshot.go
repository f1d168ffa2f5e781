// Package snapshot assembles the catalog and similarity matrix from a
// persisted source once, before the service starts handling requests.
package snapshot

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"strconv"

	"github.com/cespare/xxhash/v2"

	"github.com/actuallystonmai/bookshelf/internal/catalog"
	"github.com/actuallystonmai/bookshelf/internal/domain"
	"github.com/actuallystonmai/bookshelf/internal/logging"
	"github.com/actuallystonmai/bookshelf/internal/similarity"
)

// Source is a persisted catalog plus its similarity scores.
type Source interface {
	// Books returns every book in catalog order.
	Books(ctx context.Context) ([]domain.BookRecord, error)
	// Similarity feeds every stored score into b.
	Similarity(ctx context.Context, b *similarity.Builder) error
}

type Snapshot struct {
	Catalog     *catalog.Catalog
	Matrix      *similarity.Matrix
	Fingerprint string
}

func Load(ctx context.Context, src Source) (*Snapshot, error) {
	books, err := src.Books(ctx)
	if err != nil {
		return nil, fmt.Errorf("load books: %w", err)
	}
	cat, err := catalog.New(books)
	if err != nil {
		return nil, fmt.Errorf("build catalog: %w", err)
	}

	builder, err := similarity.NewBuilder(cat.IDs())
	if err != nil {
		return nil, fmt.Errorf("prepare similarity matrix: %w", err)
	}
	if err := src.Similarity(ctx, builder); err != nil {
		return nil, fmt.Errorf("load similarity scores: %w", err)
	}
	matrix, err := builder.Build()
	if err != nil {
		return nil, fmt.Errorf("build similarity matrix: %w", err)
	}

	snap := &Snapshot{
		Catalog:     cat,
		Matrix:      matrix,
		Fingerprint: fingerprint(cat, matrix),
	}
	logging.Info().
		Int("books", cat.Len()).
		Str("fingerprint", snap.Fingerprint).
		Msg("[snapshot] loaded")
	return snap, nil
}

// fingerprint hashes ids, page counts and scores so that cache entries
// computed from another snapshot are never reused.
func fingerprint(cat *catalog.Catalog, m *similarity.Matrix) string {
	h := xxhash.New()
	var buf [8]byte
	ids := cat.IDs()
	for i, id := range ids {
		binary.LittleEndian.PutUint64(buf[:], uint64(id))
		h.Write(buf[:])
		binary.LittleEndian.PutUint64(buf[:], uint64(cat.At(i).NumPages))
		h.Write(buf[:])
	}
	for _, id := range ids {
		row, _ := m.RowView(id)
		for _, s := range row {
			binary.LittleEndian.PutUint64(buf[:], math.Float64bits(s))
			h.Write(buf[:])
		}
	}
	return strconv.FormatUint(h.Sum64(), 16)
}
