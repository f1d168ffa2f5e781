package snapshot

import (
	"context"
	"fmt"
	"os"

	"github.com/goccy/go-json"

	"github.com/actuallystonmai/bookshelf/internal/domain"
	"github.com/actuallystonmai/bookshelf/internal/similarity"
)

// FileSource reads a JSON catalog (an array of book records) and a JSON
// similarity file shaped as {"ids": [...], "scores": [[...], ...]} where
// scores[i][j] is score(ids[i], ids[j]).
type FileSource struct {
	CatalogPath    string
	SimilarityPath string
}

type similarityFile struct {
	IDs    []int64     `json:"ids"`
	Scores [][]float64 `json:"scores"`
}

func NewFileSource(catalogPath, similarityPath string) *FileSource {
	return &FileSource{CatalogPath: catalogPath, SimilarityPath: similarityPath}
}

func (f *FileSource) Books(ctx context.Context) ([]domain.BookRecord, error) {
	var books []domain.BookRecord
	if err := readJSON(f.CatalogPath, &books); err != nil {
		return nil, err
	}
	return books, nil
}

func (f *FileSource) Similarity(ctx context.Context, b *similarity.Builder) error {
	var sf similarityFile
	if err := readJSON(f.SimilarityPath, &sf); err != nil {
		return err
	}
	if len(sf.Scores) != len(sf.IDs) {
		return fmt.Errorf("%s: %d ids but %d score rows", f.SimilarityPath, len(sf.IDs), len(sf.Scores))
	}
	for i, id := range sf.IDs {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := b.SetRow(id, sf.IDs, sf.Scores[i]); err != nil {
			return fmt.Errorf("%s: %w", f.SimilarityPath, err)
		}
	}
	return nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}
