package snapshot

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/actuallystonmai/bookshelf/internal/domain"
	"github.com/actuallystonmai/bookshelf/internal/similarity"
)

const catalogJSON = `[
  {"id": 7, "title": "Emma", "author": "Jane Austen", "num_pages": 474, "avg_rating": 4.01, "publication_year": 1815},
  {"id": 3, "title": "Persuasion", "author": "Jane Austen", "num_pages": 249, "avg_rating": 4.14, "publication_year": 1817},
  {"id": 5, "title": "Dracula", "author": "Bram Stoker", "num_pages": 418, "avg_rating": 4.0, "publication_year": 1897}
]`

// Column order differs from catalog order on purpose.
const similarityJSON = `{
  "ids": [3, 5, 7],
  "scores": [
    [1.0, 0.1, 0.8],
    [0.1, 1.0, 0.2],
    [0.8, 0.2, 1.0]
  ]
}`

func writeFiles(t *testing.T, catalog, sim string) *FileSource {
	t.Helper()
	dir := t.TempDir()
	cp := filepath.Join(dir, "catalog.json")
	sp := filepath.Join(dir, "similarity.json")
	require.NoError(t, os.WriteFile(cp, []byte(catalog), 0o600))
	require.NoError(t, os.WriteFile(sp, []byte(sim), 0o600))
	return NewFileSource(cp, sp)
}

func TestLoadFromFiles(t *testing.T) {
	snap, err := Load(context.Background(), writeFiles(t, catalogJSON, similarityJSON))
	require.NoError(t, err)

	assert.Equal(t, []int64{7, 3, 5}, snap.Catalog.IDs())
	assert.Equal(t, snap.Catalog.IDs(), snap.Matrix.IDs())

	s, ok := snap.Matrix.Score(7, 3)
	require.True(t, ok)
	assert.Equal(t, 0.8, s)

	book, err := snap.Catalog.Get(5)
	require.NoError(t, err)
	assert.Equal(t, "Dracula", book.Title)
	assert.Equal(t, 418, book.NumPages)

	assert.NotEmpty(t, snap.Fingerprint)
}

func TestFingerprintChangesWithScores(t *testing.T) {
	a, err := Load(context.Background(), writeFiles(t, catalogJSON, similarityJSON))
	require.NoError(t, err)
	b, err := Load(context.Background(), writeFiles(t, catalogJSON, similarityJSON))
	require.NoError(t, err)
	assert.Equal(t, a.Fingerprint, b.Fingerprint)

	changed := `{"ids": [3, 5, 7], "scores": [[1, 0.1, 0.7], [0.1, 1, 0.2], [0.7, 0.2, 1]]}`
	c, err := Load(context.Background(), writeFiles(t, catalogJSON, changed))
	require.NoError(t, err)
	assert.NotEqual(t, a.Fingerprint, c.Fingerprint)
}

func TestLoadRejectsIncompleteMatrix(t *testing.T) {
	partial := `{"ids": [3, 7], "scores": [[1, 0.8], [0.8, 1]]}`

	_, err := Load(context.Background(), writeFiles(t, catalogJSON, partial))
	assert.ErrorContains(t, err, "missing score")
}

func TestLoadRejectsRaggedFile(t *testing.T) {
	ragged := `{"ids": [3, 5, 7], "scores": [[1, 0.1, 0.8]]}`

	_, err := Load(context.Background(), writeFiles(t, catalogJSON, ragged))
	assert.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	src := NewFileSource(filepath.Join(t.TempDir(), "nope.json"), "")

	_, err := Load(context.Background(), src)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

type failingSource struct{}

var errBoom = errors.New("boom")

func (failingSource) Books(context.Context) ([]domain.BookRecord, error) {
	return []domain.BookRecord{{ID: 1}, {ID: 2}}, nil
}

func (failingSource) Similarity(context.Context, *similarity.Builder) error {
	return errBoom
}

func TestLoadPropagatesSourceErrors(t *testing.T) {
	_, err := Load(context.Background(), failingSource{})
	assert.ErrorIs(t, err, errBoom)
}
