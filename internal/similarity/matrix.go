// Package similarity stores the precomputed pairwise similarity scores
// between catalog books as a dense square matrix.
package similarity

import (
	"fmt"
	"math"
)

const symmetryTolerance = 1e-9

// Matrix is immutable once built. Row and column i both belong to ids[i].
type Matrix struct {
	ids   []int64
	index map[int64]int
	data  []float64
}

func (m *Matrix) Size() int {
	return len(m.ids)
}

// IDs returns the row order of the matrix.
func (m *Matrix) IDs() []int64 {
	out := make([]int64, len(m.ids))
	copy(out, m.ids)
	return out
}

func (m *Matrix) Score(a, b int64) (float64, bool) {
	i, ok := m.index[a]
	if !ok {
		return 0, false
	}
	j, ok := m.index[b]
	if !ok {
		return 0, false
	}
	return m.data[i*len(m.ids)+j], true
}

// Row returns one book's scores against every other book.
func (m *Matrix) Row(id int64) (map[int64]float64, bool) {
	view, ok := m.RowView(id)
	if !ok {
		return nil, false
	}
	row := make(map[int64]float64, len(view))
	for j, other := range m.ids {
		if other == id {
			continue
		}
		row[other] = view[j]
	}
	return row, true
}

// RowView returns the row for id aligned to IDs. The slice is shared with
// the matrix and must not be modified.
func (m *Matrix) RowView(id int64) ([]float64, bool) {
	i, ok := m.index[id]
	if !ok {
		return nil, false
	}
	n := len(m.ids)
	return m.data[i*n : (i+1)*n : (i+1)*n], true
}

// Builder collects scores for a fixed id order and validates them in Build.
type Builder struct {
	ids   []int64
	index map[int64]int
	data  []float64
	set   []bool
}

func NewBuilder(ids []int64) (*Builder, error) {
	n := len(ids)
	b := &Builder{
		ids:   make([]int64, n),
		index: make(map[int64]int, n),
		data:  make([]float64, n*n),
		set:   make([]bool, n*n),
	}
	for i, id := range ids {
		if _, dup := b.index[id]; dup {
			return nil, fmt.Errorf("duplicate id %d", id)
		}
		b.index[id] = i
		b.ids[i] = id
	}
	return b, nil
}

// Set records score(a, b). The mirrored cell must be set separately.
func (b *Builder) Set(a, c int64, score float64) error {
	i, ok := b.index[a]
	if !ok {
		return fmt.Errorf("unknown row id %d", a)
	}
	j, ok := b.index[c]
	if !ok {
		return fmt.Errorf("unknown column id %d", c)
	}
	if math.IsNaN(score) || math.IsInf(score, 0) {
		return fmt.Errorf("score(%d, %d) is not finite", a, c)
	}
	k := i*len(b.ids) + j
	b.data[k] = score
	b.set[k] = true
	return nil
}

// SetRow records a full row; columns names the id of each score.
func (b *Builder) SetRow(id int64, columns []int64, scores []float64) error {
	if len(columns) != len(scores) {
		return fmt.Errorf("row %d: %d columns but %d scores", id, len(columns), len(scores))
	}
	for j, col := range columns {
		if err := b.Set(id, col, scores[j]); err != nil {
			return fmt.Errorf("row %d: %w", id, err)
		}
	}
	return nil
}

// Build checks that every off-diagonal cell is present and the matrix is
// symmetric. Missing diagonal cells are left at zero; they are never read.
func (b *Builder) Build() (*Matrix, error) {
	n := len(b.ids)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			ij, ji := i*n+j, j*n+i
			if !b.set[ij] {
				return nil, fmt.Errorf("missing score(%d, %d)", b.ids[i], b.ids[j])
			}
			if !b.set[ji] {
				return nil, fmt.Errorf("missing score(%d, %d)", b.ids[j], b.ids[i])
			}
			if math.Abs(b.data[ij]-b.data[ji]) > symmetryTolerance {
				return nil, fmt.Errorf("asymmetric scores for (%d, %d): %g != %g",
					b.ids[i], b.ids[j], b.data[ij], b.data[ji])
			}
		}
	}

	m := &Matrix{ids: b.ids, index: b.index, data: b.data}
	b.ids, b.index, b.data, b.set = nil, nil, nil, nil
	return m, nil
}
