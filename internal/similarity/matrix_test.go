package similarity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildABC(t *testing.T) *Matrix {
	t.Helper()
	b, err := NewBuilder([]int64{1, 2, 3})
	require.NoError(t, err)

	require.NoError(t, b.SetRow(1, []int64{1, 2, 3}, []float64{1, 0.9, 0.2}))
	require.NoError(t, b.SetRow(2, []int64{1, 2, 3}, []float64{0.9, 1, 0.6}))
	require.NoError(t, b.SetRow(3, []int64{3, 2, 1}, []float64{1, 0.6, 0.2}))

	m, err := b.Build()
	require.NoError(t, err)
	return m
}

func TestMatrixLookups(t *testing.T) {
	m := buildABC(t)

	assert.Equal(t, 3, m.Size())
	assert.Equal(t, []int64{1, 2, 3}, m.IDs())

	s, ok := m.Score(3, 2)
	require.True(t, ok)
	assert.Equal(t, 0.6, s)

	_, ok = m.Score(1, 42)
	assert.False(t, ok)

	row, ok := m.Row(1)
	require.True(t, ok)
	assert.Equal(t, map[int64]float64{2: 0.9, 3: 0.2}, row)

	view, ok := m.RowView(2)
	require.True(t, ok)
	assert.Equal(t, []float64{0.9, 1, 0.6}, view)
}

func TestBuilderRejectsAsymmetric(t *testing.T) {
	b, err := NewBuilder([]int64{1, 2})
	require.NoError(t, err)

	require.NoError(t, b.Set(1, 2, 0.5))
	require.NoError(t, b.Set(2, 1, 0.4))

	_, err = b.Build()
	assert.ErrorContains(t, err, "asymmetric")
}

func TestBuilderRejectsMissingCells(t *testing.T) {
	b, err := NewBuilder([]int64{1, 2, 3})
	require.NoError(t, err)

	require.NoError(t, b.Set(1, 2, 0.5))
	require.NoError(t, b.Set(2, 1, 0.5))

	_, err = b.Build()
	assert.ErrorContains(t, err, "missing score")
}

func TestBuilderAllowsMissingDiagonal(t *testing.T) {
	b, err := NewBuilder([]int64{1, 2})
	require.NoError(t, err)

	require.NoError(t, b.Set(1, 2, 0.3))
	require.NoError(t, b.Set(2, 1, 0.3))

	_, err = b.Build()
	assert.NoError(t, err)
}

func TestBuilderRejectsUnknownIDs(t *testing.T) {
	b, err := NewBuilder([]int64{1, 2})
	require.NoError(t, err)

	assert.Error(t, b.Set(1, 7, 0.1))
	assert.Error(t, b.SetRow(1, []int64{1}, []float64{0.1, 0.2}))

	_, err = NewBuilder([]int64{1, 1})
	assert.Error(t, err)
}
