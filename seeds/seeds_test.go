package seeds

import (
	"math/rand"
	"testing"
)

func TestDemoBooksAreSymmetric(t *testing.T) {
	books, scores := Books(rand.New(rand.NewSource(42)))

	if len(books) != len(demoBooks) || len(scores) != len(books) {
		t.Fatalf("expected %d books and rows, got %d and %d", len(demoBooks), len(books), len(scores))
	}

	for i := range scores {
		for j := range scores {
			if scores[i][j] != scores[j][i] {
				t.Fatalf("score(%d,%d)=%f differs from score(%d,%d)=%f", i, j, scores[i][j], j, i, scores[j][i])
			}
			if scores[i][j] < 0 || scores[i][j] > 1 {
				t.Errorf("score(%d,%d)=%f outside [0,1]", i, j, scores[i][j])
			}
		}
	}
}

func TestDemoBooksSameGenreScoreHigher(t *testing.T) {
	_, scores := Books(rand.New(rand.NewSource(7)))

	// 0 and 1 are both fantasy, 0 and 8 are fantasy vs classic
	if scores[0][1] <= scores[0][8] {
		t.Errorf("expected same-genre score %f above cross-genre %f", scores[0][1], scores[0][8])
	}
}

func TestDemoBooksDeterministic(t *testing.T) {
	a, _ := Books(rand.New(rand.NewSource(42)))
	b, _ := Books(rand.New(rand.NewSource(42)))

	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("book %d differs between runs: %+v vs %+v", i, a[i], b[i])
		}
	}
}

func TestPairsSkipsDiagonal(t *testing.T) {
	books, scores := Books(rand.New(rand.NewSource(42)))
	pairs := Pairs(books, scores)

	n := len(books)
	if len(pairs) != n*(n-1) {
		t.Fatalf("expected %d pairs, got %d", n*(n-1), len(pairs))
	}
	if _, ok := pairs[[2]int64{books[0].ID, books[0].ID}]; ok {
		t.Error("diagonal entry should be skipped")
	}
	if got := pairs[[2]int64{books[0].ID, books[1].ID}]; got != scores[0][1] {
		t.Errorf("pair(0,1) = %f, want %f", got, scores[0][1])
	}
}
