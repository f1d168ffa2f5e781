package catalog

import (
	"errors"
	"testing"

	"github.com/actuallystonmai/bookshelf/internal/domain"
)

func testBooks() []domain.BookRecord {
	return []domain.BookRecord{
		{ID: 10, Title: "The Hobbit", Author: "J.R.R. Tolkien", NumPages: 310},
		{ID: 20, Title: "Dune", Author: "Frank Herbert", NumPages: 612},
		{ID: 30, Title: "The Silmarillion", Author: "J.R.R. Tolkien", NumPages: 365},
		{ID: 40, Title: "Animal Farm", Author: "George Orwell", NumPages: 95},
	}
}

func TestNewRejectsDuplicateIDs(t *testing.T) {
	books := testBooks()
	books[2].ID = 10

	if _, err := New(books); err == nil {
		t.Fatal("expected error for duplicate id")
	}
}

func TestNewRejectsNegativePages(t *testing.T) {
	books := testBooks()
	books[1].NumPages = -1

	if _, err := New(books); err == nil {
		t.Fatal("expected error for negative page count")
	}
}

func TestGet(t *testing.T) {
	c, err := New(testBooks())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	b, err := c.Get(20)
	if err != nil {
		t.Fatalf("Get(20): %v", err)
	}
	if b.Title != "Dune" {
		t.Errorf("expected Dune, got %s", b.Title)
	}

	_, err = c.Get(99)
	if !errors.Is(err, domain.ErrBookNotFound) {
		t.Errorf("expected ErrBookNotFound, got %v", err)
	}
}

func TestIDsPreserveOrder(t *testing.T) {
	c, _ := New(testBooks())

	ids := c.IDs()
	want := []int64{10, 20, 30, 40}
	for i := range want {
		if ids[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, ids)
		}
	}

	if i, ok := c.Index(30); !ok || i != 2 {
		t.Errorf("expected index 2 for id 30, got %d (%v)", i, ok)
	}
}

func TestFilter(t *testing.T) {
	c, _ := New(testBooks())

	short := c.Filter(func(b domain.BookRecord) bool { return b.NumPages < 350 })
	if len(short) != 2 {
		t.Fatalf("expected 2 books, got %d", len(short))
	}
	if short[0].ID != 10 || short[1].ID != 40 {
		t.Errorf("unexpected order: %d, %d", short[0].ID, short[1].ID)
	}
}

func TestPageBounds(t *testing.T) {
	c, _ := New(testBooks())

	lo, hi := c.PageBounds()
	if lo != 95 || hi != 612 {
		t.Errorf("expected (95, 612), got (%d, %d)", lo, hi)
	}

	empty, _ := New(nil)
	lo, hi = empty.PageBounds()
	if lo != 0 || hi != 0 {
		t.Errorf("expected (0, 0) for empty catalog, got (%d, %d)", lo, hi)
	}
}

func TestSearch(t *testing.T) {
	c, _ := New(testBooks())

	books, total := c.Search("tolkien", 0, 10)
	if total != 2 || len(books) != 2 {
		t.Fatalf("expected 2 matches, got %d (total %d)", len(books), total)
	}

	books, total = c.Search("THE", 1, 1)
	if total != 2 {
		t.Errorf("expected total 2, got %d", total)
	}
	if len(books) != 1 || books[0].ID != 30 {
		t.Errorf("expected second match to be id 30, got %v", books)
	}

	books, total = c.Search("", 10, 5)
	if total != 4 || len(books) != 0 {
		t.Errorf("expected empty page past the end, got %d books (total %d)", len(books), total)
	}
}
