// Package catalog holds the read-only table of books served by the engine.
package catalog

import (
	"fmt"
	"strings"

	"github.com/actuallystonmai/bookshelf/internal/domain"
)

// Catalog is immutable after New returns. Book order is the order of the
// snapshot it was built from and is used to break score ties.
type Catalog struct {
	books []domain.BookRecord
	index map[int64]int
}

func New(books []domain.BookRecord) (*Catalog, error) {
	c := &Catalog{
		books: make([]domain.BookRecord, len(books)),
		index: make(map[int64]int, len(books)),
	}
	for i, b := range books {
		if _, dup := c.index[b.ID]; dup {
			return nil, fmt.Errorf("duplicate book id %d", b.ID)
		}
		if b.NumPages < 0 {
			return nil, fmt.Errorf("book %d has negative page count %d", b.ID, b.NumPages)
		}
		c.index[b.ID] = i
		c.books[i] = b
	}
	return c, nil
}

func (c *Catalog) Len() int {
	return len(c.books)
}

func (c *Catalog) Get(id int64) (domain.BookRecord, error) {
	i, ok := c.index[id]
	if !ok {
		return domain.BookRecord{}, fmt.Errorf("%w: id=%d", domain.ErrBookNotFound, id)
	}
	return c.books[i], nil
}

func (c *Catalog) Contains(id int64) bool {
	_, ok := c.index[id]
	return ok
}

// Index returns the catalog position of id.
func (c *Catalog) Index(id int64) (int, bool) {
	i, ok := c.index[id]
	return i, ok
}

// At returns the book at catalog position i.
func (c *Catalog) At(i int) domain.BookRecord {
	return c.books[i]
}

// IDs returns every id in catalog order.
func (c *Catalog) IDs() []int64 {
	ids := make([]int64, len(c.books))
	for i, b := range c.books {
		ids[i] = b.ID
	}
	return ids
}

// Filter returns the books matching pred, in catalog order.
func (c *Catalog) Filter(pred func(domain.BookRecord) bool) []domain.BookRecord {
	var out []domain.BookRecord
	for _, b := range c.books {
		if pred(b) {
			out = append(out, b)
		}
	}
	return out
}

// PageBounds returns the smallest and largest page counts in the catalog.
func (c *Catalog) PageBounds() (int, int) {
	if len(c.books) == 0 {
		return 0, 0
	}
	lo, hi := c.books[0].NumPages, c.books[0].NumPages
	for _, b := range c.books[1:] {
		lo = min(lo, b.NumPages)
		hi = max(hi, b.NumPages)
	}
	return lo, hi
}

// Search matches query case-insensitively against title and author and
// returns one page of results plus the total number of matches.
func (c *Catalog) Search(query string, offset, limit int) ([]domain.BookRecord, int) {
	q := strings.ToLower(strings.TrimSpace(query))
	matches := c.books
	if q != "" {
		matches = c.Filter(func(b domain.BookRecord) bool {
			return strings.Contains(strings.ToLower(b.Title), q) ||
				strings.Contains(strings.ToLower(b.Author), q)
		})
	}

	total := len(matches)
	if offset >= total {
		return []domain.BookRecord{}, total
	}
	end := min(offset+limit, total)

	page := make([]domain.BookRecord, end-offset)
	copy(page, matches[offset:end])
	return page, total
}
