package repository

import (
	"context"
	"fmt"

	"github.com/actuallystonmai/bookshelf/internal/domain"
)

// Books returns the catalog ordered by position.
func (r *Repository) Books(ctx context.Context) ([]domain.BookRecord, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, title, author, num_pages, avg_rating, publication_year, description, image_url
		FROM books
		ORDER BY position`,
	)
	if err != nil {
		return nil, fmt.Errorf("query books: %w", err)
	}
	defer rows.Close()

	var books []domain.BookRecord
	for rows.Next() {
		var b domain.BookRecord
		err := rows.Scan(&b.ID, &b.Title, &b.Author, &b.NumPages, &b.AvgRating,
			&b.PublicationYear, &b.Description, &b.ImageURL)
		if err != nil {
			return nil, fmt.Errorf("scan book: %w", err)
		}
		books = append(books, b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate over books: %w", err)
	}
	return books, nil
}

func (r *Repository) CountBooks(ctx context.Context) (int, error) {
	var total int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM books`).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("count books: %w", err)
	}
	return total, nil
}
