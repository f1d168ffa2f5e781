package repository

import (
	"context"
	"fmt"

	"github.com/actuallystonmai/bookshelf/internal/similarity"
)

// Similarity loads book_similarity rows. Each row stores one book's scores
// as a float8[] whose i-th element belongs to the book at position i.
func (r *Repository) Similarity(ctx context.Context, b *similarity.Builder) error {
	columns, err := r.columnOrder(ctx)
	if err != nil {
		return err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT s.book_id, s.scores
		FROM book_similarity s
		JOIN books b ON b.id = s.book_id
		ORDER BY b.position`,
	)
	if err != nil {
		return fmt.Errorf("query similarity rows: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id int64
		var scores []float64
		if err := rows.Scan(&id, &scores); err != nil {
			return fmt.Errorf("scan similarity row: %w", err)
		}
		if err := b.SetRow(id, columns, scores); err != nil {
			return err
		}
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate over similarity rows: %w", err)
	}
	return nil
}

func (r *Repository) columnOrder(ctx context.Context) ([]int64, error) {
	rows, err := r.pool.Query(ctx, `SELECT id FROM books ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("query book positions: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan book id: %w", err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate book positions: %w", err)
	}
	return ids, nil
}
