package repository

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/actuallystonmai/bookshelf/internal/domain"
	"github.com/actuallystonmai/bookshelf/internal/similarity"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS books (
	id               INTEGER PRIMARY KEY,
	position         INTEGER NOT NULL UNIQUE,
	title            TEXT    NOT NULL,
	author           TEXT    NOT NULL,
	num_pages        INTEGER NOT NULL CHECK (num_pages >= 0),
	avg_rating       REAL    NOT NULL DEFAULT 0,
	publication_year INTEGER NOT NULL DEFAULT 0,
	description      TEXT    NOT NULL DEFAULT '',
	image_url        TEXT    NOT NULL DEFAULT ''
);
CREATE TABLE IF NOT EXISTS similarity_scores (
	book_a INTEGER NOT NULL REFERENCES books(id),
	book_b INTEGER NOT NULL REFERENCES books(id),
	score  REAL    NOT NULL,
	PRIMARY KEY (book_a, book_b)
);`

// SQLiteRepository reads a snapshot file with scores stored one pair per row.
type SQLiteRepository struct {
	db *sql.DB
}

func OpenSQLite(path string) (*SQLiteRepository, error) {
	db, err := sql.Open("sqlite3", "file:"+path+"?mode=rwc&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create sqlite schema: %w", err)
	}
	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

func (r *SQLiteRepository) Books(ctx context.Context) ([]domain.BookRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, title, author, num_pages, avg_rating, publication_year, description, image_url
		FROM books ORDER BY position`)
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

func (r *SQLiteRepository) Similarity(ctx context.Context, b *similarity.Builder) error {
	rows, err := r.db.QueryContext(ctx, `SELECT book_a, book_b, score FROM similarity_scores`)
	if err != nil {
		return fmt.Errorf("query similarity scores: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var a, c int64
		var score float64
		if err := rows.Scan(&a, &c, &score); err != nil {
			return fmt.Errorf("scan similarity score: %w", err)
		}
		if err := b.Set(a, c, score); err != nil {
			return err
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate over similarity scores: %w", err)
	}
	return nil
}

// Import replaces the stored snapshot in one transaction. scores is keyed
// by (book_a, book_b); both directions must be present.
func (r *SQLiteRepository) Import(ctx context.Context, books []domain.BookRecord, scores map[[2]int64]float64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin import: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM similarity_scores; DELETE FROM books;`); err != nil {
		return fmt.Errorf("clear snapshot: %w", err)
	}

	bookStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO books (id, position, title, author, num_pages, avg_rating, publication_year, description, image_url)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare book insert: %w", err)
	}
	defer bookStmt.Close()

	for i, b := range books {
		_, err := bookStmt.ExecContext(ctx, b.ID, i, b.Title, b.Author, b.NumPages, b.AvgRating,
			b.PublicationYear, b.Description, b.ImageURL)
		if err != nil {
			return fmt.Errorf("insert book %d: %w", b.ID, err)
		}
	}

	scoreStmt, err := tx.PrepareContext(ctx,
		`INSERT INTO similarity_scores (book_a, book_b, score) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare score insert: %w", err)
	}
	defer scoreStmt.Close()

	for pair, s := range scores {
		if _, err := scoreStmt.ExecContext(ctx, pair[0], pair[1], s); err != nil {
			return fmt.Errorf("insert score(%d, %d): %w", pair[0], pair[1], err)
		}
	}

	return tx.Commit()
}
