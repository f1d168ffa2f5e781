// Package seeds fills an empty database with a small demo catalog so the
// service can be tried without running the offline data pipeline.
package seeds

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/actuallystonmai/bookshelf/internal/domain"
	"github.com/actuallystonmai/bookshelf/internal/logging"
)

type demoBook struct {
	title  string
	author string
	genre  string
}

var demoBooks = []demoBook{
	{"The Hobbit", "J.R.R. Tolkien", "fantasy"},
	{"A Game of Thrones", "George R.R. Martin", "fantasy"},
	{"The Name of the Wind", "Patrick Rothfuss", "fantasy"},
	{"Mistborn", "Brandon Sanderson", "fantasy"},
	{"Dune", "Frank Herbert", "sci-fi"},
	{"Foundation", "Isaac Asimov", "sci-fi"},
	{"Neuromancer", "William Gibson", "sci-fi"},
	{"The Left Hand of Darkness", "Ursula K. Le Guin", "sci-fi"},
	{"Pride and Prejudice", "Jane Austen", "classic"},
	{"Jane Eyre", "Charlotte Bronte", "classic"},
	{"Wuthering Heights", "Emily Bronte", "classic"},
	{"Middlemarch", "George Eliot", "classic"},
	{"Gone Girl", "Gillian Flynn", "thriller"},
	{"The Girl with the Dragon Tattoo", "Stieg Larsson", "thriller"},
	{"The Silent Patient", "Alex Michaelides", "thriller"},
	{"Rebecca", "Daphne du Maurier", "thriller"},
}

// Books returns the demo catalog and a symmetric matrix in catalog order.
// Books sharing a genre score higher than books that do not.
func Books(rng *rand.Rand) ([]domain.BookRecord, [][]float64) {
	books := make([]domain.BookRecord, len(demoBooks))
	for i, d := range demoBooks {
		books[i] = domain.BookRecord{
			ID:              int64(1000 + i),
			Title:           d.title,
			Author:          d.author,
			NumPages:        150 + rng.Intn(700),
			AvgRating:       math.Round((3.5+rng.Float64()*1.2)*100) / 100,
			PublicationYear: 1810 + rng.Intn(210),
			Description:     fmt.Sprintf("A %s novel by %s.", d.genre, d.author),
			ImageURL:        fmt.Sprintf("https://images.example.com/covers/%d.jpg", 1000+i),
		}
	}

	n := len(books)
	scores := make([][]float64, n)
	for i := range scores {
		scores[i] = make([]float64, n)
		scores[i][i] = 1
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			base := 0.05
			if demoBooks[i].genre == demoBooks[j].genre {
				base = 0.55
			}
			s := math.Round((base+rng.Float64()*0.35)*1000) / 1000
			scores[i][j] = s
			scores[j][i] = s
		}
	}
	return books, scores
}

func Setup(ctx context.Context, pool *pgxpool.Pool) error {
	rng := rand.New(rand.NewSource(42))
	books, scores := Books(rng)

	return pgx.BeginFunc(ctx, pool, func(tx pgx.Tx) error {
		logging.Info().Msg("[seed] truncating existing data")
		if _, err := tx.Exec(ctx, `TRUNCATE book_similarity, books`); err != nil {
			return fmt.Errorf("truncate: %w", err)
		}

		logging.Info().Int("count", len(books)).Msg("[seed] inserting books")
		if err := seedBooks(ctx, tx, books); err != nil {
			return fmt.Errorf("seed books: %w", err)
		}

		logging.Info().Msg("[seed] inserting similarity rows")
		if err := seedSimilarity(ctx, tx, books, scores); err != nil {
			return fmt.Errorf("seed similarity: %w", err)
		}

		logging.Info().Msg("[seed] seeding complete")
		return nil
	})
}

func seedBooks(ctx context.Context, tx pgx.Tx, books []domain.BookRecord) error {
	if len(books) == 0 {
		return nil
	}

	rows := []string{}
	args := []any{}
	for i, b := range books {
		base := len(args)
		placeholders := make([]string, 9)
		for k := range placeholders {
			placeholders[k] = fmt.Sprintf("$%d", base+k+1)
		}
		rows = append(rows, "("+strings.Join(placeholders, ", ")+")")
		args = append(args, b.ID, i, b.Title, b.Author, b.NumPages, b.AvgRating,
			b.PublicationYear, b.Description, b.ImageURL)
	}

	query := `INSERT INTO books (id, position, title, author, num_pages, avg_rating,
		publication_year, description, image_url) VALUES ` + strings.Join(rows, ", ")

	_, err := tx.Exec(ctx, query, args...)
	return err
}

func seedSimilarity(ctx context.Context, tx pgx.Tx, books []domain.BookRecord, scores [][]float64) error {
	batch := &pgx.Batch{}
	for i, b := range books {
		batch.Queue(`INSERT INTO book_similarity (book_id, scores) VALUES ($1, $2)`, b.ID, scores[i])
	}
	return tx.SendBatch(ctx, batch).Close()
}

// Pairs flattens a catalog-ordered matrix into the (book_a, book_b) keyed
// form used by the SQLite importer. The diagonal is skipped.
func Pairs(books []domain.BookRecord, scores [][]float64) map[[2]int64]float64 {
	out := make(map[[2]int64]float64, len(books)*len(books))
	for i, a := range books {
		for j, b := range books {
			if i != j {
				out[[2]int64{a.ID, b.ID}] = scores[i][j]
			}
		}
	}
	return out
}
