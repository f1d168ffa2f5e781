package repository

import (
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository reads the catalog snapshot from PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}
