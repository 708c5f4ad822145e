package repository

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/orbitx/notification-service/internal/repository/postgres"
)

type Repository struct {
	Postgres *postgres.PGRepo
}

func New(db *pgxpool.Pool) *Repository {
	return &Repository{
		Postgres: postgres.New(db),
	}
}
