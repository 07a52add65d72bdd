// Package repository provides persistence implementations for the invite
// journal.
package repository

import (
	"context"
	"database/sql"

	"github.com/itckit/tfinvite/internal/models"
)

// PostgresJournalRepository stores invite records in a PostgreSQL
// database.
type PostgresJournalRepository struct {
	// DB is the database handle for executing queries.
	DB *sql.DB
}

// NewPostgresJournalRepository creates a new PostgresJournalRepository
// with the given database connection.
func NewPostgresJournalRepository(db *sql.DB) *PostgresJournalRepository {
	return &PostgresJournalRepository{DB: db}
}

// Record inserts one invite record.
func (r *PostgresJournalRepository) Record(ctx context.Context, rec models.InviteRecord) error {
	_, err := r.DB.ExecContext(
		ctx,
		`INSERT INTO invites (id, app_id, email, outcome, created_at) VALUES ($1, $2, $3, $4, $5)`,
		rec.ID, rec.AppID, rec.Email, rec.Outcome, rec.CreatedAt,
	)
	return err
}

// CountForApp returns how many invites have been journaled for the given
// app.
func (r *PostgresJournalRepository) CountForApp(ctx context.Context, appID string) (int, error) {
	var count int
	err := r.DB.QueryRowContext(
		ctx,
		`SELECT COUNT(*) FROM invites WHERE app_id = $1`,
		appID,
	).Scan(&count)
	return count, err
}
