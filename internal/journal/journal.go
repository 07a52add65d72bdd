// Package journal provides the invite audit trail, delegating persistence
// to a Repository. A nil *Journal is a valid no-op, used when no journal
// database is configured.
package journal

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/itckit/tfinvite/internal/models"
)

// Repository defines the persistence operations required by the journal.
type Repository interface {
	// Record inserts one invite record.
	Record(ctx context.Context, rec models.InviteRecord) error
}

// Journal records invite outcomes.
type Journal struct {
	repo Repository
}

// New constructs a Journal using the provided repository.
func New(repo Repository) *Journal {
	return &Journal{repo: repo}
}

// Record journals one invite outcome. It generates the record id and
// timestamp. A nil Journal records nothing and returns nil.
func (j *Journal) Record(ctx context.Context, appID, email, outcome string) error {
	if j == nil {
		return nil
	}
	return j.repo.Record(ctx, models.InviteRecord{
		ID:        uuid.NewString(),
		AppID:     appID,
		Email:     email,
		Outcome:   outcome,
		CreatedAt: time.Now().UTC(),
	})
}
