package journal

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itckit/tfinvite/internal/models"
)

// fakeRepository implements Repository for testing.
type fakeRepository struct {
	recorded []models.InviteRecord
	err      error
}

func (f *fakeRepository) Record(ctx context.Context, rec models.InviteRecord) error {
	f.recorded = append(f.recorded, rec)
	return f.err
}

func TestRecord(t *testing.T) {
	repo := &fakeRepository{}
	j := New(repo)

	err := j.Record(context.Background(), "987654321", "a@b.com", models.OutcomeInvited)
	require.NoError(t, err)
	require.Len(t, repo.recorded, 1)

	rec := repo.recorded[0]
	assert.NotEmpty(t, rec.ID)
	assert.Equal(t, "987654321", rec.AppID)
	assert.Equal(t, "a@b.com", rec.Email)
	assert.Equal(t, models.OutcomeInvited, rec.Outcome)
	assert.False(t, rec.CreatedAt.IsZero())
}

func TestRecord_RepositoryError(t *testing.T) {
	repo := &fakeRepository{err: errors.New("db down")}
	j := New(repo)

	err := j.Record(context.Background(), "app", "a@b.com", models.OutcomeFailed)
	assert.Error(t, err)
}

func TestRecord_NilJournalIsNoOp(t *testing.T) {
	var j *Journal
	err := j.Record(context.Background(), "app", "a@b.com", models.OutcomeInvited)
	assert.NoError(t, err)
}
