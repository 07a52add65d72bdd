package db

import (
	"context"
	"database/sql"
	"time"

	"go.uber.org/zap"
)

// PruneInvites deletes journal rows older than retention
func PruneInvites(
	ctx context.Context,
	db *sql.DB,
	retention time.Duration,
	log *zap.Logger,
) error {
	cutoff := time.Now().Add(-retention)
	res, err := db.ExecContext(ctx, `
        DELETE FROM invites
         WHERE created_at < $1
    `, cutoff)
	if err != nil {
		log.Error("failed to prune invite journal", zap.Error(err))
		return err
	}
	if rows, _ := res.RowsAffected(); rows > 0 {
		log.Info("pruned invite journal", zap.Int64("removed", rows))
	}
	return nil
}
