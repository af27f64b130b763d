// Package retention caps how many backup archives persist remotely.
package retention

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"cursor-sync/src/remote"
	"cursor-sync/src/snapshot"
)

// DeleteFailure records one backup that could not be removed.
type DeleteFailure struct {
	Record remote.BackupRecord
	Err    error
}

// Report summarizes one pruning pass.
type Report struct {
	Kept     int
	Deleted  []remote.BackupRecord
	Failures []DeleteFailure
}

// Prune keeps the max newest matching backups in the folder and deletes the
// rest, oldest last in listing order. Each delete is independent: a failure
// is logged and collected, and the remaining deletions are still attempted.
// Only the initial listing aborts the pass.
func Prune(ctx context.Context, store remote.Store, folderID string, max int) (Report, error) {
	if max < 1 {
		return Report{}, fmt.Errorf("max backups must be at least 1, got %d", max)
	}
	records, err := store.ListBackups(ctx, folderID, snapshot.NamePrefix)
	if err != nil {
		return Report{}, fmt.Errorf("listing backups: %w", err)
	}
	if len(records) <= max {
		return Report{Kept: len(records)}, nil
	}

	rep := Report{Kept: max}
	for _, rec := range records[max:] {
		if err := store.Delete(ctx, rec.ID); err != nil {
			log.Warn().Str("backup", rec.Name).Err(err).Msg("could not delete old backup")
			rep.Failures = append(rep.Failures, DeleteFailure{Record: rec, Err: err})
			continue
		}
		log.Info().Str("backup", rec.Name).Msg("deleted old backup")
		rep.Deleted = append(rep.Deleted, rec)
	}
	return rep, nil
}
