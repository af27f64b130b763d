// Package syncer drives sync cycles: snapshot, upload, prune.
package syncer

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog/log"

	"cursor-sync/src/paths"
	"cursor-sync/src/remote"
	"cursor-sync/src/retention"
	"cursor-sync/src/snapshot"
)

// State tracks where a sync cycle is in its lifecycle.
type State int

const (
	Idle State = iota
	BuildingSnapshot
	Uploading
	Pruning
	Complete
	Failed
)

func (s State) String() string {
	switch s {
	case BuildingSnapshot:
		return "building-snapshot"
	case Uploading:
		return "uploading"
	case Pruning:
		return "pruning"
	case Complete:
		return "complete"
	case Failed:
		return "failed"
	default:
		return "idle"
	}
}

// Outcome summarizes one successful cycle.
type Outcome struct {
	BackupName string
	Record     remote.BackupRecord
	Retention  retention.Report
}

// RunOnce executes a single sync cycle. Snapshot build, folder resolution,
// and upload are fatal to the cycle; pruning runs only after a successful
// upload and its failures are logged without failing the cycle. The temp
// archive is removed on every exit path.
func RunOnce(ctx context.Context, store remote.Store, locations []paths.Location, folderName string, maxBackups int) (Outcome, error) {
	transition(BuildingSnapshot)
	res, err := snapshot.Build(locations, time.Now())
	if err != nil {
		transition(Failed)
		return Outcome{}, fmt.Errorf("building snapshot: %w", err)
	}
	defer os.Remove(res.ArchivePath)

	transition(Uploading)
	folderID, err := store.EnsureFolder(ctx, folderName)
	if err != nil {
		transition(Failed)
		return Outcome{}, err
	}
	rec, err := store.Upload(ctx, folderID, res.Name, res.ArchivePath)
	if err != nil {
		transition(Failed)
		return Outcome{}, err
	}
	log.Info().Str("backup", res.Name).Str("id", rec.ID).Msg("uploaded backup")

	transition(Pruning)
	rep, err := retention.Prune(ctx, store, folderID, maxBackups)
	if err != nil {
		// The upload already landed; a failed listing only means cleanup is
		// postponed to the next cycle.
		log.Warn().Err(err).Msg("pruning skipped")
	}

	transition(Complete)
	return Outcome{BackupName: res.Name, Record: rec, Retention: rep}, nil
}

func transition(s State) {
	log.Debug().Stringer("state", s).Msg("sync cycle")
}
