package remote

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// BackupRecord describes one uploaded archive as the remote store sees it.
// The ID is an opaque remote handle; the engine only reads and deletes by it.
type BackupRecord struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	CreatedTime time.Time `json:"createdTime"`
}

// Store is the narrow interface over the remote blob store used by the sync
// engine. Keep it small and focused on what the engine actually needs so it
// stays mockable.
type Store interface {
	// EnsureFolder returns the ID of the folder with the given name,
	// creating it if it does not exist yet. Idempotent: an existing folder
	// is reused.
	EnsureFolder(ctx context.Context, name string) (string, error)

	// Upload stores the local file under displayName inside the folder and
	// returns the resulting record.
	Upload(ctx context.Context, folderID, displayName, localPath string) (BackupRecord, error)

	// ListBackups returns every record in the folder whose name contains
	// nameContains, newest first by creation time.
	ListBackups(ctx context.Context, folderID, nameContains string) ([]BackupRecord, error)

	// Delete removes the record with the given ID.
	Delete(ctx context.Context, id string) error

	// DownloadLatest fetches the newest matching backup into a local temp
	// file and returns its path and remote name. Both are empty (with a nil
	// error) when the folder holds no matching backups. The caller owns
	// removal of the temp file.
	DownloadLatest(ctx context.Context, folderID, nameContains string) (string, string, error)
}

// ErrNoCredentials means no stored credentials were found; every remote
// operation is fatal without them.
var ErrNoCredentials = errors.New("remote credentials not configured")

// UnavailableError wraps transport, auth, and quota failures from the remote
// store. It is fatal to the current sync cycle but never to the scheduler
// loop; the engine does not retry below cycle granularity.
type UnavailableError struct {
	Op  string
	Err error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("remote store unavailable during %s: %v", e.Op, e.Err)
}

func (e *UnavailableError) Unwrap() error { return e.Err }
