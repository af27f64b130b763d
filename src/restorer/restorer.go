// Package restorer materializes a backup archive back onto the live
// configuration locations, taking a rollback copy of anything it overwrites.
package restorer

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/klauspost/compress/flate"
	"github.com/rs/zerolog/log"

	"cursor-sync/src/paths"
)

// ArchiveCorruptError means the archive could not be opened or extracted.
// It aborts the whole restore before any live path is touched.
type ArchiveCorruptError struct {
	Path string
	Err  error
}

func (e *ArchiveCorruptError) Error() string {
	return fmt.Sprintf("backup archive %s is unreadable: %v", e.Path, e.Err)
}

func (e *ArchiveCorruptError) Unwrap() error { return e.Err }

// LocationFailure records one location whose restore failed.
type LocationFailure struct {
	Name string
	Err  error
}

// Report summarizes one restore run. Rollbacks maps location names to the
// sibling copies taken before overwriting; these are never deleted by this
// tool, they are the user's undo mechanism.
type Report struct {
	Restored  []string
	Rollbacks map[string]string
	Failures  []LocationFailure
}

// Err returns a summary error when any location failed, nil otherwise.
func (r Report) Err() error {
	if len(r.Failures) == 0 {
		return nil
	}
	names := make([]string, 0, len(r.Failures))
	for _, f := range r.Failures {
		names = append(names, f.Name)
	}
	return fmt.Errorf("restore failed for %s", strings.Join(names, ", "))
}

// Restore extracts the archive and applies each top-level entry to its
// location. Locations are independent units: a failure in one is collected
// and the rest are still attempted. Whenever a live path exists it is copied
// to a timestamped sibling before anything destructive happens.
func Restore(archivePath string, locations []paths.Location, now time.Time) (Report, error) {
	zr, err := zip.OpenReader(archivePath)
	if err != nil {
		return Report{}, &ArchiveCorruptError{Path: archivePath, Err: err}
	}
	defer zr.Close()
	zr.RegisterDecompressor(zip.Deflate, func(r io.Reader) io.ReadCloser {
		return flate.NewReader(r)
	})

	staging, err := os.MkdirTemp("", "cursor-sync-restore-")
	if err != nil {
		return Report{}, fmt.Errorf("creating staging directory: %w", err)
	}
	defer os.RemoveAll(staging)

	if err := extractAll(&zr.Reader, staging); err != nil {
		return Report{}, &ArchiveCorruptError{Path: archivePath, Err: err}
	}

	rep := Report{Rollbacks: map[string]string{}}
	for _, loc := range locations {
		staged := filepath.Join(staging, loc.Name)
		if _, err := os.Stat(staged); err != nil {
			continue // not in this archive
		}
		if err := restoreLocation(loc, staged, now, &rep); err != nil {
			log.Error().Str("location", loc.Name).Err(err).Msg("restore failed")
			rep.Failures = append(rep.Failures, LocationFailure{Name: loc.Name, Err: err})
			continue
		}
		log.Info().Str("location", loc.Name).Msg("restored")
		rep.Restored = append(rep.Restored, loc.Name)
	}
	return rep, nil
}

func restoreLocation(loc paths.Location, staged string, now time.Time, rep *Report) error {
	// Rollback copy first, unconditionally, whenever the live path exists.
	switch paths.Classify(loc.Path) {
	case paths.File:
		rollback := rollbackPath(loc.Path, now)
		if err := copyFile(loc.Path, rollback); err != nil {
			return fmt.Errorf("rollback copy: %w", err)
		}
		rep.Rollbacks[loc.Name] = rollback
	case paths.Directory:
		rollback := rollbackPath(loc.Path, now)
		if err := copyTree(loc.Path, rollback); err != nil {
			return fmt.Errorf("rollback copy: %w", err)
		}
		rep.Rollbacks[loc.Name] = rollback
	}

	if file, ok := singleFileEntry(staged, loc.Path); ok {
		// File location: the archive holds <name>/<basename>; overwrite the
		// destination file, creating parents as needed.
		if err := os.MkdirAll(filepath.Dir(loc.Path), 0o755); err != nil {
			return fmt.Errorf("creating parent directory: %w", err)
		}
		return copyFile(file, loc.Path)
	}

	// Directory location: replace the whole tree.
	if err := os.RemoveAll(loc.Path); err != nil {
		return fmt.Errorf("removing existing directory: %w", err)
	}
	return copyTree(staged, loc.Path)
}

func rollbackPath(p string, now time.Time) string {
	return fmt.Sprintf("%s.backup_%d", p, now.Unix())
}

// singleFileEntry reports whether staged holds exactly one regular file named
// after the destination's basename, which is how file-kind locations are
// stored in the archive. Directory locations never match: their content is
// named independently of the location path.
func singleFileEntry(staged, destination string) (string, bool) {
	entries, err := os.ReadDir(staged)
	if err != nil || len(entries) != 1 {
		return "", false
	}
	e := entries[0]
	if e.IsDir() || e.Name() != filepath.Base(destination) {
		return "", false
	}
	return filepath.Join(staged, e.Name()), true
}

func extractAll(zr *zip.Reader, dst string) error {
	for _, f := range zr.File {
		name := f.Name
		if !filepath.IsLocal(filepath.FromSlash(name)) {
			return fmt.Errorf("unsafe archive path: %s", name)
		}
		target := filepath.Join(dst, filepath.FromSlash(name))
		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return err
			}
			continue
		}
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return err
		}
		if err := extractFile(f, target); err != nil {
			return fmt.Errorf("extracting %s: %w", name, err)
		}
	}
	return nil
}

func extractFile(f *zip.File, target string) error {
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()
	out, err := os.Create(target)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, rc); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}
