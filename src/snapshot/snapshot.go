package snapshot

import (
	"archive/zip"
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/klauspost/compress/flate"
	"github.com/rs/zerolog/log"

	"cursor-sync/src/paths"
)

const (
	// NamePrefix is the substring every backup archive name carries; remote
	// listing and retention both match on it.
	NamePrefix = "cursor_backup"

	// TimestampLayout is second resolution on purpose: the timestamp is used
	// verbatim in the archive name, so two builds within the same second
	// produce the same name and the remote keeps whichever uploads last.
	TimestampLayout = "20060102_150405"

	// MetadataEntry is the archive-internal name of the metadata record.
	MetadataEntry = "metadata.json"
)

// Metadata describes the archive for the machine that restores it.
type Metadata struct {
	Timestamp     string `json:"timestamp"`
	Platform      string `json:"platform"`
	CursorVersion string `json:"cursor_version"`
}

// Result is a finished, fully flushed archive. ArchivePath points at a
// temporary file; ownership transfers to the caller, who must remove it
// whether or not the upload succeeds.
type Result struct {
	ArchivePath string
	Name        string
	Timestamp   string
}

// Build walks the given locations and packages them into a single zip
// archive. Missing locations are skipped silently; file locations are stored
// as <name>/<basename>, directory locations as <name>/<relative path>. All
// archive paths are relative so the archive restores across machines.
func Build(locations []paths.Location, now time.Time) (Result, error) {
	ts := now.Format(TimestampLayout)
	name := fmt.Sprintf("%s_%s.zip", NamePrefix, ts)

	tmp, err := os.CreateTemp("", "cursor-sync-*.zip")
	if err != nil {
		return Result{}, fmt.Errorf("creating temp archive: %w", err)
	}
	path := tmp.Name()

	meta := Metadata{Timestamp: ts, Platform: runtime.GOOS, CursorVersion: cursorVersion(locations)}
	if err := writeArchive(tmp, locations, meta); err != nil {
		_ = tmp.Close()
		_ = os.Remove(path)
		return Result{}, err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(path)
		return Result{}, fmt.Errorf("flushing archive: %w", err)
	}
	return Result{ArchivePath: path, Name: name, Timestamp: ts}, nil
}

func writeArchive(w io.Writer, locations []paths.Location, meta Metadata) error {
	zw := zip.NewWriter(w)
	zw.RegisterCompressor(zip.Deflate, func(out io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(out, flate.DefaultCompression)
	})

	for _, loc := range locations {
		switch paths.Classify(loc.Path) {
		case paths.Missing:
			log.Debug().Str("location", loc.Name).Str("path", loc.Path).Msg("location not present, skipping")
		case paths.File:
			if err := addFile(zw, loc.Path, loc.Name+"/"+filepath.Base(loc.Path)); err != nil {
				return fmt.Errorf("archiving %s: %w", loc.Name, err)
			}
		case paths.Directory:
			if err := addTree(zw, loc.Path, loc.Name); err != nil {
				return fmt.Errorf("archiving %s: %w", loc.Name, err)
			}
		}
	}

	mw, err := zw.Create(MetadataEntry)
	if err != nil {
		return fmt.Errorf("writing metadata: %w", err)
	}
	enc := json.NewEncoder(mw)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return fmt.Errorf("writing metadata: %w", err)
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("finalizing archive: %w", err)
	}
	return nil
}

func addFile(zw *zip.Writer, path, arcname string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	w, err := zw.Create(arcname)
	if err != nil {
		return err
	}
	_, err = io.Copy(w, f)
	return err
}

// addTree stores every regular file under root at <prefix>/<relative path>.
// Symlinks and other non-regular entries are skipped.
func addTree(zw *zip.Writer, root, prefix string) error {
	return filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		return addFile(zw, p, prefix+"/"+filepath.ToSlash(rel))
	})
}

// cursorVersion reads the editor version from the settings location. The
// lookup is opportunistic: any failure degrades to "unknown" instead of
// failing the build.
func cursorVersion(locations []paths.Location) string {
	for _, loc := range locations {
		if loc.Name != "settings" {
			continue
		}
		b, err := os.ReadFile(loc.Path)
		if err != nil {
			return "unknown"
		}
		var settings map[string]any
		if err := json.Unmarshal(b, &settings); err != nil {
			return "unknown"
		}
		if v, ok := settings["version"].(string); ok && v != "" {
			return v
		}
		return "unknown"
	}
	return "unknown"
}

// ReadMetadata extracts the metadata record from an existing archive.
func ReadMetadata(archivePath string) (Metadata, error) {
	zr, err := zip.OpenReader(archivePath)
	if err != nil {
		return Metadata{}, fmt.Errorf("opening archive: %w", err)
	}
	defer zr.Close()
	for _, f := range zr.File {
		if f.Name != MetadataEntry {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return Metadata{}, fmt.Errorf("reading metadata: %w", err)
		}
		defer rc.Close()
		var meta Metadata
		if err := json.NewDecoder(rc).Decode(&meta); err != nil {
			return Metadata{}, fmt.Errorf("decoding metadata: %w", err)
		}
		return meta, nil
	}
	return Metadata{}, fmt.Errorf("archive has no %s entry", MetadataEntry)
}
