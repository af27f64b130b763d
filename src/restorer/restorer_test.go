package restorer_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"cursor-sync/src/paths"
	"cursor-sync/src/restorer"
	"cursor-sync/src/snapshot"
)

func mustWrite(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func mustRead(t *testing.T, path string) string {
	t.Helper()
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return string(b)
}

// Build an archive from one tree, mutate the live tree, restore, and check
// the original content is back.
func TestRestore_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	settings := filepath.Join(dir, "settings.json")
	snippets := filepath.Join(dir, "snippets")
	mustWrite(t, settings, `{"a":1}`)
	mustWrite(t, filepath.Join(snippets, "x.json"), `{"x":1}`)
	mustWrite(t, filepath.Join(snippets, "go", "y.json"), `{"y":2}`)
	locations := []paths.Location{
		{Name: "settings", Path: settings},
		{Name: "snippets", Path: snippets},
	}

	res, err := snapshot.Build(locations, time.Now())
	if err != nil {
		t.Fatal(err)
	}
	defer os.Remove(res.ArchivePath)

	// Drift the live state.
	mustWrite(t, settings, `{"a":999}`)
	mustWrite(t, filepath.Join(snippets, "stray.json"), `{}`)
	if err := os.RemoveAll(filepath.Join(snippets, "go")); err != nil {
		t.Fatal(err)
	}

	rep, err := restorer.Restore(res.ArchivePath, locations, time.Now())
	if err != nil {
		t.Fatal(err)
	}
	if len(rep.Failures) != 0 {
		t.Fatalf("unexpected failures: %+v", rep.Failures)
	}
	if len(rep.Restored) != 2 {
		t.Fatalf("restored %v, want both locations", rep.Restored)
	}

	if got := mustRead(t, settings); got != `{"a":1}` {
		t.Fatalf("settings not restored: %s", got)
	}
	if got := mustRead(t, filepath.Join(snippets, "x.json")); got != `{"x":1}` {
		t.Fatalf("snippets file not restored: %s", got)
	}
	if got := mustRead(t, filepath.Join(snippets, "go", "y.json")); got != `{"y":2}` {
		t.Fatalf("nested snippet not restored: %s", got)
	}
	if _, err := os.Stat(filepath.Join(snippets, "stray.json")); !os.IsNotExist(err) {
		t.Fatal("directory restore left stray file behind")
	}
}

func TestRestore_RollbackCopies(t *testing.T) {
	dir := t.TempDir()
	settings := filepath.Join(dir, "settings.json")
	snippets := filepath.Join(dir, "snippets")
	mustWrite(t, settings, `{"old":true}`)
	mustWrite(t, filepath.Join(snippets, "x.json"), "old-snippet")
	locations := []paths.Location{
		{Name: "settings", Path: settings},
		{Name: "snippets", Path: snippets},
	}

	res, err := snapshot.Build(locations, time.Now())
	if err != nil {
		t.Fatal(err)
	}
	defer os.Remove(res.ArchivePath)

	mustWrite(t, settings, `{"live":true}`)
	mustWrite(t, filepath.Join(snippets, "x.json"), "live-snippet")

	now := time.Now()
	rep, err := restorer.Restore(res.ArchivePath, locations, now)
	if err != nil {
		t.Fatal(err)
	}

	rb, ok := rep.Rollbacks["settings"]
	if !ok {
		t.Fatal("no rollback recorded for settings")
	}
	if rb == settings {
		t.Fatal("rollback path equals the live path")
	}
	if got := mustRead(t, rb); got != `{"live":true}` {
		t.Fatalf("rollback holds %q, want pre-restore content", got)
	}
	if got := mustRead(t, filepath.Join(rep.Rollbacks["snippets"], "x.json")); got != "live-snippet" {
		t.Fatalf("directory rollback holds %q", got)
	}
}

func TestRestore_MissingLiveNeedsNoRollback(t *testing.T) {
	src := t.TempDir()
	settings := filepath.Join(src, "settings.json")
	mustWrite(t, settings, `{"a":1}`)
	buildLocs := []paths.Location{{Name: "settings", Path: settings}}

	res, err := snapshot.Build(buildLocs, time.Now())
	if err != nil {
		t.Fatal(err)
	}
	defer os.Remove(res.ArchivePath)

	// Restore onto a machine where the location does not exist yet.
	dst := filepath.Join(t.TempDir(), "deep", "settings.json")
	rep, err := restorer.Restore(res.ArchivePath, []paths.Location{{Name: "settings", Path: dst}}, time.Now())
	if err != nil {
		t.Fatal(err)
	}
	if len(rep.Rollbacks) != 0 {
		t.Fatalf("rollback created for absent path: %v", rep.Rollbacks)
	}
	if got := mustRead(t, dst); got != `{"a":1}` {
		t.Fatalf("restored content %q", got)
	}
}

func TestRestore_CorruptArchiveAbortsBeforeMutation(t *testing.T) {
	dir := t.TempDir()
	settings := filepath.Join(dir, "settings.json")
	mustWrite(t, settings, `{"live":true}`)

	bogus := filepath.Join(dir, "bogus.zip")
	mustWrite(t, bogus, "this is not a zip file")

	_, err := restorer.Restore(bogus, []paths.Location{{Name: "settings", Path: settings}}, time.Now())
	var corrupt *restorer.ArchiveCorruptError
	if !errors.As(err, &corrupt) {
		t.Fatalf("expected ArchiveCorruptError, got %v", err)
	}
	if got := mustRead(t, settings); got != `{"live":true}` {
		t.Fatalf("live file mutated by failed restore: %s", got)
	}
	if entries, _ := filepath.Glob(settings + ".backup_*"); len(entries) != 0 {
		t.Fatalf("rollback created by failed restore: %v", entries)
	}
}

func TestRestore_PartialFailureDoesNotBlockSiblings(t *testing.T) {
	src := t.TempDir()
	settings := filepath.Join(src, "settings.json")
	snippets := filepath.Join(src, "snippets")
	mustWrite(t, settings, `{"a":1}`)
	mustWrite(t, filepath.Join(snippets, "x.json"), `{}`)
	buildLocs := []paths.Location{
		{Name: "settings", Path: settings},
		{Name: "snippets", Path: snippets},
	}
	res, err := snapshot.Build(buildLocs, time.Now())
	if err != nil {
		t.Fatal(err)
	}
	defer os.Remove(res.ArchivePath)

	// Sabotage the settings destination: its parent is a regular file, so
	// MkdirAll fails. Snippets must still restore.
	dst := t.TempDir()
	blocker := filepath.Join(dst, "blocked")
	mustWrite(t, blocker, "i am a file, not a directory")
	restoreLocs := []paths.Location{
		{Name: "settings", Path: filepath.Join(blocker, "settings.json")},
		{Name: "snippets", Path: filepath.Join(dst, "snippets")},
	}

	rep, err := restorer.Restore(res.ArchivePath, restoreLocs, time.Now())
	if err != nil {
		t.Fatal(err)
	}
	if len(rep.Failures) != 1 || rep.Failures[0].Name != "settings" {
		t.Fatalf("expected settings failure, got %+v", rep.Failures)
	}
	if len(rep.Restored) != 1 || rep.Restored[0] != "snippets" {
		t.Fatalf("sibling location not restored: %+v", rep.Restored)
	}
	if got := mustRead(t, filepath.Join(dst, "snippets", "x.json")); got != `{}` {
		t.Fatalf("snippets content %q", got)
	}
	if rep.Err() == nil {
		t.Fatal("partial failure must surface through Report.Err")
	}
	if !strings.Contains(rep.Err().Error(), "settings") {
		t.Fatalf("summary error does not name the failed location: %v", rep.Err())
	}
}

