package remote

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
	"time"
)

type fakeObject struct {
	id      string
	name    string
	folder  string
	content []byte
	created time.Time
}

// FakeStore is an in-memory Store implementation for unit tests. Each write
// advances an internal clock by one second so creation-time ordering is
// deterministic.
type FakeStore struct {
	mu      sync.Mutex
	nextID  int
	now     time.Time
	folders map[string]string // name -> id
	objects map[string]*fakeObject

	// DeletedIDs records every successful Delete in order.
	DeletedIDs []string

	// Error injection. A non-nil entry makes the corresponding call fail.
	UploadErr   error
	ListErr     error
	FolderErr   error
	DownloadErr error
	DeleteErr   map[string]error // keyed by object ID
}

var _ Store = (*FakeStore)(nil)

func NewFake() *FakeStore {
	return &FakeStore{
		now:     time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC),
		folders: map[string]string{},
		objects: map[string]*fakeObject{},
	}
}

func (f *FakeStore) tick() time.Time {
	f.now = f.now.Add(time.Second)
	return f.now
}

func (f *FakeStore) newID(prefix string) string {
	f.nextID++
	return fmt.Sprintf("%s-%d", prefix, f.nextID)
}

func (f *FakeStore) EnsureFolder(_ context.Context, name string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FolderErr != nil {
		return "", &UnavailableError{Op: "ensure folder", Err: f.FolderErr}
	}
	if id, ok := f.folders[name]; ok {
		return id, nil
	}
	id := f.newID("folder")
	f.folders[name] = id
	return id, nil
}

func (f *FakeStore) Upload(_ context.Context, folderID, displayName, localPath string) (BackupRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.UploadErr != nil {
		return BackupRecord{}, &UnavailableError{Op: "upload", Err: f.UploadErr}
	}
	content, err := os.ReadFile(localPath)
	if err != nil {
		return BackupRecord{}, fmt.Errorf("reading %s: %w", localPath, err)
	}
	obj := &fakeObject{
		id:      f.newID("file"),
		name:    displayName,
		folder:  folderID,
		content: content,
		created: f.tick(),
	}
	f.objects[obj.id] = obj
	return BackupRecord{ID: obj.id, Name: obj.name, CreatedTime: obj.created}, nil
}

func (f *FakeStore) ListBackups(_ context.Context, folderID, nameContains string) ([]BackupRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ListErr != nil {
		return nil, &UnavailableError{Op: "list", Err: f.ListErr}
	}
	return f.matching(folderID, nameContains), nil
}

func (f *FakeStore) matching(folderID, nameContains string) []BackupRecord {
	var out []BackupRecord
	for _, obj := range f.objects {
		if obj.folder == folderID && strings.Contains(obj.name, nameContains) {
			out = append(out, BackupRecord{ID: obj.id, Name: obj.name, CreatedTime: obj.created})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedTime.After(out[j].CreatedTime) })
	return out
}

func (f *FakeStore) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.DeleteErr[id]; err != nil {
		return &UnavailableError{Op: "delete", Err: err}
	}
	if _, ok := f.objects[id]; !ok {
		return &UnavailableError{Op: "delete", Err: fmt.Errorf("no such object: %s", id)}
	}
	delete(f.objects, id)
	f.DeletedIDs = append(f.DeletedIDs, id)
	return nil
}

func (f *FakeStore) DownloadLatest(_ context.Context, folderID, nameContains string) (string, string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.DownloadErr != nil {
		return "", "", &UnavailableError{Op: "download", Err: f.DownloadErr}
	}
	records := f.matching(folderID, nameContains)
	if len(records) == 0 {
		return "", "", nil
	}
	latest := f.objects[records[0].ID]
	tmp, err := os.CreateTemp("", "cursor-sync-fake-*.zip")
	if err != nil {
		return "", "", err
	}
	if _, err := tmp.Write(latest.content); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return "", "", err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return "", "", err
	}
	return tmp.Name(), latest.name, nil
}

// Count reports how many objects currently live in the folder.
func (f *FakeStore) Count(folderID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, obj := range f.objects {
		if obj.folder == folderID {
			n++
		}
	}
	return n
}
