// Package drive implements remote.Store against the Google Drive v3 API.
// Backups live as plain files inside a single named folder; folder lookup is
// by name and mime type, single match wins.
package drive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"golang.org/x/oauth2"
	gdrive "google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"cursor-sync/src/remote"
	"cursor-sync/src/util/progress"
)

const folderMimeType = "application/vnd.google-apps.folder"

// Store talks to Google Drive. Construct with New.
type Store struct {
	svc *gdrive.Service

	// progressOut, when set, receives transfer progress lines for uploads
	// and downloads.
	progressOut io.Writer
}

var _ remote.Store = (*Store)(nil)

// New builds a Drive-backed store from an authorized token source.
func New(ctx context.Context, ts oauth2.TokenSource) (*Store, error) {
	svc, err := gdrive.NewService(ctx, option.WithTokenSource(ts))
	if err != nil {
		return nil, &remote.UnavailableError{Op: "connect", Err: err}
	}
	return &Store{svc: svc}, nil
}

// SetProgressWriter enables transfer progress reporting to w.
func (s *Store) SetProgressWriter(w io.Writer) { s.progressOut = w }

func (s *Store) EnsureFolder(ctx context.Context, name string) (string, error) {
	q := fmt.Sprintf("name = '%s' and mimeType = '%s' and trashed = false", escapeQuery(name), folderMimeType)
	list, err := s.svc.Files.List().Context(ctx).Q(q).Spaces("drive").Fields("files(id, name)").Do()
	if err != nil {
		return "", &remote.UnavailableError{Op: "folder lookup", Err: err}
	}
	if len(list.Files) > 0 {
		return list.Files[0].Id, nil
	}
	created, err := s.svc.Files.Create(&gdrive.File{Name: name, MimeType: folderMimeType}).Context(ctx).Fields("id").Do()
	if err != nil {
		return "", &remote.UnavailableError{Op: "folder create", Err: err}
	}
	return created.Id, nil
}

func (s *Store) Upload(ctx context.Context, folderID, displayName, localPath string) (remote.BackupRecord, error) {
	f, err := os.Open(localPath)
	if err != nil {
		return remote.BackupRecord{}, fmt.Errorf("opening archive: %w", err)
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return remote.BackupRecord{}, fmt.Errorf("stat archive: %w", err)
	}

	var body io.Reader = f
	if s.progressOut != nil {
		body = progress.NewReader(f, info.Size(), "uploading "+displayName, s.progressOut)
	}
	meta := &gdrive.File{Name: displayName, Parents: []string{folderID}}
	created, err := s.svc.Files.Create(meta).Context(ctx).
		Media(body, googleapi.ContentType("application/zip")).
		Fields("id, name, createdTime").Do()
	if err != nil {
		return remote.BackupRecord{}, &remote.UnavailableError{Op: "upload", Err: err}
	}
	return toRecord(created), nil
}

func (s *Store) ListBackups(ctx context.Context, folderID, nameContains string) ([]remote.BackupRecord, error) {
	q := fmt.Sprintf("'%s' in parents and name contains '%s' and trashed = false",
		escapeQuery(folderID), escapeQuery(nameContains))
	var records []remote.BackupRecord
	pageToken := ""
	for {
		call := s.svc.Files.List().Context(ctx).Q(q).
			OrderBy("createdTime desc").
			Fields("nextPageToken, files(id, name, createdTime)")
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}
		list, err := call.Do()
		if err != nil {
			return nil, &remote.UnavailableError{Op: "list", Err: err}
		}
		for _, f := range list.Files {
			records = append(records, toRecord(f))
		}
		if list.NextPageToken == "" {
			return records, nil
		}
		pageToken = list.NextPageToken
	}
}

func (s *Store) Delete(ctx context.Context, id string) error {
	err := s.svc.Files.Delete(id).Context(ctx).Do()
	if err == nil {
		return nil
	}
	// Already gone counts as deleted.
	var gerr *googleapi.Error
	if errors.As(err, &gerr) && gerr.Code == http.StatusNotFound {
		return nil
	}
	return &remote.UnavailableError{Op: "delete", Err: err}
}

func (s *Store) DownloadLatest(ctx context.Context, folderID, nameContains string) (string, string, error) {
	records, err := s.ListBackups(ctx, folderID, nameContains)
	if err != nil {
		return "", "", err
	}
	if len(records) == 0 {
		return "", "", nil
	}
	latest := records[0]

	resp, err := s.svc.Files.Get(latest.ID).Context(ctx).Download()
	if err != nil {
		return "", "", &remote.UnavailableError{Op: "download", Err: err}
	}
	defer resp.Body.Close()

	tmp, err := os.CreateTemp("", "cursor-sync-*.zip")
	if err != nil {
		return "", "", fmt.Errorf("creating temp file: %w", err)
	}
	var body io.Reader = resp.Body
	if s.progressOut != nil {
		body = progress.NewReader(resp.Body, resp.ContentLength, "downloading "+latest.Name, s.progressOut)
	}
	if _, err := io.Copy(tmp, body); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return "", "", &remote.UnavailableError{Op: "download", Err: err}
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return "", "", fmt.Errorf("flushing download: %w", err)
	}
	return tmp.Name(), latest.Name, nil
}

func toRecord(f *gdrive.File) remote.BackupRecord {
	created, err := time.Parse(time.RFC3339, f.CreatedTime)
	if err != nil {
		created = time.Time{}
	}
	return remote.BackupRecord{ID: f.Id, Name: f.Name, CreatedTime: created}
}

// escapeQuery escapes a value for interpolation into a Drive query string.
func escapeQuery(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `'`, `\'`)
}
