package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"cursor-sync/src/config"
)

func TestLoad_DefaultsWhenFileAbsent(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "missing.json"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.SyncSettings.AutoSync {
		t.Fatal("auto sync defaults to off")
	}
	if cfg.SyncSettings.SyncIntervalMinutes != config.DefaultSyncIntervalMinutes {
		t.Fatalf("interval default %d", cfg.SyncSettings.SyncIntervalMinutes)
	}
	if cfg.SyncSettings.BackupFolderName != config.DefaultBackupFolderName {
		t.Fatalf("folder default %q", cfg.SyncSettings.BackupFolderName)
	}
	if cfg.SyncSettings.MaxBackups != config.DefaultMaxBackups {
		t.Fatalf("max backups default %d", cfg.SyncSettings.MaxBackups)
	}
	if !cfg.Notifications.Enabled || !cfg.Notifications.OnSuccess || !cfg.Notifications.OnError {
		t.Fatalf("notification defaults %+v", cfg.Notifications)
	}
	if cfg.Paths.CredentialsFile != config.DefaultCredentialsFile || cfg.Paths.TokenFile != config.DefaultTokenFile {
		t.Fatalf("path defaults %+v", cfg.Paths)
	}
	if cfg.Overrides() != nil {
		t.Fatalf("overrides without custom_enabled: %v", cfg.Overrides())
	}
}

func TestLoad_FullFile(t *testing.T) {
	body := `{
  "sync_settings": {
    "auto_sync": true,
    "sync_interval_minutes": 15,
    "backup_folder_name": "My Backups",
    "max_backups": 3
  },
  "notification_settings": {
    "enable_notifications": false
  },
  "paths": {
    "credentials_file": "/etc/cursor-sync/credentials.json",
    "token_file": "/etc/cursor-sync/token.json"
  },
  "cursor_paths": {
    "custom_enabled": true,
    "settings": "/srv/cursor/settings.json",
    "snippets": "/srv/cursor/snippets"
  }
}`
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if !cfg.SyncSettings.AutoSync || cfg.SyncSettings.SyncIntervalMinutes != 15 {
		t.Fatalf("sync settings %+v", cfg.SyncSettings)
	}
	if cfg.SyncSettings.BackupFolderName != "My Backups" || cfg.SyncSettings.MaxBackups != 3 {
		t.Fatalf("sync settings %+v", cfg.SyncSettings)
	}
	if cfg.Notifications.Enabled {
		t.Fatal("notifications should be disabled")
	}
	if cfg.Paths.CredentialsFile != "/etc/cursor-sync/credentials.json" {
		t.Fatalf("paths %+v", cfg.Paths)
	}

	overrides := cfg.Overrides()
	if overrides["settings"] != "/srv/cursor/settings.json" || overrides["snippets"] != "/srv/cursor/snippets" {
		t.Fatalf("overrides %v", overrides)
	}
	if _, ok := overrides["keybindings"]; ok {
		t.Fatal("empty override fields must not appear in the map")
	}
}

func TestLoad_RejectsBadValues(t *testing.T) {
	cases := []string{
		`{"sync_settings": {"sync_interval_minutes": 0}}`,
		`{"sync_settings": {"max_backups": 0}}`,
		`{"sync_settings": {"backup_folder_name": "  "}}`,
	}
	for _, body := range cases {
		path := filepath.Join(t.TempDir(), "config.json")
		if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
		if _, err := config.Load(path); err == nil {
			t.Fatalf("expected validation error for %s", body)
		}
	}
}

func TestLoad_MalformedJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := config.Load(path); err == nil {
		t.Fatal("expected parse error")
	}
}
