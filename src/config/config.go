// Package config loads the typed configuration from config.json, with
// documented defaults for every field and CURSOR_SYNC_* env overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Defaults applied when config.json is absent or a field is unset.
const (
	DefaultSyncIntervalMinutes = 60
	DefaultBackupFolderName    = "Cursor Backups"
	DefaultMaxBackups          = 10
	DefaultCredentialsFile     = "credentials.json"
	DefaultTokenFile           = "token.json"
)

// SyncSettings controls the recurring sync loop and retention.
type SyncSettings struct {
	AutoSync            bool   `mapstructure:"auto_sync"`
	SyncIntervalMinutes int    `mapstructure:"sync_interval_minutes"`
	BackupFolderName    string `mapstructure:"backup_folder_name"`
	MaxBackups          int    `mapstructure:"max_backups"`
}

// Notifications gates the outcome notifications.
type Notifications struct {
	Enabled   bool `mapstructure:"enable_notifications"`
	OnSuccess bool `mapstructure:"success_notification"`
	OnError   bool `mapstructure:"error_notification"`
}

// Paths locates the credential material and log file.
type Paths struct {
	CredentialsFile string `mapstructure:"credentials_file"`
	TokenFile       string `mapstructure:"token_file"`
	LogFile         string `mapstructure:"log_file"`
}

// CursorPaths holds per-location path overrides. They only take effect when
// CustomEnabled is set; an empty field falls back to the platform default
// even then.
type CursorPaths struct {
	CustomEnabled    bool   `mapstructure:"custom_enabled"`
	Settings         string `mapstructure:"settings"`
	Keybindings      string `mapstructure:"keybindings"`
	Snippets         string `mapstructure:"snippets"`
	Extensions       string `mapstructure:"extensions"`
	WorkspaceStorage string `mapstructure:"workspaceStorage"`
}

// Config is the full configuration surface consumed by the engine.
type Config struct {
	SyncSettings  SyncSettings  `mapstructure:"sync_settings"`
	Notifications Notifications `mapstructure:"notification_settings"`
	Paths         Paths         `mapstructure:"paths"`
	CursorPaths   CursorPaths   `mapstructure:"cursor_paths"`
}

// Load reads the configuration from path, or from ./config.json when path is
// empty. A missing file is not an error: defaults apply.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigType("json")
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("CURSOR_SYNC")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("sync_settings.auto_sync", false)
	v.SetDefault("sync_settings.sync_interval_minutes", DefaultSyncIntervalMinutes)
	v.SetDefault("sync_settings.backup_folder_name", DefaultBackupFolderName)
	v.SetDefault("sync_settings.max_backups", DefaultMaxBackups)
	v.SetDefault("notification_settings.enable_notifications", true)
	v.SetDefault("notification_settings.success_notification", true)
	v.SetDefault("notification_settings.error_notification", true)
	v.SetDefault("paths.credentials_file", DefaultCredentialsFile)
	v.SetDefault("paths.token_file", DefaultTokenFile)
	v.SetDefault("paths.log_file", "")
	v.SetDefault("cursor_paths.custom_enabled", false)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.SyncSettings.SyncIntervalMinutes < 1 {
		return fmt.Errorf("sync_interval_minutes must be at least 1, got %d", c.SyncSettings.SyncIntervalMinutes)
	}
	if c.SyncSettings.MaxBackups < 1 {
		return fmt.Errorf("max_backups must be at least 1, got %d", c.SyncSettings.MaxBackups)
	}
	if strings.TrimSpace(c.SyncSettings.BackupFolderName) == "" {
		return errors.New("backup_folder_name must not be empty")
	}
	return nil
}

// Overrides converts the custom path settings into the override map the path
// registry consumes. It is empty unless custom paths are explicitly enabled.
func (c Config) Overrides() map[string]string {
	if !c.CursorPaths.CustomEnabled {
		return nil
	}
	overrides := map[string]string{}
	for name, p := range map[string]string{
		"settings":         c.CursorPaths.Settings,
		"keybindings":      c.CursorPaths.Keybindings,
		"snippets":         c.CursorPaths.Snippets,
		"extensions":       c.CursorPaths.Extensions,
		"workspaceStorage": c.CursorPaths.WorkspaceStorage,
	} {
		if p != "" {
			overrides[name] = p
		}
	}
	return overrides
}
