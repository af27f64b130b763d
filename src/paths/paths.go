package paths

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Kind classifies what a configuration location currently is on disk.
// It is always derived from the filesystem at the moment of use and is
// deliberately not stored on Location.
type Kind int

const (
	Missing Kind = iota
	File
	Directory
)

func (k Kind) String() string {
	switch k {
	case File:
		return "file"
	case Directory:
		return "directory"
	default:
		return "missing"
	}
}

// Location is one named Cursor configuration path subject to backup.
type Location struct {
	Name string
	Path string
}

// The fixed set of configuration surfaces, in display order. Archive entry
// names and the restore mapping both key off these.
var names = []string{"settings", "keybindings", "snippets", "extensions", "workspaceStorage"}

// Names returns the known location names in their canonical order.
func Names() []string {
	return append([]string(nil), names...)
}

// Resolve produces the full set of configuration locations for the given
// platform. An override fully replaces the platform default for that name
// only; names without an override fall back to the default. Resolution is
// pure: it never consults the filesystem.
func Resolve(goos string, overrides map[string]string) ([]Location, error) {
	defaults, err := defaultPaths(goos)
	if err != nil {
		return nil, err
	}
	locations := make([]Location, 0, len(names))
	for _, name := range names {
		p := defaults[name]
		if o, ok := overrides[name]; ok && o != "" {
			p = o
		}
		expanded, err := expandHome(p)
		if err != nil {
			return nil, fmt.Errorf("resolving %s: %w", name, err)
		}
		locations = append(locations, Location{Name: name, Path: expanded})
	}
	return locations, nil
}

func defaultPaths(goos string) (map[string]string, error) {
	var base string
	switch goos {
	case "darwin":
		base = "~/Library/Application Support/Cursor/User"
	case "linux":
		base = "~/.config/Cursor/User"
	case "windows":
		base = "~/AppData/Roaming/Cursor/User"
	default:
		return nil, fmt.Errorf("unsupported operating system: %s", goos)
	}
	return map[string]string{
		"settings":         base + "/settings.json",
		"keybindings":      base + "/keybindings.json",
		"snippets":         base + "/snippets",
		"extensions":       base + "/extensions",
		"workspaceStorage": base + "/workspaceStorage",
	}, nil
}

func expandHome(p string) (string, error) {
	if p == "~" || strings.HasPrefix(p, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("finding home directory: %w", err)
		}
		return filepath.Join(home, p[1:]), nil
	}
	return filepath.FromSlash(p), nil
}

// Classify reports what the path currently is on disk.
func Classify(path string) Kind {
	info, err := os.Stat(path)
	if err != nil {
		return Missing
	}
	if info.IsDir() {
		return Directory
	}
	return File
}
