package paths

import (
	"os"
	"path/filepath"
)

// Validation is the best-effort health report for one location.
type Validation struct {
	Name     string `json:"name"`
	Path     string `json:"path"`
	Kind     string `json:"kind"`
	Exists   bool   `json:"exists"`
	Readable bool   `json:"readable"`
	Writable bool   `json:"writable"`
}

// ValidateAll inspects every location on disk. Readability is probed by
// opening the path; writability is judged from the permission bits, falling
// back to the parent directory when the path does not exist yet.
func ValidateAll(locations []Location) []Validation {
	out := make([]Validation, 0, len(locations))
	for _, loc := range locations {
		v := Validation{Name: loc.Name, Path: loc.Path}
		kind := Classify(loc.Path)
		v.Kind = kind.String()
		if kind == Missing {
			out = append(out, v.withParentWritable())
			continue
		}
		v.Exists = true
		if f, err := os.Open(loc.Path); err == nil {
			v.Readable = true
			_ = f.Close()
		}
		if info, err := os.Stat(loc.Path); err == nil {
			v.Writable = info.Mode().Perm()&0o200 != 0
		}
		out = append(out, v)
	}
	return out
}

func (v Validation) withParentWritable() Validation {
	if info, err := os.Stat(filepath.Dir(v.Path)); err == nil {
		v.Writable = info.Mode().Perm()&0o200 != 0
	}
	return v
}
