package source

import (
	"os"
	"path/filepath"
)

// PathMode selects how file paths are displayed.
type PathMode uint8

const (
	// PathAuto keeps short or relative paths and shortens long absolute ones.
	PathAuto PathMode = iota
	PathAbsolute
	PathRelative
	PathBasename
)

// ParsePathMode maps a flag value to a PathMode.
func ParsePathMode(s string) (PathMode, bool) {
	switch s {
	case "auto", "":
		return PathAuto, true
	case "absolute":
		return PathAbsolute, true
	case "relative":
		return PathRelative, true
	case "basename":
		return PathBasename, true
	default:
		return PathAuto, false
	}
}

// FormatPath renders the file path for display. baseDir is only used by
// PathRelative; an empty baseDir means the working directory.
func (f *File) FormatPath(mode PathMode, baseDir string) string {
	switch mode {
	case PathAbsolute:
		if abs, err := filepath.Abs(f.Path); err == nil {
			return filepath.ToSlash(abs)
		}
		return f.Path
	case PathRelative:
		if baseDir == "" {
			if wd, err := os.Getwd(); err == nil {
				baseDir = wd
			}
		}
		abs, err := filepath.Abs(f.Path)
		if err != nil {
			return f.Path
		}
		if rel, err := filepath.Rel(baseDir, abs); err == nil {
			return filepath.ToSlash(rel)
		}
		return f.Path
	case PathBasename:
		return filepath.Base(f.Path)
	default:
		if len(f.Path) < 40 || !filepath.IsAbs(f.Path) {
			return f.Path
		}
		return filepath.Base(f.Path)
	}
}
