package fs

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Resolver maps request-supplied paths to absolute paths, trying each lookup
// directory in order.
type Resolver struct {
	lookupDirs []string
}

// NewResolver creates a resolver. With no lookup directories it falls back to
// the given workdir.
func NewResolver(workdir string, lookupDirs []string) *Resolver {
	if len(lookupDirs) == 0 {
		return &Resolver{lookupDirs: []string{workdir}}
	}
	abs := make([]string, 0, len(lookupDirs))
	for _, dir := range lookupDirs {
		a, err := filepath.Abs(dir)
		if err != nil {
			continue
		}
		abs = append(abs, a)
	}
	if len(abs) == 0 {
		abs = []string{workdir}
	}
	return &Resolver{lookupDirs: abs}
}

// Resolve returns an absolute path for p. Absolute inputs pass through;
// otherwise the first lookup directory containing the file wins, and a
// missing file resolves against the first lookup directory.
func (r *Resolver) Resolve(p string) string {
	p = ExpandUser(p)
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	if existing := r.ResolveExisting(p); existing != "" {
		return existing
	}
	return filepath.Join(r.lookupDirs[0], p)
}

// ResolveExisting returns an absolute path only when the file exists in one
// of the lookup directories.
func (r *Resolver) ResolveExisting(p string) string {
	for _, dir := range r.lookupDirs {
		abs := filepath.Join(dir, p)
		if _, err := os.Stat(abs); err == nil {
			return abs
		}
	}
	return ""
}

// ExpandUser replaces a leading ~ with the user's home directory.
func ExpandUser(p string) string {
	if p == "~" || strings.HasPrefix(p, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, strings.TrimPrefix(p[1:], "/"))
		}
	}
	return p
}

// FormatSize renders a byte count in a compact human form.
func FormatSize(size int64) string {
	const kb = 1024
	if size < kb {
		return fmt.Sprintf("%dB", size)
	}
	f := float64(size)
	for _, unit := range []string{"KB", "MB", "GB"} {
		f /= kb
		if f < kb {
			return fmt.Sprintf("%.1f%s", f, unit)
		}
	}
	return fmt.Sprintf("%.1fTB", f/kb)
}
