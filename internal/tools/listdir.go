package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/ohmyarthur/mistral-vibe/internal/config"
	"github.com/ohmyarthur/mistral-vibe/internal/fs"
)

// ListDirTool lists one directory level with entry types and sizes.
type ListDirTool struct {
	workdir string
	cfg     *config.Config
}

func NewListDirTool(workdir string, cfg *config.Config) *ListDirTool {
	return &ListDirTool{workdir: workdir, cfg: cfg}
}

func (t *ListDirTool) Name() string { return "list_dir" }

func (t *ListDirTool) Description() string {
	return "List directory contents with types and sizes"
}

type listDirArgs struct {
	Path       string `json:"path"`
	MaxEntries int    `json:"max_entries"`
	ShowHidden bool   `json:"show_hidden"`
}

// DirEntry is one listed entry. Size is human formatted and empty for
// directories; Children counts a directory's immediate entries.
type DirEntry struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Size     string `json:"size,omitempty"`
	Children int    `json:"children,omitempty"`
}

type listDirResult struct {
	Path      string     `json:"path"`
	Entries   []DirEntry `json:"entries"`
	Total     int        `json:"total"`
	Truncated bool       `json:"truncated"`
}

func (t *ListDirTool) Run(_ context.Context, raw json.RawMessage) (any, error) {
	args := listDirArgs{Path: ".", MaxEntries: t.cfg.MaxEntries}
	if err := decodeArgs(raw, &args); err != nil {
		return nil, err
	}

	dir := args.Path
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(t.workdir, dir)
	}

	dirents, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("list_dir: %w", err)
	}

	var entries []DirEntry
	for _, d := range dirents {
		name := d.Name()
		if !args.ShowHidden && name[0] == '.' {
			continue
		}
		if excluded(name, t.cfg.Excludes) {
			continue
		}
		e := DirEntry{Name: name, Type: "file"}
		if d.IsDir() {
			e.Type = "dir"
			if children, err := os.ReadDir(filepath.Join(dir, name)); err == nil {
				e.Children = len(children)
			}
		} else if info, err := d.Info(); err == nil {
			e.Size = fs.FormatSize(info.Size())
		}
		entries = append(entries, e)
	}

	// Directories first, then alphabetical.
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Type != entries[j].Type {
			return entries[i].Type == "dir"
		}
		return entries[i].Name < entries[j].Name
	})

	total := len(entries)
	truncated := false
	if args.MaxEntries > 0 && total > args.MaxEntries {
		entries = entries[:args.MaxEntries]
		truncated = true
	}

	return &listDirResult{Path: dir, Entries: entries, Total: total, Truncated: truncated}, nil
}

// excluded matches a base name against the exclude patterns. Patterns
// without glob metacharacters compare literally.
func excluded(name string, patterns []string) bool {
	for _, p := range patterns {
		if ok, _ := filepath.Match(p, name); ok {
			return true
		}
	}
	return false
}
