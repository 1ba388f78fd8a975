package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/ohmyarthur/mistral-vibe/internal/config"
)

// FindByNameTool walks the workdir matching base names against a glob
// pattern, honoring the configured excludes.
type FindByNameTool struct {
	workdir string
	cfg     *config.Config
}

func NewFindByNameTool(workdir string, cfg *config.Config) *FindByNameTool {
	return &FindByNameTool{workdir: workdir, cfg: cfg}
}

func (t *FindByNameTool) Name() string { return "find_by_name" }

func (t *FindByNameTool) Description() string {
	return "Find files and directories by glob pattern"
}

type findArgs struct {
	Pattern    string `json:"pattern"`
	Path       string `json:"path"`
	Type       string `json:"type"` // "file", "dir" or "" for both
	MaxDepth   int    `json:"max_depth"`
	MaxResults int    `json:"max_results"`
}

type findResult struct {
	Pattern   string   `json:"pattern"`
	Matches   []string `json:"matches"`
	Truncated bool     `json:"truncated"`
}

func (t *FindByNameTool) Run(_ context.Context, raw json.RawMessage) (any, error) {
	args := findArgs{Path: ".", MaxResults: t.cfg.MaxResults}
	if err := decodeArgs(raw, &args); err != nil {
		return nil, err
	}
	if args.Pattern == "" {
		return nil, fmt.Errorf("find_by_name: pattern is required")
	}
	if _, err := filepath.Match(args.Pattern, ""); err != nil {
		return nil, fmt.Errorf("find_by_name: bad pattern %q: %w", args.Pattern, err)
	}

	root := args.Path
	if !filepath.IsAbs(root) {
		root = filepath.Join(t.workdir, root)
	}

	var matches []string
	truncated := false

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// Unreadable subtrees are skipped, not fatal.
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil || rel == "." {
			return nil
		}

		if d.IsDir() && excluded(d.Name(), t.cfg.Excludes) {
			return fs.SkipDir
		}
		if args.MaxDepth > 0 && strings.Count(rel, string(filepath.Separator))+1 > args.MaxDepth {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}

		if args.Type == "file" && d.IsDir() {
			return nil
		}
		if args.Type == "dir" && !d.IsDir() {
			return nil
		}
		if excluded(d.Name(), t.cfg.Excludes) {
			return nil
		}

		if ok, _ := filepath.Match(args.Pattern, d.Name()); ok {
			if args.MaxResults > 0 && len(matches) >= args.MaxResults {
				truncated = true
				return filepath.SkipAll
			}
			matches = append(matches, rel)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("find_by_name: %w", err)
	}

	return &findResult{Pattern: args.Pattern, Matches: matches, Truncated: truncated}, nil
}
