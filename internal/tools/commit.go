package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ohmyarthur/mistral-vibe/internal/git"
)

// CommitSuggestionTool drafts a conventional-commit message from the staged
// changes. It never runs `git commit` itself.
type CommitSuggestionTool struct {
	workdir string
}

func NewCommitSuggestionTool(workdir string) *CommitSuggestionTool {
	return &CommitSuggestionTool{workdir: workdir}
}

func (t *CommitSuggestionTool) Name() string { return "commit_suggestion" }

func (t *CommitSuggestionTool) Description() string {
	return "Suggest a conventional commit message for the staged changes"
}

type commitSuggestionResult struct {
	Title   string       `json:"title"`
	Body    string       `json:"body,omitempty"`
	Type    string       `json:"type"`
	Staged  []FileChange `json:"staged"`
	Added   int          `json:"added"`
	Removed int          `json:"removed"`
	Message string       `json:"message"`
}

func (t *CommitSuggestionTool) Run(ctx context.Context, _ json.RawMessage) (any, error) {
	if !git.IsRepo(ctx, t.workdir) {
		return nil, fmt.Errorf("commit_suggestion: %s is not a git repository", t.workdir)
	}

	out, _, err := git.Run(ctx, t.workdir, "diff", "--cached", "--name-status")
	if err != nil {
		return nil, fmt.Errorf("commit_suggestion: %w", err)
	}
	staged := parseNameStatus(out)
	if len(staged) == 0 {
		return nil, fmt.Errorf("commit_suggestion: nothing staged, run git add first")
	}

	commitType := classifyChanges(staged)
	title := fmt.Sprintf("%s: %s", commitType, describeChanges(staged))

	numstat, _, _ := git.Run(ctx, t.workdir, "diff", "--cached", "--numstat")
	added, removed := sumNumstat(numstat)

	var body []string
	for _, c := range staged {
		body = append(body, fmt.Sprintf("- %s %s", verbForStatus(c.Status), c.Path))
	}

	return &commitSuggestionResult{
		Title:   title,
		Body:    strings.Join(body, "\n"),
		Type:    commitType,
		Staged:  staged,
		Added:   added,
		Removed: removed,
		Message: title + "\n\n" + strings.Join(body, "\n"),
	}, nil
}

// sumNumstat totals the added/removed columns of `git diff --numstat`.
// Binary files report "-" and are skipped.
func sumNumstat(out string) (added, removed int) {
	for _, line := range splitNonEmpty(out) {
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		if a, err := strconv.Atoi(fields[0]); err == nil {
			added += a
		}
		if r, err := strconv.Atoi(fields[1]); err == nil {
			removed += r
		}
	}
	return added, removed
}

// classifyChanges picks a conventional-commit type from the staged paths.
func classifyChanges(staged []FileChange) string {
	allTests, allDocs, anyAdded := true, true, false
	for _, c := range staged {
		if !isTestPath(c.Path) {
			allTests = false
		}
		if !isDocPath(c.Path) {
			allDocs = false
		}
		if c.Status == "A" {
			anyAdded = true
		}
	}
	switch {
	case allTests:
		return "test"
	case allDocs:
		return "docs"
	case onlyChorePaths(staged):
		return "chore"
	case anyAdded:
		return "feat"
	default:
		return "fix"
	}
}

func isTestPath(path string) bool {
	base := filepath.Base(path)
	return strings.HasSuffix(base, "_test.go") ||
		strings.HasPrefix(base, "test_") ||
		strings.Contains(path, "/tests/")
}

func isDocPath(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".rst", ".txt":
		return true
	}
	return strings.Contains(path, "docs/")
}

func onlyChorePaths(staged []FileChange) bool {
	for _, c := range staged {
		base := filepath.Base(c.Path)
		switch base {
		case "go.mod", "go.sum", ".gitignore", "Makefile", "Dockerfile":
			continue
		}
		if strings.HasSuffix(base, ".yaml") || strings.HasSuffix(base, ".yml") ||
			strings.HasSuffix(base, ".toml") {
			continue
		}
		return false
	}
	return true
}

func describeChanges(staged []FileChange) string {
	if len(staged) == 1 {
		return fmt.Sprintf("%s %s", verbForStatus(staged[0].Status), staged[0].Path)
	}

	// Name the common directory when all changes share one.
	dir := filepath.Dir(staged[0].Path)
	for _, c := range staged[1:] {
		if filepath.Dir(c.Path) != dir {
			dir = ""
			break
		}
	}
	if dir != "" && dir != "." {
		return fmt.Sprintf("update %s (%d files)", dir, len(staged))
	}
	return fmt.Sprintf("update %d files", len(staged))
}

func verbForStatus(status string) string {
	switch {
	case status == "A":
		return "add"
	case status == "D":
		return "remove"
	case strings.HasPrefix(status, "R"):
		return "rename"
	default:
		return "update"
	}
}
