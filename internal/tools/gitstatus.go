package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/ohmyarthur/mistral-vibe/internal/git"
)

// GitStatusTool summarizes the working tree: branch, ahead/behind counts,
// staged and unstaged changes, untracked files, stashes and conflicts.
type GitStatusTool struct {
	workdir string
}

func NewGitStatusTool(workdir string) *GitStatusTool {
	return &GitStatusTool{workdir: workdir}
}

func (t *GitStatusTool) Name() string { return "git_status" }

func (t *GitStatusTool) Description() string {
	return "Summarize git working tree state"
}

// FileChange is one changed path with its single-letter git status code.
type FileChange struct {
	Status string `json:"status"`
	Path   string `json:"path"`
}

type gitStatusResult struct {
	IsRepo     bool         `json:"is_repo"`
	Branch     string       `json:"branch,omitempty"`
	Ahead      int          `json:"ahead"`
	Behind     int          `json:"behind"`
	Staged     []FileChange `json:"staged,omitempty"`
	Unstaged   []FileChange `json:"unstaged,omitempty"`
	Untracked  []string     `json:"untracked,omitempty"`
	Conflicted []string     `json:"conflicted,omitempty"`
	Stashes    int          `json:"stashes"`
	Clean      bool         `json:"clean"`
}

func (t *GitStatusTool) Run(ctx context.Context, _ json.RawMessage) (any, error) {
	if !git.IsRepo(ctx, t.workdir) {
		return &gitStatusResult{IsRepo: false}, nil
	}

	res := &gitStatusResult{IsRepo: true}

	branch, _, err := git.Run(ctx, t.workdir, "branch", "--show-current")
	if err != nil {
		return nil, fmt.Errorf("git_status: %w", err)
	}
	if branch == "" {
		branch = "(detached HEAD)"
	}
	res.Branch = branch

	// Ahead/behind relative to the upstream, when one is configured.
	if out, code, _ := git.Run(ctx, t.workdir, "rev-list", "--left-right", "--count", "@{upstream}...HEAD"); code == 0 {
		if fields := strings.Fields(out); len(fields) == 2 {
			res.Behind, _ = strconv.Atoi(fields[0])
			res.Ahead, _ = strconv.Atoi(fields[1])
		}
	}

	staged, _, _ := git.Run(ctx, t.workdir, "diff", "--cached", "--name-status")
	res.Staged = parseNameStatus(staged)

	unstaged, _, _ := git.Run(ctx, t.workdir, "diff", "--name-status")
	res.Unstaged = parseNameStatus(unstaged)

	untracked, _, _ := git.Run(ctx, t.workdir, "ls-files", "--others", "--exclude-standard")
	res.Untracked = splitNonEmpty(untracked)

	conflicted, _, _ := git.Run(ctx, t.workdir, "diff", "--name-only", "--diff-filter=U")
	res.Conflicted = splitNonEmpty(conflicted)

	stashes, _, _ := git.Run(ctx, t.workdir, "stash", "list")
	res.Stashes = len(splitNonEmpty(stashes))

	res.Clean = len(res.Staged) == 0 && len(res.Unstaged) == 0 &&
		len(res.Untracked) == 0 && len(res.Conflicted) == 0
	return res, nil
}

// parseNameStatus parses `git diff --name-status` output: a status letter,
// a tab, then the path.
func parseNameStatus(out string) []FileChange {
	var changes []FileChange
	for _, line := range splitNonEmpty(out) {
		status, path, ok := strings.Cut(line, "\t")
		if !ok {
			continue
		}
		// Renames carry old\tnew; keep the destination.
		if i := strings.LastIndex(path, "\t"); i >= 0 {
			path = path[i+1:]
		}
		changes = append(changes, FileChange{Status: strings.TrimSpace(status), Path: path})
	}
	return changes
}

func splitNonEmpty(out string) []string {
	var lines []string
	for _, line := range strings.Split(out, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
