package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/ohmyarthur/mistral-vibe/internal/git"
)

// DiffFileTool shows the git diff for a single path with hunk breakdown and
// added/removed line counts.
type DiffFileTool struct {
	workdir string
}

func NewDiffFileTool(workdir string) *DiffFileTool {
	return &DiffFileTool{workdir: workdir}
}

func (t *DiffFileTool) Name() string { return "diff_file" }

func (t *DiffFileTool) Description() string {
	return "Show the git diff for one file"
}

type diffFileArgs struct {
	Path         string `json:"path"`
	Staged       bool   `json:"staged"`
	ContextLines int    `json:"context_lines"`
}

// Hunk is one @@ section of a diff.
type Hunk struct {
	OldStart int    `json:"old_start"`
	NewStart int    `json:"new_start"`
	Header   string `json:"header,omitempty"`
	Content  string `json:"content"`
}

type diffFileResult struct {
	Path    string `json:"path"`
	Diff    string `json:"diff"`
	Hunks   []Hunk `json:"hunks,omitempty"`
	Added   int    `json:"added"`
	Removed int    `json:"removed"`
}

var hunkHeaderRegex = regexp.MustCompile(`^@@ -(\d+)(?:,\d+)? \+(\d+)(?:,\d+)? @@(.*)$`)

func (t *DiffFileTool) Run(ctx context.Context, raw json.RawMessage) (any, error) {
	args := diffFileArgs{ContextLines: 3}
	if err := decodeArgs(raw, &args); err != nil {
		return nil, err
	}
	if args.Path == "" {
		return nil, fmt.Errorf("diff_file: path is required")
	}
	if !git.IsRepo(ctx, t.workdir) {
		return nil, fmt.Errorf("diff_file: %s is not a git repository", t.workdir)
	}

	gitArgs := []string{"diff", fmt.Sprintf("-U%d", args.ContextLines)}
	if args.Staged {
		gitArgs = append(gitArgs, "--cached")
	}
	gitArgs = append(gitArgs, "--", args.Path)

	out, _, err := git.Run(ctx, t.workdir, gitArgs...)
	if err != nil {
		return nil, fmt.Errorf("diff_file: %w", err)
	}

	res := &diffFileResult{Path: args.Path, Diff: out}
	res.Hunks, res.Added, res.Removed = parseDiff(out)
	return res, nil
}

// parseDiff splits unified diff output into hunks and counts the added and
// removed lines.
func parseDiff(diff string) (hunks []Hunk, added, removed int) {
	var current *Hunk
	for _, line := range strings.Split(diff, "\n") {
		if m := hunkHeaderRegex.FindStringSubmatch(line); m != nil {
			if current != nil {
				current.Content = strings.TrimRight(current.Content, "\n")
				hunks = append(hunks, *current)
			}
			oldStart, _ := strconv.Atoi(m[1])
			newStart, _ := strconv.Atoi(m[2])
			current = &Hunk{
				OldStart: oldStart,
				NewStart: newStart,
				Header:   strings.TrimSpace(m[3]),
			}
			continue
		}
		if current != nil {
			current.Content += line + "\n"
		}
		switch {
		case strings.HasPrefix(line, "+") && !strings.HasPrefix(line, "+++"):
			added++
		case strings.HasPrefix(line, "-") && !strings.HasPrefix(line, "---"):
			removed++
		}
	}
	if current != nil {
		current.Content = strings.TrimRight(current.Content, "\n")
		hunks = append(hunks, *current)
	}
	return hunks, added, removed
}
