package git

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strings"
)

// Run executes git with the given arguments in dir and returns trimmed
// stdout plus the exit code. A missing git binary surfaces as the error.
func Run(ctx context.Context, dir string, args ...string) (string, int, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			// Non-zero exit is part of the contract, not an error.
			return strings.TrimSpace(stdout.String()), exitErr.ExitCode(), nil
		}
		return "", -1, err
	}
	return strings.TrimSpace(stdout.String()), 0, nil
}

// IsRepo reports whether dir is inside a git work tree.
func IsRepo(ctx context.Context, dir string) bool {
	_, code, err := Run(ctx, dir, "rev-parse", "--git-dir")
	return err == nil && code == 0
}

// RepoRoot returns the repository top level for dir, or "" when dir is not
// inside a repository.
func RepoRoot(ctx context.Context, dir string) string {
	out, code, err := Run(ctx, dir, "rev-parse", "--show-toplevel")
	if err != nil || code != 0 {
		return ""
	}
	return out
}
