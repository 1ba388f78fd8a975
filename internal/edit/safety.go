package edit

import (
	"os"
	"path/filepath"
)

// CheckRepoSafety inspects repository-level preconditions that make writing
// unsafe. All checks run; every violation contributes its own message.
// It passes trivially outside a git repository.
func CheckRepoSafety(workdir string) (bool, []string) {
	gitDir := filepath.Join(workdir, ".git")
	var errs []string

	if pathExists(filepath.Join(gitDir, "MERGE_HEAD")) {
		errs = append(errs, "git merge in progress, resolve before editing")
	}
	if pathExists(filepath.Join(gitDir, "rebase-merge")) || pathExists(filepath.Join(gitDir, "rebase-apply")) {
		errs = append(errs, "git rebase in progress, complete or abort first")
	}
	if pathExists(filepath.Join(gitDir, "index.lock")) {
		errs = append(errs, "git index is locked, another git process may be running")
	}

	return len(errs) == 0, errs
}

func pathExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
