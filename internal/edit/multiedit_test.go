package edit

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ohmyarthur/mistral-vibe/internal/model"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

const configContent = "DEBUG = True\nLOG_LEVEL = \"INFO\"\nMAX_CONNECTIONS = 100\n"

func singleEdit(path, search, replace string) Request {
	return Request{
		Files: []model.FileEdit{{
			Path:  path,
			Edits: []model.EditBlock{{Search: search, Replace: replace}},
		}},
		Options: DefaultOptions(),
	}
}

func TestRunDryRunPreviews(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.py", configContent)

	req := singleEdit(path, "DEBUG = True", "DEBUG = False")
	result := NewEditor(dir, 0, 0).Run(req)

	require.True(t, result.Success)
	assert.Equal(t, model.StatePreviewed, result.State)
	assert.Equal(t, 1, result.EditsApplied)
	assert.True(t, result.CanApply)
	assert.Contains(t, result.Results[0].DiffPreview, "DEBUG = False")

	// Disk untouched.
	assert.Equal(t, configContent, readFile(t, path))
}

func TestRunApplySingleEdit(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.py", configContent)

	req := singleEdit(path, "DEBUG = True", "DEBUG = False")
	req.Options.DryRun = false
	result := NewEditor(dir, 0, 0).Run(req)

	require.True(t, result.Success)
	assert.Equal(t, model.StateApplied, result.State)
	assert.Equal(t, 1, result.EditsApplied)
	assert.Contains(t, readFile(t, path), "DEBUG = False")
}

func TestRunSequentialEditsSeeEvolvingContent(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.py", configContent)

	req := Request{
		Files: []model.FileEdit{{
			Path: path,
			Edits: []model.EditBlock{
				{Search: "DEBUG = True", Replace: "DEBUG = False"},
				// Matches text produced by the first edit, proving that
				// later edits resolve against the evolving content.
				{Search: "DEBUG = False", Replace: "DEBUG = False  # locked"},
			},
		}},
		Options: DefaultOptions(),
	}
	req.Options.DryRun = false
	result := NewEditor(dir, 0, 0).Run(req)

	require.True(t, result.Success)
	assert.Equal(t, 2, result.EditsApplied)
	assert.Contains(t, readFile(t, path), "DEBUG = False  # locked")
}

func TestRunMultiFile(t *testing.T) {
	dir := t.TempDir()
	path1 := writeFile(t, dir, "file1.py", "VERSION = 1")
	path2 := writeFile(t, dir, "file2.py", "VERSION = 1")

	req := Request{
		Files: []model.FileEdit{
			{Path: path1, Edits: []model.EditBlock{{Search: "VERSION = 1", Replace: "VERSION = 2"}}},
			{Path: path2, Edits: []model.EditBlock{{Search: "VERSION = 1", Replace: "VERSION = 2"}}},
		},
		Options: DefaultOptions(),
	}
	req.Options.DryRun = false
	result := NewEditor(dir, 0, 0).Run(req)

	require.True(t, result.Success)
	assert.Equal(t, 2, result.FilesModified)
	assert.Equal(t, "VERSION = 2", readFile(t, path1))
	assert.Equal(t, "VERSION = 2", readFile(t, path2))
}

func TestRunFailFastRollsBack(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "file1.py", "GOOD = True")

	req := Request{
		Files: []model.FileEdit{{
			Path: path,
			Edits: []model.EditBlock{
				{Search: "GOOD = True", Replace: "GOOD = Modified"},
				{Search: "NONEXISTENT TOKEN THAT CANNOT MATCH", Replace: "FAIL"},
			},
		}},
		Options: DefaultOptions(),
	}
	req.Options.DryRun = false
	result := NewEditor(dir, 0, 0).Run(req)

	assert.False(t, result.Success)
	assert.Equal(t, model.StateRolledBack, result.State)
	// Byte-identical original restored.
	assert.Equal(t, "GOOD = True", readFile(t, path))
}

func TestRunFailFastAcrossFiles(t *testing.T) {
	dir := t.TempDir()
	path1 := writeFile(t, dir, "a.txt", "alpha original\n")
	path2 := writeFile(t, dir, "b.txt", "beta original\n")

	req := Request{
		Files: []model.FileEdit{
			{Path: path1, Edits: []model.EditBlock{{Search: "alpha original", Replace: "alpha changed"}}},
			{Path: path2, Edits: []model.EditBlock{{Search: "THIS DOES NOT EXIST ANYWHERE", Replace: "x"}}},
		},
		Options: DefaultOptions(),
	}
	req.Options.DryRun = false
	result := NewEditor(dir, 0, 0).Run(req)

	assert.Equal(t, model.StateRolledBack, result.State)
	assert.Equal(t, "alpha original\n", readFile(t, path1))
	assert.Equal(t, "beta original\n", readFile(t, path2))
}

func TestRunKeepGoingReportsFailed(t *testing.T) {
	dir := t.TempDir()
	path1 := writeFile(t, dir, "a.txt", "alpha\n")
	path2 := writeFile(t, dir, "b.txt", "beta\n")

	req := Request{
		Files: []model.FileEdit{
			{Path: path1, Edits: []model.EditBlock{{Search: "NO SUCH TEXT IN THIS FILE AT ALL", Replace: "x"}}},
			{Path: path2, Edits: []model.EditBlock{{Search: "beta", Replace: "BETA"}}},
		},
		Options: DefaultOptions(),
	}
	req.Options.DryRun = false
	req.Options.FailFast = false
	result := NewEditor(dir, 0, 0).Run(req)

	assert.False(t, result.Success)
	assert.Equal(t, model.StateFailed, result.State)
	// The healthy file was still applied.
	assert.Equal(t, "BETA\n", readFile(t, path2))
	require.Len(t, result.Results, 2)
	assert.False(t, result.Results[0].Success)
	assert.True(t, result.Results[1].Success)
}

func TestRunCreatesBackup(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.py", configContent)

	req := singleEdit(path, "DEBUG = True", "DEBUG = False")
	req.Options.DryRun = false
	result := NewEditor(dir, 0, 0).Run(req)

	require.True(t, result.Success)
	require.NotEmpty(t, result.BackupPaths)
	backup := result.BackupPaths[path]
	assert.Equal(t, configContent, readFile(t, backup))
}

func TestRunHashMismatch(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.py", configContent)

	req := singleEdit(path, "DEBUG = True", "DEBUG = False")
	req.Files[0].ExpectedHash = "wrong_hash_12345"
	req.Options.DryRun = false
	result := NewEditor(dir, 0, 0).Run(req)

	assert.False(t, result.Success)
	require.NotEmpty(t, result.Results[0].Errors)
	assert.Contains(t, result.Results[0].Errors[0], "hash mismatch")
	assert.Equal(t, configContent, readFile(t, path))
}

func TestRunHashMatchProceeds(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.py", configContent)

	req := singleEdit(path, "DEBUG = True", "DEBUG = False")
	req.Files[0].ExpectedHash = NewTransaction().ComputeHash(configContent)
	result := NewEditor(dir, 0, 0).Run(req)

	assert.True(t, result.Success)
}

func TestRunFileNotFound(t *testing.T) {
	dir := t.TempDir()

	req := singleEdit(filepath.Join(dir, "nonexistent.py"), "x", "y")
	result := NewEditor(dir, 0, 0).Run(req)

	assert.False(t, result.Success)
	require.NotEmpty(t, result.Results[0].Errors)
	assert.Contains(t, result.Results[0].Errors[0], "not found")
}

func TestRunFileTooLarge(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "big.txt", "0123456789")

	req := singleEdit(path, "012", "abc")
	result := NewEditor(dir, 5, 0).Run(req)

	assert.False(t, result.Success)
	assert.Contains(t, result.Results[0].Errors[0], "too large")
}

func TestRunCheckOnlyNeverWrites(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.py", configContent)

	req := singleEdit(path, "DEBUG = True", "DEBUG = False")
	req.Options.CheckOnly = true
	req.Options.DryRun = false
	result := NewEditor(dir, 0, 0).Run(req)

	require.True(t, result.Success)
	assert.Equal(t, model.StateChecked, result.State)
	assert.False(t, result.CanApply)
	assert.Equal(t, configContent, readFile(t, path))
}

func TestRunRejectFileContent(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.py", configContent)

	req := singleEdit(path, "NONEXISTENT_STRING_FOR_REJECT", "REPLACEMENT")
	result := NewEditor(dir, 0, 0).Run(req)

	assert.False(t, result.Success)
	require.NotEmpty(t, result.RejectFiles)
	reject := result.RejectFiles[path]
	assert.Contains(t, reject, "NONEXISTENT_STRING_FOR_REJECT")
	assert.Contains(t, reject, "<<<<<<< SEARCH")
	assert.Contains(t, reject, ">>>>>>> REPLACE")
	assert.Contains(t, reject, "# Tier:")
}

func TestRunMinConfidenceGatesNormalizedTier(t *testing.T) {
	dir := t.TempDir()
	// Only a normalized (0.95) match is possible; with the threshold above
	// that, the edit must be rejected.
	path := writeFile(t, dir, "f.py", "    x = 1\n    y = 2\n")

	req := singleEdit(path, "x = 1\ny = 2", "x = 1\ny = 3")
	req.Options.MinConfidence = 0.99
	result := NewEditor(dir, 0, 0).Run(req)

	assert.False(t, result.Success)
	assert.NotEmpty(t, result.RejectFiles)
}

func TestRunSafetyGateBlocksBeforeTouchingFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, ".git"), 0o755))
	writeFile(t, filepath.Join(dir, ".git"), "MERGE_HEAD", "abc123")
	path := writeFile(t, dir, "config.py", configContent)

	req := singleEdit(path, "DEBUG = True", "DEBUG = False")
	req.Options.DryRun = false
	result := NewEditor(dir, 0, 0).Run(req)

	assert.False(t, result.Success)
	assert.Equal(t, model.StateFailed, result.State)
	assert.Contains(t, result.Summary, "merge")
	assert.Empty(t, result.Results)
	assert.Equal(t, configContent, readFile(t, path))
}

func TestRunRelativePathsResolveAgainstWorkdir(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "rel.txt", "hello\n")

	req := singleEdit("rel.txt", "hello", "goodbye")
	req.Options.DryRun = false
	result := NewEditor(dir, 0, 0).Run(req)

	require.True(t, result.Success)
	assert.Equal(t, "goodbye\n", readFile(t, filepath.Join(dir, "rel.txt")))
}

func TestSummarizeStates(t *testing.T) {
	assert.Contains(t, summarize(model.StateChecked, 2, 3, 0), "checked 2 file(s)")
	assert.Contains(t, summarize(model.StatePreviewed, 1, 3, 0), "preview")
	assert.Contains(t, summarize(model.StateApplied, 1, 3, 0), "applied 3 edit(s)")
	assert.Contains(t, summarize(model.StateRolledBack, 1, 0, 2), "rolled back")
	assert.Contains(t, summarize(model.StateFailed, 1, 0, 2), "failed")
}
