package edit

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/ohmyarthur/mistral-vibe/internal/model"
)

// Default run options, matching what unattended callers should get when they
// supply nothing: preview only, backups on, abort on the first failure.
const (
	DefaultMinConfidence = 0.85
	DefaultMaxFileSize   = 1_000_000
	DefaultContextLines  = 3
)

// Options control one multi-edit run.
type Options struct {
	DryRun        bool    `json:"dry_run"`
	CheckOnly     bool    `json:"check_only"`
	CreateBackup  bool    `json:"create_backup"`
	FailFast      bool    `json:"fail_fast"`
	MinConfidence float64 `json:"min_confidence"`
}

// DefaultOptions returns the safe defaults described above.
func DefaultOptions() Options {
	return Options{
		DryRun:        true,
		CreateBackup:  true,
		FailFast:      true,
		MinConfidence: DefaultMinConfidence,
	}
}

// Request is a batch of file edits plus run options.
type Request struct {
	Files   []model.FileEdit
	Options Options
}

// Editor sequences safety checks, per-file edit application, transaction
// bookkeeping and the fail-fast rollback policy for one workdir.
type Editor struct {
	workdir      string
	maxFileSize  int64
	contextLines int
	log          *logrus.Entry
}

// NewEditor creates an editor rooted at workdir. maxFileSize and contextLines
// fall back to defaults when zero.
func NewEditor(workdir string, maxFileSize int64, contextLines int) *Editor {
	if maxFileSize <= 0 {
		maxFileSize = DefaultMaxFileSize
	}
	if contextLines <= 0 {
		contextLines = DefaultContextLines
	}
	return &Editor{
		workdir:      workdir,
		maxFileSize:  maxFileSize,
		contextLines: contextLines,
		log:          logrus.WithField("component", "multiedit"),
	}
}

// Run executes one transaction over the request. Files are processed
// sequentially; a fail-fast failure rolls back everything written so far.
// Panics during processing are recovered, rolled back, and reported as a
// terminal failed state.
func (e *Editor) Run(req Request) (result *model.MultiEditResult) {
	tx := NewTransaction()
	e.log.WithField("transaction", tx.ID).Debugf("run: %d file(s)", len(req.Files))

	defer func() {
		if r := recover(); r != nil {
			tx.RollbackAll()
			result = &model.MultiEditResult{
				Success:       false,
				State:         model.StateFailed,
				TransactionID: tx.ID,
				Summary:       fmt.Sprintf("internal error: %v", r),
			}
		}
	}()

	if ok, errs := CheckRepoSafety(e.workdir); !ok {
		return &model.MultiEditResult{
			Success:       false,
			State:         model.StateFailed,
			TransactionID: tx.ID,
			Errors:        errs,
			Summary:       "safety check failed: " + strings.Join(errs, "; "),
		}
	}

	totalEdits := 0
	for _, f := range req.Files {
		totalEdits += len(f.Edits)
	}

	var results []model.FileEditResult
	rejectFiles := make(map[string]string)
	editsApplied, editsFailed := 0, 0

	for _, fileEdit := range req.Files {
		fr := e.processFile(fileEdit, tx, req.Options)
		results = append(results, fr)
		editsApplied += fr.EditsApplied
		editsFailed += fr.EditsFailed

		if fr.RejectContent != "" {
			rejectFiles[fileEdit.Path] = fr.RejectContent
		}

		if !fr.Success && req.Options.FailFast {
			restored := tx.RollbackAll()
			e.log.WithField("transaction", tx.ID).
				Debugf("fail-fast: rolled back %d file(s)", restored)
			reason := "unknown error"
			if len(fr.Errors) > 0 {
				reason = fr.Errors[0]
			}
			return &model.MultiEditResult{
				Success:       false,
				State:         model.StateRolledBack,
				FilesChecked:  len(results),
				TotalEdits:    totalEdits,
				EditsFailed:   editsFailed,
				Results:       results,
				RejectFiles:   nilIfEmpty(rejectFiles),
				TransactionID: tx.ID,
				Summary:       "failed and rolled back: " + reason,
			}
		}
	}

	allSuccess := true
	filesModified := 0
	for _, r := range results {
		if !r.Success {
			allSuccess = false
		}
		if r.EditsApplied > 0 {
			filesModified++
		}
	}

	var state model.State
	switch {
	case req.Options.CheckOnly:
		state = model.StateChecked
	case req.Options.DryRun:
		state = model.StatePreviewed
	case allSuccess:
		state = model.StateApplied
	default:
		state = model.StateFailed
	}

	backupPaths := make(map[string]string)
	for orig, bak := range tx.BackupPaths() {
		backupPaths[orig] = bak
	}

	return &model.MultiEditResult{
		Success:       allSuccess,
		State:         state,
		FilesChecked:  len(results),
		FilesModified: filesModified,
		TotalEdits:    totalEdits,
		EditsApplied:  editsApplied,
		EditsFailed:   editsFailed,
		Results:       results,
		BackupPaths:   nilIfEmpty(backupPaths),
		RejectFiles:   nilIfEmpty(rejectFiles),
		TransactionID: tx.ID,
		CanApply:      allSuccess && req.Options.DryRun && !req.Options.CheckOnly,
		Summary:       summarize(state, len(results), editsApplied, editsFailed),
	}
}

// processFile resolves and applies every edit block for one file against its
// evolving content. Later edits in the same file see the result of earlier
// ones, so edit order matters.
func (e *Editor) processFile(fileEdit model.FileEdit, tx *Transaction, opts Options) model.FileEditResult {
	path := fileEdit.Path
	if !filepath.IsAbs(path) {
		path = filepath.Join(e.workdir, path)
	}
	path = filepath.Clean(path)

	fail := func(msg string) model.FileEditResult {
		return model.FileEditResult{
			Path:        path,
			Success:     false,
			EditsFailed: len(fileEdit.Edits),
			Errors:      []string{msg},
		}
	}

	info, err := os.Stat(path)
	if err != nil {
		return fail(fmt.Sprintf("file not found: %s", path))
	}
	if info.Size() > e.maxFileSize {
		return fail(fmt.Sprintf("file too large: %d bytes", info.Size()))
	}

	content, err := tx.ReadFile(path)
	if err != nil {
		return fail(fmt.Sprintf("failed to read file: %v", err))
	}

	if fileEdit.ExpectedHash != "" {
		if current := tx.ComputeHash(content); current != fileEdit.ExpectedHash {
			return fail("file has changed since edit was planned (hash mismatch)")
		}
	}

	var (
		errors       []string
		warnings     []string
		rejectParts  []string
		blockResults []model.EditBlockResult
	)

	modified := content
	editsApplied := 0

	for i, block := range fileEdit.Edits {
		match := Match(modified, block, opts.MinConfidence)
		e.log.Debugf("%s edit %d: tier=%s confidence=%.2f success=%t",
			filepath.Base(path), i+1, match.Tier, match.Confidence, match.Success)

		br := model.EditBlockResult{
			EditIndex: i,
			Success:   match.Success,
			Match:     match,
		}

		if match.Success && match.Confidence >= opts.MinConfidence &&
			match.MatchStart >= 0 && match.MatchEnd >= match.MatchStart {
			br.OriginalText = modified[match.MatchStart:match.MatchEnd]
			modified = modified[:match.MatchStart] + block.Replace + modified[match.MatchEnd:]
			br.AppliedText = block.Replace
			editsApplied++
			if match.Warning != "" {
				warnings = append(warnings, fmt.Sprintf("edit %d: %s", i+1, match.Warning))
			}
		} else {
			warning := match.Warning
			if warning == "" {
				warning = "no match found"
			}
			errors = append(errors, fmt.Sprintf("edit %d: %s", i+1, warning))
			rejectParts = append(rejectParts, formatReject(block, match))
			br.Success = false
		}

		blockResults = append(blockResults, br)
	}

	diffPreview := ""
	if content != modified {
		diffPreview = UnifiedDiff(content, modified, path, e.contextLines)
	}

	if !opts.DryRun && !opts.CheckOnly && editsApplied > 0 {
		if opts.CreateBackup {
			if _, err := tx.CreateBackup(path); err != nil {
				errors = append(errors, fmt.Sprintf("backup failed: %v", err))
			}
		}
		if err := tx.Apply(path, modified); err != nil {
			errors = append(errors, fmt.Sprintf("write failed: %v", err))
		}
	}

	return model.FileEditResult{
		Path:          path,
		Success:       len(errors) == 0,
		EditsApplied:  editsApplied,
		EditsFailed:   len(fileEdit.Edits) - editsApplied,
		BlockResults:  blockResults,
		DiffPreview:   diffPreview,
		Errors:        errors,
		Warnings:      warnings,
		RejectContent: strings.Join(rejectParts, "\n"),
	}
}

// formatReject renders a rejected edit in conflict-marker form with a
// comment header and any fuzzy suggestion.
func formatReject(block model.EditBlock, match model.MatchResult) string {
	warning := match.Warning
	if warning == "" {
		warning = "none"
	}
	lines := []string{
		fmt.Sprintf("# Rejected edit (confidence: %.0f%%)", match.Confidence*100),
		fmt.Sprintf("# Tier: %s", match.Tier),
		fmt.Sprintf("# Warning: %s", warning),
		"",
		"<<<<<<< SEARCH",
		block.Search,
		"=======",
		block.Replace,
		">>>>>>> REPLACE",
	}
	if match.Suggestion != "" {
		lines = append(lines, "", "# Suggested match:", match.Suggestion)
	}
	return strings.Join(lines, "\n")
}

func summarize(state model.State, files, applied, failed int) string {
	switch state {
	case model.StateChecked:
		return fmt.Sprintf("checked %d file(s): %d edit(s) valid", files, applied)
	case model.StatePreviewed:
		return fmt.Sprintf("preview: %d edit(s) ready to apply", applied)
	case model.StateApplied:
		return fmt.Sprintf("applied %d edit(s) to %d file(s)", applied, files)
	case model.StateRolledBack:
		return fmt.Sprintf("rolled back: %d edit(s) failed", failed)
	default:
		return fmt.Sprintf("failed: %d edit(s) could not be applied", failed)
	}
}

func nilIfEmpty(m map[string]string) map[string]string {
	if len(m) == 0 {
		return nil
	}
	return m
}
