package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ohmyarthur/mistral-vibe/internal/config"
	"github.com/ohmyarthur/mistral-vibe/internal/edit"
	"github.com/ohmyarthur/mistral-vibe/internal/model"
)

// MultiEditTool exposes the edit engine as a tool. Defaults are the safe
// ones: preview only, backups on, abort and roll back on the first failure.
type MultiEditTool struct {
	workdir string
	cfg     *config.Config
}

func NewMultiEditTool(workdir string, cfg *config.Config) *MultiEditTool {
	return &MultiEditTool{workdir: workdir, cfg: cfg}
}

func (t *MultiEditTool) Name() string { return "multi_edit" }

func (t *MultiEditTool) Description() string {
	return "Apply search/replace edits across files with tiered matching, preview and rollback"
}

type multiEditArgs struct {
	Files         []model.FileEdit `json:"files"`
	DryRun        *bool            `json:"dry_run"`
	CheckOnly     bool             `json:"check_only"`
	CreateBackup  *bool            `json:"create_backup"`
	FailFast      *bool            `json:"fail_fast"`
	MinConfidence float64          `json:"min_confidence"`
}

func (t *MultiEditTool) Run(_ context.Context, raw json.RawMessage) (any, error) {
	var args multiEditArgs
	if err := decodeArgs(raw, &args); err != nil {
		return nil, err
	}
	if len(args.Files) == 0 {
		return nil, fmt.Errorf("multi_edit: no files supplied")
	}

	opts := edit.DefaultOptions()
	opts.CheckOnly = args.CheckOnly
	opts.CreateBackup = t.cfg.BackupEnabled()
	opts.MinConfidence = t.cfg.MinConfidence
	if args.DryRun != nil {
		opts.DryRun = *args.DryRun
	}
	if args.CreateBackup != nil {
		opts.CreateBackup = *args.CreateBackup
	}
	if args.FailFast != nil {
		opts.FailFast = *args.FailFast
	}
	if args.MinConfidence > 0 {
		opts.MinConfidence = args.MinConfidence
	}

	editor := edit.NewEditor(t.workdir, t.cfg.MaxFileSize, t.cfg.ContextLines)
	return editor.Run(edit.Request{Files: args.Files, Options: opts}), nil
}
