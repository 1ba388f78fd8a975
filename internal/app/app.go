package app

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"runtime/debug"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/ohmyarthur/mistral-vibe/internal/cli"
	"github.com/ohmyarthur/mistral-vibe/internal/config"
	"github.com/ohmyarthur/mistral-vibe/internal/edit"
	"github.com/ohmyarthur/mistral-vibe/internal/fs"
	"github.com/ohmyarthur/mistral-vibe/internal/model"
	"github.com/ohmyarthur/mistral-vibe/internal/nvim"
	"github.com/ohmyarthur/mistral-vibe/internal/parser"
	"github.com/ohmyarthur/mistral-vibe/internal/source"
	"github.com/ohmyarthur/mistral-vibe/internal/tools"
	"github.com/ohmyarthur/mistral-vibe/internal/ui"
)

// App orchestrates the entire application logic.
type App struct {
	cfg      *cli.Config
	conf     *config.Config
	workdir  string
	resolver *fs.Resolver
	source   *source.Provider
	registry *tools.Registry
	log      *logrus.Entry

	// files caches the parsed edit script so a preview can be applied
	// without re-reading the source.
	files []model.FileEdit

	// Result holds the raw outcome of the last Execute call, for JSON
	// output and the plain summary printer.
	Result any
}

// DetailedError enhances a standard error with a stack trace.
type DetailedError struct {
	Err   error
	Stack []byte
}

func (e *DetailedError) Error() string {
	return e.Err.Error()
}

// New creates a new App instance.
func New(cfg *cli.Config) (*App, error) {
	workdir := cfg.Workdir
	if workdir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to determine working directory: %w", err)
		}
		workdir = wd
	}

	conf, err := config.Load(workdir)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	// Flags override the config file.
	if cfg.MinConfidence > 0 {
		conf.MinConfidence = cfg.MinConfidence
	}
	if cfg.ContextLines > 0 {
		conf.ContextLines = cfg.ContextLines
	}

	lookupDirs := append([]string{workdir}, cfg.LookupDirs...)

	return &App{
		cfg:      cfg,
		conf:     conf,
		workdir:  workdir,
		resolver: fs.NewResolver(workdir, lookupDirs),
		source:   source.New(cfg.From),
		registry: tools.NewBuiltinRegistry(workdir, conf),
		log:      logrus.WithField("component", "app"),
	}, nil
}

// Execute runs the selected tool and returns a summary for display.
func (a *App) Execute() (summary model.Summary, err error) {
	// Centralized panic recovery to provide stack traces for unexpected errors.
	defer func() {
		if r := recover(); r != nil {
			err = &DetailedError{
				Err:   fmt.Errorf("internal panic: %v", r),
				Stack: debug.Stack(),
			}
		}
	}()

	if a.cfg.Tool == "multi_edit" {
		return a.runEdit()
	}
	return a.runTool()
}

// runEdit reads the edit script, parses it and runs it through the editor.
func (a *App) runEdit() (model.Summary, error) {
	content, err := a.source.Content()
	if err != nil {
		return model.Summary{}, err
	}
	if content == "" {
		return model.Summary{Message: "Source is empty. Nothing to process."}, nil
	}

	files, err := parser.ParseScript(content, a.resolver)
	if err != nil {
		return model.Summary{}, fmt.Errorf("failed to parse edit script: %w", err)
	}
	if len(files) == 0 {
		return model.Summary{Message: "No edits found in the script. Nothing to do."}, nil
	}
	a.files = files

	return a.run(!a.cfg.Apply), nil
}

// Apply re-runs the cached edit script for real. Used by the TUI after a
// successful preview is confirmed.
func (a *App) Apply() (summary model.Summary, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &DetailedError{
				Err:   fmt.Errorf("internal panic: %v", r),
				Stack: debug.Stack(),
			}
		}
	}()
	if len(a.files) == 0 {
		return model.Summary{Message: "Nothing to apply."}, nil
	}
	return a.run(false), nil
}

func (a *App) run(dryRun bool) model.Summary {
	opts := edit.Options{
		DryRun:        dryRun,
		CheckOnly:     a.cfg.Check,
		CreateBackup:  a.conf.BackupEnabled() && !a.cfg.NoBackup,
		FailFast:      !a.cfg.KeepGoing,
		MinConfidence: a.conf.MinConfidence,
	}

	editor := edit.NewEditor(a.workdir, a.conf.MaxFileSize, a.conf.ContextLines)
	result := editor.Run(edit.Request{Files: a.files, Options: opts})
	a.Result = result

	if result.State == model.StateApplied {
		a.reloadEditors(result)
	}
	return summarize(result)
}

// runTool invokes one of the auxiliary tools with the --args JSON.
func (a *App) runTool() (model.Summary, error) {
	var raw json.RawMessage
	if a.cfg.ToolArgs != "" {
		raw = json.RawMessage(a.cfg.ToolArgs)
	}

	out, err := a.registry.Invoke(context.Background(), a.cfg.Tool, raw)
	if err != nil {
		return model.Summary{}, err
	}
	a.Result = out

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return model.Summary{}, fmt.Errorf("failed to encode %s result: %w", a.cfg.Tool, err)
	}
	return model.Summary{Message: string(data)}, nil
}

// reloadEditors tells a running Neovim to pick up the written files.
// Best effort: without a reachable instance this is a no-op.
func (a *App) reloadEditors(result *model.MultiEditResult) {
	reloader, err := nvim.Connect()
	if err != nil {
		a.log.Debugf("editor reload skipped: %v", err)
		return
	}
	defer reloader.Close()

	var paths []string
	for _, fr := range result.Results {
		if fr.EditsApplied > 0 {
			paths = append(paths, fr.Path)
		}
	}
	if n := reloader.ReloadFiles(paths); n > 0 {
		ui.Info("Reloaded %d buffer(s) in Neovim.", n)
	}
}

// summarize flattens a multi-edit result into the display summary.
func summarize(result *model.MultiEditResult) model.Summary {
	s := model.Summary{Message: result.Summary}
	for _, fr := range result.Results {
		if fr.Success {
			s.Modified = append(s.Modified, fr.Path)
		} else {
			s.Failed = append(s.Failed, fr.Path)
		}
	}
	for path := range result.RejectFiles {
		s.Rejected = append(s.Rejected, path)
	}
	sort.Strings(s.Rejected)
	return s
}
