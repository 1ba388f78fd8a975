package main

import (
	"encoding/json"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"

	"github.com/ohmyarthur/mistral-vibe/internal/app"
	"github.com/ohmyarthur/mistral-vibe/internal/cli"
	"github.com/ohmyarthur/mistral-vibe/internal/model"
	"github.com/ohmyarthur/mistral-vibe/internal/tui"
	"github.com/ohmyarthur/mistral-vibe/internal/ui"
)

func main() {
	cfg, err := cli.ParseFlags()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logrus.SetOutput(os.Stderr)
	logrus.SetLevel(logrus.WarnLevel)
	if cfg.Verbose {
		logrus.SetLevel(logrus.DebugLevel)
	}

	a, err := app.New(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize application: %v\n", err)
		os.Exit(1)
	}

	// Modes that print to stdout or need no interaction skip the TUI.
	if cfg.JSON || cfg.Plain || cfg.Check || cfg.Tool != "multi_edit" {
		runDirect(a, cfg)
		return
	}

	m := tui.New(a)
	if _, err := tea.NewProgram(m).Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running program: %v\n", err)
		os.Exit(1)
	}
}

// runDirect executes without the TUI and prints either JSON or a plain
// summary.
func runDirect(a *app.App, cfg *cli.Config) {
	summary, err := a.Execute()
	if err != nil {
		var detailed *app.DetailedError
		if e, ok := err.(*app.DetailedError); ok {
			detailed = e
		}
		ui.Error("Error: %v", err)
		if detailed != nil && cfg.Verbose {
			fmt.Fprintf(os.Stderr, "\n--- Stack Trace ---\n%s\n", detailed.Stack)
		}
		os.Exit(1)
	}

	if cfg.JSON {
		data, err := json.MarshalIndent(a.Result, "", "  ")
		if err != nil {
			ui.Error("Failed to encode result: %v", err)
			os.Exit(1)
		}
		fmt.Println(string(data))
	} else if result, ok := a.Result.(*model.MultiEditResult); ok {
		ui.PrintEditSummary(result)
	} else if summary.Message != "" {
		fmt.Println(summary.Message)
	}

	if result, ok := a.Result.(*model.MultiEditResult); ok && !result.Success {
		os.Exit(1)
	}
}
