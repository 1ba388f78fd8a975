package cli

import (
	"fmt"

	"github.com/spf13/pflag"
)

// Config holds all the command-line flag values.
type Config struct {
	Tool string // first positional argument, defaults to multi_edit

	Apply         bool
	Check         bool
	NoBackup      bool
	KeepGoing     bool
	MinConfidence float64
	ContextLines  int

	Workdir    string
	LookupDirs []string
	From       string
	ToolArgs   string

	JSON    bool
	Plain   bool
	Verbose bool
}

// ParseFlags defines and parses command-line flags using pflag.
func ParseFlags() (*Config, error) {
	cfg := &Config{}

	pflag.BoolVarP(&cfg.Apply, "apply", "a", false, "Write the edits to disk (default is a dry-run preview).")
	pflag.BoolVarP(&cfg.Check, "check", "c", false, "Validate the edits only, without computing diffs or writing.")
	pflag.BoolVar(&cfg.NoBackup, "no-backup", false, "Do not write .bak files next to modified files.")
	pflag.BoolVarP(&cfg.KeepGoing, "keep-going", "k", false, "Keep processing after a file fails instead of rolling back.")
	pflag.Float64Var(&cfg.MinConfidence, "min-confidence", 0, "Minimum match confidence in (0,1]. 0 uses the configured default.")
	pflag.IntVar(&cfg.ContextLines, "context-lines", 0, "Context lines in diff previews. 0 uses the configured default.")

	pflag.StringVarP(&cfg.Workdir, "workdir", "w", "", "Working directory for relative paths (defaults to the current directory).")
	pflag.StringSliceVarP(&cfg.LookupDirs, "lookup-dir", "d", []string{}, "Extra directories to resolve relative paths against. Repeatable.")
	pflag.StringVarP(&cfg.From, "from", "f", "", "Read the edit script from this file instead of stdin or the clipboard.")
	pflag.StringVar(&cfg.ToolArgs, "args", "", "JSON arguments for the selected tool.")

	pflag.BoolVarP(&cfg.JSON, "json", "j", false, "Print the result as JSON on stdout.")
	pflag.BoolVar(&cfg.Plain, "plain", false, "Disable the interactive TUI and print a plain summary.")
	pflag.BoolVarP(&cfg.Verbose, "verbose", "v", false, "Enable debug logging.")

	pflag.Usage = func() {
		fmt.Println("Usage: vibe [tool] [flags]")
		fmt.Println("\nApply LLM-generated edit scripts to files, or run an inspection tool.")
		fmt.Println("The edit script is read from --from, piped stdin, or the clipboard.")
		fmt.Println("\nExample: pbpaste | vibe --apply")
		fmt.Println("\nFlags:")
		pflag.PrintDefaults()
	}

	pflag.Parse()

	cfg.Tool = "multi_edit"
	if args := pflag.Args(); len(args) > 0 {
		cfg.Tool = args[0]
	}

	if cfg.Apply && cfg.Check {
		return nil, fmt.Errorf("error: --apply and --check are mutually exclusive")
	}
	if cfg.MinConfidence < 0 || cfg.MinConfidence > 1 {
		return nil, fmt.Errorf("error: --min-confidence must be in (0,1]")
	}

	return cfg, nil
}
