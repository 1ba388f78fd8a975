package ui

import (
	"fmt"
	"os"

	"github.com/fatih/color"

	"github.com/ohmyarthur/mistral-vibe/internal/model"
)

var (
	HeaderColor  = color.New(color.FgBlue, color.Bold)
	InfoColor    = color.New(color.FgCyan)
	SuccessColor = color.New(color.FgGreen)
	WarningColor = color.New(color.FgYellow)
	ErrorColor   = color.New(color.FgRed)
	PathColor    = color.New(color.FgYellow)
	PromptColor  = color.New(color.FgMagenta)
)

func Header(format string, a ...interface{}) {
	HeaderColor.Fprintf(os.Stderr, format+"\n", a...)
}

func Info(format string, a ...interface{}) {
	InfoColor.Fprintf(os.Stderr, format+"\n", a...)
}

func Success(format string, a ...interface{}) {
	SuccessColor.Fprintf(os.Stderr, format+"\n", a...)
}

func Warning(format string, a ...interface{}) {
	WarningColor.Fprintf(os.Stderr, format+"\n", a...)
}

func Error(format string, a ...interface{}) {
	ErrorColor.Fprintf(os.Stderr, format+"\n", a...)
}

func Path(format string, a ...interface{}) {
	PathColor.Fprintf(os.Stderr, "  "+format+"\n", a...)
}

func Prompt(format string, a ...interface{}) string {
	return PromptColor.Sprintf(format, a...)
}

// PrintEditSummary reports one multi-edit run on stderr.
func PrintEditSummary(result *model.MultiEditResult) {
	Header("\n--- Edit Summary ---")
	Info("%s (transaction %s)", result.Summary, result.TransactionID)

	var succeeded, failed []model.FileEditResult
	for _, fr := range result.Results {
		if fr.Success {
			succeeded = append(succeeded, fr)
		} else {
			failed = append(failed, fr)
		}
	}

	if len(succeeded) > 0 {
		verb := "Previewed"
		if result.State == model.StateApplied {
			verb = "Modified"
		} else if result.State == model.StateChecked {
			verb = "Checked"
		}
		Success("%s %d file(s):", verb, len(succeeded))
		for _, fr := range succeeded {
			fmt.Fprintf(os.Stderr, "  - %s (%d edit(s))\n", fr.Path, fr.EditsApplied)
		}
	}
	if len(failed) > 0 {
		Error("Failed %d file(s):", len(failed))
		for _, fr := range failed {
			fmt.Fprintf(os.Stderr, "  - %s\n", fr.Path)
			for _, e := range fr.Errors {
				fmt.Fprintf(os.Stderr, "      %s\n", e)
			}
		}
	}
	if len(result.BackupPaths) > 0 {
		Info("Backups written:")
		for _, bak := range result.BackupPaths {
			Path("- %s", bak)
		}
	}
	if len(result.RejectFiles) > 0 {
		Warning("%d edit(s) rejected; see reject content in the result.", len(result.RejectFiles))
	}
	if result.CanApply {
		Info("\nPreview succeeded. Re-run with --apply to write the changes.")
	}
}
