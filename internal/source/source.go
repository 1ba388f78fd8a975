package source

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/atotto/clipboard"

	"github.com/ohmyarthur/mistral-vibe/internal/ui"
)

// Provider retrieves the edit-script content for a run: an explicit file,
// piped stdin, or the clipboard, in that order of preference.
type Provider struct {
	// FromFile, when set, wins over stdin and clipboard.
	FromFile string
}

func New(fromFile string) *Provider {
	return &Provider{FromFile: fromFile}
}

// Content returns the script text. An empty result means there is nothing
// to process.
func (p *Provider) Content() (string, error) {
	if p.FromFile != "" {
		data, err := os.ReadFile(p.FromFile)
		if err != nil {
			return "", fmt.Errorf("read script %s: %w", p.FromFile, err)
		}
		return string(data), nil
	}

	stat, _ := os.Stdin.Stat()
	if (stat.Mode() & os.ModeCharDevice) == 0 {
		ui.Header("--- Reading edit script from stdin ---")
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}

	ui.Header("--- Reading edit script from clipboard ---")
	content, err := clipboard.ReadAll()
	if err != nil {
		return "", fmt.Errorf("read clipboard: %w", err)
	}
	if strings.TrimSpace(content) == "" {
		ui.Warning("Clipboard is empty. Nothing to process.")
		return "", nil
	}
	return content, nil
}
