package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"regexp"
	"strings"
	"time"

	"github.com/ohmyarthur/mistral-vibe/internal/config"
)

// TestRunTool runs `go test` for a package pattern and condenses the output
// into pass/fail counts plus the failing test names.
type TestRunTool struct {
	workdir string
	cfg     *config.Config
}

func NewTestRunTool(workdir string, cfg *config.Config) *TestRunTool {
	return &TestRunTool{workdir: workdir, cfg: cfg}
}

func (t *TestRunTool) Name() string { return "test_run" }

func (t *TestRunTool) Description() string {
	return "Run go test for a package pattern and summarize the results"
}

type testRunArgs struct {
	Package string `json:"package"`
	Run     string `json:"run"`
	Verbose bool   `json:"verbose"`
}

type testRunResult struct {
	Package   string   `json:"package"`
	Passed    bool     `json:"passed"`
	ExitCode  int      `json:"exit_code"`
	PassCount int      `json:"pass_count"`
	FailCount int      `json:"fail_count"`
	SkipCount int      `json:"skip_count"`
	Failures  []string `json:"failures,omitempty"`
	Output    string   `json:"output"`
	Duration  string   `json:"duration"`
}

// resultLineRegex matches per-test verdict lines, emitted under -v and for
// every failure regardless.
var resultLineRegex = regexp.MustCompile(`^\s*--- (PASS|FAIL|SKIP): (\S+)`)

func (t *TestRunTool) Run(ctx context.Context, raw json.RawMessage) (any, error) {
	args := testRunArgs{Package: "./..."}
	if err := decodeArgs(raw, &args); err != nil {
		return nil, err
	}

	timeout := time.Duration(t.cfg.TestTimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	goArgs := []string{"test"}
	if args.Verbose {
		goArgs = append(goArgs, "-v")
	}
	if args.Run != "" {
		goArgs = append(goArgs, "-run", args.Run)
	}
	goArgs = append(goArgs, args.Package)

	cmd := exec.CommandContext(ctx, "go", goArgs...)
	cmd.Dir = t.workdir
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	start := time.Now()
	err := cmd.Run()
	elapsed := time.Since(start)

	if ctx.Err() == context.DeadlineExceeded {
		return nil, fmt.Errorf("test_run: timed out after %s", timeout)
	}

	exitCode := 0
	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return nil, fmt.Errorf("test_run: %w", err)
		}
		exitCode = exitErr.ExitCode()
	}

	result := &testRunResult{
		Package:  args.Package,
		Passed:   exitCode == 0,
		ExitCode: exitCode,
		Output:   out.String(),
		Duration: elapsed.Round(time.Millisecond).String(),
	}
	for _, line := range strings.Split(out.String(), "\n") {
		m := resultLineRegex.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		switch m[1] {
		case "PASS":
			result.PassCount++
		case "FAIL":
			result.FailCount++
			result.Failures = append(result.Failures, m[2])
		case "SKIP":
			result.SkipCount++
		}
	}
	return result, nil
}
