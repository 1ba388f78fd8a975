// Package tools implements the agent-invocable tool set: the multi-file edit
// engine plus the read-only inspection helpers around it. Every tool takes
// JSON args and returns a JSON-serializable result.
package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/ohmyarthur/mistral-vibe/internal/config"
)

// Tool is one agent-invocable operation.
type Tool interface {
	Name() string
	Description() string
	Run(ctx context.Context, args json.RawMessage) (any, error)
}

// Registry holds the available tools by name.
type Registry struct {
	tools map[string]Tool
}

func NewRegistry() *Registry {
	return &Registry{tools: make(map[string]Tool)}
}

func (r *Registry) Register(t Tool) {
	r.tools[t.Name()] = t
}

func (r *Registry) Get(name string) (Tool, bool) {
	t, ok := r.tools[name]
	return t, ok
}

// Names returns the registered tool names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Invoke runs the named tool.
func (r *Registry) Invoke(ctx context.Context, name string, args json.RawMessage) (any, error) {
	t, ok := r.Get(name)
	if !ok {
		return nil, fmt.Errorf("unknown tool %q (available: %v)", name, r.Names())
	}
	return t.Run(ctx, args)
}

// NewBuiltinRegistry registers every builtin tool for a workdir.
func NewBuiltinRegistry(workdir string, cfg *config.Config) *Registry {
	r := NewRegistry()
	r.Register(NewMultiEditTool(workdir, cfg))
	r.Register(NewListDirTool(workdir, cfg))
	r.Register(NewFindByNameTool(workdir, cfg))
	r.Register(NewGitStatusTool(workdir))
	r.Register(NewDiffFileTool(workdir))
	r.Register(NewCommitSuggestionTool(workdir))
	r.Register(NewTestRunTool(workdir, cfg))
	r.Register(NewFileOutlineTool(workdir, cfg))
	return r
}

// decodeArgs unmarshals JSON args over a defaults-initialized value. Empty
// args keep the defaults.
func decodeArgs(raw json.RawMessage, into any) error {
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, into); err != nil {
		return fmt.Errorf("decode tool args: %w", err)
	}
	return nil
}
