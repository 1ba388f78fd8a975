// Package parser turns an agent-produced edit script into file edits the
// orchestrator can run. Two forms are accepted: a JSON request object, or a
// markdown document whose `edit` code fences contain conflict-marker
// SEARCH/REPLACE sections, with a backtick path hint above each fence.
package parser

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/ohmyarthur/mistral-vibe/internal/fs"
	"github.com/ohmyarthur/mistral-vibe/internal/model"
)

const (
	markerSearch  = "<<<<<<< SEARCH"
	markerDivider = "======="
	markerReplace = ">>>>>>> REPLACE"
	editLang      = "edit"
)

var (
	pathInHintRegex = regexp.MustCompile("`([^`\n]+)`")
	// rangeRegex matches a "@@ start[,end]" window directive before a
	// SEARCH marker.
	rangeRegex = regexp.MustCompile(`^@@\s+(\d+)(?:\s*,\s*(\d+))?\s*$`)
)

// jsonRequest is the JSON form of an edit script.
type jsonRequest struct {
	Files []model.FileEdit `json:"files"`
}

// ParseScript extracts file edits from script content, resolving paths
// through the resolver. Returns nil with no error when the script contains
// no edits.
func ParseScript(content string, resolver *fs.Resolver) ([]model.FileEdit, error) {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return nil, nil
	}
	if strings.HasPrefix(trimmed, "{") {
		return parseJSON(trimmed, resolver)
	}
	return parseMarkdown(content, resolver)
}

func parseJSON(content string, resolver *fs.Resolver) ([]model.FileEdit, error) {
	var req jsonRequest
	if err := json.Unmarshal([]byte(content), &req); err != nil {
		return nil, fmt.Errorf("parse JSON edit request: %w", err)
	}
	for i := range req.Files {
		if err := validateEdits(req.Files[i]); err != nil {
			return nil, err
		}
		req.Files[i].Path = resolver.Resolve(req.Files[i].Path)
	}
	return req.Files, nil
}

func parseMarkdown(content string, resolver *fs.Resolver) ([]model.FileEdit, error) {
	blocks, err := extractFencedBlocks([]byte(content))
	if err != nil {
		return nil, fmt.Errorf("parse markdown: %w", err)
	}

	var files []model.FileEdit
	byPath := make(map[string]int)

	for _, block := range blocks {
		if block.Lang != editLang {
			continue
		}
		path := pathFromHint(block.Hint)
		if path == "" {
			return nil, fmt.Errorf("edit block has no `path` hint above the fence")
		}
		edits, err := parseEditSections(block.Content)
		if err != nil {
			return nil, fmt.Errorf("edit block for %s: %w", path, err)
		}
		if len(edits) == 0 {
			continue
		}

		abs := resolver.Resolve(path)
		if idx, ok := byPath[abs]; ok {
			// Several blocks for one file merge in document order.
			files[idx].Edits = append(files[idx].Edits, edits...)
			continue
		}
		byPath[abs] = len(files)
		files = append(files, model.FileEdit{Path: abs, Edits: edits})
	}
	return files, nil
}

// parseEditSections scans a fence body for SEARCH/REPLACE sections.
// Directives before a section refine its match: "@@ start[,end]" restricts
// the line window, "ctx-before:"/"ctx-after:" supply anchor lines.
func parseEditSections(body string) ([]model.EditBlock, error) {
	var (
		edits     []model.EditBlock
		search    []string
		replace   []string
		inSearch  bool
		inReplace bool
		lineStart int
		lineEnd   int
		ctxBefore string
		ctxAfter  string
	)

	flush := func() error {
		searchText := strings.Join(search, "\n")
		if searchText == "" {
			return fmt.Errorf("SEARCH section is empty")
		}
		edits = append(edits, model.EditBlock{
			Search:        searchText,
			Replace:       strings.Join(replace, "\n"),
			ContextBefore: ctxBefore,
			ContextAfter:  ctxAfter,
			LineStart:     lineStart,
			LineEnd:       lineEnd,
		})
		search, replace = nil, nil
		lineStart, lineEnd = 0, 0
		ctxBefore, ctxAfter = "", ""
		return nil
	}

	for _, line := range strings.Split(body, "\n") {
		switch {
		case strings.TrimRight(line, " \t") == markerSearch:
			if inSearch || inReplace {
				return nil, fmt.Errorf("unexpected %s marker", markerSearch)
			}
			inSearch = true
		case strings.TrimRight(line, " \t") == markerDivider && inSearch:
			inSearch, inReplace = false, true
		case strings.TrimRight(line, " \t") == markerReplace:
			if !inReplace {
				return nil, fmt.Errorf("%s marker without a divider", markerReplace)
			}
			inReplace = false
			if err := flush(); err != nil {
				return nil, err
			}
		case inSearch:
			search = append(search, line)
		case inReplace:
			replace = append(replace, line)
		default:
			trimmed := strings.TrimSpace(line)
			switch {
			case strings.HasPrefix(trimmed, "ctx-before:"):
				ctxBefore = strings.TrimSpace(strings.TrimPrefix(trimmed, "ctx-before:"))
			case strings.HasPrefix(trimmed, "ctx-after:"):
				ctxAfter = strings.TrimSpace(strings.TrimPrefix(trimmed, "ctx-after:"))
			default:
				if m := rangeRegex.FindStringSubmatch(trimmed); m != nil {
					lineStart, _ = strconv.Atoi(m[1])
					if m[2] != "" {
						lineEnd, _ = strconv.Atoi(m[2])
					}
				}
			}
		}
	}
	if inSearch || inReplace {
		return nil, fmt.Errorf("unterminated SEARCH/REPLACE section")
	}
	return edits, nil
}

func validateEdits(f model.FileEdit) error {
	if f.Path == "" {
		return fmt.Errorf("file edit with empty path")
	}
	if len(f.Edits) == 0 {
		return fmt.Errorf("%s: no edits supplied", f.Path)
	}
	for i, e := range f.Edits {
		if e.Search == "" {
			return fmt.Errorf("%s: edit %d has an empty search", f.Path, i+1)
		}
	}
	return nil
}

// pathFromHint extracts a path from a hint line: either backtick-quoted or,
// since the markdown renderer strips code-span backticks, a single bare
// token. Hints with spaces are rejected to avoid capturing shell commands.
func pathFromHint(hint string) string {
	hint = strings.TrimSpace(hint)
	if m := pathInHintRegex.FindStringSubmatch(hint); len(m) > 1 {
		path := strings.TrimSpace(m[1])
		if !strings.Contains(path, " ") {
			return path
		}
		return ""
	}
	if hint != "" && !strings.ContainsAny(hint, " \t") {
		return hint
	}
	return ""
}
