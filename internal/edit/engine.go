package edit

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/ohmyarthur/mistral-vibe/internal/model"
)

// Confidence assigned by each tier. Only tiers at or above the caller's
// threshold are trusted for unattended application.
const (
	confExact      = 1.0
	confNormalized = 0.95
	confAnchored   = 0.90
	confLineRange  = 0.85

	// fuzzyFloor is the minimum similarity for a fuzzy candidate to be
	// surfaced as a suggestion at all.
	fuzzyFloor = 0.70
)

// matchContext carries the content views shared by all strategies so each
// tier does not re-split the file.
type matchContext struct {
	content string
	lines   []string // keepends: each line retains its trailing newline
}

// strategy is one matching tier. applies reports whether the tier is worth
// attempting for the given block; run performs the actual match.
type strategy struct {
	tier    model.Tier
	applies func(block model.EditBlock) bool
	run     func(ctx *matchContext, block model.EditBlock) model.MatchResult
}

func always(model.EditBlock) bool { return true }

// strategies are tried in order; the first success wins. Fuzzy always runs
// last and never reports success (enforced again in Match as a postcondition).
var strategies = []strategy{
	{model.TierExact, always, matchExact},
	{model.TierNormalized, always, matchNormalized},
	{model.TierAnchored, func(b model.EditBlock) bool {
		return b.ContextBefore != "" || b.ContextAfter != ""
	}, matchAnchored},
	{model.TierLineRange, func(b model.EditBlock) bool {
		return b.LineStart > 0
	}, matchLineRange},
	{model.TierFuzzy, always, matchFuzzy},
}

// Match resolves an edit block against content using the tiered fallback
// strategy. It is a pure function of its inputs. Only the exact, normalized,
// anchored and line-range tiers may report Success; fuzzy candidates are
// surfaced as suggestions for manual review.
func Match(content string, block model.EditBlock, minConfidence float64) model.MatchResult {
	ctx := &matchContext{
		content: content,
		lines:   splitKeepEnds(content),
	}

	var result model.MatchResult
	for _, s := range strategies {
		if !s.applies(block) {
			continue
		}
		result = s.run(ctx, block)
		if result.Success {
			break
		}
	}

	// Fuzzy output is advisory only, regardless of score.
	if result.Tier == model.TierFuzzy {
		result.Success = false
	}
	return result
}

func failure(tier model.Tier, warning string) model.MatchResult {
	return model.MatchResult{
		Success:    false,
		Tier:       tier,
		Confidence: 0,
		MatchStart: -1,
		MatchEnd:   -1,
		Warning:    warning,
	}
}

// matchExact is tier 1: a literal substring search.
func matchExact(ctx *matchContext, block model.EditBlock) model.MatchResult {
	idx := strings.Index(ctx.content, block.Search)
	if idx < 0 {
		return failure(model.TierExact, "")
	}
	return model.MatchResult{
		Success:    true,
		Tier:       model.TierExact,
		Confidence: confExact,
		MatchStart: idx,
		MatchEnd:   idx + len(block.Search),
	}
}

// matchNormalized is tier 2: a line-by-line comparison with surrounding
// whitespace stripped on both sides, which tolerates reindentation.
func matchNormalized(ctx *matchContext, block model.EditBlock) model.MatchResult {
	searchLines := splitLines(block.Search)
	if len(searchLines) == 0 {
		return failure(model.TierNormalized, "")
	}
	stripped := make([]string, len(searchLines))
	for i, l := range searchLines {
		stripped[i] = strings.TrimSpace(l)
	}

	for i := range ctx.lines {
		if strings.TrimSpace(ctx.lines[i]) != stripped[0] {
			continue
		}
		found := true
		for j, expected := range stripped {
			if i+j >= len(ctx.lines) || strings.TrimSpace(ctx.lines[i+j]) != expected {
				found = false
				break
			}
		}
		if !found {
			continue
		}

		start := 0
		for _, l := range ctx.lines[:i] {
			start += len(l)
		}
		end := start
		for _, l := range ctx.lines[i : i+len(searchLines)] {
			end += len(l)
		}
		return model.MatchResult{
			Success:    true,
			Tier:       model.TierNormalized,
			Confidence: confNormalized,
			MatchStart: start,
			MatchEnd:   end,
			Warning:    "matched via whitespace normalization",
		}
	}
	return failure(model.TierNormalized, "")
}

// matchAnchored is tier 3: the search text located between escaped context
// anchors joined with permissive whitespace. The reported span is the literal
// search text inside the anchored region, not the whole region.
func matchAnchored(ctx *matchContext, block model.EditBlock) model.MatchResult {
	var parts []string
	if block.ContextBefore != "" {
		parts = append(parts, regexp.QuoteMeta(strings.TrimSpace(block.ContextBefore)))
	}
	parts = append(parts, regexp.QuoteMeta(block.Search))
	if block.ContextAfter != "" {
		parts = append(parts, regexp.QuoteMeta(strings.TrimSpace(block.ContextAfter)))
	}

	re, err := regexp.Compile("(?s)" + strings.Join(parts, `\s*`))
	if err != nil {
		return failure(model.TierAnchored, fmt.Sprintf("anchor pattern invalid: %v", err))
	}
	loc := re.FindStringIndex(ctx.content)
	if loc == nil {
		return failure(model.TierAnchored, "")
	}

	rel := strings.Index(ctx.content[loc[0]:], block.Search)
	if rel < 0 || loc[0]+rel > loc[1] {
		return failure(model.TierAnchored, "")
	}
	start := loc[0] + rel
	return model.MatchResult{
		Success:    true,
		Tier:       model.TierAnchored,
		Confidence: confAnchored,
		MatchStart: start,
		MatchEnd:   start + len(block.Search),
		Warning:    "matched via context anchoring",
	}
}

// matchLineRange is tier 4: a literal search restricted to the 1-indexed
// inclusive window [LineStart, LineEnd or EOF].
func matchLineRange(ctx *matchContext, block model.EditBlock) model.MatchResult {
	startLine := block.LineStart - 1
	endLine := block.LineEnd
	if endLine == 0 {
		endLine = len(ctx.lines)
	}
	if startLine < 0 || endLine > len(ctx.lines) || startLine >= endLine {
		return failure(model.TierLineRange,
			fmt.Sprintf("line range %d-%d out of bounds", block.LineStart, endLine))
	}

	offset := 0
	for _, l := range ctx.lines[:startLine] {
		offset += len(l)
	}
	window := strings.Join(ctx.lines[startLine:endLine], "")
	idx := strings.Index(window, block.Search)
	if idx < 0 {
		return failure(model.TierLineRange, "")
	}
	return model.MatchResult{
		Success:    true,
		Tier:       model.TierLineRange,
		Confidence: confLineRange,
		MatchStart: offset + idx,
		MatchEnd:   offset + idx + len(block.Search),
		Warning:    fmt.Sprintf("matched in line range %d-%d", block.LineStart, endLine),
	}
}

// splitKeepEnds splits content into lines, each retaining its trailing
// newline, so byte offsets can be rebuilt by summing line lengths.
func splitKeepEnds(content string) []string {
	if content == "" {
		return nil
	}
	var lines []string
	for {
		i := strings.IndexByte(content, '\n')
		if i < 0 {
			if content != "" {
				lines = append(lines, content)
			}
			return lines
		}
		lines = append(lines, content[:i+1])
		content = content[i+1:]
	}
}

// splitLines splits on newlines without keeping them and without a trailing
// empty element for newline-terminated input.
func splitLines(s string) []string {
	s = strings.TrimSuffix(s, "\n")
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}
