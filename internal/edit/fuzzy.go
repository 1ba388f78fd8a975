package edit

import (
	"fmt"

	"github.com/agnivade/levenshtein"

	"github.com/ohmyarthur/mistral-vibe/internal/model"
)

// fuzzyScanLimit bounds the sliding-window scan. The scan is quadratic in the
// worst case, so beyond this size fuzzy matching is reported unavailable
// rather than risking a multi-second stall per edit block.
const fuzzyScanLimit = 256 * 1024

// matchFuzzy is tier 5: a best-effort similarity scan. It never reports
// success; a candidate above the floor score is returned as a suggestion for
// manual review only.
func matchFuzzy(ctx *matchContext, block model.EditBlock) model.MatchResult {
	if block.Search == "" {
		return failure(model.TierFailed, "no match found")
	}
	if len(ctx.content) > fuzzyScanLimit {
		return failure(model.TierFuzzy,
			fmt.Sprintf("fuzzy matching unavailable: content exceeds %d bytes", fuzzyScanLimit))
	}

	searchLen := len(block.Search)
	span := len(ctx.content) - min(searchLen, 10)

	bestScore := 0.0
	bestPos := -1
	bestMatch := ""
	for i := 0; i < span; i++ {
		end := i + searchLen
		if end > len(ctx.content) {
			end = len(ctx.content)
		}
		window := ctx.content[i:end]
		score := similarity(block.Search, window)
		if score > bestScore {
			bestScore = score
			bestPos = i
			bestMatch = window
		}
	}

	if bestScore >= fuzzyFloor {
		return model.MatchResult{
			Success:    false, // fuzzy candidates are never auto-applied
			Tier:       model.TierFuzzy,
			Confidence: bestScore,
			MatchStart: bestPos,
			MatchEnd:   bestPos + len(bestMatch),
			Warning:    fmt.Sprintf("fuzzy match found (%.0f%% similarity), manual review required", bestScore*100),
			Suggestion: bestMatch,
		}
	}
	return failure(model.TierFailed, "no match found")
}

// similarity is a normalized Levenshtein ratio in [0,1].
func similarity(a, b string) float64 {
	if a == b {
		return 1.0
	}
	longest := max(len(a), len(b))
	if longest == 0 {
		return 1.0
	}
	dist := levenshtein.ComputeDistance(a, b)
	return 1.0 - float64(dist)/float64(longest)
}
