package edit

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ohmyarthur/mistral-vibe/internal/model"
)

func TestMatchExactSubstring(t *testing.T) {
	content := "Hello World"
	block := model.EditBlock{Search: "World", Replace: "Universe"}

	result := Match(content, block, DefaultMinConfidence)

	require.True(t, result.Success)
	assert.Equal(t, model.TierExact, result.Tier)
	assert.Equal(t, 1.0, result.Confidence)
	assert.Equal(t, 6, result.MatchStart)
	assert.Equal(t, 11, result.MatchEnd)
	assert.Equal(t, "World", content[result.MatchStart:result.MatchEnd])
}

func TestMatchExactNoMatchFallsThrough(t *testing.T) {
	result := Match("Hello World", model.EditBlock{Search: "Galaxy", Replace: "x"}, DefaultMinConfidence)

	assert.False(t, result.Success)
	assert.NotEqual(t, model.TierExact, result.Tier)
}

func TestMatchNormalizedReindented(t *testing.T) {
	content := "    def hello():\n        pass\n"
	block := model.EditBlock{
		Search:  "def hello():\n    pass",
		Replace: "def hi():\n    pass",
	}

	result := Match(content, block, DefaultMinConfidence)

	require.True(t, result.Success)
	assert.Equal(t, model.TierNormalized, result.Tier)
	assert.Equal(t, 0.95, result.Confidence)
	// The span covers the whole reindented run of lines.
	assert.Equal(t, 0, result.MatchStart)
	assert.Equal(t, len(content), result.MatchEnd)
}

func TestMatchNormalizedRequiresContiguousLines(t *testing.T) {
	content := "alpha\nfiller\nbeta\n"
	block := model.EditBlock{Search: "alpha\nbeta", Replace: "x"}

	result := Match(content, block, DefaultMinConfidence)

	assert.False(t, result.Success)
}

func TestMatchAnchoredContext(t *testing.T) {
	content := "func foo() {\n\t// anchor before\n\ttarget := \"important\"\n\t// anchor after\n}\n"
	block := model.EditBlock{
		Search:        "target := \"important\"",
		Replace:       "target := \"modified\"",
		ContextBefore: "// anchor before",
		ContextAfter:  "// anchor after",
	}

	result := Match(content, block, DefaultMinConfidence)

	require.True(t, result.Success)
	// Exact wins when the search text is literally present; either way the
	// span must cover exactly the search text.
	assert.Contains(t, []model.Tier{model.TierExact, model.TierAnchored}, result.Tier)
	assert.Equal(t, block.Search, content[result.MatchStart:result.MatchEnd])
}

func TestMatchAnchoredSpanIsSearchTextOnly(t *testing.T) {
	content := "before ctx\nthe target text\nafter ctx\n"
	block := model.EditBlock{
		Search:        "the target text",
		Replace:       "replaced",
		ContextBefore: "before ctx",
		ContextAfter:  "after ctx",
	}
	ctx := &matchContext{content: content, lines: splitKeepEnds(content)}

	result := matchAnchored(ctx, block)

	require.True(t, result.Success)
	assert.Equal(t, model.TierAnchored, result.Tier)
	assert.Equal(t, 0.90, result.Confidence)
	assert.Equal(t, block.Search, content[result.MatchStart:result.MatchEnd])
}

func TestMatchLineRangeWindow(t *testing.T) {
	content := "line 1\nline 2\ntarget here\nline 4\nline 5\n"
	block := model.EditBlock{
		Search:    "target here",
		Replace:   "modified here",
		LineStart: 2,
		LineEnd:   4,
	}

	result := Match(content, block, DefaultMinConfidence)

	require.True(t, result.Success)
	assert.Equal(t, "target here", content[result.MatchStart:result.MatchEnd])
}

func TestMatchLineRangeOffsetsAreAbsolute(t *testing.T) {
	content := "aaa\nbbb\nccc\nbbb\n"
	block := model.EditBlock{Search: "bbb", Replace: "BBB", LineStart: 3, LineEnd: 4}
	ctx := &matchContext{content: content, lines: splitKeepEnds(content)}

	result := matchLineRange(ctx, block)

	require.True(t, result.Success)
	assert.Equal(t, model.TierLineRange, result.Tier)
	assert.Equal(t, 0.85, result.Confidence)
	// Must be the occurrence inside the window, not the earlier one.
	assert.Equal(t, 12, result.MatchStart)
	assert.Equal(t, "bbb", content[result.MatchStart:result.MatchEnd])
}

func TestMatchLineRangeOutOfBounds(t *testing.T) {
	content := "one\ntwo\n"
	block := model.EditBlock{Search: "zzz", Replace: "x", LineStart: 5, LineEnd: 9}

	result := Match(content, block, DefaultMinConfidence)

	assert.False(t, result.Success)
}

func TestMatchFuzzyNeverSucceeds(t *testing.T) {
	content := "DEBUG_MODE = Treu\n"
	block := model.EditBlock{Search: "DEBUG_MODE = True", Replace: "DEBUG_MODE = False"}

	result := Match(content, block, DefaultMinConfidence)

	assert.False(t, result.Success)
	if result.Tier == model.TierFuzzy {
		assert.NotEmpty(t, result.Suggestion)
		assert.GreaterOrEqual(t, result.Confidence, fuzzyFloor)
	}

	// Re-running on fuzzy-only content still never auto-applies.
	again := Match(content, block, 0.0)
	assert.False(t, again.Success)
}

func TestMatchFuzzyBelowFloorReportsFailed(t *testing.T) {
	result := Match("completely unrelated text\n", model.EditBlock{
		Search:  "func process(items []Item) error",
		Replace: "x",
	}, DefaultMinConfidence)

	assert.False(t, result.Success)
	assert.Equal(t, model.TierFailed, result.Tier)
	assert.Empty(t, result.Suggestion)
}

func TestMatchFuzzyUnavailableForHugeContent(t *testing.T) {
	content := strings.Repeat("x", fuzzyScanLimit+1)
	result := Match(content, model.EditBlock{Search: "needle", Replace: "y"}, DefaultMinConfidence)

	assert.False(t, result.Success)
	assert.Equal(t, model.TierFuzzy, result.Tier)
	assert.Contains(t, result.Warning, "unavailable")
}

func TestSimilarityBounds(t *testing.T) {
	assert.Equal(t, 1.0, similarity("same", "same"))
	assert.Equal(t, 0.0, similarity("abcd", "wxyz"))
	s := similarity("kitten", "sitting")
	assert.Greater(t, s, 0.0)
	assert.Less(t, s, 1.0)
}

func TestSplitKeepEnds(t *testing.T) {
	assert.Nil(t, splitKeepEnds(""))
	assert.Equal(t, []string{"a\n", "b"}, splitKeepEnds("a\nb"))
	assert.Equal(t, []string{"a\n", "b\n"}, splitKeepEnds("a\nb\n"))
}
