package edit

import (
	"github.com/pmezard/go-difflib/difflib"
)

// UnifiedDiff renders a unified diff between original and modified content
// with a/<path> and b/<path> headers. Pure text transform.
func UnifiedDiff(original, modified, path string, contextLines int) string {
	diff := difflib.UnifiedDiff{
		A:        difflib.SplitLines(original),
		B:        difflib.SplitLines(modified),
		FromFile: "a/" + path,
		ToFile:   "b/" + path,
		Context:  contextLines,
	}
	text, err := difflib.GetUnifiedDiffString(diff)
	if err != nil {
		// difflib only errors on writer failures, which a string buffer
		// cannot produce.
		return ""
	}
	return text
}
