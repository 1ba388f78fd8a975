package parser

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ohmyarthur/mistral-vibe/internal/fs"
)

func resolver(t *testing.T) (*fs.Resolver, string) {
	t.Helper()
	dir := t.TempDir()
	return fs.NewResolver(dir, nil), dir
}

func TestParseScriptJSON(t *testing.T) {
	r, dir := resolver(t)
	script := `{
  "files": [
    {"path": "config.py", "edits": [{"search": "DEBUG = True", "replace": "DEBUG = False"}]}
  ]
}`

	files, err := ParseScript(script, r)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, filepath.Join(dir, "config.py"), files[0].Path)
	assert.Equal(t, "DEBUG = True", files[0].Edits[0].Search)
}

func TestParseScriptJSONRejectsEmptySearch(t *testing.T) {
	r, _ := resolver(t)
	_, err := ParseScript(`{"files":[{"path":"a","edits":[{"search":"","replace":"x"}]}]}`, r)
	assert.Error(t, err)
}

const markdownScript = "Change the debug flag.\n\n" +
	"`config.py`\n\n" +
	"```edit\n" +
	"<<<<<<< SEARCH\n" +
	"DEBUG = True\n" +
	"=======\n" +
	"DEBUG = False\n" +
	">>>>>>> REPLACE\n" +
	"```\n"

func TestParseScriptMarkdown(t *testing.T) {
	r, dir := resolver(t)

	files, err := ParseScript(markdownScript, r)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, filepath.Join(dir, "config.py"), files[0].Path)
	require.Len(t, files[0].Edits, 1)
	assert.Equal(t, "DEBUG = True", files[0].Edits[0].Search)
	assert.Equal(t, "DEBUG = False", files[0].Edits[0].Replace)
}

func TestParseScriptMarkdownMultipleSectionsAndRange(t *testing.T) {
	r, dir := resolver(t)
	script := "`main.go`\n\n" +
		"```edit\n" +
		"<<<<<<< SEARCH\n" +
		"old one\n" +
		"=======\n" +
		"new one\n" +
		">>>>>>> REPLACE\n" +
		"@@ 10,20\n" +
		"<<<<<<< SEARCH\n" +
		"old two\n" +
		"=======\n" +
		"new two\n" +
		">>>>>>> REPLACE\n" +
		"```\n"

	files, err := ParseScript(script, r)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, filepath.Join(dir, "main.go"), files[0].Path)
	require.Len(t, files[0].Edits, 2)
	assert.Equal(t, 0, files[0].Edits[0].LineStart)
	assert.Equal(t, 10, files[0].Edits[1].LineStart)
	assert.Equal(t, 20, files[0].Edits[1].LineEnd)
}

func TestParseScriptContextDirectives(t *testing.T) {
	r, _ := resolver(t)
	script := "`main.go`\n\n" +
		"```edit\n" +
		"ctx-before: func setup() {\n" +
		"ctx-after: }\n" +
		"<<<<<<< SEARCH\n" +
		"old\n" +
		"=======\n" +
		"new\n" +
		">>>>>>> REPLACE\n" +
		"<<<<<<< SEARCH\n" +
		"second\n" +
		"=======\n" +
		"other\n" +
		">>>>>>> REPLACE\n" +
		"```\n"

	files, err := ParseScript(script, r)
	require.NoError(t, err)
	require.Len(t, files, 1)
	require.Len(t, files[0].Edits, 2)
	assert.Equal(t, "func setup() {", files[0].Edits[0].ContextBefore)
	assert.Equal(t, "}", files[0].Edits[0].ContextAfter)
	// Directives apply to the next section only.
	assert.Empty(t, files[0].Edits[1].ContextBefore)
	assert.Empty(t, files[0].Edits[1].ContextAfter)
}

func TestParseScriptMergesBlocksForSameFile(t *testing.T) {
	r, _ := resolver(t)
	script := "`a.txt`\n\n```edit\n<<<<<<< SEARCH\nx\n=======\ny\n>>>>>>> REPLACE\n```\n\n" +
		"`a.txt`\n\n```edit\n<<<<<<< SEARCH\np\n=======\nq\n>>>>>>> REPLACE\n```\n"

	files, err := ParseScript(script, r)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Len(t, files[0].Edits, 2)
}

func TestParseScriptIgnoresNonEditFences(t *testing.T) {
	r, _ := resolver(t)
	script := "`a.go`\n\n```go\nfunc main() {}\n```\n"

	files, err := ParseScript(script, r)
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestParseScriptUnterminatedSection(t *testing.T) {
	r, _ := resolver(t)
	script := "`a.txt`\n\n```edit\n<<<<<<< SEARCH\nx\n=======\ny\n```\n"

	_, err := ParseScript(script, r)
	assert.Error(t, err)
}

func TestParseScriptMissingPathHint(t *testing.T) {
	r, _ := resolver(t)
	script := "```edit\n<<<<<<< SEARCH\nx\n=======\ny\n>>>>>>> REPLACE\n```\n"

	_, err := ParseScript(script, r)
	assert.Error(t, err)
}

func TestParseScriptEmptyContent(t *testing.T) {
	r, _ := resolver(t)
	files, err := ParseScript("   \n", r)
	require.NoError(t, err)
	assert.Nil(t, files)
}

func TestPathFromHint(t *testing.T) {
	assert.Equal(t, "src/main.go", pathFromHint("Update `src/main.go` next"))
	assert.Empty(t, pathFromHint("run `go test ./...` now"))
	assert.Empty(t, pathFromHint("no backticks here"))
}
