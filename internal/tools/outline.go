package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"strings"

	"github.com/ohmyarthur/mistral-vibe/internal/config"
)

// FileOutlineTool parses a Go source file and returns its top-level
// declarations with line numbers, so an agent can target edits without
// reading the whole file.
type FileOutlineTool struct {
	workdir string
	cfg     *config.Config
}

func NewFileOutlineTool(workdir string, cfg *config.Config) *FileOutlineTool {
	return &FileOutlineTool{workdir: workdir, cfg: cfg}
}

func (t *FileOutlineTool) Name() string { return "file_outline" }

func (t *FileOutlineTool) Description() string {
	return "Outline the top-level declarations of a Go source file"
}

type outlineArgs struct {
	Path string `json:"path"`
}

// OutlineEntry is one top-level declaration.
type OutlineEntry struct {
	Kind      string `json:"kind"` // func, method, type, const, var
	Name      string `json:"name"`
	Receiver  string `json:"receiver,omitempty"`
	Signature string `json:"signature,omitempty"`
	Doc       string `json:"doc,omitempty"`
	Line      int    `json:"line"`
	EndLine   int    `json:"end_line"`
	Exported  bool   `json:"exported"`
}

type outlineResult struct {
	Path    string         `json:"path"`
	Package string         `json:"package"`
	Imports []string       `json:"imports,omitempty"`
	Entries []OutlineEntry `json:"entries"`
}

func (t *FileOutlineTool) Run(_ context.Context, raw json.RawMessage) (any, error) {
	var args outlineArgs
	if err := decodeArgs(raw, &args); err != nil {
		return nil, err
	}
	if args.Path == "" {
		return nil, fmt.Errorf("file_outline: path is required")
	}

	path := args.Path
	if !filepath.IsAbs(path) {
		path = filepath.Join(t.workdir, path)
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("file_outline: %w", err)
	}
	if info.Size() > t.cfg.MaxFileSize {
		return nil, fmt.Errorf("file_outline: file too large: %d bytes", info.Size())
	}

	fset := token.NewFileSet()
	file, err := parser.ParseFile(fset, path, nil, parser.ParseComments)
	if err != nil {
		return nil, fmt.Errorf("file_outline: parse %s: %w", args.Path, err)
	}

	res := &outlineResult{Path: path, Package: file.Name.Name}
	for _, imp := range file.Imports {
		res.Imports = append(res.Imports, imp.Path.Value)
	}

	for _, decl := range file.Decls {
		switch d := decl.(type) {
		case *ast.FuncDecl:
			entry := OutlineEntry{
				Kind:      "func",
				Name:      d.Name.Name,
				Line:      fset.Position(d.Pos()).Line,
				EndLine:   fset.Position(d.End()).Line,
				Exported:  d.Name.IsExported(),
				Signature: funcSignature(d),
				Doc:       docFirstLine(d.Doc),
			}
			if d.Recv != nil && len(d.Recv.List) > 0 {
				entry.Kind = "method"
				entry.Receiver = receiverType(d.Recv.List[0].Type)
			}
			res.Entries = append(res.Entries, entry)
		case *ast.GenDecl:
			kind := ""
			switch d.Tok {
			case token.TYPE:
				kind = "type"
			case token.CONST:
				kind = "const"
			case token.VAR:
				kind = "var"
			default:
				continue
			}
			for _, spec := range d.Specs {
				switch s := spec.(type) {
				case *ast.TypeSpec:
					doc := docFirstLine(s.Doc)
					if doc == "" {
						doc = docFirstLine(d.Doc)
					}
					res.Entries = append(res.Entries, OutlineEntry{
						Kind:     kind,
						Name:     s.Name.Name,
						Doc:      doc,
						Line:     fset.Position(s.Pos()).Line,
						EndLine:  fset.Position(s.End()).Line,
						Exported: s.Name.IsExported(),
					})
				case *ast.ValueSpec:
					for _, name := range s.Names {
						if name.Name == "_" {
							continue
						}
						res.Entries = append(res.Entries, OutlineEntry{
							Kind:     kind,
							Name:     name.Name,
							Line:     fset.Position(name.Pos()).Line,
							EndLine:  fset.Position(s.End()).Line,
							Exported: name.IsExported(),
						})
					}
				}
			}
		}
	}
	return res, nil
}

// funcSignature renders a compact parameter/result summary, counts only, to
// keep outlines small.
func funcSignature(d *ast.FuncDecl) string {
	params := 0
	if d.Type.Params != nil {
		for _, f := range d.Type.Params.List {
			if n := len(f.Names); n > 0 {
				params += n
			} else {
				params++
			}
		}
	}
	results := 0
	if d.Type.Results != nil {
		for _, f := range d.Type.Results.List {
			if n := len(f.Names); n > 0 {
				results += n
			} else {
				results++
			}
		}
	}
	return fmt.Sprintf("(%d params, %d results)", params, results)
}

// docFirstLine returns the first line of a doc comment, or "".
func docFirstLine(doc *ast.CommentGroup) string {
	if doc == nil {
		return ""
	}
	text := strings.TrimSpace(doc.Text())
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		text = text[:i]
	}
	return text
}

func receiverType(expr ast.Expr) string {
	switch e := expr.(type) {
	case *ast.StarExpr:
		return "*" + receiverType(e.X)
	case *ast.Ident:
		return e.Name
	case *ast.IndexExpr:
		return receiverType(e.X)
	case *ast.IndexListExpr:
		return receiverType(e.X)
	default:
		return ""
	}
}
