package parser

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// fencedBlock is one fenced code block pulled from a markdown document,
// together with the paragraph immediately above it (the path hint).
type fencedBlock struct {
	Hint    string
	Lang    string
	Content string
}

// extractFencedBlocks walks the markdown AST and collects every fenced code
// block with its preceding-paragraph hint.
func extractFencedBlocks(source []byte) ([]fencedBlock, error) {
	var blocks []fencedBlock
	root := goldmark.DefaultParser().Parse(text.NewReader(source))

	walker := func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		fence, ok := node.(*ast.FencedCodeBlock)
		if !ok {
			return ast.WalkContinue, nil
		}

		var block fencedBlock
		if fence.Info != nil {
			block.Lang = string(fence.Info.Text(source))
		}

		var content bytes.Buffer
		lines := fence.Lines()
		for i := 0; i < lines.Len(); i++ {
			line := lines.At(i)
			content.Write(line.Value(source))
		}
		block.Content = content.String()

		if prev := fence.PreviousSibling(); prev != nil {
			if p, ok := prev.(*ast.Paragraph); ok {
				block.Hint = strings.TrimSpace(string(p.Text(source)))
			}
		}

		blocks = append(blocks, block)
		return ast.WalkSkipChildren, nil
	}

	if err := ast.Walk(root, walker); err != nil {
		return nil, err
	}
	return blocks, nil
}
