package document

import (
	"fmt"
	"io"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// MarkdownParser extracts the raw text of every leaf block of a Markdown document
type MarkdownParser struct {
	md goldmark.Markdown
}

func NewMarkdownParser() Parser {
	return &MarkdownParser{md: goldmark.New()}
}

func (p *MarkdownParser) Parse(filePath string) (string, error) {
	return parseFile(p, filePath)
}

func (p *MarkdownParser) ParseReader(r io.Reader, filename string) (string, error) {
	source, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("failed to read markdown %s: %w", filename, err)
	}

	doc := p.md.Parser().Parse(text.NewReader(source))

	var paragraphs []string
	err = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering || n.Type() != ast.TypeBlock || !isLeafBlock(n) {
			return ast.WalkContinue, nil
		}

		lines := n.Lines()
		parts := make([]string, 0, lines.Len())
		for i := 0; i < lines.Len(); i++ {
			segment := lines.At(i)
			parts = append(parts, strings.TrimRight(string(segment.Value(source)), "\r\n"))
		}
		paragraphs = append(paragraphs, strings.Join(parts, "\n"))

		return ast.WalkSkipChildren, nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to walk markdown %s: %w", filename, err)
	}

	return strings.Join(paragraphs, "\n"), nil
}

func isLeafBlock(n ast.Node) bool {
	if n.Kind() == ast.KindThematicBreak {
		return false
	}
	child := n.FirstChild()
	return child == nil || child.Type() != ast.TypeBlock
}
