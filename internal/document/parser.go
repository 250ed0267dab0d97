package document

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Parser turns a document into its paragraphs joined by newlines
type Parser interface {
	Parse(filePath string) (string, error)
	ParseReader(r io.Reader, filename string) (string, error)
}

// NewParser picks a parser by file extension. Unknown extensions are read as plain text.
func NewParser(filePath string) Parser {
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".docx":
		return NewDocxParser()
	case ".html", ".htm":
		return NewHTMLParser()
	case ".md", ".markdown":
		return NewMarkdownParser()
	default:
		return NewPlainTextParser()
	}
}

// ReadFile reads a transcript document of any supported format
func ReadFile(filePath string) (string, error) {
	return NewParser(filePath).Parse(filePath)
}

func parseFile(p Parser, filePath string) (string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to open document: %w", err)
	}
	defer file.Close()

	return p.ParseReader(file, filePath)
}

// PlainTextParser returns the file contents unchanged
type PlainTextParser struct{}

func NewPlainTextParser() Parser {
	return &PlainTextParser{}
}

func (p *PlainTextParser) Parse(filePath string) (string, error) {
	return parseFile(p, filePath)
}

func (p *PlainTextParser) ParseReader(r io.Reader, filename string) (string, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", filename, err)
	}
	return strings.ReplaceAll(string(content), "\r\n", "\n"), nil
}
