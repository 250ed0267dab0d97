package document

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"
)

const (
	docxBodyPart = "word/document.xml"
	wordMLSpace  = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"
)

// DocxParser extracts paragraph text from a Word document
type DocxParser struct{}

func NewDocxParser() Parser {
	return &DocxParser{}
}

func (p *DocxParser) Parse(filePath string) (string, error) {
	return parseFile(p, filePath)
}

func (p *DocxParser) ParseReader(r io.Reader, filename string) (string, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", filename, err)
	}

	archive, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("failed to open %s as docx: %w", filename, err)
	}

	part, err := archive.Open(docxBodyPart)
	if err != nil {
		return "", fmt.Errorf("%s has no %s: %w", filename, docxBodyPart, err)
	}
	defer part.Close()

	paragraphs, err := docxParagraphs(part)
	if err != nil {
		return "", fmt.Errorf("failed to parse %s: %w", filename, err)
	}

	return strings.Join(paragraphs, "\n"), nil
}

// docxParagraphs walks the WordprocessingML body: w:p is a paragraph, w:t a
// text run, w:tab a tab and w:br/w:cr a line break. Only content inside a
// run (w:r) counts; w:tab also names tab stops in paragraph properties.
func docxParagraphs(r io.Reader) ([]string, error) {
	decoder := xml.NewDecoder(r)

	var (
		paragraphs []string
		current    strings.Builder
		inPara     bool
		inRun      bool
		inText     bool
	)

	for {
		token, err := decoder.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		switch t := token.(type) {
		case xml.StartElement:
			if t.Name.Space != wordMLSpace {
				continue
			}
			switch t.Name.Local {
			case "p":
				inPara = true
				current.Reset()
			case "r":
				inRun = true
			case "t":
				inText = inRun
			case "tab":
				if inPara && inRun {
					current.WriteByte('\t')
				}
			case "br", "cr":
				if inPara && inRun {
					current.WriteByte('\n')
				}
			}
		case xml.EndElement:
			if t.Name.Space != wordMLSpace {
				continue
			}
			switch t.Name.Local {
			case "p":
				paragraphs = append(paragraphs, current.String())
				inPara = false
			case "r":
				inRun = false
			case "t":
				inText = false
			}
		case xml.CharData:
			if inPara && inText {
				current.Write(t)
			}
		}
	}

	return paragraphs, nil
}
