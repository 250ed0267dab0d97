package document

import (
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const htmlBlockSelector = "p, h1, h2, h3, h4, h5, h6, li"

// HTMLParser extracts block text from an HTML export of the transcript
type HTMLParser struct{}

func NewHTMLParser() Parser {
	return &HTMLParser{}
}

func (p *HTMLParser) Parse(filePath string) (string, error) {
	return parseFile(p, filePath)
}

func (p *HTMLParser) ParseReader(r io.Reader, filename string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML %s: %w", filename, err)
	}

	var paragraphs []string
	doc.Find(htmlBlockSelector).Each(func(i int, s *goquery.Selection) {
		text := s.Text()
		if goquery.NodeName(s) == "li" {
			// A <p> inside an <li> is collected on its own.
			if s.Find("p").Length() > 0 {
				return
			}
			// Nested list items are too, so keep only the item's own text.
			if s.Find("li").Length() > 0 {
				text = s.Clone().Find("ul, ol").Remove().End().Text()
			}
		}
		paragraphs = append(paragraphs, strings.TrimRight(text, " \t\r\n"))
	})

	return strings.Join(paragraphs, "\n"), nil
}
