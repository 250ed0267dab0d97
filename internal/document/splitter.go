package document

import (
	"strings"

	"chatwoot/kbsync/internal/domain"

	log "github.com/sirupsen/logrus"
)

const (
	// EntryDelimiter starts every transcript entry in the export
	EntryDelimiter = "Chat Path:"
	// PathSeparator separates categories and title on an entry's first line
	PathSeparator = " / "
	// AssistantPrefix marks the assistant turn at the start of an entry body
	AssistantPrefix = "Assistant: "

	// The export always carries two preamble chunks before the first entry.
	preambleChunks = 2
)

// Split cuts a transcript into article records, in document order
func Split(content string) []domain.ArticleRecord {
	chunks := strings.Split(content, EntryDelimiter)
	if len(chunks) <= preambleChunks {
		return nil
	}

	records := make([]domain.ArticleRecord, 0, len(chunks)-preambleChunks)
	for i, chunk := range chunks[preambleChunks:] {
		record, ok := splitEntry(chunk)
		if !ok {
			log.Warnf("⚠️ Skipping entry %d: no title on the path line", i+1)
			continue
		}
		records = append(records, record)
	}

	log.Debugf("Split %d records out of %d entries", len(records), len(chunks)-preambleChunks)
	return records
}

func splitEntry(chunk string) (domain.ArticleRecord, bool) {
	pathLine, body, _ := strings.Cut(chunk, "\n")

	segments := strings.Split(pathLine, PathSeparator)
	for i := range segments {
		segments[i] = strings.TrimSpace(segments[i])
	}

	title := strings.ReplaceAll(segments[len(segments)-1], "/", `\`)
	if title == "" {
		return domain.ArticleRecord{}, false
	}

	body = strings.TrimLeft(body, " \t\r\n")
	body = strings.TrimPrefix(body, AssistantPrefix)

	categories := make([]string, 0, len(segments)-1)
	for _, segment := range segments[:len(segments)-1] {
		if segment != "" {
			categories = append(categories, segment)
		}
	}

	return domain.ArticleRecord{
		CategoryPath: categories,
		Title:        title,
		Body:         strings.TrimSpace(body),
	}, true
}
