package document

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"chatwoot/kbsync/internal/domain"

	log "github.com/sirupsen/logrus"
)

// ErrUnsafePath marks a record whose category path would leave the export directory
var ErrUnsafePath = errors.New("article path leaves the export directory")

// Export writes each record to <dir>/<category>/.../<title>.md. Records whose
// path would resolve outside dir are skipped with a warning.
func Export(records []domain.ArticleRecord, dir string) (int, error) {
	written := 0
	for _, record := range records {
		rel, err := exportPath(record)
		if err != nil {
			log.Warnf("⚠️ Skipping %q: %v", record.FullPath(), err)
			continue
		}

		path := filepath.Join(dir, rel)
		subdir := filepath.Dir(path)
		if err := os.MkdirAll(subdir, 0o755); err != nil {
			return written, fmt.Errorf("failed to create directory %s: %w", subdir, err)
		}

		if err := os.WriteFile(path, []byte(record.Body), 0o644); err != nil {
			return written, fmt.Errorf("failed to write article %s: %w", path, err)
		}

		log.Debugf("Exported %s", path)
		written++
	}

	return written, nil
}

// exportPath is the record's file path relative to the export directory.
// Slashes inside a segment are escaped the same way titles are.
func exportPath(record domain.ArticleRecord) (string, error) {
	segments := make([]string, 0, len(record.CategoryPath)+1)
	for _, segment := range record.CategoryPath {
		if segment == "." || segment == ".." {
			return "", fmt.Errorf("%w: segment %q", ErrUnsafePath, segment)
		}
		segments = append(segments, escapeSegment(segment))
	}
	segments = append(segments, escapeSegment(record.Title)+".md")

	rel := filepath.Join(segments...)
	if !filepath.IsLocal(rel) {
		return "", fmt.Errorf("%w: %s", ErrUnsafePath, rel)
	}
	return rel, nil
}

func escapeSegment(segment string) string {
	segment = strings.ReplaceAll(segment, "/", `\`)
	if filepath.Separator != '/' {
		segment = strings.ReplaceAll(segment, string(filepath.Separator), "_")
	}
	return segment
}
