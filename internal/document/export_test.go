package document

import (
	"os"
	"path/filepath"
	"testing"

	"chatwoot/kbsync/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExport(t *testing.T) {
	dir := t.TempDir()
	records := []domain.ArticleRecord{
		{CategoryPath: []string{"Billing", "Invoices"}, Title: "Where is my invoice?", Body: "Open the billing page."},
		{CategoryPath: []string{}, Title: `Q\A`, Body: "Ask away"},
	}

	written, err := Export(records, dir)
	require.NoError(t, err)
	assert.Equal(t, 2, written)

	data, err := os.ReadFile(filepath.Join(dir, "Billing", "Invoices", "Where is my invoice?.md"))
	require.NoError(t, err)
	assert.Equal(t, "Open the billing page.", string(data))

	data, err = os.ReadFile(filepath.Join(dir, `Q\A.md`))
	require.NoError(t, err)
	assert.Equal(t, "Ask away", string(data))
}

func TestExportFailsOnUnwritableTarget(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "Billing")
	require.NoError(t, os.WriteFile(blocker, []byte("file, not dir"), 0o644))

	written, err := Export([]domain.ArticleRecord{{CategoryPath: []string{"Billing"}, Title: "T", Body: "b"}}, dir)
	assert.Error(t, err)
	assert.Equal(t, 0, written)
}

func TestExportStaysInsideDirectory(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "articles")

	records := Split("h Chat Path: h " +
		"Chat Path: .. / .. / escaped\nAssistant: nope\n" +
		"Chat Path: . / dot\nAssistant: nope\n" +
		"Chat Path: a/../.. / nested\nAssistant: kept\n" +
		"Chat Path: FAQ / ..\nAssistant: odd title\n")
	require.Len(t, records, 4)

	written, err := Export(records, dir)
	require.NoError(t, err)
	assert.Equal(t, 2, written)

	assert.NoFileExists(t, filepath.Join(root, "escaped.md"))
	assert.NoFileExists(t, filepath.Join(dir, "dot.md"))

	data, err := os.ReadFile(filepath.Join(dir, `a\..\..`, "nested.md"))
	require.NoError(t, err)
	assert.Equal(t, "kept", string(data))

	data, err = os.ReadFile(filepath.Join(dir, "FAQ", "...md"))
	require.NoError(t, err)
	assert.Equal(t, "odd title", string(data))
}

func TestExportPathRejectsParentSegments(t *testing.T) {
	_, err := exportPath(domain.ArticleRecord{CategoryPath: []string{"A", ".."}, Title: "T"})
	assert.ErrorIs(t, err, ErrUnsafePath)

	rel, err := exportPath(domain.ArticleRecord{CategoryPath: []string{"A", "B"}, Title: `Q\A`})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("A", "B", `Q\A.md`), rel)
}
