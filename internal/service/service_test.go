package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"chatwoot/kbsync/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakePortal is an in-memory knowledge base that records every call
type fakePortal struct {
	categories      domain.CategoryMap
	articles        []domain.RemoteArticle
	nextID          int
	calls           []string
	createdCategory []*domain.CategoryRequest
	createdArticles []*domain.ArticleRequest
	published       []int

	failCreateArticle error
	hideCategories    bool
}

func newFakePortal() *fakePortal {
	return &fakePortal{categories: domain.CategoryMap{}, nextID: 100}
}

func (f *fakePortal) CreateCategory(_ context.Context, req *domain.CategoryRequest) (*domain.Category, error) {
	f.calls = append(f.calls, "CreateCategory:"+req.Slug)
	f.createdCategory = append(f.createdCategory, req)
	f.nextID++
	f.categories[req.Slug] = f.nextID
	return &domain.Category{ID: f.nextID, Name: req.Name, Slug: req.Slug}, nil
}

func (f *fakePortal) ListCategories(context.Context) (domain.CategoryMap, error) {
	f.calls = append(f.calls, "ListCategories")
	out := domain.CategoryMap{}
	if f.hideCategories {
		return out, nil
	}
	for slug, id := range f.categories {
		out[slug] = id
	}
	return out, nil
}

func (f *fakePortal) CreateArticle(_ context.Context, req *domain.ArticleRequest) (*domain.RemoteArticle, error) {
	f.calls = append(f.calls, "CreateArticle:"+req.Title)
	if f.failCreateArticle != nil {
		return nil, f.failCreateArticle
	}
	f.createdArticles = append(f.createdArticles, req)
	f.nextID++
	article := domain.RemoteArticle{ID: f.nextID, Title: req.Title, Slug: req.Slug, Status: req.Status}
	f.articles = append(f.articles, article)
	return &article, nil
}

func (f *fakePortal) ListArticles(context.Context) ([]domain.RemoteArticle, error) {
	f.calls = append(f.calls, "ListArticles")
	return append([]domain.RemoteArticle(nil), f.articles...), nil
}

func (f *fakePortal) PublishArticle(_ context.Context, articleID int) error {
	f.calls = append(f.calls, "PublishArticle")
	f.published = append(f.published, articleID)
	return nil
}

type fakeLedger struct {
	saved     []*domain.PublishedArticle
	published []int
}

func (l *fakeLedger) SaveArticle(_ context.Context, article *domain.PublishedArticle) error {
	l.saved = append(l.saved, article)
	return nil
}

func (l *fakeLedger) MarkPublished(_ context.Context, remoteID int) error {
	l.published = append(l.published, remoteID)
	return nil
}

func newTestService(portal *fakePortal, ledger *fakeLedger, reuse bool) *Service {
	return NewService(portal, ledger, nil, Options{AuthorID: 1, ReuseExistingCategories: reuse})
}

func writeDocument(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "transcript.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestEnsureCategoryPathCreatesEachLevel(t *testing.T) {
	for _, reuse := range []bool{true, false} {
		portal := newFakePortal()
		svc := newTestService(portal, &fakeLedger{}, reuse)

		slug, created, err := svc.EnsureCategoryPath(context.Background(), []string{"A", "B"})
		require.NoError(t, err)

		assert.Equal(t, "b", slug)
		assert.Equal(t, 2, created)
		require.Len(t, portal.createdCategory, 2)
		assert.Equal(t, "a", portal.createdCategory[0].Slug)
		assert.Nil(t, portal.createdCategory[0].ParentCategoryID)
		assert.Equal(t, "b", portal.createdCategory[1].Slug)
		require.NotNil(t, portal.createdCategory[1].ParentCategoryID)
		assert.Equal(t, portal.categories["a"], *portal.createdCategory[1].ParentCategoryID)
	}
}

func TestEnsureCategoryPathReusesExisting(t *testing.T) {
	portal := newFakePortal()
	portal.categories["billing"] = 7
	svc := newTestService(portal, &fakeLedger{}, true)

	slug, created, err := svc.EnsureCategoryPath(context.Background(), []string{"Billing", "Invoices!!"})
	require.NoError(t, err)

	assert.Equal(t, "invoices", slug)
	assert.Equal(t, 1, created)
	require.Len(t, portal.createdCategory, 1)
	assert.Equal(t, 7, *portal.createdCategory[0].ParentCategoryID)
}

func TestEnsureCategoryPathUnconditionalCreation(t *testing.T) {
	portal := newFakePortal()
	portal.categories["billing"] = 7
	svc := newTestService(portal, &fakeLedger{}, false)

	_, created, err := svc.EnsureCategoryPath(context.Background(), []string{"Billing"})
	require.NoError(t, err)

	assert.Equal(t, 1, created)
	assert.Equal(t, []string{"CreateCategory:billing"}, portal.calls)
}

func TestEnsureCategoryPathEmpty(t *testing.T) {
	portal := newFakePortal()
	svc := newTestService(portal, &fakeLedger{}, true)

	slug, created, err := svc.EnsureCategoryPath(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, "", slug)
	assert.Equal(t, 0, created)
	assert.Empty(t, portal.calls)
}

func TestPublishResolvesLeafCategory(t *testing.T) {
	portal := newFakePortal()
	ledger := &fakeLedger{}
	svc := newTestService(portal, ledger, false)

	record := domain.ArticleRecord{CategoryPath: []string{"A", "B"}, Title: "Title", Body: "Hello"}
	article, created, err := svc.Publish(context.Background(), record, "doc.docx")
	require.NoError(t, err)
	assert.Equal(t, 2, created)

	assert.Equal(t, []string{
		"CreateCategory:a",
		"CreateCategory:b",
		"ListCategories",
		"CreateArticle:Title",
	}, portal.calls)

	require.Len(t, portal.createdArticles, 1)
	req := portal.createdArticles[0]
	require.NotNil(t, req.CategoryID)
	assert.Equal(t, portal.categories["b"], *req.CategoryID)
	assert.Equal(t, domain.ArticleStatusDraft, req.Status)
	assert.Equal(t, 1, req.AuthorID)

	require.Len(t, ledger.saved, 1)
	assert.Equal(t, article.ID, ledger.saved[0].RemoteID)
	assert.Equal(t, "b", ledger.saved[0].CategorySlug)
	assert.Equal(t, "doc.docx", ledger.saved[0].Source)
}

func TestPublishWithoutCategory(t *testing.T) {
	portal := newFakePortal()
	ledger := &fakeLedger{}
	svc := newTestService(portal, ledger, true)

	_, _, err := svc.Publish(context.Background(), domain.ArticleRecord{CategoryPath: []string{}, Title: "Loose"}, "")
	require.NoError(t, err)

	assert.Equal(t, []string{"CreateArticle:Loose"}, portal.calls)
	assert.Nil(t, portal.createdArticles[0].CategoryID)
	assert.NotNil(t, ledger.saved[0].CategoryPath)
}

func TestPublishMissingCategory(t *testing.T) {
	portal := newFakePortal()
	portal.hideCategories = true
	svc := newTestService(portal, &fakeLedger{}, false)

	_, _, err := svc.Publish(context.Background(), domain.ArticleRecord{CategoryPath: []string{"A"}, Title: "T"}, "")
	assert.ErrorIs(t, err, ErrCategoryNotFound)
	assert.Empty(t, portal.createdArticles)
}

func TestRunPublishesInDocumentOrder(t *testing.T) {
	portal := newFakePortal()
	svc := newTestService(portal, &fakeLedger{}, true)

	path := writeDocument(t, "Export\nChat Path: header\n"+
		"Chat Path: Billing / Invoices / First\nAssistant: one\n"+
		"Chat Path: Billing / Second\nAssistant: two\n"+
		"Chat Path: Third\nAssistant: three\n")

	summary, err := svc.Run(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, 3, summary.Records)
	assert.Equal(t, 3, summary.ArticlesCreated)
	assert.Equal(t, 2, summary.CategoriesCreated)

	titles := make([]string, 0, len(portal.createdArticles))
	for _, a := range portal.createdArticles {
		titles = append(titles, a.Title)
	}
	assert.Equal(t, []string{"First", "Second", "Third"}, titles)
}

func TestRunSkipsUnreadableDocument(t *testing.T) {
	portal := newFakePortal()
	svc := newTestService(portal, &fakeLedger{}, true)

	summary, err := svc.Run(context.Background(), filepath.Join(t.TempDir(), "missing.docx"))
	require.NoError(t, err)
	assert.Equal(t, 0, summary.Records)
	assert.Empty(t, portal.calls)
}

func TestRunStopsOnRemoteFailure(t *testing.T) {
	portal := newFakePortal()
	portal.failCreateArticle = errors.New("HTTP 500")
	svc := newTestService(portal, &fakeLedger{}, true)

	path := writeDocument(t, "x Chat Path: y Chat Path: A / One\nbody\nChat Path: A / Two\nbody\n")

	summary, err := svc.Run(context.Background(), path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "record 1")
	assert.Equal(t, 0, summary.ArticlesCreated)
	assert.Equal(t, 1, summary.CategoriesCreated)
}

func TestPublishAllDrafts(t *testing.T) {
	portal := newFakePortal()
	portal.articles = []domain.RemoteArticle{
		{ID: 5, Status: domain.ArticleStatusDraft},
		{ID: 3, Status: domain.ArticleStatusPublished},
		{ID: 9, Status: domain.ArticleStatusDraft},
	}
	ledger := &fakeLedger{}
	svc := newTestService(portal, ledger, true)

	published, err := svc.PublishAllDrafts(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, published)
	assert.Equal(t, []int{5, 3, 9}, portal.published)
	assert.Equal(t, []int{5, 3, 9}, ledger.published)
}

func TestExport(t *testing.T) {
	svc := newTestService(newFakePortal(), &fakeLedger{}, true)
	path := writeDocument(t, "x Chat Path: y Chat Path: Billing / Q/A\nAssistant: Ask away\n")
	dir := t.TempDir()

	written, err := svc.Export(context.Background(), path, dir)
	require.NoError(t, err)
	assert.Equal(t, 1, written)

	data, err := os.ReadFile(filepath.Join(dir, "Billing", `Q\A.md`))
	require.NoError(t, err)
	assert.Equal(t, "Ask away", string(data))
}
