package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"chatwoot/kbsync/internal/client"
	"chatwoot/kbsync/internal/document"
	"chatwoot/kbsync/internal/domain"
	"chatwoot/kbsync/internal/queue"
	"chatwoot/kbsync/internal/repository"

	log "github.com/sirupsen/logrus"
)

// ErrCategoryNotFound means a category slug did not show up in the portal listing
var ErrCategoryNotFound = errors.New("category not found in portal")

// Options are the orchestration settings taken from configuration
type Options struct {
	AuthorID                int
	Locale                  string
	ReuseExistingCategories bool

	ConsumerGroup string
	Consumer      string
	MinIdleTime   time.Duration
}

type Service struct {
	client     client.KnowledgeBaseClient
	repository repository.ArticleRepository
	queue      queue.Queue
	options    Options
}

func NewService(
	kbClient client.KnowledgeBaseClient,
	articleRepository repository.ArticleRepository,
	articleQueue queue.Queue,
	options Options,
) *Service {
	if articleRepository == nil {
		articleRepository = repository.NewNoopArticleRepository()
	}
	return &Service{
		client:     kbClient,
		repository: articleRepository,
		queue:      articleQueue,
		options:    options,
	}
}

// EnsureCategoryPath makes sure every level of path exists in the portal,
// each one nested under the previous, and returns the innermost slug.
func (s *Service) EnsureCategoryPath(ctx context.Context, path []string) (string, int, error) {
	existing := domain.CategoryMap{}
	if s.options.ReuseExistingCategories && len(path) > 0 {
		categories, err := s.client.ListCategories(ctx)
		if err != nil {
			return "", 0, err
		}
		existing = categories
	}

	var (
		parent  *domain.CategoryNode
		created int
	)
	for _, name := range path {
		node := domain.CategoryNode{Name: name, Slug: client.Slugify(name)}
		if parent != nil {
			node.ParentSlug = parent.Slug
		}

		if id, ok := existing[node.Slug]; ok {
			node.RemoteID = &id
			log.Debugf("Reusing category %s (%d)", node.Slug, id)
			parent = &node
			continue
		}

		req := &domain.CategoryRequest{
			Description: name,
			Name:        name,
			Slug:        node.Slug,
			Locale:      s.options.Locale,
		}
		if parent != nil && parent.RemoteID != nil {
			req.ParentCategoryID = parent.RemoteID
		}

		category, err := s.client.CreateCategory(ctx, req)
		if err != nil {
			return "", created, err
		}
		created++
		node.RemoteID = &category.ID
		if s.options.ReuseExistingCategories {
			existing[node.Slug] = category.ID
		}
		log.Infof("📁 Created category %s (%d)", node.Slug, category.ID)

		parent = &node
	}

	if parent == nil {
		return "", created, nil
	}
	return parent.Slug, created, nil
}

// Publish files one record under its category path and creates it as a draft
func (s *Service) Publish(ctx context.Context, record domain.ArticleRecord, source string) (*domain.RemoteArticle, int, error) {
	leafSlug, created, err := s.EnsureCategoryPath(ctx, record.CategoryPath)
	if err != nil {
		return nil, created, fmt.Errorf("failed to ensure categories for %q: %w", record.FullPath(), err)
	}

	var categoryID *int
	if leafSlug != "" {
		categories, err := s.client.ListCategories(ctx)
		if err != nil {
			return nil, created, err
		}
		id, ok := categories[leafSlug]
		if !ok {
			return nil, created, fmt.Errorf("%w: %s", ErrCategoryNotFound, leafSlug)
		}
		categoryID = &id
	}

	article, err := s.client.CreateArticle(ctx, client.NewArticleRequest(record, categoryID, s.options.AuthorID))
	if err != nil {
		return nil, created, err
	}
	log.Infof("📝 Created article %q (%d)", record.FullPath(), article.ID)

	err = s.repository.SaveArticle(ctx, &domain.PublishedArticle{
		RemoteID:     article.ID,
		Slug:         article.Slug,
		Title:        record.Title,
		CategorySlug: leafSlug,
		CategoryPath: append([]string{}, record.CategoryPath...),
		Status:       article.Status,
		Source:       source,
	})
	if err != nil {
		return article, created, err
	}

	return article, created, nil
}

// Run publishes every record of a document in order. A document that cannot
// be read is logged and skipped.
func (s *Service) Run(ctx context.Context, documentPath string) (*domain.RunSummary, error) {
	summary := &domain.RunSummary{Source: documentPath}

	records, ok := s.readRecords(documentPath)
	if !ok {
		return summary, nil
	}
	summary.Records = len(records)

	log.Infof("🔄 Publishing %d articles from %s", len(records), documentPath)

	for i, record := range records {
		_, created, err := s.Publish(ctx, record, documentPath)
		summary.CategoriesCreated += created
		if err != nil {
			return summary, fmt.Errorf("record %d of %s: %w", i+1, documentPath, err)
		}
		summary.ArticlesCreated++
	}

	log.Infof("✅ Completed %s: %d articles, %d new categories",
		documentPath, summary.ArticlesCreated, summary.CategoriesCreated)
	return summary, nil
}

// PublishAllDrafts flips every article of the portal to published, in listing order
func (s *Service) PublishAllDrafts(ctx context.Context) (int, error) {
	articles, err := s.client.ListArticles(ctx)
	if err != nil {
		return 0, err
	}

	log.Infof("🔄 Publishing %d articles", len(articles))

	published := 0
	for _, article := range articles {
		if err := s.client.PublishArticle(ctx, article.ID); err != nil {
			return published, err
		}
		if err := s.repository.MarkPublished(ctx, article.ID); err != nil {
			return published, err
		}
		published++
	}

	log.Infof("✅ Published %d articles", published)
	return published, nil
}

// Export writes the records of a document to a directory tree instead of the portal
func (s *Service) Export(ctx context.Context, documentPath, dir string) (int, error) {
	records, ok := s.readRecords(documentPath)
	if !ok {
		return 0, nil
	}

	written, err := document.Export(records, dir)
	if err != nil {
		return written, err
	}

	log.Infof("✅ Exported %d articles from %s to %s", written, documentPath, dir)
	return written, nil
}

func (s *Service) readRecords(documentPath string) ([]domain.ArticleRecord, bool) {
	content, err := document.ReadFile(documentPath)
	if err != nil {
		log.Errorf("❌ Failed to read document %s: %v", documentPath, err)
		return nil, false
	}

	return document.Split(content), true
}
