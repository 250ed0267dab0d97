package repository

import (
	"context"
	"fmt"

	"chatwoot/kbsync/internal/domain"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ArticleRepository keeps a ledger of the articles this tool created
type ArticleRepository interface {
	SaveArticle(ctx context.Context, article *domain.PublishedArticle) error
	MarkPublished(ctx context.Context, remoteID int) error
}

type articleRepository struct {
	db *pgxpool.Pool
}

func NewArticleRepository(db *pgxpool.Pool) ArticleRepository {
	return &articleRepository{
		db: db,
	}
}

const schema = `
CREATE TABLE IF NOT EXISTS kb_articles (
	remote_id     INTEGER PRIMARY KEY,
	slug          TEXT NOT NULL,
	title         TEXT NOT NULL,
	category_slug TEXT NOT NULL DEFAULT '',
	category_path TEXT[] NOT NULL DEFAULT '{}',
	status        TEXT NOT NULL,
	source        TEXT NOT NULL DEFAULT '',
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
	published_at  TIMESTAMPTZ
)`

// EnsureSchema creates the ledger table when it does not exist yet
func EnsureSchema(ctx context.Context, db *pgxpool.Pool) error {
	if _, err := db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to create kb_articles table: %w", err)
	}
	return nil
}

func (r *articleRepository) SaveArticle(ctx context.Context, article *domain.PublishedArticle) error {
	query := `
	INSERT INTO kb_articles (remote_id, slug, title, category_slug, category_path, status, source)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	ON CONFLICT (remote_id)
	DO UPDATE SET slug = $2, title = $3, category_slug = $4, category_path = $5, status = $6, source = $7`
	_, err := r.db.Exec(ctx, query,
		article.RemoteID,
		article.Slug,
		article.Title,
		article.CategorySlug,
		article.CategoryPath,
		article.Status.String(),
		article.Source,
	)
	if err != nil {
		return fmt.Errorf("failed to save article %d: %w", article.RemoteID, err)
	}

	return nil
}

// MarkPublished is a no-op for articles the ledger has never seen
func (r *articleRepository) MarkPublished(ctx context.Context, remoteID int) error {
	query := `UPDATE kb_articles SET status = $2, published_at = now() WHERE remote_id = $1`
	_, err := r.db.Exec(ctx, query, remoteID, domain.ArticleStatusPublished.String())
	if err != nil {
		return fmt.Errorf("failed to mark article %d published: %w", remoteID, err)
	}

	return nil
}

type noopArticleRepository struct{}

// NewNoopArticleRepository is used when the ledger database is disabled
func NewNoopArticleRepository() ArticleRepository {
	return noopArticleRepository{}
}

func (noopArticleRepository) SaveArticle(context.Context, *domain.PublishedArticle) error {
	return nil
}

func (noopArticleRepository) MarkPublished(context.Context, int) error {
	return nil
}
