package client

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"chatwoot/kbsync/internal/config"
	"chatwoot/kbsync/internal/domain"
	"chatwoot/kbsync/internal/proxy"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"go.uber.org/ratelimit"
	"resty.dev/v3"
)

const (
	categoriesPath = "/api/v1/accounts/{account}/portals/{portal}/categories"
	articlesPath   = "/api/v1/accounts/{account}/portals/{portal}/articles"
	articlePath    = "/api/v1/accounts/{account}/portals/{portal}/articles/{id}"
)

// ErrPageLimitExceeded is returned when article listing keeps returning
// non-empty pages past the configured ceiling.
var ErrPageLimitExceeded = errors.New("article listing exceeded page limit")

// APIError is a non-2xx response from the portal API
type APIError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s %s: HTTP %d: %s", e.Method, e.Path, e.StatusCode, e.Body)
}

type KnowledgeBaseClient interface {
	CreateCategory(ctx context.Context, req *domain.CategoryRequest) (*domain.Category, error)
	ListCategories(ctx context.Context) (domain.CategoryMap, error)
	CreateArticle(ctx context.Context, req *domain.ArticleRequest) (*domain.RemoteArticle, error)
	ListArticles(ctx context.Context) ([]domain.RemoteArticle, error)
	PublishArticle(ctx context.Context, articleID int) error
}

// ChatwootClient talks to a Chatwoot help center portal
type ChatwootClient struct {
	rl         ratelimit.Limiter
	config     config.KnowledgeBaseConfig
	httpClient *resty.Client
}

// The portal wraps single objects in "payload" on some versions and not on others.
type categoryEnvelope struct {
	domain.Category
	Payload *domain.Category `json:"payload"`
}

type articleEnvelope struct {
	domain.RemoteArticle
	Payload *domain.RemoteArticle `json:"payload"`
}

type categoryListEnvelope struct {
	Payload []domain.Category `json:"payload"`
}

type articleListEnvelope struct {
	Payload []domain.RemoteArticle `json:"payload"`
}

type statusUpdate struct {
	Status int `json:"status"`
}

func NewKnowledgeBaseClient(cfg config.KnowledgeBaseConfig, proxySupplier proxy.ProxySupplier) *ChatwootClient {
	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(time.Duration(cfg.Timeout)*time.Second).
		SetHeader("Content-Type", "application/json; charset=utf-8").
		SetHeader("Accept", "application/json").
		SetHeader("api_access_token", cfg.AccessToken).
		SetPathParams(map[string]string{
			"account": strconv.Itoa(cfg.AccountID),
			"portal":  cfg.Portal,
		})

	if proxySupplier != nil {
		if proxyURL := proxySupplier.Get(); proxyURL != "" {
			client.SetProxy(proxyURL)
			log.Infof("🔗 Using proxy: %s", proxyURL)
		}
	}

	rl := ratelimit.NewUnlimited()
	if cfg.MaxRequestsPerSecond > 0 {
		rl = ratelimit.New(cfg.MaxRequestsPerSecond)
	}

	return &ChatwootClient{
		rl:         rl,
		config:     cfg,
		httpClient: client,
	}
}

func (c *ChatwootClient) CreateCategory(ctx context.Context, req *domain.CategoryRequest) (*domain.Category, error) {
	var out categoryEnvelope
	if err := c.do(ctx, c.request(ctx).SetBody(req).SetResult(&out), "POST", categoriesPath); err != nil {
		return nil, fmt.Errorf("failed to create category %s: %w", req.Slug, err)
	}

	category := out.Category
	if out.Payload != nil {
		category = *out.Payload
	}
	if category.Slug == "" {
		category.Slug = req.Slug
	}

	log.Debugf("Created category %s with id %d", category.Slug, category.ID)
	return &category, nil
}

func (c *ChatwootClient) ListCategories(ctx context.Context) (domain.CategoryMap, error) {
	var out categoryListEnvelope
	if err := c.do(ctx, c.request(ctx).SetResult(&out), "GET", categoriesPath); err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}

	categories := make(domain.CategoryMap, len(out.Payload))
	for _, category := range out.Payload {
		categories[category.Slug] = category.ID
	}

	log.Debugf("Listed %d categories", len(categories))
	return categories, nil
}

func (c *ChatwootClient) CreateArticle(ctx context.Context, req *domain.ArticleRequest) (*domain.RemoteArticle, error) {
	var out articleEnvelope
	if err := c.do(ctx, c.request(ctx).SetBody(req).SetResult(&out), "POST", articlesPath); err != nil {
		return nil, fmt.Errorf("failed to create article %s: %w", req.Slug, err)
	}

	article := out.RemoteArticle
	if out.Payload != nil {
		article = *out.Payload
	}
	if article.Slug == "" {
		article.Slug = req.Slug
	}
	if article.Status == "" {
		article.Status = req.Status
	}

	log.Debugf("Created article %s with id %d", article.Slug, article.ID)
	return &article, nil
}

func (c *ChatwootClient) ListArticles(ctx context.Context) ([]domain.RemoteArticle, error) {
	articles := make([]domain.RemoteArticle, 0)

	for page := 1; ; page++ {
		if c.config.MaxPages > 0 && page > c.config.MaxPages {
			return nil, fmt.Errorf("%w: stopped after %d pages", ErrPageLimitExceeded, c.config.MaxPages)
		}
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("request cancelled: %w", err)
		}

		var out articleListEnvelope
		req := c.request(ctx).
			SetQueryParam("page", strconv.Itoa(page)).
			SetResult(&out)
		if err := c.do(ctx, req, "GET", articlesPath); err != nil {
			return nil, fmt.Errorf("failed to list articles page %d: %w", page, err)
		}

		if len(out.Payload) == 0 {
			log.Debugf("Article listing ended at page %d with %d articles", page, len(articles))
			break
		}
		articles = append(articles, out.Payload...)
	}

	return articles, nil
}

func (c *ChatwootClient) PublishArticle(ctx context.Context, articleID int) error {
	req := c.request(ctx).
		SetPathParam("id", strconv.Itoa(articleID)).
		SetBody(statusUpdate{Status: domain.ArticleStatusPublished.Code()})
	if err := c.do(ctx, req, "PATCH", articlePath); err != nil {
		return fmt.Errorf("failed to publish article %d: %w", articleID, err)
	}
	return nil
}

// Close releases the underlying HTTP transport
func (c *ChatwootClient) Close() error {
	return c.httpClient.Close()
}

func (c *ChatwootClient) request(ctx context.Context) *resty.Request {
	return c.httpClient.R().SetContext(ctx)
}

func (c *ChatwootClient) do(ctx context.Context, req *resty.Request, method, path string) error {
	c.rl.Take()

	resp, err := req.Execute(method, path)
	if err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("request cancelled: %w", ctx.Err())
		}
		return fmt.Errorf("failed to call %s %s: %w", method, path, err)
	}

	if resp.IsError() {
		return &APIError{
			Method:     method,
			Path:       path,
			StatusCode: resp.StatusCode(),
			Body:       resp.String(),
		}
	}

	return nil
}

// NewArticleRequest builds the creation body for a split record. The slug
// carries a short name-based UUID of title and body, so the same record
// always maps to the same slug.
func NewArticleRequest(record domain.ArticleRecord, categoryID *int, authorID int) *domain.ArticleRequest {
	return &domain.ArticleRequest{
		Title:      record.Title,
		Content:    record.Body,
		Slug:       ArticleSlug(record),
		Meta:       map[string]any{},
		Status:     domain.ArticleStatusDraft,
		CategoryID: categoryID,
		AuthorID:   authorID,
	}
}

func ArticleSlug(record domain.ArticleRecord) string {
	suffix := uuid.NewSHA1(uuid.NameSpaceURL, []byte(record.Title+"\x00"+record.Body)).String()[:8]
	return Slugify(record.Title + " " + suffix)
}
