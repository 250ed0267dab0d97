package domain

import "strings"

// ArticleRecord is one entry split out of a transcript document
type ArticleRecord struct {
	CategoryPath []string `json:"category_path"` // Outermost category first
	Title        string   `json:"title"`
	Body         string   `json:"body"`
}

// FullPath renders the record the way the export format writes it: "A / B / Title"
func (r ArticleRecord) FullPath() string {
	return strings.Join(append(append([]string{}, r.CategoryPath...), r.Title), " / ")
}

type ArticleStatus string

func (s ArticleStatus) String() string {
	return string(s)
}

const (
	ArticleStatusDraft     ArticleStatus = "draft"
	ArticleStatusPublished ArticleStatus = "published"
	ArticleStatusArchived  ArticleStatus = "archived"
)

// Code returns the integer the portal API expects on status updates
func (s ArticleStatus) Code() int {
	switch s {
	case ArticleStatusPublished:
		return 1
	case ArticleStatusArchived:
		return 2
	default:
		return 0
	}
}

// ArticleRequest is the body of an article creation call
type ArticleRequest struct {
	Title      string         `json:"title"`
	Content    string         `json:"content"`
	Slug       string         `json:"slug"`
	Meta       map[string]any `json:"meta"`
	Status     ArticleStatus  `json:"status"`
	CategoryID *int           `json:"category_id,omitempty"`
	AuthorID   int            `json:"author_id"`
}

// RemoteArticle is an article as the portal reports it
type RemoteArticle struct {
	ID     int           `json:"id"`
	Title  string        `json:"title"`
	Slug   string        `json:"slug"`
	Status ArticleStatus `json:"status"`
}

// PublishedArticle is a ledger row for an article created by this tool
type PublishedArticle struct {
	RemoteID     int           `json:"remote_id"`
	Slug         string        `json:"slug"`
	Title        string        `json:"title"`
	CategorySlug string        `json:"category_slug,omitempty"`
	CategoryPath []string      `json:"category_path"`
	Status       ArticleStatus `json:"status"`
	Source       string        `json:"source,omitempty"` // Document the record was split from
}
