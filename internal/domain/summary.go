package domain

// RunSummary counts what a single document run did
type RunSummary struct {
	Source            string `json:"source"`
	Records           int    `json:"records"`
	CategoriesCreated int    `json:"categories_created"`
	ArticlesCreated   int    `json:"articles_created"`
}
