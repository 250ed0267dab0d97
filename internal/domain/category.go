package domain

// CategoryNode is one level of an article's category path
type CategoryNode struct {
	Name       string `json:"name"`
	Slug       string `json:"slug"`
	RemoteID   *int   `json:"remote_id,omitempty"`
	ParentSlug string `json:"parent_slug,omitempty"`
}

// CategoryRequest is the body of a category creation call. Unset optional
// fields are left out of the JSON rather than sent as null.
type CategoryRequest struct {
	Description          string `json:"description"`
	Name                 string `json:"name"`
	Slug                 string `json:"slug"`
	Locale               string `json:"locale,omitempty"`
	Position             *int   `json:"position,omitempty"`
	ParentCategoryID     *int   `json:"parent_category_id,omitempty"`
	AssociatedCategoryID *int   `json:"associated_category_id,omitempty"`
}

// Category is a category as the portal reports it
type Category struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// CategoryMap maps category slug to remote category id
type CategoryMap map[string]int
