// Package search answers the combined search box: blueprint templates from
// the catalog (Meilisearch when available) plus the caller's own saved
// documents from Postgres.
package search

// ResultType identifies the kind of entity in a search result.
type ResultType string

const (
	ResultBlueprint ResultType = "blueprint"
	ResultDocument  ResultType = "document"
)

// Result is a single search hit returned to the caller.
type Result struct {
	Type         ResultType `json:"type"`
	ID           string     `json:"id,omitempty"`
	Kind         string     `json:"kind,omitempty"`
	Slug         string     `json:"slug"`
	Title        string     `json:"title"`
	Snippet      string     `json:"snippet,omitempty"`
	Jurisdiction string     `json:"jurisdiction"`
	Status       string     `json:"status,omitempty"`
}

// Query describes a search request. OwnerID scopes the document half; it is
// never empty for authenticated searches.
type Query struct {
	Text         string
	OwnerID      string
	Kind         string
	Jurisdiction string
	Limit        int
}

// Response is the envelope returned by the search endpoint.
type Response struct {
	Results []Result `json:"results"`
	Query   string   `json:"query"`
}
