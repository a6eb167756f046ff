package search

import (
	"context"
	"log"
	"strings"

	"lexhaven/api/internal/blueprint"
	"lexhaven/api/internal/catalog"
	"lexhaven/api/internal/store"
)

// DocumentSearcher is the Postgres side of the facade: owner-scoped title
// search over saved documents.
type DocumentSearcher interface {
	SearchDocumentTitles(ctx context.Context, ownerID, query string, limit int) ([]store.Document, error)
}

// Service merges blueprint hits (Meilisearch when healthy, catalog token
// scoring otherwise) with the caller's own documents.
type Service struct {
	meili     *Meili
	catalog   *catalog.Catalog
	documents DocumentSearcher
}

// NewService creates a search service. meili may be nil when Meilisearch is
// not configured.
func NewService(meili *Meili, cat *catalog.Catalog, documents DocumentSearcher) *Service {
	return &Service{meili: meili, catalog: cat, documents: documents}
}

// Search answers the combined search box. Blueprint search never fails the
// request: a Meilisearch error falls back to the catalog scorer, and a
// document-store error degrades to blueprint-only results.
func (s *Service) Search(ctx context.Context, q Query) Response {
	if strings.TrimSpace(q.Text) == "" {
		return Response{Results: []Result{}, Query: q.Text}
	}

	results := s.searchBlueprints(q)

	if s.documents != nil && q.OwnerID != "" {
		docs, err := s.documents.SearchDocumentTitles(ctx, q.OwnerID, q.Text, q.Limit)
		if err != nil {
			log.Printf("search: document search error: %v", err)
		} else {
			for _, doc := range docs {
				results = append(results, Result{
					Type:         ResultDocument,
					ID:           doc.ID,
					Kind:         doc.Kind,
					Slug:         doc.Slug,
					Title:        doc.Title,
					Jurisdiction: doc.Jurisdiction,
					Status:       doc.Status,
				})
			}
		}
	}

	return Response{Results: results, Query: q.Text}
}

func (s *Service) searchBlueprints(q Query) []Result {
	if s.meili != nil && s.meili.Healthy() {
		results, err := s.meili.SearchBlueprints(q)
		if err == nil {
			return results
		}
		log.Printf("search: meilisearch error, falling back to catalog: %v", err)
	}

	hits := s.catalog.Search(q.Text, catalog.Filter{
		Kind:         blueprint.ParseKind(q.Kind),
		Jurisdiction: q.Jurisdiction,
		Limit:        q.Limit,
	})
	results := make([]Result, 0, len(hits))
	for _, hit := range hits {
		results = append(results, Result{
			Type:         ResultBlueprint,
			Kind:         string(hit.Kind),
			Slug:         hit.Slug,
			Title:        hit.Title,
			Snippet:      hit.Summary.Summary,
			Jurisdiction: hit.Jurisdiction,
		})
	}
	return results
}

// IndexCatalog pushes every blueprint summary into Meilisearch
// (fire-and-forget; the catalog fallback keeps working regardless).
func (s *Service) IndexCatalog() {
	if s.meili == nil || !s.meili.Healthy() {
		return
	}
	summaries := s.catalog.List(catalog.Filter{})
	records := make([]BlueprintRecord, 0, len(summaries))
	for _, summary := range summaries {
		records = append(records, RecordForBlueprint(summary))
	}
	go func() {
		if err := s.meili.IndexBlueprints(records); err != nil {
			log.Printf("search: index blueprints: %v", err)
		}
	}()
}
