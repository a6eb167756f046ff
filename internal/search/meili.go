package search

import (
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"sync/atomic"
	"time"

	"lexhaven/api/internal/blueprint"

	meili "github.com/meilisearch/meilisearch-go"
)

const idxBlueprints = "lexhaven_blueprints"

// BlueprintRecord is the data indexed per blueprint.
type BlueprintRecord struct {
	ID           string `json:"id"` // kind:jurisdiction:slug
	Kind         string `json:"kind"`
	Slug         string `json:"slug"`
	Title        string `json:"title"`
	Summary      string `json:"summary"`
	Category     string `json:"category"`
	Jurisdiction string `json:"jurisdiction"`
}

// RecordForBlueprint builds the index record for a blueprint summary.
func RecordForBlueprint(s blueprint.Summary) BlueprintRecord {
	return BlueprintRecord{
		ID:           fmt.Sprintf("%s:%s:%s", s.Kind, s.Jurisdiction, s.Slug),
		Kind:         string(s.Kind),
		Slug:         s.Slug,
		Title:        s.Title,
		Summary:      s.Summary,
		Category:     s.Category,
		Jurisdiction: s.Jurisdiction,
	}
}

// Meili indexes and searches the blueprint catalog via Meilisearch.
type Meili struct {
	client  meili.ServiceManager
	healthy atomic.Bool
	done    chan struct{}
}

// NewMeili creates a Meilisearch client and configures the blueprint index.
// An unreachable server is tolerated: the health loop reconfigures the index
// when it comes back, and the facade falls back to the catalog meanwhile.
func NewMeili(url, apiKey string) *Meili {
	client := meili.New(url, meili.WithAPIKey(apiKey))

	m := &Meili{client: client, done: make(chan struct{})}

	if _, err := client.Health(); err != nil {
		log.Printf("search: meilisearch unavailable at %s: %v", url, err)
		m.healthy.Store(false)
	} else {
		m.healthy.Store(true)
		m.configureIndex()
	}

	go m.healthLoop()
	return m
}

func (m *Meili) configureIndex() {
	if _, err := m.client.CreateIndex(&meili.IndexConfig{Uid: idxBlueprints, PrimaryKey: "id"}); err != nil {
		log.Printf("search: create index %s (may already exist): %v", idxBlueprints, err)
	}

	index := m.client.Index(idxBlueprints)
	filterable := []interface{}{"kind", "jurisdiction"}
	if _, err := index.UpdateFilterableAttributes(&filterable); err != nil {
		log.Printf("search: update filterable attrs for %s: %v", idxBlueprints, err)
	}
	searchable := []string{"title", "summary", "category"}
	if _, err := index.UpdateSearchableAttributes(&searchable); err != nil {
		log.Printf("search: update searchable attrs for %s: %v", idxBlueprints, err)
	}
}

func (m *Meili) healthLoop() {
	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-m.done:
			return
		case <-ticker.C:
			_, err := m.client.Health()
			wasHealthy := m.healthy.Load()
			m.healthy.Store(err == nil)
			if err == nil && !wasHealthy {
				log.Println("search: meilisearch recovered, reconfiguring index")
				m.configureIndex()
			}
		}
	}
}

// Close stops the background health monitor.
func (m *Meili) Close() {
	close(m.done)
}

// Healthy reports whether Meilisearch is reachable.
func (m *Meili) Healthy() bool {
	return m.healthy.Load()
}

// IndexBlueprints bulk-indexes blueprint records.
func (m *Meili) IndexBlueprints(records []BlueprintRecord) error {
	if len(records) == 0 {
		return nil
	}
	_, err := m.client.Index(idxBlueprints).AddDocuments(records, nil)
	return err
}

// SearchBlueprints queries the blueprint index.
func (m *Meili) SearchBlueprints(q Query) ([]Result, error) {
	if !m.healthy.Load() {
		return nil, fmt.Errorf("meilisearch unhealthy")
	}

	limit := int64(q.Limit)
	if limit <= 0 {
		limit = 20
	}

	request := &meili.SearchRequest{
		Limit:                 limit,
		AttributesToHighlight: []string{"*"},
		HighlightPreTag:       "<mark>",
		HighlightPostTag:      "</mark>",
	}
	var filters []string
	if q.Kind != "" {
		filters = append(filters, fmt.Sprintf("kind = %q", q.Kind))
	}
	if q.Jurisdiction != "" {
		filters = append(filters, fmt.Sprintf("jurisdiction = %q", q.Jurisdiction))
	}
	if len(filters) > 0 {
		request.Filter = filters
	}

	resp, err := m.client.Index(idxBlueprints).Search(q.Text, request)
	if err != nil {
		m.healthy.Store(false)
		return nil, fmt.Errorf("meilisearch search: %w", err)
	}

	results := make([]Result, 0, len(resp.Hits))
	for _, hit := range resp.Hits {
		results = append(results, Result{
			Type:         ResultBlueprint,
			Kind:         decodeString(hit, "kind"),
			Slug:         decodeString(hit, "slug"),
			Title:        firstNonBlank(decodeFormattedString(hit, "title"), decodeString(hit, "title")),
			Snippet:      firstNonBlank(decodeFormattedString(hit, "summary"), decodeString(hit, "summary")),
			Jurisdiction: decodeString(hit, "jurisdiction"),
		})
	}
	return results, nil
}

func decodeString(hit meili.Hit, key string) string {
	raw, ok := hit[key]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return ""
}

func decodeFormattedString(hit meili.Hit, key string) string {
	raw, ok := hit["_formatted"]
	if !ok {
		return ""
	}
	var formatted map[string]string
	if err := json.Unmarshal(raw, &formatted); err != nil {
		return ""
	}
	return strings.TrimSpace(formatted[key])
}

func firstNonBlank(values ...string) string {
	for _, value := range values {
		if strings.TrimSpace(value) != "" {
			return value
		}
	}
	return ""
}
