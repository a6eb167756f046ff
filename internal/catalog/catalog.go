// Package catalog loads and serves the read-only blueprint library. Blueprints
// live on disk as JSON files laid out <root>/<jurisdiction>/<slug>.json, with
// one root per document kind; the catalog never mutates them.
package catalog

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"

	"lexhaven/api/internal/blueprint"
)

// ErrNotFound is returned when no blueprint matches a (kind, jurisdiction,
// slug) reference.
var ErrNotFound = errors.New("blueprint not found")

// Filter narrows List and Search results.
type Filter struct {
	Kind         blueprint.Kind
	Jurisdiction string
	Search       string
	Limit        int
}

// Scored is a search hit with its token-match score.
type Scored struct {
	blueprint.Summary
	Score int `json:"score"`
}

type loadedDoc struct {
	kind         blueprint.Kind
	jurisdiction string
	data         blueprint.Blueprint
}

// Catalog holds the in-memory index of every blueprint file. Reload swaps the
// whole index atomically, so readers never see a half-loaded catalog.
type Catalog struct {
	roots map[blueprint.Kind]string

	mu      sync.RWMutex
	docs    []loadedDoc
	version string
}

// New creates a catalog over one directory root per kind. Call Reload (or
// SyncFromGit) before serving.
func New(contractsDir, lettersDir string) *Catalog {
	return &Catalog{
		roots: map[blueprint.Kind]string{
			blueprint.KindContract: contractsDir,
			blueprint.KindLetter:   lettersDir,
		},
	}
}

// Reload rescans every root and replaces the in-memory index. A missing root
// directory contributes no blueprints rather than failing the reload.
func (c *Catalog) Reload() error {
	var docs []loadedDoc
	for kind, root := range c.roots {
		if strings.TrimSpace(root) == "" {
			continue
		}
		jurisdictions, err := os.ReadDir(root)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return fmt.Errorf("read catalog root %s: %w", root, err)
		}
		for _, entry := range jurisdictions {
			if !entry.IsDir() {
				continue
			}
			jurisdiction := entry.Name()
			files, err := os.ReadDir(filepath.Join(root, jurisdiction))
			if err != nil {
				return fmt.Errorf("read catalog dir %s/%s: %w", root, jurisdiction, err)
			}
			for _, file := range files {
				if file.IsDir() || !strings.HasSuffix(file.Name(), ".json") {
					continue
				}
				path := filepath.Join(root, jurisdiction, file.Name())
				raw, err := os.ReadFile(path)
				if err != nil {
					return fmt.Errorf("read blueprint %s: %w", path, err)
				}
				bp, err := blueprint.Decode(raw)
				if err != nil {
					return fmt.Errorf("decode blueprint %s: %w", path, err)
				}
				bp.Kind = kind
				if bp.Jurisdiction == "" {
					bp.Jurisdiction = jurisdiction
				}
				docs = append(docs, loadedDoc{kind: kind, jurisdiction: jurisdiction, data: bp})
			}
		}
	}

	c.mu.Lock()
	c.docs = docs
	c.mu.Unlock()
	return nil
}

// Version returns the catalog content version (git HEAD hash after a sync,
// empty for a plain directory load).
func (c *Catalog) Version() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.version
}

func (c *Catalog) setVersion(version string) {
	c.mu.Lock()
	c.version = version
	c.mu.Unlock()
}

// Get returns the blueprint for a (kind, jurisdiction, slug) reference.
func (c *Catalog) Get(kind blueprint.Kind, jurisdiction, slug string) (blueprint.Blueprint, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, doc := range c.docs {
		if doc.kind == kind && doc.jurisdiction == jurisdiction && doc.data.Slug == slug {
			return doc.data, nil
		}
	}
	return blueprint.Blueprint{}, ErrNotFound
}

// List returns title-sorted summaries matching the filter. An empty Kind
// matches both kinds; Search tokens must all appear in the title, summary or
// category.
func (c *Catalog) List(filter Filter) []blueprint.Summary {
	tokens := tokenize(filter.Search)

	c.mu.RLock()
	var summaries []blueprint.Summary
	for _, doc := range c.docs {
		if filter.Kind != "" && doc.kind != filter.Kind {
			continue
		}
		if filter.Jurisdiction != "" && doc.jurisdiction != filter.Jurisdiction {
			continue
		}
		if len(tokens) > 0 && !matchesAll(haystack(doc.data), tokens) {
			continue
		}
		summaries = append(summaries, blueprint.Summarize(doc.data))
	}
	c.mu.RUnlock()

	sort.Slice(summaries, func(i, j int) bool { return summaries[i].Title < summaries[j].Title })
	if filter.Limit > 0 && len(summaries) > filter.Limit {
		summaries = summaries[:filter.Limit]
	}
	if summaries == nil {
		summaries = []blueprint.Summary{}
	}
	return summaries
}

// Jurisdictions returns the sorted set of region codes present for a kind, or
// for both kinds when kind is empty.
func (c *Catalog) Jurisdictions(kind blueprint.Kind) []string {
	seen := map[string]struct{}{}
	c.mu.RLock()
	for _, doc := range c.docs {
		if kind != "" && doc.kind != kind {
			continue
		}
		seen[doc.jurisdiction] = struct{}{}
	}
	c.mu.RUnlock()

	codes := make([]string, 0, len(seen))
	for code := range seen {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// Search scores blueprints by the number of query tokens appearing in their
// title, summary or category, best first. Zero-score entries are dropped.
func (c *Catalog) Search(query string, filter Filter) []Scored {
	tokens := tokenize(query)
	if len(tokens) == 0 {
		return []Scored{}
	}

	c.mu.RLock()
	var scored []Scored
	for _, doc := range c.docs {
		if filter.Kind != "" && doc.kind != filter.Kind {
			continue
		}
		if filter.Jurisdiction != "" && doc.jurisdiction != filter.Jurisdiction {
			continue
		}
		hay := haystack(doc.data)
		score := 0
		for _, token := range tokens {
			if strings.Contains(hay, token) {
				score++
			}
		}
		if score == 0 {
			continue
		}
		scored = append(scored, Scored{Summary: blueprint.Summarize(doc.data), Score: score})
	}
	c.mu.RUnlock()

	sort.Slice(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		return scored[i].Title < scored[j].Title
	})

	limit := filter.Limit
	if limit <= 0 {
		limit = 5
	}
	if len(scored) > limit {
		scored = scored[:limit]
	}
	if scored == nil {
		scored = []Scored{}
	}
	return scored
}

var tokenSplit = regexp.MustCompile(`[^a-z0-9]+`)

func tokenize(query string) []string {
	parts := tokenSplit.Split(strings.ToLower(query), -1)
	tokens := parts[:0]
	for _, part := range parts {
		if part != "" {
			tokens = append(tokens, part)
		}
	}
	return tokens
}

func haystack(bp blueprint.Blueprint) string {
	return strings.ToLower(bp.Title + " " + bp.Summary + " " + bp.Category)
}

func matchesAll(hay string, tokens []string) bool {
	for _, token := range tokens {
		if !strings.Contains(hay, token) {
			return false
		}
	}
	return true
}
