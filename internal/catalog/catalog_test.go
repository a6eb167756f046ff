package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"lexhaven/api/internal/blueprint"
)

func writeBlueprint(t *testing.T, root, jurisdiction, slug, body string) {
	t.Helper()
	dir := filepath.Join(root, jurisdiction)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, slug+".json"), []byte(body), 0o644); err != nil {
		t.Fatalf("write blueprint: %v", err)
	}
}

func testCatalog(t *testing.T) *Catalog {
	t.Helper()
	contracts := t.TempDir()
	letters := t.TempDir()

	writeBlueprint(t, contracts, "uk-ew", "employment-contract", `{
		"version": 2,
		"slug": "employment-contract",
		"title": "Employment Contract",
		"jurisdiction": "uk-ew",
		"category": "employment",
		"summary": "A standard contract of employment.",
		"lawPack": [{"cite": "Employment Rights Act 1996"}],
		"clauses": [{"id": "parties", "type": "variable", "template": "Party: {{party_a_name}}"}]
	}`)
	writeBlueprint(t, contracts, "uk-sc", "tenancy-agreement", `{
		"version": 1,
		"slug": "tenancy-agreement",
		"title": "Tenancy Agreement",
		"jurisdiction": "uk-sc",
		"category": "property",
		"summary": "Private residential tenancy.",
		"clauses": []
	}`)
	writeBlueprint(t, letters, "uk-ew", "rent-arrears", `{
		"version": 1,
		"slug": "rent-arrears",
		"title": "Rent Arrears Letter",
		"jurisdiction": "uk-ew",
		"summary": "Demand letter for unpaid rent.",
		"clauses": [{"id": "demand", "type": "fixed", "template": "Pay up."}]
	}`)

	c := New(contracts, letters)
	if err := c.Reload(); err != nil {
		t.Fatalf("reload: %v", err)
	}
	return c
}

func TestGetByReference(t *testing.T) {
	c := testCatalog(t)

	bp, err := c.Get(blueprint.KindContract, "uk-ew", "employment-contract")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if bp.Title != "Employment Contract" || bp.Kind != blueprint.KindContract {
		t.Errorf("unexpected blueprint: %+v", bp)
	}
	if len(bp.Clauses) != 1 || bp.Clauses[0].ID != "parties" {
		t.Errorf("clauses not loaded: %+v", bp.Clauses)
	}
}

func TestGetNotFound(t *testing.T) {
	c := testCatalog(t)

	if _, err := c.Get(blueprint.KindContract, "uk-ew", "missing"); err != ErrNotFound {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	// right slug, wrong kind
	if _, err := c.Get(blueprint.KindLetter, "uk-ew", "employment-contract"); err != ErrNotFound {
		t.Errorf("expected ErrNotFound across kinds, got %v", err)
	}
}

func TestListSortsAndFilters(t *testing.T) {
	c := testCatalog(t)

	all := c.List(Filter{})
	if len(all) != 3 {
		t.Fatalf("expected 3 summaries, got %d", len(all))
	}
	if all[0].Title != "Employment Contract" || all[2].Title != "Tenancy Agreement" {
		t.Errorf("summaries not title-sorted: %+v", all)
	}

	contracts := c.List(Filter{Kind: blueprint.KindContract})
	if len(contracts) != 2 {
		t.Errorf("expected 2 contracts, got %d", len(contracts))
	}

	scotland := c.List(Filter{Jurisdiction: "uk-sc"})
	if len(scotland) != 1 || scotland[0].Slug != "tenancy-agreement" {
		t.Errorf("jurisdiction filter failed: %+v", scotland)
	}

	searched := c.List(Filter{Search: "unpaid rent"})
	if len(searched) != 1 || searched[0].Slug != "rent-arrears" {
		t.Errorf("search filter failed: %+v", searched)
	}

	limited := c.List(Filter{Limit: 1})
	if len(limited) != 1 {
		t.Errorf("limit ignored: %+v", limited)
	}
}

func TestListCarriesLawPackCitations(t *testing.T) {
	c := testCatalog(t)

	items := c.List(Filter{Search: "employment"})
	if len(items) != 1 {
		t.Fatalf("expected 1 hit, got %d", len(items))
	}
	if len(items[0].LawPackCitations) != 1 || items[0].LawPackCitations[0] != "Employment Rights Act 1996" {
		t.Errorf("law pack citations missing: %+v", items[0])
	}
}

func TestJurisdictions(t *testing.T) {
	c := testCatalog(t)

	all := c.Jurisdictions("")
	if len(all) != 2 || all[0] != "uk-ew" || all[1] != "uk-sc" {
		t.Errorf("expected [uk-ew uk-sc], got %v", all)
	}
	letters := c.Jurisdictions(blueprint.KindLetter)
	if len(letters) != 1 || letters[0] != "uk-ew" {
		t.Errorf("expected [uk-ew] for letters, got %v", letters)
	}
}

func TestSearchScoresByTokenMatches(t *testing.T) {
	c := testCatalog(t)

	hits := c.Search("employment contract", Filter{})
	if len(hits) == 0 {
		t.Fatal("expected search hits")
	}
	if hits[0].Slug != "employment-contract" {
		t.Errorf("expected best hit employment-contract, got %+v", hits[0])
	}
	if hits[0].Score != 2 {
		t.Errorf("expected score 2, got %d", hits[0].Score)
	}

	if got := c.Search("", Filter{}); len(got) != 0 {
		t.Errorf("empty query should return no hits, got %+v", got)
	}
}

func TestReloadMissingRootIsEmptyNotError(t *testing.T) {
	c := New(filepath.Join(t.TempDir(), "nope"), "")
	if err := c.Reload(); err != nil {
		t.Fatalf("reload with missing root: %v", err)
	}
	if items := c.List(Filter{}); len(items) != 0 {
		t.Errorf("expected empty catalog, got %+v", items)
	}
}
