package render

import (
	"strings"
	"testing"

	"lexhaven/api/internal/blueprint"
)

func TestClausesEmptyListRendersEmptyString(t *testing.T) {
	if got := Clauses(nil, map[string]any{"anything": "x"}); got != "" {
		t.Errorf("expected empty output, got %q", got)
	}
	if got := Clauses([]blueprint.Clause{}, nil); got != "" {
		t.Errorf("expected empty output, got %q", got)
	}
}

func TestClausesSubstitutesAnswers(t *testing.T) {
	clauses := []blueprint.Clause{
		{ID: "parties", Type: blueprint.ClauseVariable, Template: "Party: {{party_a_name}}"},
	}

	got := Clauses(clauses, map[string]any{"party_a_name": "Acme Ltd"})
	want := `<div class="ch-clause-body"><p>Party: Acme Ltd</p></div>`
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestClausesMissingAnswerRendersEmptyString(t *testing.T) {
	clauses := []blueprint.Clause{
		{ID: "parties", Type: blueprint.ClauseVariable, Template: "Party: {{party_a_name}}"},
	}

	got := Clauses(clauses, map[string]any{})
	want := `<div class="ch-clause-body"><p>Party: </p></div>`
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}

	// nil map behaves the same as an empty one
	if again := Clauses(clauses, nil); again != want {
		t.Errorf("nil answers: got %q, want %q", again, want)
	}
}

func TestClausesDeterministic(t *testing.T) {
	clauses := []blueprint.Clause{
		{ID: "a", Type: blueprint.ClauseVariable, Title: "Heading", Template: "Hello {{name}}\nBye"},
		{ID: "b", Type: blueprint.ClauseFixed, Template: "Fixed text."},
	}
	answers := map[string]any{"name": "Jo", "unused": true}

	first := Clauses(clauses, answers)
	second := Clauses(clauses, answers)
	if first != second {
		t.Errorf("render is not deterministic:\n%q\n%q", first, second)
	}
}

func TestClausesTitleEmitsHeading(t *testing.T) {
	clauses := []blueprint.Clause{
		{ID: "c", Type: blueprint.ClauseFixed, Title: "Term & Termination", Template: "Body"},
	}

	got := Clauses(clauses, nil)
	if !strings.Contains(got, `<h2 class="ch-clause-title">Term &amp; Termination</h2>`) {
		t.Errorf("expected escaped heading, got %q", got)
	}
}

func TestClausesNewlinesBecomeLineBreaks(t *testing.T) {
	clauses := []blueprint.Clause{
		{ID: "c", Type: blueprint.ClauseFixed, Template: "line one\nline two"},
	}

	got := Clauses(clauses, nil)
	if !strings.Contains(got, "line one<br />line two") {
		t.Errorf("expected <br /> conversion, got %q", got)
	}
}

func TestClausesFixedClauseIgnoresAnswers(t *testing.T) {
	clauses := []blueprint.Clause{
		{ID: "c", Type: blueprint.ClauseFixed, Template: "This text never changes."},
	}

	base := Clauses(clauses, nil)
	withAnswers := Clauses(clauses, map[string]any{"c": "x", "other": "y"})
	if base != withAnswers {
		t.Errorf("fixed clause changed under answers: %q vs %q", base, withAnswers)
	}
}

func TestClausesJoinsBlocksInOrder(t *testing.T) {
	clauses := []blueprint.Clause{
		{ID: "first", Type: blueprint.ClauseFixed, Template: "one"},
		{ID: "second", Type: blueprint.ClauseFixed, Template: "two"},
	}

	got := Clauses(clauses, nil)
	want := `<div class="ch-clause-body"><p>one</p></div>` + "\n" + `<div class="ch-clause-body"><p>two</p></div>`
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestClausesMalformedTemplateDegradesToRawText(t *testing.T) {
	clauses := []blueprint.Clause{
		{ID: "bad", Type: blueprint.ClauseVariable, Template: "broken {{name"},
		{ID: "good", Type: blueprint.ClauseVariable, Template: "Hello {{name}}"},
	}

	got := Clauses(clauses, map[string]any{"name": "Jo"})
	if !strings.Contains(got, "broken {{name") {
		t.Errorf("malformed clause should render raw, got %q", got)
	}
	// the bad clause must not take the good one down with it
	if !strings.Contains(got, "Hello Jo") {
		t.Errorf("healthy clause should still render, got %q", got)
	}
}

func TestClausesEscapesAnswerValues(t *testing.T) {
	clauses := []blueprint.Clause{
		{ID: "c", Type: blueprint.ClauseVariable, Template: "Name: {{name}}"},
	}

	got := Clauses(clauses, map[string]any{"name": `<script>alert("x")</script>`})
	if strings.Contains(got, "<script>") {
		t.Errorf("answer value was not escaped: %q", got)
	}
	if !strings.Contains(got, "&lt;script&gt;") {
		t.Errorf("expected escaped value, got %q", got)
	}
}

func TestClausesCoercesScalarAnswers(t *testing.T) {
	clauses := []blueprint.Clause{
		{ID: "c", Type: blueprint.ClauseVariable, Template: "{{agreed}} / {{count}}"},
	}

	got := Clauses(clauses, map[string]any{"agreed": true, "count": float64(3)})
	if !strings.Contains(got, "true / 3") {
		t.Errorf("expected coerced scalars, got %q", got)
	}
}
