// Package render turns an ordered list of blueprint clauses plus an answer
// map into final document HTML. It is pure: no storage, no network, and
// identical inputs always produce identical output.
package render

import (
	"fmt"
	"html"
	"regexp"
	"strconv"
	"strings"

	"lexhaven/api/internal/blueprint"
)

// placeholder matches {{ field_id }} references inside a clause template.
// Anything fancier than a bare identifier (helpers, blocks, partials) is
// treated as malformed and leaves the clause rendered as raw text.
var placeholder = regexp.MustCompile(`\{\{\s*([A-Za-z0-9_.-]+)\s*\}\}`)

// Clauses renders each clause in order: an optional heading, the template
// body with placeholders substituted from answers, newlines converted to
// <br />, wrapped in a paragraph container. Missing answers substitute as
// empty strings; they are never an error. An empty clause list renders as "".
func Clauses(clauses []blueprint.Clause, answers map[string]any) string {
	if len(clauses) == 0 {
		return ""
	}
	blocks := make([]string, 0, len(clauses))
	for _, clause := range clauses {
		var b strings.Builder
		if clause.Title != "" {
			b.WriteString(`<h2 class="ch-clause-title">`)
			b.WriteString(html.EscapeString(clause.Title))
			b.WriteString(`</h2>`)
		}
		body := substitute(clause.Template, answers)
		body = strings.ReplaceAll(body, "\n", "<br />")
		b.WriteString(`<div class="ch-clause-body"><p>`)
		b.WriteString(body)
		b.WriteString(`</p></div>`)
		blocks = append(blocks, b.String())
	}
	return strings.Join(blocks, "\n")
}

// substitute replaces every placeholder with its answer, HTML-escaped. A
// template with unbalanced braces degrades to its raw text (escaped) so one
// bad clause cannot blank out the rest of the document.
func substitute(template string, answers map[string]any) string {
	if malformed(template) {
		return html.EscapeString(template)
	}
	var b strings.Builder
	last := 0
	for _, match := range placeholder.FindAllStringSubmatchIndex(template, -1) {
		b.WriteString(html.EscapeString(template[last:match[0]]))
		fieldID := template[match[2]:match[3]]
		b.WriteString(html.EscapeString(coerce(answers[fieldID])))
		last = match[1]
	}
	b.WriteString(html.EscapeString(template[last:]))
	return b.String()
}

// malformed reports whether the template has opening and closing brace pairs
// that the placeholder syntax cannot account for.
func malformed(template string) bool {
	stripped := placeholder.ReplaceAllString(template, "")
	return strings.Contains(stripped, "{{") || strings.Contains(stripped, "}}")
}

// coerce turns an answer value into the string that appears in the document.
// nil (field omitted or null) renders as the empty string.
func coerce(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		if v {
			return "true"
		}
		return "false"
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	default:
		return fmt.Sprintf("%v", v)
	}
}
