package export

import (
	"strings"
	"testing"
)

func TestSanitizeFilename(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Employment Contract", "Employment-Contract"},
		{"Rent Arrears (Final Notice!)", "Rent-Arrears-Final-Notice"},
		{"///", "document"},
		{"", "document"},
		{strings.Repeat("a", 80), strings.Repeat("a", 50)},
	}
	for _, tc := range cases {
		if got := sanitizeFilename(tc.in); got != tc.want {
			t.Errorf("sanitizeFilename(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestRenderPageWrapsBody(t *testing.T) {
	page, err := RenderPage("Employment Contract", `<h2 class="ch-clause-title">1. Parties</h2>`)
	if err != nil {
		t.Fatalf("RenderPage: %v", err)
	}
	if !strings.Contains(page, "<title>Employment Contract</title>") {
		t.Errorf("page missing title: %s", page)
	}
	if !strings.Contains(page, `<h2 class="ch-clause-title">1. Parties</h2>`) {
		t.Errorf("page escaped the body html: %s", page)
	}
	if !strings.Contains(page, "@page { size: A4; margin: 20mm; }") {
		t.Errorf("page missing print rules: %s", page)
	}
}

func TestRenderPageEscapesTitle(t *testing.T) {
	page, err := RenderPage(`<script>alert(1)</script>`, "body")
	if err != nil {
		t.Fatalf("RenderPage: %v", err)
	}
	if strings.Contains(page, "<script>alert(1)</script>") {
		t.Error("title was not escaped")
	}
}

func TestPercentEncodeForDataURL(t *testing.T) {
	got := percentEncodeForDataURL("a b<c>")
	if got != "a%20b%3Cc%3E" {
		t.Errorf("percentEncodeForDataURL = %q", got)
	}
}
