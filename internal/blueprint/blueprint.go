// Package blueprint defines the immutable document templates users fill in:
// ordered field declarations (flat or grouped into sections) plus ordered
// clause templates, keyed by kind, jurisdiction and slug.
package blueprint

import "encoding/json"

// Kind distinguishes the two template families.
type Kind string

const (
	KindContract Kind = "contract"
	KindLetter   Kind = "letter"
)

// ParseKind returns the Kind for a raw string, or "" when unknown.
func ParseKind(value string) Kind {
	switch value {
	case string(KindContract):
		return KindContract
	case string(KindLetter):
		return KindLetter
	}
	return ""
}

// FieldType is the closed set of field declarations a blueprint may use.
// Unknown values are tolerated (see DeriveSchema) so newer catalogs keep
// loading on older deployments.
type FieldType string

const (
	FieldText     FieldType = "text"
	FieldEmail    FieldType = "email"
	FieldDate     FieldType = "date"
	FieldTextarea FieldType = "textarea"
	FieldAddress  FieldType = "address"
	FieldSelect   FieldType = "select"
	FieldCheckbox FieldType = "checkbox"
	FieldNumber   FieldType = "number"
)

type Option struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

type Field struct {
	ID          string    `json:"id"`
	Label       string    `json:"label"`
	Type        FieldType `json:"type"`
	Required    bool      `json:"required,omitempty"`
	Placeholder string    `json:"placeholder,omitempty"`
	HelpText    string    `json:"helpText,omitempty"`
	Options     []Option  `json:"options,omitempty"`
}

type Section struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description,omitempty"`
	Fields      []Field `json:"fields"`
}

// ClauseType marks whether a clause body carries template placeholders.
type ClauseType string

const (
	ClauseFixed    ClauseType = "fixed"
	ClauseVariable ClauseType = "variable"
)

type Clause struct {
	ID       string     `json:"id"`
	Type     ClauseType `json:"type"`
	Title    string     `json:"title,omitempty"`
	Template string     `json:"template"`
}

type LawPackEntry struct {
	Cite string `json:"cite"`
	Note string `json:"note,omitempty"`
}

type Certificate struct {
	Statement         string   `json:"statement"`
	PreparedForFields []string `json:"preparedForFields"`
}

type SignatureParty struct {
	Role      string `json:"role"`
	NameField string `json:"nameField"`
}

type Signatures struct {
	Parties      []SignatureParty `json:"parties"`
	ESignAllowed bool             `json:"eSignAllowed,omitempty"`
}

// Blueprint is one versioned template file in the catalog.
type Blueprint struct {
	Version      int            `json:"version"`
	Kind         Kind           `json:"kind"`
	Slug         string         `json:"slug"`
	Title        string         `json:"title"`
	Jurisdiction string         `json:"jurisdiction"`
	Category     string         `json:"category,omitempty"`
	Summary      string         `json:"summary"`
	Fields       []Field        `json:"fields,omitempty"`
	Sections     []Section      `json:"sections,omitempty"`
	Clauses      []Clause       `json:"clauses"`
	LawPack      []LawPackEntry `json:"lawPack,omitempty"`
	Certificate  *Certificate   `json:"certificate,omitempty"`
	Signatures   *Signatures    `json:"signatures,omitempty"`
}

// Summary is the list/search projection of a blueprint.
type Summary struct {
	Kind             Kind     `json:"kind"`
	Slug             string   `json:"slug"`
	Title            string   `json:"title"`
	Jurisdiction     string   `json:"jurisdiction"`
	Category         string   `json:"category,omitempty"`
	Summary          string   `json:"summary"`
	Version          int      `json:"version"`
	LawPackCitations []string `json:"lawPackCitations"`
}

// Summarize builds the list projection for a blueprint.
func Summarize(bp Blueprint) Summary {
	cites := make([]string, 0, len(bp.LawPack))
	for _, entry := range bp.LawPack {
		cites = append(cites, entry.Cite)
	}
	return Summary{
		Kind:             bp.Kind,
		Slug:             bp.Slug,
		Title:            bp.Title,
		Jurisdiction:     bp.Jurisdiction,
		Category:         bp.Category,
		Summary:          bp.Summary,
		Version:          bp.Version,
		LawPackCitations: cites,
	}
}

// Flatten normalizes a blueprint's field declarations into one ordered list.
// Root-level fields come first, then each section's fields in section order.
// Sections are a display grouping only; validation always runs on the
// flattened sequence.
func Flatten(bp Blueprint) []Field {
	fields := make([]Field, 0, len(bp.Fields))
	fields = append(fields, bp.Fields...)
	for _, section := range bp.Sections {
		fields = append(fields, section.Fields...)
	}
	return fields
}

// Decode parses a raw catalog file into a Blueprint.
func Decode(raw []byte) (Blueprint, error) {
	var bp Blueprint
	if err := json.Unmarshal(raw, &bp); err != nil {
		return Blueprint{}, err
	}
	return bp, nil
}
