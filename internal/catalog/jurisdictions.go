package catalog

// JurisdictionLabels maps supported region codes to display names. The set is
// fixed: blueprints outside it are rejected at the API boundary.
var JurisdictionLabels = map[string]string{
	"uk-ew": "England & Wales",
	"uk-sc": "Scotland",
	"uk-ni": "Northern Ireland",
}

// JurisdictionSupported reports whether code is a known region.
func JurisdictionSupported(code string) bool {
	_, ok := JurisdictionLabels[code]
	return ok
}

// JurisdictionLabel returns the display name for a region code, or the code
// itself when unknown.
func JurisdictionLabel(code string) string {
	if label, ok := JurisdictionLabels[code]; ok {
		return label
	}
	return code
}
