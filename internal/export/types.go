// Package export turns a document's stored HTML into a downloadable PDF and
// optionally parks it in object storage. Export failures degrade: a missing
// chromium falls back to inline HTML, a failed upload falls back to inline
// PDF bytes.
package export

import "errors"

// Result contains the export output. Exactly one of URL or Data is set: URL
// when the PDF was uploaded to object storage, Data for an inline response.
type Result struct {
	URL      string
	Data     []byte
	Filename string
	MimeType string
}

var (
	// ErrPDFDependencyMissing indicates the headless browser runtime is not
	// installed; callers respond with the document HTML instead.
	ErrPDFDependencyMissing = errors.New("export pdf dependency missing")
)
