package export

import (
	"context"
	"errors"
	"fmt"
	"log"
)

// Service orchestrates an export: wrap the stored HTML in the print shell,
// print it to PDF, and upload the bytes when an uploader is configured.
type Service struct {
	uploader *Uploader
}

// NewService creates an export service. uploader may be nil; exports then
// return inline PDF bytes.
func NewService(uploader *Uploader) *Service {
	return &Service{uploader: uploader}
}

// Export produces the download artifact for a document. When the headless
// browser is unavailable the result degrades to the page HTML itself, and
// when the upload fails the PDF bytes come back inline.
func (s *Service) Export(ctx context.Context, documentID, title, body string) (Result, error) {
	page, err := RenderPage(title, body)
	if err != nil {
		return Result{}, fmt.Errorf("render export page: %w", err)
	}

	filename := sanitizeFilename(title)

	pdf, err := printPDF(ctx, page)
	if errors.Is(err, ErrPDFDependencyMissing) {
		log.Printf("export: pdf renderer unavailable, serving html for %s", documentID)
		return Result{
			Data:     []byte(page),
			Filename: filename + ".html",
			MimeType: "text/html; charset=utf-8",
		}, nil
	}
	if err != nil {
		return Result{}, err
	}

	if s.uploader != nil {
		url, uploadErr := s.uploader.Upload(ctx, documentID, pdf)
		if uploadErr == nil {
			return Result{URL: url, Filename: filename + ".pdf", MimeType: "application/pdf"}, nil
		}
		log.Printf("export: upload failed, serving inline pdf for %s: %v", documentID, uploadErr)
	}

	return Result{
		Data:     pdf,
		Filename: filename + ".pdf",
		MimeType: "application/pdf",
	}, nil
}
