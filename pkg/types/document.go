// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// ProcessingStatus indicates the state of one document's trip through the
// batch pipeline.
type ProcessingStatus string

const (
	StatusDone    ProcessingStatus = "processed"
	StatusSkipped ProcessingStatus = "skipped"
	StatusFailed  ProcessingStatus = "failed"
)

// Document holds identity and file paths for one paper moving through the
// pipeline.
type Document struct {
	// ID is a slug derived from the PDF filename (without extension).
	ID string `json:"id" yaml:"id"`

	// PDFPath is the local filesystem path to the input PDF.
	PDFPath string `json:"pdf_path" yaml:"pdf_path"`

	// PageCount is the page count reported by pdfcpu validation; zero when
	// validation was skipped.
	PageCount int `json:"page_count,omitempty" yaml:"page_count,omitempty"`

	// Status tracks the batch outcome for the document.
	Status ProcessingStatus `json:"status,omitempty" yaml:"status,omitempty"`
}
