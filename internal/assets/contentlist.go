// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package assets organizes MinerU's raw per-document output into the
// extract layout: named figure/table/formula files, a rewritten document
// Markdown, and a figure/table index. Everything here is driven by the
// content list MinerU emits next to the Markdown; the PDF itself is never
// touched.
package assets

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Content item types as MinerU emits them.
const (
	ItemImage    = "image"
	ItemTable    = "table"
	ItemEquation = "equation"
	ItemText     = "text"
)

// ContentItem is one entry of MinerU's <name>_content_list.json. Fields
// are populated depending on Type; unknown fields are ignored.
type ContentItem struct {
	Type string `json:"type"`

	// ImgPath is the image file relative to the raw auto/ directory, for
	// image, table, and equation items.
	ImgPath string `json:"img_path,omitempty"`

	// ImgCaption holds figure caption fragments.
	ImgCaption []string `json:"img_caption,omitempty"`

	// TableCaption and TableBody describe table items; TableBody is the
	// recognized table as HTML.
	TableCaption []string `json:"table_caption,omitempty"`
	TableBody    string   `json:"table_body,omitempty"`

	// Text carries paragraph text or, for equations, the LaTeX source.
	Text string `json:"text,omitempty"`

	// TextLevel is the heading level for text items (0 = body text).
	TextLevel int `json:"text_level,omitempty"`

	// PageIdx is the zero-based source page.
	PageIdx int `json:"page_idx"`
}

// LoadContentList reads and decodes the content list for one document from
// the raw auto/ directory.
func LoadContentList(rawDir, docID string) ([]ContentItem, error) {
	path := filepath.Join(rawDir, docID+"_content_list.json")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading content list %s: %w", path, err)
	}

	var items []ContentItem
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("decoding content list %s: %w", path, err)
	}
	return items, nil
}
