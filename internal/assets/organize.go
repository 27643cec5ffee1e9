// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package assets

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"

	"github.com/pdiddy/paperminer/pkg/types"
)

// Output directory names under a document's extract directory.
const (
	DirFigures  = "Figure"
	DirTables   = "Tables"
	DirFormulas = "Formula"
)

// IndexFile is the figure/table index written next to the document Markdown.
const IndexFile = "Figures_Tables.md"

var (
	figureNumRe = regexp.MustCompile(`(?i)\bfig(?:ure)?\.?\s*(\d+)`)
	tableNumRe  = regexp.MustCompile(`(?i)\btable\s*(\d+)`)
)

// Result summarizes one organize run.
type Result struct {
	Figures  int
	Tables   int
	Formulas int

	// Markdown is the document Markdown with image references rewritten to
	// the organized layout. Empty when the raw Markdown was absent.
	Markdown string
}

// Organizer copies MinerU's flat images/ output into named figure, table,
// and formula files and rewrites the document Markdown to match. Table
// bodies arrive as HTML and are converted to Markdown alongside the table
// image.
type Organizer struct {
	cfg  types.AssetsConfig
	conv *converter.Converter
}

// NewOrganizer builds an organizer. The HTML converter is configured once;
// it is stateless across documents.
func NewOrganizer(cfg types.AssetsConfig) *Organizer {
	conv := converter.NewConverter(
		converter.WithPlugins(
			base.NewBasePlugin(),
			commonmark.NewCommonmarkPlugin(),
			table.NewTablePlugin(),
		),
	)
	return &Organizer{cfg: cfg, conv: conv}
}

// indexEntry is one line of the figure/table index, in content order.
type indexEntry struct {
	kind    string
	relPath string
	caption string
}

// Organize reads the content list from autoDir (MinerU's per-document
// output directory) and lays out the document under outDir. It returns the
// rewritten Markdown for downstream section extraction.
func (o *Organizer) Organize(autoDir, outDir, docID string, w io.Writer) (*Result, error) {
	items, err := LoadContentList(autoDir, docID)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	res := &Result{}
	renames := map[string]string{}
	var index []indexEntry

	figSeq, tblSeq, formSeq := 0, 0, 0
	for _, item := range items {
		switch item.Type {
		case ItemImage:
			if !o.cfg.Figures {
				continue
			}
			figSeq++
			name := figureName(item.ImgCaption, figSeq)
			rel, err := o.copyAsset(autoDir, outDir, DirFigures, item.ImgPath, name)
			if err != nil {
				fmt.Fprintf(w, "assets: skipping figure: %v\n", err)
				continue
			}
			res.Figures++
			renames[item.ImgPath] = rel
			index = append(index, indexEntry{"Figure", rel, caption(item.ImgCaption)})

		case ItemTable:
			if !o.cfg.Tables {
				continue
			}
			tblSeq++
			name := tableName(item.TableCaption, tblSeq)
			if item.ImgPath != "" {
				rel, err := o.copyAsset(autoDir, outDir, DirTables, item.ImgPath, name+ext(item.ImgPath))
				if err != nil {
					fmt.Fprintf(w, "assets: skipping table image: %v\n", err)
				} else {
					renames[item.ImgPath] = rel
					index = append(index, indexEntry{"Table", rel, caption(item.TableCaption)})
				}
			}
			if item.TableBody != "" {
				if err := o.writeTableMarkdown(outDir, name, item); err != nil {
					fmt.Fprintf(w, "assets: table %s: %v\n", name, err)
				}
			}
			res.Tables++

		case ItemEquation:
			if !o.cfg.Formulas {
				continue
			}
			formSeq++
			name := fmt.Sprintf("formula_%d", formSeq)
			if item.ImgPath != "" {
				rel, err := o.copyAsset(autoDir, outDir, DirFormulas, item.ImgPath, name+ext(item.ImgPath))
				if err != nil {
					fmt.Fprintf(w, "assets: skipping formula image: %v\n", err)
				} else {
					renames[item.ImgPath] = rel
				}
			}
			if item.Text != "" {
				path := filepath.Join(outDir, DirFormulas, name+".tex")
				if err := writeFileEnsuring(path, []byte(item.Text+"\n")); err != nil {
					fmt.Fprintf(w, "assets: formula %s: %v\n", name, err)
				}
			}
			res.Formulas++
		}
	}

	if o.cfg.Text {
		md, err := o.rewriteDocument(autoDir, outDir, docID, renames)
		if err != nil {
			return nil, err
		}
		res.Markdown = md
	}

	if o.cfg.Index && len(index) > 0 {
		if err := writeIndex(outDir, docID, index); err != nil {
			return nil, err
		}
	}

	fmt.Fprintf(w, "assets: %d figure(s), %d table(s), %d formula(s)\n",
		res.Figures, res.Tables, res.Formulas)
	return res, nil
}

// copyAsset copies one raw image into outDir/<subdir>/<name> and returns
// the path relative to outDir.
func (o *Organizer) copyAsset(autoDir, outDir, subdir, imgPath, name string) (string, error) {
	src := filepath.Join(autoDir, filepath.FromSlash(imgPath))
	rel := subdir + "/" + name
	dst := filepath.Join(outDir, subdir, name)
	if err := copyFile(src, dst); err != nil {
		return "", err
	}
	return rel, nil
}

// writeTableMarkdown converts a table's HTML body to Markdown and writes it
// next to the table image, caption first.
func (o *Organizer) writeTableMarkdown(outDir, name string, item ContentItem) error {
	md, err := o.conv.ConvertString(item.TableBody)
	if err != nil {
		return fmt.Errorf("converting table body: %w", err)
	}

	var sb strings.Builder
	if c := caption(item.TableCaption); c != "" {
		fmt.Fprintf(&sb, "%s\n\n", c)
	}
	sb.WriteString(strings.TrimSpace(md))
	sb.WriteString("\n")

	path := filepath.Join(outDir, DirTables, name+".md")
	return writeFileEnsuring(path, []byte(sb.String()))
}

// rewriteDocument rewrites image references in the raw Markdown to the
// organized layout and writes the result to outDir.
func (o *Organizer) rewriteDocument(autoDir, outDir, docID string, renames map[string]string) (string, error) {
	raw, err := os.ReadFile(filepath.Join(autoDir, docID+".md"))
	if os.IsNotExist(err) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("reading raw markdown: %w", err)
	}

	md := RewriteMarkdown(string(raw), renames)
	out := filepath.Join(outDir, docID+".md")
	if err := os.WriteFile(out, []byte(md), 0o644); err != nil {
		return "", fmt.Errorf("writing document markdown: %w", err)
	}
	return md, nil
}

// RewriteMarkdown replaces raw image paths with their organized
// counterparts. Paths not present in renames are left alone.
func RewriteMarkdown(md string, renames map[string]string) string {
	for from, to := range renames {
		md = strings.ReplaceAll(md, from, to)
	}
	return md
}

// assetDirRe matches Markdown link targets pointing at the organized asset
// directories from within the document's own directory.
var assetDirRe = regexp.MustCompile(`\((?:\./)?(Figure|Tables|Formula)/`)

// FixRelativePaths adjusts asset links for content that is written one
// directory below the document (the Sections/ files), so images still
// resolve.
func FixRelativePaths(body string) string {
	return assetDirRe.ReplaceAllString(body, "(../$1/")
}

// figureName derives Fig.N.jpg from the caption when it carries a figure
// number, falling back to the content-order sequence.
func figureName(captions []string, seq int) string {
	if m := figureNumRe.FindStringSubmatch(caption(captions)); m != nil {
		return fmt.Sprintf("Fig.%s.jpg", m[1])
	}
	return fmt.Sprintf("image_%d.jpg", seq)
}

// tableName derives Table_N (no extension) from the caption, falling back
// to the content-order sequence.
func tableName(captions []string, seq int) string {
	if m := tableNumRe.FindStringSubmatch(caption(captions)); m != nil {
		return "Table_" + m[1]
	}
	return fmt.Sprintf("Table_%d", seq)
}

func caption(parts []string) string {
	return strings.TrimSpace(strings.Join(parts, " "))
}

func ext(path string) string {
	if e := filepath.Ext(path); e != "" {
		return e
	}
	return ".jpg"
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}

func writeFileEnsuring(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// writeIndex writes the figure/table index in content order.
func writeIndex(outDir, docID string, entries []indexEntry) error {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# Figures and Tables: %s\n\n", docID)
	for _, e := range entries {
		label := e.caption
		if label == "" {
			label = e.relPath
		}
		fmt.Fprintf(&sb, "- **%s** [%s](%s)\n", e.kind, label, e.relPath)
	}
	return os.WriteFile(filepath.Join(outDir, IndexFile), []byte(sb.String()), 0o644)
}
