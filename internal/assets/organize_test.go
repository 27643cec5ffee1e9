// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package assets

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pdiddy/paperminer/pkg/types"
)

func allAssets() types.AssetsConfig {
	return types.AssetsConfig{Text: true, Figures: true, Tables: true, Formulas: true, Index: true}
}

// writeMinerUOutput lays out a fake MinerU auto/ directory for docID.
func writeMinerUOutput(t *testing.T, autoDir, docID string, items []ContentItem, markdown string) {
	t.Helper()
	require := func(err error) {
		t.Helper()
		if err != nil {
			t.Fatal(err)
		}
	}

	require(os.MkdirAll(filepath.Join(autoDir, "images"), 0o755))
	for _, item := range items {
		if item.ImgPath == "" {
			continue
		}
		require(os.WriteFile(filepath.Join(autoDir, filepath.FromSlash(item.ImgPath)), []byte("jpegdata"), 0o644))
	}

	data, err := json.Marshal(items)
	require(err)
	require(os.WriteFile(filepath.Join(autoDir, docID+"_content_list.json"), data, 0o644))
	require(os.WriteFile(filepath.Join(autoDir, docID+".md"), []byte(markdown), 0o644))
}

func testItems() []ContentItem {
	return []ContentItem{
		{Type: ItemText, Text: "Introduction text.", PageIdx: 0},
		{Type: ItemImage, ImgPath: "images/aaa.jpg", ImgCaption: []string{"Fig. 3. Widget under load."}, PageIdx: 1},
		{Type: ItemImage, ImgPath: "images/bbb.jpg", PageIdx: 2},
		{
			Type: ItemTable, ImgPath: "images/ccc.jpg",
			TableCaption: []string{"Table 2 Measured failures"},
			TableBody:    "<table><tr><th>Load</th><th>Failures</th></tr><tr><td>10N</td><td>0</td></tr></table>",
			PageIdx:      3,
		},
		{Type: ItemEquation, ImgPath: "images/ddd.jpg", Text: "E = mc^2", PageIdx: 4},
	}
}

func TestOrganizeLayout(t *testing.T) {
	autoDir := t.TempDir()
	outDir := t.TempDir()
	md := "![](images/aaa.jpg)\n\n![](images/bbb.jpg)\n\n![](images/ccc.jpg)\n"
	writeMinerUOutput(t, autoDir, "paper1", testItems(), md)

	var out bytes.Buffer
	res, err := NewOrganizer(allAssets()).Organize(autoDir, outDir, "paper1", &out)
	if err != nil {
		t.Fatal(err)
	}

	if res.Figures != 2 || res.Tables != 1 || res.Formulas != 1 {
		t.Errorf("counts = %+v", res)
	}

	for _, rel := range []string{
		"Figure/Fig.3.jpg",
		"Figure/image_2.jpg",
		"Tables/Table_2.jpg",
		"Tables/Table_2.md",
		"Formula/formula_1.jpg",
		"Formula/formula_1.tex",
		"paper1.md",
		IndexFile,
	} {
		if _, err := os.Stat(filepath.Join(outDir, rel)); err != nil {
			t.Errorf("expected output %s: %v", rel, err)
		}
	}
}

func TestOrganizeRewritesMarkdown(t *testing.T) {
	autoDir := t.TempDir()
	outDir := t.TempDir()
	md := "See ![](images/aaa.jpg) and ![](images/ccc.jpg).\n"
	writeMinerUOutput(t, autoDir, "paper1", testItems(), md)

	var out bytes.Buffer
	res, err := NewOrganizer(allAssets()).Organize(autoDir, outDir, "paper1", &out)
	if err != nil {
		t.Fatal(err)
	}

	if !strings.Contains(res.Markdown, "Figure/Fig.3.jpg") {
		t.Errorf("figure path not rewritten: %q", res.Markdown)
	}
	if !strings.Contains(res.Markdown, "Tables/Table_2.jpg") {
		t.Errorf("table path not rewritten: %q", res.Markdown)
	}
	if strings.Contains(res.Markdown, "images/") {
		t.Errorf("raw image path survived: %q", res.Markdown)
	}
}

func TestOrganizeTableMarkdown(t *testing.T) {
	autoDir := t.TempDir()
	outDir := t.TempDir()
	writeMinerUOutput(t, autoDir, "paper1", testItems(), "body\n")

	var out bytes.Buffer
	if _, err := NewOrganizer(allAssets()).Organize(autoDir, outDir, "paper1", &out); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(filepath.Join(outDir, "Tables", "Table_2.md"))
	if err != nil {
		t.Fatal(err)
	}
	content := string(data)
	if !strings.Contains(content, "Table 2 Measured failures") {
		t.Error("caption missing from table markdown")
	}
	if !strings.Contains(content, "Load") || !strings.Contains(content, "10N") {
		t.Errorf("table cells missing: %q", content)
	}
}

func TestOrganizeDisabledFamilies(t *testing.T) {
	autoDir := t.TempDir()
	outDir := t.TempDir()
	writeMinerUOutput(t, autoDir, "paper1", testItems(), "body\n")

	cfg := types.AssetsConfig{Text: true}
	var out bytes.Buffer
	res, err := NewOrganizer(cfg).Organize(autoDir, outDir, "paper1", &out)
	if err != nil {
		t.Fatal(err)
	}

	if res.Figures != 0 || res.Tables != 0 || res.Formulas != 0 {
		t.Errorf("disabled families extracted: %+v", res)
	}
	if _, err := os.Stat(filepath.Join(outDir, DirFigures)); !os.IsNotExist(err) {
		t.Error("Figure/ created despite figures disabled")
	}
}

func TestOrganizeMissingContentList(t *testing.T) {
	var out bytes.Buffer
	_, err := NewOrganizer(allAssets()).Organize(t.TempDir(), t.TempDir(), "nope", &out)
	if err == nil {
		t.Error("missing content list did not error")
	}
}

func TestFigureName(t *testing.T) {
	tests := []struct {
		captions []string
		seq      int
		want     string
	}{
		{[]string{"Fig. 3. Widget under load."}, 1, "Fig.3.jpg"},
		{[]string{"Figure 12: Overview"}, 1, "Fig.12.jpg"},
		{[]string{"fig 7 something"}, 1, "Fig.7.jpg"},
		{nil, 4, "image_4.jpg"},
		{[]string{"A widget, unnumbered"}, 2, "image_2.jpg"},
	}
	for _, tt := range tests {
		if got := figureName(tt.captions, tt.seq); got != tt.want {
			t.Errorf("figureName(%v, %d) = %q, want %q", tt.captions, tt.seq, got, tt.want)
		}
	}
}

func TestTableName(t *testing.T) {
	tests := []struct {
		captions []string
		seq      int
		want     string
	}{
		{[]string{"Table 2 Measured failures"}, 1, "Table_2"},
		{[]string{"TABLE 10. Results"}, 1, "Table_10"},
		{nil, 3, "Table_3"},
	}
	for _, tt := range tests {
		if got := tableName(tt.captions, tt.seq); got != tt.want {
			t.Errorf("tableName(%v, %d) = %q, want %q", tt.captions, tt.seq, got, tt.want)
		}
	}
}

func TestFixRelativePaths(t *testing.T) {
	in := "See ![f](Figure/Fig.1.jpg) and ![t](./Tables/Table_1.jpg) and ![x](Formula/formula_1.jpg). Not a link: Figure/Fig.2.jpg"
	got := FixRelativePaths(in)

	for _, want := range []string{"(../Figure/Fig.1.jpg)", "(../Tables/Table_1.jpg)", "(../Formula/formula_1.jpg)"} {
		if !strings.Contains(got, want) {
			t.Errorf("missing %q in %q", want, got)
		}
	}
	if !strings.Contains(got, "link: Figure/Fig.2.jpg") {
		t.Error("non-link path rewritten")
	}
}

func TestRewriteMarkdown(t *testing.T) {
	md := "![](images/a.jpg) ![](images/b.jpg)"
	got := RewriteMarkdown(md, map[string]string{"images/a.jpg": "Figure/Fig.1.jpg"})
	if got != "![](Figure/Fig.1.jpg) ![](images/b.jpg)" {
		t.Errorf("got %q", got)
	}
}
