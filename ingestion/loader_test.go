package ingestion

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// writePDF writes a minimal well-formed PDF with one line of text per page.
func writePDF(t *testing.T, dir, name string, pages []string) string {
	t.Helper()

	// Objects: 1 catalog, 2 page tree, 3 font, then a page and a content
	// stream per entry in pages.
	kids := make([]string, len(pages))
	for i := range pages {
		kids[i] = fmt.Sprintf("%d 0 R", 4+2*i)
	}
	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), len(pages)),
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>",
	}
	for i, text := range pages {
		content := fmt.Sprintf("BT /F1 12 Tf 72 720 Td (%s) Tj ET", text)
		objects = append(objects,
			fmt.Sprintf("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] "+
				"/Resources << /Font << /F1 3 0 R >> >> /Contents %d 0 R >>", 5+2*i),
			fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(content), content),
		)
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(objects)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n",
		len(objects)+1, xref)

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
	return path
}

func TestLoadText(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "notes.txt", "some plain text content")

	docs, err := Load(path)
	require.NoError(t, err)
	require.Len(t, docs, 1)

	doc := docs[0]
	assert.Equal(t, "some plain text content", doc.Text)
	assert.Equal(t, "notes.txt", doc.FileName)
	assert.Equal(t, "txt", doc.FileType)
	assert.Equal(t, 0, doc.PageNumber)
	assert.Equal(t, 1, doc.TotalPages)
}

func TestLoadTextEstimatesPages(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "long.txt", strings.Repeat("a", 7000))

	docs, err := Load(path)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, 3, docs[0].TotalPages)
}

func TestLoadPDFPerPage(t *testing.T) {
	dir := t.TempDir()
	path := writePDF(t, dir, "manual.pdf", []string{
		"Installation steps come first",
		"Configuration options follow",
		"Troubleshooting advice closes the manual",
	})

	docs, err := Load(path)
	require.NoError(t, err)
	require.Len(t, docs, 3)

	for i, doc := range docs {
		assert.Equal(t, "manual.pdf", doc.FileName)
		assert.Equal(t, "pdf", doc.FileType)
		assert.Equal(t, i+1, doc.PageNumber)
		assert.Equal(t, 3, doc.TotalPages)
	}
	assert.Contains(t, docs[0].Text, "Installation")
	assert.Contains(t, docs[2].Text, "Troubleshooting")
}

func TestLoadPDFSkipsBlankPages(t *testing.T) {
	dir := t.TempDir()
	path := writePDF(t, dir, "gappy.pdf", []string{
		"Only page with content",
		"",
	})

	docs, err := Load(path)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, 1, docs[0].PageNumber)
	assert.Equal(t, 2, docs[0].TotalPages)
}

func TestLoadMalformedPDF(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "broken.pdf", "not a pdf at all")

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadEmptyText(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "empty.txt", "   \n\t ")

	_, err := Load(path)
	assert.ErrorIs(t, err, ErrEmptyDocument)
}

func TestLoadUnsupportedExtension(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "image.png", "not really an image")

	_, err := Load(path)
	assert.ErrorIs(t, err, ErrUnsupportedFileType)
}

func TestLoadCaseInsensitiveExtension(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "NOTES.TXT", "uppercase extension")

	docs, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, docs, 1)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.txt"))
	assert.Error(t, err)
}

func TestLoadDirectory(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "one.txt", "first file")
	writeFile(t, dir, "two.txt", "second file")
	writeFile(t, dir, "skip.png", "unsupported, skipped")

	sub := filepath.Join(dir, "nested")
	require.NoError(t, os.Mkdir(sub, 0o755))
	writeFile(t, sub, "three.txt", "nested file")

	docs, err := LoadDirectory(dir)
	require.NoError(t, err)
	assert.Len(t, docs, 3)
}

func TestEstimatePages(t *testing.T) {
	assert.Equal(t, 1, estimatePages(""))
	assert.Equal(t, 1, estimatePages(strings.Repeat("a", 3000)))
	assert.Equal(t, 2, estimatePages(strings.Repeat("a", 3001)))
}
