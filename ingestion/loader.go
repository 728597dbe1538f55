package ingestion

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
)

// charsPerPage estimates page counts for formats without native pagination.
const charsPerPage = 3000

// SourceDocument is one extractable unit of a loaded file. Paginated
// formats produce one document per page; flat formats produce a single
// document with an estimated TotalPages.
type SourceDocument struct {
	Text       string
	FileName   string
	FileType   string
	PageNumber int // 1-based; 0 for formats without pages
	TotalPages int
}

// Load extracts text from the file at path. Supported extensions are .pdf,
// .docx, and .txt (case-insensitive).
func Load(path string) ([]SourceDocument, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return loadPDF(path)
	case ".docx":
		return loadDOCX(path)
	case ".txt":
		return loadText(path)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFileType, filepath.Ext(path))
	}
}

// LoadDirectory walks root and loads every supported file found. Files with
// unsupported extensions are skipped, not errors.
func LoadDirectory(root string) ([]SourceDocument, error) {
	var docs []SourceDocument

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		loaded, err := Load(path)
		if err != nil {
			if errors.Is(err, ErrUnsupportedFileType) {
				return nil
			}
			return fmt.Errorf("failed to load %s: %w", path, err)
		}
		docs = append(docs, loaded...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return docs, nil
}

func loadPDF(path string) ([]SourceDocument, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return nil, err
	}

	reader, err := pdf.NewReader(f, stat.Size())
	if err != nil {
		return nil, fmt.Errorf("failed to parse PDF: %w", err)
	}

	fileName := filepath.Base(path)
	numPages := reader.NumPage()

	var docs []SourceDocument
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("failed to extract page %d: %w", i, err)
		}
		if strings.TrimSpace(text) == "" {
			continue
		}
		docs = append(docs, SourceDocument{
			Text:       text,
			FileName:   fileName,
			FileType:   "pdf",
			PageNumber: i,
			TotalPages: numPages,
		})
	}
	if len(docs) == 0 {
		return nil, ErrEmptyDocument
	}
	return docs, nil
}

func loadDOCX(path string) ([]SourceDocument, error) {
	r, err := docx.ReadDocxFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to parse DOCX: %w", err)
	}
	defer r.Close()

	text := r.Editable().GetContent()
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyDocument
	}

	return []SourceDocument{{
		Text:       text,
		FileName:   filepath.Base(path),
		FileType:   "docx",
		TotalPages: estimatePages(text),
	}}, nil
}

func loadText(path string) ([]SourceDocument, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	text := string(data)
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyDocument
	}

	return []SourceDocument{{
		Text:       text,
		FileName:   filepath.Base(path),
		FileType:   "txt",
		TotalPages: estimatePages(text),
	}}, nil
}

// estimatePages approximates a page count for formats without pagination.
func estimatePages(text string) int {
	pages := (len(text) + charsPerPage - 1) / charsPerPage
	if pages < 1 {
		pages = 1
	}
	return pages
}
