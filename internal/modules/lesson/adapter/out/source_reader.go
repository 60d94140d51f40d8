package out

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	lessonout "robotutor/internal/modules/lesson/port/out"
	apperrors "robotutor/internal/platform/errors"

	"rsc.io/pdf"
)

// FileSourceReader extracts plannable text from local lesson sources.
// PDFs go through rsc.io/pdf; anything else is read as plain text.
type FileSourceReader struct{}

func NewFileSourceReader() lessonout.SourceReader {
	return &FileSourceReader{}
}

func (r *FileSourceReader) Extract(_ context.Context, path string) (string, error) {
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("%w: source %s", apperrors.ErrNotFound, path)
	}
	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		return extractPDF(path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read source: %w", err)
	}
	return string(data), nil
}

func extractPDF(path string) (string, error) {
	doc, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	var pages []string
	for page := 1; page <= doc.NumPage(); page++ {
		p := doc.Page(page)
		if p.V.IsNull() {
			continue
		}
		content := p.Content()
		parts := make([]string, 0, len(content.Text))
		for _, text := range content.Text {
			if strings.TrimSpace(text.S) == "" {
				continue
			}
			parts = append(parts, text.S)
		}
		if len(parts) > 0 {
			pages = append(pages, strings.Join(parts, " "))
		}
	}
	return strings.Join(pages, "\n\n"), nil
}
