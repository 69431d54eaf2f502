// Package pdf provides a TextSource adapter that extracts plain text
// from PDF files in a documents directory.
package pdf

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/ledongthuc/pdf"

	"github.com/atticus-labs/lexrag/internal/core/domain"
	"github.com/atticus-labs/lexrag/internal/core/ports/driven"
	"github.com/atticus-labs/lexrag/internal/logger"
)

// Ensure Source implements the interface.
var _ driven.TextSource = (*Source)(nil)

// cacheDirName holds extracted plaintext next to the PDFs so repeated
// preparations skip extraction.
const cacheDirName = ".textcache"

// Source resolves document identifiers to text extracted from
// <dir>/<id>.pdf. Extraction results are cached as plaintext files and
// invalidated when the PDF is newer than its cache entry.
type Source struct {
	dir string
	mu  sync.Mutex
}

// NewSource creates a PDF text source over the given directory.
func NewSource(dir string) (*Source, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("pdf source directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("pdf source: %s is not a directory", dir)
	}
	return &Source{dir: dir}, nil
}

// Text returns the extracted text for documentID, serving the cached
// plaintext when it is still current. Returns domain.ErrNotFound when
// no matching PDF exists.
func (s *Source) Text(ctx context.Context, documentID string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if documentID == "" || documentID != filepath.Base(documentID) {
		return "", fmt.Errorf("document identifier %q: %w", documentID, domain.ErrInvalidInput)
	}

	name := documentID
	if !strings.EqualFold(filepath.Ext(name), ".pdf") {
		name += ".pdf"
	}
	pdfPath := filepath.Join(s.dir, name)

	pdfInfo, err := os.Stat(pdfPath)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("document %s: %w", documentID, domain.ErrNotFound)
		}
		return "", fmt.Errorf("stat %s: %w", pdfPath, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cachePath := filepath.Join(s.dir, cacheDirName, name+".txt")
	if cacheInfo, err := os.Stat(cachePath); err == nil && cacheInfo.ModTime().After(pdfInfo.ModTime()) {
		cached, err := os.ReadFile(cachePath)
		if err == nil {
			logger.Debug("Text source: cache hit for %s", documentID)
			return string(cached), nil
		}
	}

	text, err := extract(pdfPath)
	if err != nil {
		return "", fmt.Errorf("extract %s: %w", documentID, err)
	}

	if err := s.writeCache(cachePath, text); err != nil {
		// Extraction succeeded; a cache write failure is not fatal.
		logger.Warn("Text source: caching %s failed: %v", documentID, err)
	}

	return text, nil
}

func (s *Source) writeCache(path, text string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(text), 0600)
}

// extract pulls the plain text out of a PDF file.
func extract(path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open PDF: %w", err)
	}
	defer f.Close()

	b, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("failed to extract plain text: %w", err)
	}

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(b); err != nil {
		return "", fmt.Errorf("failed to read text: %w", err)
	}

	return buf.String(), nil
}
