// Package source loads review input documents from the filesystem: JSON
// chunk manifests produced by an upstream ingestion step, or raw PDFs
// chunked locally.
package source

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"

	"litreview/internal/models"
	"litreview/internal/util"
)

var ErrNoExtractableText = errors.New("no extractable text in document")

const (
	pdfChunkSize    = 1200
	pdfChunkOverlap = 150
)

// LoadPDF extracts per-page text from a PDF and windows long pages into
// chunks. Page numbers are 1-based; the document id is the content hash so
// re-ingesting the same file is idempotent.
func LoadPDF(path string) (models.Document, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return models.Document{}, fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	var chunks []models.Chunk
	chunkIndex := 0
	for pageNum := 1; pageNum <= r.NumPage(); pageNum++ {
		page := r.Page(pageNum)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		text = util.SanitizeText(strings.TrimSpace(text))
		if text == "" {
			continue
		}
		for _, part := range util.ChunkText(text, pdfChunkSize, pdfChunkOverlap) {
			chunks = append(chunks, models.Chunk{
				Text:       part,
				Page:       pageNum,
				ChunkIndex: chunkIndex,
			})
			chunkIndex++
		}
	}
	if len(chunks) == 0 {
		return models.Document{}, ErrNoExtractableText
	}

	id, err := hashFile(path)
	if err != nil {
		return models.Document{}, err
	}
	return models.Document{
		ID:       id,
		Filename: filepath.Base(path),
		Chunks:   chunks,
	}, nil
}

func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open for hashing: %w", err)
	}
	defer f.Close()
	sum, err := util.SHA256HexFromReader(f)
	if err != nil {
		return "", fmt.Errorf("hash %s: %w", path, err)
	}
	return sum, nil
}
