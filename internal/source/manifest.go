package source

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"litreview/internal/models"
	"litreview/internal/util"
)

// LoadManifest reads a JSON document manifest: either a single document
// object or an array of documents. Missing ids are filled with the content
// hash of the file; chunk indexes are assigned where absent.
func LoadManifest(path string) ([]models.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}

	var docs []models.Document
	if err := json.Unmarshal(data, &docs); err != nil {
		var single models.Document
		if err2 := json.Unmarshal(data, &single); err2 != nil {
			return nil, fmt.Errorf("parse manifest %s: %w", path, err)
		}
		docs = []models.Document{single}
	}

	out := docs[:0]
	for i := range docs {
		doc := docs[i]
		if len(doc.Chunks) == 0 && strings.TrimSpace(doc.Content) == "" {
			log.Printf("manifest %s: skipping document %q with no chunks or content", path, doc.Filename)
			continue
		}
		doc.Content = util.SanitizeText(doc.Content)
		if doc.ID == "" {
			doc.ID = util.SHA256Hex(data)[:16] + fmt.Sprintf("_%d", i)
		}
		if doc.Filename == "" {
			doc.Filename = filepath.Base(path)
		}
		for j := range doc.Chunks {
			doc.Chunks[j].Text = util.SanitizeText(doc.Chunks[j].Text)
		}
		out = append(out, doc)
	}
	return out, nil
}

// LoadDir gathers all review inputs under root: *.json manifests and *.pdf
// files, in lexical filename order so runs over the same directory are
// deterministic. Files that fail to load are skipped with a diagnostic.
func LoadDir(root string) ([]models.Document, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("read input dir: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	var docs []models.Document
	for _, name := range names {
		path := filepath.Join(root, name)
		switch strings.ToLower(filepath.Ext(name)) {
		case ".json":
			loaded, err := LoadManifest(path)
			if err != nil {
				log.Printf("skipping %s: %v", path, err)
				continue
			}
			docs = append(docs, loaded...)
		case ".pdf":
			doc, err := LoadPDF(path)
			if err != nil {
				log.Printf("skipping %s: %v", path, err)
				continue
			}
			docs = append(docs, doc)
		}
	}
	return docs, nil
}
