package review

import (
	"fmt"
	"strconv"
	"strings"
)

// NormalizeExtract coerces a decoded JSON object into a StructuredExtract.
// Models routinely return a bare string where an array is expected, a number
// where a string is expected, or key_results as plain strings; all of those
// shapes are resolved here so downstream code only ever sees one form.
func NormalizeExtract(obj map[string]any, docID string) *StructuredExtract {
	e := &StructuredExtract{
		DocID:            stringField(obj["doc_id"], docID),
		Title:            stringField(obj["title"], NotFound),
		Year:             yearField(obj["year"]),
		Authors:          stringList(obj["authors"]),
		Domain:           stringField(obj["domain"], NotFound),
		ResearchQuestion: stringField(obj["research_question"], NotFound),
		Methodology:      stringList(obj["methodology"]),
		KeyResults:       keyResultList(obj["key_results"]),
		Limitations:      stringList(obj["limitations"]),
		CitationsUsed:    citationList(obj["citations_used"]),
	}
	if e.DocID == "" || e.DocID == NotFound {
		e.DocID = docID
	}
	return e
}

// FallbackExtract is the minimal record used when extraction is exhausted:
// every field holds the "not found" literal and citations_used is empty.
func FallbackExtract(docID string) *StructuredExtract {
	return &StructuredExtract{
		DocID:            docID,
		Title:            NotFound,
		Year:             NotFound,
		Authors:          []string{NotFound},
		Domain:           NotFound,
		ResearchQuestion: NotFound,
		Methodology:      []string{NotFound},
		KeyResults:       []KeyResult{{Text: NotFound}},
		Limitations:      []string{NotFound},
		CitationsUsed:    []CitationUse{},
	}
}

func stringField(v any, fallback string) string {
	switch t := v.(type) {
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return fallback
		}
		return s
	case float64:
		return formatNumber(t)
	case bool:
		return strconv.FormatBool(t)
	case nil:
		return fallback
	default:
		return fallback
	}
}

func yearField(v any) string {
	switch t := v.(type) {
	case float64:
		return strconv.Itoa(int(t))
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return NotFound
		}
		return s
	default:
		return NotFound
	}
}

// stringList accepts an array, a comma-separated string, or a scalar, and
// always returns a flat []string.
func stringList(v any) []string {
	switch t := v.(type) {
	case []any:
		out := make([]string, 0, len(t))
		for _, item := range t {
			if s := anyToString(item); s != "" {
				out = append(out, s)
			}
		}
		return out
	case string:
		s := strings.TrimSpace(t)
		if s == "" || s == NotFound {
			return []string{NotFound}
		}
		if strings.Contains(s, ",") {
			parts := strings.Split(s, ",")
			out := make([]string, 0, len(parts))
			for _, p := range parts {
				if p = strings.TrimSpace(p); p != "" {
					out = append(out, p)
				}
			}
			return out
		}
		return []string{s}
	case nil:
		return []string{}
	default:
		if s := anyToString(t); s != "" {
			return []string{s}
		}
		return []string{}
	}
}

func keyResultList(v any) []KeyResult {
	switch t := v.(type) {
	case []any:
		out := make([]KeyResult, 0, len(t))
		for _, item := range t {
			switch r := item.(type) {
			case string:
				if s := strings.TrimSpace(r); s != "" {
					out = append(out, KeyResult{Text: s})
				}
			case map[string]any:
				kr := KeyResult{
					Text:    stringField(coalesce(r["text"], r["result"]), ""),
					ChunkID: stringField(r["chunk_id"], ""),
					Page:    intField(r["page"]),
				}
				if kr.Text != "" || kr.ChunkID != "" {
					out = append(out, kr)
				}
			}
		}
		return out
	case string:
		if s := strings.TrimSpace(t); s != "" {
			return []KeyResult{{Text: s}}
		}
		return []KeyResult{}
	default:
		return []KeyResult{}
	}
}

func citationList(v any) []CitationUse {
	arr, ok := v.([]any)
	if !ok {
		return []CitationUse{}
	}
	out := make([]CitationUse, 0, len(arr))
	for _, item := range arr {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		cu := CitationUse{
			ChunkID:   stringField(m["chunk_id"], ""),
			Page:      intField(m["page"]),
			Section:   stringField(m["section"], ""),
			Excerpt:   stringField(coalesce(m["text_excerpt"], m["excerpt"]), ""),
			Relevance: stringField(m["relevance"], ""),
		}
		if cu.ChunkID != "" {
			out = append(out, cu)
		}
	}
	return out
}

func intField(v any) int {
	switch t := v.(type) {
	case float64:
		return int(t)
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(t))
		if err != nil {
			return 0
		}
		return n
	default:
		return 0
	}
}

func anyToString(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		return formatNumber(t)
	case map[string]any:
		for _, key := range []string{"text", "name", "value"} {
			if s, ok := t[key].(string); ok && strings.TrimSpace(s) != "" {
				return strings.TrimSpace(s)
			}
		}
		return ""
	default:
		return ""
	}
}

func formatNumber(f float64) string {
	if f == float64(int64(f)) {
		return strconv.FormatInt(int64(f), 10)
	}
	return fmt.Sprintf("%g", f)
}

func coalesce(vals ...any) any {
	for _, v := range vals {
		if v != nil {
			return v
		}
	}
	return nil
}
