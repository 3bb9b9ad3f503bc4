package review

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
)

// citationRe is the exact citation token grammar. The bullet is U+2022 and
// the Doc/p/chunk_ literals are case-sensitive; only the whitespace around
// the bullets is flexible.
var citationRe = regexp.MustCompile(`\[Doc(\d+)\s*•\s*p(\d+)\s*•\s*(chunk_\d+)\]`)

// FormatCitation renders the canonical token form, e.g. [Doc2 • p14 • chunk_3].
func FormatCitation(docIndex, page int, chunkID string) string {
	return fmt.Sprintf("[Doc%d • p%d • %s]", docIndex, page, chunkID)
}

// ExtractCitations scans generated text for citation tokens, preserving
// order of appearance. Position is the byte offset of the match start.
func ExtractCitations(text string) []CitationToken {
	matches := citationRe.FindAllStringSubmatchIndex(text, -1)
	tokens := make([]CitationToken, 0, len(matches))
	for _, m := range matches {
		docIdx, _ := strconv.Atoi(text[m[2]:m[3]])
		page, _ := strconv.Atoi(text[m[4]:m[5]])
		tokens = append(tokens, CitationToken{
			Raw:      text[m[0]:m[1]],
			DocIndex: docIdx,
			Page:     page,
			ChunkID:  text[m[6]:m[7]],
			Position: m[0],
		})
	}
	return tokens
}

type ledgerKey struct {
	docIndex int
	chunkID  string
}

// Key-result fallback records carry fixed metadata: the chunk came from the
// results of the paper and the extraction already judged it citable.
const (
	keyResultSection    = "Results"
	keyResultRelevance  = "high"
	keyResultExcerptLen = 30
)

// Ledger maps (docIndex, chunkID) pairs to citable evidence metadata. Built
// once from the analyses and read-only afterward, so queries need no locking.
type Ledger struct {
	records  map[ledgerKey]CitationRecord
	analyses []DocumentAnalysis
}

// NewLedger ingests citations_used entries as the primary source. For
// documents that reported none, key_results carrying a chunk reference serve
// as a lower-confidence fallback so the document stays citable at all.
func NewLedger(analyses []DocumentAnalysis) *Ledger {
	l := &Ledger{
		records:  make(map[ledgerKey]CitationRecord),
		analyses: analyses,
	}
	for i := range analyses {
		docIndex := i + 1
		parsed := analyses[i].Parsed
		if parsed == nil {
			continue
		}
		if len(parsed.CitationsUsed) > 0 {
			for _, cu := range parsed.CitationsUsed {
				if cu.ChunkID == "" {
					continue
				}
				l.put(CitationRecord{
					DocIndex:  docIndex,
					Page:      cu.Page,
					ChunkID:   cu.ChunkID,
					Section:   cu.Section,
					Excerpt:   cu.Excerpt,
					Relevance: cu.Relevance,
				})
			}
			continue
		}
		for _, kr := range parsed.KeyResults {
			if kr.ChunkID == "" {
				continue
			}
			excerpt := kr.Text
			if r := []rune(excerpt); len(r) > keyResultExcerptLen {
				excerpt = string(r[:keyResultExcerptLen])
			}
			l.put(CitationRecord{
				DocIndex:  docIndex,
				Page:      kr.Page,
				ChunkID:   kr.ChunkID,
				Section:   keyResultSection,
				Excerpt:   excerpt,
				Relevance: keyResultRelevance,
			})
		}
	}
	return l
}

func (l *Ledger) put(rec CitationRecord) {
	key := ledgerKey{docIndex: rec.DocIndex, chunkID: rec.ChunkID}
	if _, exists := l.records[key]; exists {
		return
	}
	l.records[key] = rec
}

func (l *Ledger) Lookup(docIndex int, chunkID string) (CitationRecord, bool) {
	rec, ok := l.records[ledgerKey{docIndex: docIndex, chunkID: chunkID}]
	return rec, ok
}

// IsValid reports whether the token resolves to a ledger entry.
func (l *Ledger) IsValid(tok CitationToken) bool {
	_, ok := l.records[ledgerKey{docIndex: tok.DocIndex, chunkID: tok.ChunkID}]
	return ok
}

func (l *Ledger) Size() int {
	return len(l.records)
}

func (l *Ledger) DocumentCount() int {
	return len(l.analyses)
}

// Records returns the ledger entries sorted by document index then chunk id.
func (l *Ledger) Records() []CitationRecord {
	out := make([]CitationRecord, 0, len(l.records))
	for _, rec := range l.records {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].DocIndex != out[j].DocIndex {
			return out[i].DocIndex < out[j].DocIndex
		}
		return out[i].ChunkID < out[j].ChunkID
	})
	return out
}

// UncitedDocuments lists the documents whose index never appears among the
// extracted tokens, valid or not.
func (l *Ledger) UncitedDocuments(tokens []CitationToken) []UncitedDocument {
	cited := make(map[int]struct{})
	for _, t := range tokens {
		cited[t.DocIndex] = struct{}{}
	}
	var out []UncitedDocument
	for i := range l.analyses {
		docIndex := i + 1
		if _, ok := cited[docIndex]; ok {
			continue
		}
		title := ""
		if l.analyses[i].Parsed != nil {
			title = l.analyses[i].Parsed.Title
		}
		out = append(out, UncitedDocument{
			DocIndex: docIndex,
			Filename: l.analyses[i].Filename,
			Title:    title,
		})
	}
	return out
}

func GroupByDoc(tokens []CitationToken) map[int][]CitationToken {
	out := make(map[int][]CitationToken)
	for _, t := range tokens {
		out[t.DocIndex] = append(out[t.DocIndex], t)
	}
	return out
}

func CountByDoc(tokens []CitationToken) map[int]int {
	out := make(map[int]int)
	for _, t := range tokens {
		out[t.DocIndex]++
	}
	return out
}

// TopCited ranks distinct (docIndex, chunkID) pairs by occurrence count,
// descending; ties keep first-seen order. The result is truncated to n.
func TopCited(tokens []CitationToken, n int) []TopChunk {
	counts := make(map[ledgerKey]int)
	var order []ledgerKey
	for _, t := range tokens {
		key := ledgerKey{docIndex: t.DocIndex, chunkID: t.ChunkID}
		if counts[key] == 0 {
			order = append(order, key)
		}
		counts[key]++
	}
	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})
	if n >= 0 && len(order) > n {
		order = order[:n]
	}
	out := make([]TopChunk, 0, len(order))
	for _, key := range order {
		out = append(out, TopChunk{
			DocIndex: key.docIndex,
			ChunkID:  key.chunkID,
			Count:    counts[key],
		})
	}
	return out
}
