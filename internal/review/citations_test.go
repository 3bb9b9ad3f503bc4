package review

import (
	"fmt"
	"reflect"
	"strings"
	"testing"
)

func analysisWithCitations(filename string, uses []CitationUse) DocumentAnalysis {
	return DocumentAnalysis{
		Filename: filename,
		DocID:    filename,
		Parsed:   &StructuredExtract{DocID: filename, Title: "T " + filename, CitationsUsed: uses},
	}
}

func TestExtractCitationsRoundTrip(t *testing.T) {
	tokens := []CitationToken{
		{DocIndex: 1, Page: 3, ChunkID: "chunk_2"},
		{DocIndex: 2, Page: 14, ChunkID: "chunk_3"},
		{DocIndex: 12, Page: 140, ChunkID: "chunk_0"},
	}
	var b strings.Builder
	for _, tok := range tokens {
		b.WriteString("some prose ")
		b.WriteString(FormatCitation(tok.DocIndex, tok.Page, tok.ChunkID))
		b.WriteString(". ")
	}
	got := ExtractCitations(b.String())
	if len(got) != len(tokens) {
		t.Fatalf("extracted %d tokens, want %d", len(got), len(tokens))
	}
	for i, tok := range tokens {
		if got[i].DocIndex != tok.DocIndex || got[i].Page != tok.Page || got[i].ChunkID != tok.ChunkID {
			t.Errorf("token %d = %+v, want %+v", i, got[i], tok)
		}
		if got[i].Raw != FormatCitation(tok.DocIndex, tok.Page, tok.ChunkID) {
			t.Errorf("token %d raw = %q", i, got[i].Raw)
		}
	}
	if got[0].Position >= got[1].Position || got[1].Position >= got[2].Position {
		t.Error("positions not monotonically increasing")
	}
}

func TestExtractCitationsGrammar(t *testing.T) {
	cases := []struct {
		text string
		want int
	}{
		{"[Doc2 • p14 • chunk_3]", 1},
		{"[Doc2•p14•chunk_3]", 1},
		{"[Doc2   •   p14   •   chunk_3]", 1},
		{"[doc2 • p14 • chunk_3]", 0},
		{"[Doc2 • P14 • chunk_3]", 0},
		{"[Doc2 - p14 - chunk_3]", 0},
		{"[Doc2 • p14 • chunk_x]", 0},
		{"no citations at all", 0},
	}
	for _, c := range cases {
		if got := len(ExtractCitations(c.text)); got != c.want {
			t.Errorf("ExtractCitations(%q) found %d, want %d", c.text, got, c.want)
		}
	}
}

func TestLedgerLookupAndValidity(t *testing.T) {
	analyses := []DocumentAnalysis{
		analysisWithCitations("a.pdf", []CitationUse{
			{ChunkID: "chunk_0", Page: 1, Excerpt: "evidence"},
			{ChunkID: "chunk_4", Page: 7},
		}),
		analysisWithCitations("b.pdf", []CitationUse{{ChunkID: "chunk_1", Page: 2}}),
	}
	l := NewLedger(analyses)

	if l.Size() != 3 {
		t.Fatalf("ledger size = %d, want 3", l.Size())
	}
	if !l.IsValid(CitationToken{DocIndex: 1, ChunkID: "chunk_4"}) {
		t.Error("(1, chunk_4) should be valid")
	}
	if l.IsValid(CitationToken{DocIndex: 2, ChunkID: "chunk_4"}) {
		t.Error("(2, chunk_4) should be invalid")
	}
	if l.IsValid(CitationToken{DocIndex: 3, ChunkID: "chunk_0"}) {
		t.Error("unknown doc index should be invalid")
	}
	rec, ok := l.Lookup(1, "chunk_0")
	if !ok || rec.Excerpt != "evidence" {
		t.Errorf("Lookup(1, chunk_0) = %+v, %v", rec, ok)
	}
}

func TestLedgerKeyResultFallback(t *testing.T) {
	longResult := "42% improvement over the previous state of the art baseline"
	a := DocumentAnalysis{
		Filename: "c.pdf",
		Parsed: &StructuredExtract{
			KeyResults:    []KeyResult{{Text: longResult, ChunkID: "chunk_9", Page: 5}, {Text: "no chunk ref"}},
			CitationsUsed: []CitationUse{},
		},
	}
	l := NewLedger([]DocumentAnalysis{a})
	if l.Size() != 1 {
		t.Fatalf("ledger size = %d, want 1", l.Size())
	}
	rec, ok := l.Lookup(1, "chunk_9")
	if !ok {
		t.Fatal("expected fallback record for chunk_9")
	}
	if rec.Section != "Results" || rec.Relevance != "high" || rec.Page != 5 {
		t.Errorf("fallback record = %+v", rec)
	}
	if rec.Excerpt != longResult[:30] {
		t.Errorf("excerpt = %q, want the first 30 characters", rec.Excerpt)
	}
}

func TestCountAndGroupByDoc(t *testing.T) {
	text := "x [Doc1 • p1 • chunk_0] y [Doc2 • p2 • chunk_1] z [Doc1 • p3 • chunk_2]"
	tokens := ExtractCitations(text)

	counts := CountByDoc(tokens)
	if !reflect.DeepEqual(counts, map[int]int{1: 2, 2: 1}) {
		t.Errorf("CountByDoc = %v", counts)
	}
	groups := GroupByDoc(tokens)
	if len(groups[1]) != 2 || len(groups[2]) != 1 {
		t.Errorf("GroupByDoc sizes = %d, %d", len(groups[1]), len(groups[2]))
	}
}

func TestTopCitedRankingAndTies(t *testing.T) {
	var b strings.Builder
	emitN := func(doc int, chunk string, n int) {
		for i := 0; i < n; i++ {
			fmt.Fprintf(&b, "%s ", FormatCitation(doc, 1, chunk))
		}
	}
	emitN(1, "chunk_0", 1)
	emitN(2, "chunk_1", 3)
	emitN(3, "chunk_2", 1)

	top := TopCited(ExtractCitations(b.String()), 2)
	if len(top) != 2 {
		t.Fatalf("len = %d, want 2", len(top))
	}
	if top[0].DocIndex != 2 || top[0].Count != 3 {
		t.Errorf("top[0] = %+v", top[0])
	}
	// tie between doc 1 and doc 3 resolves to first seen
	if top[1].DocIndex != 1 {
		t.Errorf("top[1] = %+v, want doc 1 first-seen", top[1])
	}
}

func TestUncitedDocuments(t *testing.T) {
	analyses := []DocumentAnalysis{
		analysisWithCitations("a.pdf", []CitationUse{{ChunkID: "chunk_0", Page: 1}}),
		analysisWithCitations("b.pdf", []CitationUse{{ChunkID: "chunk_0", Page: 1}}),
		analysisWithCitations("c.pdf", []CitationUse{{ChunkID: "chunk_0", Page: 1}}),
	}
	l := NewLedger(analyses)
	tokens := ExtractCitations("intro [Doc2 • p1 • chunk_0] done")

	uncited := l.UncitedDocuments(tokens)
	if len(uncited) != 2 {
		t.Fatalf("uncited = %d, want 2", len(uncited))
	}
	if uncited[0].DocIndex != 1 || uncited[1].DocIndex != 3 {
		t.Errorf("uncited indices = %d, %d", uncited[0].DocIndex, uncited[1].DocIndex)
	}
	if uncited[0].Filename != "a.pdf" || uncited[0].Title != "T a.pdf" {
		t.Errorf("uncited[0] = %+v", uncited[0])
	}
}
