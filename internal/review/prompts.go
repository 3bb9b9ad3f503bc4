package review

import (
	"encoding/json"
	"fmt"
	"strings"

	"litreview/internal/models"
	"litreview/internal/providers"
)

const extractionSystemPrompt = `You are an academic assistant. Extract ONLY from the provided context. If information is missing, write "not found". Return JSON only.`

const synthesisSystemPrompt = `You are an Academic Researcher writing a literature review. Use ONLY the document JSON summaries provided below. Do not invent links, numbers, or citations that are not supported by the summaries.`

// ExtractionMessages builds the per-document extraction request from the
// selected chunks. The user prompt embeds the doc_id verbatim so the model
// can echo it back into the JSON record.
func ExtractionMessages(doc models.Document, chunks []models.Chunk) []providers.Message {
	var b strings.Builder
	fmt.Fprintf(&b, "Document doc_id: %q, filename: %q.\n\nContext:\n", doc.ID, doc.Filename)
	for _, c := range chunks {
		fmt.Fprintf(&b, "[p%d • chunk_%d]\n%s\n\n", c.Page, c.ChunkIndex, c.Text)
	}
	b.WriteString(`Extract a JSON object with exactly these fields:
{
  "doc_id": "<echo the doc_id>",
  "title": "...",
  "year": "...",
  "authors": ["..."],
  "domain": "...",
  "research_question": "...",
  "methodology": ["..."],
  "key_results": [{"text": "...", "chunk_id": "chunk_N", "page": P}],
  "limitations": ["..."],
  "citations_used": [{"chunk_id": "chunk_N", "page": P, "section": "...", "text_excerpt": "...", "relevance": "..."}]
}
Every key_results and citations_used entry must reference a chunk_id that appears in the context above.`)
	return []providers.Message{
		{Role: "system", Content: extractionSystemPrompt},
		{Role: "user", Content: b.String()},
	}
}

// SynthesisMessages builds the final review request. The structural
// instructions differ on the cohesion recommendation: a thematic review is
// organized around the shared themes, a portfolio review document by document.
func SynthesisMessages(analyses []DocumentAnalysis, cohesion CohesionAnalysis) []providers.Message {
	var b strings.Builder
	b.WriteString("Document summaries:\n\n")
	for i := range analyses {
		docIndex := i + 1
		summary, err := json.Marshal(analyses[i].Parsed)
		if err != nil {
			continue
		}
		fmt.Fprintf(&b, "Doc%d (%s):\n%s\n\n", docIndex, analyses[i].Filename, summary)
	}

	if cohesion.Recommendation == RecommendThematic {
		b.WriteString("Write a thematic literature review that synthesizes the documents around their shared themes")
		if len(cohesion.CommonThemes) > 0 {
			fmt.Fprintf(&b, " (%s)", strings.Join(cohesion.CommonThemes, ", "))
		}
		b.WriteString(". Compare and contrast findings across documents within each theme.\n")
	} else {
		b.WriteString("The documents span distinct research areas. Write a portfolio review: summarize each document in its own section, then close with a short cross-cutting discussion of methods and open problems.\n")
	}

	b.WriteString("\nCite every claim with the exact token format ")
	b.WriteString(FormatCitation(1, 3, "chunk_2"))
	b.WriteString(" where Doc number, page and chunk id come from the summaries. Every substantial paragraph must contain at least one citation. Do not cite chunks that do not appear in the summaries.")
	return []providers.Message{
		{Role: "system", Content: synthesisSystemPrompt},
		{Role: "user", Content: b.String()},
	}
}
