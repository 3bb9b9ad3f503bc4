package review

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"litreview/internal/jsonrepair"
	"litreview/internal/models"
	"litreview/internal/providers"
	"litreview/internal/util"
)

const (
	defaultMaxAttempts     = 2
	defaultChunkBudget     = 5
	defaultChunkCharBudget = 400
	defaultAnalysisTimeout = 60 * time.Second

	analysisTemperature = 0.3
	analysisMaxTokens   = 500
)

// Analyzer produces one DocumentAnalysis per document. Analyze never fails
// outright: decode problems retry within the attempt budget and exhaustion
// degrades to the fallback record.
type Analyzer struct {
	completer   providers.Completer
	maxAttempts int
	timeout     time.Duration
	chunkBudget int
	charBudget  int
}

type AnalyzerOption func(*Analyzer)

func WithMaxAttempts(n int) AnalyzerOption {
	return func(a *Analyzer) {
		if n > 0 {
			a.maxAttempts = n
		}
	}
}

func WithAnalysisTimeout(d time.Duration) AnalyzerOption {
	return func(a *Analyzer) {
		if d > 0 {
			a.timeout = d
		}
	}
}

func WithChunkBudget(chunks, chars int) AnalyzerOption {
	return func(a *Analyzer) {
		if chunks > 0 {
			a.chunkBudget = chunks
		}
		if chars > 0 {
			a.charBudget = chars
		}
	}
}

func NewAnalyzer(completer providers.Completer, opts ...AnalyzerOption) *Analyzer {
	a := &Analyzer{
		completer:   completer,
		maxAttempts: defaultMaxAttempts,
		timeout:     defaultAnalysisTimeout,
		chunkBudget: defaultChunkBudget,
		charBudget:  defaultChunkCharBudget,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Analyze runs the bounded extraction loop for one document. Chunks are
// selected once; a failed decode retries with the same prompt. A per-attempt
// timeout counts as a failed attempt, not a separate code path.
func (a *Analyzer) Analyze(ctx context.Context, doc models.Document, onPartial func(string)) DocumentAnalysis {
	out := DocumentAnalysis{Filename: doc.Filename, DocID: doc.ID}

	chunks := SelectChunks(doc.Chunks, a.chunkBudget, a.charBudget)
	if len(chunks) == 0 && strings.TrimSpace(doc.Content) != "" {
		// No chunks but raw text arrived; analyze a single synthetic chunk.
		chunks = []models.Chunk{{
			Text:       util.TruncateAtWord(strings.TrimSpace(doc.Content), a.charBudget),
			Page:       1,
			ChunkIndex: 0,
		}}
	}
	if len(chunks) == 0 {
		out.Parsed = FallbackExtract(doc.ID)
		out.Validation = AnalysisValidation{
			IsValid:  false,
			Quality:  qualityLow,
			Warnings: []string{"document has no text chunks"},
		}
		return out
	}
	messages := ExtractionMessages(doc, chunks)

	var lastErr error
	sawText := false
	for attempt := 1; attempt <= a.maxAttempts; attempt++ {
		raw, _, err := a.completeWithTimeout(ctx, messages, onPartial)
		if err != nil {
			lastErr = err
			log.Printf("analyze %s attempt %d/%d: %v (%s)", doc.Filename, attempt, a.maxAttempts, err, providers.ClassifyError(err))
			if providers.ClassifyError(err) == providers.ErrorContext {
				break
			}
			continue
		}
		sawText = true
		obj, ok := jsonrepair.DecodeObject(raw)
		if !ok {
			log.Printf("analyze %s attempt %d/%d: unparseable model output (%d bytes)", doc.Filename, attempt, a.maxAttempts, len(raw))
			continue
		}
		out.Parsed = NormalizeExtract(obj, doc.ID)
		out.Validation = validateExtract(out.Parsed)
		return out
	}

	if !sawText && lastErr != nil {
		// Every attempt died at the transport level; tag the record so the
		// orchestrator can exclude it from synthesis input.
		out.Error = lastErr.Error()
		out.Validation = AnalysisValidation{
			IsValid:  false,
			Quality:  qualityLow,
			Warnings: []string{fmt.Sprintf("completion failed after %d attempts: %v", a.maxAttempts, lastErr)},
		}
		return out
	}

	out.Parsed = FallbackExtract(doc.ID)
	out.Validation = AnalysisValidation{
		IsValid:  false,
		Quality:  qualityLow,
		Warnings: []string{fmt.Sprintf("structured extraction failed after %d attempts, using fallback record", a.maxAttempts)},
	}
	return out
}

func (a *Analyzer) completeWithTimeout(ctx context.Context, messages []providers.Message, onPartial func(string)) (string, providers.ProviderInfo, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()
	opts := providers.Options{Temperature: analysisTemperature, MaxTokens: analysisMaxTokens}
	return a.completer.Complete(attemptCtx, messages, opts, onPartial)
}

var (
	abstractMarkers   = []string{"abstract", "summary"}
	conclusionMarkers = []string{"conclusion", "discussion"}
)

// SelectChunks picks the most informative chunks deterministically: up to two
// page-1 chunks, then one abstract-like and one conclusion-like chunk, then
// remaining slots in page order, capped at budget. Each selected text is cut
// to charBudget at a word boundary.
func SelectChunks(chunks []models.Chunk, budget, charBudget int) []models.Chunk {
	if budget <= 0 || len(chunks) == 0 {
		return nil
	}
	ordered := make([]models.Chunk, len(chunks))
	copy(ordered, chunks)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Page != ordered[j].Page {
			return ordered[i].Page < ordered[j].Page
		}
		return ordered[i].ChunkIndex < ordered[j].ChunkIndex
	})

	used := make([]bool, len(ordered))
	var selected []models.Chunk
	take := func(i int) {
		used[i] = true
		c := ordered[i]
		c.Text = util.TruncateAtWord(c.Text, charBudget)
		selected = append(selected, c)
	}

	firstPage := 0
	for i := range ordered {
		if len(selected) >= budget || firstPage >= 2 {
			break
		}
		if ordered[i].Page == 1 {
			take(i)
			firstPage++
		}
	}
	takeMarked := func(markers []string) {
		if len(selected) >= budget {
			return
		}
		for i := range ordered {
			if used[i] {
				continue
			}
			if containsAny(strings.ToLower(ordered[i].Text), markers) {
				take(i)
				return
			}
		}
	}
	takeMarked(abstractMarkers)
	takeMarked(conclusionMarkers)

	for i := range ordered {
		if len(selected) >= budget {
			break
		}
		if !used[i] {
			take(i)
		}
	}
	return selected
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// validateExtract grades how many of the substantive fields came back with
// real values. The extract is usable either way; quality only signals how
// much the reader should trust it.
func validateExtract(e *StructuredExtract) AnalysisValidation {
	var warnings []string
	missing := func(name string, absent bool) {
		if absent {
			warnings = append(warnings, name+" not extracted")
		}
	}
	missing("title", e.Title == "" || e.Title == NotFound)
	missing("year", func() bool { _, ok := e.YearValue(); return !ok }())
	missing("research_question", e.ResearchQuestion == "" || e.ResearchQuestion == NotFound)
	missing("methodology", len(e.Methodology) == 0 || (len(e.Methodology) == 1 && e.Methodology[0] == NotFound))
	missing("key_results", len(e.KeyResults) == 0 || (len(e.KeyResults) == 1 && e.KeyResults[0].Text == NotFound))

	quality := qualityLow
	switch {
	case len(warnings) == 0:
		quality = qualityHigh
	case len(warnings) <= 2:
		quality = qualityMedium
	}
	return AnalysisValidation{
		IsValid:  quality != qualityLow,
		Quality:  quality,
		Warnings: warnings,
	}
}
