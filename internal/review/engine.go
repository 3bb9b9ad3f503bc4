package review

import (
	"context"
	"fmt"
	"log"
	"sort"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"litreview/internal/models"
	"litreview/internal/providers"
	"litreview/internal/util"
)

const rawPreviewChars = 500

// RunOptions carries the per-run knobs of Engine.Run. All fields are
// optional; a zero RunOptions gives a silent, uncancellable run with a
// generated id.
type RunOptions struct {
	RunID      string
	OnProgress ProgressFunc
	Cancelled  CancelFunc
}

// Engine is the synthesis orchestrator: analyze documents sequentially,
// score cohesion, request one synthesis, validate citations, assemble the
// ReviewResult. Single-flight: at most one run per Engine at a time.
type Engine struct {
	completer providers.Completer
	analyzer  *Analyzer
	synth     *Synthesizer

	running atomic.Bool
	state   atomic.Value
}

type EngineOption func(*engineConfig)

type engineConfig struct {
	maxAttempts      int
	analysisTimeout  time.Duration
	synthesisTimeout time.Duration
	chunkBudget      int
	charBudget       int
}

func WithTimeouts(analysis, synthesis time.Duration) EngineOption {
	return func(c *engineConfig) {
		if analysis > 0 {
			c.analysisTimeout = analysis
		}
		if synthesis > 0 {
			c.synthesisTimeout = synthesis
		}
	}
}

func WithAttempts(n int) EngineOption {
	return func(c *engineConfig) {
		if n > 0 {
			c.maxAttempts = n
		}
	}
}

func WithBudgets(chunks, chars int) EngineOption {
	return func(c *engineConfig) {
		if chunks > 0 {
			c.chunkBudget = chunks
		}
		if chars > 0 {
			c.charBudget = chars
		}
	}
}

func NewEngine(completer providers.Completer, opts ...EngineOption) *Engine {
	cfg := engineConfig{
		maxAttempts:      defaultMaxAttempts,
		analysisTimeout:  defaultAnalysisTimeout,
		synthesisTimeout: defaultSynthesisTimeout,
		chunkBudget:      defaultChunkBudget,
		charBudget:       defaultChunkCharBudget,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	e := &Engine{completer: completer}
	if completer != nil {
		e.analyzer = NewAnalyzer(completer,
			WithMaxAttempts(cfg.maxAttempts),
			WithAnalysisTimeout(cfg.analysisTimeout),
			WithChunkBudget(cfg.chunkBudget, cfg.charBudget),
		)
		e.synth = NewSynthesizer(completer, cfg.synthesisTimeout)
	}
	e.state.Store(StateIdle)
	return e
}

// State reports the current run phase. Safe to call from any goroutine.
func (e *Engine) State() State {
	return e.state.Load().(State)
}

func (e *Engine) setState(s State) {
	e.state.Store(s)
}

// Run executes one full review. Entry guards are checked before any state
// transition; a second Run while one is active fails fast with ErrRunActive
// and leaves the first run untouched. Cancellation is polled before each
// document and before the synthesis call; it yields ErrCancelled, which is a
// terminal outcome distinct from failure.
func (e *Engine) Run(ctx context.Context, docs []models.Document, opts RunOptions) (*ReviewResult, error) {
	if !e.running.CompareAndSwap(false, true) {
		return nil, ErrRunActive
	}
	defer e.running.Store(false)

	if len(docs) == 0 {
		return nil, ErrNoDocuments
	}
	if e.completer == nil {
		return nil, ErrNoCompleter
	}

	runID := opts.RunID
	if runID == "" {
		runID = uuid.NewString()
	}
	emit := opts.OnProgress
	if emit == nil {
		emit = func(Event) {}
	}
	cancelled := func() bool {
		if opts.Cancelled != nil && opts.Cancelled() {
			return true
		}
		return ctx.Err() != nil
	}

	start := time.Now()
	total := len(docs)

	e.setState(StateAnalyzing)
	analyses := make([]DocumentAnalysis, 0, total)
	for i, doc := range docs {
		if cancelled() {
			e.setState(StateCancelled)
			return nil, ErrCancelled
		}
		emit(Event{Type: EventDocumentStart, Current: i + 1, Total: total, Filename: doc.Filename})
		analysis := e.analyzer.Analyze(ctx, doc, func(partial string) {
			emit(Event{Type: EventDocumentProgress, Current: i + 1, Total: total, Filename: doc.Filename, PartialText: partial})
		})
		analyses = append(analyses, analysis)
		emit(Event{Type: EventDocumentComplete, Current: i + 1, Total: total, Filename: doc.Filename, Review: &analysis})
		if cancelled() {
			e.setState(StateCancelled)
			return nil, ErrCancelled
		}
	}
	analysisPhase := time.Since(start)

	e.setState(StateAssessingCohesion)
	usable := FilterUsable(analyses)
	if len(usable) == 0 {
		// Never output nothing if any document exists: degrade to raw text
		// previews so synthesis still has material to work with.
		log.Printf("run %s: no structured analysis succeeded, degrading to raw previews", runID)
		usable = RawPreviews(docs)
	}
	cohesion := AnalyzeCohesion(usable)

	if cancelled() {
		e.setState(StateCancelled)
		return nil, ErrCancelled
	}

	e.setState(StateSynthesizing)
	emit(Event{Type: EventSynthesisStart, Total: len(usable), Mode: cohesion.Recommendation})
	synthStart := time.Now()
	synthesis, err := e.synth.Generate(ctx, usable, cohesion, func(token string) {
		emit(Event{Type: EventSynthesisProgress, PartialText: token, Mode: cohesion.Recommendation})
	})
	if err != nil {
		e.setState(StateFailed)
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}
	synthesisPhase := time.Since(synthStart)

	e.setState(StateValidating)
	result := AssembleResult(runID, analyses, usable, cohesion, synthesis, analysisPhase, synthesisPhase, time.Now().UTC())

	e.setState(StateComplete)
	emit(Event{Type: EventComplete, Current: total, Total: total, Result: result})
	return result, nil
}

// AssembleResult runs validation and builds the final aggregate from the
// run's pieces. Pure given its inputs.
func AssembleResult(runID string, analyses, usable []DocumentAnalysis, cohesion CohesionAnalysis, synthesis Synthesis, analysisPhase, synthesisPhase time.Duration, generatedAt time.Time) *ReviewResult {
	ledger := NewLedger(usable)
	validation := Validate(synthesis.Text, usable, ledger)
	tokens := ExtractCitations(synthesis.Text)

	return &ReviewResult{
		RunID:            runID,
		DocumentReviews:  analyses,
		FinalSynthesis:   synthesis,
		GeneratedAt:      generatedAt,
		DocumentCount:    len(analyses),
		TotalMS:          (analysisPhase + synthesisPhase).Milliseconds(),
		AcademicStats:    buildStats(tokens, ledger, cohesion, validation),
		Timings:          buildTimings(analysisPhase, synthesisPhase, len(analyses)),
		QualityMetrics:   buildQuality(analyses, validation),
		CohesionAnalysis: cohesion,
		Validation:       validation,
	}
}

// FilterUsable keeps analyses that parsed and carry no transport error.
// Output order follows submission order.
func FilterUsable(analyses []DocumentAnalysis) []DocumentAnalysis {
	var out []DocumentAnalysis
	for i := range analyses {
		if analyses[i].Parsed != nil && analyses[i].Error == "" {
			out = append(out, analyses[i])
		}
	}
	return out
}

// RawPreviews builds minimal per-document records from the raw chunk text
// (lowest-page chunk first) for the degraded path.
func RawPreviews(docs []models.Document) []DocumentAnalysis {
	out := make([]DocumentAnalysis, 0, len(docs))
	for _, doc := range docs {
		extract := FallbackExtract(doc.ID)
		extract.Title = doc.Filename
		if c := earliestChunk(doc.Chunks); c != nil {
			extract.RawContent = util.Snippet(c.Text, rawPreviewChars)
		}
		out = append(out, DocumentAnalysis{
			Filename: doc.Filename,
			DocID:    doc.ID,
			Parsed:   extract,
			Validation: AnalysisValidation{
				Quality:  qualityLow,
				Warnings: []string{"raw text preview, structured extraction unavailable"},
			},
		})
	}
	return out
}

func earliestChunk(chunks []models.Chunk) *models.Chunk {
	if len(chunks) == 0 {
		return nil
	}
	idx := 0
	for i := 1; i < len(chunks); i++ {
		if chunks[i].Page < chunks[idx].Page {
			idx = i
		}
	}
	return &chunks[idx]
}

func buildStats(tokens []CitationToken, ledger *Ledger, cohesion CohesionAnalysis, validation ValidationResult) AcademicStats {
	uncited := ledger.UncitedDocuments(tokens)
	names := make([]string, 0, len(uncited))
	for _, u := range uncited {
		names = append(names, u.Filename)
	}
	sort.Strings(names)

	docCount := ledger.DocumentCount()
	perDoc := 0.0
	if docCount > 0 {
		perDoc = float64(len(tokens)) / float64(docCount)
	}
	return AcademicStats{
		TotalCitations:    len(tokens),
		CitationsPerDoc:   perDoc,
		CitationsByDoc:    CountByDoc(tokens),
		UncitedDocuments:  names,
		TopChunksUsed:     TopCited(tokens, 5),
		ReviewMode:        cohesion.Recommendation,
		CohesionScore:     cohesion.Score,
		ValidationQuality: validation.Quality,
	}
}

func buildTimings(analysis, synthesis time.Duration, docCount int) Timings {
	t := Timings{
		AnalysisPhaseMS:  analysis.Milliseconds(),
		SynthesisPhaseMS: synthesis.Milliseconds(),
	}
	if docCount > 0 {
		t.AvgPerDocMS = analysis.Milliseconds() / int64(docCount)
	}
	return t
}

func buildQuality(analyses []DocumentAnalysis, validation ValidationResult) QualityMetrics {
	grades := make([]string, 0, len(analyses))
	for i := range analyses {
		grades = append(grades, analyses[i].Validation.Quality)
	}
	return QualityMetrics{
		AnalysisQuality:    grades,
		CitationCoverage:   validation.Metrics.CitationCoverage,
		ValidationWarnings: validation.Warnings,
	}
}
