package review

import (
	"strconv"
	"time"
)

// NotFound is the literal the extraction prompt instructs the model to use
// for missing fields; fallback records use it for every field.
const NotFound = "not found"

// KeyResult is a single reported result. The model may return either a bare
// string or an object carrying the chunk reference it was read from; both
// shapes are normalized into this struct right after decode.
type KeyResult struct {
	Text    string `json:"text"`
	ChunkID string `json:"chunk_id,omitempty"`
	Page    int    `json:"page,omitempty"`
}

// CitationUse is a citable evidence fragment reported by the extraction.
type CitationUse struct {
	ChunkID   string `json:"chunk_id"`
	Page      int    `json:"page"`
	Section   string `json:"section,omitempty"`
	Excerpt   string `json:"text_excerpt,omitempty"`
	Relevance string `json:"relevance,omitempty"`
}

// StructuredExtract is the per-document record produced by the analyzer.
type StructuredExtract struct {
	DocID            string        `json:"doc_id"`
	Title            string        `json:"title"`
	Year             string        `json:"year"`
	Authors          []string      `json:"authors"`
	Domain           string        `json:"domain"`
	ResearchQuestion string        `json:"research_question"`
	Methodology      []string      `json:"methodology"`
	KeyResults       []KeyResult   `json:"key_results"`
	Limitations      []string      `json:"limitations"`
	CitationsUsed    []CitationUse `json:"citations_used"`
	// RawContent carries a raw text preview on the degraded path where no
	// structured extraction succeeded for any document.
	RawContent string `json:"raw_content,omitempty"`
}

// YearValue parses the year field, which arrives as a number, a numeric
// string or the "not found" literal.
func (e *StructuredExtract) YearValue() (int, bool) {
	if e == nil {
		return 0, false
	}
	y, err := strconv.Atoi(e.Year)
	if err != nil || y <= 0 {
		return 0, false
	}
	return y, true
}

type AnalysisValidation struct {
	IsValid  bool     `json:"is_valid"`
	Quality  string   `json:"quality"`
	Warnings []string `json:"warnings,omitempty"`
}

// DocumentAnalysis is created once per document per run and never mutated.
type DocumentAnalysis struct {
	Filename   string             `json:"filename"`
	DocID      string             `json:"doc_id"`
	Parsed     *StructuredExtract `json:"parsed"`
	Validation AnalysisValidation `json:"validation"`
	Error      string             `json:"error,omitempty"`
}

type Divergence struct {
	Type    string   `json:"type"`
	Message string   `json:"message"`
	Domains []string `json:"domains,omitempty"`
	Range   []int    `json:"range,omitempty"`
}

const (
	RecommendThematic  = "thematic"
	RecommendPortfolio = "portfolio"
)

type CohesionAnalysis struct {
	IsCoherent     bool         `json:"is_coherent"`
	Score          float64      `json:"score"`
	CommonThemes   []string     `json:"common_themes"`
	CommonMethods  []string     `json:"common_methods"`
	Divergences    []Divergence `json:"divergences"`
	Recommendation string       `json:"recommendation"`
	DomainCount    int          `json:"domain_count"`
	UniqueDomains  []string     `json:"unique_domains"`
}

// CitationToken is one parsed [Doc<N> • p<P> • chunk_<K>] occurrence.
// DocIndex is 1-based; Position is the byte offset of the match start.
type CitationToken struct {
	Raw      string `json:"raw"`
	DocIndex int    `json:"doc_index"`
	Page     int    `json:"page"`
	ChunkID  string `json:"chunk_id"`
	Position int    `json:"position"`
}

// CitationRecord is the ledger entry for a citable (docIndex, chunkID) pair.
type CitationRecord struct {
	DocIndex  int    `json:"doc_index"`
	Page      int    `json:"page"`
	ChunkID   string `json:"chunk_id"`
	Section   string `json:"section"`
	Excerpt   string `json:"excerpt"`
	Relevance string `json:"relevance"`
}

type ValidationMetrics struct {
	CitationCoverage float64 `json:"citation_coverage"`
	TotalCitations   int     `json:"total_citations"`
	InvalidCitations int     `json:"invalid_citations"`
	UncitedDocs      int     `json:"uncited_docs"`
	UncitedNumbers   int     `json:"uncited_numbers"`
}

type ValidationResult struct {
	IsValid  bool              `json:"is_valid"`
	Quality  string            `json:"quality"`
	Metrics  ValidationMetrics `json:"metrics"`
	Warnings []string          `json:"warnings"`
}

type Synthesis struct {
	Text          string  `json:"text"`
	Mode          string  `json:"mode"`
	CohesionScore float64 `json:"cohesion_score"`
	DocumentCount int     `json:"document_count"`
}

type UncitedDocument struct {
	DocIndex int    `json:"doc_index"`
	Filename string `json:"filename"`
	Title    string `json:"title"`
}

type TopChunk struct {
	DocIndex int    `json:"doc_index"`
	ChunkID  string `json:"chunk_id"`
	Count    int    `json:"count"`
}

type AcademicStats struct {
	TotalCitations    int         `json:"total_citations"`
	CitationsPerDoc   float64     `json:"citations_per_doc"`
	CitationsByDoc    map[int]int `json:"citations_by_doc"`
	UncitedDocuments  []string    `json:"uncited_documents"`
	TopChunksUsed     []TopChunk  `json:"top_chunks_used"`
	ReviewMode        string      `json:"review_mode"`
	CohesionScore     float64     `json:"cohesion_score"`
	ValidationQuality string      `json:"validation_quality"`
}

type Timings struct {
	AnalysisPhaseMS  int64 `json:"analysis_phase_ms"`
	SynthesisPhaseMS int64 `json:"synthesis_phase_ms"`
	AvgPerDocMS      int64 `json:"avg_per_doc_ms"`
}

type QualityMetrics struct {
	AnalysisQuality    []string `json:"analysis_quality"`
	CitationCoverage   float64  `json:"citation_coverage"`
	ValidationWarnings []string `json:"validation_warnings"`
}

// ReviewResult is the top-level aggregate, created exactly once per run.
type ReviewResult struct {
	RunID            string             `json:"run_id"`
	DocumentReviews  []DocumentAnalysis `json:"document_reviews"`
	FinalSynthesis   Synthesis          `json:"final_synthesis"`
	GeneratedAt      time.Time          `json:"generated_at"`
	DocumentCount    int                `json:"document_count"`
	TotalMS          int64              `json:"total_ms"`
	AcademicStats    AcademicStats      `json:"academic_stats"`
	Timings          Timings            `json:"timings"`
	QualityMetrics   QualityMetrics     `json:"quality_metrics"`
	CohesionAnalysis CohesionAnalysis   `json:"cohesion_analysis"`
	Validation       ValidationResult   `json:"validation"`
}

type EventType string

const (
	EventDocumentStart     EventType = "document_start"
	EventDocumentProgress  EventType = "document_progress"
	EventDocumentComplete  EventType = "document_complete"
	EventSynthesisStart    EventType = "synthesis_start"
	EventSynthesisProgress EventType = "synthesis_progress"
	EventComplete          EventType = "complete"
)

// Event is one discrete progress notification. Payload fields are set
// according to Type; consumers can render incremental UI without polling.
type Event struct {
	Type        EventType         `json:"type"`
	Current     int               `json:"current,omitempty"`
	Total       int               `json:"total,omitempty"`
	Filename    string            `json:"filename,omitempty"`
	PartialText string            `json:"partial_text,omitempty"`
	Mode        string            `json:"mode,omitempty"`
	Review      *DocumentAnalysis `json:"review,omitempty"`
	Result      *ReviewResult     `json:"result,omitempty"`
}

// ProgressFunc receives progress events; may be nil.
type ProgressFunc func(Event)

// CancelFunc is the cooperative cancellation predicate, polled before each
// document and before the synthesis call.
type CancelFunc func() bool

type State string

const (
	StateIdle              State = "idle"
	StateAnalyzing         State = "analyzing_documents"
	StateAssessingCohesion State = "assessing_cohesion"
	StateSynthesizing      State = "synthesizing"
	StateValidating        State = "validating"
	StateComplete          State = "complete"
	StateCancelled         State = "cancelled"
	StateFailed            State = "failed"
)
