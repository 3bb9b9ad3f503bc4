package activities

import (
	"litreview/internal/models"
	"litreview/internal/review"
)

type LoadDocumentsInput struct {
	InputDir string `json:"input_dir"`
}

type LoadDocumentsOutput struct {
	Documents []models.Document `json:"documents"`
}

type AnalyzeDocumentInput struct {
	RunID    string          `json:"run_id"`
	Document models.Document `json:"document"`
}

type AnalyzeDocumentOutput struct {
	Analysis review.DocumentAnalysis `json:"analysis"`
}

type SynthesizeInput struct {
	RunID    string                    `json:"run_id"`
	Analyses []review.DocumentAnalysis `json:"analyses"`
	Cohesion review.CohesionAnalysis   `json:"cohesion"`
}

type SynthesizeOutput struct {
	Synthesis review.Synthesis `json:"synthesis"`
}

type WriteReviewArtifactsInput struct {
	RunID  string              `json:"run_id"`
	Result review.ReviewResult `json:"result"`
}

type WriteReviewArtifactsOutput struct {
	JSONPath string `json:"json_path"`
	TextPath string `json:"text_path"`
}

type CreateReviewRunInput struct {
	RunID    string `json:"run_id"`
	InputDir string `json:"input_dir"`
}

type UpdateReviewRunInput struct {
	RunID      string `json:"run_id"`
	Status     string `json:"status"`
	OutPath    string `json:"out_path"`
	FailReason string `json:"fail_reason"`
}
