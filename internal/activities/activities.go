package activities

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"go.temporal.io/sdk/activity"

	"litreview/internal/config"
	"litreview/internal/providers"
	"litreview/internal/review"
	"litreview/internal/source"
	"litreview/internal/storage"
	"litreview/internal/util"
)

// Activities carries the worker-side dependencies. The database is optional:
// with a nil DB the run activities become no-ops and completion calls are
// not audited, so the pipeline can run against the filesystem alone.
type Activities struct {
	cfg          config.Config
	reviewRepo   *storage.ReviewRepo
	llmAuditRepo *storage.LLMAuditRepo
	providers    *providers.Manager
}

func New(cfg config.Config, db *storage.DB) (*Activities, error) {
	pm, err := providers.NewManager(cfg.Providers, cfg.ProviderRPM)
	if err != nil {
		return nil, err
	}
	a := &Activities{cfg: cfg, providers: pm}
	if db != nil {
		a.reviewRepo = storage.NewReviewRepo(db)
		a.llmAuditRepo = storage.NewLLMAuditRepo(db)
	}
	return a, nil
}

func (a *Activities) LoadDocumentsActivity(ctx context.Context, in LoadDocumentsInput) (LoadDocumentsOutput, error) {
	_ = ctx
	docs, err := source.LoadDir(in.InputDir)
	if err != nil {
		return LoadDocumentsOutput{}, err
	}
	return LoadDocumentsOutput{Documents: docs}, nil
}

func (a *Activities) AnalyzeDocumentActivity(ctx context.Context, in AnalyzeDocumentInput) (AnalyzeDocumentOutput, error) {
	analyzer := review.NewAnalyzer(a.audited("analysis", in.RunID, in.Document.ID),
		review.WithMaxAttempts(a.cfg.AnalysisMaxAttempts),
		review.WithAnalysisTimeout(time.Duration(a.cfg.AnalysisTimeoutSecs)*time.Second),
		review.WithChunkBudget(a.cfg.ChunkBudget, a.cfg.ChunkCharBudget),
	)
	analysis := analyzer.Analyze(ctx, in.Document, func(partial string) {
		activity.RecordHeartbeat(ctx, len(partial))
	})
	return AnalyzeDocumentOutput{Analysis: analysis}, nil
}

func (a *Activities) SynthesizeActivity(ctx context.Context, in SynthesizeInput) (SynthesizeOutput, error) {
	synth := review.NewSynthesizer(a.audited("synthesis", in.RunID, ""),
		time.Duration(a.cfg.SynthesisTimeoutSecs)*time.Second)
	received := 0
	synthesis, err := synth.Generate(ctx, in.Analyses, in.Cohesion, func(token string) {
		received += len(token)
		activity.RecordHeartbeat(ctx, received)
	})
	if err != nil {
		return SynthesizeOutput{}, err
	}
	return SynthesizeOutput{Synthesis: synthesis}, nil
}

func (a *Activities) WriteReviewArtifactsActivity(ctx context.Context, in WriteReviewArtifactsInput) (WriteReviewArtifactsOutput, error) {
	_ = ctx
	dir := util.SafeJoin(a.cfg.DataOutRoot, in.RunID)
	if err := util.EnsureDir(dir); err != nil {
		return WriteReviewArtifactsOutput{}, fmt.Errorf("ensure out dir: %w", err)
	}
	jsonPath := filepath.Join(dir, "review.json")
	if err := util.WriteJSONAtomic(jsonPath, in.Result); err != nil {
		return WriteReviewArtifactsOutput{}, err
	}
	textPath := filepath.Join(dir, "review.md")
	if err := util.WriteTextAtomic(textPath, in.Result.FinalSynthesis.Text); err != nil {
		return WriteReviewArtifactsOutput{}, err
	}
	return WriteReviewArtifactsOutput{JSONPath: jsonPath, TextPath: textPath}, nil
}

func (a *Activities) CreateReviewRunActivity(ctx context.Context, in CreateReviewRunInput) error {
	if a.reviewRepo == nil {
		return nil
	}
	return a.reviewRepo.CreateRun(ctx, in.RunID, in.InputDir)
}

func (a *Activities) UpdateReviewRunActivity(ctx context.Context, in UpdateReviewRunInput) error {
	if a.reviewRepo == nil {
		return nil
	}
	return a.reviewRepo.UpdateRunStatus(ctx, in.RunID, in.Status, in.OutPath, in.FailReason)
}
