package workflows

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"litreview/internal/activities"
	"litreview/internal/review"
)

const (
	QueryGetReviewProgress = "GetReviewProgress"
	SignalCancelReview     = "CancelReview"

	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
	StatusFailed    = "failed"
)

// ReviewWorkflow is the durable variant of the review pipeline. Document
// analysis and synthesis run as activities; cohesion scoring, the citation
// ledger and validation are deterministic and computed inline. Cancellation
// arrives as a signal and is honored at the same checkpoints the in-process
// engine polls: before each document and before synthesis.
func ReviewWorkflow(ctx workflow.Context, input ReviewWorkflowInput) (ReviewWorkflowOutput, error) {
	progress := ReviewProgress{
		RunID:       input.RunID,
		State:       string(review.StateIdle),
		PerDocument: map[string]string{},
	}
	if err := workflow.SetQueryHandler(ctx, QueryGetReviewProgress, func() (ReviewProgress, error) {
		return progress, nil
	}); err != nil {
		return ReviewWorkflowOutput{}, err
	}

	cancelled := false
	workflow.Go(ctx, func(gctx workflow.Context) {
		ch := workflow.GetSignalChannel(gctx, SignalCancelReview)
		ch.Receive(gctx, nil)
		cancelled = true
	})

	ao := workflow.ActivityOptions{
		StartToCloseTimeout: 3 * time.Minute,
		HeartbeatTimeout:    45 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    2 * time.Second,
			BackoffCoefficient: 2,
			MaximumInterval:    20 * time.Second,
			MaximumAttempts:    3,
		},
	}
	ctx = workflow.WithActivityOptions(ctx, ao)

	_ = workflow.ExecuteActivity(ctx, "CreateReviewRunActivity", activities.CreateReviewRunInput{
		RunID: input.RunID, InputDir: input.InputDir,
	}).Get(ctx, nil)

	var loadOut activities.LoadDocumentsOutput
	if err := workflow.ExecuteActivity(ctx, "LoadDocumentsActivity", activities.LoadDocumentsInput{
		InputDir: input.InputDir,
	}).Get(ctx, &loadOut); err != nil {
		return failRun(ctx, input.RunID, err)
	}
	docs := loadOut.Documents
	if len(docs) == 0 {
		return failRun(ctx, input.RunID, review.ErrNoDocuments)
	}
	progress.Total = len(docs)

	progress.State = string(review.StateAnalyzing)
	analysisStart := workflow.Now(ctx)
	analyses := make([]review.DocumentAnalysis, 0, len(docs))
	for _, doc := range docs {
		if cancelled {
			return cancelRun(ctx, input.RunID, &progress)
		}
		progress.CurrentFile = doc.Filename
		progress.PerDocument[doc.Filename] = "analyzing"

		var out activities.AnalyzeDocumentOutput
		err := workflow.ExecuteActivity(ctx, "AnalyzeDocumentActivity", activities.AnalyzeDocumentInput{
			RunID: input.RunID, Document: doc,
		}).Get(ctx, &out)
		if err != nil {
			// per-document failure is non-fatal: record and continue
			out.Analysis = review.DocumentAnalysis{
				Filename: doc.Filename,
				DocID:    doc.ID,
				Error:    err.Error(),
			}
		}
		analyses = append(analyses, out.Analysis)
		progress.Done++
		progress.PerDocument[doc.Filename] = out.Analysis.Validation.Quality
		if out.Analysis.Error != "" {
			progress.PerDocument[doc.Filename] = "failed"
		}
	}
	analysisPhase := workflow.Now(ctx).Sub(analysisStart)
	progress.CurrentFile = ""

	progress.State = string(review.StateAssessingCohesion)
	usable := review.FilterUsable(analyses)
	if len(usable) == 0 {
		usable = review.RawPreviews(docs)
	}
	cohesion := review.AnalyzeCohesion(usable)

	if cancelled {
		return cancelRun(ctx, input.RunID, &progress)
	}

	progress.State = string(review.StateSynthesizing)
	synthStart := workflow.Now(ctx)
	var synthOut activities.SynthesizeOutput
	if err := workflow.ExecuteActivity(ctx, "SynthesizeActivity", activities.SynthesizeInput{
		RunID: input.RunID, Analyses: usable, Cohesion: cohesion,
	}).Get(ctx, &synthOut); err != nil {
		return failRun(ctx, input.RunID, err)
	}
	synthesisPhase := workflow.Now(ctx).Sub(synthStart)

	progress.State = string(review.StateValidating)
	result := review.AssembleResult(input.RunID, analyses, usable, cohesion, synthOut.Synthesis,
		analysisPhase, synthesisPhase, workflow.Now(ctx).UTC())

	var artOut activities.WriteReviewArtifactsOutput
	if err := workflow.ExecuteActivity(ctx, "WriteReviewArtifactsActivity", activities.WriteReviewArtifactsInput{
		RunID: input.RunID, Result: *result,
	}).Get(ctx, &artOut); err != nil {
		return failRun(ctx, input.RunID, err)
	}

	_ = workflow.ExecuteActivity(ctx, "UpdateReviewRunActivity", activities.UpdateReviewRunInput{
		RunID: input.RunID, Status: StatusCompleted, OutPath: artOut.JSONPath,
	}).Get(ctx, nil)

	progress.State = string(review.StateComplete)
	return ReviewWorkflowOutput{
		Status:   StatusCompleted,
		OutPath:  artOut.JSONPath,
		Warnings: len(result.Validation.Warnings),
	}, nil
}

func cancelRun(ctx workflow.Context, runID string, progress *ReviewProgress) (ReviewWorkflowOutput, error) {
	progress.State = string(review.StateCancelled)
	_ = workflow.ExecuteActivity(ctx, "UpdateReviewRunActivity", activities.UpdateReviewRunInput{
		RunID: runID, Status: StatusCancelled,
	}).Get(ctx, nil)
	return ReviewWorkflowOutput{Status: StatusCancelled}, nil
}

func failRun(ctx workflow.Context, runID string, cause error) (ReviewWorkflowOutput, error) {
	_ = workflow.ExecuteActivity(ctx, "UpdateReviewRunActivity", activities.UpdateReviewRunInput{
		RunID: runID, Status: StatusFailed, FailReason: cause.Error(),
	}).Get(ctx, nil)
	return ReviewWorkflowOutput{Status: StatusFailed}, cause
}
