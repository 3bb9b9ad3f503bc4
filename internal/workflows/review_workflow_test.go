package workflows

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/testsuite"

	"litreview/internal/activities"
	"litreview/internal/models"
	"litreview/internal/review"
)

func registerActivityName[T any](env *testsuite.TestWorkflowEnvironment, name string, fn T) {
	env.RegisterActivityWithOptions(fn, activity.RegisterOptions{Name: name})
}

func registerReviewActivities(env *testsuite.TestWorkflowEnvironment) {
	registerActivityName(env, "CreateReviewRunActivity", func(context.Context, activities.CreateReviewRunInput) error { return nil })
	registerActivityName(env, "UpdateReviewRunActivity", func(context.Context, activities.UpdateReviewRunInput) error { return nil })
	registerActivityName(env, "LoadDocumentsActivity", func(context.Context, activities.LoadDocumentsInput) (activities.LoadDocumentsOutput, error) {
		return activities.LoadDocumentsOutput{}, nil
	})
	registerActivityName(env, "AnalyzeDocumentActivity", func(context.Context, activities.AnalyzeDocumentInput) (activities.AnalyzeDocumentOutput, error) {
		return activities.AnalyzeDocumentOutput{}, nil
	})
	registerActivityName(env, "SynthesizeActivity", func(context.Context, activities.SynthesizeInput) (activities.SynthesizeOutput, error) {
		return activities.SynthesizeOutput{}, nil
	})
	registerActivityName(env, "WriteReviewArtifactsActivity", func(context.Context, activities.WriteReviewArtifactsInput) (activities.WriteReviewArtifactsOutput, error) {
		return activities.WriteReviewArtifactsOutput{}, nil
	})
}

func docFixture(id string) models.Document {
	return models.Document{
		ID:       id,
		Filename: id + ".pdf",
		Chunks:   []models.Chunk{{Text: "Abstract. Content.", Page: 1, ChunkIndex: 0}},
	}
}

func analysisFixture(doc models.Document) review.DocumentAnalysis {
	return review.DocumentAnalysis{
		Filename: doc.Filename,
		DocID:    doc.ID,
		Parsed: &review.StructuredExtract{
			DocID:         doc.ID,
			Title:         "Study " + doc.ID,
			Year:          "2021",
			Domain:        "computer science",
			CitationsUsed: []review.CitationUse{{ChunkID: "chunk_0", Page: 1}},
		},
		Validation: review.AnalysisValidation{IsValid: true, Quality: "medium"},
	}
}

func TestReviewWorkflowSuccess(t *testing.T) {
	var ts testsuite.WorkflowTestSuite
	env := ts.NewTestWorkflowEnvironment()
	env.RegisterWorkflow(ReviewWorkflow)
	registerReviewActivities(env)

	docs := []models.Document{docFixture("d1"), docFixture("d2")}
	env.OnActivity("CreateReviewRunActivity", mock.Anything, mock.Anything).Return(nil)
	env.OnActivity("LoadDocumentsActivity", mock.Anything, activities.LoadDocumentsInput{InputDir: "/in"}).
		Return(activities.LoadDocumentsOutput{Documents: docs}, nil)
	env.OnActivity("AnalyzeDocumentActivity", mock.Anything, mock.Anything).
		Return(func(_ context.Context, in activities.AnalyzeDocumentInput) (activities.AnalyzeDocumentOutput, error) {
			return activities.AnalyzeDocumentOutput{Analysis: analysisFixture(in.Document)}, nil
		})
	env.OnActivity("SynthesizeActivity", mock.Anything, mock.Anything).
		Return(activities.SynthesizeOutput{Synthesis: review.Synthesis{
			Text: "A sufficiently long paragraph that compares both studies and their shared findings in detail [Doc1 • p1 • chunk_0] and [Doc2 • p1 • chunk_0].",
			Mode: review.RecommendThematic,
		}}, nil)
	env.OnActivity("WriteReviewArtifactsActivity", mock.Anything, mock.Anything).
		Return(activities.WriteReviewArtifactsOutput{JSONPath: "/out/run/review.json", TextPath: "/out/run/review.md"}, nil)
	env.OnActivity("UpdateReviewRunActivity", mock.Anything, mock.Anything).Return(nil)

	env.ExecuteWorkflow(ReviewWorkflow, ReviewWorkflowInput{RunID: "run-1", InputDir: "/in"})
	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())

	var out ReviewWorkflowOutput
	require.NoError(t, env.GetWorkflowResult(&out))
	require.Equal(t, StatusCompleted, out.Status)
	require.Equal(t, "/out/run/review.json", out.OutPath)

	v, err := env.QueryWorkflow(QueryGetReviewProgress)
	require.NoError(t, err)
	var progress ReviewProgress
	require.NoError(t, v.Get(&progress))
	require.Equal(t, 2, progress.Done)
	require.Equal(t, string(review.StateComplete), progress.State)
}

func TestReviewWorkflowDocumentFailureIsNonFatal(t *testing.T) {
	var ts testsuite.WorkflowTestSuite
	env := ts.NewTestWorkflowEnvironment()
	env.RegisterWorkflow(ReviewWorkflow)
	registerReviewActivities(env)

	docs := []models.Document{docFixture("good"), docFixture("bad")}
	env.OnActivity("CreateReviewRunActivity", mock.Anything, mock.Anything).Return(nil)
	env.OnActivity("LoadDocumentsActivity", mock.Anything, mock.Anything).
		Return(activities.LoadDocumentsOutput{Documents: docs}, nil)
	env.OnActivity("AnalyzeDocumentActivity", mock.Anything, mock.Anything).
		Return(func(_ context.Context, in activities.AnalyzeDocumentInput) (activities.AnalyzeDocumentOutput, error) {
			if in.Document.ID == "bad" {
				return activities.AnalyzeDocumentOutput{}, errors.New("worker crashed")
			}
			return activities.AnalyzeDocumentOutput{Analysis: analysisFixture(in.Document)}, nil
		})
	env.OnActivity("SynthesizeActivity", mock.Anything, mock.Anything).
		Return(activities.SynthesizeOutput{Synthesis: review.Synthesis{Text: "short text", Mode: review.RecommendPortfolio}}, nil)
	env.OnActivity("WriteReviewArtifactsActivity", mock.Anything, mock.Anything).
		Return(activities.WriteReviewArtifactsOutput{JSONPath: "/out/review.json"}, nil)
	env.OnActivity("UpdateReviewRunActivity", mock.Anything, mock.Anything).Return(nil)

	env.ExecuteWorkflow(ReviewWorkflow, ReviewWorkflowInput{RunID: "run-2", InputDir: "/in"})
	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())

	var out ReviewWorkflowOutput
	require.NoError(t, env.GetWorkflowResult(&out))
	require.Equal(t, StatusCompleted, out.Status)
}

func TestReviewWorkflowNoDocumentsFails(t *testing.T) {
	var ts testsuite.WorkflowTestSuite
	env := ts.NewTestWorkflowEnvironment()
	env.RegisterWorkflow(ReviewWorkflow)
	registerReviewActivities(env)

	env.OnActivity("CreateReviewRunActivity", mock.Anything, mock.Anything).Return(nil)
	env.OnActivity("LoadDocumentsActivity", mock.Anything, mock.Anything).
		Return(activities.LoadDocumentsOutput{}, nil)
	env.OnActivity("UpdateReviewRunActivity", mock.Anything, mock.Anything).Return(nil)

	env.ExecuteWorkflow(ReviewWorkflow, ReviewWorkflowInput{RunID: "run-3", InputDir: "/empty"})
	require.True(t, env.IsWorkflowCompleted())
	require.Error(t, env.GetWorkflowError())
}

func TestReviewWorkflowCancelSignal(t *testing.T) {
	var ts testsuite.WorkflowTestSuite
	env := ts.NewTestWorkflowEnvironment()
	env.RegisterWorkflow(ReviewWorkflow)
	registerReviewActivities(env)

	docs := []models.Document{docFixture("d1"), docFixture("d2"), docFixture("d3")}
	env.OnActivity("CreateReviewRunActivity", mock.Anything, mock.Anything).Return(nil)
	env.OnActivity("LoadDocumentsActivity", mock.Anything, mock.Anything).
		Return(activities.LoadDocumentsOutput{Documents: docs}, nil)
	env.OnActivity("AnalyzeDocumentActivity", mock.Anything, mock.Anything).
		Return(func(_ context.Context, in activities.AnalyzeDocumentInput) (activities.AnalyzeDocumentOutput, error) {
			return activities.AnalyzeDocumentOutput{Analysis: analysisFixture(in.Document)}, nil
		})
	env.OnActivity("UpdateReviewRunActivity", mock.Anything, mock.Anything).Return(nil)

	env.RegisterDelayedCallback(func() {
		env.SignalWorkflow(SignalCancelReview, nil)
	}, 0)

	env.ExecuteWorkflow(ReviewWorkflow, ReviewWorkflowInput{RunID: "run-4", InputDir: "/in"})
	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())

	var out ReviewWorkflowOutput
	require.NoError(t, env.GetWorkflowResult(&out))
	require.Equal(t, StatusCancelled, out.Status)
}
