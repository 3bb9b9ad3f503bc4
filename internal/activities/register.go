package activities

import "go.temporal.io/sdk/worker"

func Register(w worker.Worker, a *Activities) {
	w.RegisterActivity(a.LoadDocumentsActivity)
	w.RegisterActivity(a.AnalyzeDocumentActivity)
	w.RegisterActivity(a.SynthesizeActivity)
	w.RegisterActivity(a.WriteReviewArtifactsActivity)
	w.RegisterActivity(a.CreateReviewRunActivity)
	w.RegisterActivity(a.UpdateReviewRunActivity)
}
