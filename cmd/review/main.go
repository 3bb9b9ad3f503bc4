// Command review runs the synthesis pipeline locally against a directory of
// documents, without Temporal or Postgres. Progress streams to stderr and
// the result lands in the output directory as JSON plus the review text.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"litreview/internal/config"
	"litreview/internal/providers"
	"litreview/internal/review"
	"litreview/internal/source"
	"litreview/internal/util"
)

func main() {
	_ = godotenv.Load(".env")
	cfg := config.Load()

	inputDir := flag.String("in", cfg.DataInRoot, "directory of input documents (*.json manifests, *.pdf)")
	outDir := flag.String("out", cfg.DataOutRoot, "output directory")
	providerList := flag.String("providers", cfg.Providers, "completion providers, e.g. mock or openai:main|groq:alt")
	flag.Parse()

	docs, err := source.LoadDir(*inputDir)
	if err != nil {
		log.Fatal(err)
	}
	log.Printf("loaded %d document(s) from %s", len(docs), *inputDir)

	pm, err := providers.NewManager(*providerList, cfg.ProviderRPM)
	if err != nil {
		log.Fatal(err)
	}

	engine := review.NewEngine(pm.First(),
		review.WithAttempts(cfg.AnalysisMaxAttempts),
		review.WithTimeouts(
			time.Duration(cfg.AnalysisTimeoutSecs)*time.Second,
			time.Duration(cfg.SynthesisTimeoutSecs)*time.Second,
		),
		review.WithBudgets(cfg.ChunkBudget, cfg.ChunkCharBudget),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runID := uuid.NewString()
	result, err := engine.Run(ctx, docs, review.RunOptions{
		RunID:      runID,
		OnProgress: logProgress,
		Cancelled:  func() bool { return ctx.Err() != nil },
	})
	if errors.Is(err, review.ErrCancelled) {
		log.Printf("run %s cancelled", runID)
		return
	}
	if err != nil {
		log.Fatal(err)
	}

	dir := util.SafeJoin(*outDir, runID)
	if err := util.EnsureDir(dir); err != nil {
		log.Fatal(err)
	}
	jsonPath := filepath.Join(dir, "review.json")
	if err := util.WriteJSONAtomic(jsonPath, result); err != nil {
		log.Fatal(err)
	}
	if err := util.WriteTextAtomic(filepath.Join(dir, "review.md"), result.FinalSynthesis.Text); err != nil {
		log.Fatal(err)
	}

	fmt.Printf("review complete: mode=%s cohesion=%.2f coverage=%.0f%% quality=%s\n",
		result.FinalSynthesis.Mode,
		result.CohesionAnalysis.Score,
		result.Validation.Metrics.CitationCoverage*100,
		result.Validation.Quality,
	)
	for _, w := range result.Validation.Warnings {
		fmt.Printf("warning: %s\n", w)
	}
	fmt.Printf("written to %s\n", jsonPath)
}

func logProgress(ev review.Event) {
	switch ev.Type {
	case review.EventDocumentStart:
		log.Printf("[%d/%d] analyzing %s", ev.Current, ev.Total, ev.Filename)
	case review.EventDocumentComplete:
		quality := ""
		if ev.Review != nil {
			quality = ev.Review.Validation.Quality
		}
		log.Printf("[%d/%d] done %s quality=%s", ev.Current, ev.Total, ev.Filename, quality)
	case review.EventSynthesisStart:
		log.Printf("synthesizing (%s mode, %d documents)", ev.Mode, ev.Total)
	case review.EventComplete:
		log.Printf("run complete")
	}
}
