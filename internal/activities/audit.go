package activities

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"litreview/internal/providers"
	"litreview/internal/storage"
)

type auditSink interface {
	Insert(ctx context.Context, rec storage.LLMCallRecord) error
}

// audited wraps the active provider so every completion call leaves a row in
// the llm_calls table. Without a database the provider is returned as-is.
func (a *Activities) audited(operation, runID, docID string) providers.Completer {
	base := a.providers.First()
	if a.llmAuditRepo == nil {
		return base
	}
	return &auditedCompleter{
		inner:     base,
		sink:      a.llmAuditRepo,
		operation: operation,
		runID:     runID,
		docID:     docID,
	}
}

type auditedCompleter struct {
	inner     providers.Completer
	sink      auditSink
	operation string
	runID     string
	docID     string
}

func (c *auditedCompleter) Complete(ctx context.Context, messages []providers.Message, opts providers.Options, onToken func(string)) (string, providers.ProviderInfo, error) {
	start := time.Now()
	text, info, err := c.inner.Complete(ctx, messages, opts, onToken)
	rec := storage.LLMCallRecord{
		CallID:       uuid.NewString(),
		Operation:    c.operation,
		RunID:        c.runID,
		DocID:        c.docID,
		ProviderName: info.Name,
		Model:        info.Model,
		Status:       "ok",
		DurationMS:   time.Since(start).Milliseconds(),
	}
	if err != nil {
		rec.Status = "error"
		rec.ErrorType = string(providers.ClassifyError(err))
	}
	// the attempt context may already be expired when the call failed
	if insErr := c.sink.Insert(context.WithoutCancel(ctx), rec); insErr != nil {
		log.Printf("llm audit insert: %v", insErr)
	}
	return text, info, err
}
