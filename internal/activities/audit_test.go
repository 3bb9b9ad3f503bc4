package activities

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"litreview/internal/providers"
	"litreview/internal/storage"
)

type completerFunc func(ctx context.Context, messages []providers.Message, opts providers.Options, onToken func(string)) (string, providers.ProviderInfo, error)

func (f completerFunc) Complete(ctx context.Context, messages []providers.Message, opts providers.Options, onToken func(string)) (string, providers.ProviderInfo, error) {
	return f(ctx, messages, opts, onToken)
}

type captureSink struct {
	records []storage.LLMCallRecord
}

func (s *captureSink) Insert(_ context.Context, rec storage.LLMCallRecord) error {
	s.records = append(s.records, rec)
	return nil
}

func TestAuditedCompleterRecordsSuccess(t *testing.T) {
	sink := &captureSink{}
	c := &auditedCompleter{
		inner: completerFunc(func(context.Context, []providers.Message, providers.Options, func(string)) (string, providers.ProviderInfo, error) {
			return "reply", providers.ProviderInfo{Name: "mock", Model: "mock-1"}, nil
		}),
		sink:      sink,
		operation: "analysis",
		runID:     "run-1",
		docID:     "doc-1",
	}

	text, info, err := c.Complete(context.Background(), nil, providers.Options{}, nil)
	require.NoError(t, err)
	require.Equal(t, "reply", text)
	require.Equal(t, "mock", info.Name)

	require.Len(t, sink.records, 1)
	rec := sink.records[0]
	require.Equal(t, "ok", rec.Status)
	require.Equal(t, "analysis", rec.Operation)
	require.Equal(t, "run-1", rec.RunID)
	require.Equal(t, "doc-1", rec.DocID)
	require.Equal(t, "mock", rec.ProviderName)
	require.NotEmpty(t, rec.CallID)
	require.GreaterOrEqual(t, rec.DurationMS, int64(0))
}

func TestAuditedCompleterRecordsFailure(t *testing.T) {
	sink := &captureSink{}
	c := &auditedCompleter{
		inner: completerFunc(func(context.Context, []providers.Message, providers.Options, func(string)) (string, providers.ProviderInfo, error) {
			return "", providers.ProviderInfo{Name: "groq"}, errors.New("rate limit exceeded")
		}),
		sink:      sink,
		operation: "synthesis",
		runID:     "run-2",
	}

	_, _, err := c.Complete(context.Background(), nil, providers.Options{}, nil)
	require.Error(t, err)

	require.Len(t, sink.records, 1)
	rec := sink.records[0]
	require.Equal(t, "error", rec.Status)
	require.Equal(t, string(providers.ErrorRate), rec.ErrorType)
	require.Equal(t, "synthesis", rec.Operation)
}

func TestAuditedSkippedWithoutDatabase(t *testing.T) {
	pm, err := providers.NewManager("mock", 0)
	require.NoError(t, err)
	a := &Activities{providers: pm}

	c := a.audited("analysis", "run-3", "doc-3")
	require.Same(t, pm.First(), c)
}
