package providers

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestClassifyError(t *testing.T) {
	cases := []struct {
		err  error
		want ErrorType
	}{
		{nil, ""},
		{errors.New("insufficient_quota for this key"), ErrorQuota},
		{errors.New("429 too many requests"), ErrorRate},
		{errors.New("rate limit exceeded"), ErrorRate},
		{context.DeadlineExceeded, ErrorTransient},
		{errors.New("request timeout"), ErrorTransient},
		{errors.New("service temporarily unavailable"), ErrorTransient},
		{errors.New("maximum context length is 4096 tokens"), ErrorContext},
		{errors.New("prompt is too long"), ErrorContext},
		{errors.New("invalid api key"), ErrorPermanent},
		{fmt.Errorf("call provider: %w", context.DeadlineExceeded), ErrorTransient},
	}
	for _, c := range cases {
		if got := ClassifyError(c.err); got != c.want {
			t.Errorf("ClassifyError(%v) = %q, want %q", c.err, got, c.want)
		}
	}
}
