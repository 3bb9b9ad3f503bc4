package providers

import "context"

type ProviderInfo struct {
	Name  string `json:"name"`
	Model string `json:"model"`
	Key   string `json:"key"`
}

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type Options struct {
	Temperature float64 `json:"temperature"`
	MaxTokens   int     `json:"max_tokens"`
}

// Completer is the opaque text-completion collaborator the review pipeline
// depends on. onToken may be nil; providers that do not stream invoke it once
// with the full reply.
type Completer interface {
	Complete(ctx context.Context, messages []Message, opts Options, onToken func(token string)) (string, ProviderInfo, error)
}
