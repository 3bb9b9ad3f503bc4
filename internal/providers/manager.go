package providers

import (
	"fmt"
	"strings"
)

type NamedCompleter struct {
	Ref      ProviderRef
	Provider Completer
}

// Manager builds and indexes the configured completion providers. Remote
// providers are wrapped in a shared rate limiter because they front a single
// inference resource.
type Manager struct {
	completers []NamedCompleter
}

func NewManager(list string, rpm int) (*Manager, error) {
	refs := ParseProviderList(list)
	m := &Manager{}
	for _, ref := range refs {
		p, err := buildProvider(ref)
		if err != nil {
			return nil, err
		}
		if strings.ToLower(ref.Name) != "mock" {
			p = Throttle(p, rpm)
		}
		m.completers = append(m.completers, NamedCompleter{Ref: ref, Provider: p})
	}
	if len(m.completers) == 0 {
		m.completers = []NamedCompleter{{Ref: ProviderRef{Raw: "mock", Name: "mock"}, Provider: NewMockProvider()}}
	}
	return m, nil
}

func (m *Manager) First() Completer {
	return m.completers[0].Provider
}

func (m *Manager) ByIndex(i int) (Completer, ProviderRef) {
	if i < 0 || i >= len(m.completers) {
		i = 0
	}
	return m.completers[i].Provider, m.completers[i].Ref
}

func (m *Manager) Count() int {
	return len(m.completers)
}

func (m *Manager) FindIndex(raw string) int {
	target := strings.ToLower(strings.TrimSpace(raw))
	if target == "" {
		return -1
	}
	for i := range m.completers {
		ref := m.completers[i].Ref
		candidates := []string{
			strings.ToLower(strings.TrimSpace(ref.Raw)),
			strings.ToLower(strings.TrimSpace(ref.Name)),
		}
		if ref.KeyAlias != "" {
			candidates = append(candidates, strings.ToLower(strings.TrimSpace(ref.Name+":"+ref.KeyAlias)))
		}
		for _, c := range candidates {
			if c == target {
				return i
			}
		}
	}
	return -1
}

func buildProvider(ref ProviderRef) (Completer, error) {
	switch strings.ToLower(ref.Name) {
	case "mock":
		return NewMockProvider(), nil
	case "openai":
		return NewOpenAIProvider(ref.KeyAlias), nil
	case "groq":
		return NewGroqProvider(ref.KeyAlias), nil
	case "ollama":
		return NewOllamaProvider(ref.KeyAlias), nil
	default:
		return nil, fmt.Errorf("unsupported provider: %s", ref.Name)
	}
}
