package providers

import "testing"

func TestNewManagerBuildsConfiguredProviders(t *testing.T) {
	m, err := NewManager("mock|ollama", 30)
	if err != nil {
		t.Fatal(err)
	}
	if m.Count() != 2 {
		t.Fatalf("count = %d", m.Count())
	}
	if m.First() == nil {
		t.Fatal("First returned nil")
	}
	if _, ref := m.ByIndex(1); ref.Name != "ollama" {
		t.Errorf("ByIndex(1) ref = %+v", ref)
	}
	// out-of-range indexes clamp to the first provider
	if _, ref := m.ByIndex(99); ref.Name != "mock" {
		t.Errorf("ByIndex(99) ref = %+v", ref)
	}
}

func TestNewManagerRejectsUnknownProvider(t *testing.T) {
	if _, err := NewManager("frobnicator", 30); err == nil {
		t.Fatal("expected error for unknown provider")
	}
}

func TestManagerFindIndex(t *testing.T) {
	m, err := NewManager("openai:main|mock", 30)
	if err != nil {
		t.Fatal(err)
	}
	if got := m.FindIndex("openai:main"); got != 0 {
		t.Errorf("FindIndex(openai:main) = %d", got)
	}
	if got := m.FindIndex("MOCK"); got != 1 {
		t.Errorf("FindIndex(MOCK) = %d", got)
	}
	if got := m.FindIndex("missing"); got != -1 {
		t.Errorf("FindIndex(missing) = %d", got)
	}
	if got := m.FindIndex(""); got != -1 {
		t.Errorf("FindIndex empty = %d", got)
	}
}
