package providers

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
)

func TestMockProviderExtraction(t *testing.T) {
	m := NewMockProvider()
	messages := []Message{
		{Role: "system", Content: `You are an academic assistant. Extract ONLY from the provided context.`},
		{Role: "user", Content: `Document doc_id: "paper-42", filename: "paper.pdf".`},
	}

	var streamed strings.Builder
	text, info, err := m.Complete(context.Background(), messages, Options{}, func(tok string) {
		streamed.WriteString(tok)
	})
	if err != nil {
		t.Fatal(err)
	}
	if info.Name != "mock" {
		t.Errorf("provider name = %q", info.Name)
	}
	if streamed.String() != text {
		t.Error("streamed tokens do not reassemble the full reply")
	}

	var parsed map[string]any
	if err := json.Unmarshal([]byte(text), &parsed); err != nil {
		t.Fatalf("mock extraction is not valid JSON: %v", err)
	}
	if parsed["doc_id"] != "paper-42" {
		t.Errorf("doc_id = %v, want echo of prompt id", parsed["doc_id"])
	}
	if _, ok := parsed["citations_used"].([]any); !ok {
		t.Errorf("citations_used = %T", parsed["citations_used"])
	}
}

func TestMockProviderSynthesisCitesEveryDocument(t *testing.T) {
	m := NewMockProvider()
	user := `Doc1: {"doc_id": "a"}` + "\n" + `Doc2: {"doc_id": "b"}` + "\n" + `Doc3: {"doc_id": "c"}`
	messages := []Message{
		{Role: "system", Content: "You are an Academic Researcher writing a literature review."},
		{Role: "user", Content: user},
	}

	text, _, err := m.Complete(context.Background(), messages, Options{}, nil)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"[Doc1 • p1 • chunk_0]", "[Doc2 • p1 • chunk_0]", "[Doc3 • p1 • chunk_0]"} {
		if !strings.Contains(text, want) {
			t.Errorf("synthesis missing citation %s", want)
		}
	}
}
