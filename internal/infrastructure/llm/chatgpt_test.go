package llm

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

func newTestChatGPT(baseURL string, maxTokens int64) *ChatGPTProvider {
	client := openai.NewClient(
		option.WithAPIKey("test-key"),
		option.WithBaseURL(baseURL),
	)
	return &ChatGPTProvider{
		client:    &client,
		model:     "gpt-4o-mini",
		maxTokens: maxTokens,
	}
}

func TestChatGPTSummarizeSendsTokenCeiling(t *testing.T) {
	t.Parallel()

	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(raw, &body); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"id":"c1","choices":[{"index":0,"message":{"role":"assistant","content":"a summary"}}]}`)
	}))
	defer srv.Close()

	got, err := newTestChatGPT(srv.URL, 321).Summarize(context.Background(), "summarize this", 800)
	if err != nil {
		t.Fatalf("summarize: %v", err)
	}
	if got != "a summary" {
		t.Fatalf("unexpected summary: %q", got)
	}

	ceiling, ok := body["max_completion_tokens"].(float64)
	if !ok || int64(ceiling) != 321 {
		t.Fatalf("expected max_completion_tokens 321 in request, got %v", body["max_completion_tokens"])
	}
	if body["model"] != "gpt-4o-mini" {
		t.Fatalf("unexpected model: %v", body["model"])
	}
}

func TestChatGPTSummarizeOmitsZeroCeiling(t *testing.T) {
	t.Parallel()

	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(raw, &body); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"id":"c1","choices":[{"index":0,"message":{"role":"assistant","content":"ok"}}]}`)
	}))
	defer srv.Close()

	if _, err := newTestChatGPT(srv.URL, 0).Summarize(context.Background(), "p", 800); err != nil {
		t.Fatalf("summarize: %v", err)
	}
	if _, present := body["max_completion_tokens"]; present {
		t.Fatalf("zero ceiling must be omitted from the request")
	}
}
