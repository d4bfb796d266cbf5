package openaiLLM

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/akolanti/docqa/internal/domain/commonModels"
	"github.com/akolanti/docqa/internal/rag/llm"
)

type chatRequest struct {
	Model    string `json:"model"`
	Stream   bool   `json:"stream"`
	Messages []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
}

func sseChunk(content string) string {
	return fmt.Sprintf(`data: {"id":"c1","object":"chat.completion.chunk","created":1,"model":"llama3.2:3b","choices":[{"index":0,"delta":{"role":"assistant","content":%q},"finish_reason":null}]}`+"\n\n", content)
}

func streamingServer(t *testing.T, fragments []string, got *chatRequest) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got != nil {
			if err := json.NewDecoder(r.Body).Decode(got); err != nil {
				t.Errorf("bad request body: %v", err)
			}
		}
		w.Header().Set("Content-Type", "text/event-stream")
		for _, f := range fragments {
			_, _ = w.Write([]byte(sseChunk(f)))
			w.(http.Flusher).Flush()
		}
		_, _ = w.Write([]byte("data: [DONE]\n\n"))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestGenerate_StreamsInOrder(t *testing.T) {
	var got chatRequest
	srv := streamingServer(t, []string{"The ", "revenue ", "grew."}, &got)
	g := NewGenerator(Config{BaseURL: srv.URL, APIKey: "ollama", Model: "llama3.2:3b"})

	var fragments []string
	for fragment, err := range g.Generate(context.Background(), "Revenue grew 12%.", "How did revenue change?") {
		if err != nil {
			t.Fatalf("unexpected error %v", err)
		}
		fragments = append(fragments, fragment)
	}

	if strings.Join(fragments, "|") != "The |revenue |grew." {
		t.Errorf("unexpected fragments %q", fragments)
	}
	if !got.Stream || got.Model != "llama3.2:3b" || len(got.Messages) != 2 {
		t.Fatalf("unexpected request %+v", got)
	}
	if got.Messages[0].Role != "system" || got.Messages[0].Content != llm.SystemPrompt {
		t.Errorf("system message not sent first")
	}
	if got.Messages[1].Content != "Context: Revenue grew 12%., Question: How did revenue change?" {
		t.Errorf("unexpected user message %q", got.Messages[1].Content)
	}
}

func TestGenerate_ConsumerCanStopEarly(t *testing.T) {
	srv := streamingServer(t, []string{"a", "b", "c", "d"}, nil)
	g := NewGenerator(Config{BaseURL: srv.URL, APIKey: "k", Model: "m"})

	count := 0
	for _, err := range g.Generate(context.Background(), "ctx", "q") {
		if err != nil {
			t.Fatalf("unexpected error %v", err)
		}
		count++
		if count == 2 {
			break
		}
	}
	if count != 2 {
		t.Errorf("Expected to stop after 2 fragments, got %d", count)
	}
}

func TestGenerate_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"model not found"}}`, http.StatusNotFound)
	}))
	defer srv.Close()
	g := NewGenerator(Config{BaseURL: srv.URL, APIKey: "k", Model: "missing"})

	answer, err := llm.Collect(g.Generate(context.Background(), "ctx", "q"))
	if !errors.Is(err, commonModels.ErrGeneration) {
		t.Errorf("Expected ErrGeneration, got %v", err)
	}
	if answer != "" {
		t.Errorf("Expected no text, got %q", answer)
	}
}

func TestCollect(t *testing.T) {
	srv := streamingServer(t, []string{"Hello", ", ", "world"}, nil)
	g := NewGenerator(Config{BaseURL: srv.URL, APIKey: "k", Model: "m"})

	answer, err := llm.Collect(g.Generate(context.Background(), "ctx", "q"))
	if err != nil || answer != "Hello, world" {
		t.Errorf("got %q, %v", answer, err)
	}
}
