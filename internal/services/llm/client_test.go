package llm_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"storyreel/internal/services/llm"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, opts ...llm.Option) *llm.Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	cfg := llm.Config{
		APIKey:  "test-key",
		BaseURL: server.URL,
		Model:   "test/model",
	}
	opts = append(opts, llm.WithSleeper(func(time.Duration) {}))
	return llm.NewClient(cfg, opts...)
}

func completionBody(content string) string {
	encoded, _ := json.Marshal(content)
	return `{"choices":[{"message":{"content":` + string(encoded) + `},"finish_reason":"stop"}]}`
}

func TestExtractScenesReturnsContent(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("authorization header = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(completionBody(`{"Scenes":[]}`)))
	})

	content, err := client.ExtractScenes(context.Background(), "A village wakes at dawn.")
	if err != nil {
		t.Fatalf("ExtractScenes: %v", err)
	}
	if !strings.Contains(content, "Scenes") {
		t.Fatalf("unexpected content %q", content)
	}
}

func TestExtractScenesRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			http.Error(w, "upstream unavailable", http.StatusBadGateway)
			return
		}
		w.Write([]byte(completionBody("ok")))
	}, llm.WithRetryMaxAttempts(3), llm.WithRetryBackoff(time.Millisecond, time.Millisecond))

	content, err := client.ExtractScenes(context.Background(), "Script text.")
	if err != nil {
		t.Fatalf("ExtractScenes: %v", err)
	}
	if content != "ok" {
		t.Fatalf("content = %q", content)
	}
	if got := calls.Load(); got != 3 {
		t.Fatalf("server called %d times, want 3", got)
	}
}

func TestExtractScenesDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "bad request", http.StatusBadRequest)
	}, llm.WithRetryMaxAttempts(5))

	_, err := client.ExtractScenes(context.Background(), "Script text.")
	if err == nil {
		t.Fatal("expected error")
	}
	if got := calls.Load(); got != 1 {
		t.Fatalf("server called %d times, want 1", got)
	}
}

func TestExtractScenesRequiresInput(t *testing.T) {
	client := llm.NewClient(llm.Config{APIKey: "k", Model: "m"})
	if _, err := client.ExtractScenes(context.Background(), "   "); err == nil {
		t.Fatal("expected error for empty script")
	}

	noKey := llm.NewClient(llm.Config{Model: "m"})
	if _, err := noKey.ExtractScenes(context.Background(), "script"); err == nil {
		t.Fatal("expected error for missing api key")
	}
}

func TestBuildScenePromptShape(t *testing.T) {
	messages := llm.BuildScenePrompt("The farmer walks out.")
	if len(messages) != 2 {
		t.Fatalf("message count = %d, want 2", len(messages))
	}
	if messages[0].Role != "system" || messages[1].Role != "user" {
		t.Fatalf("unexpected roles: %+v", messages)
	}
	user := messages[1].Content
	for _, fragment := range []string{"STRICT RULES", "scene_id", "visual_focus", "The farmer walks out."} {
		if !strings.Contains(user, fragment) {
			t.Fatalf("user prompt missing %q", fragment)
		}
	}
}
