package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"meal-lens/internal/config"
)

func upstreamConfig(url string) config.Upstream {
	return config.Upstream{APIKey: "test-key", BaseURL: url, Model: "test-model"}
}

func completionBody(content string) string {
	b, _ := json.Marshal(map[string]any{
		"choices": []map[string]any{
			{"message": map[string]any{"role": "assistant", "content": content}},
		},
	})
	return string(b)
}

func TestAnalyzeMissingCredential(t *testing.T) {
	client := NewClient(config.Upstream{BaseURL: "http://unused", Model: "m"})

	_, err := client.Analyze(context.Background(), "100g blueberries")
	if !errors.Is(err, ErrMissingCredential) {
		t.Fatalf("expected ErrMissingCredential, got %v", err)
	}
}

func TestAnalyzeReturnsModelJSON(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("unexpected auth header %q", got)
		}
		w.Write([]byte(completionBody(`{"loggedMeals": [{"name": "Blueberries"}]}`)))
	}))
	defer upstream.Close()

	client := NewClient(upstreamConfig(upstream.URL))

	payload, err := client.Analyze(context.Background(), "100g blueberries")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(payload, &decoded); err != nil {
		t.Fatalf("payload is not JSON: %v", err)
	}
	if _, ok := decoded["loggedMeals"]; !ok {
		t.Fatalf("payload missing loggedMeals: %s", payload)
	}
}

func TestAnalyzeStripsMarkdownFences(t *testing.T) {
	content := "```json\n{\"loggedMeals\": []}\n```"
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(completionBody(content)))
	}))
	defer upstream.Close()

	client := NewClient(upstreamConfig(upstream.URL))

	payload, err := client.Analyze(context.Background(), "pizza")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(payload) != `{"loggedMeals": []}` {
		t.Fatalf("unexpected payload: %s", payload)
	}
}

func TestAnalyzeNon2xxIsUpstreamError(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer upstream.Close()

	client := NewClient(upstreamConfig(upstream.URL))

	_, err := client.Analyze(context.Background(), "pizza")
	if !errors.Is(err, ErrUpstream) {
		t.Fatalf("expected ErrUpstream, got %v", err)
	}
}

func TestAnalyzeMalformedBody(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json at all"))
	}))
	defer upstream.Close()

	client := NewClient(upstreamConfig(upstream.URL))

	_, err := client.Analyze(context.Background(), "pizza")
	if !errors.Is(err, ErrMalformed) {
		t.Fatalf("expected ErrMalformed, got %v", err)
	}
}

func TestAnalyzeNonJSONCompletion(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(completionBody("I could not determine the nutrition.")))
	}))
	defer upstream.Close()

	client := NewClient(upstreamConfig(upstream.URL))

	_, err := client.Analyze(context.Background(), "pizza")
	if !errors.Is(err, ErrMalformed) {
		t.Fatalf("expected ErrMalformed, got %v", err)
	}
}
