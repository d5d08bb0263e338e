package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient("test-key", srv.URL, "gpt-3.5-turbo", 2*time.Second, zap.NewNop())
}

func TestSummarizeReturnsContent(t *testing.T) {
	var gotAuth string
	var gotReq chatCompletionRequest

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		json.NewDecoder(r.Body).Decode(&gotReq)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"content": "- point one\n- point two"}},
			},
		})
	})

	summary, degraded := client.Summarize(context.Background(), "a long task description")
	if degraded {
		t.Fatal("degraded set on successful response")
	}
	if summary != "- point one\n- point two" {
		t.Fatalf("summary %q", summary)
	}
	if gotAuth != "Bearer test-key" {
		t.Fatalf("auth header %q", gotAuth)
	}
	if gotReq.Model != "gpt-3.5-turbo" || gotReq.Temperature != 0.5 {
		t.Fatalf("request %+v", gotReq)
	}
	if len(gotReq.Messages) != 2 || gotReq.Messages[0].Role != "system" {
		t.Fatalf("messages %+v", gotReq.Messages)
	}
}

func TestSummarizeFallsBackOnServerError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"error": map[string]string{"type": "server_error", "message": "boom"},
		})
	})

	summary, degraded := client.Summarize(context.Background(), "anything")
	if !degraded {
		t.Fatal("degraded not set on failure")
	}
	if summary != FallbackSummary {
		t.Fatalf("summary %q, want fallback", summary)
	}
}

func TestSummarizeFallsBackOnEmptyChoices(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"choices": []interface{}{}})
	})

	summary, degraded := client.Summarize(context.Background(), "anything")
	if !degraded || summary != FallbackSummary {
		t.Fatalf("got %q degraded=%v, want fallback", summary, degraded)
	}
}

func TestSummarizeFallsBackWhenUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	client := NewClient("test-key", url, "gpt-3.5-turbo", time.Second, zap.NewNop())
	summary, degraded := client.Summarize(context.Background(), "anything")
	if !degraded || summary != FallbackSummary {
		t.Fatalf("got %q degraded=%v, want fallback", summary, degraded)
	}
}
