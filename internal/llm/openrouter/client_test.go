package openrouter

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kitbuilder587/nosible-go/internal/llm"
)

func chatResponse(content string) map[string]any {
	choices := []any{}
	if content != "" {
		choices = append(choices, map[string]any{
			"index":         0,
			"message":       map[string]any{"role": "assistant", "content": content},
			"finish_reason": "stop",
		})
	}
	return map[string]any{
		"id":      "chatcmpl-1",
		"object":  "chat.completion",
		"model":   "openai/gpt-4o",
		"choices": choices,
	}
}

func apiError(message string) map[string]any {
	return map[string]any{"error": map[string]any{"message": message, "type": "error"}}
}

func TestClient_Complete(t *testing.T) {
	logger := zap.NewNop()

	tests := []struct {
		name       string
		response   any
		statusCode int
		want       string
		wantErr    error
	}{
		{
			name:       "successful completion",
			response:   chatResponse("0.42"),
			statusCode: http.StatusOK,
			want:       "0.42",
		},
		{
			name:       "unauthorized",
			response:   apiError("bad key"),
			statusCode: http.StatusUnauthorized,
			wantErr:    llm.ErrAuthFailed,
		},
		{
			name:       "rate limit",
			response:   apiError("slow down"),
			statusCode: http.StatusTooManyRequests,
			wantErr:    llm.ErrRateLimit,
		},
		{
			name:       "empty response",
			response:   chatResponse(""),
			statusCode: http.StatusOK,
			wantErr:    llm.ErrEmptyResponse,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Header.Get("Authorization") != "Bearer test-key" {
					t.Errorf("Authorization = %q", r.Header.Get("Authorization"))
				}
				if r.Header.Get("X-Title") == "" {
					t.Error("missing X-Title header")
				}

				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.statusCode)
				json.NewEncoder(w).Encode(tt.response)
			}))
			defer server.Close()

			client := New(Config{
				APIKey:  "test-key",
				BaseURL: server.URL,
				Timeout: 5 * time.Second,
			}, logger)

			got, err := client.Complete(context.Background(), "prompt")

			if tt.wantErr != nil {
				if err != tt.wantErr {
					t.Errorf("Complete() error = %v, wantErr %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Complete() unexpected error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Complete() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestClient_SendsModelAndTemperature(t *testing.T) {
	var req struct {
		Model       string  `json:"model"`
		Temperature float64 `json:"temperature"`
		Messages    []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("path = %q", r.URL.Path)
		}
		json.NewDecoder(r.Body).Decode(&req)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(chatResponse("ok"))
	}))
	defer server.Close()

	client := New(Config{APIKey: "test-key", BaseURL: server.URL}, nil)
	if _, err := client.Complete(context.Background(), "hello"); err != nil {
		t.Fatalf("Complete() error = %v", err)
	}

	if req.Model != DefaultModel {
		t.Errorf("model = %q, want %q", req.Model, DefaultModel)
	}
	if req.Temperature < 0.69 || req.Temperature > 0.71 {
		t.Errorf("temperature = %v, want 0.7", req.Temperature)
	}
	if len(req.Messages) != 1 || req.Messages[0].Role != "user" || req.Messages[0].Content != "hello" {
		t.Errorf("messages = %+v", req.Messages)
	}
}
