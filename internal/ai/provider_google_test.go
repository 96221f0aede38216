package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// writeGeminiResponse writes a generateContent body with one candidate.
func writeGeminiResponse(w http.ResponseWriter, parts ...string) {
	textParts := make([]map[string]string, len(parts))
	for i, p := range parts {
		textParts[i] = map[string]string{"text": p}
	}
	_ = json.NewEncoder(w).Encode(map[string]any{
		"candidates": []map[string]any{
			{"content": map[string]any{"parts": textParts}},
		},
		"usageMetadata": map[string]int{
			"promptTokenCount":     8,
			"candidatesTokenCount": 12,
		},
	})
}

func TestGoogleProvider_Complete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, "/models/gemini-2.5-flash:generateContent") {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.URL.Query().Get("key") != "test-key" {
			t.Errorf("missing or wrong API key in query")
		}

		var req geminiRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if len(req.Contents) == 0 {
			t.Error("no contents in request")
		}
		if req.GenerationConfig != nil {
			t.Errorf("generationConfig = %+v, want nil for a bare request", req.GenerationConfig)
		}

		writeGeminiResponse(w, "Gemini ", "response")
	}))
	defer server.Close()

	provider := NewGoogleProvider("test-key", WithGoogleBaseURL(server.URL))

	resp, err := provider.Complete(context.Background(), CompletionRequest{
		Messages: []Message{{Role: "user", Content: "hello"}},
	})
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if resp.Content != "Gemini response" {
		t.Errorf("content = %q, want %q", resp.Content, "Gemini response")
	}
	if resp.InputTokens != 8 || resp.OutputTokens != 12 {
		t.Errorf("tokens = %d/%d, want 8/12", resp.InputTokens, resp.OutputTokens)
	}
}

func TestGoogleProvider_Complete_RolesAndSystemInstruction(t *testing.T) {
	var received geminiRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&received)
		writeGeminiResponse(w, "ok")
	}))
	defer server.Close()

	provider := NewGoogleProvider("test-key", WithGoogleBaseURL(server.URL))

	_, err := provider.Complete(context.Background(), CompletionRequest{
		Messages: []Message{
			{Role: "system", Content: "You generate practice quizzes."},
			{Role: "user", Content: "hello"},
			{Role: "assistant", Content: "hi"},
			{Role: "user", Content: "quiz me on kinematics"},
		},
	})
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}

	if received.SystemInstruction == nil || received.SystemInstruction.Parts[0].Text != "You generate practice quizzes." {
		t.Errorf("systemInstruction = %+v, want system prompt", received.SystemInstruction)
	}
	if len(received.Contents) != 3 {
		t.Fatalf("got %d contents, want 3 (system moved out)", len(received.Contents))
	}
	if received.Contents[1].Role != "model" {
		t.Errorf("assistant role mapped to %q, want %q", received.Contents[1].Role, "model")
	}
}

func TestGoogleProvider_Complete_JSONOutput(t *testing.T) {
	var received geminiRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&received)
		writeGeminiResponse(w, `{"title":"t","questions":[]}`)
	}))
	defer server.Close()

	provider := NewGoogleProvider("test-key", WithGoogleBaseURL(server.URL))

	_, err := provider.Complete(context.Background(), CompletionRequest{
		Messages:   []Message{{Role: "user", Content: "quiz"}},
		MaxTokens:  256,
		JSONOutput: true,
	})
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if received.GenerationConfig == nil {
		t.Fatal("generationConfig should be set")
	}
	if received.GenerationConfig.ResponseMIMEType != "application/json" {
		t.Errorf("responseMimeType = %q, want application/json", received.GenerationConfig.ResponseMIMEType)
	}
	if received.GenerationConfig.MaxOutputTokens != 256 {
		t.Errorf("maxOutputTokens = %d, want 256", received.GenerationConfig.MaxOutputTokens)
	}
}

func TestGoogleProvider_Complete_NoCandidates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"candidates":[]}`))
	}))
	defer server.Close()

	provider := NewGoogleProvider("test-key", WithGoogleBaseURL(server.URL))

	_, err := provider.Complete(context.Background(), CompletionRequest{
		Messages: []Message{{Role: "user", Content: "hello"}},
	})
	if err == nil {
		t.Fatal("Complete() should fail without candidates")
	}
}

func TestGoogleProvider_Complete_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error": "forbidden"}`))
	}))
	defer server.Close()

	provider := NewGoogleProvider("test-key", WithGoogleBaseURL(server.URL))

	_, err := provider.Complete(context.Background(), CompletionRequest{
		Messages: []Message{{Role: "user", Content: "hello"}},
	})
	if err == nil {
		t.Fatal("Complete() should return error on API error")
	}
}

func TestGoogleProvider_HealthCheck(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		wantErr    bool
	}{
		{"healthy", http.StatusOK, false},
		{"unhealthy", http.StatusForbidden, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if !strings.HasSuffix(r.URL.Path, "/models") {
					t.Errorf("unexpected path: %s", r.URL.Path)
				}
				w.WriteHeader(tt.statusCode)
			}))
			defer server.Close()

			provider := NewGoogleProvider("test-key", WithGoogleBaseURL(server.URL))
			err := provider.HealthCheck(context.Background())

			if (err != nil) != tt.wantErr {
				t.Errorf("HealthCheck() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
