package backend

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sona-ai/sona/pkg/config"
	"github.com/sona-ai/sona/pkg/models"
)

func newTestClient(upstream *httptest.Server) *GeminiClient {
	return NewGemini(config.BackendConfig{BaseURL: upstream.URL, APIKey: "test-key"})
}

func textResponse(text string) generateResponse {
	return generateResponse{
		Candidates: []candidate{
			{Content: &content{Parts: []part{{Text: text}}}, FinishReason: "STOP"},
		},
	}
}

func TestGenerate(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, "gemini-2.5-pro") {
			t.Errorf("expected model in path, got %s", r.URL.Path)
		}
		if r.URL.Query().Get("key") != "test-key" {
			t.Error("expected api key in query")
		}

		var req generateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatal(err)
		}
		if len(req.Contents) != 1 || req.Contents[0].Parts[0].Text != "hello" {
			t.Errorf("unexpected request contents: %+v", req.Contents)
		}

		json.NewEncoder(w).Encode(textResponse("world"))
	}))
	defer upstream.Close()

	c := newTestClient(upstream)
	text, err := c.Generate(context.Background(), "gemini-2.5-pro", "hello", nil)
	if err != nil {
		t.Fatal(err)
	}
	if text != "world" {
		t.Errorf("expected %q, got %q", "world", text)
	}
}

func TestGenerateWithImages(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req generateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatal(err)
		}
		parts := req.Contents[0].Parts
		if len(parts) != 2 {
			t.Fatalf("expected text + image parts, got %d", len(parts))
		}
		if parts[1].InlineData == nil || parts[1].InlineData.MIMEType != "image/png" {
			t.Errorf("unexpected image part: %+v", parts[1])
		}
		json.NewEncoder(w).Encode(textResponse("described"))
	}))
	defer upstream.Close()

	c := newTestClient(upstream)
	images := []models.Attachment{{Data: []byte{1, 2, 3}, MIME: "image/png"}}
	text, err := c.Generate(context.Background(), "gemini-2.5-flash", "what is on screen?", images)
	if err != nil {
		t.Fatal(err)
	}
	if text != "described" {
		t.Errorf("expected %q, got %q", "described", text)
	}
}

func TestGenerateStatusError(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer upstream.Close()

	c := newTestClient(upstream)
	_, err := c.Generate(context.Background(), "gemini-2.5-pro", "hi", nil)

	var se *StatusError
	if !errors.As(err, &se) {
		t.Fatalf("expected StatusError, got %v", err)
	}
	if se.Code != http.StatusTooManyRequests {
		t.Errorf("expected 429, got %d", se.Code)
	}
}

func TestGenerateBlocked(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := generateResponse{
			Candidates: []candidate{
				{FinishReason: "SAFETY", SafetyRatings: []safetyRating{{Category: "HARM", Probability: "HIGH"}}},
			},
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer upstream.Close()

	c := newTestClient(upstream)
	_, err := c.Generate(context.Background(), "gemini-2.5-pro", "hi", nil)
	if !errors.Is(err, ErrBlocked) {
		t.Errorf("expected ErrBlocked, got %v", err)
	}
}

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"blocked", ErrBlocked, false},
		{"rate limited", &StatusError{Code: 429}, true},
		{"server error", &StatusError{Code: 503}, true},
		{"bad request", &StatusError{Code: 400}, false},
		{"transport failure", errors.New("connection refused"), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsTransient(tt.err); got != tt.want {
				t.Errorf("IsTransient(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
