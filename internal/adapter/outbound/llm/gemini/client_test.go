package gemini

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func newTestClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	cfg := Config{
		BaseURL:     baseURL,
		APIKey:      "test-key",
		Model:       "gemini-pro",
		Timeout:     5 * time.Second,
		MaxRetries:  1,
		Temperature: 0.7,
	}
	client, err := NewClient(cfg)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return client
}

func makeGenerateResponse(text string) generateResponse {
	var resp generateResponse
	resp.Candidates = []struct {
		Content content `json:"content"`
	}{
		{Content: content{Parts: []part{{Text: text}}}},
	}
	return resp
}

func TestGenerate_Success(t *testing.T) {
	const draft = "🎨 سلام، آماده همکاری هستم. ✨"

	var gotPath, gotKey string
	var gotBody generateRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("x-goog-api-key")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decoding request body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(makeGenerateResponse(draft))
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	reply, err := client.Generate(context.Background(), "نیازمند طراح UI برای پروژه @someagency")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if reply != draft {
		t.Errorf("reply = %q, want %q", reply, draft)
	}
	if gotPath != "/v1beta/models/gemini-pro:generateContent" {
		t.Errorf("path = %q", gotPath)
	}
	if gotKey != "test-key" {
		t.Errorf("api key header = %q", gotKey)
	}
	if len(gotBody.Contents) != 1 || len(gotBody.Contents[0].Parts) != 1 {
		t.Fatalf("unexpected request shape: %+v", gotBody)
	}
	if !strings.Contains(gotBody.Contents[0].Parts[0].Text, "نیازمند طراح UI برای پروژه @someagency") {
		t.Errorf("prompt missing posting text:\n%s", gotBody.Contents[0].Parts[0].Text)
	}
}

func TestGenerate_RetryOnServerError(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(makeGenerateResponse("retry worked"))
	}))
	defer srv.Close()

	cfg := Config{
		BaseURL:    srv.URL,
		APIKey:     "test-key",
		Model:      "gemini-pro",
		Timeout:    5 * time.Second,
		MaxRetries: 2,
	}
	client, err := NewClient(cfg)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}

	reply, err := client.Generate(context.Background(), "posting text")
	if err != nil {
		t.Fatalf("Generate with retry: %v", err)
	}
	if reply != "retry worked" {
		t.Errorf("reply = %q", reply)
	}
	if attempts != 2 {
		t.Errorf("attempts = %d, want 2", attempts)
	}
}

func TestGenerate_NoCandidates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(generateResponse{})
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	if _, err := client.Generate(context.Background(), "posting text"); err == nil {
		t.Error("Generate should fail when no candidates are returned")
	}
}

func TestGenerate_EmptyDraft(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(makeGenerateResponse("   \n"))
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	if _, err := client.Generate(context.Background(), "posting text"); err == nil {
		t.Error("Generate should fail on a whitespace-only draft")
	}
}

func TestHealthCheck_Healthy(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/v1beta/models/gemini-pro" && r.Method == http.MethodGet {
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]string{"name": "models/gemini-pro"})
			return
		}
		http.NotFound(w, r)
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	if err := client.HealthCheck(context.Background()); err != nil {
		t.Errorf("HealthCheck should succeed: %v", err)
	}
}

func TestHealthCheck_Unhealthy(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	if err := client.HealthCheck(context.Background()); err == nil {
		t.Error("HealthCheck should fail when server returns 503")
	}
}
