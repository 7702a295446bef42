package images

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestNewClientDefaults(t *testing.T) {
	client := NewClient("key", Options{})

	if client.model != defaultModel {
		t.Errorf("model = %q, want %q", client.model, defaultModel)
	}
	if client.baseURL != defaultBaseURL {
		t.Errorf("baseURL = %q, want %q", client.baseURL, defaultBaseURL)
	}
}

func TestGenerate(t *testing.T) {
	fakeImage := []byte("\x89PNG fake image")
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Error("missing bearer token")
		}
		if !strings.HasSuffix(r.URL.Path, "/test-model") {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}

		body, _ := io.ReadAll(r.Body)
		var req generationRequest
		if err := json.Unmarshal(body, &req); err != nil || req.Inputs != "a rabbit" {
			t.Errorf("unexpected request body: %s", body)
		}

		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(fakeImage)
	}))
	defer server.Close()

	client := NewClient("test-key", Options{Model: "test-model", BaseURL: server.URL})
	data, err := client.Generate(context.Background(), "a rabbit")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if string(data) != string(fakeImage) {
		t.Error("image bytes do not match")
	}
}

func TestGenerateAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error": "prompt too long"}`))
	}))
	defer server.Close()

	client := NewClient("key", Options{Model: "m", BaseURL: server.URL})
	_, err := client.Generate(context.Background(), "x")
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "prompt too long") {
		t.Errorf("error %q should carry API detail", err)
	}
}

func TestGenerateUnexpectedContentType(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<html>not an image</html>"))
	}))
	defer server.Close()

	client := NewClient("key", Options{Model: "m", BaseURL: server.URL})
	if _, err := client.Generate(context.Background(), "x"); err == nil {
		t.Fatal("expected content-type error")
	}
}
