package tts

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestNewElevenLabsClientDefaults(t *testing.T) {
	client := NewElevenLabsClient("test-key", ElevenLabsOptions{})

	if client.apiKey != "test-key" {
		t.Errorf("apiKey = %q, want test-key", client.apiKey)
	}
	if client.voiceID != defaultVoiceID {
		t.Errorf("voiceID = %q, want %q", client.voiceID, defaultVoiceID)
	}
	if client.model != defaultModel {
		t.Errorf("model = %q, want %q", client.model, defaultModel)
	}
	if client.stability != 0.5 || client.similarity != 0.5 {
		t.Errorf("voice settings = %v/%v, want 0.5/0.5", client.stability, client.similarity)
	}
}

func TestNewElevenLabsClientCustomVoice(t *testing.T) {
	client := NewElevenLabsClient("test-key", ElevenLabsOptions{VoiceID: "custom-voice"})

	if client.voiceID != "custom-voice" {
		t.Errorf("voiceID = %q, want custom-voice", client.voiceID)
	}
}

func TestElevenLabsGenerateSpeech(t *testing.T) {
	fakeAudio := []byte("fake mp3 bytes")
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("xi-api-key") != "test-key" {
			t.Error("missing or incorrect API key header")
		}
		if r.Header.Get("Content-Type") != "application/json" {
			t.Error("missing Content-Type header")
		}
		if r.URL.Path != "/test-voice" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		_, _ = w.Write(fakeAudio)
	}))
	defer server.Close()

	client := NewElevenLabsClient("test-key", ElevenLabsOptions{VoiceID: "test-voice"})
	client.baseURL = server.URL

	result, err := client.GenerateSpeech(context.Background(), "Hello world")
	if err != nil {
		t.Fatalf("GenerateSpeech: %v", err)
	}
	if string(result.Audio) != string(fakeAudio) {
		t.Error("audio bytes do not match")
	}
	if result.Duration <= 0 {
		t.Errorf("duration = %v, want > 0", result.Duration)
	}
}

func TestElevenLabsAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"detail": {"message": "invalid api key"}}`))
	}))
	defer server.Close()

	client := NewElevenLabsClient("bad-key", ElevenLabsOptions{VoiceID: "v"})
	client.baseURL = server.URL

	_, err := client.GenerateSpeech(context.Background(), "Hello")
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "invalid api key") {
		t.Errorf("error %q should carry the API message", err)
	}
}

func TestStubProvider(t *testing.T) {
	provider := NewStubProvider(150)

	result, err := provider.GenerateSpeech(context.Background(), "one two three four five")
	if err != nil {
		t.Fatalf("GenerateSpeech: %v", err)
	}
	if len(result.Audio) != 0 {
		t.Error("stub should not produce audio")
	}
	want := 5.0 / 150.0 * 60.0
	if result.Duration != want {
		t.Errorf("duration = %v, want %v", result.Duration, want)
	}
}

func TestStubProviderDefaultRate(t *testing.T) {
	provider := NewStubProvider(0)
	if provider.wordsPerMinute != DefaultWordsPerMinute {
		t.Errorf("wordsPerMinute = %v, want %v", provider.wordsPerMinute, DefaultWordsPerMinute)
	}
}

func TestEstimateAudioDuration(t *testing.T) {
	audio := make([]byte, 16000) // 1 second at 128 kbps
	if got := EstimateAudioDuration(audio); got != 1.0 {
		t.Errorf("EstimateAudioDuration = %v, want 1.0", got)
	}
}
