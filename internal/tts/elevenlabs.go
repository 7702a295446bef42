package tts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	elevenLabsBaseURL = "https://api.elevenlabs.io/v1/text-to-speech"
	defaultTimeout    = 60 * time.Second

	defaultVoiceID = "JBFqnCBsd6RMkjVDRZzb"
	defaultModel   = "eleven_flash_v2_5"
)

type elevenlabsRequest struct {
	Text          string                `json:"text"`
	ModelID       string                `json:"model_id"`
	VoiceSettings elevenlabsVoiceConfig `json:"voice_settings"`
}

type elevenlabsVoiceConfig struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
}

type elevenlabsErrorResponse struct {
	Detail struct {
		Message string `json:"message"`
	} `json:"detail"`
}

// ElevenLabsClient implements Provider using the ElevenLabs API.
type ElevenLabsClient struct {
	apiKey     string
	httpClient *http.Client
	voiceID    string
	model      string
	stability  float64
	similarity float64
	baseURL    string
}

// ElevenLabsOptions configures the ElevenLabs client.
type ElevenLabsOptions struct {
	VoiceID    string
	Model      string
	Stability  float64
	Similarity float64
}

// NewElevenLabsClient creates a new ElevenLabs narration client.
func NewElevenLabsClient(apiKey string, opts ElevenLabsOptions) *ElevenLabsClient {
	voiceID := opts.VoiceID
	if voiceID == "" {
		voiceID = defaultVoiceID
	}
	model := opts.Model
	if model == "" {
		model = defaultModel
	}
	stability := opts.Stability
	if stability == 0 {
		stability = 0.5
	}
	similarity := opts.Similarity
	if similarity == 0 {
		similarity = 0.5
	}

	return &ElevenLabsClient{
		apiKey: apiKey,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		voiceID:    voiceID,
		model:      model,
		stability:  stability,
		similarity: similarity,
		baseURL:    elevenLabsBaseURL,
	}
}

// GenerateSpeech synthesizes MP3 narration for the given text.
func (c *ElevenLabsClient) GenerateSpeech(ctx context.Context, text string) (*SpeechResult, error) {
	reqBody := elevenlabsRequest{
		Text:    text,
		ModelID: c.model,
		VoiceSettings: elevenlabsVoiceConfig{
			Stability:       c.stability,
			SimilarityBoost: c.similarity,
		},
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/%s", c.baseURL, c.voiceID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("xi-api-key", c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "audio/mpeg")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr elevenlabsErrorResponse
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Detail.Message != "" {
			return nil, fmt.Errorf("elevenlabs: %s", apiErr.Detail.Message)
		}
		return nil, fmt.Errorf("elevenlabs: status %d", resp.StatusCode)
	}

	return &SpeechResult{
		Audio:    body,
		Duration: EstimateAudioDuration(body),
	}, nil
}
