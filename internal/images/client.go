package images

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"storytime/pkg/httputil"
)

const (
	defaultBaseURL = "https://api-inference.huggingface.co/models"
	defaultModel   = "stabilityai/stable-diffusion-xl-base-1.0"

	// Image generation can take a while on cold models.
	requestTimeout = 120 * time.Second
)

type generationRequest struct {
	Inputs string `json:"inputs"`
}

type apiError struct {
	Error string `json:"error"`
}

// Client generates illustrations through a hosted inference endpoint.
// Transient failures (including model cold starts reported as 5xx) are
// retried with backoff.
type Client struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *httputil.RetryClient
}

type Options struct {
	Model   string
	BaseURL string
}

func NewClient(apiKey string, opts Options) *Client {
	model := opts.Model
	if model == "" {
		model = defaultModel
	}
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	return &Client{
		apiKey:  apiKey,
		model:   model,
		baseURL: baseURL,
		httpClient: httputil.NewRetryClient(
			&http.Client{Timeout: requestTimeout},
			httputil.DefaultRetryConfig(),
		),
	}
}

// Generate renders one image for the prompt and returns the raw image bytes.
func (c *Client) Generate(ctx context.Context, prompt string) ([]byte, error) {
	payload, err := json.Marshal(generationRequest{Inputs: prompt})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/%s", c.baseURL, c.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.GetBody = func() (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(payload)), nil
	}

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
		var detail apiError
		if json.Unmarshal(body, &detail) == nil && detail.Error != "" {
			return nil, fmt.Errorf("image generation: %s", detail.Error)
		}
		return nil, fmt.Errorf("image generation: status %d", resp.StatusCode)
	}

	if !strings.HasPrefix(resp.Header.Get("Content-Type"), "image/") {
		return nil, fmt.Errorf("unexpected content type %q", resp.Header.Get("Content-Type"))
	}

	return body, nil
}
