package app

import (
	"context"
	"log/slog"
	"path/filepath"

	"storytime/internal/images"
	"storytime/internal/llm"
	"storytime/internal/storage"
	"storytime/internal/store"
	"storytime/internal/tts"
	"storytime/internal/video"
	"storytime/pkg/config"
	"storytime/pkg/prompts"
)

// BuildService wires the full pipeline from config. Providers without
// credentials are left unset; the pipeline degrades to the heuristic
// synthesizer, stub narration, and placeholder art.
func BuildService(ctx context.Context, cfg *config.Config) (*Service, error) {
	if err := cfg.ResolveSecrets(ctx); err != nil {
		slog.Warn("Secret Manager lookup failed", "error", err)
	}

	p, err := prompts.Load()
	if err != nil {
		return nil, err
	}

	var llmClient llm.Client
	if cfg.GroqAPIKey != "" {
		client, err := llm.NewGroqClient(cfg.GroqAPIKey, cfg.Groq.Model, p)
		if err != nil {
			return nil, err
		}
		llmClient = client
	} else {
		slog.Warn("GROQ_API_KEY not set, stories will use the built-in synthesizer")
	}

	var ttsProvider tts.Provider
	if cfg.ElevenLabsAPIKey != "" {
		ttsProvider = tts.NewElevenLabsClient(cfg.ElevenLabsAPIKey, tts.ElevenLabsOptions{
			VoiceID:    cfg.ElevenLabs.VoiceID,
			Model:      cfg.ElevenLabs.Model,
			Stability:  cfg.ElevenLabs.Stability,
			Similarity: cfg.ElevenLabs.Similarity,
		})
	} else {
		slog.Warn("ELEVENLABS_API_KEY not set, narration will be silent")
		ttsProvider = tts.NewStubProvider(tts.DefaultWordsPerMinute)
	}

	var imageClient *images.Client
	if cfg.HuggingFaceToken != "" {
		imageClient = images.NewClient(cfg.HuggingFaceToken, images.Options{
			Model: cfg.Images.Model,
		})
	} else {
		slog.Warn("HF_API_KEY not set, scenes will use placeholder art")
	}

	library := storage.NewLocalStorage(cfg.Library.Dir)
	if err := library.EnsureDirectories(); err != nil {
		return nil, err
	}

	storyStore, err := store.New(filepath.Join(cfg.Library.Dir, "stories"))
	if err != nil {
		return nil, err
	}

	var exporter storage.Exporter
	if cfg.GCS.Enabled && cfg.GCSBucket != "" {
		gcs, err := storage.NewGCSExporter(ctx, cfg.GCSBucket, cfg.GCS.Prefix)
		if err != nil {
			slog.Warn("GCS export disabled", "error", err)
		} else {
			exporter = gcs
		}
	}

	return NewService(ServiceOptions{
		Config:    cfg,
		Prompts:   p,
		LLM:       llmClient,
		TTS:       ttsProvider,
		Images:    imageClient,
		Assembler: video.NewAssembler(cfg.Video.WorkDir),
		Store:     storyStore,
		Library:   library,
		Exporter:  exporter,
	}), nil
}
