package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	defaultConfigPath      = "config.yaml"
	defaultOutputDir       = "./output"
	defaultLibraryDir      = "./library"
	defaultWorkDir         = "./.work"
	defaultSceneCount      = 5
	defaultAgeGroup        = "preschool"
	defaultGroqModel       = "llama-3.3-70b-versatile"
	defaultElevenLabsVoice = "JBFqnCBsd6RMkjVDRZzb"
	defaultElevenLabsModel = "eleven_flash_v2_5"
	defaultImageModel      = "stabilityai/stable-diffusion-xl-base-1.0"
	defaultVideoWidth      = 1280
	defaultVideoHeight     = 720
	defaultVideoFPS        = 30
	defaultBackground      = "black"
	defaultSceneDuration   = 5.0
	defaultGCSPrefix       = "videos"
	defaultStability       = 0.5
	defaultSimilarity      = 0.5
)

type Config struct {
	GroqAPIKey       string
	ElevenLabsAPIKey string
	HuggingFaceToken string
	GCSBucket        string
	GCPProject       string

	Groq       GroqConfig       `yaml:"groq"`
	ElevenLabs ElevenLabsConfig `yaml:"elevenlabs"`
	Images     ImagesConfig     `yaml:"images"`
	Story      StoryConfig      `yaml:"story"`
	Video      VideoConfig      `yaml:"video"`
	Library    LibraryConfig    `yaml:"library"`
	GCS        GCSConfig        `yaml:"gcs"`
}

type GroqConfig struct {
	Model string `yaml:"model"`
}

type ElevenLabsConfig struct {
	VoiceID    string  `yaml:"voice_id"`
	Model      string  `yaml:"model"`
	Stability  float64 `yaml:"stability"`
	Similarity float64 `yaml:"similarity"`
}

type ImagesConfig struct {
	Model string `yaml:"model"`
}

type StoryConfig struct {
	SceneCount int    `yaml:"scene_count"`
	AgeGroup   string `yaml:"age_group"`
}

type VideoConfig struct {
	Width           int     `yaml:"width"`
	Height          int     `yaml:"height"`
	FPS             int     `yaml:"fps"`
	BackgroundColor string  `yaml:"background_color"`
	SceneDuration   float64 `yaml:"scene_duration"`
	OutputDir       string  `yaml:"output_dir"`
	WorkDir         string  `yaml:"work_dir"`
}

type LibraryConfig struct {
	Dir string `yaml:"dir"`
}

type GCSConfig struct {
	Enabled bool   `yaml:"enabled"`
	Prefix  string `yaml:"prefix"`
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		slog.Warn("No .env file found, relying on environment variables")
	}

	cfg := &Config{
		GroqAPIKey:       os.Getenv("GROQ_API_KEY"),
		ElevenLabsAPIKey: os.Getenv("ELEVENLABS_API_KEY"),
		HuggingFaceToken: os.Getenv("HF_API_KEY"),
		GCSBucket:        os.Getenv("GCS_BUCKET"),
		GCPProject:       os.Getenv("GOOGLE_CLOUD_PROJECT"),
	}

	loadYAMLConfig(cfg)
	applyDefaults(cfg)

	return cfg
}

func loadYAMLConfig(cfg *Config) {
	data, err := os.ReadFile(defaultConfigPath)
	if err != nil {
		slog.Warn("No config.yaml found, using defaults")
		return
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		slog.Error("Failed to parse config.yaml", "error", err)
	}
}

func applyDefaults(cfg *Config) {
	applyGroqDefaults(cfg)
	applyElevenLabsDefaults(cfg)
	applyImagesDefaults(cfg)
	applyStoryDefaults(cfg)
	applyVideoDefaults(cfg)
	applyLibraryDefaults(cfg)
	applyGCSDefaults(cfg)
}

func applyGroqDefaults(cfg *Config) {
	if cfg.Groq.Model == "" {
		cfg.Groq.Model = defaultGroqModel
	}
}

func applyElevenLabsDefaults(cfg *Config) {
	if cfg.ElevenLabs.VoiceID == "" {
		cfg.ElevenLabs.VoiceID = defaultElevenLabsVoice
	}
	if cfg.ElevenLabs.Model == "" {
		cfg.ElevenLabs.Model = defaultElevenLabsModel
	}
	if cfg.ElevenLabs.Stability == 0 {
		cfg.ElevenLabs.Stability = defaultStability
	}
	if cfg.ElevenLabs.Similarity == 0 {
		cfg.ElevenLabs.Similarity = defaultSimilarity
	}
}

func applyImagesDefaults(cfg *Config) {
	if cfg.Images.Model == "" {
		cfg.Images.Model = defaultImageModel
	}
}

func applyStoryDefaults(cfg *Config) {
	if cfg.Story.SceneCount == 0 {
		cfg.Story.SceneCount = defaultSceneCount
	}
	if cfg.Story.AgeGroup == "" {
		cfg.Story.AgeGroup = defaultAgeGroup
	}
}

func applyVideoDefaults(cfg *Config) {
	if cfg.Video.Width == 0 {
		cfg.Video.Width = defaultVideoWidth
	}
	if cfg.Video.Height == 0 {
		cfg.Video.Height = defaultVideoHeight
	}
	if cfg.Video.FPS == 0 {
		cfg.Video.FPS = defaultVideoFPS
	}
	if cfg.Video.BackgroundColor == "" {
		cfg.Video.BackgroundColor = defaultBackground
	}
	if cfg.Video.SceneDuration == 0 {
		cfg.Video.SceneDuration = defaultSceneDuration
	}
	if cfg.Video.OutputDir == "" {
		cfg.Video.OutputDir = defaultOutputDir
	}
	if cfg.Video.WorkDir == "" {
		cfg.Video.WorkDir = defaultWorkDir
	}
}

func applyLibraryDefaults(cfg *Config) {
	if cfg.Library.Dir == "" {
		cfg.Library.Dir = defaultLibraryDir
	}
}

func applyGCSDefaults(cfg *Config) {
	if cfg.GCS.Prefix == "" {
		cfg.GCS.Prefix = defaultGCSPrefix
	}
}

// ResolveSecrets fills API keys that are absent from the environment from
// Google Secret Manager. Requires GOOGLE_CLOUD_PROJECT; skipped otherwise.
func (c *Config) ResolveSecrets(ctx context.Context) error {
	missing := make(map[string]*string)
	for name, dst := range map[string]*string{
		"groq-api-key":       &c.GroqAPIKey,
		"elevenlabs-api-key": &c.ElevenLabsAPIKey,
		"hf-api-key":         &c.HuggingFaceToken,
	} {
		if *dst == "" {
			missing[name] = dst
		}
	}
	if len(missing) == 0 || c.GCPProject == "" {
		return nil
	}

	client, err := secretmanager.NewClient(ctx)
	if err != nil {
		return fmt.Errorf("create secret manager client: %w", err)
	}
	defer func() { _ = client.Close() }()

	for name, dst := range missing {
		resp, err := client.AccessSecretVersion(ctx, &secretmanagerpb.AccessSecretVersionRequest{
			Name: fmt.Sprintf("projects/%s/secrets/%s/versions/latest", c.GCPProject, name),
		})
		if err != nil {
			slog.Debug("Secret not found in Secret Manager", "secret", name)
			continue
		}
		*dst = strings.TrimSpace(string(resp.GetPayload().GetData()))
	}

	return nil
}
