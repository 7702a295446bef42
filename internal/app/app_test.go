package app

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"storytime/internal/storage"
	"storytime/internal/store"
	"storytime/internal/story"
	"storytime/internal/tts"
	"storytime/pkg/config"
	"storytime/pkg/prompts"
)

type mockLLM struct {
	draft *story.Draft
	err   error
}

func (m *mockLLM) GenerateStory(_ context.Context, _ string, _ int, _ story.AgeGroup) (*story.Draft, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.draft, nil
}

func testService(t *testing.T, llmClient *mockLLM) *Service {
	t.Helper()

	dir := t.TempDir()
	cfg := config.Load()
	cfg.Library.Dir = filepath.Join(dir, "library")
	cfg.Video.OutputDir = filepath.Join(dir, "output")
	cfg.Video.WorkDir = filepath.Join(dir, "work")

	storyStore, err := store.New(filepath.Join(cfg.Library.Dir, "stories"))
	if err != nil {
		t.Fatalf("store.New() error: %v", err)
	}

	library := storage.NewLocalStorage(cfg.Library.Dir)
	if err := library.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories() error: %v", err)
	}

	opts := ServiceOptions{
		Config:  cfg,
		Prompts: prompts.Defaults(),
		TTS:     tts.NewStubProvider(tts.DefaultWordsPerMinute),
		Store:   storyStore,
		Library: library,
	}
	if llmClient != nil {
		opts.LLM = llmClient
	}
	return NewService(opts)
}

func TestServiceGetters(t *testing.T) {
	cfg := &config.Config{}
	svc := NewService(ServiceOptions{Config: cfg})

	if svc.Config() != cfg {
		t.Error("Config() returned wrong config")
	}
	if svc.LLM() != nil {
		t.Error("LLM() should return nil when set to nil")
	}
	if svc.Images() != nil {
		t.Error("Images() should return nil when set to nil")
	}
	if svc.Exporter() != nil {
		t.Error("Exporter() should return nil when set to nil")
	}
}

func TestGenerateFallsBackToSynthesizer(t *testing.T) {
	svc := testService(t, &mockLLM{err: errors.New("model unavailable")})
	pipeline := NewPipeline(svc)

	record, err := pipeline.Generate(context.Background(), GenerateRequest{
		Prompt:     "a brave dragon",
		SceneCount: 3,
		AgeGroup:   story.AgePreschool,
	})
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}

	if record.Source != store.SourceFallback {
		t.Errorf("Source = %q, want %q", record.Source, store.SourceFallback)
	}
	if len(record.Scenes) != 3 {
		t.Fatalf("len(Scenes) = %d, want 3", len(record.Scenes))
	}
	for i, scene := range record.Scenes {
		if scene.BackgroundPath == "" {
			t.Errorf("scene %d has no background", i+1)
		}
		if scene.Duration <= 0 {
			t.Errorf("scene %d duration = %v, want > 0", i+1, scene.Duration)
		}
	}
}

func TestGenerateUsesAIDraft(t *testing.T) {
	draft := story.Synthesize("a curious robot", 3, story.AgeElementary)
	draft.Title = "The Robot Who Asked Why"
	svc := testService(t, &mockLLM{draft: draft})
	pipeline := NewPipeline(svc)

	record, err := pipeline.Generate(context.Background(), GenerateRequest{
		Prompt:     "a curious robot",
		SceneCount: 3,
		AgeGroup:   story.AgeElementary,
	})
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}

	if record.Source != store.SourceAI {
		t.Errorf("Source = %q, want %q", record.Source, store.SourceAI)
	}
	if record.Title != "The Robot Who Asked Why" {
		t.Errorf("Title = %q, want draft title", record.Title)
	}

	loaded, err := svc.Store().Load(record.ID)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if len(loaded.Scenes) != 3 {
		t.Errorf("persisted scenes = %d, want 3", len(loaded.Scenes))
	}
}

func TestGenerateWithoutLLMUsesSynthesizer(t *testing.T) {
	svc := testService(t, nil)
	pipeline := NewPipeline(svc)

	record, err := pipeline.Generate(context.Background(), GenerateRequest{
		Prompt:     "two rabbits",
		SceneCount: 4,
		AgeGroup:   story.AgeToddler,
	})
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}
	if record.Source != store.SourceFallback {
		t.Errorf("Source = %q, want %q", record.Source, store.SourceFallback)
	}
}

func TestNarrationText(t *testing.T) {
	scene := story.Scene{
		Narration: "The forest was quiet.",
		Dialogue: []story.DialogueLine{
			{Character: "Fox", Text: "Hello!"},
		},
	}

	got := narrationText(scene)
	if !strings.Contains(got, "The forest was quiet.") {
		t.Errorf("narrationText() = %q, missing narration", got)
	}
	if !strings.Contains(got, "Fox said") {
		t.Errorf("narrationText() = %q, missing dialogue attribution", got)
	}
}

func TestStoryScript(t *testing.T) {
	draft := story.Synthesize("a small boat", 3, story.AgePreschool)
	script := storyScript(draft)

	if !strings.Contains(script, draft.Title) {
		t.Error("storyScript() missing title")
	}
	for _, scene := range draft.Scenes {
		if !strings.Contains(script, scene.Title) {
			t.Errorf("storyScript() missing scene title %q", scene.Title)
		}
	}
}

func TestBuildVideoScenes(t *testing.T) {
	record := &store.StoryRecord{
		Scenes: []store.SceneRecord{
			{BackgroundPath: "a.png", Duration: 4.5, NarrationPath: "a.mp3"},
			{BackgroundPath: "b.png"},
		},
	}

	scenes := buildVideoScenes(record, 5.0)
	if len(scenes) != 2 {
		t.Fatalf("len(scenes) = %d, want 2", len(scenes))
	}
	if scenes[0].Duration != 4.5 || scenes[0].AudioURL != "a.mp3" {
		t.Errorf("scene 0 = %+v, want stored duration and audio", scenes[0])
	}
	if scenes[1].Duration != 5.0 {
		t.Errorf("scene 1 duration = %v, want default 5.0", scenes[1].Duration)
	}
}

func TestSanitizeForPath(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"The Brave Dragon!", "the_brave_dragon"},
		{"  spaces  ", "spaces"},
		{"---", ""},
		{"-sea-side story-", "sea-side_story"},
	}

	for _, tt := range tests {
		if got := sanitizeForPath(tt.in); got != tt.want {
			t.Errorf("sanitizeForPath(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestPlaceholderImageIsValid(t *testing.T) {
	data, err := placeholderImage(64, 36, 0)
	if err != nil {
		t.Fatalf("placeholderImage() error: %v", err)
	}
	if !isValidImage(data) {
		t.Error("placeholderImage() produced invalid image data")
	}
}
