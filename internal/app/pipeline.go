package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"storytime/internal/store"
	"storytime/internal/story"
	"storytime/internal/video"
	"storytime/pkg/prompts"
)

type Pipeline struct {
	service *Service
}

func NewPipeline(service *Service) *Pipeline {
	return &Pipeline{service: service}
}

// GenerateRequest describes one story to produce.
type GenerateRequest struct {
	Prompt     string
	SceneCount int
	AgeGroup   story.AgeGroup
}

// Generate produces a story draft, narration, and artwork, and persists the
// result. The AI generator is attempted first; any failure falls back to the
// heuristic synthesizer so a story always comes out.
func (pipeline *Pipeline) Generate(ctx context.Context, request GenerateRequest) (*store.StoryRecord, error) {
	draft, source := pipeline.generateDraft(ctx, request)

	record := &store.StoryRecord{
		Title:    draft.Title,
		Prompt:   request.Prompt,
		AgeGroup: string(request.AgeGroup),
		Source:   source,
		Script:   *draft,
	}
	// Save early so asset paths can be keyed by the story ID.
	if err := pipeline.service.Store().Save(record); err != nil {
		return nil, err
	}

	slog.Info("Generating character portraits...", "characters", len(draft.Characters))
	record.Characters = pipeline.generatePortraits(ctx, record.ID, draft)

	slog.Info("Generating scene assets...", "scenes", len(draft.Scenes))
	scenes, err := pipeline.generateSceneAssets(ctx, record.ID, draft)
	if err != nil {
		return nil, err
	}
	record.Scenes = scenes

	if err := pipeline.service.Store().Save(record); err != nil {
		return nil, err
	}

	return record, nil
}

func (pipeline *Pipeline) generateDraft(ctx context.Context, request GenerateRequest) (*story.Draft, string) {
	llmClient := pipeline.service.LLM()
	if llmClient != nil {
		draft, err := llmClient.GenerateStory(ctx, request.Prompt, request.SceneCount, request.AgeGroup)
		if err == nil {
			return draft, store.SourceAI
		}
		slog.Warn("AI story generation failed, using synthesizer", "error", err)
	}

	return story.Synthesize(request.Prompt, request.SceneCount, request.AgeGroup), store.SourceFallback
}

func (pipeline *Pipeline) generatePortraits(ctx context.Context, storyID string, draft *story.Draft) []store.CharacterRecord {
	records := make([]store.CharacterRecord, len(draft.Characters))
	for i, character := range draft.Characters {
		records[i] = store.CharacterRecord{Name: character.Name}

		prompt, err := pipeline.service.Prompts().RenderPortrait(prompts.PortraitParams{
			Name:        character.Name,
			Description: character.Description,
			Personality: character.Personality,
		})
		if err != nil {
			slog.Warn("Failed to render portrait prompt", "character", character.Name, "error", err)
			continue
		}

		data := pipeline.generateImage(ctx, prompt)
		if data == nil {
			continue
		}

		path, err := pipeline.service.Library().SaveAsset(storyID, fmt.Sprintf("portrait_%d.png", i+1), data)
		if err != nil {
			slog.Warn("Failed to save portrait", "character", character.Name, "error", err)
			continue
		}
		records[i].PortraitPath = path
	}
	return records
}

func (pipeline *Pipeline) generateSceneAssets(ctx context.Context, storyID string, draft *story.Draft) ([]store.SceneRecord, error) {
	cfg := pipeline.service.Config()

	records := make([]store.SceneRecord, len(draft.Scenes))
	for i, scene := range draft.Scenes {
		record := store.SceneRecord{
			Number:   scene.Number,
			Title:    scene.Title,
			Duration: cfg.Video.SceneDuration,
		}

		background, err := pipeline.sceneBackground(ctx, scene, i)
		if err != nil {
			return nil, fmt.Errorf("background for scene %d: %w", scene.Number, err)
		}
		path, err := pipeline.service.Library().SaveAsset(storyID, fmt.Sprintf("scene_%d.png", scene.Number), background)
		if err != nil {
			return nil, err
		}
		record.BackgroundPath = path

		narrationPath, duration := pipeline.sceneNarration(ctx, storyID, scene)
		record.NarrationPath = narrationPath
		if duration > 0 {
			record.Duration = duration
		}

		records[i] = record
	}
	return records, nil
}

func (pipeline *Pipeline) sceneBackground(ctx context.Context, scene story.Scene, index int) ([]byte, error) {
	cfg := pipeline.service.Config()

	if pipeline.service.Images() != nil {
		prompt, err := pipeline.service.Prompts().RenderBackground(prompts.BackgroundParams{
			Setting: scene.Setting,
		})
		if err == nil {
			if data := pipeline.generateImage(ctx, prompt); data != nil {
				return data, nil
			}
		} else {
			slog.Warn("Failed to render background prompt", "scene", scene.Number, "error", err)
		}
	}

	return placeholderImage(cfg.Video.Width, cfg.Video.Height, index)
}

func (pipeline *Pipeline) generateImage(ctx context.Context, prompt string) []byte {
	client := pipeline.service.Images()
	if client == nil {
		return nil
	}

	data, err := client.Generate(ctx, prompt)
	if err != nil {
		slog.Warn("Image generation failed", "error", err)
		return nil
	}
	if !isValidImage(data) {
		slog.Warn("Image generation returned invalid data", "bytes", len(data))
		return nil
	}
	return data
}

// sceneNarration synthesizes narration for one scene. Failures are logged
// and leave the scene silent with the configured default duration.
func (pipeline *Pipeline) sceneNarration(ctx context.Context, storyID string, scene story.Scene) (string, float64) {
	text := narrationText(scene)
	if text == "" {
		return "", 0
	}

	result, err := pipeline.service.TTS().GenerateSpeech(ctx, text)
	if err != nil {
		slog.Warn("Narration failed", "scene", scene.Number, "error", err)
		return "", 0
	}

	if len(result.Audio) == 0 {
		// Stub provider: no audio, but the timing estimate still paces the scene.
		return "", result.Duration
	}

	path, err := pipeline.service.Library().SaveAsset(storyID, fmt.Sprintf("narration_%d.mp3", scene.Number), result.Audio)
	if err != nil {
		slog.Warn("Failed to save narration", "scene", scene.Number, "error", err)
		return "", result.Duration
	}
	return path, result.Duration
}

// Render assembles the persisted story into an MP4. An empty storyID renders
// the most recently created story.
func (pipeline *Pipeline) Render(ctx context.Context, storyID string, onProgress video.ProgressFunc) (*store.StoryRecord, error) {
	record, err := pipeline.loadRecord(storyID)
	if err != nil {
		return nil, err
	}
	if len(record.Scenes) == 0 {
		return nil, fmt.Errorf("story %s has no scene assets, re-run generate", record.ID)
	}

	renderSession := newSession(pipeline.service.Config().Video.OutputDir)
	if err := renderSession.finalize(record.Title); err != nil {
		return nil, err
	}
	if err := os.WriteFile(renderSession.scriptPath(), []byte(storyScript(&record.Script)), 0644); err != nil {
		slog.Warn("Failed to write script", "path", renderSession.scriptPath(), "error", err)
	}

	scenes := buildVideoScenes(record, pipeline.service.Config().Video.SceneDuration)

	slog.Info("Assembling video...", "scenes", len(scenes), "duration", video.TotalDuration(scenes))
	result, err := pipeline.service.Assembler().Assemble(ctx, scenes, video.Options{
		Width:           pipeline.service.Config().Video.Width,
		Height:          pipeline.service.Config().Video.Height,
		FPS:             pipeline.service.Config().Video.FPS,
		BackgroundColor: pipeline.service.Config().Video.BackgroundColor,
	}, onProgress)
	if err != nil {
		return nil, err
	}
	if !result.Muxed && result.FallbackReason != "" {
		slog.Warn("Video rendered without narration", "reason", result.FallbackReason)
	}

	if err := os.WriteFile(renderSession.videoPath(), result.Data, 0644); err != nil {
		return nil, fmt.Errorf("save video: %w", err)
	}

	record.VideoPath = renderSession.videoPath()
	if err := pipeline.service.Store().Save(record); err != nil {
		return nil, err
	}

	pipeline.export(ctx, record)

	return record, nil
}

func (pipeline *Pipeline) loadRecord(storyID string) (*store.StoryRecord, error) {
	if storyID == "" {
		return pipeline.service.Store().Latest()
	}
	return pipeline.service.Store().Load(storyID)
}

// buildVideoScenes maps persisted scene rows onto assembler input. Scenes
// without a stored duration fall back to the configured default.
func buildVideoScenes(record *store.StoryRecord, defaultDuration float64) []video.Scene {
	scenes := make([]video.Scene, len(record.Scenes))
	for i, row := range record.Scenes {
		duration := row.Duration
		if duration <= 0 {
			duration = defaultDuration
		}
		scenes[i] = video.Scene{
			ImageURL: row.BackgroundPath,
			Duration: duration,
			AudioURL: row.NarrationPath,
		}
	}
	return scenes
}

func (pipeline *Pipeline) export(ctx context.Context, record *store.StoryRecord) {
	exporter := pipeline.service.Exporter()
	if exporter == nil {
		return
	}

	object := fmt.Sprintf("%s_%s.mp4", record.ID, sanitizeForPath(record.Title))
	url, err := exporter.ExportVideo(ctx, record.VideoPath, object)
	if err != nil {
		slog.Warn("Video export failed", "error", err)
		return
	}
	slog.Info("Video exported", "url", url)
}
