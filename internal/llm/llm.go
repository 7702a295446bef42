package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"storytime/internal/story"
)

// Client generates a structured story draft from a free-text prompt.
// Callers fall back to the heuristic synthesizer when it fails.
type Client interface {
	GenerateStory(ctx context.Context, prompt string, sceneCount int, age story.AgeGroup) (*story.Draft, error)
}

// parseDraft decodes a model response into a draft. Responses wrapped in
// markdown code fences are unwrapped first.
func parseDraft(content string, sceneCount int) (*story.Draft, error) {
	content = stripCodeFence(content)

	var draft story.Draft
	if err := json.Unmarshal([]byte(content), &draft); err != nil {
		return nil, fmt.Errorf("parse story response: %w", err)
	}

	if draft.Title == "" {
		return nil, fmt.Errorf("story response missing title")
	}
	if len(draft.Scenes) == 0 {
		return nil, fmt.Errorf("story response has no scenes")
	}
	if len(draft.Scenes) != sceneCount {
		return nil, fmt.Errorf("story response has %d scenes, want %d", len(draft.Scenes), sceneCount)
	}

	// Models occasionally misnumber; positions are authoritative.
	for i := range draft.Scenes {
		draft.Scenes[i].Number = i + 1
	}

	return &draft, nil
}

func stripCodeFence(content string) string {
	content = strings.TrimSpace(content)
	if !strings.HasPrefix(content, "```") {
		return content
	}

	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(strings.TrimSpace(content), "```")
	return strings.TrimSpace(content)
}
