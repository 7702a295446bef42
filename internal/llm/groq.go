package llm

import (
	"context"
	"fmt"

	"github.com/conneroisu/groq-go"

	"storytime/internal/story"
	"storytime/pkg/prompts"
)

type GroqClient struct {
	client  *groq.Client
	model   groq.ChatModel
	prompts *prompts.Prompts
}

func NewGroqClient(apiKey, model string, p *prompts.Prompts) (*GroqClient, error) {
	client, err := groq.NewClient(apiKey)
	if err != nil {
		return nil, fmt.Errorf("create groq client: %w", err)
	}

	return &GroqClient{
		client:  client,
		model:   groq.ChatModel(model),
		prompts: p,
	}, nil
}

func (c *GroqClient) GenerateStory(ctx context.Context, prompt string, sceneCount int, age story.AgeGroup) (*story.Draft, error) {
	userPrompt, err := c.prompts.RenderStory(prompts.StoryParams{
		Prompt:     prompt,
		SceneCount: sceneCount,
		AgeGroup:   string(age),
	})
	if err != nil {
		return nil, fmt.Errorf("render prompt: %w", err)
	}

	resp, err := c.client.ChatCompletion(ctx, groq.ChatCompletionRequest{
		Model: c.model,
		Messages: []groq.ChatCompletionMessage{
			{Role: groq.RoleSystem, Content: c.prompts.System.Story},
			{Role: groq.RoleUser, Content: userPrompt},
		},
		ResponseFormat: &groq.ChatResponseFormat{
			Type: "json_object",
		},
	})
	if err != nil {
		return nil, fmt.Errorf("generate story: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response")
	}

	content := resp.Choices[0].Message.Content
	if content == "" {
		return nil, fmt.Errorf("empty response")
	}

	return parseDraft(content, sceneCount)
}
