package prompts

import (
	"bytes"
	"fmt"
	"os"
	"text/template"

	"gopkg.in/yaml.v3"
)

const defaultPromptsPath = "prompts.yaml"

type Prompts struct {
	System SystemPrompts `yaml:"system"`
	Story  StoryPrompts  `yaml:"story"`
	Images ImagePrompts  `yaml:"images"`
}

type SystemPrompts struct {
	Story string `yaml:"story"`
}

type StoryPrompts struct {
	Generate string `yaml:"generate"`
}

type ImagePrompts struct {
	Portrait   string `yaml:"portrait"`
	Background string `yaml:"background"`
}

type StoryParams struct {
	Prompt     string
	SceneCount int
	AgeGroup   string
}

type PortraitParams struct {
	Name        string
	Description string
	Personality string
}

type BackgroundParams struct {
	Setting string
}

// Defaults returns the built-in prompt pack.
func Defaults() *Prompts {
	return &Prompts{
		System: SystemPrompts{
			Story: "You are a children's story writer. You write warm, simple, age-appropriate stories. Always respond with a single JSON object and nothing else.",
		},
		Story: StoryPrompts{
			Generate: `Write a children's story for the {{.AgeGroup}} age group based on this idea: "{{.Prompt}}".
The story must have exactly {{.SceneCount}} scenes.
Respond with a JSON object of this exact shape:
{"title": string, "characters": [{"name": string, "description": string, "personality": string}], "scenes": [{"number": int, "title": string, "setting": string, "narration": string, "dialogue": [{"character": string, "text": string}], "actions": [string]}]}
Scene numbers start at 1 and increase by one. Keep narration to two or three short sentences per scene.`,
		},
		Images: ImagePrompts{
			Portrait:   "Children's book illustration, friendly character portrait: {{.Name}}, {{.Description}}. Personality: {{.Personality}}. Soft colors, simple shapes, white background.",
			Background: "Children's book illustration, scene background, no characters: {{.Setting}}. Soft colors, storybook style, wide shot.",
		},
	}
}

// Load reads prompts.yaml from the working directory, falling back to the
// built-in pack when the file is absent.
func Load() (*Prompts, error) {
	return LoadFrom(defaultPromptsPath)
}

func LoadFrom(path string) (*Prompts, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Defaults(), nil
		}
		return nil, fmt.Errorf("read prompts file: %w", err)
	}

	p := Defaults()
	if err := yaml.Unmarshal(data, p); err != nil {
		return nil, fmt.Errorf("parse prompts file: %w", err)
	}

	return p, nil
}

func (p *Prompts) RenderStory(params StoryParams) (string, error) {
	return render(p.Story.Generate, params)
}

func (p *Prompts) RenderPortrait(params PortraitParams) (string, error) {
	return render(p.Images.Portrait, params)
}

func (p *Prompts) RenderBackground(params BackgroundParams) (string, error) {
	return render(p.Images.Background, params)
}

func render(tmpl string, data any) (string, error) {
	t, err := template.New("prompt").Parse(tmpl)
	if err != nil {
		return "", fmt.Errorf("parse template: %w", err)
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("execute template: %w", err)
	}

	return buf.String(), nil
}
