package cmd

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"storytime/internal/app"
	"storytime/internal/story"
	"storytime/pkg/config"
)

var (
	generatePrompt string
	generateScenes int
	generateAge    string
	generateRender bool
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a story with narration and artwork",
	Long: `Generate a story from a prompt. The script, narration audio, and
scene artwork are saved to the library; render the video with
"storytime render" or pass --render.`,
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().StringVarP(&generatePrompt, "prompt", "p", "", "Story idea, e.g. \"two rabbits who learn to share\"")
	generateCmd.Flags().IntVarP(&generateScenes, "scenes", "n", 0, "Number of scenes (minimum 3)")
	generateCmd.Flags().StringVarP(&generateAge, "age", "a", "", "Age group: toddler, preschool, or elementary")
	generateCmd.Flags().BoolVar(&generateRender, "render", false, "Render the video after generating")
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	if generatePrompt == "" {
		return errors.New("please provide a story idea with --prompt")
	}

	ctx := cmd.Context()
	cfg := config.Load()

	sceneCount := generateScenes
	if sceneCount == 0 {
		sceneCount = cfg.Story.SceneCount
	}
	if sceneCount < 3 {
		return fmt.Errorf("a story needs at least 3 scenes, got %d", sceneCount)
	}

	ageName := generateAge
	if ageName == "" {
		ageName = cfg.Story.AgeGroup
	}
	age, ok := story.ParseAgeGroup(ageName)
	if !ok {
		return fmt.Errorf("unknown age group %q (want toddler, preschool, or elementary)", ageName)
	}

	service, err := app.BuildService(ctx, cfg)
	if err != nil {
		return err
	}

	pipeline := app.NewPipeline(service)

	slog.Info("Generating story...", "prompt", generatePrompt, "scenes", sceneCount, "age", age)
	record, err := pipeline.Generate(ctx, app.GenerateRequest{
		Prompt:     generatePrompt,
		SceneCount: sceneCount,
		AgeGroup:   age,
	})
	if err != nil {
		return err
	}

	slog.Info("Story generated",
		"id", record.ID,
		"title", record.Title,
		"source", record.Source,
		"scenes", len(record.Scenes),
	)

	if generateRender {
		return renderStory(ctx, pipeline, record.ID)
	}

	fmt.Printf("Render it with: storytime render --story %s\n", record.ID)
	return nil
}
