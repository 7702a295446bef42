package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"storytime/internal/app"
	"storytime/internal/video"
	"storytime/pkg/config"
)

var renderStoryID string

var progressStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render a generated story into an MP4",
	Long: `Render a story from the library into a video. Without --story the
most recently generated story is rendered.`,
	RunE: runRender,
}

func init() {
	renderCmd.Flags().StringVarP(&renderStoryID, "story", "s", "", "Story ID to render (default: latest)")
	rootCmd.AddCommand(renderCmd)
}

func runRender(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg := config.Load()

	service, err := app.BuildService(ctx, cfg)
	if err != nil {
		return err
	}

	return renderStory(ctx, app.NewPipeline(service), renderStoryID)
}

func renderStory(ctx context.Context, pipeline *app.Pipeline, storyID string) error {
	record, err := pipeline.Render(ctx, storyID, printProgress)
	if err != nil {
		return err
	}
	fmt.Println()

	slog.Info("Video rendered", "title", record.Title, "path", record.VideoPath)
	return nil
}

func printProgress(p video.Progress) {
	fmt.Printf("\r%s", progressStyle.Render(fmt.Sprintf("%3d%% %-12s %s", p.Percent, p.Stage, p.Message)))
}
