package cmd

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "storytime",
	Short: "Generate illustrated children's stories as videos",
	Long: `Storytime turns a short prompt into an illustrated children's story:
an AI-written (or heuristically synthesized) script, narration, scene
artwork, and a rendered MP4 slideshow.`,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		setupLogger()
	}
}

func Execute() error {
	return rootCmd.Execute()
}

func setupLogger() {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})))
}
