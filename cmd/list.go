package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"storytime/internal/app"
	"storytime/internal/storage"
	"storytime/pkg/config"
)

var listRemote bool

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List stories in the library",
	RunE:  runList,
}

func init() {
	listCmd.Flags().BoolVar(&listRemote, "remote", false, "List videos exported to Cloud Storage instead")
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg := config.Load()

	service, err := app.BuildService(ctx, cfg)
	if err != nil {
		return err
	}

	if listRemote {
		return listExports(cmd, service)
	}

	records, err := service.Store().List()
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Println("No stories yet. Generate one with: storytime generate -p \"your idea\"")
		return nil
	}

	for _, record := range records {
		rendered := " "
		if record.VideoPath != "" {
			rendered = "✓"
		}
		fmt.Printf("%s %s  %-10s %-8s %s\n",
			rendered,
			record.CreatedAt.Format("2006-01-02 15:04"),
			record.Source,
			record.AgeGroup,
			record.Title,
		)
		fmt.Printf("    id: %s\n", record.ID)
	}
	return nil
}

func listExports(cmd *cobra.Command, service *app.Service) error {
	gcs, ok := service.Exporter().(*storage.GCSExporter)
	if !ok {
		return fmt.Errorf("cloud storage export is not configured (set GCS_BUCKET and gcs.enabled)")
	}

	names, err := gcs.ListExports(cmd.Context())
	if err != nil {
		return err
	}
	if len(names) == 0 {
		fmt.Println("No exported videos yet.")
		return nil
	}
	for _, name := range names {
		fmt.Println(name)
	}
	return nil
}
