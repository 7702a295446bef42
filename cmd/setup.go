package cmd

import (
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/huh/spinner"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212")).MarginBottom(1)
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Interactive setup wizard for Storytime",
	Long:  `Check for ffmpeg, create the library and output directories, and configure API keys.`,
	RunE:  runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func runSetup(cmd *cobra.Command, args []string) error {
	fmt.Println(titleStyle.Render("📖 Storytime Setup"))

	steps := []struct {
		name string
		fn   func() error
	}{
		{"Checking tools", checkTools},
		{"Creating directories", createDirectories},
		{"Configuring environment", configureEnv},
	}

	for _, step := range steps {
		if err := step.fn(); err != nil {
			return fmt.Errorf("%s: %w", step.name, err)
		}
	}

	return nil
}

func checkTools() error {
	return runWithSpinner("Checking ffmpeg", func() error {
		for _, tool := range []string{"ffmpeg", "ffprobe"} {
			if !commandExists(tool) {
				return fmt.Errorf("%s not found - install it from https://ffmpeg.org/download.html", tool)
			}
		}
		return nil
	})
}

func createDirectories() error {
	dirs := []string{"library", "output"}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	fmt.Println(successStyle.Render("✓ Created directories"))
	return nil
}

func configureEnv() error {
	if _, err := os.Stat(".env"); err == nil {
		var overwrite bool
		if err := huh.NewConfirm().
			Title("Found existing .env file").
			Description("Overwrite?").
			Value(&overwrite).
			Run(); err != nil {
			return err
		}
		if !overwrite {
			fmt.Println(infoStyle.Render("Kept existing .env"))
			return nil
		}
	}

	env := make(map[string]string)

	if err := configureAPIKeys(env); err != nil {
		return err
	}

	if err := configureGCS(env); err != nil {
		return err
	}

	return writeEnvFile(env)
}

func configureAPIKeys(env map[string]string) error {
	fmt.Println(infoStyle.Render(`
All keys are optional. Without them, Storytime falls back to the built-in
story synthesizer, silent narration, and placeholder artwork.`))

	var groqKey, elevenKey, hfKey string
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Groq API Key").
				Description("AI story writing - https://console.groq.com/keys").
				Value(&groqKey),
			huh.NewInput().
				Title("ElevenLabs API Key").
				Description("Narration - https://elevenlabs.io/app/settings/api-keys").
				EchoMode(huh.EchoModePassword).
				Value(&elevenKey),
			huh.NewInput().
				Title("Hugging Face API Key").
				Description("Scene artwork - https://huggingface.co/settings/tokens").
				EchoMode(huh.EchoModePassword).
				Value(&hfKey),
		),
	)

	if err := form.Run(); err != nil {
		return err
	}

	if key := strings.TrimSpace(groqKey); key != "" {
		env["GROQ_API_KEY"] = key
	}
	if key := strings.TrimSpace(elevenKey); key != "" {
		env["ELEVENLABS_API_KEY"] = key
	}
	if key := strings.TrimSpace(hfKey); key != "" {
		env["HF_API_KEY"] = key
	}
	return nil
}

func configureGCS(env map[string]string) error {
	var setup bool
	if err := huh.NewConfirm().
		Title("Setup Cloud Storage export?").
		Description("Uploads rendered videos to a GCS bucket (optional)").
		Value(&setup).
		Run(); err != nil {
		return err
	}

	if !setup {
		return nil
	}

	if !commandExists("gcloud") {
		fmt.Println(warnStyle.Render("gcloud CLI not found - install from https://cloud.google.com/sdk/docs/install"))
	}

	var project, bucket string
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Google Cloud Project").
				Placeholder(activeGCPProject()).
				Value(&project),
			huh.NewInput().
				Title("GCS Bucket").
				Value(&bucket),
		),
	)

	if err := form.Run(); err != nil {
		return err
	}

	project = strings.TrimSpace(project)
	if project == "" {
		project = activeGCPProject()
	}
	if project != "" {
		env["GOOGLE_CLOUD_PROJECT"] = project
	}
	if bucket = strings.TrimSpace(bucket); bucket != "" {
		env["GCS_BUCKET"] = bucket
	}
	return nil
}

func activeGCPProject() string {
	out, err := exec.Command("gcloud", "config", "get-value", "project").Output()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(out))
}

func writeEnvFile(env map[string]string) error {
	f, err := os.Create(".env")
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	order := []string{
		"GOOGLE_CLOUD_PROJECT",
		"GROQ_API_KEY",
		"ELEVENLABS_API_KEY",
		"HF_API_KEY",
		"GCS_BUCKET",
	}

	for _, key := range order {
		if val, ok := env[key]; ok && val != "" {
			_, _ = fmt.Fprintf(f, "%s=%s\n", key, val)
		}
	}

	fmt.Println(successStyle.Render("✓ Created .env file"))
	printNextSteps()
	return nil
}

func printNextSteps() {
	fmt.Println()
	fmt.Println(titleStyle.Render("Next steps:"))
	fmt.Println("  1. Generate a story: storytime generate -p \"two rabbits who learn to share\"")
	fmt.Println("  2. Render the video: storytime render")
}

func commandExists(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}

func runWithSpinner(title string, fn func() error) error {
	var err error
	_ = spinner.New().
		Title(title).
		Action(func() { err = fn() }).
		Run()
	if err != nil {
		return err
	}
	fmt.Println(successStyle.Render("✓ " + title))
	return nil
}
