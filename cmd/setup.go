package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/huh/spinner"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"uptube/internal/storage"
	"uptube/pkg/config"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212")).MarginBottom(1)
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
)

var envOrder = []string{
	"PORT",
	"UPLOAD_DIR",
	"YOUTUBE_CLIENT_SECRET_FILE",
	"GOOGLE_CLOUD_PROJECT",
	"YOUTUBE_TOKEN_PATH",
	"TOKEN_BUCKET",
}

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Interactive setup wizard for Uptube",
	Long:  `Write a .env file, create the upload directory, and optionally authorize YouTube.`,
	RunE:  runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func runSetup(cmd *cobra.Command, args []string) error {
	fmt.Println(titleStyle.Render("Uptube Setup"))

	written, err := configureEnv()
	if err != nil {
		return fmt.Errorf("configuring environment: %w", err)
	}
	if !written {
		return nil
	}

	cfg, err := config.Load(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := runWithSpinner("Creating upload directory", storage.NewLocalStorage(cfg.Server.UploadDir).EnsureDirectories); err != nil {
		return err
	}

	if cfg.HasClientCredentials() {
		var authenticate bool
		if err := huh.NewConfirm().
			Title("Authorize YouTube now?").
			Description("Opens a browser to complete the OAuth flow").
			Value(&authenticate).
			Run(); err != nil {
			return err
		}

		if authenticate {
			if err := authorizeYouTube(cmd.Context(), cfg); err != nil {
				fmt.Println(warnStyle.Render(fmt.Sprintf("OAuth flow failed: %v", err)))
				fmt.Println(infoStyle.Render("You can retry later with: uptube auth youtube"))
			}
		}
	} else {
		fmt.Println(warnStyle.Render("No client secret found at " + cfg.ClientSecretFile))
	}

	printNextSteps()
	return nil
}

func configureEnv() (bool, error) {
	if _, err := os.Stat(".env"); err == nil {
		var overwrite bool
		if err := huh.NewConfirm().
			Title("Found existing .env file").
			Description("Overwrite?").
			Value(&overwrite).
			Run(); err != nil {
			return false, err
		}
		if !overwrite {
			fmt.Println(infoStyle.Render("Kept existing .env"))
			return false, nil
		}
	}

	values := envValues{
		Port:             "5000",
		UploadDir:        "uploads",
		ClientSecretFile: "client_secret.json",
		TokenPath:        "token.json",
	}

	fmt.Println(infoStyle.Render(`
To create OAuth credentials:
1. Go to https://console.cloud.google.com/apis/credentials
2. Click "Create Credentials" → "OAuth client ID"
3. Choose "Desktop app" as application type
4. Download the JSON file next to the binary
`))

	var tokenBackend string
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Port").
				Value(&values.Port).
				Validate(required("Port")),
			huh.NewInput().
				Title("Upload directory").
				Description("Temporary files are written here while a video is relayed").
				Value(&values.UploadDir).
				Validate(required("Upload directory")),
			huh.NewInput().
				Title("Client secret file").
				Description("Downloaded OAuth client JSON").
				Value(&values.ClientSecretFile),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Where should the OAuth token be cached?").
				Options(
					huh.NewOption("Local file", "file"),
					huh.NewOption("Google Cloud Storage bucket", "gcs"),
				).
				Value(&tokenBackend),
		),
	)
	if err := form.Run(); err != nil {
		return false, err
	}

	if tokenBackend == "gcs" {
		values.TokenPath = ""
		if err := huh.NewForm(
			huh.NewGroup(
				huh.NewInput().
					Title("Bucket").
					Value(&values.TokenBucket).
					Validate(required("Bucket")),
				huh.NewInput().
					Title("Google Cloud project").
					Description("Also used to resolve Secret Manager names").
					Value(&values.Project),
			),
		).Run(); err != nil {
			return false, err
		}
	} else {
		if err := huh.NewInput().
			Title("Token file").
			Value(&values.TokenPath).
			Validate(required("Token file")).
			Run(); err != nil {
			return false, err
		}
	}

	if err := writeEnvFile(values.env()); err != nil {
		return false, err
	}
	return true, nil
}

type envValues struct {
	Port             string
	UploadDir        string
	ClientSecretFile string
	TokenPath        string
	TokenBucket      string
	Project          string
}

func (v envValues) env() map[string]string {
	env := map[string]string{
		"PORT":                       v.Port,
		"UPLOAD_DIR":                 v.UploadDir,
		"YOUTUBE_CLIENT_SECRET_FILE": v.ClientSecretFile,
		"YOUTUBE_TOKEN_PATH":         v.TokenPath,
		"TOKEN_BUCKET":               v.TokenBucket,
		"GOOGLE_CLOUD_PROJECT":       v.Project,
	}
	for k, val := range env {
		env[k] = strings.TrimSpace(val)
	}
	return env
}

func writeEnvFile(env map[string]string) error {
	f, err := os.Create(".env")
	if err != nil {
		return err
	}

	if err := writeEnv(f, env); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write .env: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to write .env: %w", err)
	}

	fmt.Println(successStyle.Render("✓ Created .env file"))
	return nil
}

// writeEnv writes the non-empty values in envOrder and stops at the first
// write error.
func writeEnv(w io.Writer, env map[string]string) error {
	for _, key := range envOrder {
		if val := env[key]; val != "" {
			if _, err := fmt.Fprintf(w, "%s=%s\n", key, val); err != nil {
				return err
			}
		}
	}
	return nil
}

func printNextSteps() {
	fmt.Println()
	fmt.Println(titleStyle.Render("Next steps:"))
	fmt.Println("  1. Check credentials: uptube auth status")
	fmt.Println("  2. Start the server:  uptube serve")
	fmt.Println("  3. Open http://localhost:<port>/upload")
}

func required(field string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", field)
		}
		return nil
	}
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
