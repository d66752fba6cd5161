package cmd

import (
	"context"
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"uptube/internal/app"
	"uptube/internal/distribution/youtube"
	"uptube/pkg/config"
)

var (
	authInfoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	authSuccessStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	authErrorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

var authCheck bool

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage the YouTube OAuth credential",
	Long:  `Authorize uploads or inspect the cached YouTube token.`,
}

var authYouTubeCmd = &cobra.Command{
	Use:   "youtube",
	Short: "Authorize YouTube uploads (OAuth)",
	Long: `Run the browser consent flow and cache the resulting token, replacing
any token already stored.`,
	RunE: runAuthYouTube,
}

var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the state of the YouTube credential",
	Long:  `Report where the client credentials come from and whether a usable token is cached.`,
	RunE:  runAuthStatus,
}

func init() {
	authStatusCmd.Flags().BoolVar(&authCheck, "check", false, "Refresh the token if needed to prove it still works")
	authCmd.AddCommand(authYouTubeCmd)
	authCmd.AddCommand(authStatusCmd)
	rootCmd.AddCommand(authCmd)
}

func runAuthYouTube(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := config.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	return authorizeYouTube(ctx, cfg)
}

func authorizeYouTube(ctx context.Context, cfg *config.Config) error {
	if !cfg.HasClientCredentials() {
		return fmt.Errorf("%w: set YOUTUBE_CLIENT_SECRET_FILE or YOUTUBE_CLIENT_ID and YOUTUBE_CLIENT_SECRET", youtube.ErrNoClientCredentials)
	}

	auth, closeFn, err := app.BuildAuth(ctx, cfg, true)
	if err != nil {
		return err
	}
	defer func() { _ = closeFn() }()

	fmt.Println(authInfoStyle.Render("\nOpening browser for YouTube authorization..."))
	fmt.Println(authInfoStyle.Render("Waiting for consent (up to " + cfg.YouTube.AuthTimeout.String() + ")..."))

	if _, err := auth.Authorize(ctx); err != nil {
		return err
	}

	fmt.Println(authSuccessStyle.Render("✓ YouTube authorization complete"))
	fmt.Println(authSuccessStyle.Render("  Token saved to: " + app.TokenLocation(cfg)))
	return nil
}

func runAuthStatus(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := config.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	fmt.Println(authInfoStyle.Render("\nYouTube Authentication Status:\n"))

	if source := cfg.ClientSecretSource(); source != "" {
		fmt.Println(authSuccessStyle.Render("✓ Client credentials: " + source))
	} else {
		fmt.Println(authErrorStyle.Render("✗ Client credentials: missing " + cfg.ClientSecretFile + " and YOUTUBE_CLIENT_ID/YOUTUBE_CLIENT_SECRET"))
		fmt.Println()
		return nil
	}

	auth, closeFn, err := app.BuildAuth(ctx, cfg, false)
	if err != nil {
		return err
	}
	defer func() { _ = closeFn() }()

	state, err := auth.State(ctx)
	if err != nil {
		fmt.Println(authErrorStyle.Render("✗ Token: unreadable (" + err.Error() + ")"))
		fmt.Println(authInfoStyle.Render("  Run: uptube auth youtube"))
		fmt.Println()
		return nil
	}

	switch state {
	case youtube.TokenValid, youtube.TokenRefreshable:
		fmt.Println(authSuccessStyle.Render("✓ Token: " + state.String()))
	default:
		fmt.Println(authErrorStyle.Render("✗ Token: " + state.String()))
		fmt.Println(authInfoStyle.Render("  Run: uptube auth youtube"))
	}

	if authCheck && state != youtube.TokenMissing {
		err := runWithSpinner("Verifying token", func() error {
			_, err := auth.Token(ctx)
			return err
		})
		if err != nil {
			fmt.Println(authErrorStyle.Render("✗ Token check failed: " + err.Error()))
		}
	}

	fmt.Println()
	return nil
}
