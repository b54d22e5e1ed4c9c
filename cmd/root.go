package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"contactform/internal/app"
	"contactform/internal/config"
)

var configFile string

var rootCmd = &cobra.Command{
	Use:   "contactform",
	Short: "Contact form classifier",
	Long: `contactform receives contact form submissions over HTTP and asks Gemini
to label each message as a job inquiry, collaboration opportunity, general
feedback, or other.`,
	SilenceUsage: true,
	Run: func(cmd *cobra.Command, args []string) {
		// If no subcommand is given, print help.
		cmd.Help()
	},
	// PersistentPreRunE runs before any subcommand's RunE
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if !needsApp(cmd) {
			return nil
		}

		cfg, err := config.LoadConfig(configFile, cmd.Flags())
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}
		if err := config.ConfigureLogging(cfg); err != nil {
			return err
		}

		appInstance, err := app.NewApp(cfg)
		if err != nil {
			return fmt.Errorf("failed to initialize app: %w", err)
		}

		ctx := context.WithValue(cmd.Context(), appKey, appInstance)
		cmd.SetContext(ctx)
		return nil
	},
}

// needsApp reports whether cmd requires a loaded config and App.
func needsApp(cmd *cobra.Command) bool {
	switch cmd.Name() {
	case "help", "categories", "completion":
		return false
	}
	return cmd.Runnable() && cmd != cmd.Root()
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Define a custom type for the context key to avoid collisions.
type contextKey string

const appKey contextKey = "app"

// GetAppFromContext retrieves the app instance stored by PersistentPreRunE.
func GetAppFromContext(ctx context.Context) (*app.App, error) {
	appInstance, ok := ctx.Value(appKey).(*app.App)
	if !ok || appInstance == nil {
		return nil, fmt.Errorf("application instance not found in context")
	}
	return appInstance, nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Path to config file (default ./config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("model", "", "Gemini model name")
}
