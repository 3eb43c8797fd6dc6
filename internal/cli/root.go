package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/mcoot/tourcompanion/internal/factory"
)

var (
	cfg *Config
	app *factory.App
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cfg = DefaultConfig()
	app = nil

	rootCmd := &cobra.Command{
		Use:   "tourcompanion",
		Short: "Tour companion client",
		Long: `tourcompanion drives the tour companion client core from the command line.

It signs in against the companion API, remembers the session between runs,
plans quests, tracks stamp scans and shows points and chat history.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.LoadFile(cmd.Flags().Changed); err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			if skipsApp(cmd) {
				return nil
			}

			level := slog.LevelWarn
			if cfg.Verbose {
				level = slog.LevelDebug
			}
			logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

			factoryCfg := cfg.FactoryConfig()
			factoryCfg.Logger = logger
			a, err := factory.New(factoryCfg)
			if err != nil {
				return fmt.Errorf("failed to start: %w", err)
			}
			app = a

			// A broken credential store still leaves us signed out
			if err := app.Start(cmd.Context()); err != nil {
				logger.Warn("could not restore session", slog.String("error", err.Error()))
			}
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if app == nil {
				return nil
			}
			return app.Close()
		},
		SilenceUsage: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfg.ConfigFile, "config", cfg.ConfigFile, "YAML config file (env: TOURCOMPANION_CONFIG)")
	flags.StringVar(&cfg.ServerURL, flagServer, cfg.ServerURL, "API base URL (env: TOURCOMPANION_SERVER)")
	flags.StringVar(&cfg.StorageType, flagStorage, cfg.StorageType, "Credential storage: memory, file, redis (env: TOURCOMPANION_STORAGE)")
	flags.StringVar(&cfg.CredentialsFile, flagCredentialsFile, cfg.CredentialsFile, "Credentials file (env: TOURCOMPANION_CREDENTIALS_FILE)")
	flags.StringVar(&cfg.RedisURL, flagRedisURL, cfg.RedisURL, "Redis URL (env: TOURCOMPANION_REDIS_URL)")
	flags.StringVar(&cfg.RedisNamespace, flagRedisNamespace, cfg.RedisNamespace, "Redis key namespace (env: TOURCOMPANION_REDIS_NAMESPACE)")
	flags.IntVar(&cfg.PlannerCapacity, flagCapacity, cfg.PlannerCapacity, "Maximum quests in a plan (env: TOURCOMPANION_PLANNER_CAPACITY)")
	flags.DurationVar(&cfg.StampCooldown, flagCooldown, cfg.StampCooldown, "Pause after each processed scan, 0 disables")
	flags.StringVarP(&cfg.Output, flagOutput, "o", cfg.Output, "Output format: text, json")
	flags.BoolVarP(&cfg.Verbose, flagVerbose, "v", cfg.Verbose, "Verbose output")

	rootCmd.AddCommand(newLoginCmd())
	rootCmd.AddCommand(newGuestCmd())
	rootCmd.AddCommand(newLogoutCmd())
	rootCmd.AddCommand(newStatusCmd())
	rootCmd.AddCommand(newRouteCmd())
	rootCmd.AddCommand(newQuestsCmd())
	rootCmd.AddCommand(newStampsCmd())
	rootCmd.AddCommand(newPointsCmd())
	rootCmd.AddCommand(newChatCmd())
	rootCmd.AddCommand(newHealthCmd())
	rootCmd.AddCommand(newConfigCmd())

	return rootCmd
}

// skipAppAnnotation marks commands that only need the configuration
const skipAppAnnotation = "skip-app"

func skipsApp(cmd *cobra.Command) bool {
	_, ok := cmd.Annotations[skipAppAnnotation]
	return ok
}

func output(cmd *cobra.Command) *Output {
	return NewOutput(cfg.Output, cmd.OutOrStdout())
}

// Execute runs the root command
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
