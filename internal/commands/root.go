package commands

import (
	"errors"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/dotcommander/faultlog/internal/app"
	"github.com/dotcommander/faultlog/internal/logging"
)

// Execute runs the CLI application.
func Execute(version string) error {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, nil)))

	err := newRootCmd(version).Execute()
	if err != nil {
		var pe printedError
		if !errors.As(err, &pe) {
			slog.Error("command failed", "error", err.Error())
		}
	}
	return err
}

func newRootCmd(version string) *cobra.Command {
	root := &cobra.Command{
		Use:           "faultlog",
		Short:         "Capture, persist and inspect unhandled runtime faults",
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			showVersion, _ := cmd.Flags().GetBool("version")
			if showVersion {
				type resp struct {
					Version string `json:"version"`
				}
				return printSuccess(cmd, resp{Version: version})
			}
			return cmd.Help()
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := app.EnsureConfigDir(); err != nil {
				return err
			}

			// Wire --db-path and --backend into the app-level resolvers.
			dbPath, _ := cmd.Flags().GetString("db-path")
			app.SetDBPathOverride(dbPath)
			backend, _ := cmd.Flags().GetString("backend")
			app.SetBackendOverride(backend)

			eff, err := app.EffectiveSettings()
			if err != nil {
				return err
			}
			level := eff.LogLevel
			if flagLevel, _ := cmd.Flags().GetString("log-level"); flagLevel != "" {
				level = flagLevel
			}
			slog.SetDefault(logging.NewLogger(eff.LogFormat, level, cmd.ErrOrStderr()))
			return nil
		},
	}

	root.PersistentFlags().String("db-path", "", "Override database path (sqlite backend)")
	root.PersistentFlags().String("backend", "", "Storage backend: sqlite, postgres or memory (default: $FAULTLOG_BACKEND)")
	root.PersistentFlags().String("log-level", "", "Log level: debug, info, warn or error (default: $FAULTLOG_LOG_LEVEL)")
	root.Flags().BoolP("version", "v", false, "version for faultlog")

	root.AddCommand(NewListCmd())
	root.AddCommand(NewClearCmd())
	root.AddCommand(NewExportCmd())
	root.AddCommand(NewDemoCmd())
	root.AddCommand(NewPanelCmd())
	root.AddCommand(NewServeCmd())
	root.AddCommand(NewDoctorCmd())
	root.AddCommand(NewDBCmd())

	return root
}
