package commands

import (
	"github.com/spf13/cobra"

	"github.com/dotcommander/faultlog/internal/panel"
)

func NewPanelCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "panel",
		Short: "Open the interactive fault panel",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			exportDir, _ := cmd.Flags().GetString("export-dir")
			return withSession(cmd, func(s *session) error {
				return panel.Run(cmd.Context(), s.Store, panel.ModelOptions{
					Location:  s.Settings.Location,
					ExportDir: exportDir,
				})
			})
		},
	}
	cmd.Flags().String("export-dir", ".", "Directory the e key writes reports to")
	return cmd
}
