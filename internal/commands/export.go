package commands

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/dotcommander/faultlog/internal/panel"
	"github.com/dotcommander/faultlog/internal/report"
)

func NewExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write recorded faults as a plain-text report",
		Long:  "Write recorded faults as a plain-text report. Without --out the file is named fault_logs_YYYY-MM-DD.txt in the current directory; --out - writes to stdout.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out, _ := cmd.Flags().GetString("out")
			return withSession(cmd, func(s *session) error {
				mirror := panel.Attach(s.Store)
				defer mirror.Detach()
				opts := report.Options{Location: s.Settings.Location}

				if out == "-" {
					return mirror.Export(cmd.OutOrStdout(), opts)
				}
				if out == "" {
					out = report.FileName(time.Now())
				}

				f, err := os.Create(out) //nolint:gosec // G304: user-chosen output path
				if err != nil {
					return fmt.Errorf("create export file: %w", err)
				}
				if err := mirror.Export(f, opts); err != nil {
					_ = f.Close()
					return fmt.Errorf("write export file: %w", err)
				}
				if err := f.Close(); err != nil {
					return fmt.Errorf("close export file: %w", err)
				}

				type resp struct {
					Path    string `json:"path"`
					Records int    `json:"records"`
				}
				return printSuccess(cmd, resp{Path: out, Records: mirror.Len()})
			})
		},
	}
	cmd.Flags().StringP("out", "o", "", "Output file, or - for stdout")
	return cmd
}
