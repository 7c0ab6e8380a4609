package commands

import (
	"github.com/spf13/cobra"

	"github.com/dotcommander/faultlog/internal/app"
	"github.com/dotcommander/faultlog/internal/models"
	"github.com/dotcommander/faultlog/internal/store"
)

func NewDoctorCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check configuration, slot connectivity and stored records",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			eff, err := app.EffectiveSettings()
			if err != nil {
				return cmdErr(err)
			}

			type resp struct {
				Backend       string            `json:"backend"`
				SlotKey       string            `json:"slot_key"`
				DBPath        string            `json:"db_path,omitempty"`
				DBSource      string            `json:"db_source,omitempty"`
				SlotOK        bool              `json:"slot_ok"`
				SlotErr       string            `json:"slot_error,omitempty"`
				SchemaVersion int64             `json:"schema_version,omitempty"`
				Report        *store.SlotReport `json:"report,omitempty"`
				Hint          string            `json:"hint,omitempty"`
			}
			out := resp{Backend: eff.Backend, SlotKey: eff.SlotKey}

			if eff.Backend == app.BackendSQLite {
				dbPath, dbSource, err := app.ResolveDBPathDetailed()
				if err != nil {
					return cmdErr(err)
				}
				out.DBPath = dbPath
				out.DBSource = dbSource
			}

			s, err := openSession(cmd.Context())
			if err != nil {
				out.SlotErr = err.Error()
				if re, ok := models.AsRecoverable(err); ok {
					out.Hint = re.SuggestedAction()
				}
				return printSuccess(cmd, out)
			}
			defer s.Close()
			out.SlotOK = true

			if s.DB != nil {
				if current, _, err := store.SchemaVersion(s.DB); err == nil {
					out.SchemaVersion = current
				}
			}

			rep, err := store.RunDiagnostics(cmd.Context(), s.Slot, eff.SlotKey)
			if err != nil {
				out.SlotOK = false
				out.SlotErr = err.Error()
				return printSuccess(cmd, out)
			}
			out.Report = &rep
			return printSuccess(cmd, out)
		},
	}
	return cmd
}
