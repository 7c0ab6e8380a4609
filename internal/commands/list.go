package commands

import (
	"github.com/spf13/cobra"

	"github.com/dotcommander/faultlog/pkg/faultlog"
)

type listResponse struct {
	Count   int               `json:"count"`
	Records []faultlog.Record `json:"records"`
}

func NewListCmd() *cobra.Command {
	kind := newKindValue()
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print recorded faults, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, func(s *session) error {
				records := make([]faultlog.Record, 0)
				for _, r := range s.Store.Load() {
					if kind.Has(r.Kind) {
						records = append(records, r)
					}
				}
				return printSuccess(cmd, listResponse{Count: len(records), Records: records})
			})
		},
	}
	cmd.Flags().Var(kind, "kind", "Only list one kind: runtime, rejection, boundary or all")
	return cmd
}
