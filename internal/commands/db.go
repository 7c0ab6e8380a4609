package commands

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/dotcommander/faultlog/internal/app"
)

func NewDBCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "db",
		Short: "Database utilities",
	}

	cmd.AddCommand(newDBPathCmd())
	cmd.AddCommand(newDBKeysCmd())
	return cmd
}

func newDBPathCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "path",
		Short: "Print the resolved database path",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, source, err := app.ResolveDBPathDetailed()
			if err != nil {
				return cmdErr(err)
			}

			type resp struct {
				Path   string `json:"path"`
				Source string `json:"source"`
			}
			return printSuccess(cmd, resp{Path: path, Source: source})
		},
	}
	return cmd
}

// keyLister is implemented by the sqlite and postgres slots.
type keyLister interface {
	Keys(ctx context.Context) ([]string, error)
}

func newDBKeysCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "keys",
		Short: "List the slot keys present in the backend",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, func(s *session) error {
				keys := []string{}
				if kl, ok := s.Slot.(keyLister); ok {
					found, err := kl.Keys(cmd.Context())
					if err != nil {
						return err
					}
					keys = append(keys, found...)
				}
				type resp struct {
					Backend string   `json:"backend"`
					Keys    []string `json:"keys"`
				}
				return printSuccess(cmd, resp{Backend: s.Settings.Backend, Keys: keys})
			})
		},
	}
}
