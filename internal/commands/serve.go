package commands

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	httptransport "github.com/dotcommander/faultlog/internal/transport/http"
)

func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP capture hooks and inspector",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			addr, _ := cmd.Flags().GetString("addr")
			return withSession(cmd, func(s *session) error {
				if addr == "" {
					addr = s.Settings.HTTPAddr
				}
				ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
				defer stop()

				logger := slog.Default()
				router := httptransport.NewRouter(httptransport.Deps{
					Store:    s.Store,
					Logger:   logger,
					Location: s.Settings.Location,
				})
				return httptransport.Serve(ctx, addr, router, logger, nil)
			})
		},
	}
	cmd.Flags().String("addr", "", "Listen address (default: http_addr from config, then 127.0.0.1:7373)")
	return cmd
}
