package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/turtacn/lexclock/internal/bootstrap"
)

func newServeCmd() *cobra.Command {
	var (
		port int
		warm bool
	)

	cmd := &cobra.Command{
		Use:         "serve",
		Short:       "Run the deadline HTTP API",
		Long:        "Run the deadline HTTP API until interrupted. Log level edits in the config file apply without a restart.",
		Annotations: map[string]string{annotationServer: "true"},
		Args:        cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			serverCfg := cliCtx.Config.Server
			if port > 0 {
				serverCfg.Port = port
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return cliCtx.Platform.Serve(ctx, bootstrap.ServeOptions{
				Server:     serverCfg,
				ConfigPath: cliCtx.ConfigPath,
				Warm:       warm,
			})
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "listen port (overrides server.port)")
	cmd.Flags().BoolVar(&warm, "warm", true, "warm this year's and next year's holidays before serving")
	return cmd
}
