package bootstrap

import (
	"context"

	"github.com/turtacn/lexclock/internal/config"
	"github.com/turtacn/lexclock/internal/infrastructure/monitoring/logging"
	httpapi "github.com/turtacn/lexclock/internal/interfaces/http"
)

// ServeOptions configures Platform.Serve.
type ServeOptions struct {
	// Server overrides Config.Server.
	Server config.ServerConfig
	// ConfigPath, when set, is watched and log level edits apply live.
	ConfigPath string
	// Warm resolves this year's and next year's holidays before serving.
	Warm bool
}

// Serve runs the HTTP API until ctx is cancelled, then drains in-flight
// requests.
func (p *Platform) Serve(ctx context.Context, opts ServeOptions) error {
	logger := p.Logger

	if opts.ConfigPath != "" {
		err := config.Watch(opts.ConfigPath, logger, func(cfg *config.Config) {
			if err := logger.SetLevel(cfg.Log.Level); err != nil {
				logger.Warn("ignoring log level change", logging.Err(err))
				return
			}
			logger.Info("log level updated", logging.String("level", cfg.Log.Level))
		})
		if err != nil {
			logger.Warn("config hot reload disabled", logging.Err(err))
		}
	}

	if opts.Warm {
		if n, err := p.WarmCurrent(ctx); err != nil {
			logger.Warn("holiday warm-up failed", logging.Err(err))
		} else {
			logger.Debug("holiday warm-up finished", logging.Int("years", n))
		}
	}

	srv := httpapi.NewServer(opts.Server, p.Router(), logger)
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	logger.Info("lexclock API started",
		logging.String("version", p.version),
		logging.String("addr", opts.Server.Addr()),
		logging.String("jurisdiction", p.Config.Calendar.Jurisdiction))

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	if err := srv.Stop(context.WithoutCancel(ctx)); err != nil {
		return err
	}
	return <-errCh
}
