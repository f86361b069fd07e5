// Command apiserver serves the lexclock HTTP API.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/turtacn/lexclock/internal/bootstrap"
	"github.com/turtacn/lexclock/internal/config"
	"github.com/turtacn/lexclock/internal/infrastructure/monitoring/logging"
)

// Build-time variables injected via ldflags.
var version = "dev"

func main() {
	configPath := flag.String("config", "", "path to configuration file (default: environment only)")
	httpPort := flag.Int("http-port", 0, "HTTP server port (overrides config)")
	noWarm := flag.Bool("no-warm", false, "skip holiday warm-up at startup")
	flag.Parse()

	if err := run(*configPath, *httpPort, !*noWarm); err != nil {
		fmt.Fprintf(os.Stderr, "apiserver: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string, httpPort int, warm bool) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if httpPort > 0 {
		cfg.Server.Port = httpPort
	}

	logger, err := logging.NewLogger(cfg.Log)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()
	logging.SetDefault(logger)

	platform, err := bootstrap.New(cfg, logger, bootstrap.WithVersion(version))
	if err != nil {
		logger.Error("failed to initialize", logging.Err(err))
		return err
	}
	defer func() {
		if err := platform.Close(); err != nil {
			logger.Warn("failed to close platform", logging.Err(err))
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err = platform.Serve(ctx, bootstrap.ServeOptions{
		Server:     cfg.Server,
		ConfigPath: configPath,
		Warm:       warm,
	})
	logger.Info("apiserver stopped")
	return err
}
