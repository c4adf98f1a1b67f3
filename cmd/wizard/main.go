package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/fielax/wizard/internal/buildinfo"
	"github.com/fielax/wizard/internal/cli"
	"github.com/fielax/wizard/internal/config"
	"github.com/fielax/wizard/internal/logging"
	"github.com/fielax/wizard/internal/secrets"
	"github.com/fielax/wizard/internal/services"
)

func main() {
	// Optional .env in the working directory, loaded before the config
	// reads the legacy key override.
	_ = godotenv.Load()

	buildinfo.PrintBuildData(os.Stdout)

	cfg := config.LoadConfig()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %s", err)
	}

	lvl, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Fatal(err)
	}
	logger := logging.NewSlogLogger(slog.New(
		slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})))

	opts := []secrets.Option{secrets.WithDir(cfg.SecretsDir)}
	if !cfg.UseKeyring {
		opts = append(opts, secrets.WithoutKeyring())
	}
	store, err := secrets.Open(opts...)
	if err != nil {
		log.Fatalf("error opening secret store: %s", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Debug(ctx, "secret store ready", "backend", store.Backend())

	app := cli.NewApp(cfg, services.NewProjectService(store, cfg.LegacyKey, logger), logger)
	app.Run(ctx)
}
