// Command statsweb serves the generated reports and figures over HTTP.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"descstats/internal/app"
	"descstats/internal/config"
	"descstats/internal/infrastructure"
	"descstats/pkg/contracts"
)

const binary = "statsweb"

func main() {
	port := flag.Int("port", 0, "listen port (default from config)")
	out := flag.String("out", "", "output directory holding the reports (default from config)")
	version := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *version {
		fmt.Println(contracts.GetFullVersionString(binary))
		return
	}

	if err := run(context.Background(), *port, *out); err != nil {
		slog.Error("Application error", slog.String("error", err.Error()))
		fmt.Fprintf(os.Stderr, "%s: %v\n", binary, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, port int, out string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if port > 0 {
		cfg.Server.Port = port
	}
	if out != "" {
		cfg.Paths.OutputDir = out
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer infrastructure.CloseLogFile()

	providers, err := infrastructure.InitializeOTel(cfg.Telemetry, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}

	application, err := app.NewApplication(cfg, logger, providers)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	return application.Run(ctx)
}
