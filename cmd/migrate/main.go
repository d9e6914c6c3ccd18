package main

import (
	"context"
	"log/slog"
	"os"

	"pouch/internal/config"
	"pouch/internal/logging"
	"pouch/internal/repository"
)

// Usage: migrate [up|down|status]. Defaults to "up".
func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logging.Init("pouch-migrate", cfg.LogLevel, cfg.AppEnv)

	command := "up"
	if len(os.Args) > 1 {
		command = os.Args[1]
	}

	if err := repository.RunMigrations(context.Background(), cfg.DatabaseURL, command); err != nil {
		slog.Error("migration failed", "command", command, "error", err)
		os.Exit(1)
	}
	slog.Info("migration complete", "command", command)
}
