// Command citysim serves the tinycity turn-based city simulation.
package main

import (
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/talgya/tinycity/internal/api"
	"github.com/talgya/tinycity/internal/config"
	"github.com/talgya/tinycity/internal/persistence"
)

func main() {
	var (
		port     = flag.Int("port", 8080, "HTTP listen port")
		dbPath   = flag.String("db", "data/tinycity.db", "SQLite save database path")
		balPath  = flag.String("balance", "", "optional YAML balance config")
		logLevel = flag.String("log-level", "info", "log level: debug, info, warn, error")
	)
	flag.Parse()

	var level slog.Level
	if err := level.UnmarshalText([]byte(*logLevel)); err != nil {
		level = slog.LevelInfo
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	slog.Info("tinycity starting")

	bal, err := config.Load(*balPath)
	if err != nil {
		slog.Error("failed to load balance config", "error", err)
		os.Exit(1)
	}

	os.MkdirAll(filepath.Dir(*dbPath), 0755)
	db, err := persistence.Open(*dbPath)
	if err != nil {
		slog.Error("failed to open save database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	slog.Info("save database opened", "path", *dbPath)

	server := api.NewServer(db, bal, *port)
	server.Start()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	slog.Info("received signal, shutting down", "signal", sig)
}
