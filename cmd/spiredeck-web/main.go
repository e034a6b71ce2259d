package main

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/peterkuimelis/spiredeck/internal/archive"
	"github.com/peterkuimelis/spiredeck/internal/config"
	"github.com/peterkuimelis/spiredeck/internal/deck"
	"github.com/peterkuimelis/spiredeck/internal/web"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	addr := flag.String("addr", "", "HTTP listen address (overrides config)")
	decks := flag.String("decks", "", "path to starting-deck YAML file (overrides config)")
	archivePath := flag.String("archive", "", "SQLite archive for reports (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if *addr != "" {
		cfg.Web.Address = *addr
	}
	if *decks != "" {
		cfg.Decks.File = *decks
	}
	if *archivePath != "" {
		cfg.Archive.Path = *archivePath
	}

	logger, err := cfg.Logging.NewLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	opts := web.Options{Logger: logger}
	if cfg.Decks.File != "" {
		opts.Registry, err = deck.LoadStartingDecks(cfg.Decks.File)
		if err != nil {
			logger.Fatal("failed to load starting decks", zap.Error(err))
		}
	}
	if cfg.Archive.Path != "" {
		store, err := archive.Open(cfg.Archive.Path)
		if err != nil {
			logger.Fatal("failed to open archive", zap.Error(err))
		}
		defer store.Close()
		opts.Archive = store
	}

	logger.Info("spiredeck web UI listening",
		zap.String("address", cfg.Web.Address),
		zap.String("archive", cfg.Archive.Path),
	)
	if err := web.NewServer(opts).ListenAndServe(cfg.Web.Address); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
}
