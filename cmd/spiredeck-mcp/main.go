package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/peterkuimelis/spiredeck/internal/archive"
	"github.com/peterkuimelis/spiredeck/internal/config"
	"github.com/peterkuimelis/spiredeck/internal/deck"
	spiremcp "github.com/peterkuimelis/spiredeck/internal/mcp"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	decks := flag.String("decks", "", "path to starting-deck YAML file (overrides config)")
	archivePath := flag.String("archive", "", "SQLite archive for reports (overrides config)")
	flag.Parse()

	if err := run(*configPath, *decks, *archivePath); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath, decks, archivePath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if decks != "" {
		cfg.Decks.File = decks
	}
	if archivePath != "" {
		cfg.Archive.Path = archivePath
	}

	// zap writes to stderr, leaving stdout to the protocol.
	logger, err := cfg.Logging.NewLogger()
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync()

	opts := spiremcp.Options{Logger: logger}
	if cfg.Decks.File != "" {
		if opts.Registry, err = deck.LoadStartingDecks(cfg.Decks.File); err != nil {
			return fmt.Errorf("load starting decks: %w", err)
		}
	}
	if cfg.Archive.Path != "" {
		store, err := archive.Open(cfg.Archive.Path)
		if err != nil {
			return err
		}
		defer store.Close()
		opts.Archive = store
	}

	s := server.NewMCPServer("spiredeck", "1.0.0")
	spiremcp.RegisterTools(s, spiremcp.NewSession(opts))

	logger.Info("serving MCP over stdio", zap.String("archive", cfg.Archive.Path))
	return server.ServeStdio(s)
}
