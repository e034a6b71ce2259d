package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/peterkuimelis/spiredeck/internal/archive"
	"github.com/peterkuimelis/spiredeck/internal/config"
	"github.com/peterkuimelis/spiredeck/internal/deck"
	"github.com/peterkuimelis/spiredeck/internal/history"
	"github.com/peterkuimelis/spiredeck/internal/log"
	"github.com/peterkuimelis/spiredeck/internal/report"
	"github.com/peterkuimelis/spiredeck/internal/runlog"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	var err error
	cmd := os.Args[1]
	switch cmd {
	case "reconstruct":
		err = runReconstruct(os.Args[2:])
	case "diffs":
		err = runDiffs(os.Args[2:])
	case "replay":
		err = runReplay(os.Args[2:])
	case "characters":
		err = runCharacters(os.Args[2:])
	default:
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  spiredeck reconstruct --file RUN [--json] [--archive DB] [--verbose]")
	fmt.Println("  spiredeck diffs --file RUN")
	fmt.Println("  spiredeck replay --file RUN --floor N [--verbose]")
	fmt.Println("  spiredeck characters")
	fmt.Println()
	fmt.Println("Every command also accepts --config FILE and --decks FILE.")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  reconstruct  Rebuild a run's deck history and report unexplained cards")
	fmt.Println("  diffs        Print each floor's deck changes")
	fmt.Println("  replay       Print the deck as it stood after a floor")
	fmt.Println("  characters   List starting decks")
}

// env is what every subcommand needs after flag parsing.
type env struct {
	cfg      *config.Config
	registry *deck.Registry
	logger   *zap.Logger
}

type commonFlags struct {
	config *string
	decks  *string
}

func addCommonFlags(fs *flag.FlagSet) commonFlags {
	return commonFlags{
		config: fs.String("config", "", "path to config file"),
		decks:  fs.String("decks", "", "path to starting-deck YAML file (overrides config)"),
	}
}

func (c commonFlags) load() (*env, error) {
	cfg, err := config.Load(*c.config)
	if err != nil {
		return nil, err
	}
	if *c.decks != "" {
		cfg.Decks.File = *c.decks
	}

	logger, err := cfg.Logging.NewLogger()
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	registry := deck.DefaultRegistry()
	if cfg.Decks.File != "" {
		registry, err = deck.LoadStartingDecks(cfg.Decks.File)
		if err != nil {
			return nil, fmt.Errorf("load starting decks: %w", err)
		}
	}
	return &env{cfg: cfg, registry: registry, logger: logger}, nil
}

// eventLogger prints deck events to w when verbose is set.
func eventLogger(verbose bool, w io.Writer) log.EventLogger {
	if verbose {
		return log.NewTextLogger(w)
	}
	return log.NewMemoryLogger()
}

func loadRun(path string) (*runlog.RunLog, error) {
	if path == "" {
		return nil, fmt.Errorf("--file is required")
	}
	return runlog.Load(path)
}

func runReconstruct(args []string) error {
	fs := flag.NewFlagSet("reconstruct", flag.ExitOnError)
	common := addCommonFlags(fs)
	file := fs.String("file", "", "path to run file")
	asJSON := fs.Bool("json", false, "print the report as JSON")
	archivePath := fs.String("archive", "", "SQLite archive to store the report in (overrides config)")
	verbose := fs.Bool("verbose", false, "print every deck change")
	fs.Parse(args)

	e, err := common.load()
	if err != nil {
		return err
	}
	defer e.logger.Sync()

	run, err := loadRun(*file)
	if err != nil {
		return err
	}

	// Keep stdout clean for JSON.
	events := os.Stdout
	if *asJSON {
		events = os.Stderr
	}
	res := history.Reconstruct(run, history.Options{
		Registry: e.registry,
		Logger:   eventLogger(*verbose, events),
	})
	rep := report.Build(res, run)

	if *archivePath != "" {
		e.cfg.Archive.Path = *archivePath
	}
	if e.cfg.Archive.Path != "" {
		if err := saveReport(e.cfg.Archive.Path, rep); err != nil {
			return err
		}
		e.logger.Info("archived report", zap.String("id", rep.ID), zap.String("archive", e.cfg.Archive.Path))
	}

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(rep)
	}
	return report.WriteText(os.Stdout, rep)
}

func saveReport(path string, rep *report.Report) error {
	store, err := archive.Open(path)
	if err != nil {
		return err
	}
	defer store.Close()
	return store.SaveReport(context.Background(), rep)
}

func runDiffs(args []string) error {
	fs := flag.NewFlagSet("diffs", flag.ExitOnError)
	common := addCommonFlags(fs)
	file := fs.String("file", "", "path to run file")
	fs.Parse(args)

	e, err := common.load()
	if err != nil {
		return err
	}
	defer e.logger.Sync()

	run, err := loadRun(*file)
	if err != nil {
		return err
	}
	res := history.Reconstruct(run, history.Options{Registry: e.registry})
	return report.WriteTurns(os.Stdout, report.Build(res, run))
}

func runReplay(args []string) error {
	fs := flag.NewFlagSet("replay", flag.ExitOnError)
	common := addCommonFlags(fs)
	file := fs.String("file", "", "path to run file")
	floor := fs.Int("floor", -1, "floor to stop after (-1 for the starting deck)")
	verbose := fs.Bool("verbose", false, "print every deck change")
	fs.Parse(args)

	e, err := common.load()
	if err != nil {
		return err
	}
	defer e.logger.Sync()

	run, err := loadRun(*file)
	if err != nil {
		return err
	}
	res := history.Reconstruct(run, history.Options{Registry: e.registry})
	tl := res.Timeline(eventLogger(*verbose, os.Stdout))
	tl.Seek(*floor)

	view := report.NewDeckView(tl.Floor(), tl.Position(), tl.Deck())
	if view.Floor < 0 {
		fmt.Println("Starting deck:")
	} else {
		fmt.Printf("Deck after floor %d (%d of %d changes):\n", view.Floor, view.Position, tl.Len())
	}
	for _, c := range view.Cards {
		fmt.Printf("  %s\n", c)
	}
	if len(view.UnknownObtained) > 0 {
		fmt.Printf("obtained?: %s\n", strings.Join(view.UnknownObtained, ", "))
	}
	return nil
}

func runCharacters(args []string) error {
	fs := flag.NewFlagSet("characters", flag.ExitOnError)
	common := addCommonFlags(fs)
	fs.Parse(args)

	e, err := common.load()
	if err != nil {
		return err
	}
	defer e.logger.Sync()

	for _, c := range report.NewCharacterViews(e.registry) {
		fmt.Printf("%s (%d cards): %s\n", c.Name, len(c.Cards), strings.Join(c.Cards, ", "))
	}
	return nil
}
