package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/peterkuimelis/spiredeck/internal/deck"
	"github.com/peterkuimelis/spiredeck/internal/history"
	"github.com/peterkuimelis/spiredeck/internal/log"
	"github.com/peterkuimelis/spiredeck/internal/report"
	"github.com/peterkuimelis/spiredeck/internal/runlog"
)

// Archive is the subset of the report archive the tools use.
type Archive interface {
	SaveReport(ctx context.Context, r *report.Report) error
	GetReport(ctx context.Context, id string) (*report.Report, error)
}

// Options configures a Session. Every field may be left zero.
type Options struct {
	Registry *deck.Registry
	Archive  Archive
	Logger   *zap.Logger
}

// loadedRun is a parsed run file and its reconstruction.
type loadedRun struct {
	modTime  time.Time
	run      *runlog.RunLog
	result   *history.Result
	reportID string // the run's play ID, or one minted on load
}

// buildReport reports on the run under a stable ID, so archiving the same
// load twice updates one row.
func (l *loadedRun) buildReport() *report.Report {
	r := report.Build(l.result, l.run)
	r.ID = l.reportID
	return r
}

// Session holds state shared by the tool handlers of one MCP server.
type Session struct {
	registry *deck.Registry
	archive  Archive
	logger   *zap.Logger

	mu   sync.Mutex
	runs map[string]*loadedRun // keyed by path
}

// NewSession creates a session with an empty run cache.
func NewSession(opts Options) *Session {
	reg := opts.Registry
	if reg == nil {
		reg = deck.DefaultRegistry()
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Session{
		registry: reg,
		archive:  opts.Archive,
		logger:   logger,
		runs:     make(map[string]*loadedRun),
	}
}

// load returns the reconstruction of the run file at path. Results are
// cached until the file's modification time changes.
func (s *Session) load(path string) (*loadedRun, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if cached, ok := s.runs[path]; ok && cached.modTime.Equal(info.ModTime()) {
		return cached, nil
	}

	run, err := runlog.Load(path)
	if err != nil {
		return nil, err
	}
	res := history.Reconstruct(run, history.Options{
		Registry: s.registry,
		Logger:   s.eventLogger(),
	})
	s.logger.Info("reconstructed run",
		zap.String("path", path),
		zap.String("character", res.Character),
		zap.Int("diffs", len(res.Diffs)),
		zap.Bool("consistent", res.Consistent()),
	)

	reportID := run.PlayID
	if reportID == "" {
		reportID = uuid.NewString()
	}
	loaded := &loadedRun{modTime: info.ModTime(), run: run, result: res, reportID: reportID}
	s.runs[path] = loaded
	return loaded, nil
}

func (s *Session) eventLogger() log.EventLogger {
	return log.NewZapLogger(s.logger.Named("deck"))
}

// respondJSON marshals v to a JSON string.
func respondJSON(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf(`{"error": "marshal error: %v"}`, err)
	}
	return string(data)
}
