// Package web serves the reconstruction API, a small UI and a WebSocket
// replay that steps a deck through a run floor by floor.
package web

import (
	"embed"
	"encoding/json"
	"errors"
	"io/fs"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/peterkuimelis/spiredeck/internal/archive"
	"github.com/peterkuimelis/spiredeck/internal/deck"
	"github.com/peterkuimelis/spiredeck/internal/history"
	"github.com/peterkuimelis/spiredeck/internal/log"
	"github.com/peterkuimelis/spiredeck/internal/report"
	"github.com/peterkuimelis/spiredeck/internal/runlog"
)

//go:embed static
var staticFiles embed.FS

// maxRunBytes bounds uploaded run files.
const maxRunBytes = 16 << 20

const defaultListLimit = 50

// Options configures a Server. Every field may be left zero.
type Options struct {
	Registry *deck.Registry
	Archive  *archive.Store
	Logger   *zap.Logger
}

// Server is the spiredeck web UI server.
type Server struct {
	registry *deck.Registry
	archive  *archive.Store
	logger   *zap.Logger
	mux      *http.ServeMux
}

// NewServer creates a web server with its routes installed.
func NewServer(opts Options) *Server {
	s := &Server{
		registry: opts.Registry,
		archive:  opts.Archive,
		logger:   opts.Logger,
		mux:      http.NewServeMux(),
	}
	if s.registry == nil {
		s.registry = deck.DefaultRegistry()
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	staticFS, _ := fs.Sub(staticFiles, "static")

	s.mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFileFS(w, r, staticFS, "index.html")
	})
	s.mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.FS(staticFS))))

	s.mux.HandleFunc("GET /api/characters", s.handleCharacters)
	s.mux.HandleFunc("POST /api/reconstruct", s.handleReconstruct)
	s.mux.HandleFunc("GET /api/runs", s.handleListRuns)
	s.mux.HandleFunc("GET /api/runs/{id}", s.handleGetRun)

	s.mux.HandleFunc("GET /ws", s.handleWebSocket)
}

// Handler returns the server's routes.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe(addr string) error {
	srv := &http.Server{
		Addr:     addr,
		Handler:  s.mux,
		ErrorLog: zap.NewStdLog(s.logger),
	}
	return srv.ListenAndServe()
}

func (s *Server) handleCharacters(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, report.NewCharacterViews(s.registry))
}

func (s *Server) handleReconstruct(w http.ResponseWriter, r *http.Request) {
	run, err := runlog.Parse(http.MaxBytesReader(w, r.Body, maxRunBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	res := s.reconstruct(run)
	rep := report.Build(res, run)
	if s.archive != nil {
		if err := s.archive.SaveReport(r.Context(), rep); err != nil {
			s.logger.Error("archive report", zap.String("id", rep.ID), zap.Error(err))
			writeError(w, http.StatusInternalServerError, err)
			return
		}
	}
	writeJSON(w, http.StatusOK, rep)
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	if s.archive == nil {
		http.NotFound(w, r)
		return
	}
	limit := defaultListLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, errors.New("limit must be a positive integer"))
			return
		}
		limit = n
	}

	summaries, err := s.archive.ListReports(r.Context(), limit)
	if err != nil {
		s.logger.Error("list reports", zap.Error(err))
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, summaries)
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	if s.archive == nil {
		http.NotFound(w, r)
		return
	}
	rep, err := s.archive.GetReport(r.Context(), r.PathValue("id"))
	if errors.Is(err, archive.ErrNotFound) {
		writeError(w, http.StatusNotFound, err)
		return
	}
	if err != nil {
		s.logger.Error("get report", zap.Error(err))
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

func (s *Server) reconstruct(run *runlog.RunLog) *history.Result {
	res := history.Reconstruct(run, history.Options{
		Registry: s.registry,
		Logger:   s.eventLogger(),
	})
	s.logger.Info("reconstructed run",
		zap.String("character", res.Character),
		zap.Int("floor_reached", res.FloorReached),
		zap.Bool("consistent", res.Consistent()),
	)
	return res
}

func (s *Server) eventLogger() log.EventLogger {
	return log.NewZapLogger(s.logger.Named("deck"))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
