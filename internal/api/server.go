package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/dgallion1/docqa/internal/config"
	"github.com/dgallion1/docqa/internal/pipeline"
	"github.com/dgallion1/docqa/internal/qa"
	"github.com/dgallion1/docqa/internal/stats"
	"github.com/dgallion1/docqa/internal/store"
)

// Server is the HTTP API server for docqa.
type Server struct {
	router       chi.Router
	store        *store.Store
	orchestrator *pipeline.Orchestrator
	stats        *stats.AnswerStats
	picker       *qa.Picker
	log          *slog.Logger
	cfg          config.Config
}

// NewServer creates and configures the HTTP server.
func NewServer(st *store.Store, orch *pipeline.Orchestrator, answerStats *stats.AnswerStats, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		store:        st,
		orchestrator: orch,
		stats:        answerStats,
		picker:       qa.NewPicker(cfg.DemoSeed),
		log:          log,
		cfg:          cfg,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	// Public endpoints.
	r.Get("/health", s.handleHealth)

	// API endpoints; bearer auth only when a key is configured.
	r.Group(func(r chi.Router) {
		if s.cfg.APIKey != "" {
			r.Use(AuthMiddleware(s.cfg.APIKey))
		}

		r.Post("/api/documents", s.handleUpload)
		r.Get("/api/documents", s.handleListDocuments)
		r.Get("/api/documents/{docID}", s.handleGetDocument)
		r.Delete("/api/documents/{docID}", s.handleDeleteDocument)

		r.Post("/api/documents/{docID}/queries", s.handleAsk)
		r.Get("/api/documents/{docID}/queries", s.handleListQueries)

		r.Get("/api/jobs/{jobID}", s.handleJobStatus)
		r.Get("/api/stats/answers", s.handleAnswerStats)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
