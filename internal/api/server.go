package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/Kjdragan/document-writer/internal/config"
	"github.com/Kjdragan/document-writer/internal/document"
	"github.com/Kjdragan/document-writer/internal/llm"
)

// Server is the HTTP surface over the document production pipeline.
type Server struct {
	router       chi.Router
	orchestrator *Orchestrator
	store        *document.Store
	llm          *llm.Client
	log          *slog.Logger
	cfg          config.Config
}

// NewServer wires routes and middleware. The llm client is only consulted for
// its latency stats.
func NewServer(orch *Orchestrator, store *document.Store, client *llm.Client, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		orchestrator: orch,
		store:        store,
		llm:          client,
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

	// Authenticated endpoints.
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(s.cfg.DocwriterAPIKey, s.log))

		r.Post("/api/write", s.handleWrite)
		r.Get("/api/write/{jobID}/status", s.handleWriteStatus)

		r.Get("/api/documents", s.handleListDocuments)
		r.Get("/api/documents/{name}", s.handleGetDocument)

		r.Get("/api/stats/llm", s.handleLLMStats)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
