// Package server exposes the summarization pipeline over HTTP.
package server

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"video_digest/internal/domain"
)

// VideoProcessor is the service surface the handlers call.
type VideoProcessor interface {
	Process(ctx context.Context, rawURL, userID string) (*domain.ProcessResult, error)
	Refresh(ctx context.Context, videoID, userID string) (*domain.ProcessResult, error)
	History(ctx context.Context, userID string) ([]domain.HistoryEntry, error)
	DetailedSummary(ctx context.Context, videoID, userID string) (*domain.Summary, error)
}

type Server struct {
	router  *mux.Router
	service VideoProcessor
	apiKey  string
	logger  *slog.Logger
}

func New(service VideoProcessor, apiKey string, logger *slog.Logger) *Server {
	s := &Server{
		router:  mux.NewRouter(),
		service: service,
		apiKey:  apiKey,
		logger:  logger,
	}
	s.routes()
	return s
}

func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) routes() {
	s.router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)

	videos := s.router.PathPrefix("/videos").Subrouter()
	videos.Use(s.authMiddleware)
	videos.HandleFunc("/process", s.handleProcess).Methods(http.MethodPost)
	videos.HandleFunc("/refresh", s.handleRefresh).Methods(http.MethodPut)
	videos.HandleFunc("/detailed", s.handleDetailed).Methods(http.MethodPost)
	videos.HandleFunc("/summaries", s.handleHistory).Methods(http.MethodGet)
}
