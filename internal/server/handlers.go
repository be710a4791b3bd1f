package server

import (
	"encoding/json"
	"net/http"

	"video_digest/internal/domain"
)

type processRequest struct {
	URL string `json:"url"`
}

type refreshRequest struct {
	VideoID string `json:"videoId"`
}

type detailedRequest struct {
	VideoID string `json:"videoId"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respond(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleProcess(w http.ResponseWriter, r *http.Request) {
	var req processRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, r, domain.Wrap(domain.KindInvalidInput, "invalid request body", err))
		return
	}
	if req.URL == "" {
		s.respondError(w, r, domain.E(domain.KindInvalidInput, "url is required"))
		return
	}

	result, err := s.service.Process(r.Context(), req.URL, userID(r.Context()))
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	s.respond(w, http.StatusOK, result)
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, r, domain.Wrap(domain.KindInvalidInput, "invalid request body", err))
		return
	}
	if req.VideoID == "" {
		s.respondError(w, r, domain.E(domain.KindInvalidInput, "videoId is required"))
		return
	}

	result, err := s.service.Refresh(r.Context(), req.VideoID, userID(r.Context()))
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	s.respond(w, http.StatusOK, result)
}

func (s *Server) handleDetailed(w http.ResponseWriter, r *http.Request) {
	var req detailedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, r, domain.Wrap(domain.KindInvalidInput, "invalid request body", err))
		return
	}
	if req.VideoID == "" {
		s.respondError(w, r, domain.E(domain.KindInvalidInput, "videoId is required"))
		return
	}

	summary, err := s.service.DetailedSummary(r.Context(), req.VideoID, userID(r.Context()))
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	s.respond(w, http.StatusOK, summary)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	entries, err := s.service.History(r.Context(), userID(r.Context()))
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if entries == nil {
		entries = []domain.HistoryEntry{}
	}

	s.respond(w, http.StatusOK, entries)
}
