package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"video_digest/internal/domain"
)

type errorBody struct {
	Message string `json:"message"`
	Code    string `json:"code"`
}

type envelope struct {
	Data  any        `json:"data,omitempty"`
	Error *errorBody `json:"error,omitempty"`
}

func (s *Server) respond(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(envelope{Data: data}); err != nil {
		s.logger.Error("write response failed", "error", err)
	}
}

// respondError maps the error's kind to an HTTP status. Uncategorized errors
// are masked as a generic 500 so internals never leak to the caller.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	body := errorBody{Message: "internal error", Code: string(domain.KindInternal)}

	var de *domain.Error
	if errors.As(err, &de) {
		status = de.HTTPStatus()
		body = errorBody{Message: de.Message, Code: de.Code}
	}

	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	} else {
		s.logger.Info("request rejected", "method", r.Method, "path", r.URL.Path, "status", status, "error", err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(envelope{Error: &body}); err != nil {
		s.logger.Error("write response failed", "error", err)
	}
}
