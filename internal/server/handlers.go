package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/nao1215/qrreader/internal/outcome"
	"github.com/nao1215/qrreader/internal/report"
)

const (
	defaultHistoryLimit = 20

	// maxHistoryLimit caps the limit query parameter of GET /history.
	maxHistoryLimit = 100
)

// readRequest is the body of POST /.
type readRequest struct {
	URL string `json:"url"`
}

// messageResponse is returned for requests rejected before the pipeline runs.
type messageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, messageResponse{Success: false, Message: msg})
}

// handleRead runs one read for the URL in the request body.
func (s *Server) handleRead(w http.ResponseWriter, r *http.Request) {
	logger := loggerFrom(r.Context(), s.logger)

	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)

	var req readRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeMessage(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		writeMessage(w, http.StatusBadRequest, "request body must be a JSON object with a url field")
		return
	}
	if err := validateURL(req.URL); err != nil {
		writeMessage(w, http.StatusBadRequest, err.Error())
		return
	}

	rep := s.reader.Run(r.Context(), req.URL)

	if s.history != nil {
		// Record the read even if the client has disconnected.
		ctx := context.WithoutCancel(r.Context())
		if _, err := s.history.SaveRead(ctx, rep); err != nil {
			logger.Error("failed to save read history", "url", req.URL, "error", err)
		}
	}

	writeJSON(w, outcome.HTTPStatus(rep.Outcome), outcome.Map(rep.Outcome))
}

// validateURL accepts absolute http and https URLs with a host.
func validateURL(raw string) error {
	if strings.TrimSpace(raw) == "" {
		return errors.New("url is required")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return errors.New("url is malformed")
	}
	scheme := strings.ToLower(u.Scheme)
	if (scheme != "http" && scheme != "https") || u.Host == "" {
		return errors.New("url must be an absolute http or https URL")
	}
	return nil
}

func (s *Server) handleErrors(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, outcome.Descriptions())
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// handleHistory lists the most recent reads and the overall counters.
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		writeMessage(w, http.StatusNotFound, "history is disabled")
		return
	}
	if s.authToken == "" {
		writeMessage(w, http.StatusForbidden, "history requires an auth token to be configured")
		return
	}

	limit := defaultHistoryLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeMessage(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(n, maxHistoryLimit)
	}

	logger := loggerFrom(r.Context(), s.logger)

	reads, err := s.history.ListRecent(r.Context(), limit)
	if err != nil {
		logger.Error("failed to list read history", "error", err)
		writeMessage(w, http.StatusInternalServerError, "failed to read history")
		return
	}
	stats, err := s.history.Stats(r.Context())
	if err != nil {
		logger.Error("failed to compute history stats", "error", err)
		writeMessage(w, http.StatusInternalServerError, "failed to read history")
		return
	}

	writeJSON(w, http.StatusOK, report.JSONHistory{Reads: reads, Stats: stats})
}
