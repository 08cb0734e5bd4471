package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"monu/internal/adapter/highlight"
	"monu/internal/domain"
	"monu/internal/logging"
)

type checkRequest struct {
	Text string `json:"text"`
}

// highlightRequest uses pointers so absent and null fields can be told
// apart from empty strings.
type highlightRequest struct {
	Original  *string `json:"original"`
	Corrected *string `json:"corrected"`
}

func (r highlightRequest) validate() error {
	switch {
	case r.Original == nil && r.Corrected == nil:
		return fmt.Errorf("%w: original and corrected are required", domain.ErrInvalidInput)
	case r.Original == nil:
		return fmt.Errorf("%w: original is required", domain.ErrInvalidInput)
	case r.Corrected == nil:
		return fmt.Errorf("%w: corrected is required", domain.ErrInvalidInput)
	}
	return nil
}

type highlightResponse struct {
	Highlight domain.AnnotatedSequence `json:"highlight"`
	Markup    string                   `json:"markup"`
	Stats     domain.HighlightStats    `json:"stats"`
}

type healthResponse struct {
	Status   string `json:"status"`
	Provider string `json:"provider"`
	Model    string `json:"model"`
	Uptime   string `json:"uptime"`
	Cached   *int   `json:"cached,omitempty"`
}

type historyResponse struct {
	Count   int                       `json:"count"`
	Entries []domain.CorrectionRecord `json:"entries"`
}

type clearResponse struct {
	Cleared int `json:"cleared"`
}

const defaultHistoryLimit = 20

func (s *Server) handleCheck(w http.ResponseWriter, r *http.Request) {
	var req checkRequest
	if err := s.decode(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	res, err := s.checker.Check(r.Context(), req.Text)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, http.StatusOK, res)
}

func (s *Server) handleHighlight(w http.ResponseWriter, r *http.Request) {
	var req highlightRequest
	if err := s.decode(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	if err := req.validate(); err != nil {
		respondError(w, r, err)
		return
	}

	seq, err := highlight.BuildChecked(*req.Original, *req.Corrected)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respond(w, http.StatusOK, highlightResponse{
		Highlight: seq,
		Markup:    highlight.Markup(seq),
		Stats:     highlight.Stats(seq),
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	o := s.checker.Oracle()
	resp := healthResponse{
		Status:   "ok",
		Provider: o.Provider(),
		Model:    o.ModelName(),
		Uptime:   time.Since(s.started).Round(time.Second).String(),
	}
	if s.history != nil {
		n, err := s.history.Count()
		if err != nil {
			logging.FromContext(r.Context()).Warn("failed to count cached corrections", "error", err)
		} else {
			resp.Cached = &n
		}
	}
	respond(w, http.StatusOK, resp)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	limit := defaultHistoryLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			respondError(w, r, fmt.Errorf("%w: limit must be a non-negative integer", domain.ErrInvalidInput))
			return
		}
		limit = n
	}

	recs, err := s.history.List(limit)
	if err != nil {
		respondError(w, r, fmt.Errorf("failed to list history: %w", err))
		return
	}
	n, err := s.history.Count()
	if err != nil {
		respondError(w, r, fmt.Errorf("failed to count history: %w", err))
		return
	}
	if recs == nil {
		recs = []domain.CorrectionRecord{}
	}
	respond(w, http.StatusOK, historyResponse{Count: n, Entries: recs})
}

func (s *Server) handleClearHistory(w http.ResponseWriter, r *http.Request) {
	n, err := s.history.Count()
	if err != nil {
		respondError(w, r, fmt.Errorf("failed to count history: %w", err))
		return
	}
	if err := s.history.Clear(); err != nil {
		respondError(w, r, fmt.Errorf("failed to clear history: %w", err))
		return
	}
	logging.FromContext(r.Context()).Info("history cleared", "entries", n)
	respond(w, http.StatusOK, clearResponse{Cleared: n})
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) error {
	if s.cfg.MaxBodyBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes)
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: request body must be a JSON object: %w", domain.ErrInvalidInput, err)
	}
	return nil
}
