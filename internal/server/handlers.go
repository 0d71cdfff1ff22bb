package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/spetersoncode/ago/internal/db"
	"github.com/spetersoncode/ago/internal/errors"
	"github.com/spetersoncode/ago/internal/models"
	"github.com/spetersoncode/ago/internal/reltime"
)

// FormatResponse is the result of formatting one timestamp.
type FormatResponse struct {
	TimestampMs int64  `json:"timestamp_ms"`
	ElapsedMs   int64  `json:"elapsed_ms"`
	Text        string `json:"text"`
	JustNow     bool   `json:"just_now"`
}

// MarkResponse represents a mark in API responses.
type MarkResponse struct {
	Name        string `json:"name"`
	TimestampMs int64  `json:"timestamp_ms"`
	Note        string `json:"note,omitempty"`
	Age         string `json:"age"`
	CreatedAt   string `json:"created_at"`
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string                 `json:"error"`
	Kind    string                 `json:"kind"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError maps err's kind to a status code and writes it. Internal
// errors are logged with their cause, which is not sent to the client.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	if errors.Is(err, errors.KindInternal) {
		s.logger.Printf("internal error: %v", err)
	}

	status := errors.GetHTTPStatus(err)
	resp := ErrorResponse{
		Error:   http.StatusText(status),
		Kind:    errors.GetKind(err).String(),
		Message: err.Error(),
	}
	if e, ok := errors.As(err); ok {
		resp.Message = e.Message
		resp.Details = e.Details
	}
	writeJSON(w, status, resp)
}

// formatterFor returns the server formatter, or one pinned to the "now"
// query parameter when given.
func (s *Server) formatterFor(r *http.Request) (*reltime.Formatter, error) {
	raw := r.URL.Query().Get("now")
	if raw == "" {
		return s.formatter, nil
	}
	now, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, errors.InvalidArgs("now must be an integer millisecond timestamp, got %q", raw)
	}
	return reltime.New(reltime.FixedClock(now)), nil
}

func (s *Server) abbreviate(r *http.Request) (bool, error) {
	raw := r.URL.Query().Get("abbrev")
	if raw == "" {
		return s.config.Abbreviate, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return false, errors.InvalidArgs("abbrev must be a boolean, got %q", raw)
	}
	return b, nil
}

func (s *Server) handleFormat(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("ts")
	if raw == "" {
		s.writeError(w, errors.InvalidArgs("ts is required"))
		return
	}
	ts, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		s.writeError(w, errors.InvalidArgs("ts must be an integer millisecond timestamp, got %q", raw))
		return
	}

	f, err := s.formatterFor(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	abbrev, err := s.abbreviate(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	elapsed := f.Elapsed(ts)
	result := reltime.Classify(elapsed)
	writeJSON(w, http.StatusOK, FormatResponse{
		TimestampMs: ts,
		ElapsedMs:   elapsed,
		Text:        result.Text(abbrev),
		JustNow:     result.JustNow,
	})
}

func (s *Server) markResponse(f *reltime.Formatter, m *models.Mark, abbrev bool) MarkResponse {
	return MarkResponse{
		Name:        m.Name,
		TimestampMs: m.TimestampMs,
		Note:        m.Note,
		Age:         f.FormatTime(m.Time(), abbrev),
		CreatedAt:   m.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func (s *Server) handleListMarks(w http.ResponseWriter, r *http.Request) {
	filter := db.MarkFilter{}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			s.writeError(w, errors.InvalidArgs("limit must be a non-negative integer, got %q", raw))
			return
		}
		filter.Limit = limit
	}

	f, err := s.formatterFor(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	abbrev, err := s.abbreviate(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	marks, err := db.NewMarkRepo(s.config.DB).List(filter)
	if err != nil {
		s.writeError(w, err)
		return
	}

	resp := make([]MarkResponse, 0, len(marks))
	for _, m := range marks {
		resp = append(resp, s.markResponse(f, m, abbrev))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetMark(w http.ResponseWriter, r *http.Request) {
	f, err := s.formatterFor(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	abbrev, err := s.abbreviate(r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	m, err := db.NewMarkRepo(s.config.DB).GetByName(r.PathValue("name"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.markResponse(f, m, abbrev))
}
