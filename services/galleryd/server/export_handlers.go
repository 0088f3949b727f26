package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	coreerrors "mosaicchain/core/errors"
	"mosaicchain/integrations/exports"
)

const (
	defaultEventPage = 100
	maxEventPage     = 1000
)

func community(r *http.Request) string {
	return strings.ToUpper(strings.TrimSpace(chi.URLParam(r, "symbol")))
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	if s.journal == nil {
		writeError(w, http.StatusNotImplemented, "journal disabled")
		return
	}
	q := r.URL.Query()
	var after int64
	if raw := q.Get("after"); raw != "" {
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || v < 0 {
			s.fail(w, r, fmt.Errorf("%w: invalid after", coreerrors.ErrValidation))
			return
		}
		after = v
	}
	limit := defaultEventPage
	if raw := q.Get("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v <= 0 {
			s.fail(w, r, fmt.Errorf("%w: invalid limit", coreerrors.ErrValidation))
			return
		}
		limit = v
	}
	if limit > maxEventPage {
		limit = maxEventPage
	}
	rows, err := s.journal.Events(r.Context(), community(r), after, limit)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	type eventView struct {
		Seq        int64           `json:"seq"`
		Type       string          `json:"type"`
		Attributes json.RawMessage `json:"attributes"`
		CreatedAt  string          `json:"created_at"`
	}
	out := make([]eventView, 0, len(rows))
	for _, row := range rows {
		attrs := row.Attributes
		if attrs == "" {
			attrs = "{}"
		}
		out = append(out, eventView{
			Seq:        row.Seq,
			Type:       row.Type,
			Attributes: json.RawMessage(attrs),
			CreatedAt:  row.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"events": out})
}

func (s *Server) tickRows(w http.ResponseWriter, r *http.Request) ([]exports.TickRow, bool) {
	if s.journal == nil {
		writeError(w, http.StatusNotImplemented, "journal disabled")
		return nil, false
	}
	rows, err := s.journal.Ticks(r.Context(), community(r))
	if err != nil {
		s.fail(w, r, err)
		return nil, false
	}
	return rows, true
}

func (s *Server) handleTicksCSV(w http.ResponseWriter, r *http.Request) {
	rows, ok := s.tickRows(w, r)
	if !ok {
		return
	}
	data, checksum, err := exports.TicksCSV(rows)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeExport(w, "text/csv", community(r)+"-ticks.csv", checksum, data)
}

func (s *Server) handleTicksJSONL(w http.ResponseWriter, r *http.Request) {
	rows, ok := s.tickRows(w, r)
	if !ok {
		return
	}
	data, checksum, err := exports.TicksJSONL(rows)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeExport(w, "application/x-ndjson", community(r)+"-ticks.jsonl", checksum, data)
}

func (s *Server) handleTicksParquet(w http.ResponseWriter, r *http.Request) {
	rows, ok := s.tickRows(w, r)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := exports.TicksParquet(&buf, rows); err != nil {
		s.fail(w, r, err)
		return
	}
	writeExport(w, "application/vnd.apache.parquet", community(r)+"-ticks.parquet", "", buf.Bytes())
}

func writeExport(w http.ResponseWriter, contentType, filename, checksum string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	if checksum != "" {
		w.Header().Set("X-Checksum-SHA256", checksum)
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
