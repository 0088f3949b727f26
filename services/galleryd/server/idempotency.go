package server

import (
	"bytes"
	"context"
	"io"
	"net/http"

	"mosaicchain/services/galleryd/journal"
)

// HeaderIdempotencyKey lets clients retry a write safely.
const HeaderIdempotencyKey = "Idempotency-Key"

// IdempotencyStore keeps responses of keyed write requests.
type IdempotencyStore interface {
	LookupIdempotency(ctx context.Context, key string) (*journal.IdempotencyKey, bool, error)
	SaveIdempotency(ctx context.Context, rec *journal.IdempotencyKey) error
}

type captureWriter struct {
	http.ResponseWriter
	buf    bytes.Buffer
	status int
}

func (c *captureWriter) WriteHeader(status int) {
	c.status = status
	c.ResponseWriter.WriteHeader(status)
}

func (c *captureWriter) Write(b []byte) (int, error) {
	c.buf.Write(b)
	return c.ResponseWriter.Write(b)
}

// idempotent replays the stored response when a caller repeats a key.
// Keys are scoped to the caller; server errors are not stored so they can
// be retried.
func (s *Server) idempotent(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Header.Get(HeaderIdempotencyKey)
		if s.idempotency == nil || key == "" || r.Method == http.MethodGet {
			next.ServeHTTP(w, r)
			return
		}
		if len(key) > 128 {
			writeError(w, http.StatusBadRequest, "idempotency key too long")
			return
		}
		scoped := caller(r) + ":" + key
		rec, ok, err := s.idempotency.LookupIdempotency(r.Context(), scoped)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		if ok {
			if rec.Method != r.Method || rec.Path != r.URL.Path {
				writeError(w, http.StatusUnprocessableEntity, "idempotency key reused for another request")
				return
			}
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("Idempotent-Replayed", "true")
			w.WriteHeader(rec.Status)
			_, _ = io.WriteString(w, rec.Response)
			return
		}

		capture := &captureWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(capture, r)
		if capture.status >= http.StatusInternalServerError {
			return
		}
		err = s.idempotency.SaveIdempotency(r.Context(), &journal.IdempotencyKey{
			Key:      scoped,
			Method:   r.Method,
			Path:     r.URL.Path,
			Status:   capture.status,
			Response: capture.buf.String(),
		})
		if err != nil {
			s.logger.Error("store idempotency key", "route", routeOf(r), "error", err)
		}
	})
}
