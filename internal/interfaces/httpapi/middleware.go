package httpapi

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"chainapi/internal/infrastructure/idempotency"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

const (
	requestIDHeader   = "X-Request-Id"
	seedHeader        = "X-Seed"
	idempotencyHeader = "Idempotency-Key"
	replayedHeader    = "Idempotent-Replayed"
)

type requestIDKey struct{}

func requestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// withRequestID reuses a caller supplied request id or assigns a new one.
func withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(requestIDHeader))
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), requestIDKey{}, id)))
	})
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		slog.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", requestIDFrom(r.Context()),
		)
	})
}

// capturingWriter keeps a copy of the response so it can be stored for replay.
type capturingWriter struct {
	http.ResponseWriter
	status int
	body   bytes.Buffer
}

func (w *capturingWriter) WriteHeader(status int) {
	if w.status == 0 {
		w.status = status
	}
	w.ResponseWriter.WriteHeader(status)
}

func (w *capturingWriter) Write(p []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	w.body.Write(p)
	return w.ResponseWriter.Write(p)
}

// idempotent runs a mutation retried with the same Idempotency-Key by the same
// signer on the same route at most once. The key is reserved before the handler
// runs; a duplicate that arrives while it runs gets 409 and a later one gets the
// stored response. Only a rejected request (4xx other than 422) frees the key,
// since anything else may already have reached the chain.
func (s *Server) idempotent(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := strings.TrimSpace(r.Header.Get(idempotencyHeader))
		if s.idempotency == nil || key == "" {
			next.ServeHTTP(w, r)
			return
		}
		signer, err := s.signers.Signer(r.Header.Get(seedHeader))
		if err != nil {
			// the handler reports the bad seed
			next.ServeHTTP(w, r)
			return
		}
		idemKey := idempotency.Key{
			Actor:          signer.Address.Hex(),
			IdempotencyKey: key,
			Endpoint:       r.Method + " " + r.URL.Path,
		}

		claim, record, err := idempotency.Acquire(r.Context(), s.idempotency, idemKey)
		if err != nil {
			slog.Warn("idempotency reserve failed", "key", key, "err", err)
			next.ServeHTTP(w, r)
			return
		}
		switch claim {
		case idempotency.Completed:
			s.metrics.OnReplay()
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set(replayedHeader, "true")
			w.WriteHeader(record.Status)
			_, _ = w.Write(record.Body)
			return
		case idempotency.InFlight:
			respondError(w, r, errRequestInProgress)
			return
		}

		cw := &capturingWriter{ResponseWriter: w}
		next.ServeHTTP(cw, r)
		if cw.status == 0 {
			cw.status = http.StatusOK
		}

		// the request context may already be cancelled once the response is written
		ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), 2*time.Second)
		defer cancel()
		if rejected(cw.status) {
			if err := idempotency.Release(ctx, s.idempotency, idemKey); err != nil {
				slog.Warn("idempotency release failed", "key", key, "err", err)
			}
			return
		}
		record = idempotency.Record{Status: cw.status, Body: bytes.TrimSpace(cw.body.Bytes())}
		if err := idempotency.Save(ctx, s.idempotency, idemKey, record); err != nil {
			slog.Warn("idempotency save failed", "key", key, "err", err)
		}
	})
}

// rejected reports a response written before any transaction was sent.
func rejected(status int) bool {
	return status >= 400 && status < 500 && status != http.StatusUnprocessableEntity
}
