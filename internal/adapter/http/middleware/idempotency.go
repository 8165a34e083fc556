package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/cantina/internal/domain"
	"github.com/iho/cantina/internal/usecase"
)

const (
	// IdempotencyKeyHeader is the header name for idempotency keys.
	IdempotencyKeyHeader = "Idempotency-Key"
	// IdempotencyReplayHeader marks a response served from the store.
	IdempotencyReplayHeader = "X-Idempotency-Replay"

	processingMarker = "processing"
)

// cachedResponse is what gets stored for a completed request.
type cachedResponse struct {
	Status      int    `json:"status"`
	Body        []byte `json:"body"`
	RequestHash string `json:"request_hash,omitempty"`
}

// IdempotencyMiddleware replays completed responses for repeated keys.
type IdempotencyMiddleware struct {
	store  usecase.IdempotencyStore
	ttl    time.Duration
	logger zerolog.Logger
}

// NewIdempotencyMiddleware creates a new IdempotencyMiddleware.
func NewIdempotencyMiddleware(store usecase.IdempotencyStore, ttl time.Duration, logger zerolog.Logger) *IdempotencyMiddleware {
	if ttl <= 0 {
		ttl = usecase.IdempotencyKeyTTL
	}
	return &IdempotencyMiddleware{store: store, ttl: ttl, logger: logger}
}

// Wrap wraps an http.Handler with idempotency checking.
func (m *IdempotencyMiddleware) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Only apply to mutating requests
		if r.Method != http.MethodPost && r.Method != http.MethodPut {
			next.ServeHTTP(w, r)
			return
		}

		key := r.Header.Get(IdempotencyKeyHeader)
		if key == "" {
			next.ServeHTTP(w, r)
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, "failed to read request body")
			return
		}
		r.Body = io.NopCloser(bytes.NewReader(body))
		hash := hashBody(body)

		scoped := scopeKey(r, key)

		exists, stored, err := m.store.CheckAndSet(r.Context(), scoped, nil, m.ttl)
		if err != nil {
			m.logger.Error().Err(err).Str("key", key).Msg("idempotency check failed")
			writeJSONError(w, http.StatusInternalServerError, "idempotency check failed")
			return
		}

		if exists {
			m.replay(w, stored, hash)
			return
		}

		recorder := &responseRecorder{
			ResponseWriter: w,
			body:           &bytes.Buffer{},
			statusCode:     http.StatusOK,
		}
		next.ServeHTTP(recorder, r)

		// The request context may already be cancelled once the client is gone.
		ctx := context.WithoutCancel(r.Context())

		if recorder.statusCode < 200 || recorder.statusCode >= 300 {
			if err := m.store.Release(ctx, scoped); err != nil {
				m.logger.Warn().Err(err).Str("key", key).Msg("failed to release idempotency key")
			}
			return
		}

		payload, err := json.Marshal(cachedResponse{
			Status:      recorder.statusCode,
			Body:        recorder.body.Bytes(),
			RequestHash: hash,
		})
		if err == nil {
			err = m.store.Update(ctx, scoped, payload, m.ttl)
		}
		if err != nil {
			m.logger.Warn().Err(err).Str("key", key).Msg("failed to store idempotent response")
		}
	})
}

func (m *IdempotencyMiddleware) replay(w http.ResponseWriter, stored []byte, hash string) {
	if len(stored) == 0 || string(stored) == processingMarker {
		w.Header().Set("Retry-After", "1")
		writeJSONError(w, http.StatusConflict, "a request with this idempotency key is in progress")
		return
	}

	var cached cachedResponse
	if err := json.Unmarshal(stored, &cached); err != nil || cached.Status == 0 {
		// Raw bodies are served as a plain 200 replay.
		cached = cachedResponse{Status: http.StatusOK, Body: stored}
	}

	if cached.RequestHash != "" && cached.RequestHash != hash {
		writeJSONError(w, http.StatusConflict, domain.ErrIdempotencyKeyReused.Error())
		return
	}

	w.Header().Set(IdempotencyReplayHeader, "true")
	if len(cached.Body) > 0 {
		w.Header().Set("Content-Type", "application/json")
	}
	w.WriteHeader(cached.Status)
	w.Write(cached.Body)
}

// scopeKey ties a client key to the caller and the endpoint it was sent to.
func scopeKey(r *http.Request, key string) string {
	actor, _ := domain.ActorFromContext(r.Context())
	return actor.ID + ":" + r.Method + ":" + r.URL.Path + ":" + key
}

func hashBody(body []byte) string {
	sum := sha256.Sum256(body)
	return hex.EncodeToString(sum[:])
}

type responseRecorder struct {
	http.ResponseWriter
	statusCode int
	body       *bytes.Buffer
}

func (r *responseRecorder) Write(b []byte) (int, error) {
	r.body.Write(b)
	return r.ResponseWriter.Write(b)
}

func (r *responseRecorder) WriteHeader(statusCode int) {
	r.statusCode = statusCode
	r.ResponseWriter.WriteHeader(statusCode)
}
