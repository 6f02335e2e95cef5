package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/xnapps/purchase-tracking/api/responses"
	pkgerrors "github.com/xnapps/purchase-tracking/pkg/errors"
	"github.com/xnapps/purchase-tracking/pkg/logger"
	pkgredis "github.com/xnapps/purchase-tracking/pkg/redis"
)

const (
	idempotencyHeader = "Idempotency-Key"
	replayedHeader    = "Idempotent-Replayed"
	createReplayTTL   = 24 * time.Hour
)

type replayRoute struct {
	method string
	path   string
	ttl    time.Duration
}

// Creating a tracking document consumes a display number and claims its source order,
// so a retried create must get the first response back. Paths have no trailing slash.
var replayRoutes = []replayRoute{
	{method: http.MethodPost, path: "/api/v1/tracking", ttl: createReplayTTL},
}

// replayedHeaders are copied from the first create response. Location points at the
// created document.
var replayedHeaders = []string{"Content-Type", "Location"}

type createReplay struct {
	Status      int               `json:"status"`
	Body        string            `json:"body"`
	Headers     map[string]string `json:"headers,omitempty"`
	RequestHash string            `json:"request_hash"`
}

// Idempotency replays the first response of a keyed tracking document create.
// Requests without an Idempotency-Key, and every request when store is nil, pass through.
func Idempotency(store pkgredis.CreateReplayStore, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			clientKey := strings.TrimSpace(r.Header.Get(idempotencyHeader))
			path := canonicalPath(r.URL.Path)
			ttl, ok := routeTTL(r.Method, path)
			if !ok || store == nil || clientKey == "" {
				next.ServeHTTP(w, r)
				return
			}

			body, err := io.ReadAll(r.Body)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read request"))
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(body))

			requestHash := hashBody(body)
			key := store.CreateReplayKey(r.Method+" "+path, clientKey)

			stored, getErr := store.Get(r.Context(), key)
			if getErr != nil && !errors.Is(getErr, redis.Nil) {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, getErr, "look up create replay"))
				return
			}
			if stored != "" {
				record, decodeErr := decodeReplay(stored)
				if decodeErr != nil {
					responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, decodeErr, "decode create replay"))
					return
				}
				if record.RequestHash != requestHash {
					responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeConflict, "idempotency key already used for a different tracking document").
						WithDetails(map[string]any{"header": idempotencyHeader}))
					return
				}
				writeReplay(w, record)
				return
			}

			rec := &responseCapture{ResponseWriter: w}
			next.ServeHTTP(rec, r)

			// a rejected create (validation, duplicate source order) may be retried
			if status := defaultStatus(rec.status); status >= http.StatusBadRequest {
				return
			}

			record := createReplay{
				Status:      defaultStatus(rec.status),
				Body:        base64.StdEncoding.EncodeToString(rec.body.Bytes()),
				RequestHash: requestHash,
			}
			for _, name := range replayedHeaders {
				if v := rec.Header().Get(name); v != "" {
					if record.Headers == nil {
						record.Headers = map[string]string{}
					}
					record.Headers[name] = v
				}
			}

			payload, marshalErr := json.Marshal(record)
			if marshalErr != nil {
				logError(r.Context(), logg, "marshal create replay", marshalErr)
				return
			}

			if _, setErr := store.SetNX(r.Context(), key, string(payload), ttl); setErr != nil {
				logError(r.Context(), logg, "store create replay", setErr)
			}
		})
	}
}

func decodeReplay(payload string) (*createReplay, error) {
	var record createReplay
	if err := json.Unmarshal([]byte(payload), &record); err != nil {
		return nil, err
	}
	return &record, nil
}

func writeReplay(w http.ResponseWriter, record *createReplay) {
	for name, v := range record.Headers {
		w.Header().Set(name, v)
	}
	w.Header().Set(replayedHeader, "true")
	w.WriteHeader(record.Status)
	if decoded, err := base64.StdEncoding.DecodeString(record.Body); err == nil {
		_, _ = w.Write(decoded)
	}
}

func hashBody(payload []byte) string {
	sum := sha256.Sum256(payload)
	return base64.StdEncoding.EncodeToString(sum[:])
}

func defaultStatus(value int) int {
	if value == 0 {
		return http.StatusOK
	}
	return value
}

// The middleware runs before the subrouter resolves its pattern, so rules match paths.
func canonicalPath(path string) string {
	if trimmed := strings.TrimRight(path, "/"); trimmed != "" {
		return trimmed
	}
	return "/"
}

func routeTTL(method, path string) (time.Duration, bool) {
	for _, rule := range replayRoutes {
		if rule.method == method && rule.path == canonicalPath(path) {
			return rule.ttl, true
		}
	}
	return 0, false
}

type responseCapture struct {
	http.ResponseWriter
	body   bytes.Buffer
	status int
}

func (r *responseCapture) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *responseCapture) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	r.body.Write(b)
	return r.ResponseWriter.Write(b)
}

func logError(ctx context.Context, logg *logger.Logger, msg string, err error) {
	if logg == nil || err == nil {
		return
	}
	logg.Error(ctx, msg, err)
}
