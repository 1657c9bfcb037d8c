package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"

	"cinema-reservation/internal/handler/httperr"
	"cinema-reservation/internal/infra/lock"
	"cinema-reservation/internal/infra/metrics"
	"cinema-reservation/internal/pkg/errs"

	"github.com/gin-gonic/gin"
)

var ErrDuplicateRequest = errs.New("duplicate request detected")

// maxDebounceBodyBytes caps what the fingerprint reads off a mutating request.
const maxDebounceBodyBytes = 64 << 10

type DebounceLocker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (*lock.Lock, error)
}

type Debouncer struct {
	locker  DebounceLocker
	window  time.Duration
	metrics *metrics.Metrics
	logger  *slog.Logger
}

func NewDebouncer(locker DebounceLocker, window time.Duration, m *metrics.Metrics, logger *slog.Logger) *Debouncer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Debouncer{
		locker:  locker,
		window:  window,
		metrics: m,
		logger:  logger,
	}
}

// Middleware rejects a mutating request whose fingerprint was already seen
// within the window. The debounce key is never released; its TTL is the window.
// If the lock store is down the request passes through.
func (d *Debouncer) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !isMutating(c.Request.Method) {
			c.Next()
			return
		}

		body, err := readBody(c)
		if err != nil {
			var tooLarge *http.MaxBytesError
			if errs.As(err, &tooLarge) {
				httperr.AbortWithError(c, http.StatusRequestEntityTooLarge, err, "Request body too large", nil)
				return
			}
			httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request body", nil)
			return
		}

		identity := requestIdentity(c, body)
		key := lock.DebounceKey(Fingerprint(identity, c.Request.Method, c.Request.URL.RequestURI(), body))

		_, err = d.locker.Acquire(c.Request.Context(), key, d.window)
		switch {
		case err == nil:
			c.Next()
		case errs.Is(err, lock.ErrLockBusy):
			d.metrics.DuplicateRequest()
			d.logger.Warn("duplicate request detected",
				"identity", identity,
				"method", c.Request.Method,
				"path", c.Request.URL.Path,
				"request_id", GetRequestID(c))
			httperr.AbortWithError(c, http.StatusConflict, ErrDuplicateRequest,
				"Duplicate request detected. Please wait a moment before retrying.", nil)
		default:
			d.logger.Warn("debounce check skipped: lock store unavailable",
				"path", c.Request.URL.Path,
				"error", err.Error())
			c.Next()
		}
	}
}

// Fingerprint hashes the caller and the request. JSON bodies are compacted
// first so whitespace differences do not defeat the check.
func Fingerprint(identity, method, uri string, body []byte) string {
	payload := body
	if len(bytes.TrimSpace(body)) == 0 {
		payload = []byte("{}")
	} else {
		var compacted bytes.Buffer
		if err := json.Compact(&compacted, body); err == nil {
			payload = compacted.Bytes()
		}
	}

	h := sha256.New()
	h.Write([]byte(identity + ":" + method + ":" + uri + ":"))
	h.Write(payload)
	return hex.EncodeToString(h.Sum(nil))
}

func isMutating(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	default:
		return false
	}
}

// readBody drains at most maxDebounceBodyBytes of the request body and puts
// an identical reader back for binding.
func readBody(c *gin.Context) ([]byte, error) {
	if c.Request.Body == nil {
		return nil, nil
	}
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxDebounceBodyBytes))
	if err != nil {
		return nil, err
	}
	c.Request.Body = io.NopCloser(bytes.NewReader(body))
	return body, nil
}

// requestIdentity prefers the body's userId, then the X-User-ID header, then
// the client IP.
func requestIdentity(c *gin.Context, body []byte) string {
	var payload struct {
		UserID string `json:"userId"`
	}
	if len(body) > 0 && json.Unmarshal(body, &payload) == nil && payload.UserID != "" {
		return payload.UserID
	}
	if userID := c.GetHeader(HeaderUserID); userID != "" {
		return userID
	}
	return c.ClientIP()
}
