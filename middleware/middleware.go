// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/cors"

	"github.com/danielhkuo/pollhub/metrics"
	"github.com/danielhkuo/pollhub/models"
	"github.com/danielhkuo/pollhub/session"
)

// SessionCookie carries the session token for browser clients
const SessionCookie = "session"

// RequestIDHeader is echoed back on every response
const RequestIDHeader = "X-Request-ID"

type ctxKey int

const (
	identityKey ctxKey = iota
	requestIDKey
)

// statusRecorder remembers the status code for the completion log
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// WithLogging wraps a handler with request logging and a request id
func WithLogging(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		reqID := r.Header.Get(RequestIDHeader)
		if reqID == "" {
			reqID = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, reqID)
		r = r.WithContext(context.WithValue(r.Context(), requestIDKey, reqID))

		// Log request
		slog.Info("request started",
			"request_id", reqID,
			"method", r.Method,
			"path", r.URL.Path,
			"remote", GetClientIP(r),
		)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next(rec, r)

		// Log completion
		duration := time.Since(start)
		slog.Info("request completed",
			"request_id", reqID,
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration_ms", duration.Milliseconds(),
		)
	}
}

// RequestID returns the id WithLogging attached to ctx
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// JSONResponse writes a JSON response
func JSONResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	err := json.NewEncoder(w).Encode(data)
	if err != nil {
		slog.Error("failed to encode JSON response", "error", err)
	}
}

// ErrorResponse writes a JSON error response
func ErrorResponse(w http.ResponseWriter, statusCode int, message string) {
	JSONResponse(w, statusCode, models.ErrorResponse{
		Error:   http.StatusText(statusCode),
		Message: message,
	})
}

// WriteError maps an error from a core component to a status code.
// Storage failures are logged and counted; the body only says something broke.
func WriteError(w http.ResponseWriter, err error) {
	var ve *models.ValidationError
	var se *models.StorageError

	switch {
	case errors.As(err, &ve):
		ErrorResponse(w, http.StatusBadRequest, ve.Error())
	case errors.Is(err, models.ErrAuth):
		ErrorResponse(w, http.StatusUnauthorized, "invalid username or password")
	case errors.Is(err, models.ErrUnauthenticated):
		ErrorResponse(w, http.StatusUnauthorized, "login required")
	case errors.Is(err, models.ErrForbidden):
		ErrorResponse(w, http.StatusForbidden, "insufficient role")
	case errors.Is(err, models.ErrNotFound):
		ErrorResponse(w, http.StatusNotFound, "not found")
	case errors.As(err, &se):
		metrics.StorageFailures.WithLabelValues(se.Op).Inc()
		slog.Error("storage failure", "op", se.Op, "error", se.Err)
		ErrorResponse(w, http.StatusInternalServerError, "internal error")
	default:
		slog.Error("unexpected error", "error", err)
		ErrorResponse(w, http.StatusInternalServerError, "internal error")
	}
}

// ParseJSONBody parses the request body into the given struct
func ParseJSONBody(r *http.Request, v interface{}) error {
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return err
	}
	return nil
}

// CORS returns middleware allowing cross-origin requests from origins.
// Credentials are allowed so the session cookie travels.
func CORS(origins []string) func(http.Handler) http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "Authorization", RequestIDHeader},
		ExposedHeaders:   []string{RequestIDHeader},
		AllowCredentials: true,
	})
	return c.Handler
}

// TokenFromRequest extracts the session token from the Authorization header
// or, failing that, the session cookie. Empty means anonymous.
func TokenFromRequest(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		if token, ok := strings.CutPrefix(h, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
	}
	if c, err := r.Cookie(SessionCookie); err == nil {
		return c.Value
	}
	return ""
}

// Resolver maps a session token to an identity
type Resolver interface {
	Resolve(ctx context.Context, token string) (models.Identity, bool, error)
}

// RequireRole gates a handler on the caller's session role. On success the
// identity is stored in the request context for IdentityFrom.
func RequireRole(res Resolver, allowed ...models.Role) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			id, ok, err := res.Resolve(r.Context(), TokenFromRequest(r))
			if err != nil {
				WriteError(w, err)
				return
			}

			var caller *models.Identity
			if ok {
				caller = &id
			}
			if err := session.RequireRole(caller, allowed...); err != nil {
				slog.Warn("access denied",
					"request_id", RequestID(r.Context()),
					"path", r.URL.Path,
					"role", id.Role,
					"error", err,
				)
				WriteError(w, err)
				return
			}

			next(w, r.WithContext(WithIdentity(r.Context(), id)))
		}
	}
}

// WithIdentity returns a copy of ctx carrying id
func WithIdentity(ctx context.Context, id models.Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// IdentityFrom returns the identity RequireRole stored in ctx
func IdentityFrom(ctx context.Context) (models.Identity, bool) {
	id, ok := ctx.Value(identityKey).(models.Identity)
	return id, ok
}

// GetClientIP extracts the client IP address
// Checks X-Forwarded-For, X-Real-IP, then falls back to RemoteAddr
func GetClientIP(r *http.Request) string {
	// Check X-Forwarded-For (load balancers)
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}

	// Check X-Real-IP (nginx)
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}

	// Strip port if present
	addr := r.RemoteAddr
	if i := strings.LastIndexByte(addr, ':'); i >= 0 {
		return addr[:i]
	}
	return addr
}
