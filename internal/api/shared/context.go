package shared

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"encoding/hex"
	"log/slog"
	"time"

	"github.com/adboard/adboard-api/internal/store"
)

// ContextKey is the key type for request-scoped context values.
type ContextKey string

// Context keys for various values.
const (
	// CallerIDContextKey is the context key for the resolved caller's
	// user ID.
	CallerIDContextKey ContextKey = "callerID"

	// SessionContextKey is the context key for the request's persistence
	// session.
	SessionContextKey ContextKey = "session"

	// TraceIDKey is the key for the trace ID in the request context.
	TraceIDKey ContextKey = "traceID"

	// TraceIDLength is the number of bytes used to generate the trace ID.
	TraceIDLength = 16 // 32 hex characters
)

// WithCallerID returns a context carrying the resolved caller's user ID.
func WithCallerID(ctx context.Context, userID int64) context.Context {
	return context.WithValue(ctx, CallerIDContextKey, userID)
}

// CallerID retrieves the resolved caller's user ID from the context.
// The second return value is false for anonymous requests.
func CallerID(ctx context.Context) (int64, bool) {
	userID, ok := ctx.Value(CallerIDContextKey).(int64)
	if !ok || userID <= 0 {
		return 0, false
	}
	return userID, true
}

// WithSession returns a context carrying the request's persistence session.
func WithSession(ctx context.Context, sess store.Session) context.Context {
	return context.WithValue(ctx, SessionContextKey, sess)
}

// SessionFromContext retrieves the request's persistence session.
// The second return value is false when no session was attached.
func SessionFromContext(ctx context.Context) (store.Session, bool) {
	sess, ok := ctx.Value(SessionContextKey).(store.Session)
	return sess, ok
}

// SetTraceID adds a trace ID to the context.
// This is useful for correlating logs and error responses.
func SetTraceID(ctx context.Context) context.Context {
	return context.WithValue(ctx, TraceIDKey, generateTraceID())
}

// GetTraceID retrieves the trace ID from the context.
// If no trace ID exists, it returns an empty string.
func GetTraceID(ctx context.Context) string {
	traceID, ok := ctx.Value(TraceIDKey).(string)
	if !ok {
		return ""
	}
	return traceID
}

// generateTraceID creates a random trace ID for request tracking.
// Returns a 32-character hex string. If crypto/rand fails, falls back to a
// time-based value rather than a static one.
func generateTraceID() string {
	b := make([]byte, TraceIDLength)
	n, err := rand.Read(b)

	if err != nil || n != TraceIDLength {
		slog.Error("failed to generate secure random trace ID",
			"error", err,
			"bytes_read", n,
			"fallback", "time-based generation")
		return generateFallbackTraceID()
	}

	return hex.EncodeToString(b)
}

// generateFallbackTraceID creates a trace ID from timestamps when the
// crypto/rand source fails.
func generateFallbackTraceID() string {
	fallbackID := make([]byte, TraceIDLength)

	now := time.Now().UnixNano()
	binary.BigEndian.PutUint64(fallbackID[:8], uint64(now))
	binary.BigEndian.PutUint32(fallbackID[8:12], uint32(time.Now().Nanosecond()))
	binary.BigEndian.PutUint32(fallbackID[12:16], uint32(time.Now().Unix()))

	return hex.EncodeToString(fallbackID)
}
