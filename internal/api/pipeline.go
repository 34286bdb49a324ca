package api

import (
	"bytes"
	"log/slog"
	"net/http"
	"strings"

	"github.com/adboard/adboard-api/internal/api/shared"
	"github.com/adboard/adboard-api/internal/platform/logger"
	"github.com/adboard/adboard-api/internal/service/auth"
	"github.com/adboard/adboard-api/internal/store"
)

// HandlerFunc is an HTTP handler that reports failures as errors instead
// of writing error bodies itself. The pipeline owns the translation of
// those errors to the wire contract.
type HandlerFunc func(w http.ResponseWriter, r *http.Request) error

// Pipeline adapts HandlerFuncs into http.HandlerFuncs, running each request
// through the same sequence: acquire a persistence session, resolve the
// caller identity, dispatch the handler, then commit-or-rollback and either
// flush the buffered success response or translate the failure. The session
// is finished on every exit path, including panics.
type Pipeline struct {
	sessions store.SessionFactory
	tokens   auth.TokenService
	logger   *slog.Logger
}

// NewPipeline creates a Pipeline with the given dependencies.
func NewPipeline(
	sessions store.SessionFactory,
	tokens auth.TokenService,
	log *slog.Logger,
) *Pipeline {
	if log == nil {
		log = slog.Default()
	}

	return &Pipeline{
		sessions: sessions,
		tokens:   tokens,
		logger:   log.With(slog.String("component", "pipeline")),
	}
}

// Handle wraps a HandlerFunc into an http.HandlerFunc.
//
// The handler's output is buffered so that nothing reaches the client
// before the session commits: a commit-time integrity violation still
// becomes a clean 409 instead of trailing garbage after a 2xx.
func (p *Pipeline) Handle(h HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromContextOrDefault(r.Context(), p.logger)

		sess, err := p.sessions.Begin(r.Context())
		if err != nil {
			log.Error("failed to open persistence session", "error", err.Error())
			shared.RespondWithError(w, r, http.StatusInternalServerError,
				"failed to open database session")
			return
		}
		// Rollback is a no-op once the session has committed. The deferred
		// call covers every other exit path, panics included; a dropped
		// connection mid-request therefore never leaves a partial commit.
		defer func() {
			if rbErr := sess.Rollback(); rbErr != nil {
				log.Error("failed to roll back session", "error", rbErr.Error())
			}
		}()

		ctx := shared.WithSession(r.Context(), sess)

		callerID, authenticated, err := p.resolveCaller(r)
		if err != nil {
			translateError(w, r, err)
			return
		}
		if authenticated {
			ctx = shared.WithCallerID(ctx, callerID)
		}

		buf := newResponseBuffer()
		if err := h(buf, r.WithContext(ctx)); err != nil {
			translateError(w, r, err)
			return
		}

		if err := sess.Commit(); err != nil {
			translateError(w, r, err)
			return
		}

		buf.flushTo(w)
	}
}

// resolveCaller reads the Authorization header and derives the caller
// identity. An absent or non-Bearer header is the anonymous outcome, not an
// error; read endpoints use it permissively and write handlers enforce
// authentication themselves. A present bearer token that fails verification
// is a hard authentication error.
func (p *Pipeline) resolveCaller(r *http.Request) (int64, bool, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return 0, false, nil
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return 0, false, nil
	}

	claims, err := p.tokens.Verify(r.Context(), parts[1])
	if err != nil {
		return 0, false, err
	}

	return claims.UserID, true, nil
}

// requireCaller returns the resolved caller's user ID, or the
// authentication-required error when the request is anonymous. Mutating
// handlers call this as their first step.
func requireCaller(r *http.Request) (int64, error) {
	callerID, ok := shared.CallerID(r.Context())
	if !ok {
		return 0, NewError(http.StatusUnauthorized, "Authorization required")
	}
	return callerID, nil
}

// requestSession returns the persistence session attached by the pipeline.
func requestSession(r *http.Request) (store.Session, error) {
	sess, ok := shared.SessionFromContext(r.Context())
	if !ok {
		return nil, NewError(http.StatusInternalServerError, "no database session")
	}
	return sess, nil
}

// responseBuffer is an http.ResponseWriter that holds the response in
// memory until the pipeline decides the request has succeeded.
type responseBuffer struct {
	header http.Header
	status int
	body   bytes.Buffer
}

func newResponseBuffer() *responseBuffer {
	return &responseBuffer{header: make(http.Header)}
}

func (b *responseBuffer) Header() http.Header {
	return b.header
}

func (b *responseBuffer) WriteHeader(status int) {
	if b.status == 0 {
		b.status = status
	}
}

func (b *responseBuffer) Write(p []byte) (int, error) {
	if b.status == 0 {
		b.status = http.StatusOK
	}
	return b.body.Write(p)
}

// flushTo writes the buffered response to the real ResponseWriter.
func (b *responseBuffer) flushTo(w http.ResponseWriter) {
	for key, values := range b.header {
		for _, v := range values {
			w.Header().Add(key, v)
		}
	}
	status := b.status
	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)
	if b.body.Len() > 0 {
		if _, err := w.Write(b.body.Bytes()); err != nil {
			slog.Error("failed to flush buffered response", "error", err)
		}
	}
}
