package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/adboard/adboard-api/internal/platform/logger"
	"github.com/adboard/adboard-api/internal/store"
)

// SessionFactory implements store.SessionFactory by opening one database
// transaction per session. Concurrency control is delegated entirely to
// PostgreSQL's transaction isolation; the application takes no locks.
type SessionFactory struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewSessionFactory creates a SessionFactory over the given connection
// pool. If logger is nil, the default logger is used.
func NewSessionFactory(db *sql.DB, log *slog.Logger) *SessionFactory {
	if db == nil {
		panic("db cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}

	return &SessionFactory{
		db:     db,
		logger: log.With(slog.String("component", "session_factory")),
	}
}

// Ensure SessionFactory implements store.SessionFactory.
var _ store.SessionFactory = (*SessionFactory)(nil)

// Begin implements store.SessionFactory.Begin. Pool exhaustion or a broken
// connection surfaces here and fails the whole request.
func (f *SessionFactory) Begin(ctx context.Context) (store.Session, error) {
	log := logger.FromContextOrDefault(ctx, f.logger)

	tx, err := f.db.BeginTx(ctx, nil)
	if err != nil {
		log.Error("failed to begin transaction", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}

	return &session{
		tx:       tx,
		users:    NewUserStore(tx, f.logger),
		listings: NewListingStore(tx, f.logger),
		logger:   log,
	}, nil
}

// session binds the stores to a single transaction.
type session struct {
	tx       *sql.Tx
	users    store.UserStore
	listings store.ListingStore
	logger   *slog.Logger
}

var _ store.Session = (*session)(nil)

func (s *session) Users() store.UserStore {
	return s.users
}

func (s *session) Listings() store.ListingStore {
	return s.listings
}

// Commit implements store.Session.Commit. Deferred integrity violations are
// mapped onto the store sentinels so the pipeline can translate them.
func (s *session) Commit() error {
	if err := s.tx.Commit(); err != nil {
		s.logger.Error("failed to commit transaction", slog.String("error", err.Error()))
		return MapError(err)
	}
	return nil
}

// Rollback implements store.Session.Rollback. Calling it after Commit is a
// no-op so the pipeline can always defer it.
func (s *session) Rollback() error {
	if err := s.tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		s.logger.Error("failed to roll back transaction", slog.String("error", err.Error()))
		return err
	}
	return nil
}
