package store

import "context"

// Session is one request-scoped unit of work over the stores. All reads and
// writes performed through it share a single database transaction, which is
// finished exactly once with Commit or Rollback.
type Session interface {
	// Users returns a UserStore bound to this session's transaction.
	Users() UserStore

	// Listings returns a ListingStore bound to this session's transaction.
	Listings() ListingStore

	// Commit makes the session's writes durable.
	// Integrity violations surface here as ErrDuplicate-class errors.
	Commit() error

	// Rollback discards the session's writes. Safe to call after Commit;
	// the second finish is a no-op.
	Rollback() error
}

// SessionFactory opens persistence sessions. The request pipeline acquires
// exactly one session per inbound request and guarantees it is finished on
// every exit path.
type SessionFactory interface {
	Begin(ctx context.Context) (Session, error)
}
