package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/adboard/adboard-api/internal/domain"
	"github.com/adboard/adboard-api/internal/platform/logger"
	"github.com/adboard/adboard-api/internal/store"
)

// ListingStore implements the store.ListingStore interface using a
// PostgreSQL database as the storage backend.
type ListingStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewListingStore creates a PostgreSQL implementation of the ListingStore
// interface. It accepts a database connection or transaction managed by
// the caller. If logger is nil, the default logger is used.
func NewListingStore(db store.DBTX, log *slog.Logger) *ListingStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}

	return &ListingStore{
		db:     db,
		logger: log.With(slog.String("component", "listing_store")),
	}
}

// Ensure ListingStore implements store.ListingStore.
var _ store.ListingStore = (*ListingStore)(nil)

// Create implements store.ListingStore.Create.
func (s *ListingStore) Create(ctx context.Context, listing *domain.Listing) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := listing.Validate(); err != nil {
		log.Warn("listing validation failed during create",
			slog.String("error", err.Error()))
		return err
	}

	query := `
		INSERT INTO advertisements (title, description, user_id)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`
	err := s.db.QueryRowContext(ctx, query, listing.Title, listing.Description, listing.UserID).
		Scan(&listing.ID, &listing.CreatedAt)

	if err != nil {
		if IsForeignKeyViolation(err) {
			log.Warn("foreign key violation during listing create",
				slog.Int64("user_id", listing.UserID))
			return fmt.Errorf("%w: user with ID %d not found",
				store.ErrInvalidEntity, listing.UserID)
		}
		log.Error("failed to create listing",
			slog.String("error", err.Error()),
			slog.Int64("user_id", listing.UserID))
		return MapError(err)
	}

	log.Info("listing created",
		slog.Int64("listing_id", listing.ID),
		slog.Int64("user_id", listing.UserID))
	return nil
}

// GetByID implements store.ListingStore.GetByID.
func (s *ListingStore) GetByID(ctx context.Context, id int64) (*domain.Listing, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, title, description, user_id, created_at
		FROM advertisements
		WHERE id = $1
	`

	var listing domain.Listing
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&listing.ID,
		&listing.Title,
		&listing.Description,
		&listing.UserID,
		&listing.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrListingNotFound
		}
		log.Error("failed to get listing by ID",
			slog.String("error", err.Error()),
			slog.Int64("listing_id", id))
		return nil, MapError(err)
	}

	return &listing, nil
}

// Update implements store.ListingStore.Update. Only title and description
// are written; owner and creation timestamp are immutable.
func (s *ListingStore) Update(ctx context.Context, listing *domain.Listing) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := listing.Validate(); err != nil {
		log.Warn("listing validation failed during update",
			slog.String("error", err.Error()),
			slog.Int64("listing_id", listing.ID))
		return err
	}

	query := `
		UPDATE advertisements
		SET title = $1, description = $2
		WHERE id = $3
	`
	result, err := s.db.ExecContext(ctx, query, listing.Title, listing.Description, listing.ID)
	if err != nil {
		log.Error("failed to update listing",
			slog.String("error", err.Error()),
			slog.Int64("listing_id", listing.ID))
		return MapError(err)
	}

	return CheckRowsAffected(result, store.ErrListingNotFound)
}

// Delete implements store.ListingStore.Delete.
func (s *ListingStore) Delete(ctx context.Context, id int64) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, `DELETE FROM advertisements WHERE id = $1`, id)
	if err != nil {
		log.Error("failed to delete listing",
			slog.String("error", err.Error()),
			slog.Int64("listing_id", id))
		return MapError(err)
	}

	if err := CheckRowsAffected(result, store.ErrListingNotFound); err != nil {
		return err
	}

	log.Info("listing deleted", slog.Int64("listing_id", id))
	return nil
}

// List implements store.ListingStore.List. The total is counted over the
// full filtered set before the pagination window is applied. Ordering is
// newest first with identifier as the tie-break so windows never drift.
func (s *ListingStore) List(
	ctx context.Context,
	filter store.ListingFilter,
) ([]*domain.Listing, int, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	where := ""
	countArgs := []any{}
	if filter.OwnerID != nil {
		where = "WHERE user_id = $1"
		countArgs = append(countArgs, *filter.OwnerID)
	}

	var total int
	countQuery := fmt.Sprintf(`SELECT count(*) FROM advertisements %s`, where)
	if err := s.db.QueryRowContext(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		log.Error("failed to count listings", slog.String("error", err.Error()))
		return nil, 0, MapError(err)
	}

	args := append([]any{}, countArgs...)
	query := fmt.Sprintf(`
		SELECT id, title, description, user_id, created_at
		FROM advertisements
		%s
		ORDER BY created_at DESC, id DESC
		LIMIT $%d OFFSET $%d
	`, where, len(args)+1, len(args)+2)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to list listings", slog.String("error", err.Error()))
		return nil, 0, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	listings, err := scanListings(rows)
	if err != nil {
		log.Error("failed to scan listings", slog.String("error", err.Error()))
		return nil, 0, MapError(err)
	}

	return listings, total, nil
}

// Search implements store.ListingStore.Search using a case-insensitive
// substring match over title and description.
func (s *ListingStore) Search(ctx context.Context, query string) ([]*domain.Listing, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	pattern := "%" + escapeLikePattern(query) + "%"
	sqlQuery := `
		SELECT id, title, description, user_id, created_at
		FROM advertisements
		WHERE title ILIKE $1 ESCAPE '\' OR description ILIKE $1 ESCAPE '\'
		ORDER BY created_at DESC, id DESC
	`

	rows, err := s.db.QueryContext(ctx, sqlQuery, pattern)
	if err != nil {
		log.Error("failed to search listings",
			slog.String("error", err.Error()),
			slog.String("query", query))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	listings, err := scanListings(rows)
	if err != nil {
		log.Error("failed to scan search results", slog.String("error", err.Error()))
		return nil, MapError(err)
	}

	return listings, nil
}

// scanListings reads all rows into listing entities.
func scanListings(rows *sql.Rows) ([]*domain.Listing, error) {
	listings := []*domain.Listing{}
	for rows.Next() {
		var l domain.Listing
		if err := rows.Scan(&l.ID, &l.Title, &l.Description, &l.UserID, &l.CreatedAt); err != nil {
			return nil, err
		}
		listings = append(listings, &l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return listings, nil
}

// escapeLikePattern neutralizes LIKE metacharacters in user input so the
// search query is matched literally.
func escapeLikePattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
