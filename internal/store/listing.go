package store

import (
	"context"

	"github.com/adboard/adboard-api/internal/domain"
)

// ListingFilter narrows and windows a listing query. The zero value selects
// everything. The pagination window is applied after filtering, so Total in
// the result always counts the full filtered set.
type ListingFilter struct {
	// OwnerID restricts results to listings owned by the given user.
	OwnerID *int64

	// Offset and Limit define the pagination window. A Limit of zero
	// returns no rows but still reports the total.
	Offset int
	Limit  int
}

// ListingStore defines the interface for advertisement persistence.
// Result ordering is always creation time descending with identifier
// descending as the tie-break, so pagination windows never drift.
type ListingStore interface {
	// Create saves a new listing and fills in the server-assigned ID and
	// creation timestamp on the given entity. The owner must exist;
	// a dangling owner reference returns ErrInvalidEntity.
	Create(ctx context.Context, listing *domain.Listing) error

	// GetByID retrieves a listing by its unique ID.
	// Returns ErrListingNotFound if the listing does not exist.
	GetByID(ctx context.Context, id int64) (*domain.Listing, error)

	// Update rewrites the title and description of an existing listing.
	// Owner and creation timestamp are immutable and never touched.
	// Returns ErrListingNotFound if the listing does not exist.
	Update(ctx context.Context, listing *domain.Listing) error

	// Delete removes a listing by its ID.
	// Returns ErrListingNotFound if the listing does not exist.
	Delete(ctx context.Context, id int64) error

	// List returns the filtered pagination window together with the size
	// of the full filtered set. An out-of-range window yields an empty
	// slice, not an error.
	List(ctx context.Context, filter ListingFilter) ([]*domain.Listing, int, error)

	// Search returns every listing whose title or description contains the
	// query as a case-insensitive substring. No pagination is applied.
	Search(ctx context.Context, query string) ([]*domain.Listing, error)
}
