package api

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/adboard/adboard-api/internal/api/shared"
	"github.com/adboard/adboard-api/internal/domain"
	"github.com/adboard/adboard-api/internal/store"
)

// Pagination defaults.
const (
	defaultPage    = 1
	defaultPerPage = 10
)

// ListingHandler handles advertisement CRUD, listing and search requests.
type ListingHandler struct {
	renderer *Renderer
	logger   *slog.Logger
}

// NewListingHandler creates a ListingHandler with the given renderer.
func NewListingHandler(renderer *Renderer, log *slog.Logger) *ListingHandler {
	if renderer == nil {
		panic("renderer cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}

	return &ListingHandler{
		renderer: renderer,
		logger:   log.With(slog.String("component", "listing_handler")),
	}
}

// List handles GET /advertisements: the filtered pagination window plus
// envelope totals, rendered as JSON or HTML.
func (h *ListingHandler) List(w http.ResponseWriter, r *http.Request) error {
	sess, err := requestSession(r)
	if err != nil {
		return err
	}

	page, perPage, err := parsePagination(r)
	if err != nil {
		return err
	}

	filter := store.ListingFilter{
		Offset: (page - 1) * perPage,
		Limit:  perPage,
	}
	if raw := r.URL.Query().Get("user_id"); raw != "" {
		ownerID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return NewError(http.StatusBadRequest, "user_id must be an integer")
		}
		filter.OwnerID = &ownerID
	}

	listings, total, err := sess.Listings().List(r.Context(), filter)
	if err != nil {
		return err
	}

	callerID, authenticated := shared.CallerID(r.Context())

	return h.renderer.Listings(w, r, ListingsPage{
		Advertisements: listingViews(listings, callerID, authenticated),
		Total:          total,
		Page:           page,
		PerPage:        perPage,
		Pages:          pageCount(total, perPage),
	})
}

// Get handles GET /advertisements/{id}.
func (h *ListingHandler) Get(w http.ResponseWriter, r *http.Request) error {
	sess, err := requestSession(r)
	if err != nil {
		return err
	}

	id, err := pathListingID(r)
	if err != nil {
		return err
	}

	listing, err := sess.Listings().GetByID(r.Context(), id)
	if err != nil {
		return err
	}

	callerID, authenticated := shared.CallerID(r.Context())

	return h.renderer.Listing(w, r, listingView(listing, callerID, authenticated))
}

// Create handles POST /advertisements. The authenticated caller becomes the
// owner of the new listing.
func (h *ListingHandler) Create(w http.ResponseWriter, r *http.Request) error {
	callerID, err := requireCaller(r)
	if err != nil {
		return err
	}

	sess, err := requestSession(r)
	if err != nil {
		return err
	}

	var req CreateListingRequest
	if err := decodeValid(r, &req); err != nil {
		return err
	}

	listing, err := domain.NewListing(req.Title, req.Description, callerID)
	if err != nil {
		return err
	}

	if err := sess.Listings().Create(r.Context(), listing); err != nil {
		return err
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, IDResponse{ID: listing.ID})
	return nil
}

// Update handles PATCH /advertisements/{id}. Existence is checked before
// ownership, and ownership strictly before any mutation.
func (h *ListingHandler) Update(w http.ResponseWriter, r *http.Request) error {
	callerID, err := requireCaller(r)
	if err != nil {
		return err
	}

	sess, err := requestSession(r)
	if err != nil {
		return err
	}

	id, err := pathListingID(r)
	if err != nil {
		return err
	}

	var req UpdateListingRequest
	if err := decodeValid(r, &req); err != nil {
		return err
	}

	listing, err := sess.Listings().GetByID(r.Context(), id)
	if err != nil {
		return err
	}

	if !listing.IsOwnedBy(callerID) {
		return NewError(http.StatusForbidden, "You can only edit your own advertisements")
	}

	if req.Title != nil {
		listing.Title = *req.Title
	}
	if req.Description != nil {
		listing.Description = *req.Description
	}

	if err := sess.Listings().Update(r.Context(), listing); err != nil {
		return err
	}

	shared.RespondWithJSON(w, r, http.StatusOK, IDResponse{ID: listing.ID})
	return nil
}

// Delete handles DELETE /advertisements/{id}. Responds 204 with an empty
// body on success.
func (h *ListingHandler) Delete(w http.ResponseWriter, r *http.Request) error {
	callerID, err := requireCaller(r)
	if err != nil {
		return err
	}

	sess, err := requestSession(r)
	if err != nil {
		return err
	}

	id, err := pathListingID(r)
	if err != nil {
		return err
	}

	listing, err := sess.Listings().GetByID(r.Context(), id)
	if err != nil {
		return err
	}

	if !listing.IsOwnedBy(callerID) {
		return NewError(http.StatusForbidden, "You can only delete your own advertisements")
	}

	if err := sess.Listings().Delete(r.Context(), listing.ID); err != nil {
		return err
	}

	w.WriteHeader(http.StatusNoContent)
	return nil
}

// Search handles GET /advertisements/search?q=. The full match set is
// returned with a count; no pagination is applied.
func (h *ListingHandler) Search(w http.ResponseWriter, r *http.Request) error {
	sess, err := requestSession(r)
	if err != nil {
		return err
	}

	query := r.URL.Query().Get("q")
	if query == "" {
		return NewError(http.StatusBadRequest, "search query is required")
	}

	listings, err := sess.Listings().Search(r.Context(), query)
	if err != nil {
		return err
	}

	callerID, authenticated := shared.CallerID(r.Context())

	return h.renderer.Search(w, r, SearchPage{
		Query:   query,
		Results: listingViews(listings, callerID, authenticated),
		Count:   len(listings),
	})
}

// parsePagination reads page/per_page query parameters with their defaults.
// Non-integer values are a client error; non-positive values fall back to
// the defaults.
func parsePagination(r *http.Request) (page, perPage int, err error) {
	page, perPage = defaultPage, defaultPerPage

	if raw := r.URL.Query().Get("page"); raw != "" {
		page, err = strconv.Atoi(raw)
		if err != nil {
			return 0, 0, NewError(http.StatusBadRequest, "page and per_page must be integers")
		}
	}
	if raw := r.URL.Query().Get("per_page"); raw != "" {
		perPage, err = strconv.Atoi(raw)
		if err != nil {
			return 0, 0, NewError(http.StatusBadRequest, "page and per_page must be integers")
		}
	}

	if page < 1 {
		page = defaultPage
	}
	if perPage < 1 {
		perPage = defaultPerPage
	}
	return page, perPage, nil
}

// pageCount computes ceil(total/perPage).
func pageCount(total, perPage int) int {
	if perPage <= 0 {
		return 0
	}
	return (total + perPage - 1) / perPage
}

// pathListingID extracts the advertisement ID from the URL path. The route
// pattern restricts it to digits, so a parse failure means the path cannot
// name an existing listing.
func pathListingID(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 1 {
		return 0, store.ErrListingNotFound
	}
	return id, nil
}
