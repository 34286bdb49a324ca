package api

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/adboard/adboard-api/internal/api/shared"
	"github.com/adboard/adboard-api/internal/domain"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// ListingView is the presentation shape of a listing: the fixed JSON field
// set plus the per-request is_owner flag. Password hashes and tokens never
// appear here.
type ListingView struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UserID      int64     `json:"user_id"`
	IsOwner     bool      `json:"is_owner"`
}

// ListingsPage is the collection envelope for GET /advertisements.
type ListingsPage struct {
	Advertisements []ListingView `json:"advertisements"`
	Total          int           `json:"total"`
	Page           int           `json:"page"`
	PerPage        int           `json:"per_page"`
	Pages          int           `json:"pages"`
}

// SearchPage is the envelope for GET /advertisements/search.
type SearchPage struct {
	Query   string        `json:"query"`
	Results []ListingView `json:"results"`
	Count   int           `json:"count"`
}

// listingView projects a domain listing for the given caller.
func listingView(l *domain.Listing, callerID int64, authenticated bool) ListingView {
	return ListingView{
		ID:          l.ID,
		Title:       l.Title,
		Description: l.Description,
		CreatedAt:   l.CreatedAt,
		UserID:      l.UserID,
		IsOwner:     authenticated && l.IsOwnedBy(callerID),
	}
}

// listingViews projects a slice of domain listings for the given caller.
func listingViews(listings []*domain.Listing, callerID int64, authenticated bool) []ListingView {
	views := make([]ListingView, 0, len(listings))
	for _, l := range listings {
		views = append(views, listingView(l, callerID, authenticated))
	}
	return views
}

// Renderer selects between JSON and HTML representations of the same
// result set. Format negotiation: an explicit format=html query parameter
// wins; otherwise an Accept header containing text/html and not
// application/json selects HTML; the default is JSON.
type Renderer struct {
	templates *template.Template
	logger    *slog.Logger
}

// NewRenderer parses the embedded HTML templates.
func NewRenderer(log *slog.Logger) (*Renderer, error) {
	if log == nil {
		log = slog.Default()
	}

	funcs := template.FuncMap{
		"datetime": func(t time.Time) string {
			return t.Format("02.01.2006 15:04")
		},
		"pagelist": func(pages int) []int {
			list := make([]int, 0, pages)
			for p := 1; p <= pages; p++ {
				list = append(list, p)
			}
			return list
		},
	}

	tmpl, err := template.New("").Funcs(funcs).ParseFS(templateFS, "templates/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	return &Renderer{
		templates: tmpl,
		logger:    log.With(slog.String("component", "renderer")),
	}, nil
}

// WantsHTML reports whether the request negotiated the HTML representation.
func WantsHTML(r *http.Request) bool {
	if format := strings.ToLower(r.URL.Query().Get("format")); format != "" {
		return format == "html"
	}

	accept := strings.ToLower(r.Header.Get("Accept"))
	return strings.Contains(accept, "text/html") &&
		!strings.Contains(accept, "application/json")
}

// Listings renders the collection envelope.
func (rd *Renderer) Listings(w http.ResponseWriter, r *http.Request, page ListingsPage) error {
	if WantsHTML(r) {
		return rd.renderHTML(w, "listings.tmpl", page)
	}
	shared.RespondWithJSON(w, r, http.StatusOK, page)
	return nil
}

// Listing renders a single advertisement.
func (rd *Renderer) Listing(w http.ResponseWriter, r *http.Request, view ListingView) error {
	if WantsHTML(r) {
		return rd.renderHTML(w, "listing.tmpl", view)
	}
	shared.RespondWithJSON(w, r, http.StatusOK, view)
	return nil
}

// Search renders the search envelope.
func (rd *Renderer) Search(w http.ResponseWriter, r *http.Request, page SearchPage) error {
	if WantsHTML(r) {
		return rd.renderHTML(w, "search.tmpl", page)
	}
	shared.RespondWithJSON(w, r, http.StatusOK, page)
	return nil
}

// Index serves the HTML landing page describing the API. It is a plain
// http.HandlerFunc: no session or caller identity is needed.
func (rd *Renderer) Index(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := rd.templates.ExecuteTemplate(&buf, "index.tmpl", nil); err != nil {
		rd.logger.Error("failed to render index page", "error", err.Error())
		shared.RespondWithError(w, r, http.StatusInternalServerError, "failed to render page")
		return
	}
	shared.RespondWithHTML(w, http.StatusOK, buf.Bytes())
}

// renderHTML executes the named template into a buffer first so a template
// fault becomes a translated error instead of a torn page.
func (rd *Renderer) renderHTML(w http.ResponseWriter, name string, data interface{}) error {
	var buf bytes.Buffer
	if err := rd.templates.ExecuteTemplate(&buf, name, data); err != nil {
		rd.logger.Error("failed to render template",
			"template", name,
			"error", err.Error())
		return fmt.Errorf("failed to render %s: %w", name, err)
	}
	shared.RespondWithHTML(w, http.StatusOK, buf.Bytes())
	return nil
}
