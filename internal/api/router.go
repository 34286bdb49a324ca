package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/adboard/adboard-api/internal/api/middleware"
)

// NewRouter assembles the application router: standard chi middleware,
// trace IDs, and every endpoint wired through the request pipeline.
func NewRouter(
	pipeline *Pipeline,
	authHandler *AuthHandler,
	listingHandler *ListingHandler,
	renderer *Renderer,
) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.Trace)

	r.Get("/", renderer.Index)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	r.Post("/register", pipeline.Handle(authHandler.Register))
	r.Post("/login", pipeline.Handle(authHandler.Login))

	r.Route("/advertisements", func(r chi.Router) {
		r.Get("/", pipeline.Handle(listingHandler.List))
		r.Post("/", pipeline.Handle(listingHandler.Create))
		r.Get("/search", pipeline.Handle(listingHandler.Search))
		r.Get("/{id:[0-9]+}", pipeline.Handle(listingHandler.Get))
		r.Patch("/{id:[0-9]+}", pipeline.Handle(listingHandler.Update))
		r.Delete("/{id:[0-9]+}", pipeline.Handle(listingHandler.Delete))
	})

	return r
}
