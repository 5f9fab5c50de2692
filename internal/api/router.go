package api

import (
	"github.com/go-chi/chi/v5"

	"github.com/starford/bookindex/internal/indexservice"
	"github.com/starford/bookindex/internal/sse"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// events, if non-nil, is mounted at GET /events and receives rebuild results.
func NewRouter(svc *indexservice.Service, authEnabled bool, token string, events *sse.Broker) chi.Router {
	h := NewHandler(svc, events)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	r.Get("/markers/{kind}", h.ListMarkers)
	r.Get("/markers/{kind}/{name}", h.GetMarker)

	r.Get("/chapters", h.ListChapters)
	r.Get("/chapters/*", h.GetChapter)
	r.Get("/pages/*", h.GetPage)

	r.Get("/status", h.Status)
	r.Post("/rebuild", h.Rebuild)

	if events != nil {
		r.Get("/events", events.ServeHTTP)
	}

	return r
}
