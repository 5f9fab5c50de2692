package api

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/starford/bookindex/internal/apperr"
	"github.com/starford/bookindex/internal/indexservice"
	"github.com/starford/bookindex/internal/marker"
	"github.com/starford/bookindex/internal/sse"
)

// Handler holds API route handlers.
type Handler struct {
	svc    *indexservice.Service
	events *sse.Broker
	pages  *pageRenderer
}

// NewHandler creates a new Handler. events may be nil, in which case
// rebuilds are not broadcast.
func NewHandler(svc *indexservice.Service, events *sse.Broker) *Handler {
	return &Handler{svc: svc, events: events, pages: newPageRenderer()}
}

// chapterPath extracts the chapter path from the URL wildcard.
// Supports encoded slashes (e.g. part%2Fchapter.md).
func chapterPath(r *http.Request) string {
	raw := strings.TrimPrefix(chi.URLParam(r, "*"), "/")
	if raw == "" {
		return ""
	}
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return raw
	}
	return decoded
}

func markerKind(w http.ResponseWriter, r *http.Request) (marker.Kind, bool) {
	kind, ok := marker.ParseKind(chi.URLParam(r, "kind"))
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorBody("kind must be tag or mention"))
	}
	return kind, ok
}

// writeError maps service errors onto status codes.
func writeError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
	case errors.Is(err, apperr.ErrInvalidInput):
		writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
	default:
		slog.Error(op+" failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
	}
}

// ListMarkers handles GET /api/markers/{kind}.
//
//	@Summary		List markers of one kind with occurrence counts
//	@Tags			markers
//	@Produce		json
//	@Param			kind	path		string	true	"Marker kind"	Enums(tag, mention)
//	@Success		200		{object}	MarkerListResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/markers/{kind} [get]
func (h *Handler) ListMarkers(w http.ResponseWriter, r *http.Request) {
	kind, ok := markerKind(w, r)
	if !ok {
		return
	}
	markers, err := h.svc.Markers(r.Context(), kind)
	if err != nil {
		writeError(w, "list markers", err)
		return
	}
	writeJSON(w, http.StatusOK, MarkerListResponse{
		Kind:    kind.String(),
		Index:   h.svc.IndexPath(kind),
		Markers: markers,
	})
}

// GetMarker handles GET /api/markers/{kind}/{name}.
//
//	@Summary		List the chapters a marker occurs in
//	@Tags			markers
//	@Produce		json
//	@Param			kind	path		string	true	"Marker kind"	Enums(tag, mention)
//	@Param			name	path		string	true	"Marker name without prefix"
//	@Success		200		{object}	MarkerResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/markers/{kind}/{name} [get]
func (h *Handler) GetMarker(w http.ResponseWriter, r *http.Request) {
	kind, ok := markerKind(w, r)
	if !ok {
		return
	}
	name := chi.URLParam(r, "name")
	if decoded, err := url.PathUnescape(name); err == nil {
		name = decoded
	}
	locs, err := h.svc.Locations(r.Context(), kind, name)
	if err != nil {
		writeError(w, "get marker", err)
		return
	}
	writeJSON(w, http.StatusOK, MarkerResponse{
		Kind:      kind.String(),
		Name:      name,
		Anchor:    h.svc.IndexPath(kind) + "#" + name,
		Locations: locs,
	})
}

// ListChapters handles GET /api/chapters.
//
//	@Summary		List processed chapters in book order
//	@Tags			chapters
//	@Produce		json
//	@Success		200	{object}	ChapterListResponse
//	@Security		BearerAuth
//	@Router			/chapters [get]
func (h *Handler) ListChapters(w http.ResponseWriter, r *http.Request) {
	rows, err := h.svc.Chapters(r.Context())
	if err != nil {
		writeError(w, "list chapters", err)
		return
	}
	writeJSON(w, http.StatusOK, ChapterListResponse{Chapters: rows})
}

// GetChapter handles GET /api/chapters/*.
//
//	@Summary		Get one processed chapter with links rewritten
//	@Tags			chapters
//	@Produce		json
//	@Param			path	path		string	true	"Chapter path"
//	@Success		200		{object}	catalog.ChapterRow
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/chapters/{path} [get]
func (h *Handler) GetChapter(w http.ResponseWriter, r *http.Request) {
	path := chapterPath(r)
	if path == "" {
		h.ListChapters(w, r)
		return
	}
	ch, err := h.svc.Chapter(r.Context(), path)
	if err != nil {
		writeError(w, "get chapter", err)
		return
	}
	writeJSON(w, http.StatusOK, ch)
}

// GetPage handles GET /api/pages/*, an HTML preview of a processed chapter.
//
//	@Summary		Render a processed chapter as HTML
//	@Tags			chapters
//	@Produce		html
//	@Param			path	path	string	true	"Chapter path"
//	@Success		200
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/pages/{path} [get]
func (h *Handler) GetPage(w http.ResponseWriter, r *http.Request) {
	path := chapterPath(r)
	if path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	ch, err := h.svc.Chapter(r.Context(), path)
	if err != nil {
		writeError(w, "get page", err)
		return
	}
	page, err := h.pages.render(ch.Name, ch.Content)
	if err != nil {
		writeError(w, "render page", err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(page)
}

// Status handles GET /api/status.
//
//	@Summary		Describe the latest index run
//	@Tags			index
//	@Produce		json
//	@Success		200	{object}	catalog.Run
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/status [get]
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	run, err := h.svc.Status(r.Context())
	if err != nil {
		writeError(w, "status", err)
		return
	}
	writeJSON(w, http.StatusOK, run)
}

// Rebuild handles POST /api/rebuild.
//
//	@Summary		Rebuild the index from the source directory
//	@Tags			index
//	@Produce		json
//	@Success		200	{object}	indexservice.RebuildResult
//	@Failure		500	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/rebuild [post]
func (h *Handler) Rebuild(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.Rebuild(r.Context())
	if err != nil {
		if h.events != nil {
			h.events.PublishFailure(err)
		}
		writeError(w, "rebuild", err)
		return
	}
	if h.events != nil {
		h.events.PublishRebuild(res)
	}
	writeJSON(w, http.StatusOK, res)
}
