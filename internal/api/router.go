// Package api serves the JSON surface used by quick-view popovers.
package api

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/proplex/proplex-admin/internal/backend"
	"github.com/proplex/proplex-admin/internal/crud"
	"github.com/proplex/proplex-admin/internal/i18n"
	"github.com/proplex/proplex-admin/internal/session"
)

// Deps are the collaborators of the API router.
type Deps struct {
	Sessions *session.Service
	Backend  crud.Backend
	Registry *crud.Registry
	Cache    *crud.ListCache
	I18n     *i18n.Bundle
	// AllowedOrigins defaults to same-host development origins.
	AllowedOrigins []string
	Started        time.Time
}

type handler struct {
	sessions *session.Service
	client   crud.Backend
	registry *crud.Registry
	cache    *crud.ListCache
	i18n     *i18n.Bundle
	started  time.Time
}

// NewRouter creates the API router with all endpoints registered.
func NewRouter(d Deps) http.Handler {
	h := &handler{
		sessions: d.Sessions,
		client:   d.Backend,
		registry: d.Registry,
		cache:    d.Cache,
		i18n:     d.I18n,
		started:  d.Started,
	}
	if h.i18n == nil {
		h.i18n = i18n.New(i18n.English)
	}
	if h.started.IsZero() {
		h.started = time.Now()
	}

	origins := d.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:*", "http://127.0.0.1:*"}
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.health)

		r.Group(func(r chi.Router) {
			r.Use(h.requireSession)
			r.Get("/session", h.session)
			r.Get("/entities/{entity}", h.listEntity)
			r.Get("/entities/{entity}/{id}", h.getEntity)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		jsonError(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		jsonError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	return r
}

func (h *handler) health(w http.ResponseWriter, r *http.Request) {
	jsonResponse(w, http.StatusOK, map[string]any{
		"status": "ok",
		"uptime": time.Since(h.started).Round(time.Second).String(),
	})
}

func (h *handler) session(w http.ResponseWriter, r *http.Request) {
	jsonData(w, session.FromContext(r.Context()))
}

// entity resolves the {entity} parameter and enforces module access.
func (h *handler) entity(w http.ResponseWriter, r *http.Request) (*crud.Entity, bool) {
	e, err := h.registry.Get(chi.URLParam(r, "entity"))
	if err != nil {
		jsonError(w, http.StatusNotFound, "unknown entity")
		return nil, false
	}
	if !session.FromContext(r.Context()).HasModule(e.Module) {
		jsonError(w, http.StatusForbidden, "module not available")
		return nil, false
	}
	return e, true
}

func (h *handler) controller(r *http.Request, e *crud.Entity) *crud.Controller {
	locale := backend.LangFrom(r.Context())
	return crud.NewController(e, h.client, crud.Options{
		Cache:     h.cache,
		Scope:     session.IDFromContext(r.Context()),
		Locale:    locale,
		Translate: h.i18n.Translator(locale),
	})
}

func (h *handler) listEntity(w http.ResponseWriter, r *http.Request) {
	e, ok := h.entity(w, r)
	if !ok {
		return
	}

	ctrl := h.controller(r, e)
	if q := r.URL.Query().Get("q"); q != "" {
		ctrl.Query = url.Values{"search": {q}}
	}
	if err := ctrl.Load(r.Context()); err != nil {
		h.backendError(w, err)
		return
	}

	table := ctrl.Table()
	tr := h.i18n.Translator(backend.LangFrom(r.Context()))
	for i, header := range table.Headers {
		table.Headers[i] = tr(header)
	}
	jsonResponse(w, http.StatusOK, map[string]any{
		"data":  ctrl.Items,
		"table": table,
	})
}

func (h *handler) getEntity(w http.ResponseWriter, r *http.Request) {
	e, ok := h.entity(w, r)
	if !ok {
		return
	}

	item, err := h.controller(r, e).Item(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.backendError(w, err)
		return
	}
	jsonData(w, item)
}

func (h *handler) backendError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, crud.ErrNotFound), backend.IsNotFound(err):
		jsonError(w, http.StatusNotFound, "not found")
	case backend.IsUnauthorized(err):
		jsonError(w, http.StatusUnauthorized, "session expired")
	default:
		slog.Error("api backend call failed", "error", err)
		msg := backend.Message(err)
		if msg == "" {
			msg = "backend unavailable"
		}
		jsonError(w, http.StatusBadGateway, msg)
	}
}
