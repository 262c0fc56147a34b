package web

import (
	"net/http"

	"github.com/proplex/proplex-admin/config"
	"github.com/proplex/proplex-admin/internal/crud"
	"github.com/proplex/proplex-admin/internal/i18n"
	"github.com/proplex/proplex-admin/internal/imaging"
	"github.com/proplex/proplex-admin/internal/session"
	"github.com/proplex/proplex-admin/internal/toast"
	webembed "github.com/proplex/proplex-admin/web"
)

// Deps are the collaborators of the page handlers.
type Deps struct {
	Sessions *session.Service
	Backend  crud.Backend
	Registry *crud.Registry
	Cache    *crud.ListCache
	Toasts   *toast.Queue
	I18n     *i18n.Bundle
	Limiter  *LoginLimiter
	// Bulk records bulk outcomes, normally the metrics registry.
	Bulk         crud.BulkObserver
	Images       imaging.Options
	Integrations config.IntegrationsConfig
	// SecureCookies marks cookies Secure; enable behind TLS.
	SecureCookies bool
}

// NewRouter creates the page router: static assets and every locale-prefixed page.
func NewRouter(d Deps) (http.Handler, error) {
	templates, err := LoadTemplates()
	if err != nil {
		return nil, err
	}
	if d.Registry == nil {
		d.Registry = crud.DefaultRegistry()
	}
	if d.Toasts == nil {
		d.Toasts = toast.NewQueue(toast.DefaultTTL)
	}
	if d.I18n == nil {
		d.I18n = i18n.New(i18n.English)
	}

	s := &Server{Deps: d, Templates: templates}

	// Signed-out sessions take their cached lists and pending toasts with them.
	s.Sessions.OnAuthChange(func(ev session.Event) {
		switch ev.Kind {
		case session.EventLogout, session.EventInvalidated:
			s.Cache.InvalidateScope(ev.SessionID)
			s.Toasts.Purge(ev.SessionID)
		}
	})

	pages := http.NewServeMux()

	pages.HandleFunc("GET /{$}", s.Root)
	pages.HandleFunc("GET /{locale}", s.Root)

	// Public routes.
	pages.Handle("GET /{locale}/login", s.public(s.LoginPage))
	pages.Handle("POST /{locale}/login", s.public(s.LoginSubmit))
	pages.Handle("POST /{locale}/logout", s.public(s.Logout))

	// Authenticated routes.
	pages.Handle("GET /{locale}/{$}", s.guard(s.Dashboard))
	pages.Handle("GET /{locale}/profile", s.guard(s.ProfilePage))
	pages.Handle("POST /{locale}/profile", s.guard(s.ProfileSubmit))

	pages.Handle("GET /{locale}/"+propertyEntity+"/{id}", s.guard(s.PropertyPage))
	pages.Handle("POST /{locale}/"+propertyEntity+"/{id}/images", s.guard(s.PropertyImageUpload))
	pages.Handle("POST /{locale}/"+propertyEntity+"/{id}/images/{imageID}/delete", s.guard(s.PropertyImageDelete))
	pages.Handle("POST /{locale}/"+propertyEntity+"/{id}/floor-plans", s.guard(s.FloorPlanUpload))
	pages.Handle("POST /{locale}/"+propertyEntity+"/{id}/floor-plans/{planID}/delete", s.guard(s.FloorPlanDelete))
	pages.Handle("POST /{locale}/"+propertyEntity+"/{id}/location", s.guard(s.LocationSubmit))

	pages.Handle("GET /{locale}/{entity}", s.guard(s.EntityPage))
	pages.Handle("POST /{locale}/{entity}", s.guard(s.EntityCreateSubmit))
	pages.Handle("POST /{locale}/{entity}/bulk-delete", s.guard(s.EntityBulkDeleteSubmit))
	pages.Handle("POST /{locale}/{entity}/import", s.guard(s.EntityImportSubmit))
	pages.Handle("POST /{locale}/{entity}/{id}", s.guard(s.EntityUpdateSubmit))
	pages.Handle("POST /{locale}/{entity}/{id}/delete", s.guard(s.EntityDeleteSubmit))

	// Static assets sit beside the locale tree, so they get their own mux.
	mux := http.NewServeMux()
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.FS(webembed.StaticFS()))))
	mux.Handle("/", pages)

	return mux, nil
}

// Root handles GET / and GET /{locale} by sending the browser to its dashboard.
func (s *Server) Root(w http.ResponseWriter, r *http.Request) {
	locale := s.I18n.Resolve(r, r.PathValue("locale"))
	http.Redirect(w, r, "/"+locale+"/", http.StatusSeeOther)
}
