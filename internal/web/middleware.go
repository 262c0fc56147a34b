package web

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/proplex/proplex-admin/internal/backend"
	"github.com/proplex/proplex-admin/internal/i18n"
	"github.com/proplex/proplex-admin/internal/session"
	"github.com/proplex/proplex-admin/internal/toast"
)

// visitorCookie keys toasts for browsers without a session.
const visitorCookie = "visitor"

// public validates the {locale} segment, remembers it and puts it on the
// request context for backend calls.
func (s *Server) public(h http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		locale := r.PathValue("locale")
		if !i18n.IsSupported(locale) {
			http.NotFound(w, r)
			return
		}
		if c, err := r.Cookie(i18n.CookieName); err != nil || c.Value != locale {
			http.SetCookie(w, &http.Cookie{
				Name:     i18n.CookieName,
				Value:    locale,
				Path:     "/",
				MaxAge:   365 * 24 * 60 * 60,
				SameSite: http.SameSiteLaxMode,
				Secure:   s.SecureCookies,
			})
		}
		h(w, r.WithContext(backend.WithLang(r.Context(), locale)))
	})
}

// guard is public plus a live session. Browsers without one are sent to
// the login page of their locale.
func (s *Server) guard(h http.HandlerFunc) http.Handler {
	return s.public(func(w http.ResponseWriter, r *http.Request) {
		locale := localeOf(r)
		sess, err := s.Sessions.FromRequest(r)
		if err != nil {
			if _, cerr := r.Cookie(session.CookieName); cerr == nil {
				if !errors.Is(err, session.ErrNotFound) {
					slog.Info("session cookie rejected", "error", err)
				}
				clearAuthCookie(w, s.SecureCookies)
			}
			http.Redirect(w, r, loginURL(locale, r), http.StatusSeeOther)
			return
		}

		if sess.Locale != locale {
			if err := s.Sessions.SetLocale(r.Context(), sess.ID, locale); err != nil {
				slog.Warn("failed to store session locale", "session", sess.ID, "error", err)
			}
			sess.Locale = locale
		}
		h(w, r.WithContext(session.NewContext(r.Context(), sess)))
	})
}

// localeOf returns the locale set by public.
func localeOf(r *http.Request) string {
	if l := backend.LangFrom(r.Context()); l != "" {
		return l
	}
	return i18n.English
}

// loginURL is the login page, returning to r after sign-in when r is a page view.
func loginURL(locale string, r *http.Request) string {
	u := "/" + locale + "/login"
	if r.Method == http.MethodGet {
		u += "?next=" + url.QueryEscape(r.URL.RequestURI())
	}
	return u
}

// safeNext accepts only same-site absolute paths.
func safeNext(next, fallback string) string {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.Contains(next, "\\") {
		return fallback
	}
	return next
}

// toastKey is the session id, or a visitor id for signed-out browsers.
func (s *Server) toastKey(w http.ResponseWriter, r *http.Request) string {
	if id := session.IDFromContext(r.Context()); id != "" {
		return id
	}
	if c, err := r.Cookie(visitorCookie); err == nil && c.Value != "" {
		return visitorCookie + ":" + c.Value
	}
	id := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     visitorCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   s.SecureCookies,
	})
	// Later reads in this request see the new id.
	r.AddCookie(&http.Cookie{Name: visitorCookie, Value: id})
	return visitorCookie + ":" + id
}

// notify queues a toast for the viewer of r.
func (s *Server) notify(w http.ResponseWriter, r *http.Request, kind toast.Kind, key string, args ...any) {
	s.Toasts.Push(s.toastKey(w, r), kind, s.I18n.T(localeOf(r), key, args...))
}

// sessionLost sends the browser to the login page when err is a backend
// rejection of the session token. The session itself was already dropped
// by the backend client.
func (s *Server) sessionLost(w http.ResponseWriter, r *http.Request, err error) bool {
	if !backend.IsUnauthorized(err) {
		return false
	}
	clearAuthCookie(w, s.SecureCookies)
	visitor := r.WithContext(session.NewContext(r.Context(), nil))
	s.notify(w, visitor, toast.Error, "Your session has expired, please sign in again")
	http.Redirect(w, r, loginURL(localeOf(r), r), http.StatusSeeOther)
	return true
}

// pageData builds the layout data of r.
func (s *Server) pageData(w http.ResponseWriter, r *http.Request, title string) PageData {
	locale := localeOf(r)
	tr := s.I18n.Translator(locale)
	sess := session.FromContext(r.Context())

	p := PageData{
		Title:        tr(title),
		Locale:       locale,
		Dir:          i18n.Dir(locale),
		Locales:      i18n.Locales(),
		Path:         strings.TrimPrefix(r.URL.Path, "/"+locale),
		Toasts:       s.Toasts.Drain(s.toastKey(w, r)),
		Integrations: s.Integrations,
		tr:           tr,
	}
	if p.Path == "" {
		p.Path = "/"
	}
	if sess != nil {
		user := sess.User
		p.User = &user
		p.Nav = s.nav(r, locale, tr)
	}
	return p
}

func (s *Server) nav(r *http.Request, locale string, tr func(string, ...any) string) []NavItem {
	sess := session.FromContext(r.Context())
	path := r.URL.Path

	items := []NavItem{{Title: tr("Dashboard"), URL: "/" + locale + "/", Active: path == "/"+locale+"/"}}
	for _, e := range s.Registry.Visible(sess) {
		u := entityURL(locale, e)
		items = append(items, NavItem{
			Title:  tr(e.Title),
			URL:    u,
			Active: path == u || strings.HasPrefix(path, u+"/"),
		})
	}
	profile := "/" + locale + "/profile"
	return append(items, NavItem{Title: tr("Profile"), URL: profile, Active: path == profile})
}

// renderError renders the error page with status.
func (s *Server) renderError(w http.ResponseWriter, r *http.Request, status int, message string) {
	data := s.pageData(w, r, message)
	data.Error = data.Title
	s.Templates.RenderStatus(w, status, "error.html", &data)
}

func (s *Server) notFound(w http.ResponseWriter, r *http.Request) {
	s.renderError(w, r, http.StatusNotFound, "Page not found")
}

func (s *Server) forbidden(w http.ResponseWriter, r *http.Request) {
	s.renderError(w, r, http.StatusForbidden, "You do not have access to this module")
}

// setAuthCookie stores the signed session handle.
func setAuthCookie(w http.ResponseWriter, value string, ttl time.Duration, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     session.CookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
		Secure:   secure,
	})
}

// clearAuthCookie clears the authentication cookie with consistent attributes.
func clearAuthCookie(w http.ResponseWriter, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     session.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
		Secure:   secure,
	})
}
