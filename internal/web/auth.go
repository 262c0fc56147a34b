package web

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/proplex/proplex-admin/internal/backend"
	"github.com/proplex/proplex-admin/internal/session"
	"github.com/proplex/proplex-admin/internal/toast"
)

type loginPage struct {
	PageData
	Email string
	Next  string
}

// LoginPage handles GET /{locale}/login.
func (s *Server) LoginPage(w http.ResponseWriter, r *http.Request) {
	locale := localeOf(r)
	next := safeNext(r.URL.Query().Get("next"), "/"+locale+"/")

	if sess, err := s.Sessions.FromRequest(r); err == nil && sess != nil {
		http.Redirect(w, r, next, http.StatusSeeOther)
		return
	}

	s.Templates.Render(w, "login.html", &loginPage{
		PageData: s.pageData(w, r, "Login"),
		Next:     next,
	})
}

// LoginSubmit handles POST /{locale}/login.
func (s *Server) LoginSubmit(w http.ResponseWriter, r *http.Request) {
	locale := localeOf(r)
	email := strings.TrimSpace(r.FormValue("email"))
	password := r.FormValue("password")
	next := safeNext(r.FormValue("next"), "/"+locale+"/")

	fail := func(status int, message string) {
		data := s.pageData(w, r, "Login")
		data.Error = message
		s.Templates.RenderStatus(w, status, "login.html", &loginPage{PageData: data, Email: email, Next: next})
	}

	if !s.Limiter.Allow(clientIP(r)) {
		slog.Warn("login rate limited", "ip", clientIP(r))
		fail(http.StatusTooManyRequests, s.I18n.T(locale, "Too many login attempts, try again later"))
		return
	}

	if email == "" || password == "" {
		fail(http.StatusUnprocessableEntity, s.I18n.T(locale, "Invalid email or password"))
		return
	}

	sess, cookie, err := s.Sessions.Login(r.Context(), email, password, locale)
	if err != nil {
		status := backend.StatusOf(err)
		slog.Warn("login failed", "email", email, "status", status, "error", err)
		code, msg := http.StatusUnauthorized, backend.Message(err)
		switch {
		case status == 0 || status >= http.StatusInternalServerError:
			code, msg = http.StatusBadGateway, s.I18n.T(locale, "Something went wrong")
		case msg == "":
			msg = s.I18n.T(locale, "Invalid email or password")
		}
		fail(code, msg)
		return
	}

	setAuthCookie(w, cookie, s.Sessions.TTL(), s.SecureCookies)
	if c, err := r.Cookie(visitorCookie); err == nil && c.Value != "" {
		s.Toasts.Move(visitorCookie+":"+c.Value, sess.ID)
	}
	s.Toasts.Push(sess.ID, toast.Success, s.I18n.T(locale, "Welcome back, %s", sess.User.Name))

	slog.Info("user logged in", "user", sess.User.ID, "session", sess.ID)
	http.Redirect(w, r, next, http.StatusSeeOther)
}

// Logout handles POST /{locale}/logout.
func (s *Server) Logout(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(session.CookieName); err == nil && c.Value != "" {
		if err := s.Sessions.Logout(r.Context(), c.Value); err != nil {
			slog.Error("failed to log out", "error", err)
		}
	}
	clearAuthCookie(w, s.SecureCookies)
	s.notify(w, r, toast.Info, "You have been signed out")
	http.Redirect(w, r, "/"+localeOf(r)+"/login", http.StatusSeeOther)
}
