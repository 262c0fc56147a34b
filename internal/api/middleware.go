package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/proplex/proplex-admin/internal/backend"
	"github.com/proplex/proplex-admin/internal/i18n"
	"github.com/proplex/proplex-admin/internal/session"
)

// requireSession authenticates the session cookie and puts the session and
// its locale on the request context.
func (h *handler) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, err := h.sessions.FromRequest(r)
		if err != nil {
			jsonError(w, http.StatusUnauthorized, "not authenticated")
			return
		}

		locale := r.URL.Query().Get("locale")
		if !i18n.IsSupported(locale) {
			locale = sess.Locale
		}
		if !i18n.IsSupported(locale) {
			locale = h.i18n.Resolve(r, "")
		}

		ctx := session.NewContext(r.Context(), sess)
		ctx = backend.WithLang(ctx, locale)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// statusRecorder wraps http.ResponseWriter to capture the status code.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

// LoggingMiddleware logs HTTP requests with method, path, status, and duration.
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		attrs := []any{
			"method", r.Method,
			"path", r.URL.RequestURI(),
			"status", rec.status,
			"duration", time.Since(start).Round(time.Millisecond),
		}
		if rec.status >= http.StatusInternalServerError {
			slog.Error("request", attrs...)
			return
		}
		slog.Info("request", attrs...)
	})
}
