package web

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"strings"

	"github.com/proplex/proplex-admin/config"
	"github.com/proplex/proplex-admin/internal/crud"
	"github.com/proplex/proplex-admin/internal/i18n"
	"github.com/proplex/proplex-admin/internal/model"
	"github.com/proplex/proplex-admin/internal/toast"
	webembed "github.com/proplex/proplex-admin/web"
)

// Templates holds parsed HTML templates.
type Templates struct {
	templates map[string]*template.Template
}

// FuncMap returns the template function map.
func FuncMap() template.FuncMap {
	return template.FuncMap{
		"dir":   i18n.Dir,
		"upper": strings.ToUpper,
		"localeName": func(locale string) string {
			switch locale {
			case i18n.Arabic:
				return "العربية"
			case i18n.English:
				return "English"
			default:
				return locale
			}
		},
		"toastClass": func(k toast.Kind) string {
			return "toast toast-" + string(k)
		},
	}
}

var pages = []string{
	"login.html",
	"dashboard.html",
	"entity.html",
	"property.html",
	"profile.html",
	"error.html",
}

// LoadTemplates parses all page templates with the layout.
func LoadTemplates() (*Templates, error) {
	tfs := webembed.TemplatesFS()

	layoutBytes, err := fs.ReadFile(tfs, "layout.html")
	if err != nil {
		return nil, fmt.Errorf("reading layout template: %w", err)
	}

	ts := &Templates{templates: make(map[string]*template.Template)}

	for _, page := range pages {
		pageBytes, err := fs.ReadFile(tfs, page)
		if err != nil {
			return nil, fmt.Errorf("reading template %s: %w", page, err)
		}

		tmpl := template.New(page).Funcs(FuncMap())
		tmpl, err = tmpl.Parse(string(layoutBytes))
		if err != nil {
			return nil, fmt.Errorf("parsing layout for %s: %w", page, err)
		}
		tmpl, err = tmpl.Parse(string(pageBytes))
		if err != nil {
			return nil, fmt.Errorf("parsing template %s: %w", page, err)
		}

		ts.templates[page] = tmpl
	}

	return ts, nil
}

// Render renders a template with the given data and a 200 status.
func (ts *Templates) Render(w http.ResponseWriter, name string, data any) {
	ts.RenderStatus(w, http.StatusOK, name, data)
}

// RenderStatus renders a template with the given data and status.
func (ts *Templates) RenderStatus(w http.ResponseWriter, status int, name string, data any) {
	tmpl, ok := ts.templates[name]
	if !ok {
		http.Error(w, "template not found", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", data); err != nil {
		slog.Error("failed to render template", "template", name, "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		slog.Error("failed to write page", "template", name, "error", err)
	}
}

// NavItem is one sidebar link.
type NavItem struct {
	Title  string
	URL    string
	Active bool
}

// PageData is the base data passed to all templates.
type PageData struct {
	Title   string
	Locale  string
	Dir     string
	Locales []string
	// Path is the request path without its locale prefix.
	Path         string
	User         *model.User
	Nav          []NavItem
	Toasts       []toast.Toast
	Integrations config.IntegrationsConfig
	Error        string

	tr func(key string, args ...any) string
}

// T translates key into the page locale.
func (p PageData) T(key string, args ...any) string {
	if p.tr == nil {
		return fmt.Sprintf(key, args...)
	}
	return p.tr(key, args...)
}

// URL prefixes path with the page locale.
func (p PageData) URL(path string) string {
	return "/" + p.Locale + path
}

// SwitchURL is the current page in another locale.
func (p PageData) SwitchURL(locale string) string {
	return "/" + locale + p.Path
}

// Server holds all dependencies for page handlers.
type Server struct {
	Deps
	Templates *Templates
}

// entityURL is the list page of e.
func entityURL(locale string, e *crud.Entity) string {
	return "/" + locale + "/" + e.Name
}
