package web

import (
	"log/slog"
	"net/http"
	"sort"

	"github.com/proplex/proplex-admin/internal/backend"
	"github.com/proplex/proplex-admin/internal/crud"
	"github.com/proplex/proplex-admin/internal/i18n"
	"github.com/proplex/proplex-admin/internal/toast"
)

// Stat is one dashboard counter.
type Stat struct {
	Label string
	Value string
}

// Dashboard handles GET /{locale}/.
func (s *Server) Dashboard(w http.ResponseWriter, r *http.Request) {
	locale := localeOf(r)

	var raw map[string]any
	if err := s.Backend.Get(r.Context(), backend.EndpointStatistics, nil, &raw); err != nil {
		if s.sessionLost(w, r, err) {
			return
		}
		slog.Error("failed to load statistics", "error", err)
		s.notify(w, r, toast.Error, "Something went wrong")
	}

	s.Templates.Render(w, "dashboard.html", &struct {
		PageData
		Stats []Stat
	}{
		PageData: s.pageData(w, r, "Dashboard"),
		Stats:    statistics(raw, s.I18n.Translator(locale)),
	})
}

// statistics flattens the counters of the statistics endpoint, sorted by key.
func statistics(raw map[string]any, tr func(string, ...any) string) []Stat {
	keys := make([]string, 0, len(raw))
	for k, v := range raw {
		switch v.(type) {
		case map[string]any, []any:
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	stats := make([]Stat, 0, len(keys))
	for _, k := range keys {
		label := i18n.Title(i18n.English, k)
		stats = append(stats, Stat{Label: tr(label), Value: crud.Text(raw[k])})
	}
	return stats
}
