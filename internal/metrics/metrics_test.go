package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveBackend(t *testing.T) {
	m := New()
	m.ObserveBackend("GET", "owner/areas", 200, 20*time.Millisecond)
	m.ObserveBackend("GET", "owner/areas", 200, 30*time.Millisecond)
	m.ObserveBackend("DELETE", "owner/areas/{id}", 500, time.Millisecond)

	if got := testutil.ToFloat64(m.BackendRequestsTotal.WithLabelValues("GET", "owner/areas", "200")); got != 2 {
		t.Errorf("expected 2 GETs, got %v", got)
	}
	if got := testutil.ToFloat64(m.BackendRequestsTotal.WithLabelValues("DELETE", "owner/areas/{id}", "500")); got != 1 {
		t.Errorf("expected 1 failed DELETE, got %v", got)
	}
}

func TestObserveBulkAndAuth(t *testing.T) {
	m := New()
	m.ObserveBulk("delete", "succeeded")
	m.ObserveBulk("delete", "failed")
	m.ObserveBulk("delete", "succeeded")
	m.ObserveAuth("login")

	if got := testutil.ToFloat64(m.BulkItemsTotal.WithLabelValues("delete", "succeeded")); got != 2 {
		t.Errorf("expected 2 succeeded, got %v", got)
	}
	if got := testutil.ToFloat64(m.AuthEventsTotal.WithLabelValues("login")); got != 1 {
		t.Errorf("expected 1 login, got %v", got)
	}
}

func TestMiddlewareUsesRoutePattern(t *testing.T) {
	m := New()
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{locale}/{entity}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	h := m.Middleware(mux)

	for _, path := range []string{"/en/areas", "/ar/blogs"} {
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", path, nil))
	}
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/a/b/c", nil))

	if got := testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "GET /{locale}/{entity}", "418")); got != 2 {
		t.Errorf("expected 2 requests on the pattern, got %v", got)
	}
	if got := testutil.ToFloat64(m.HTTPRequestsTotal.WithLabelValues("GET", "unmatched", "404")); got != 1 {
		t.Errorf("expected 1 unmatched request, got %v", got)
	}
}

func TestHandler(t *testing.T) {
	m := New()
	m.ObserveBulk("import", "failed")

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	if err != nil {
		t.Fatalf("GET metrics: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	for _, want := range []string{"proplex_bulk_items_total", "go_goroutines"} {
		if !strings.Contains(string(body), want) {
			t.Errorf("expected %s in output", want)
		}
	}
}
