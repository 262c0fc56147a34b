// Package backendtest provides an in-memory stand-in for the Proplex REST API.
package backendtest

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
)

// Request is a call the server received.
type Request struct {
	Method string
	Path   string
	Lang   string
	Auth   string
	Form   map[string]string
	Files  map[string]string
	JSON   map[string]any
}

type failure struct {
	status  int
	message string
}

// Server is a fake backend. Lists are keyed by endpoint ("owner/areas"),
// records by endpoint plus id.
type Server struct {
	srv *httptest.Server

	// Token is the accepted bearer token and the one handed out on login.
	Token    string
	Email    string
	Password string
	User     map[string]any
	Modules  []string

	mu       sync.Mutex
	lists    map[string][]map[string]any
	objects  map[string]map[string]any
	failures map[string]failure
	requests []Request
	nextID   int
}

// New starts a fake backend closed at test cleanup.
func New(t *testing.T) *Server {
	t.Helper()
	s := &Server{
		Token:    "test-token",
		Email:    "admin@proplex.test",
		Password: "secret",
		User:     map[string]any{"id": 1, "name": "Admin", "email": "admin@proplex.test"},
		lists:    map[string][]map[string]any{},
		objects:  map[string]map[string]any{},
		failures: map[string]failure{},
		nextID:   100,
	}
	s.srv = httptest.NewServer(http.HandlerFunc(s.handle))
	t.Cleanup(s.srv.Close)
	return s
}

// BaseURL is the API root to configure the client with.
func (s *Server) BaseURL() string {
	return s.srv.URL + "/api/"
}

// SetList replaces the records of endpoint.
func (s *Server) SetList(endpoint string, items ...map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := make([]map[string]any, 0, len(items))
	for _, it := range items {
		list = append(list, roundTrip(it))
	}
	s.lists[endpoint] = list
}

// List returns the current records of endpoint.
func (s *Server) List(endpoint string) []map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]map[string]any, len(s.lists[endpoint]))
	copy(out, s.lists[endpoint])
	return out
}

// SetObject serves v at a non-list endpoint such as owner/profile.
func (s *Server) SetObject(endpoint string, v map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[endpoint] = roundTrip(v)
}

// Object returns the object served at endpoint.
func (s *Server) Object(endpoint string) map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.objects[endpoint]
}

// Fail makes method on path answer with status and message.
func (s *Server) Fail(method, path string, status int, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[method+" "+path] = failure{status: status, message: message}
}

// ClearFailures removes every Fail.
func (s *Server) ClearFailures() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures = map[string]failure{}
}

// Requests returns the calls received so far.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Request, len(s.requests))
	copy(out, s.requests)
	return out
}

// Count returns how many calls matched method and path.
func (s *Server) Count(method, path string) int {
	n := 0
	for _, r := range s.Requests() {
		if r.Method == method && r.Path == path {
			n++
		}
	}
	return n
}

// Last returns the most recent call matching method, or false.
func (s *Server) Last(method string) (Request, bool) {
	reqs := s.Requests()
	for i := len(reqs) - 1; i >= 0; i-- {
		if reqs[i].Method == method {
			return reqs[i], true
		}
	}
	return Request{}, false
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	path := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/"), "/")
	req := Request{
		Method: r.Method,
		Path:   path,
		Lang:   r.Header.Get("lang"),
		Auth:   r.Header.Get("Authorization"),
	}
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(8 << 20); err == nil {
			req.Form = map[string]string{}
			for k, v := range r.MultipartForm.Value {
				if len(v) > 0 {
					req.Form[k] = v[0]
				}
			}
			req.Files = map[string]string{}
			for k, v := range r.MultipartForm.File {
				if len(v) > 0 {
					req.Files[k] = v[0].Filename
				}
			}
		}
	} else if r.Body != nil {
		body, _ := io.ReadAll(r.Body)
		if len(body) > 0 {
			_ = json.Unmarshal(body, &req.JSON)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = append(s.requests, req)

	if f, ok := s.failures[r.Method+" "+path]; ok {
		writeJSON(w, f.status, map[string]any{"message": f.message})
		return
	}

	if path == "owner/login" {
		s.login(w, req)
		return
	}
	if s.Token != "" && req.Auth != "Bearer "+s.Token {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"message": "Unauthenticated."})
		return
	}
	if path == "owner/modules" && r.Method == http.MethodGet {
		modules := make([]any, len(s.Modules))
		for i, m := range s.Modules {
			modules[i] = map[string]any{"slug": m}
		}
		writeJSON(w, http.StatusOK, map[string]any{"data": modules})
		return
	}
	if path == "owner/logout" {
		writeJSON(w, http.StatusOK, map[string]any{"message": "Logged out"})
		return
	}

	switch r.Method {
	case http.MethodGet:
		s.get(w, path)
	case http.MethodPost:
		s.create(w, path, req)
	case http.MethodPatch, http.MethodPut:
		s.update(w, path, req)
	case http.MethodDelete:
		s.remove(w, path)
	default:
		writeJSON(w, http.StatusMethodNotAllowed, map[string]any{"message": "method not allowed"})
	}
}

func (s *Server) login(w http.ResponseWriter, req Request) {
	if fmt.Sprint(req.JSON["email"]) != s.Email || fmt.Sprint(req.JSON["password"]) != s.Password {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"message": "These credentials do not match our records."})
		return
	}
	modules := make([]any, len(s.Modules))
	for i, m := range s.Modules {
		modules[i] = map[string]any{"slug": m}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"data": map[string]any{
			"token":   s.Token,
			"user":    s.User,
			"modules": modules,
		},
	})
}

func (s *Server) get(w http.ResponseWriter, path string) {
	if list, ok := s.lists[path]; ok {
		writeJSON(w, http.StatusOK, map[string]any{"data": list})
		return
	}
	if obj, ok := s.objects[path]; ok {
		writeJSON(w, http.StatusOK, map[string]any{"data": obj})
		return
	}
	parent, id := split(path)
	if i := s.index(parent, id); i >= 0 {
		writeJSON(w, http.StatusOK, map[string]any{"data": s.lists[parent][i]})
		return
	}
	writeJSON(w, http.StatusNotFound, map[string]any{"message": "Not found"})
}

func (s *Server) create(w http.ResponseWriter, path string, req Request) {
	if obj, ok := s.objects[path]; ok {
		merge(obj, req)
		writeJSON(w, http.StatusOK, map[string]any{"data": obj})
		return
	}
	s.nextID++
	item := map[string]any{"id": float64(s.nextID)}
	merge(item, req)
	s.lists[path] = append(s.lists[path], item)
	writeJSON(w, http.StatusCreated, map[string]any{"data": item})
}

func (s *Server) update(w http.ResponseWriter, path string, req Request) {
	if obj, ok := s.objects[path]; ok {
		merge(obj, req)
		writeJSON(w, http.StatusOK, map[string]any{"data": obj})
		return
	}
	parent, id := split(path)
	i := s.index(parent, id)
	if i < 0 {
		writeJSON(w, http.StatusNotFound, map[string]any{"message": "Not found"})
		return
	}
	merge(s.lists[parent][i], req)
	writeJSON(w, http.StatusOK, map[string]any{"data": s.lists[parent][i]})
}

func (s *Server) remove(w http.ResponseWriter, path string) {
	parent, id := split(path)
	i := s.index(parent, id)
	if i < 0 {
		writeJSON(w, http.StatusNotFound, map[string]any{"message": "Not found"})
		return
	}
	list := s.lists[parent]
	s.lists[parent] = append(list[:i:i], list[i+1:]...)
	writeJSON(w, http.StatusOK, map[string]any{"message": "Deleted"})
}

func (s *Server) index(parent, id string) int {
	for i, it := range s.lists[parent] {
		if idString(it["id"]) == id {
			return i
		}
	}
	return -1
}

// merge writes submitted fields into item; en[name] becomes item.en.name.
func merge(item map[string]any, req Request) {
	for k, v := range req.Form {
		if open := strings.IndexByte(k, '['); open > 0 && strings.HasSuffix(k, "]") {
			loc, field := k[:open], k[open+1:len(k)-1]
			sub, _ := item[loc].(map[string]any)
			if sub == nil {
				sub = map[string]any{}
				item[loc] = sub
			}
			sub[field] = v
			continue
		}
		item[k] = v
	}
	for k, name := range req.Files {
		item[k] = "uploads/" + name
	}
	for k, v := range req.JSON {
		item[k] = v
	}
}

func split(path string) (string, string) {
	i := strings.LastIndexByte(path, '/')
	if i < 0 {
		return path, ""
	}
	return path[:i], path[i+1:]
}

func idString(v any) string {
	switch v := v.(type) {
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

func roundTrip(v map[string]any) map[string]any {
	data, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		panic(err)
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
