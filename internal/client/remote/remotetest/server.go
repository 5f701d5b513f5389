// Package remotetest runs an in-memory studydeck backend on httptest for
// client and sync tests. Failures can be injected per route.
package remotetest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"

	"github.com/dmitrijs2005/studydeck/internal/client/auth"
	"github.com/dmitrijs2005/studydeck/internal/client/models"
	"github.com/dmitrijs2005/studydeck/internal/common"
	"github.com/go-chi/chi/v5"
)

// Call is one request the server received.
type Call struct {
	Method string
	Path   string
	Token  string
	// UserID is the subject of a verified signed token.
	UserID string
}

type fault struct {
	status int
	body   string
	times  int // < 0 means every time
}

type Server struct {
	mu     sync.Mutex
	lists  map[string]models.List
	cards  map[string]models.Card
	users  map[string]models.User
	calls  []Call
	faults map[string]*fault

	// RequireToken rejects requests without a bearer credential with 401.
	RequireToken bool

	secret []byte

	srv *httptest.Server
}

func NewServer() *Server {
	s := &Server{
		lists:  map[string]models.List{},
		cards:  map[string]models.Card{},
		users:  map[string]models.User{},
		faults: map[string]*fault{},
	}

	r := chi.NewRouter()
	s.route(r, http.MethodGet, "/lists", s.listLists)
	s.route(r, http.MethodPost, "/lists", s.putList)
	s.route(r, http.MethodPut, "/lists", s.putList)
	s.route(r, http.MethodDelete, "/lists/{id}", s.deleteList)
	s.route(r, http.MethodGet, "/cards", s.listCards)
	s.route(r, http.MethodPost, "/cards", s.putCard)
	s.route(r, http.MethodPut, "/cards", s.putCard)
	s.route(r, http.MethodDelete, "/cards/{id}", s.deleteCard)
	s.route(r, http.MethodPut, "/users/{id}", s.putUser)

	s.srv = httptest.NewServer(r)
	return s
}

// VerifyTokens makes the server accept only HS256 tokens signed with secret.
// Requests with a missing or invalid token are answered with 401.
func (s *Server) VerifyTokens(secret string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.RequireToken = true
	s.secret = []byte(secret)
}

func (s *Server) URL() string { return s.srv.URL }

func (s *Server) Close() { s.srv.Close() }

// Fail makes the next times requests matching method and route pattern (for
// example "/cards/{id}") answer with status and body. times < 0 fails forever.
// An empty body is replaced by a failure envelope.
func (s *Server) Fail(method, pattern string, status, times int, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.faults[method+" "+pattern] = &fault{status: status, body: body, times: times}
}

func (s *Server) SeedList(l models.List) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lists[l.ID] = l
}

func (s *Server) SeedCard(c models.Card) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.Normalize()
	s.cards[c.ID] = c
}

func (s *Server) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Call(nil), s.calls...)
}

// CallsTo returns the calls with the given method whose path starts with prefix.
func (s *Server) CallsTo(method, prefix string) []Call {
	var out []Call
	for _, c := range s.Calls() {
		if c.Method == method && strings.HasPrefix(c.Path, prefix) {
			out = append(out, c)
		}
	}
	return out
}

func (s *Server) Lists() []models.List {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.List, 0, len(s.lists))
	for _, l := range s.lists {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *Server) Cards() []models.Card {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.Card, 0, len(s.cards))
	for _, c := range s.cards {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *Server) User(id string) (models.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	return u, ok
}

func (s *Server) route(r chi.Router, method, pattern string, h http.HandlerFunc) {
	key := method + " " + pattern
	r.Method(method, pattern, http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		token := strings.TrimPrefix(req.Header.Get(common.AuthorizationHeaderName), common.BearerScheme)

		s.mu.Lock()
		call := Call{Method: method, Path: req.URL.Path, Token: token}
		var tokenErr error
		if len(s.secret) > 0 && token != "" {
			call.UserID, tokenErr = auth.GetUserIDFromToken(token, s.secret)
		}
		s.calls = append(s.calls, call)
		requireToken := s.RequireToken
		f := s.faults[key]
		if f != nil && f.times != 0 {
			if f.times > 0 {
				f.times--
			}
		} else {
			f = nil
		}
		s.mu.Unlock()

		if f != nil {
			if f.body == "" {
				writeJSON(w, f.status, map[string]any{"success": false, "error": http.StatusText(f.status)})
				return
			}
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(f.status)
			_, _ = w.Write([]byte(f.body))
			return
		}
		if requireToken && token == "" {
			fail(w, http.StatusUnauthorized, "missing token")
			return
		}
		if tokenErr != nil {
			fail(w, http.StatusUnauthorized, "invalid token")
			return
		}
		h(w, req)
	}))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func ok(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": data})
}

func fail(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"success": false, "error": msg})
}

func (s *Server) listLists(w http.ResponseWriter, _ *http.Request) {
	ok(w, s.Lists())
}

func (s *Server) putList(w http.ResponseWriter, r *http.Request) {
	var l models.List
	if err := json.NewDecoder(r.Body).Decode(&l); err != nil || l.ID == "" {
		fail(w, http.StatusBadRequest, "invalid list")
		return
	}
	s.SeedList(l)
	ok(w, l)
}

func (s *Server) deleteList(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.mu.Lock()
	_, found := s.lists[id]
	delete(s.lists, id)
	s.mu.Unlock()
	if !found {
		fail(w, http.StatusNotFound, "list not found")
		return
	}
	ok(w, map[string]string{"_id": id})
}

func (s *Server) listCards(w http.ResponseWriter, _ *http.Request) {
	ok(w, s.Cards())
}

func (s *Server) putCard(w http.ResponseWriter, r *http.Request) {
	var c models.Card
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil || c.ID == "" {
		fail(w, http.StatusBadRequest, "invalid card")
		return
	}
	s.SeedCard(c)
	ok(w, c)
}

func (s *Server) deleteCard(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.mu.Lock()
	_, found := s.cards[id]
	delete(s.cards, id)
	s.mu.Unlock()
	if !found {
		fail(w, http.StatusNotFound, "card not found")
		return
	}
	ok(w, map[string]string{"_id": id})
}

func (s *Server) putUser(w http.ResponseWriter, r *http.Request) {
	var u models.User
	if err := json.NewDecoder(r.Body).Decode(&u); err != nil {
		fail(w, http.StatusBadRequest, "invalid user")
		return
	}
	u.ID = chi.URLParam(r, "id")
	s.mu.Lock()
	s.users[u.ID] = u
	s.mu.Unlock()
	ok(w, u)
}
