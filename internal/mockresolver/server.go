// Package mockresolver serves a deterministic stand-in for the email-discovery
// and email-validation webhooks.
package mockresolver

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"
)

// Reserved domains trigger fixed behaviors on the find endpoint.
const (
	// DomainError answers 500.
	DomainError = "error.test"
	// DomainUnknown answers {"email": null}.
	DomainUnknown = "unknown.test"
	// DomainSlow answers after the configured slow delay.
	DomainSlow = "slow.test"
	// DomainGarbage answers 200 with a body that is not JSON.
	DomainGarbage = "garbage.test"
)

// Call records a request made to the mock service.
type Call struct {
	Method      string
	Path        string
	ContentType string
	UserAgent   string
	Body        map[string]any
	At          time.Time
}

// Server implements the find and validate webhooks.
type Server struct {
	mu        sync.Mutex
	calls     []Call
	slowDelay time.Duration
}

// New constructs a new mock server.
func New() *Server {
	return &Server{slowDelay: 2 * time.Second}
}

// SetSlowDelay sets how long requests for DomainSlow take.
func (s *Server) SetSlowDelay(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.slowDelay = d
}

// Handler returns an http.Handler that serves the mock API. Paths ending in
// "/validate" are validation calls; every other POST is a find call.
func (s *Server) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		body, ok := s.recordCall(w, r)
		if !ok {
			return
		}
		if strings.HasSuffix(r.URL.Path, "/validate") {
			s.handleValidate(w, body)
			return
		}
		s.handleFind(w, r, body)
	})
}

// Calls returns a snapshot of calls made to the server.
func (s *Server) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Call, len(s.calls))
	copy(out, s.calls)
	return out
}

func (s *Server) recordCall(w http.ResponseWriter, r *http.Request) (map[string]any, bool) {
	at := time.Now()
	b, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		http.Error(w, "read body", http.StatusBadRequest)
		return nil, false
	}
	var body map[string]any
	if err := json.Unmarshal(b, &body); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return nil, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, Call{
		Method:      r.Method,
		Path:        r.URL.Path,
		ContentType: r.Header.Get("Content-Type"),
		UserAgent:   r.Header.Get("User-Agent"),
		Body:        body,
		At:          at,
	})
	return body, true
}

func (s *Server) handleFind(w http.ResponseWriter, r *http.Request, body map[string]any) {
	first := strings.ToLower(stringField(body, "firstName"))
	last := strings.ToLower(stringField(body, "lastName"))
	domain := strings.ToLower(stringField(body, "domain"))

	switch domain {
	case DomainError:
		writeJSON(w, http.StatusInternalServerError, map[string]any{"message": "resolver exploded"})
		return
	case DomainGarbage:
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(http.StatusOK)
		_, _ = io.WriteString(w, "<html>not json</html>")
		return
	case DomainUnknown:
		writeJSON(w, http.StatusOK, map[string]any{"email": nil, "certainty": 0})
		return
	case DomainSlow:
		s.mu.Lock()
		d := s.slowDelay
		s.mu.Unlock()
		t := time.NewTimer(d)
		defer t.Stop()
		select {
		case <-t.C:
		case <-r.Context().Done():
			return
		}
	}

	local := first
	if last != "" {
		if local != "" {
			local += "."
		}
		local += strings.ReplaceAll(last, " ", "")
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"email":     local + "@" + domain,
		"certainty": 80,
		"verified":  true,
	})
}

func (s *Server) handleValidate(w http.ResponseWriter, body map[string]any) {
	email := strings.ToLower(stringField(body, "email"))
	local, _, _ := strings.Cut(email, "@")

	switch {
	case strings.Contains(local, "error"):
		writeJSON(w, http.StatusBadGateway, map[string]any{"message": "validator unavailable"})
	case strings.Contains(local, "bounce"):
		writeJSON(w, http.StatusOK, map[string]any{"status": "INVALID", "reason": "mailbox_not_found"})
	case strings.Contains(local, "invalid"):
		writeJSON(w, http.StatusOK, map[string]any{"valid": false})
	case strings.Contains(local, "unknown"):
		writeJSON(w, http.StatusOK, map[string]any{"reason": "catch_all"})
	default:
		writeJSON(w, http.StatusOK, map[string]any{"isValid": true})
	}
}

func stringField(body map[string]any, key string) string {
	v, _ := body[key].(string)
	return strings.TrimSpace(v)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
