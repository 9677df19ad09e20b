package gateway

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
)

// authMode selects how a proxied route authenticates against the
// backend.
type authMode int

const (
	// authNone forwards without credentials (login, register).
	authNone authMode = iota
	// authBearer requires an Authorization header and fails closed with
	// 401 before any backend call when it is absent.
	authBearer
	// authServiceKey attaches the static service credential; used for
	// server-to-server calls where no user session exists.
	authServiceKey
)

const (
	authRequiredMessage = "Authentication required"
	upstreamTimeout     = 120 * time.Second
)

// Config carries the gateway's wiring.
type Config struct {
	BackendURL     string
	ServiceKey     string
	AllowedOrigins []string
}

// Server proxies browser requests to the counseling backend. It holds no
// session state and never retries: every handler is a single-attempt
// forward that relays the backend's status and body verbatim.
type Server struct {
	backend    *url.URL
	serviceKey string
	http       *http.Client
}

// New builds a gateway server for the given backend.
func New(cfg Config) (*Server, error) {
	base, err := url.Parse(strings.TrimSpace(cfg.BackendURL))
	if err != nil {
		return nil, fmt.Errorf("parse backend url %q: %w", cfg.BackendURL, err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("backend url %q must be absolute", cfg.BackendURL)
	}
	return &Server{
		backend:    base,
		serviceKey: cfg.ServiceKey,
		// Long timeout: diarization submissions can hold the request
		// while the backend stages the object.
		http: &http.Client{Timeout: upstreamTimeout},
	}, nil
}

// Handler returns the full middleware-wrapped handler: request IDs,
// access logs, CORS, routes.
func (s *Server) Handler(allowedOrigins []string) http.Handler {
	cors := handlers.CORS(
		handlers.AllowedOrigins(allowedOrigins),
		handlers.AllowedMethods([]string{"GET", "POST", "PATCH", "PUT", "DELETE", "OPTIONS"}),
		handlers.AllowedHeaders([]string{"Content-Type", "Authorization"}),
	)
	return handlers.LoggingHandler(os.Stdout, cors(requestID(s.routes())))
}

// forward returns a handler that relays the incoming request to the
// backend path template, expanding {vars} from the route match. One
// generic function replaces a per-route copy of the same four steps:
// check auth, forward, relay, wrap failure.
func (s *Server) forward(backendPath string, auth authMode) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch auth {
		case authBearer:
			if bearerToken(r) == "" {
				writeJSON(w, http.StatusUnauthorized, map[string]string{"message": authRequiredMessage})
				return
			}
		case authServiceKey:
			if s.serviceKey == "" {
				writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "service credential not configured"})
				return
			}
		}

		target := *s.backend
		target.Path = strings.TrimSuffix(s.backend.Path, "/") + expandPath(backendPath, mux.Vars(r))
		target.RawQuery = r.URL.RawQuery

		req, err := http.NewRequestWithContext(r.Context(), r.Method, target.String(), r.Body)
		if err != nil {
			writeError(w, err)
			return
		}
		if ct := r.Header.Get("Content-Type"); ct != "" {
			req.Header.Set("Content-Type", ct)
		}
		if id := r.Header.Get("X-Request-ID"); id != "" {
			req.Header.Set("X-Request-ID", id)
		}
		switch auth {
		case authBearer:
			req.Header.Set("Authorization", r.Header.Get("Authorization"))
		case authServiceKey:
			req.Header.Set("X-API-Key", s.serviceKey)
		}

		resp, err := s.http.Do(req)
		if err != nil {
			writeError(w, err)
			return
		}
		defer func() { _ = resp.Body.Close() }()

		// Success on DELETE carries no body.
		if r.Method == http.MethodDelete && resp.StatusCode >= 200 && resp.StatusCode <= 299 {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		if ct := resp.Header.Get("Content-Type"); ct != "" {
			w.Header().Set("Content-Type", ct)
		}
		w.WriteHeader(resp.StatusCode)
		if _, err := io.Copy(w, resp.Body); err != nil {
			log.Printf("relay body: %v", err)
		}
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

// requestID tags every request so gateway and backend logs correlate.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
			r.Header.Set("X-Request-ID", id)
		}
		w.Header().Set("X-Request-ID", id)
		next.ServeHTTP(w, r)
	})
}

func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	token := strings.TrimPrefix(auth, "Bearer ")
	if token == auth && auth != "" {
		// Malformed scheme still fails closed.
		return ""
	}
	return strings.TrimSpace(token)
}

// expandPath substitutes {var} segments with the matched route vars.
func expandPath(template string, vars map[string]string) string {
	path := template
	for key, value := range vars {
		path = strings.ReplaceAll(path, "{"+key+"}", url.PathEscape(value))
	}
	return path
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// writeError surfaces a transport failure as a generic 500; the backend
// was never reached or never answered, so there is nothing to relay.
func writeError(w http.ResponseWriter, err error) {
	log.Printf("backend request failed: %v", err)
	writeJSON(w, http.StatusInternalServerError, map[string]string{
		"message": "Internal server error",
		"error":   err.Error(),
	})
}
