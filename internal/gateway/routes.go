package gateway

import (
	"net/http"

	"github.com/gorilla/mux"
)

// proxyRoute binds one gateway route to a backend path template.
type proxyRoute struct {
	methods     []string
	pattern     string
	backendPath string
	auth        authMode
}

// routeTable is the whole proxy surface. The gateway exposes the paths
// the web front calls; the backendPath column is where each one lands.
func routeTable() []proxyRoute {
	get := []string{http.MethodGet}
	post := []string{http.MethodPost}
	item := []string{http.MethodGet, http.MethodPatch, http.MethodDelete}

	return []proxyRoute{
		{post, "/auth/login", "/auth/login", authNone},
		{post, "/auth/register", "/auth/register", authNone},
		{get, "/auth/me", "/auth/me", authBearer},

		{[]string{http.MethodGet, http.MethodPost}, "/clients", "/clients", authBearer},
		{item, "/clients/{id}", "/clients/{id}", authBearer},
		{get, "/clients/{id}/voice-records", "/clients/{id}/voice-records", authBearer},
		{get, "/clients/{id}/upload-status", "/clients/{id}/upload-status", authBearer},

		{[]string{http.MethodGet, http.MethodPost}, "/appointments", "/appointments", authBearer},
		{item, "/appointments/{id}", "/appointments/{id}", authBearer},

		{item, "/voice/records/{id}", "/voice/records/{id}", authBearer},

		{post, "/upload-url", "/voice/generate-upload-url", authBearer},
		{post, "/process-audio", "/voice/process-s3-file", authBearer},
		{post, "/process-audio-speechmatics", "/voice/process-s3-file-speechmatics", authBearer},

		// Synchronous diarization passthrough; server-to-server, so the
		// static key stands in for a user session.
		{post, "/diarize", "/voice/speaker-diarization-v2", authServiceKey},
	}
}

func (s *Server) routes() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	for _, route := range routeTable() {
		api.HandleFunc(route.pattern, s.forward(route.backendPath, route.auth)).Methods(route.methods...)
	}
	return r
}
