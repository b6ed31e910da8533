package api

import (
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/platinummonkey/protoboard/pkg/export"
	"github.com/platinummonkey/protoboard/pkg/httputil"
	"github.com/platinummonkey/protoboard/pkg/observability"
	"github.com/platinummonkey/protoboard/pkg/session"
)

// APIPrefix is the path prefix of every schema route
const APIPrefix = "/api/v1"

// Server represents the schema editor API
type Server struct {
	sessions  *session.Manager
	renderer  *export.Renderer
	publisher export.Publisher
	logger    *observability.Logger
	router    *mux.Router
}

// NewServer creates a new API server. publisher may be nil, in which case
// publishing answers 503.
func NewServer(sessions *session.Manager, renderer *export.Renderer, publisher export.Publisher, logger *observability.Logger) *Server {
	s := &Server{
		sessions:  sessions,
		renderer:  renderer,
		publisher: publisher,
		logger:    logger,
		router:    mux.NewRouter(),
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures all the API routes
func (s *Server) setupRoutes() {
	s.router.NotFoundHandler = http.HandlerFunc(notFound)
	s.router.MethodNotAllowedHandler = http.HandlerFunc(methodNotAllowed)

	api := s.router.PathPrefix(APIPrefix).Subrouter()
	api.Use(documentContext)

	// Document routes
	api.HandleFunc("/schemas", s.createSchema).Methods("POST")
	api.HandleFunc("/schemas", s.listSchemas).Methods("GET")
	api.HandleFunc("/schemas/{id}", s.getSchema).Methods("GET")
	api.HandleFunc("/schemas/{id}", s.renameSchema).Methods("PUT")
	api.HandleFunc("/schemas/{id}", s.deleteSchema).Methods("DELETE")
	api.HandleFunc("/schemas/{id}/reset", s.resetSchema).Methods("POST")
	api.HandleFunc("/schemas/{id}/save", s.saveSchema).Methods("POST")

	// Element routes
	api.HandleFunc("/schemas/{id}/elements", s.addElement).Methods("POST")
	api.HandleFunc("/schemas/{id}/elements/{elementId}", s.getElement).Methods("GET")
	api.HandleFunc("/schemas/{id}/elements/{elementId}", s.replaceElement).Methods("PUT")
	api.HandleFunc("/schemas/{id}/elements/{elementId}", s.removeElement).Methods("DELETE")

	// Export routes
	api.HandleFunc("/schemas/{id}/export/proto", s.exportProto).Methods("GET")
	api.HandleFunc("/schemas/{id}/export/diagram", s.exportDiagram).Methods("GET")
	api.HandleFunc("/schemas/{id}/publish", s.publishSchema).Methods("POST")
}

func notFound(w http.ResponseWriter, r *http.Request) {
	httputil.WriteNotFoundError(w, "no route for "+r.URL.Path)
}

// methodNotAllowed answers a known path requested with the wrong verb. mux
// only reaches it after every route failed on method alone.
func methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	httputil.WriteDetailedError(w, http.StatusMethodNotAllowed,
		fmt.Errorf("method %s not allowed", r.Method),
		map[string]string{"path": r.URL.Path})
}

// documentContext tags the request context with the {id} route variable
func documentContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if id := mux.Vars(r)["id"]; id != "" {
			r = r.WithContext(observability.WithDocumentID(r.Context(), id))
		}
		next.ServeHTTP(w, r)
	})
}

// Router exposes the underlying router so callers can mount health and
// metrics routes and attach middleware
func (s *Server) Router() *mux.Router {
	return s.router
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
