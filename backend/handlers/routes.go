// ABOUTME: Declarative route table and router construction for API endpoints
// ABOUTME: Registers routes on gorilla/mux with logging, CORS, and rate limits

package handlers

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/markalston/pypiserver-capacity/backend/config"
	"github.com/markalston/pypiserver-capacity/backend/middleware"
)

// Rate limit classes
const (
	LimitDefault = "default"
	LimitPlan    = "plan"
)

// Route defines an API endpoint with its HTTP method and handler.
type Route struct {
	Method  string           // HTTP method (GET, POST, etc.)
	Path    string           // URL path, may contain mux variables
	Handler http.HandlerFunc // Handler function
	Limit   string           // rate limit class
}

// Routes returns all API routes for registration.
func (h *Handler) Routes() []Route {
	return []Route{
		// Health & Documentation
		{Method: http.MethodGet, Path: "/api/v1/health", Handler: h.Health, Limit: LimitDefault},
		{Method: http.MethodGet, Path: "/api/v1/openapi.yaml", Handler: h.OpenAPISpec, Limit: LimitDefault},

		// Planning
		{Method: http.MethodPost, Path: "/api/v1/plan", Handler: h.Plan, Limit: LimitPlan},
		{Method: http.MethodPost, Path: "/api/v1/compare", Handler: h.Compare, Limit: LimitPlan},

		// Catalog
		{Method: http.MethodGet, Path: "/api/v1/instance-types", Handler: h.ListInstanceTypes, Limit: LimitDefault},
		{Method: http.MethodGet, Path: "/api/v1/instance-types/{name:.+}", Handler: h.GetInstanceType, Limit: LimitPlan},
	}
}

// NewRouter builds the HTTP router. A nil cfg disables rate limiting and
// cross-origin access.
func NewRouter(h *Handler, cfg *config.Config) *mux.Router {
	limiters := map[string]*middleware.RateLimiter{}
	var origins []string
	if cfg != nil {
		origins = cfg.CORSAllowedOrigins
		if cfg.RateLimitEnabled {
			limiters[LimitDefault] = middleware.NewRateLimiter(cfg.RateLimitDefault, time.Minute)
			limiters[LimitPlan] = middleware.NewRateLimiter(cfg.RateLimitPlan, time.Minute)
		}
	}

	r := mux.NewRouter()
	r.Use(middleware.LogRequest, middleware.CORS(origins))
	r.NotFoundHandler = middleware.Chain(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		h.writeError(w, "Not found", http.StatusNotFound)
	}), middleware.LogRequest)
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
	})

	for _, route := range h.Routes() {
		handler := middleware.RateLimit(limiters[route.Limit], middleware.ClientIP)(route.Handler)
		// OPTIONS is registered so preflight reaches the CORS middleware
		r.Handle(route.Path, handler).Methods(route.Method, http.MethodOptions)
	}

	return r
}
