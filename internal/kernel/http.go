// Package kernel assembles the HTTP handler: the global middleware stack,
// the /metrics endpoint, JSON fallbacks and the API routes.
package kernel

import (
	"net/http"
	"time"

	"github.com/shashiranjanraj/marketplace/app/routes"
	"github.com/shashiranjanraj/marketplace/config"
	"github.com/shashiranjanraj/marketplace/pkg/metrics"
	"github.com/shashiranjanraj/marketplace/pkg/middleware"
	"github.com/shashiranjanraj/marketplace/pkg/reqid"
	"github.com/shashiranjanraj/marketplace/pkg/response"
	"github.com/shashiranjanraj/marketplace/pkg/router"
)

type HTTPKernel struct {
	router *router.Router
}

func NewHTTPKernel(deps routes.Deps) (*HTTPKernel, error) {
	r := router.New()

	// Outermost first: metrics see total latency, recovery sits above
	// everything that can panic, the request id exists before anything logs.
	r.Use(metrics.Middleware())
	r.Use(middleware.Recovery)
	r.Use(reqid.Middleware())
	r.Use(middleware.Logger)

	cors := middleware.DefaultCORSOptions()
	cors.AllowedOrigins = middleware.ParseOrigins(config.CORSOrigins())
	r.Use(middleware.CORS(cors))
	r.Use(middleware.RateLimit(config.RateLimitPerMinute(), time.Minute))

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		response.NotFound(w, "Route not found: "+req.Method+" "+req.URL.Path)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		response.Error(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	r.Get("/metrics", "metrics", metrics.Handler())

	if err := routes.RegisterAPI(r, deps); err != nil {
		return nil, err
	}
	return &HTTPKernel{router: r}, nil
}

func (k *HTTPKernel) Handler() http.Handler {
	return k.router.Handler()
}

// Routes lists every registered route for route:list.
func (k *HTTPKernel) Routes() []router.RouteInfo {
	return k.router.Routes()
}
