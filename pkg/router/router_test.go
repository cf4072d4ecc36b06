package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ok(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) }

func tag(value string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Add("X-Chain", value)
			next.ServeHTTP(w, r)
		})
	}
}

func TestGroupsJoinPrefixesAndMiddleware(t *testing.T) {
	r := New()
	api := r.Group("/api", tag("api"))
	seller := api.Group("seller", tag("seller"))
	seller.Put("/orders/{id}/status", "seller.orders.status", ok, tag("route"))

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/api/seller/orders/5/status", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"api", "seller", "route"}, rec.Header().Values("X-Chain"))
}

func TestNamedRouteURL(t *testing.T) {
	r := New()
	r.Group("/api/orders").Get("/{id}", "orders.show", ok)

	url, err := r.URL("orders.show", map[string]string{"id": "9"})
	require.NoError(t, err)
	assert.Equal(t, "/api/orders/9", url)

	_, err = r.URL("orders.show", nil)
	assert.Error(t, err)
	_, err = r.URL("nope", nil)
	assert.Error(t, err)
}

func TestRoutesListing(t *testing.T) {
	r := New()
	g := r.Group("/api/cart")
	g.Delete("/", "cart.clear", ok)
	g.Get("/", "cart.show", ok)
	g.Post("/", "cart.add", ok)
	r.Get("/metrics", "", ok)

	routes := r.Routes()
	require.Len(t, routes, 4)
	assert.Equal(t, RouteInfo{Method: http.MethodDelete, Path: "/api/cart", Name: "cart.clear"}, routes[0])
	assert.Equal(t, "/metrics", routes[3].Path)
}
