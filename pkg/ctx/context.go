// Package ctx gives handlers a single request context instead of the
// (http.ResponseWriter, *http.Request) pair:
//
//	func (oc *OrderController) Show(c *ctx.Context) {
//	    id, ok := c.ParamUint("id")
//	    ...
//	    c.Success("order", order)
//	}
//
//	router.Get("/orders/{id}", "orders.show", ctx.Wrap(oc.Show))
package ctx

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"sync"

	"github.com/go-chi/chi/v5"

	"github.com/shashiranjanraj/marketplace/pkg/bind"
	"github.com/shashiranjanraj/marketplace/pkg/logger"
	"github.com/shashiranjanraj/marketplace/pkg/middleware"
	"github.com/shashiranjanraj/marketplace/pkg/response"
	"github.com/shashiranjanraj/marketplace/pkg/validate"
)

// HandlerFunc is the context-aware handler signature.
type HandlerFunc func(c *Context)

// Wrap adapts a HandlerFunc to http.HandlerFunc.
func Wrap(h HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := acquire(w, r)
		defer release(c)
		h(c)
	}
}

// Context wraps one request/response pair.
type Context struct {
	W      http.ResponseWriter
	R      *http.Request
	status int
}

var pool = sync.Pool{
	New: func() any { return &Context{} },
}

func acquire(w http.ResponseWriter, r *http.Request) *Context {
	c := pool.Get().(*Context)
	c.W, c.R, c.status = w, r, 0
	return c
}

func release(c *Context) {
	c.W, c.R = nil, nil
	pool.Put(c)
}

// ── Request ──────────────────────────────────────────────────────────────────

// Param returns a URL path parameter.
func (c *Context) Param(key string) string {
	return chi.URLParam(c.R, key)
}

// ParamUint parses a positive integer path parameter.
func (c *Context) ParamUint(key string) (uint, bool) {
	n, err := strconv.ParseUint(c.Param(key), 10, 64)
	if err != nil || n == 0 {
		return 0, false
	}
	return uint(n), true
}

// Query returns a query-string value, "" when absent.
func (c *Context) Query(key string) string {
	return c.R.URL.Query().Get(key)
}

// Header returns a request header.
func (c *Context) Header(key string) string {
	return c.R.Header.Get(key)
}

// ClientIP returns the caller's address as seen through proxies.
func (c *Context) ClientIP() string {
	return middleware.ClientIP(c.R)
}

// Context returns the request context.
func (c *Context) Context() context.Context { return c.R.Context() }

// Log returns the request-scoped logger.
func (c *Context) Log() *slog.Logger { return logger.WithCtx(c.R.Context()) }

// Principal returns the authenticated caller.
func (c *Context) Principal() (middleware.Principal, bool) {
	return middleware.PrincipalFromCtx(c.R.Context())
}

// ── Binding ──────────────────────────────────────────────────────────────────

// BindJSON decodes and validates the body into dest. On failure it writes
// the 400 response itself and returns false.
func (c *Context) BindJSON(dest any) bool {
	errs, err := bind.JSON(c.R, dest)
	if err != nil {
		c.Error(http.StatusBadRequest, err.Error())
		return false
	}
	if validate.HasErrors(errs) {
		c.ValidationError(errs)
		return false
	}
	return true
}

// ── Response ─────────────────────────────────────────────────────────────────

// JSON writes v as-is with the given status.
func (c *Context) JSON(code int, v any) {
	c.status = code
	response.JSON(c.W, code, v)
}

// Success sends 200 {"success":true, key: data}.
func (c *Context) Success(key string, data any) {
	c.JSON(http.StatusOK, response.With(key, data))
}

// Created sends 201 {"success":true, key: data}.
func (c *Context) Created(key string, data any) {
	c.JSON(http.StatusCreated, response.With(key, data))
}

// Error sends {"success":false,"message":...}.
func (c *Context) Error(code int, message string) {
	c.status = code
	response.Error(c.W, code, message)
}

// ValidationError sends 400 with field-level errors.
func (c *Context) ValidationError(errs map[string]string) {
	c.status = http.StatusBadRequest
	response.ValidationError(c.W, errs)
}

// Invalid sends 400 with message and field-level errors.
func (c *Context) Invalid(message string, errs map[string]string) {
	c.status = http.StatusBadRequest
	response.Invalid(c.W, message, errs)
}

// NotFound sends a 404.
func (c *Context) NotFound(message string) {
	c.Error(http.StatusNotFound, message)
}

// WrittenStatus returns the status written so far, 0 if none.
func (c *Context) WrittenStatus() int { return c.status }
