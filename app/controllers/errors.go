package controllers

import (
	"errors"
	"net/http"

	"github.com/shashiranjanraj/marketplace/app/services"
	"github.com/shashiranjanraj/marketplace/pkg/ctx"
)

// fail maps a service error onto the response envelope. Anything not
// recognised is logged and hidden behind a generic 500.
func fail(c *ctx.Context, err error) {
	var (
		validation  *services.ValidationError
		notFound    *services.NotFoundError
		forbidden   *services.ForbiddenError
		unauth      *services.UnauthorizedError
		transition  *services.InvalidTransitionError
		emptyCart   *services.EmptyCartError
		unavailable *services.ProductUnavailableError
		stock       *services.InsufficientStockError
	)

	switch {
	case errors.As(err, &validation):
		message := "Validation failed"
		if len(validation.Fields) == 1 {
			for _, m := range validation.Fields {
				message = m
			}
		}
		c.Invalid(message, validation.Fields)
	case errors.As(err, &emptyCart), errors.As(err, &unavailable),
		errors.As(err, &stock), errors.As(err, &transition):
		c.Error(http.StatusBadRequest, err.Error())
	case errors.As(err, &notFound):
		c.NotFound(err.Error())
	case errors.As(err, &forbidden):
		c.Error(http.StatusForbidden, err.Error())
	case errors.As(err, &unauth):
		c.Error(http.StatusUnauthorized, err.Error())
	default:
		c.Log().Error("request failed", "method", c.R.Method, "path", c.R.URL.Path, "error", err)
		c.Error(http.StatusInternalServerError, "Internal Server Error")
	}
}

// actor returns the authenticated caller. Routes using it sit behind
// middleware.Authenticate.
func actor(c *ctx.Context) services.Actor {
	p, _ := c.Principal()
	return services.Actor{ID: p.ID, Role: p.Role}
}

// pathID reads a positive integer path parameter, answering 404 with
// message when it is malformed.
func pathID(c *ctx.Context, key, message string) (uint, bool) {
	id, ok := c.ParamUint(key)
	if !ok {
		c.NotFound(message)
	}
	return id, ok
}
