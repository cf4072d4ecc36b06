package controllers

import (
	"context"
	"net/http"

	"github.com/shashiranjanraj/marketplace/pkg/ctx"
)

// HealthController answers load-balancer probes.
type HealthController struct {
	ping func(context.Context) error
}

// NewHealthController takes the readiness check; nil means always healthy.
func NewHealthController(ping func(context.Context) error) *HealthController {
	return &HealthController{ping: ping}
}

func (hc *HealthController) Show(c *ctx.Context) {
	if hc.ping != nil {
		if err := hc.ping(c.Context()); err != nil {
			c.Log().Warn("health check failed", "error", err)
			c.Error(http.StatusServiceUnavailable, "Service unavailable")
			return
		}
	}
	c.Success("message", "Marketplace API is running")
}
