package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/simp-lee/amcham/internal/metrics"
	"github.com/simp-lee/amcham/internal/middleware"
	"github.com/simp-lee/amcham/internal/pkg"
)

// Pinger reports whether the client-state store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// RouteDeps holds all dependencies needed to register routes.
type RouteDeps struct {
	Modules  []Module
	Store    Pinger
	Sessions middleware.SessionChecker
	Metrics  *metrics.Collector
}

// RegisterRoutes registers all application routes on the given gin.Engine.
func RegisterRoutes(r *gin.Engine, deps *RouteDeps) error {
	if r == nil {
		return errors.New("router is nil")
	}
	if deps == nil {
		return errors.New("route dependencies are nil")
	}
	if len(deps.Modules) == 0 {
		return errors.New("at least one module is required")
	}
	if deps.Sessions == nil {
		return errors.New("session checker is required")
	}

	r.GET("/health", healthHandler(deps.Store))
	r.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))

	public := r.Group("/api/v1")
	private := r.Group("/api/v1", middleware.RequireSession(deps.Sessions))

	for i, m := range deps.Modules {
		if m == nil {
			return fmt.Errorf("module at index %d is nil", i)
		}
		m.RegisterRoutes(public, private)
	}

	r.NoRoute(noRouteHandler())

	return nil
}

// healthHandler returns a handler that pings the client-state store.
func healthHandler(store Pinger) gin.HandlerFunc {
	return func(c *gin.Context) {
		storeStatus := "ok"
		status := "ok"
		code := http.StatusOK

		if store == nil {
			storeStatus = "error"
		} else {
			ctx, cancel := context.WithTimeout(c.Request.Context(), time.Second)
			defer cancel()
			if err := store.Ping(ctx); err != nil {
				storeStatus = "error"
			}
		}
		if storeStatus != "ok" {
			status = "degraded"
			code = http.StatusServiceUnavailable
		}

		c.JSON(code, gin.H{
			"status": status,
			"components": gin.H{
				"storage": storeStatus,
			},
		})
	}
}

// noRouteHandler answers unknown routes with the JSON envelope.
func noRouteHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusNotFound, pkg.Response{Code: http.StatusNotFound, Message: "not found"})
	}
}
