package api

import (
	"context"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"skyline/flightsync/internal/common"
	"skyline/flightsync/internal/logging"
	"skyline/flightsync/internal/models/entities"
)

// Pinger is a dependency the health check probes
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthCheckHandler handles GET /healthCheck
//
// @Summary Health check
// @Description Probes the schedule store and cache.
// @Tags Misc
// @Success 200 {object} entities.HealthCheckResponse
// @Failure 503 {object} entities.HealthCheckResponse
// @Router /healthCheck [get]
func HealthCheckHandler(deps map[string]Pinger, upSince time.Time) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		var (
			mu       sync.Mutex
			services = make(map[string]entities.ServiceStatus, len(deps))
		)

		// probes never fail the group, every dependency reports its own status
		g, gctx := errgroup.WithContext(ctx)
		for name, dep := range deps {
			name, dep := name, dep
			g.Go(func() error {
				status := entities.ServiceStatus{Status: "ok", Details: "reachable"}
				if err := dep.Ping(gctx); err != nil {
					logging.Warn("Health probe failed", "service", name, "error", err.Error())
					status = entities.ServiceStatus{Status: "down", Details: "unreachable"}
				}
				mu.Lock()
				services[name] = status
				mu.Unlock()
				return nil
			})
		}
		_ = g.Wait()

		overallStatus := "ok"
		for _, svc := range services {
			if svc.Status != "ok" {
				overallStatus = "down"
				break
			}
		}

		resp := entities.HealthCheckResponse{
			Services: services,
			Status:   overallStatus,
			UpSince:  upSince,
			Uptime:   time.Since(upSince).Round(time.Second).String(),
		}

		code := http.StatusOK
		if overallStatus != "ok" {
			code = http.StatusServiceUnavailable
		}
		common.WriteJSON(w, code, resp)
	}
}
