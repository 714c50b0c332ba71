// Package handler provides HTTP handlers for the RotaGuia API.
package handler

import (
	"net/http"
	"time"

	"github.com/rotaguia/rotaguia/internal/api/models"
	"github.com/rotaguia/rotaguia/internal/api/response"
	"github.com/rotaguia/rotaguia/internal/guide"
)

// ProviderHealth reports the health of an external geocoding provider.
type ProviderHealth interface {
	Name() string
	Healthy() bool
	CircuitState() string
}

// OpsHandler handles operational endpoints.
type OpsHandler struct {
	version   string
	buildTime string
	guide     *guide.Service
	providers []ProviderHealth
}

// NewOpsHandler creates a new OpsHandler.
func NewOpsHandler(version, buildTime string, guideService *guide.Service, providers ...ProviderHealth) *OpsHandler {
	return &OpsHandler{
		version:   version,
		buildTime: buildTime,
		guide:     guideService,
		providers: providers,
	}
}

// HealthCheck handles GET /v1/ops/health - liveness check.
func (h *OpsHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	health := models.Health{
		Status: models.HealthStatusOK,
		Time:   models.Timestamp(time.Now()),
		Details: map[string]interface{}{
			"version":   h.version,
			"buildTime": h.buildTime,
		},
	}
	response.JSON(w, r, http.StatusOK, health)
}

// ReadinessCheck handles GET /v1/ops/ready - readiness check. The service
// is still ready when the geocoding circuit is open: fixes are accepted and
// only address resolution degrades.
func (h *OpsHandler) ReadinessCheck(w http.ResponseWriter, r *http.Request) {
	status := models.HealthStatusOK
	for _, p := range h.providers {
		if !p.Healthy() {
			status = models.HealthStatusDegraded
		}
	}

	health := models.Health{
		Status: status,
		Time:   models.Timestamp(time.Now()),
	}
	response.JSON(w, r, http.StatusOK, health)
}

// SystemStatus handles GET /v1/ops/status - subsystem and provider status.
func (h *OpsHandler) SystemStatus(w http.ResponseWriter, r *http.Request) {
	now := models.Timestamp(time.Now())

	overall := models.HealthStatusOK
	providers := make([]models.ProviderStatus, 0, len(h.providers))
	for _, p := range h.providers {
		ps := models.ProviderStatus{
			Provider:     p.Name(),
			Status:       models.HealthStatusOK,
			CircuitState: p.CircuitState(),
		}
		if !p.Healthy() {
			ps.Status = models.HealthStatusDegraded
			overall = models.HealthStatusDegraded
		}
		providers = append(providers, ps)
	}

	status := models.SystemStatus{
		Status: overall,
		Time:   now,
		Subsystems: []models.SubsystemStatus{
			{Name: "tracker", Status: models.HealthStatusOK},
		},
		Providers: providers,
		Cache:     h.guide.CacheStats(),
	}
	response.JSON(w, r, http.StatusOK, status)
}
