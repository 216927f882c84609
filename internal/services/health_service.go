package services

import (
	"context"
	"os"
	"time"

	"descstats/internal/config"
	"descstats/pkg/contracts"
)

// HealthStatus is the body of the health endpoint.
type HealthStatus struct {
	Status string `json:"status"`
}

// ReadinessStatus reports whether the output directory can be served.
type ReadinessStatus struct {
	Status    string    `json:"status"`
	OutputDir string    `json:"output_dir"`
	Uptime    string    `json:"uptime"`
	Timestamp time.Time `json:"timestamp"`
}

// HealthService answers liveness, readiness and version probes.
type HealthService struct {
	paths     *config.Paths
	startTime time.Time
}

// NewHealthService creates a health service.
func NewHealthService(paths *config.Paths) *HealthService {
	return &HealthService{paths: paths, startTime: time.Now()}
}

// HealthCheck always reports ok while the process serves requests.
func (hs *HealthService) HealthCheck(context.Context) HealthStatus {
	return HealthStatus{Status: "ok"}
}

// ReadinessCheck reports degraded when the output directory is missing.
func (hs *HealthService) ReadinessCheck(context.Context) ReadinessStatus {
	status := "ok"
	if info, err := os.Stat(hs.paths.OutputDir); err != nil || !info.IsDir() {
		status = "degraded"
	}
	return ReadinessStatus{
		Status:    status,
		OutputDir: hs.paths.OutputDir,
		Uptime:    time.Since(hs.startTime).Round(time.Second).String(),
		Timestamp: time.Now().UTC(),
	}
}

// Version returns build information.
func (hs *HealthService) Version() contracts.VersionInfo {
	return contracts.GetVersionInfo()
}
