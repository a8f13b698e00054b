package handler

import (
	"context"
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/pankajcr7/flipkart-clone/infra/conn"
	"github.com/pankajcr7/flipkart-clone/infra/response"
	"github.com/pankajcr7/flipkart-clone/provider"
)

// HealthHandler handles health check requests
type HealthHandler struct {
	db        *conn.DB
	startTime time.Time
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(db *conn.DB) *HealthHandler {
	return &HealthHandler{
		db:        db,
		startTime: time.Now(),
	}
}

// HealthStatus represents overall system health
type HealthStatus struct {
	Status    string          `json:"status"`
	Timestamp time.Time       `json:"timestamp"`
	Uptime    string          `json:"uptime"`
	Database  *DatabaseHealth `json:"database"`
	Gateways  []string        `json:"gateways"`
	System    *SystemHealth   `json:"system"`
}

// DatabaseHealth represents database health status
type DatabaseHealth struct {
	Status       string `json:"status"`
	Connected    bool   `json:"connected"`
	ResponseTime string `json:"response_time"`
	Error        string `json:"error,omitempty"`
}

// SystemHealth represents process resource usage
type SystemHealth struct {
	Alloc      string `json:"alloc"`
	Sys        string `json:"sys"`
	GCRuns     uint32 `json:"gc_runs"`
	GoRoutines int    `json:"goroutines"`
}

// Check reports the health of the service and its dependencies
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := &HealthStatus{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
		Database:  h.checkDatabase(ctx),
		Gateways:  provider.DefaultRegistry.GetGatewayNames(),
		System:    systemHealth(),
	}

	httpStatus := http.StatusOK
	if !status.Database.Connected {
		status.Status = "degraded"
		httpStatus = http.StatusServiceUnavailable
	}

	_ = response.WriteJSON(w, httpStatus, status)
}

func (h *HealthHandler) checkDatabase(ctx context.Context) *DatabaseHealth {
	health := &DatabaseHealth{Status: "healthy", Connected: true}

	if h.db == nil || h.db.DB == nil {
		health.Status = "unhealthy"
		health.Connected = false
		health.Error = "database not connected"
		return health
	}

	start := time.Now()
	if err := h.db.PingContext(ctx); err != nil {
		health.Status = "unhealthy"
		health.Connected = false
		health.Error = err.Error()
	}
	health.ResponseTime = time.Since(start).Round(time.Microsecond).String()

	return health
}

func systemHealth() *SystemHealth {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	return &SystemHealth{
		Alloc:      formatBytes(m.Alloc),
		Sys:        formatBytes(m.Sys),
		GCRuns:     m.NumGC,
		GoRoutines: runtime.NumGoroutine(),
	}
}

func formatBytes(b uint64) string {
	const unit = 1024
	if b < unit {
		return fmt.Sprintf("%d B", b)
	}
	div, exp := uint64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(b)/float64(div), "KMGTPE"[exp])
}
