package handlers

import (
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/duograph/duograph"
)

// Build information - can be set at build time using ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
	GoVersion = runtime.Version()
)

// HealthHandler handles health check requests
type HealthHandler struct {
	client duograph.Duograph
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(client duograph.Duograph) *HealthHandler {
	return &HealthHandler{client: client}
}

// HealthCheck handles GET /health - basic liveness check
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"service":   "duograph",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"version":   Version,
	})
}

// LivenessCheck handles GET /live - Kubernetes liveness probe endpoint
func (h *HealthHandler) LivenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "alive",
		"service":   "duograph",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// ReadinessCheck handles GET /ready. A retrieval probe exercises both
// backing stores and the embedder in one call.
func (h *HealthHandler) ReadinessCheck(c *gin.Context) {
	ctx, cancel := contextWithTimeout(c, 5*time.Second)
	defer cancel()

	checks := gin.H{}
	allHealthy := true

	if h.client != nil {
		probeStart := time.Now()
		_, err := h.client.Retrieve(ctx, "readiness-probe", nil)
		probeDuration := time.Since(probeStart)

		if err != nil && ctx.Err() != nil {
			checks["stores"] = gin.H{
				"status":   "unhealthy",
				"error":    "store probe timeout",
				"duration": probeDuration.String(),
			}
			allHealthy = false
		} else if err != nil {
			checks["stores"] = gin.H{
				"status":   "unhealthy",
				"error":    err.Error(),
				"duration": probeDuration.String(),
			}
			allHealthy = false
		} else {
			checks["stores"] = gin.H{
				"status":   "healthy",
				"duration": probeDuration.String(),
			}
		}
	} else {
		checks["stores"] = gin.H{
			"status": "unhealthy",
			"error":  "client not initialized",
		}
		allHealthy = false
	}

	response := gin.H{
		"status":    "ready",
		"service":   "duograph",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"checks":    checks,
	}
	if !allHealthy {
		response["status"] = "not_ready"
		c.JSON(http.StatusServiceUnavailable, response)
		return
	}
	c.JSON(http.StatusOK, response)
}

// DetailedHealthCheck handles GET /health/detailed
func (h *HealthHandler) DetailedHealthCheck(c *gin.Context) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	pending := 0
	if h.client != nil {
		if entries, err := h.client.PendingRepairs(); err == nil {
			pending = len(entries)
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "duograph",
		"version": Version,
		"build_info": gin.H{
			"git_commit": GitCommit,
			"build_time": BuildTime,
		},
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"environment": gin.H{
			"go_version": GoVersion,
		},
		"system": gin.H{
			"goroutines":   runtime.NumGoroutine(),
			"heap_objects": m.HeapObjects,
			"gc_cycles":    m.NumGC,
		},
		"pending_repairs": pending,
	})
}
