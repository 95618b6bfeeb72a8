package handler

import (
	"errors"
	"net/http"
	"runtime"
	"time"

	"github.com/erp/contracts/internal/infrastructure/scheduler"
	"github.com/erp/contracts/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// Pinger reports whether a backing store is reachable
type Pinger interface {
	Ping() error
}

// SystemHandler handles health and operational endpoints
type SystemHandler struct {
	BaseHandler
	db        Pinger
	scheduler *scheduler.ConsumptionCronScheduler
	startTime time.Time
}

// NewSystemHandler creates a new SystemHandler. The scheduler may be nil when
// scheduling is disabled.
func NewSystemHandler(db Pinger, sched *scheduler.ConsumptionCronScheduler) *SystemHandler {
	return &SystemHandler{
		db:        db,
		scheduler: sched,
		startTime: time.Now(),
	}
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string `json:"status"`
	GoVersion string `json:"go_version"`
	Uptime    string `json:"uptime"`
}

// Health reports basic liveness
func (h *SystemHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:    "ok",
		GoVersion: runtime.Version(),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
	})
}

// Ready reports readiness, checking the database connection
func (h *SystemHandler) Ready(c *gin.Context) {
	if err := h.db.Ping(); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "unavailable",
			"reason": "database unreachable",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}

// SchedulerStatus reports the consumption scheduler state
func (h *SystemHandler) SchedulerStatus(c *gin.Context) {
	if h.scheduler == nil {
		h.Success(c, gin.H{"enabled": false})
		return
	}
	h.Success(c, h.scheduler.GetStatus())
}

// SchedulerTrigger starts a manual consumption run across all tenants
func (h *SystemHandler) SchedulerTrigger(c *gin.Context) {
	if h.scheduler == nil {
		h.Error(c, http.StatusConflict, "SCHEDULER_DISABLED", "The consumption scheduler is not enabled")
		return
	}

	if err := h.scheduler.TriggerManualRun(c.Request.Context()); err != nil {
		if errors.Is(err, scheduler.ErrSchedulerNotRunning) {
			h.Error(c, http.StatusConflict, "SCHEDULER_NOT_RUNNING", "The consumption scheduler is not running")
			return
		}
		h.HandleError(c, err)
		return
	}

	c.JSON(http.StatusAccepted, dto.NewSuccessResponse(gin.H{"triggered": true}))
}
