package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/maxviazov/tracker-dashboard/internal/model"
)

// readyTimeout bounds one readiness probe.
const readyTimeout = 2 * time.Second

// Pinger is the minimal contract I need from a repository to check readiness.
type Pinger interface {
	Ping(ctx context.Context) error
}

// objectNamer is implemented by stores that can list their objects. When the
// pinger is one, readiness also waits for the system objects.
type objectNamer interface {
	ObjectNames(ctx context.Context) ([]string, error)
}

var systemObjects = []string{
	model.DynamicAPIsObject,
	model.UserManagementObject,
	model.AlertRulesObject,
	model.AlertFindsObject,
}

// HealthHandler exposes liveness and readiness endpoints.
type HealthHandler struct {
	store   Pinger
	started time.Time
}

func NewHealthHandler(store Pinger) *HealthHandler {
	return &HealthHandler{store: store, started: time.Now()}
}

// Liveness responds OK if the process is up; it doesn't check dependencies.
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": model.StatusSuccess,
		"uptime": time.Since(h.started).Round(time.Second).String(),
	})
}

// Readiness answers 200 once the store responds and is bootstrapped.
func (h *HealthHandler) Readiness(c *gin.Context) {
	if h.store == nil {
		notReady(c, "no store")
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), readyTimeout)
	defer cancel()
	if err := h.store.Ping(ctx); err != nil {
		notReady(c, err.Error())
		return
	}

	n, ok := h.store.(objectNamer)
	if !ok {
		c.JSON(http.StatusOK, gin.H{"status": model.StatusSuccess})
		return
	}
	names, err := n.ObjectNames(ctx)
	if err != nil {
		notReady(c, err.Error())
		return
	}
	have := make(map[string]bool, len(names))
	for _, name := range names {
		have[name] = true
	}
	for _, sys := range systemObjects {
		if !have[sys] {
			notReady(c, "missing system object "+sys)
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": model.StatusSuccess, "objects": len(names)})
}

func notReady(c *gin.Context, why string) {
	c.JSON(http.StatusServiceUnavailable, gin.H{"status": model.StatusFail, "status_description": why})
}
