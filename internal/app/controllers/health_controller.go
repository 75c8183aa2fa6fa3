package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yigit/coursereview/internal/app/models/dto"
	"github.com/yigit/coursereview/internal/middleware"
)

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthController serves liveness checks
type HealthController struct {
	db Pinger
}

// NewHealthController creates a new HealthController
func NewHealthController(db Pinger) *HealthController {
	return &HealthController{db: db}
}

// Health reports service and database status
func (c *HealthController) Health(ctx *gin.Context) {
	pingCtx, cancel := context.WithTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()

	if err := c.db.Ping(pingCtx); err != nil {
		detail := dto.NewErrorDetail(dto.ErrorCodeDatabaseError, "Database unavailable").
			WithSeverity(dto.ErrorSeverityCritical)
		middleware.RespondWithError(ctx, http.StatusServiceUnavailable, detail)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(gin.H{"status": "ok"}, ""))
}
