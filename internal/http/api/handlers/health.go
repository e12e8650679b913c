package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	dbutil "github.com/playerfinder/playerfinder/internal/db"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// HealthHandler reports store reachability.
type HealthHandler struct {
	db *gorm.DB
}

// NewHealthHandler constructs a HealthHandler.
func NewHealthHandler(db *gorm.DB) *HealthHandler {
	return &HealthHandler{db: db}
}

// Healthz pings the database and checks the schema.
func (h *HealthHandler) Healthz(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	sqlDB, errDB := h.db.DB()
	if errDB == nil {
		errDB = sqlDB.PingContext(ctx)
	}
	if errDB != nil {
		log.WithError(errDB).Warn("healthz: database unreachable")
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	if !dbutil.SchemaReady(h.db.WithContext(ctx)) {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "migrations pending"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
