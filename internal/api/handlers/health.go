package handlers

import (
	"net/http"

	"github.com/chordquest/chordquest-api/internal/models"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type HealthHandler struct {
	db *gorm.DB
}

func NewHealthHandler(db *gorm.DB) *HealthHandler {
	return &HealthHandler{db: db}
}

func (h *HealthHandler) HealthCheck(c *gin.Context) {
	dbStatus := "healthy"
	sqlDB, err := h.db.DB()
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":   "unhealthy",
			"database": gin.H{"status": "error: " + err.Error()},
		})
		return
	}

	if err := sqlDB.Ping(); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":   "unhealthy",
			"database": gin.H{"status": "error: " + err.Error()},
		})
		return
	}

	// Verify the stage library table is actually queryable, not just connected.
	var stageCount int64
	if err := h.db.Model(&models.StageRecord{}).Count(&stageCount).Error; err != nil {
		dbStatus = "error: cannot query database - " + err.Error()
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":   "unhealthy",
			"database": gin.H{"status": dbStatus},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   "healthy",
		"database": gin.H{"status": dbStatus, "stage_count": stageCount},
	})
}
