package handler

import (
	"net/http"
	"time"

	"maestro/pkg/storage"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type HealthHandler struct {
	db      *gorm.DB
	storage storage.FileStorage
}

func NewHealthHandler(db *gorm.DB, fs storage.FileStorage) *HealthHandler {
	return &HealthHandler{db: db, storage: fs}
}

func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "time": time.Now().UTC()})
}

// Readiness checks the database and blob store. Either failing flags the
// instance unhealthy.
func (h *HealthHandler) Readiness(c *gin.Context) {
	checks := gin.H{}
	healthy := true

	sqlDB, err := h.db.DB()
	if err == nil {
		err = sqlDB.PingContext(c.Request.Context())
	}
	if err != nil {
		checks["database"] = "down"
		healthy = false
	} else {
		checks["database"] = "up"
	}

	if h.storage.TestConnection(c.Request.Context()) {
		checks["storage"] = "up"
	} else {
		checks["storage"] = "down"
		healthy = false
	}

	status := http.StatusOK
	if !healthy {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, gin.H{"healthy": healthy, "checks": checks})
}
