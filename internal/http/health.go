package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/hardbound/bookshelf/internal/database"
)

// HealthResponse reports service liveness and the state of the catalogue
// store. Status is "ok" unless a dependency check fails.
type HealthResponse struct {
	Status   string `json:"status"`
	Version  string `json:"version,omitempty"`
	Uptime   string `json:"uptime"`
	Database string `json:"database"`
}

type HealthController struct {
	db      *database.Database
	version string
	started time.Time
}

func NewHealthController(db *database.Database, version string) *HealthController {
	return &HealthController{
		db:      db,
		version: version,
		started: time.Now(),
	}
}

// Status handles GET /health. Answers 503 when the catalogue store does not
// respond to a ping.
func (h *HealthController) Status(c *gin.Context) {
	response := HealthResponse{
		Status:   "ok",
		Version:  h.version,
		Uptime:   time.Since(h.started).Round(time.Second).String(),
		Database: "ok",
	}

	if h.db == nil {
		response.Database = "not configured"
	} else if err := h.pingDatabase(); err != nil {
		response.Status = "degraded"
		response.Database = "error: " + err.Error()
	}

	statusCode := http.StatusOK
	if response.Status != "ok" {
		statusCode = http.StatusServiceUnavailable
	}
	c.JSON(statusCode, response)
}

func (h *HealthController) pingDatabase() error {
	sqlDB, err := h.db.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}
