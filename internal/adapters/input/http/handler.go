package http

import (
	"context"
	"time"

	"restaurant-concierge/internal/ports/output"
	gormDriver "restaurant-concierge/pkg/database_driver/gorm"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const healthTimeout = 2 * time.Second

// HTTPHandler struct - Primary/Driving adapter for plain HTTP endpoints
type HTTPHandler struct {
	db    *gorm.DB
	store output.SessionStore
}

// New func - Creates new HTTP handler. db may be nil when persistence is not wired.
func New(db *gorm.DB, store output.SessionStore) *HTTPHandler {
	return &HTTPHandler{
		db:    db,
		store: store,
	}
}

// HealthCheck godoc
// @Summary Health check
// @Description Database connectivity and number of live booking sessions
// @Tags Health
// @Produce json
// @Success 200 {object} ResponseBody{data=HealthResponse}
// @Failure 503 {object} ResponseBody{data=HealthResponse}
// @Router /health [get]
func (hdl *HTTPHandler) HealthCheck(c *fiber.Ctx) error {
	health := HealthResponse{
		Database:       "disabled",
		ActiveSessions: hdl.store.Count(),
	}

	if hdl.db != nil {
		ctx, cancel := context.WithTimeout(c.UserContext(), healthTimeout)
		defer cancel()
		if err := gormDriver.Ping(ctx, hdl.db); err != nil {
			logrus.Errorln(err)
			health.Database = "down"
			return c.Status(fiber.StatusServiceUnavailable).JSON(ResponseBody{Status: ServiceUnavailable, Data: health})
		}
		health.Database = "up"
	}

	return c.Status(fiber.StatusOK).JSON(ResponseBody{Status: Success, Data: health})
}
