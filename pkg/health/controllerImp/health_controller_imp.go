package controllerImp

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

var appStart = time.Now()

// Engine reports whether the simulation ticker is active.
type Engine interface {
	Running() bool
}

type HealthCtrl struct {
	db      *gorm.DB
	eng     Engine
	backend string
}

// NewHealthCtrl checks db and eng; backend names the AI client in the output.
func NewHealthCtrl(db *gorm.DB, eng Engine, backend string) *HealthCtrl {
	return &HealthCtrl{db: db, eng: eng, backend: backend}
}

type sub struct {
	OK  bool   `json:"ok"`
	Err string `json:"err,omitempty"`
}

func (h *HealthCtrl) Health(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 800*time.Millisecond)
	defer cancel()

	db := sub{OK: true}
	if h.db != nil {
		sqlDB, err := h.db.DB()
		if err != nil {
			db = sub{Err: "db.DB(): " + err.Error()}
		} else if err := sqlDB.PingContext(ctx); err != nil {
			db = sub{Err: "ping: " + err.Error()}
		}
	} else {
		db = sub{Err: "gorm db is nil"}
	}

	sim := sub{OK: h.eng != nil && h.eng.Running()}
	if !sim.OK {
		sim.Err = "simulation not running"
	}

	allOK := db.OK && sim.OK
	status := http.StatusOK
	if !allOK {
		status = http.StatusServiceUnavailable
	}

	return c.JSON(status, map[string]any{
		"status":     map[string]any{"ok": allOK},
		"uptime_sec": int(time.Since(appStart).Seconds()),
		"checks": map[string]any{
			"database":   db,
			"simulation": sim,
		},
		"ai_backend": h.backend,
		"time":       time.Now().Format(time.RFC3339),
	})
}
