package handlers

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/shift-scheduler/internal/persistence"
)

// HealthHandler responds to liveness and readiness probes.
type HealthHandler struct {
	serviceName string
	version     string
	postgres    *persistence.Postgres
	redis       *persistence.Redis
	startedAt   time.Time
}

// NewHealthHandler returns a new handler instance.
func NewHealthHandler(serviceName, version string, postgres *persistence.Postgres, redis *persistence.Redis) *HealthHandler {
	return &HealthHandler{
		serviceName: serviceName,
		version:     version,
		postgres:    postgres,
		redis:       redis,
		startedAt:   time.Now().UTC(),
	}
}

// Live reports service liveness.
func (h *HealthHandler) Live(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "alive",
		"service": h.serviceName,
		"version": h.version,
		"uptime":  time.Since(h.startedAt).Round(time.Second).String(),
	})
}

// Ready reports service readiness. Besides pinging postgres and redis it
// verifies the schedules relation exists, so an instance booted against an
// unmigrated database turns unready here instead of failing its first
// generation call.
func (h *HealthHandler) Ready(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	depStatus := fiber.Map{}
	ready := true

	if err := h.postgres.Ping(ctx); err != nil {
		depStatus["postgres"] = err.Error()
		ready = false
	} else {
		depStatus["postgres"] = "ok"

		if err := h.scheduleStoreReady(ctx); err != nil {
			depStatus["schedule_store"] = err.Error()
			ready = false
		} else {
			depStatus["schedule_store"] = "ok"
		}
	}

	if err := h.redis.Ping(ctx); err != nil {
		depStatus["redis"] = err.Error()
		ready = false
	} else {
		depStatus["redis"] = "ok"
	}

	if ready {
		return c.JSON(fiber.Map{
			"status":       "ready",
			"dependencies": depStatus,
		})
	}

	return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
		"error": fiber.Map{
			"code":    "DEPENDENCY_UNAVAILABLE",
			"message": "one or more dependencies unavailable",
			"details": depStatus,
		},
	})
}

// scheduleStoreReady checks that the schedules relation is present.
func (h *HealthHandler) scheduleStoreReady(ctx context.Context) error {
	pool := h.postgres.PoolHandle()
	if pool == nil {
		return errors.New("postgres pool not configured")
	}

	var relation *string
	if err := pool.QueryRow(ctx, "SELECT to_regclass('schedules')").Scan(&relation); err != nil {
		return err
	}
	if relation == nil {
		return errors.New("schedules relation missing; migrations have not run")
	}
	return nil
}
