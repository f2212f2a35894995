package rest

import (
	"context"
	"time"

	"github.com/AzielCF/az-settings/core/settings/domain"
	"github.com/AzielCF/az-settings/pkg/utils"
	"github.com/gofiber/fiber/v2"
)

type Health struct {
	Storage  domain.ISettingsRepository
	Backend  string
	ServerID string
	Store    domain.ISettingsStore
}

type HealthStatus struct {
	ServerID    string     `json:"server_id"`
	Backend     string     `json:"backend"`
	Storage     string     `json:"storage"` // ok | error | unchecked
	Error       string     `json:"error,omitempty"`
	LastSavedAt *time.Time `json:"last_saved_at,omitempty"`
	Revision    uint64     `json:"revision"`
}

func InitRestHealth(app fiber.Router, store domain.ISettingsStore, storage domain.ISettingsRepository, backend, serverID string) Health {
	handler := Health{Storage: storage, Backend: backend, ServerID: serverID, Store: store}

	group := app.Group("/health")
	group.Get("/status", handler.GetStatus)

	return handler
}

func (h *Health) GetStatus(c *fiber.Ctx) error {
	status := HealthStatus{
		ServerID: h.ServerID,
		Backend:  h.Backend,
		Storage:  "unchecked",
		Revision: h.Store.GetState().Revision,
	}
	if saved := h.Store.LastSavedAt(); !saved.IsZero() {
		status.LastSavedAt = &saved
	}

	if pinger, ok := h.Storage.(domain.Pinger); ok {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if err := pinger.Ping(ctx); err != nil {
			status.Storage = "error"
			status.Error = err.Error()
			return c.Status(503).JSON(utils.ResponseData{
				Status:  503,
				Code:    "SERVICE_UNAVAILABLE",
				Message: "Storage backend unreachable",
				Results: status,
			})
		}
		status.Storage = "ok"
	}

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Health status retrieved",
		Results: status,
	})
}
