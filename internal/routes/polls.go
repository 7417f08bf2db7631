package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/pollgate/pollgate/internal/middleware"
	"github.com/pollgate/pollgate/internal/poll"
)

// RegisterPollRoutes wires poll creation and public summary endpoints.
// Creation is retry-safe behind the idempotency middleware when Redis is up:
// resending the same Idempotency-Key returns the originally allocated code.
func RegisterPollRoutes(r fiber.Router, h *poll.Handler, d Deps) {
	group := r.Group("/polls")
	if d.Cache != nil {
		group.Use(middleware.Idempotency(d.Cache, d.Cfg.IdempotencyTTL, d.Logger))
	}

	group.Post("", h.Create)
	group.Post("/import", h.Import)
	group.Get("/:code", h.Summary)
}
