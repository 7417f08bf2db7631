package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/pollgate/pollgate/internal/middleware"
	"github.com/pollgate/pollgate/internal/verification"
)

// RegisterVerificationRoutes wires the verification handshake. Only the code
// send is rate limited; resubmission within an open session stays unlimited.
func RegisterVerificationRoutes(r fiber.Router, h *verification.Handler, d Deps) {
	sendLimiter := middleware.SendRateLimit(d.Cache, d.Cfg.SendPerMin)

	r.Post("/verification", sendLimiter, h.Start)
	r.Get("/verification/:id", h.Status)
	r.Post("/verification/:id/code", h.Submit)
	r.Delete("/verification/:id", h.Cancel)
	r.Get("/verification/:id/poll", h.Detail)
}
