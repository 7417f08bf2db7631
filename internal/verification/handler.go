package verification

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/pollgate/pollgate/internal/token"
)

// Handler exposes the verification handshake over HTTP.
type Handler struct {
	gate   *Gate
	tokens *token.Signer
}

// NewHandler constructs a verification HTTP handler.
func NewHandler(gate *Gate, tokens *token.Signer) *Handler {
	return &Handler{gate: gate, tokens: tokens}
}

type startRequest struct {
	PollCode string `json:"poll_code"`
	Name     string `json:"name"`
	Phone    string `json:"phone"`
}

type submitRequest struct {
	Code string `json:"code"`
}

type sessionResponse struct {
	SessionID        string `json:"session_id"`
	State            string `json:"state"`
	RemainingSeconds int    `json:"remaining_seconds"`
}

// Start begins a session: roster check, code send, countdown.
func (h *Handler) Start(c *fiber.Ctx) error {
	var req startRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if req.PollCode == "" || req.Name == "" || req.Phone == "" {
		return fiber.NewError(http.StatusBadRequest, "poll_code, name and phone are required")
	}

	s, err := h.gate.Begin(c.UserContext(), req.PollCode, req.Name, req.Phone)
	if err != nil {
		return mapError(err)
	}

	return c.Status(http.StatusCreated).JSON(sessionResponse{
		SessionID:        s.ID,
		State:            s.State(),
		RemainingSeconds: remainingSeconds(s),
	})
}

// Submit checks one code; on success it returns the poll access token.
func (h *Handler) Submit(c *fiber.Ctx) error {
	var req submitRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	accessToken, err := h.gate.Submit(c.UserContext(), c.Params("id"), req.Code)
	if err != nil {
		return mapError(err)
	}

	return c.Status(http.StatusOK).JSON(fiber.Map{
		"state":             StateVerified,
		"poll_access_token": accessToken,
	})
}

// Status reports session state and the remaining window.
func (h *Handler) Status(c *fiber.Ctx) error {
	s, err := h.gate.Session(c.Params("id"))
	if err != nil {
		return mapError(err)
	}
	return c.Status(http.StatusOK).JSON(sessionResponse{
		SessionID:        s.ID,
		State:            s.State(),
		RemainingSeconds: remainingSeconds(s),
	})
}

// Cancel aborts a session through the expiry cleanup path.
func (h *Handler) Cancel(c *fiber.Ctx) error {
	if err := h.gate.Cancel(c.Params("id")); err != nil {
		return mapError(err)
	}
	return c.SendStatus(http.StatusNoContent)
}

// Detail serves the poll data a verified session unlocked. The bearer token
// issued on Submit must match the session in the path.
func (h *Handler) Detail(c *fiber.Ctx) error {
	authz := c.Get(fiber.HeaderAuthorization)
	if !strings.HasPrefix(strings.ToLower(authz), "bearer ") {
		return fiber.NewError(http.StatusUnauthorized, "missing bearer token")
	}
	sessionID, pollCode, err := h.tokens.VerifyPollAccess(strings.TrimSpace(authz[len("Bearer "):]))
	if err != nil {
		return fiber.NewError(http.StatusUnauthorized, "invalid token")
	}
	if sessionID != c.Params("id") {
		return fiber.NewError(http.StatusUnauthorized, "token does not match session")
	}

	info, err := h.gate.PollDetail(c.UserContext(), sessionID)
	if err != nil {
		return mapError(err)
	}
	if info.Code != pollCode {
		return fiber.NewError(http.StatusUnauthorized, "token does not match poll")
	}

	return c.Status(http.StatusOK).JSON(fiber.Map{
		"code":            info.Code,
		"title":           info.Title,
		"description":     info.Description,
		"candidate_count": info.CandidateCount,
		"is_public":       info.IsPublic,
		"created_at":      info.CreatedAt,
	})
}

func remainingSeconds(s *Session) int {
	return int(s.Remaining().Round(time.Second) / time.Second)
}

func mapError(err error) error {
	var perr *ProviderError
	switch {
	case errors.Is(err, ErrUnknownPoll), errors.Is(err, ErrIdentityNotFound), errors.Is(err, ErrSessionNotFound):
		return fiber.NewError(http.StatusNotFound, err.Error())
	case errors.Is(err, ErrSessionActive), errors.Is(err, ErrAlreadyVerified):
		return fiber.NewError(http.StatusConflict, err.Error())
	case errors.Is(err, ErrCodeMismatch), errors.Is(err, ErrNotVerified):
		return fiber.NewError(http.StatusUnauthorized, err.Error())
	case errors.Is(err, ErrSessionExpired):
		return fiber.NewError(http.StatusGone, err.Error())
	case errors.As(err, &perr):
		return fiber.NewError(http.StatusBadGateway, err.Error())
	default:
		return err
	}
}
