package poll

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/pollgate/pollgate/internal/roster"
)

// Handler exposes poll endpoints.
type Handler struct {
	service *Service
}

// NewHandler constructs a poll HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type participantPayload struct {
	Name        string `json:"name"`
	Phone       string `json:"phone"`
	Affiliation string `json:"affiliation,omitempty"`
	StudentID   string `json:"student_id,omitempty"`
}

type createRequest struct {
	Title          string               `json:"title"`
	Description    string               `json:"description"`
	CandidateCount int                  `json:"candidate_count"`
	IsPublic       bool                 `json:"is_public"`
	Participants   []participantPayload `json:"participants"`
}

type importRequest struct {
	Title          string `json:"title"`
	Description    string `json:"description"`
	CandidateCount int    `json:"candidate_count"`
	IsPublic       bool   `json:"is_public"`
	Roster         string `json:"roster"`
}

type createResponse struct {
	Code           string    `json:"code"`
	Title          string    `json:"title"`
	CandidateCount int       `json:"candidate_count"`
	IsPublic       bool      `json:"is_public"`
	Participants   int       `json:"participants"`
	CreatedAt      time.Time `json:"created_at"`
}

// Create handles poll creation with a manually entered roster.
func (h *Handler) Create(c *fiber.Ctx) error {
	var req createRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	input := CreateInput{
		Title:          req.Title,
		Description:    req.Description,
		CandidateCount: req.CandidateCount,
		IsPublic:       req.IsPublic,
	}
	for _, p := range req.Participants {
		input.Participants = append(input.Participants, ParticipantInput(p))
	}

	return h.create(c, input)
}

// Import handles poll creation from a delimited roster payload.
func (h *Handler) Import(c *fiber.Ctx) error {
	var req importRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	records, err := roster.Parse(strings.NewReader(req.Roster))
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	entries, err := roster.Entries(records)
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}

	input := CreateInput{
		Title:          req.Title,
		Description:    req.Description,
		CandidateCount: req.CandidateCount,
		IsPublic:       req.IsPublic,
	}
	for _, e := range entries {
		input.Participants = append(input.Participants, ParticipantInput(e))
	}

	return h.create(c, input)
}

func (h *Handler) create(c *fiber.Ctx, input CreateInput) error {
	info, err := h.service.Create(c.UserContext(), input)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidInput):
			return fiber.NewError(http.StatusBadRequest, err.Error())
		case errors.Is(err, ErrAllocationExhausted):
			return fiber.NewError(http.StatusServiceUnavailable, err.Error())
		default:
			return err
		}
	}

	return c.Status(http.StatusCreated).JSON(createResponse{
		Code:           info.Code,
		Title:          info.Title,
		CandidateCount: info.CandidateCount,
		IsPublic:       info.IsPublic,
		Participants:   len(input.Participants),
		CreatedAt:      info.CreatedAt,
	})
}

// Summary returns public metadata for a poll code. Private polls only
// acknowledge that the code exists; their detail stays behind verification.
func (h *Handler) Summary(c *fiber.Ctx) error {
	code := c.Params("code")
	info, err := h.service.Get(c.UserContext(), code)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return fiber.NewError(http.StatusNotFound, "unknown poll code")
		}
		return err
	}

	if !info.IsPublic {
		return c.Status(http.StatusOK).JSON(fiber.Map{
			"code":      info.Code,
			"is_public": false,
		})
	}

	return c.Status(http.StatusOK).JSON(fiber.Map{
		"code":            info.Code,
		"title":           info.Title,
		"description":     info.Description,
		"candidate_count": info.CandidateCount,
		"is_public":       true,
		"created_at":      info.CreatedAt,
	})
}
