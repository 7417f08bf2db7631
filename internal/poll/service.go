package poll

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"time"

	"github.com/google/uuid"

	"github.com/pollgate/pollgate/internal/phone"
)

// ErrInvalidInput wraps every validation failure on poll creation.
var ErrInvalidInput = errors.New("invalid poll input")

// Title and description accept Unicode letters and spaces only, with the
// same length bounds the client enforces.
var (
	titlePattern       = regexp.MustCompile(`^[\p{L} ]{2,20}$`)
	descriptionPattern = regexp.MustCompile(`^[\p{L} ]{5,200}$`)
)

// Service creates polls and serves their metadata.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

// NewService constructs a poll service.
func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// Create validates the input, normalizes the roster and stores the poll
// under a freshly allocated unique code.
//
// The existence probe before the write is an optimization only; the
// conditional CreatePoll decides who wins a race for the same drawn code.
// A lost write redraws after a short backoff, up to maxAllocateAttempts.
func (s *Service) Create(ctx context.Context, input CreateInput) (Info, error) {
	if err := validate(input); err != nil {
		return Info{}, err
	}

	participants := make([]Participant, 0, len(input.Participants))
	for _, p := range input.Participants {
		participants = append(participants, Participant{
			ID:          uuid.NewString(),
			Name:        p.Name,
			Phone:       phone.Normalize(p.Phone),
			Affiliation: p.Affiliation,
			StudentID:   p.StudentID,
		})
	}

	backoff := 10 * time.Millisecond
	const maxBackoff = 250 * time.Millisecond
	for attempt := 1; attempt <= maxAllocateAttempts; attempt++ {
		code, err := randomCode()
		if err != nil {
			return Info{}, err
		}

		taken, err := s.repo.Exists(ctx, code)
		if err != nil {
			return Info{}, err
		}
		if taken {
			continue
		}

		info := Info{
			Code:           code,
			Title:          input.Title,
			Description:    input.Description,
			CandidateCount: input.CandidateCount,
			IsPublic:       input.IsPublic,
			CreatedAt:      time.Now().UTC(),
		}

		err = s.repo.CreatePoll(ctx, info, participants)
		if err == nil {
			s.logger.Info("poll created", "code", code, "participants", len(participants), "public", info.IsPublic)
			return info, nil
		}
		if !errors.Is(err, ErrCodeTaken) {
			return Info{}, err
		}

		s.logger.Warn("poll code conflict, redrawing", "code", code, "attempt", attempt)
		select {
		case <-ctx.Done():
			return Info{}, ctx.Err()
		case <-time.After(backoff):
		}
		if backoff *= 2; backoff > maxBackoff {
			backoff = maxBackoff
		}
	}

	return Info{}, ErrAllocationExhausted
}

// Get fetches poll metadata by code.
func (s *Service) Get(ctx context.Context, code string) (Info, error) {
	return s.repo.Get(ctx, code)
}

func validate(input CreateInput) error {
	if !titlePattern.MatchString(input.Title) {
		return fmt.Errorf("%w: title must be 2-20 letters or spaces", ErrInvalidInput)
	}
	if !descriptionPattern.MatchString(input.Description) {
		return fmt.Errorf("%w: description must be 5-200 letters or spaces", ErrInvalidInput)
	}
	if input.CandidateCount < 1 || input.CandidateCount > 10 {
		return fmt.Errorf("%w: candidate count must be between 1 and 10", ErrInvalidInput)
	}
	if len(input.Participants) == 0 {
		return fmt.Errorf("%w: at least one participant is required", ErrInvalidInput)
	}
	for i, p := range input.Participants {
		if p.Name == "" || p.Phone == "" {
			return fmt.Errorf("%w: participant %d is missing name or phone", ErrInvalidInput, i+1)
		}
	}
	return nil
}
