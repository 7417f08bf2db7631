package poll

import (
	"context"
	"errors"
)

var (
	// ErrNotFound indicates an unknown poll code.
	ErrNotFound = errors.New("poll not found")
	// ErrCodeTaken indicates the conditional create lost to a concurrent
	// poll using the same code. Retryable with a fresh draw.
	ErrCodeTaken = errors.New("poll code already taken")
)

// Repository persists polls and their rosters.
//
// CreatePoll must be conditional on the code being absent and report
// ErrCodeTaken otherwise; that write, not the Exists probe, is what makes
// code allocation race-safe.
type Repository interface {
	Exists(ctx context.Context, code string) (bool, error)
	CreatePoll(ctx context.Context, info Info, participants []Participant) error
	Get(ctx context.Context, code string) (Info, error)
	GetParticipants(ctx context.Context, code string) ([]Participant, error)
}
