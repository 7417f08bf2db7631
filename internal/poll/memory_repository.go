package poll

import (
	"context"
	"sync"
)

type storedPoll struct {
	info         Info
	participants []Participant
}

type memoryRepository struct {
	mu    sync.RWMutex
	polls map[string]storedPoll
}

// NewMemoryRepository builds an in-memory poll store for development and
// tests. CreatePoll carries the same conditional-write contract as the
// Postgres implementation.
func NewMemoryRepository() Repository {
	return &memoryRepository{polls: make(map[string]storedPoll)}
}

func (r *memoryRepository) Exists(_ context.Context, code string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, exists := r.polls[code]
	return exists, nil
}

func (r *memoryRepository) CreatePoll(_ context.Context, info Info, participants []Participant) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.polls[info.Code]; exists {
		return ErrCodeTaken
	}
	copied := make([]Participant, len(participants))
	copy(copied, participants)
	r.polls[info.Code] = storedPoll{info: info, participants: copied}
	return nil
}

func (r *memoryRepository) Get(_ context.Context, code string) (Info, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	stored, ok := r.polls[code]
	if !ok {
		return Info{}, ErrNotFound
	}
	return stored.info, nil
}

func (r *memoryRepository) GetParticipants(_ context.Context, code string) ([]Participant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	stored, ok := r.polls[code]
	if !ok {
		return nil, ErrNotFound
	}
	participants := make([]Participant, len(stored.participants))
	copy(participants, stored.participants)
	return participants, nil
}
