package verification

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pollgate/pollgate/internal/phone"
	"github.com/pollgate/pollgate/internal/poll"
	"github.com/pollgate/pollgate/internal/token"
)

// Config tunes the gate's timing. Zero values get production defaults; tests
// shrink both to keep runs fast.
type Config struct {
	SessionTTL   time.Duration
	TickInterval time.Duration
}

const (
	defaultSessionTTL   = 60 * time.Second
	defaultTickInterval = time.Second

	// terminalRetention keeps finished sessions queryable for status reads
	// before pruning.
	terminalRetention = 10 * time.Minute
)

// Gate runs the verification handshake that stands between a claimed
// identity and a poll's detail data.
type Gate struct {
	polls    poll.Repository
	provider Provider
	tokens   *token.Signer
	cfg      Config
	logger   *slog.Logger

	mu         sync.Mutex
	sessions   map[string]*Session // by session ID
	byIdentity map[string]*Session // by (poll, name, phone)
}

// NewGate constructs a Gate.
func NewGate(polls poll.Repository, provider Provider, tokens *token.Signer, cfg Config, logger *slog.Logger) *Gate {
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = defaultSessionTTL
	}
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = defaultTickInterval
	}
	return &Gate{
		polls:      polls,
		provider:   provider,
		tokens:     tokens,
		cfg:        cfg,
		logger:     logger,
		sessions:   make(map[string]*Session),
		byIdentity: make(map[string]*Session),
	}
}

// Begin opens a verification session for (pollCode, name, phone).
//
// The roster check happens before anything else: an unknown code or an
// unmatched identity never triggers a code send. A matched identity gets
// exactly one send, after which the 1 Hz countdown runs until the code is
// verified, the session is canceled, or the window closes.
func (g *Gate) Begin(ctx context.Context, pollCode, name, rawPhone string) (*Session, error) {
	participants, err := g.polls.GetParticipants(ctx, pollCode)
	if err != nil {
		if errors.Is(err, poll.ErrNotFound) {
			return nil, ErrUnknownPoll
		}
		return nil, err
	}

	normalized := phone.Normalize(rawPhone)
	matched := false
	for _, p := range participants {
		if p.Name == name && p.Phone == normalized {
			matched = true
			break
		}
	}
	if !matched {
		return nil, ErrIdentityNotFound
	}

	s := &Session{
		ID:       uuid.NewString(),
		PollCode: pollCode,
		Name:     name,
		Phone:    normalized,
		provider: g.provider,
		logger:   g.logger,
		state:    StateCodeRequested,
		done:     make(chan struct{}),
	}

	// Reserve the identity before sending so a concurrent Begin for the
	// same identity cannot trigger a second send. The session only becomes
	// reachable by ID once the send succeeded and the deadline is set, so a
	// status read never observes it half-built.
	key := identityKey(pollCode, name, normalized)
	g.mu.Lock()
	g.pruneLocked()
	if existing, ok := g.byIdentity[key]; ok && existing.State() == StateCodeRequested {
		g.mu.Unlock()
		return nil, ErrSessionActive
	}
	g.byIdentity[key] = s
	g.mu.Unlock()

	challengeID, err := g.provider.SendCode(ctx, normalized)
	if err != nil {
		g.mu.Lock()
		delete(g.byIdentity, key)
		g.mu.Unlock()
		var perr *ProviderError
		if errors.As(err, &perr) {
			return nil, err
		}
		return nil, &ProviderError{Op: "send", Err: err}
	}

	// Not yet reachable by ID and the identity map is only consulted for
	// State(), so plain field writes are safe here.
	now := time.Now()
	s.challengeID = challengeID
	s.CreatedAt = now
	s.Deadline = now.Add(g.cfg.SessionTTL)

	g.mu.Lock()
	g.sessions[s.ID] = s
	g.mu.Unlock()

	go s.countdown(g.cfg.TickInterval)

	g.logger.Info("verification code sent",
		"session_id", s.ID, "poll_code", pollCode, "phone", normalized)
	return s, nil
}

// Session looks up a session by ID.
func (g *Gate) Session(id string) (*Session, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	s, ok := g.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// Submit forwards one code to the session and, on success, issues the signed
// token that unlocks the poll's detail data.
func (g *Gate) Submit(ctx context.Context, sessionID, code string) (string, error) {
	s, err := g.Session(sessionID)
	if err != nil {
		return "", err
	}
	if err := s.Submit(ctx, code); err != nil {
		return "", err
	}
	return g.tokens.IssuePollAccess(s.ID, s.PollCode)
}

// Cancel aborts a session; the cleanup path is the same as expiry.
func (g *Gate) Cancel(sessionID string) error {
	s, err := g.Session(sessionID)
	if err != nil {
		return err
	}
	s.Cancel()
	return nil
}

// PollDetail returns the poll metadata a verified session unlocked.
func (g *Gate) PollDetail(ctx context.Context, sessionID string) (poll.Info, error) {
	s, err := g.Session(sessionID)
	if err != nil {
		return poll.Info{}, err
	}
	if s.State() != StateVerified {
		return poll.Info{}, ErrNotVerified
	}
	return g.polls.Get(ctx, s.PollCode)
}

func identityKey(pollCode, name, normalizedPhone string) string {
	return pollCode + "|" + name + "|" + normalizedPhone
}

// pruneLocked drops terminal sessions whose retention window passed. Callers
// hold g.mu.
func (g *Gate) pruneLocked() {
	cutoff := time.Now().Add(-terminalRetention)
	for id, s := range g.sessions {
		if s.State() == StateCodeRequested {
			continue
		}
		if s.Deadline.Before(cutoff) {
			delete(g.sessions, id)
			delete(g.byIdentity, identityKey(s.PollCode, s.Name, s.Phone))
		}
	}
}
