package verification

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Session states. A session is created in StateCodeRequested (the code send
// already happened); StateVerified and StateExpired are terminal. There is no
// idle state: roster mismatches never produce a session at all.
const (
	StateCodeRequested = "code_requested"
	StateVerified      = "verified"
	StateExpired       = "expired"
)

// Session is one time-boxed verification handshake for a claimed identity.
//
// Two goroutines touch a session: the 1 Hz countdown and whoever submits a
// code. Both take mu for the whole transition, so a submit that entered the
// window before the deadline completes its provider call before the expiry
// tick can run; ties go to Verified.
type Session struct {
	ID        string
	PollCode  string
	Name      string
	Phone     string // normalized
	CreatedAt time.Time
	Deadline  time.Time

	provider Provider
	logger   *slog.Logger

	mu          sync.Mutex
	state       string
	challengeID string
	done        chan struct{}
}

// State returns the current session state.
func (s *Session) State() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Remaining reports how much of the verification window is left.
func (s *Session) Remaining() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateCodeRequested {
		return 0
	}
	remaining := time.Until(s.Deadline)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Submit checks one code against the provider. Wrong codes leave the session
// open; the window, not an attempt cap, bounds resubmission. A submission
// that finds the deadline already passed performs the expiry itself instead
// of waiting for the next tick.
func (s *Session) Submit(ctx context.Context, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case StateVerified:
		return ErrAlreadyVerified
	case StateExpired:
		return ErrSessionExpired
	}

	if !time.Now().Before(s.Deadline) {
		s.expireLocked()
		return ErrSessionExpired
	}

	// The provider call runs under mu on purpose: the countdown cannot
	// expire a verify that started inside the window.
	if err := s.provider.VerifyCode(ctx, s.challengeID, code); err != nil {
		return err
	}

	s.state = StateVerified
	close(s.done)
	s.logger.Info("verification succeeded", "session_id", s.ID, "poll_code", s.PollCode)
	return nil
}

// Cancel tears the session down through the same cleanup path as expiry.
// Canceling a terminal session is a no-op.
func (s *Session) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateCodeRequested {
		return
	}
	s.expireLocked()
}

func (s *Session) countdown(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-s.done:
			return
		case now := <-ticker.C:
			if s.expireIfDue(now) {
				return
			}
		}
	}
}

// expireIfDue reports whether the countdown should stop.
func (s *Session) expireIfDue(now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateCodeRequested {
		return true
	}
	if now.Before(s.Deadline) {
		return false
	}
	s.expireLocked()
	return true
}

// expireLocked transitions to StateExpired and discards the provider-side
// identity exactly once. mu must be held and state must be StateCodeRequested.
func (s *Session) expireLocked() {
	s.state = StateExpired
	close(s.done)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.provider.DiscardIdentity(ctx, s.challengeID); err != nil {
		s.logger.Warn("discard identity", "session_id", s.ID, "error", err)
	}
	s.logger.Info("verification session ended without success", "session_id", s.ID, "poll_code", s.PollCode)
}
