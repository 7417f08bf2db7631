package verification

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownPoll indicates the supplied poll code matches no poll.
	ErrUnknownPoll = errors.New("unknown poll code")
	// ErrIdentityNotFound indicates the (name, phone) pair is not on the
	// poll's roster. No session is created and no code is sent.
	ErrIdentityNotFound = errors.New("name and phone do not match a registered participant")
	// ErrSessionActive indicates a live session already exists for the
	// same (poll, name, phone) identity.
	ErrSessionActive = errors.New("a verification session is already in progress")
	// ErrSessionNotFound indicates an unknown session identifier.
	ErrSessionNotFound = errors.New("verification session not found")
	// ErrCodeMismatch indicates a wrong one-time code. The session stays
	// open until its deadline.
	ErrCodeMismatch = errors.New("verification code does not match")
	// ErrSessionExpired indicates the 60-second window elapsed; the caller
	// must start over.
	ErrSessionExpired = errors.New("verification session expired")
	// ErrAlreadyVerified indicates a code submission on a session that
	// already succeeded.
	ErrAlreadyVerified = errors.New("session already verified")
	// ErrNotVerified guards poll detail reads on unverified sessions.
	ErrNotVerified = errors.New("session is not verified")
)

// ProviderError wraps a transport-level failure from the out-of-band code
// provider. The step that failed may be retried.
type ProviderError struct {
	Op  string
	Err error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("code provider %s: %v", e.Op, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }
