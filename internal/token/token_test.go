package token

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestIssueAndVerify(t *testing.T) {
	signer := NewSigner("test-secret", time.Minute)

	tok, err := signer.IssuePollAccess("session-1", "Ab3x9")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	sessionID, pollCode, err := signer.VerifyPollAccess(tok)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if sessionID != "session-1" || pollCode != "Ab3x9" {
		t.Fatalf("unexpected claims: %q %q", sessionID, pollCode)
	}
}

func TestVerifyRejectsTampering(t *testing.T) {
	signer := NewSigner("test-secret", time.Minute)

	tok, err := signer.IssuePollAccess("session-1", "Ab3x9")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	parts := strings.Split(tok, ".")
	forged := parts[0] + "." + parts[1] + "." + "AAAA" + parts[2][4:]
	if _, _, err := signer.VerifyPollAccess(forged); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}

	other := NewSigner("other-secret", time.Minute)
	if _, _, err := other.VerifyPollAccess(tok); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken with wrong secret, got %v", err)
	}
}

func TestVerifyRejectsExpired(t *testing.T) {
	signer := NewSigner("test-secret", -time.Second)

	tok, err := signer.IssuePollAccess("session-1", "Ab3x9")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, _, err := signer.VerifyPollAccess(tok); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for expired token, got %v", err)
	}
}
