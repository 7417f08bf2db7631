package verification

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/pollgate/pollgate/internal/kvstore"
	"github.com/pollgate/pollgate/internal/notification"
)

const challengeKeyPrefix = "verification:challenge:v1:"

// LocalProvider implements Provider without an external SMS identity
// service: it draws a 6-digit code, stores a bcrypt hash of it in the
// injected key-value store and hands the code to the notifier for delivery.
// Challenges outlive the session deadline by a small slack so a verify call
// racing the expiry tick still finds its challenge.
type LocalProvider struct {
	store    kvstore.Store
	notifier notification.Notifier
	ttl      time.Duration
}

// NewLocalProvider constructs a LocalProvider whose challenges live for ttl.
func NewLocalProvider(store kvstore.Store, notifier notification.Notifier, ttl time.Duration) *LocalProvider {
	return &LocalProvider{store: store, notifier: notifier, ttl: ttl}
}

// SendCode draws and delivers a one-time code and returns the challenge ID.
func (p *LocalProvider) SendCode(ctx context.Context, phone string) (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", err
	}
	code := fmt.Sprintf("%06d", n.Int64())

	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}

	challengeID := uuid.NewString()
	if err := p.store.Set(ctx, challengeKeyPrefix+challengeID, string(hash), p.ttl); err != nil {
		return "", err
	}

	if err := p.notifier.Send(ctx, notification.Message{
		Kind:  notification.KindVerificationCode,
		Phone: phone,
		Body:  fmt.Sprintf("PollGate verification code: %s", code),
	}); err != nil {
		// Challenge state is useless if the code never went out.
		_ = p.store.Delete(ctx, challengeKeyPrefix+challengeID)
		return "", err
	}

	return challengeID, nil
}

// VerifyCode compares the submitted code against the stored hash.
func (p *LocalProvider) VerifyCode(ctx context.Context, challengeID, code string) error {
	hash, err := p.store.Get(ctx, challengeKeyPrefix+challengeID)
	if err != nil {
		if errors.Is(err, kvstore.ErrNotFound) {
			return &ProviderError{Op: "verify", Err: errors.New("challenge not found or expired")}
		}
		return &ProviderError{Op: "verify", Err: err}
	}
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(code)) != nil {
		return ErrCodeMismatch
	}
	return nil
}

// DiscardIdentity removes the challenge state for an abandoned attempt.
func (p *LocalProvider) DiscardIdentity(ctx context.Context, challengeID string) error {
	return p.store.Delete(ctx, challengeKeyPrefix+challengeID)
}
