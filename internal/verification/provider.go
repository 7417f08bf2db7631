package verification

import "context"

// Provider is the out-of-band one-time-code service. SendCode returns an
// opaque challenge handle; VerifyCode checks a submitted code against that
// handle; DiscardIdentity tears down whatever identity state the provider
// created for the attempt, so an expired or canceled session leaves nothing
// behind.
type Provider interface {
	SendCode(ctx context.Context, phone string) (challengeID string, err error)
	VerifyCode(ctx context.Context, challengeID, code string) error
	DiscardIdentity(ctx context.Context, challengeID string) error
}
