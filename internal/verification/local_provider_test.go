package verification

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/pollgate/pollgate/internal/kvstore"
	"github.com/pollgate/pollgate/internal/notification"
)

// captureNotifier records outbound messages so tests can read the code.
type captureNotifier struct {
	mu       sync.Mutex
	messages []notification.Message
}

func (n *captureNotifier) Send(_ context.Context, message notification.Message) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, message)
	return nil
}

func (n *captureNotifier) lastCode(t *testing.T) string {
	t.Helper()
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.messages) == 0 {
		t.Fatal("no message sent")
	}
	body := n.messages[len(n.messages)-1].Body
	idx := strings.LastIndex(body, " ")
	if idx < 0 {
		t.Fatalf("unexpected message body %q", body)
	}
	return body[idx+1:]
}

func setupLocalProvider(t *testing.T) (*LocalProvider, *captureNotifier, func()) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	notifier := &captureNotifier{}
	provider := NewLocalProvider(kvstore.NewRedis(client), notifier, time.Minute)

	cleanup := func() {
		client.Close()
		mr.Close()
	}
	return provider, notifier, cleanup
}

func TestLocalProviderSendAndVerify(t *testing.T) {
	provider, notifier, cleanup := setupLocalProvider(t)
	defer cleanup()
	ctx := context.Background()

	challengeID, err := provider.SendCode(ctx, "+821012345678")
	if err != nil {
		t.Fatalf("send: %v", err)
	}

	code := notifier.lastCode(t)
	if len(code) != 6 {
		t.Fatalf("expected 6-digit code, got %q", code)
	}

	if err := provider.VerifyCode(ctx, challengeID, "000000"); !errors.Is(err, ErrCodeMismatch) {
		t.Fatalf("expected ErrCodeMismatch for wrong code, got %v", err)
	}
	if err := provider.VerifyCode(ctx, challengeID, code); err != nil {
		t.Fatalf("verify correct code: %v", err)
	}
}

func TestLocalProviderDiscard(t *testing.T) {
	provider, notifier, cleanup := setupLocalProvider(t)
	defer cleanup()
	ctx := context.Background()

	challengeID, err := provider.SendCode(ctx, "+821012345678")
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	code := notifier.lastCode(t)

	if err := provider.DiscardIdentity(ctx, challengeID); err != nil {
		t.Fatalf("discard: %v", err)
	}

	var perr *ProviderError
	if err := provider.VerifyCode(ctx, challengeID, code); !errors.As(err, &perr) {
		t.Fatalf("expected ProviderError after discard, got %v", err)
	}
}

func TestLocalProviderCodesNeverStoredInClear(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	defer mr.Close()
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	notifier := &captureNotifier{}
	provider := NewLocalProvider(kvstore.NewRedis(client), notifier, time.Minute)

	challengeID, err := provider.SendCode(context.Background(), "+821012345678")
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	code := notifier.lastCode(t)

	stored, err := mr.Get(challengeKeyPrefix + challengeID)
	if err != nil {
		t.Fatalf("read stored challenge: %v", err)
	}
	if strings.Contains(stored, code) {
		t.Fatal("one-time code stored in clear text")
	}
}
