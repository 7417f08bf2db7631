package middleware

import (
	"net/http/httptest"
	"strings"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

func TestSendRateLimitSharesBudgetAcrossPhoneFormats(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	defer mr.Close()
	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer cache.Close()

	app := fiber.New()
	app.Use(SendRateLimit(cache, 2))
	app.Post("/verification", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusCreated)
	})

	// Same number in two formats consumes one budget.
	bodies := []string{
		`{"phone":"010-1234-5678"}`,
		`{"phone":"01012345678"}`,
		`{"phone":"+82 10 1234 5678"}`,
	}
	for i, body := range bodies {
		req := httptest.NewRequest(fiber.MethodPost, "/verification", strings.NewReader(body))
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		resp, err := app.Test(req)
		if err != nil {
			t.Fatalf("request %d: %v", i+1, err)
		}
		want := fiber.StatusCreated
		if i == 2 {
			want = fiber.StatusTooManyRequests
		}
		if resp.StatusCode != want {
			t.Fatalf("request %d: expected %d, got %d", i+1, want, resp.StatusCode)
		}
	}

	// A different number is unaffected.
	req := httptest.NewRequest(fiber.MethodPost, "/verification", strings.NewReader(`{"phone":"010-9999-8888"}`))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("other phone: %v", err)
	}
	if resp.StatusCode != fiber.StatusCreated {
		t.Fatalf("other phone: expected 201, got %d", resp.StatusCode)
	}
}
