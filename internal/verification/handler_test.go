package verification

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/pollgate/pollgate/internal/token"
)

func setupHandlerApp(t *testing.T, provider Provider) *fiber.App {
	t.Helper()
	signer := token.NewSigner("test-secret", time.Minute)
	gate, _ := newTestGate(t, provider, Config{SessionTTL: time.Minute})
	// The gate built by newTestGate signs with its own signer instance but
	// the same secret, so handler-side verification works.
	handler := NewHandler(gate, signer)

	app := fiber.New()
	app.Post("/verification", handler.Start)
	app.Get("/verification/:id", handler.Status)
	app.Post("/verification/:id/code", handler.Submit)
	app.Delete("/verification/:id", handler.Cancel)
	app.Get("/verification/:id/poll", handler.Detail)
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path, body string, header map[string]string) (int, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	for k, v := range header {
		req.Header.Set(k, v)
	}
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	var decoded map[string]any
	if len(payload) > 0 {
		_ = json.Unmarshal(payload, &decoded)
	}
	return resp.StatusCode, decoded
}

func TestHandlerFullHandshake(t *testing.T) {
	provider := &fakeProvider{code: "123456"}
	app := setupHandlerApp(t, provider)

	status, body := doJSON(t, app, fiber.MethodPost, "/verification",
		`{"poll_code":"Ab3x9","name":"Kim","phone":"010-1234-5678"}`, nil)
	if status != fiber.StatusCreated {
		t.Fatalf("start: expected 201, got %d (%v)", status, body)
	}
	sessionID, _ := body["session_id"].(string)
	if sessionID == "" {
		t.Fatalf("missing session_id in %v", body)
	}
	if body["state"] != StateCodeRequested {
		t.Fatalf("expected state %s, got %v", StateCodeRequested, body["state"])
	}

	status, _ = doJSON(t, app, fiber.MethodPost, "/verification/"+sessionID+"/code", `{"code":"999999"}`, nil)
	if status != fiber.StatusUnauthorized {
		t.Fatalf("wrong code: expected 401, got %d", status)
	}

	status, body = doJSON(t, app, fiber.MethodPost, "/verification/"+sessionID+"/code", `{"code":"123456"}`, nil)
	if status != fiber.StatusOK {
		t.Fatalf("correct code: expected 200, got %d (%v)", status, body)
	}
	accessToken, _ := body["poll_access_token"].(string)
	if accessToken == "" {
		t.Fatalf("missing poll_access_token in %v", body)
	}

	status, body = doJSON(t, app, fiber.MethodGet, "/verification/"+sessionID+"/poll", "",
		map[string]string{fiber.HeaderAuthorization: "Bearer " + accessToken})
	if status != fiber.StatusOK {
		t.Fatalf("detail: expected 200, got %d (%v)", status, body)
	}
	if body["title"] != "Club President" {
		t.Fatalf("unexpected detail payload: %v", body)
	}
}

func TestHandlerDetailRejectsMissingToken(t *testing.T) {
	provider := &fakeProvider{code: "123456"}
	app := setupHandlerApp(t, provider)

	status, _ := doJSON(t, app, fiber.MethodPost, "/verification",
		`{"poll_code":"Ab3x9","name":"Kim","phone":"010-1234-5678"}`, nil)
	if status != fiber.StatusCreated {
		t.Fatalf("start: expected 201, got %d", status)
	}

	status, _ = doJSON(t, app, fiber.MethodGet, "/verification/whatever/poll", "", nil)
	if status != fiber.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", status)
	}
}

func TestHandlerStartRejectsUnknownIdentity(t *testing.T) {
	provider := &fakeProvider{code: "123456"}
	app := setupHandlerApp(t, provider)

	status, _ := doJSON(t, app, fiber.MethodPost, "/verification",
		`{"poll_code":"Ab3x9","name":"Kim","phone":"010-0000-0000"}`, nil)
	if status != fiber.StatusNotFound {
		t.Fatalf("expected 404 for unknown identity, got %d", status)
	}
	if sends, _, _ := provider.counts(); sends != 0 {
		t.Fatalf("expected no send, got %d", sends)
	}
}

func TestHandlerCancel(t *testing.T) {
	provider := &fakeProvider{code: "123456"}
	app := setupHandlerApp(t, provider)

	status, body := doJSON(t, app, fiber.MethodPost, "/verification",
		`{"poll_code":"Ab3x9","name":"Lee","phone":"01087654321"}`, nil)
	if status != fiber.StatusCreated {
		t.Fatalf("start: expected 201, got %d", status)
	}
	sessionID, _ := body["session_id"].(string)

	status, _ = doJSON(t, app, fiber.MethodDelete, "/verification/"+sessionID, "", nil)
	if status != fiber.StatusNoContent {
		t.Fatalf("cancel: expected 204, got %d", status)
	}

	status, body = doJSON(t, app, fiber.MethodGet, "/verification/"+sessionID, "", nil)
	if status != fiber.StatusOK {
		t.Fatalf("status: expected 200, got %d", status)
	}
	if body["state"] != StateExpired {
		t.Fatalf("expected state %s after cancel, got %v", StateExpired, body["state"])
	}
}
