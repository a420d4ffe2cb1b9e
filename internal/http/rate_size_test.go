package handlers_test

import (
	"bytes"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"fandomia/internal/http/handlers"
)

func TestTokenEndpointIsRateLimited(t *testing.T) {
	app := newTestApp(t, handlers.AppOptions{LoginAttempts: 3})

	creds := map[string]string{"email": "ana@fandomia.test", "password": "Wr0ngPass!"}
	for i := 0; i < 3; i++ {
		if resp := doJSON(t, app, "POST", "/auth/v1/token", "", creds); resp.StatusCode != fiber.StatusUnauthorized {
			t.Fatalf("attempt %d: expected 401, got %d", i+1, resp.StatusCode)
		}
	}
	var hit bool
	entries := captureLogs(t, func() {
		resp := doJSON(t, app, "POST", "/auth/v1/token", "", creds)
		hit = resp.StatusCode == fiber.StatusTooManyRequests
	})
	if !hit {
		t.Fatalf("expected 429 after the limit")
	}
	if _, ok := findAction(entries, "rate.login.hit"); !ok {
		t.Fatalf("missing rate.login.hit; got %+v", entries)
	}
}

func TestGlobalRateLimitSkipsHealth(t *testing.T) {
	app := newTestApp(t, handlers.AppOptions{RequestsPerMinute: 2})

	for i := 0; i < 2; i++ {
		doJSON(t, app, "GET", "/rest/v1/products/no-existe", "", nil)
	}
	if resp := doJSON(t, app, "GET", "/rest/v1/products/no-existe", "", nil); resp.StatusCode != fiber.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", resp.StatusCode)
	}
	if resp := doJSON(t, app, "GET", "/healthz", "", nil); resp.StatusCode != fiber.StatusOK {
		t.Fatalf("healthz must not be limited, got %d", resp.StatusCode)
	}
}

func TestBodyLimit(t *testing.T) {
	app := newTestApp(t, handlers.AppOptions{})
	big := bytes.Repeat([]byte("a"), (1<<20)+1024)
	req := httptest.NewRequest("POST", "/auth/v1/signup", bytes.NewReader(big))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	if err != nil {
		// fasthttp may drop the connection instead of answering.
		return
	}
	if resp.StatusCode != fiber.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413, got %d", resp.StatusCode)
	}
}

func TestErrorHandlerHidesInternals(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: handlers.ErrorHandler})
	app.Use(requestid.New())
	app.Get("/err", func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusInternalServerError, "db timeout: secret trace")
	})

	var body string
	entries := captureLogs(t, func() {
		resp, err := app.Test(httptest.NewRequest("GET", "/err", nil))
		if err != nil {
			t.Fatalf("test request failed: %v", err)
		}
		if resp.StatusCode != fiber.StatusInternalServerError {
			t.Fatalf("expected 500, got %d", resp.StatusCode)
		}
		b, _ := io.ReadAll(resp.Body)
		body = string(b)
	})
	if !strings.Contains(body, "Something went wrong") {
		t.Fatalf("friendly message missing; body=%s", body)
	}
	if strings.Contains(body, "secret") {
		t.Fatalf("internal details leaked; body=%s", body)
	}
	if _, ok := findAction(entries, "server.error"); !ok {
		t.Fatalf("missing server.error event; got %+v", entries)
	}
}
