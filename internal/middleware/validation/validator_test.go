package validation

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
)

func newTestApp(cfg Config) *fiber.App {
	app := fiber.New()
	app.Use(Middleware(cfg))
	app.Post("/api/v1/emergency", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	return app
}

func submit(t *testing.T, app *fiber.App, description, contentType string) int {
	t.Helper()

	payload, err := json.Marshal(map[string]string{"description": description})
	if err != nil {
		t.Fatalf("failed to encode request: %v", err)
	}

	req := httptest.NewRequest("POST", "/api/v1/emergency", bytes.NewReader(payload))
	req.Header.Set("Content-Type", contentType)

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()
	return resp.StatusCode
}

func TestValidDescriptionPasses(t *testing.T) {
	app := newTestApp(Config{})

	if status := submit(t, app, "fire in the kitchen", "application/json"); status != fiber.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
}

func TestOverlongDescriptionRejected(t *testing.T) {
	app := newTestApp(Config{MaxDescriptionLength: 10})

	if status := submit(t, app, strings.Repeat("a", 11), "application/json"); status != fiber.StatusBadRequest {
		t.Fatalf("expected 400, got %d", status)
	}
}

func TestMarkupRejectedWithoutConfiguredLogger(t *testing.T) {
	// The markup branch logs; an omitted Logger must not panic it.
	app := newTestApp(Config{})

	if status := submit(t, app, "<script>alert(1)</script>", "application/json"); status != fiber.StatusBadRequest {
		t.Fatalf("expected 400, got %d", status)
	}
}

func TestUnsupportedContentTypeRejected(t *testing.T) {
	app := newTestApp(Config{})

	if status := submit(t, app, "fire", "text/plain"); status != fiber.StatusUnsupportedMediaType {
		t.Fatalf("expected 415, got %d", status)
	}
}
