package middleware

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
)

func originApp(t *testing.T, allowedOrigins string) *fiber.App {
	t.Helper()
	t.Setenv("ALLOWED_ORIGINS", allowedOrigins)
	app := fiber.New()
	app.Use(OriginAllowed())
	app.Get("/", func(c *fiber.Ctx) error { return c.SendString("ok") })
	return app
}

func TestOriginAllowed(t *testing.T) {
	tests := []struct {
		name       string
		allowed    string
		origin     string
		wantStatus int
	}{
		{"listed origin", "https://app.wegogym.com", "https://app.wegogym.com", fiber.StatusOK},
		{"second entry", "https://app.wegogym.com, https://admin.wegogym.com", "https://admin.wegogym.com", fiber.StatusOK},
		{"unlisted origin", "https://app.wegogym.com", "https://evil.example.com", fiber.StatusForbidden},
		{"no origin header", "https://app.wegogym.com", "", fiber.StatusOK},
		{"no list configured", "", "https://anywhere.example.com", fiber.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := originApp(t, tt.allowed)
			req := httptest.NewRequest("GET", "/", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			resp, err := app.Test(req)
			if err != nil {
				t.Fatal(err)
			}
			defer resp.Body.Close()
			if resp.StatusCode != tt.wantStatus {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.wantStatus)
			}
		})
	}
}
