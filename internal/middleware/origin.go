package middleware

import (
	"os"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/ColaboAI/WeGoGym-api/internal/httpx"
)

// OriginAllowed rejects browser requests whose Origin header is not in the
// comma-separated ALLOWED_ORIGINS list. Requests without an Origin header
// (native clients, server-to-server) pass through, as does everything when
// no list is configured. Response headers are the cors middleware's job.
func OriginAllowed() fiber.Handler {
	allowed := make(map[string]struct{})
	for _, origin := range strings.Split(os.Getenv("ALLOWED_ORIGINS"), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			allowed[origin] = struct{}{}
		}
	}

	return func(c *fiber.Ctx) error {
		origin := strings.TrimSpace(c.Get("Origin"))
		if origin == "" || len(allowed) == 0 {
			return c.Next()
		}
		if _, ok := allowed[origin]; !ok {
			return httpx.Forbidden(c, "forbidden_origin", "Origin not allowed")
		}
		return c.Next()
	}
}
