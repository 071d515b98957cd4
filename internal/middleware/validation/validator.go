package validation

import (
	"regexp"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

var scriptPattern = regexp.MustCompile(`(?i)(<script|<iframe|javascript:|onerror=|onload=|onclick=)`)

type Config struct {
	MaxDescriptionLength int
	AllowedContentTypes  []string
	Logger               *zap.Logger
}

// Middleware screens emergency submissions before they reach the engine.
// It enforces content type and description length; the engine itself owns
// the missing-description error so the response code stays consistent.
func Middleware(cfg Config) fiber.Handler {
	if cfg.MaxDescriptionLength == 0 {
		cfg.MaxDescriptionLength = 5000
	}
	if len(cfg.AllowedContentTypes) == 0 {
		cfg.AllowedContentTypes = []string{"application/json"}
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	return func(c *fiber.Ctx) error {
		if c.Method() == "POST" || c.Method() == "PATCH" {
			contentType := c.Get("Content-Type")
			if contentType != "" {
				allowed := false
				for _, allowedType := range cfg.AllowedContentTypes {
					if strings.Contains(contentType, allowedType) {
						allowed = true
						break
					}
				}
				if !allowed {
					return c.Status(fiber.StatusUnsupportedMediaType).JSON(fiber.Map{
						"code":  "UNSUPPORTED_MEDIA_TYPE",
						"error": "Unsupported content type",
					})
				}
			}
		}

		if c.Method() == "POST" && strings.Contains(c.Path(), "/api/v1/emergency") {
			var req map[string]interface{}
			if err := c.BodyParser(&req); err != nil {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"code":  "INVALID_BODY",
					"error": "Invalid JSON format",
				})
			}

			description, _ := req["description"].(string)

			if len(description) > cfg.MaxDescriptionLength {
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"code":  "DESCRIPTION_TOO_LONG",
					"error": "Description exceeds maximum length",
				})
			}

			if scriptPattern.MatchString(description) {
				cfg.Logger.Warn("Markup in emergency description",
					zap.String("ip", c.IP()),
				)
				return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
					"code":  "INVALID_DESCRIPTION",
					"error": "Invalid description content",
				})
			}
		}

		return c.Next()
	}
}
