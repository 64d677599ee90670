package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/AVVlasov/procurement-pl-sub001/internal/auth"
	"github.com/AVVlasov/procurement-pl-sub001/internal/models"
)

const (
	LocalUserID    = "user_id"
	LocalCompanyID = "company_id"
)

// JWTAuth rejects requests without a valid bearer token before any handler
// runs, and stashes the caller's identity in locals.
func JWTAuth(verifier *auth.Verifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		hdr := c.Get("Authorization")
		if hdr == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"status": "error", "kind": "unauthorized", "message": "missing authorization"})
		}
		parts := strings.SplitN(hdr, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"status": "error", "kind": "unauthorized", "message": "invalid authorization"})
		}
		claims, err := verifier.Verify(parts[1])
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"status": "error", "kind": "unauthorized", "message": "invalid token"})
		}
		c.Locals(LocalUserID, claims.UserID)
		c.Locals(LocalCompanyID, models.CompanyID(claims.CompanyID))
		return c.Next()
	}
}

// CallerCompany returns the authenticated caller's company id.
func CallerCompany(c *fiber.Ctx) models.CompanyID {
	id, _ := c.Locals(LocalCompanyID).(models.CompanyID)
	return id
}
