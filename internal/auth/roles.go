package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	apperrors "github.com/spec-kit/dashboard-session/pkg/util/errorutil"
)

// RequireRole ensures the identity has one of the allowed roles. Owners carry
// the default "admin" role.
func RequireRole(allowed ...string) fiber.Handler {
	allowedSet := make(map[string]struct{}, len(allowed))
	for _, role := range allowed {
		allowedSet[strings.ToLower(role)] = struct{}{}
	}

	return func(c *fiber.Ctx) error {
		id, err := requireIdentity(c)
		if err != nil {
			return err
		}
		if len(allowedSet) == 0 {
			return c.Next()
		}
		if _, exists := allowedSet[strings.ToLower(id.Role)]; !exists {
			return apperrors.NewForbidden("insufficient role")
		}
		return c.Next()
	}
}

// RequireOwner ensures the identity is not a delegated staff member.
func RequireOwner() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := requireIdentity(c)
		if err != nil {
			return err
		}
		if id.IsStaff() {
			return apperrors.NewForbidden("account owner required")
		}
		return c.Next()
	}
}

// RequirePremium ensures the subscription tier is premium or enterprise.
func RequirePremium() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := requireIdentity(c)
		if err != nil {
			return err
		}
		if !id.IsPremiumOrHigher() {
			return apperrors.NewForbidden("premium subscription required")
		}
		return c.Next()
	}
}
