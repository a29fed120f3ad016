package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/auth-service/internal/domain"
	apperrors "github.com/spec-kit/auth-service/pkg/util/errorutil"
)

// Decision is the outcome of an authorization check.
type Decision int

const (
	Allow Decision = iota
	DenyNotAuthenticated
	DenyInsufficientRole
)

// Check gates a resolved identity against a route's accepted roles. An empty
// role set means any authenticated identity is acceptable. Check is a pure
// function; it holds no state across calls.
func Check(id Identity, required domain.RoleSet) Decision {
	if !id.IsAuthenticated() {
		return DenyNotAuthenticated
	}
	if len(required) == 0 {
		return Allow
	}
	if !required.Contains(id.Role) {
		return DenyInsufficientRole
	}
	return Allow
}

// RequireAuthenticated admits any authenticated identity.
func RequireAuthenticated() fiber.Handler {
	return RequireRoles()
}

// RequireRoles admits identities holding one of the given roles. An
// unauthenticated caller gets 401; an authenticated caller with the wrong
// role gets 403 and is never bounced back to login.
func RequireRoles(roles ...domain.Role) fiber.Handler {
	required := domain.NewRoleSet(roles...)

	return func(c *fiber.Ctx) error {
		switch Check(IdentityFromContext(c), required) {
		case DenyNotAuthenticated:
			return apperrors.NewUnauthorized("authentication required")
		case DenyInsufficientRole:
			return apperrors.NewForbidden("insufficient role")
		}
		return c.Next()
	}
}
