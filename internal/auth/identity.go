package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/auth-service/internal/domain"
)

const identityKey = "auth_identity"

// Identity is the per-request resolved principal. It is created once by the
// session middleware, read by the guard and handlers, and discarded with the
// request. Anonymous is the zero value.
type Identity struct {
	Subject string
	Role    domain.Role
}

// Anonymous is the identity of an unauthenticated request.
var Anonymous = Identity{}

// IsAuthenticated reports whether the identity names a principal.
func (id Identity) IsAuthenticated() bool {
	return id.Subject != ""
}

// StoreIdentity attaches the identity to the request.
func StoreIdentity(c *fiber.Ctx, id Identity) {
	c.Locals(identityKey, id)
}

// IdentityFromContext retrieves the identity resolved for this request.
// Requests that never passed through the session middleware read as anonymous.
func IdentityFromContext(c *fiber.Ctx) Identity {
	val := c.Locals(identityKey)
	if val == nil {
		return Anonymous
	}
	id, ok := val.(Identity)
	if !ok {
		return Anonymous
	}
	return id
}
