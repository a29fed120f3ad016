package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// SessionMiddleware resolves the caller's identity once per request and
// attaches it for downstream stages. It only resolves; it never denies.
// Enforcement belongs to the guard, which is the one place allowed to
// short-circuit a request for authorization reasons.
type SessionMiddleware struct {
	tokens     *TokenManager
	cookieName string
}

// NewSessionMiddleware constructs the middleware.
func NewSessionMiddleware(tokens *TokenManager, cookieName string) *SessionMiddleware {
	if cookieName == "" {
		cookieName = "token"
	}
	return &SessionMiddleware{tokens: tokens, cookieName: cookieName}
}

// CookieName returns the cookie the middleware reads tokens from.
func (m *SessionMiddleware) CookieName() string {
	return m.cookieName
}

// Handle resolves the request identity and continues the chain. Every
// combination of header/cookie presence and malformation produces a defined
// identity; a missing or unverifiable token resolves to anonymous rather
// than an error.
func (m *SessionMiddleware) Handle(c *fiber.Ctx) error {
	StoreIdentity(c, m.Resolve(c))
	return c.Next()
}

// Resolve extracts and verifies the request token. The Authorization header
// takes precedence over the cookie; a bearer token that fails verification is
// not retried against the cookie.
func (m *SessionMiddleware) Resolve(c *fiber.Ctx) Identity {
	token, ok := bearerToken(c.Get(fiber.HeaderAuthorization))
	if !ok {
		token = c.Cookies(m.cookieName)
	}
	if token == "" {
		return Anonymous
	}

	claims, err := m.tokens.Verify(token)
	if err != nil {
		return Anonymous
	}
	return Identity{Subject: claims.Subject, Role: claims.Role}
}

// bearerToken extracts the token from an Authorization header value. Headers
// that are absent, use another scheme, or carry an empty credential all
// report no token.
func bearerToken(header string) (string, bool) {
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", false
	}
	return token, true
}
