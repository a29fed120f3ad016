package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/auth-service/internal/domain"
)

// probeApp exposes the resolved identity so tests can observe what the
// middleware attached.
func probeApp(t *testing.T, mw *SessionMiddleware) *fiber.App {
	t.Helper()
	app := fiber.New()
	app.Use(mw.Handle)
	app.Get("/probe", func(c *fiber.Ctx) error {
		id := IdentityFromContext(c)
		return c.JSON(fiber.Map{
			"subject": id.Subject,
			"role":    string(id.Role),
		})
	})
	return app
}

func probe(t *testing.T, app *fiber.App, decorate func(*http.Request)) map[string]string {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	if decorate != nil {
		decorate(req)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]string
	require.NoError(t, decodeJSON(resp.Body, &body))
	return body
}

func TestResolve_NoToken(t *testing.T) {
	tm := newTestTokenManager(t)
	app := probeApp(t, NewSessionMiddleware(tm, "token"))

	body := probe(t, app, nil)
	assert.Empty(t, body["subject"])
}

func TestResolve_BearerHeader(t *testing.T) {
	tm := newTestTokenManager(t)
	app := probeApp(t, NewSessionMiddleware(tm, "token"))

	token, _, err := tm.Issue("alice-id", domain.RoleNormal)
	require.NoError(t, err)

	body := probe(t, app, func(req *http.Request) {
		req.Header.Set("Authorization", "Bearer "+token)
	})
	assert.Equal(t, "alice-id", body["subject"])
	assert.Equal(t, "normal", body["role"])
}

func TestResolve_Cookie(t *testing.T) {
	tm := newTestTokenManager(t)
	app := probeApp(t, NewSessionMiddleware(tm, "token"))

	token, _, err := tm.Issue("bob-id", domain.RoleAdmin)
	require.NoError(t, err)

	body := probe(t, app, func(req *http.Request) {
		req.AddCookie(&http.Cookie{Name: "token", Value: token})
	})
	assert.Equal(t, "bob-id", body["subject"])
	assert.Equal(t, "admin", body["role"])
}

func TestResolve_HeaderTakesPrecedenceOverCookie(t *testing.T) {
	tm := newTestTokenManager(t)
	app := probeApp(t, NewSessionMiddleware(tm, "token"))

	headerToken, _, err := tm.Issue("header-id", domain.RoleNormal)
	require.NoError(t, err)
	cookieToken, _, err := tm.Issue("cookie-id", domain.RoleNormal)
	require.NoError(t, err)

	body := probe(t, app, func(req *http.Request) {
		req.Header.Set("Authorization", "Bearer "+headerToken)
		req.AddCookie(&http.Cookie{Name: "token", Value: cookieToken})
	})
	assert.Equal(t, "header-id", body["subject"])
}

func TestResolve_InvalidBearerDoesNotFallBackToCookie(t *testing.T) {
	tm := newTestTokenManager(t)
	app := probeApp(t, NewSessionMiddleware(tm, "token"))

	cookieToken, _, err := tm.Issue("cookie-id", domain.RoleNormal)
	require.NoError(t, err)

	body := probe(t, app, func(req *http.Request) {
		req.Header.Set("Authorization", "Bearer not-a-token")
		req.AddCookie(&http.Cookie{Name: "token", Value: cookieToken})
	})
	assert.Empty(t, body["subject"])
}

func TestResolve_NonBearerSchemeFallsBackToCookie(t *testing.T) {
	tm := newTestTokenManager(t)
	app := probeApp(t, NewSessionMiddleware(tm, "token"))

	cookieToken, _, err := tm.Issue("cookie-id", domain.RoleNormal)
	require.NoError(t, err)

	body := probe(t, app, func(req *http.Request) {
		req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
		req.AddCookie(&http.Cookie{Name: "token", Value: cookieToken})
	})
	assert.Equal(t, "cookie-id", body["subject"])
}

func TestResolve_MalformedInputsStayAnonymous(t *testing.T) {
	tm := newTestTokenManager(t)
	app := probeApp(t, NewSessionMiddleware(tm, "token"))

	other, err := NewTokenManager("some-other-secret", 60)
	require.NoError(t, err)
	foreignToken, _, err := other.Issue("mallory-id", domain.RoleAdmin)
	require.NoError(t, err)

	cases := map[string]func(*http.Request){
		"bare bearer":       func(req *http.Request) { req.Header.Set("Authorization", "Bearer") },
		"empty credential":  func(req *http.Request) { req.Header.Set("Authorization", "Bearer   ") },
		"garbage cookie":    func(req *http.Request) { req.AddCookie(&http.Cookie{Name: "token", Value: "junk"}) },
		"foreign signature": func(req *http.Request) { req.Header.Set("Authorization", "Bearer "+foreignToken) },
	}
	for name, decorate := range cases {
		t.Run(name, func(t *testing.T) {
			body := probe(t, app, decorate)
			assert.Empty(t, body["subject"])
		})
	}
}
