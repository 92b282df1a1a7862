package middleware

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clawsite/clawsite/app/models"
	"github.com/clawsite/clawsite/internal/pkg/session"
	"github.com/clawsite/clawsite/internal/pkg/usercontext"
)

type subscribers map[string]bool

func (s subscribers) IsSubscriber(_ context.Context, userID string) bool {
	return s[userID]
}

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()
	session.SetStore(session.NewStore(nil))
	t.Cleanup(func() { session.SetStore(nil) })

	app := fiber.New()
	app.Use(UserContextMiddleware(subscribers{"u-sub": true}))
	app.Use(AdminAPIKey("k3y"))
	app.Post("/login/:id/:role", func(c *fiber.Ctx) error {
		return session.Login(c, &models.User{ID: c.Params("id"), Name: "N", Role: c.Params("role")})
	})
	app.Get("/me", func(c *fiber.Ctx) error {
		return c.JSON(usercontext.GetUserContext(c))
	})
	app.Get("/private", RequireAuth, func(c *fiber.Ctx) error { return c.SendString("ok") })
	app.Get("/admin", RequireAdmin, func(c *fiber.Ctx) error { return c.SendString("ok") })
	return app
}

func login(t *testing.T, app *fiber.App, id, role string) *http.Cookie {
	resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/login/"+id+"/"+role, nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	cookies := resp.Cookies()
	require.NotEmpty(t, cookies)
	return cookies[0]
}

func get(t *testing.T, app *fiber.App, path string, cookie *http.Cookie, header ...string) *http.Response {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

func TestAnonymousContext(t *testing.T) {
	app := newTestApp(t)

	resp := get(t, app, "/me", nil)
	var u usercontext.UserContext
	body, _ := io.ReadAll(resp.Body)
	require.NoError(t, json.Unmarshal(body, &u))
	assert.False(t, u.IsLoggedIn)

	assert.Equal(t, fiber.StatusUnauthorized, get(t, app, "/private", nil).StatusCode)
	resp = get(t, app, "/admin", nil)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	body, _ = io.ReadAll(resp.Body)
	assert.JSONEq(t, `{"success":false,"error":"Login required.","customCode":"unauthorized"}`, string(body))
}

func TestSessionContext(t *testing.T) {
	app := newTestApp(t)

	cookie := login(t, app, "u-sub", models.ROLE_USER)
	resp := get(t, app, "/me", cookie)
	var u usercontext.UserContext
	body, _ := io.ReadAll(resp.Body)
	require.NoError(t, json.Unmarshal(body, &u))
	assert.True(t, u.IsLoggedIn)
	assert.True(t, u.IsSubscriber)
	assert.False(t, u.IsAdmin)
	assert.Equal(t, "u-sub", u.UserID)

	assert.Equal(t, fiber.StatusOK, get(t, app, "/private", cookie).StatusCode)
	assert.Equal(t, fiber.StatusForbidden, get(t, app, "/admin", cookie).StatusCode)

	admin := login(t, app, "u-admin", models.ROLE_ADMIN)
	assert.Equal(t, fiber.StatusOK, get(t, app, "/admin", admin).StatusCode)
}

func TestAdminAPIKey(t *testing.T) {
	app := newTestApp(t)

	assert.Equal(t, fiber.StatusOK, get(t, app, "/admin", nil, "X-API-Key", "k3y").StatusCode)
	assert.Equal(t, fiber.StatusOK, get(t, app, "/admin", nil, "Authorization", "Bearer k3y").StatusCode)
	assert.Equal(t, fiber.StatusUnauthorized, get(t, app, "/admin", nil, "X-API-Key", "nope").StatusCode)
}
