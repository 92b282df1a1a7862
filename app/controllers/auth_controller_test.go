package controllers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clawsite/clawsite/app/models"
	"github.com/clawsite/clawsite/internal/pkg/otp"
	"github.com/clawsite/clawsite/internal/pkg/session"
	"github.com/clawsite/clawsite/internal/pkg/users"
)

type recordingMailer struct {
	codes map[string]string
	fail  bool
}

func (m *recordingMailer) SendOTP(to, code string) error {
	if m.fail {
		return errors.New("smtp down")
	}
	m.codes[to] = code
	return nil
}

func newAuthApp(t *testing.T) (*fiber.App, *recordingMailer, *testEnv) {
	env := newTestEnv(t)
	session.SetStore(session.NewStore(nil))
	t.Cleanup(func() { session.SetStore(nil) })

	mailer := &recordingMailer{codes: map[string]string{}}
	ac := NewAuthController(otp.NewService(env.repos.Verification), mailer, nil, users.NewService(env.repos.User, nil))

	app := fiber.New()
	app.Post("/otp/request", ac.HandleRequestOTP)
	app.Post("/otp/verify", ac.HandleVerifyOTP)
	return app, mailer, env
}

func postJSON(t *testing.T, app *fiber.App, target, body string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
	req.Header.Set("Content-Type", fiber.MIMEApplicationJSON)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func TestOTPLoginFlow(t *testing.T) {
	app, mailer, env := newAuthApp(t)

	resp := postJSON(t, app, "/otp/request", `{"email":" Ada@Example.com "}`)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	code := mailer.codes["ada@example.com"]
	require.Len(t, code, 6)

	wrong := "000000"
	if code == wrong {
		wrong = "111111"
	}
	resp = postJSON(t, app, "/otp/verify", `{"email":"ada@example.com","code":"`+wrong+`"}`)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "otpInvalid", decodeEnvelope(t, resp).CustomCode)

	resp = postJSON(t, app, "/otp/verify", `{"email":"ada@example.com","code":"`+code+`"}`)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("Set-Cookie"))

	var user models.User
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, resp).Data, &user))
	assert.Equal(t, "ada@example.com", user.Email)

	var count int64
	require.NoError(t, env.db.Model(&models.User{}).Where("email = ?", "ada@example.com").Count(&count).Error)
	assert.EqualValues(t, 1, count)

	// the code is consumed on success
	resp = postJSON(t, app, "/otp/verify", `{"email":"ada@example.com","code":"`+code+`"}`)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestOTPRequestValidation(t *testing.T) {
	app, mailer, _ := newAuthApp(t)

	resp := postJSON(t, app, "/otp/request", `{"email":"not-an-email"}`)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	mailer.fail = true
	resp = postJSON(t, app, "/otp/request", `{"email":"ada@example.com"}`)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)

	resp = postJSON(t, app, "/otp/verify", `{"email":"ada@example.com"}`)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestOTPVerifyRejectsBannedUser(t *testing.T) {
	app, mailer, env := newAuthApp(t)
	require.NoError(t, env.db.Create(&models.User{Email: "bob@example.com", Name: "bob", Role: models.ROLE_USER, Banned: true, BanReason: "spam"}).Error)

	resp := postJSON(t, app, "/otp/request", `{"email":"bob@example.com"}`)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp = postJSON(t, app, "/otp/verify", `{"email":"bob@example.com","code":"`+mailer.codes["bob@example.com"]+`"}`)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	out := decodeEnvelope(t, resp)
	assert.Equal(t, "banned", out.CustomCode)
	assert.JSONEq(t, `{"reason":"spam"}`, string(out.Data))
}

func TestOTPVerifyIsRateLimited(t *testing.T) {
	env := newTestEnv(t)
	session.SetStore(session.NewStore(nil))
	t.Cleanup(func() { session.SetStore(nil) })
	ac := NewAuthController(otp.NewService(env.repos.Verification), &recordingMailer{codes: map[string]string{}}, nil, users.NewService(env.repos.User, nil))

	app := fiber.New()
	app.Post("/otp/verify", limiter.New(limiter.Config{
		Max:          3,
		Expiration:   time.Minute,
		KeyGenerator: OTPVerifyKey,
	}), ac.HandleVerifyOTP)

	body := `{"email":"ada@example.com","code":"123456"}`
	for i := 0; i < 3; i++ {
		resp := postJSON(t, app, "/otp/verify", body)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	}
	resp := postJSON(t, app, "/otp/verify", body)
	assert.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)

	resp = postJSON(t, app, "/otp/verify", `{"email":"bob@example.com","code":"123456"}`)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode, "other mailboxes keep their own budget")
}
