package controllers

import (
	"errors"
	"net/mail"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/clawsite/clawsite/internal/pkg/action"
	"github.com/clawsite/clawsite/internal/pkg/env"
	"github.com/clawsite/clawsite/internal/pkg/hcaptcha"
	"github.com/clawsite/clawsite/internal/pkg/otp"
	"github.com/clawsite/clawsite/internal/pkg/session"
	"github.com/clawsite/clawsite/internal/pkg/usercontext"
	"github.com/clawsite/clawsite/internal/pkg/users"
)

// OTPMailer delivers login codes.
type OTPMailer interface {
	SendOTP(to, code string) error
}

// AuthController implements the passwordless email login.
type AuthController struct {
	otp     *otp.Service
	mailer  OTPMailer
	captcha *hcaptcha.Verifier
	users   *users.Service
}

func NewAuthController(codes *otp.Service, mailer OTPMailer, captcha *hcaptcha.Verifier, svc *users.Service) *AuthController {
	return &AuthController{otp: codes, mailer: mailer, captcha: captcha, users: svc}
}

type otpRequest struct {
	Email        string `json:"email" form:"email"`
	Code         string `json:"code" form:"code"`
	CaptchaToken string `json:"captchaToken" form:"h-captcha-response"`
}

func (r *otpRequest) normalizedEmail() (string, bool) {
	email := strings.ToLower(strings.TrimSpace(r.Email))
	if _, err := mail.ParseAddress(email); err != nil {
		return "", false
	}
	return email, true
}

// OTPVerifyKey keys the verify limiter on the client address and, when the
// body names one, the email being verified.
func OTPVerifyKey(c *fiber.Ctx) string {
	key := "otp-verify:" + GetClientIP(c)
	var req otpRequest
	if err := c.BodyParser(&req); err == nil {
		if email, ok := req.normalizedEmail(); ok {
			key += ":" + email
		}
	}
	return key
}

// HandleRequestOTP checks the captcha and mails a fresh login code.
func (ac *AuthController) HandleRequestOTP(c *fiber.Ctx) error {
	var req otpRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}
	email, ok := req.normalizedEmail()
	if !ok {
		return action.Respond(c, action.BadRequest[any]("Please enter a valid email address."))
	}

	if err := ac.captcha.Verify(c.UserContext(), req.CaptchaToken, GetClientIP(c)); err != nil {
		log.Warnf("[Auth] captcha rejected for %s: %v", email, err)
		msg := "Captcha validation failed. Please try again."
		if env.IsDev() {
			msg = "Captcha validation failed: " + err.Error()
		}
		return action.Respond(c, action.BadRequest[any](msg))
	}

	code, err := ac.otp.Issue(c.UserContext(), email)
	if err != nil {
		log.Errorf("[Auth] issuing code for %s failed: %v", email, err)
		return action.Respond(c, action.Error[any]("Could not create a login code."))
	}
	if err := ac.mailer.SendOTP(email, code); err != nil {
		log.Errorf("[Auth] sending code to %s failed: %v", email, err)
		return action.Respond(c, action.Error[any]("Could not send the login code."))
	}
	return action.Respond(c, action.OK(fiber.Map{"email": email, "expiresInMinutes": int(otp.TTL.Minutes())}))
}

// HandleVerifyOTP signs the user in with a mailed code. First sign-ins
// create the account and record where the user came from.
func (ac *AuthController) HandleVerifyOTP(c *fiber.Ctx) error {
	var req otpRequest
	if err := c.BodyParser(&req); err != nil {
		return badBody(c)
	}
	email, ok := req.normalizedEmail()
	if !ok || strings.TrimSpace(req.Code) == "" {
		return action.Respond(c, action.BadRequest[any]("Email and code are required."))
	}

	if err := ac.otp.Verify(c.UserContext(), email, strings.TrimSpace(req.Code)); err != nil {
		switch {
		case errors.Is(err, otp.ErrExpired):
			return action.Respond(c, action.BadRequest[any]("The code has expired. Please request a new one.").WithCode("otpExpired"))
		case errors.Is(err, otp.ErrTooManyAttempts):
			return action.Respond(c, action.BadRequest[any]("Too many attempts. Please request a new code.").WithCode("otpTooManyAttempts"))
		case errors.Is(err, otp.ErrInvalidCode):
			return action.Respond(c, action.BadRequest[any]("The code is not valid.").WithCode("otpInvalid"))
		}
		log.Errorf("[Auth] verifying code for %s failed: %v", email, err)
		return action.Respond(c, action.Error[any]("Could not verify the code."))
	}

	user, err := ac.users.SignIn(c.UserContext(), users.Identity{Provider: users.ProviderEmail, Email: email}, users.SourceFromRequest(c))
	if errors.Is(err, users.ErrBanned) {
		return action.Respond(c, action.Forbidden[any]("Your account has been banned.").WithCode("banned").WithData(fiber.Map{"reason": user.BanReason}))
	}
	if err != nil {
		log.Errorf("[Auth] sign in for %s failed: %v", email, err)
		return action.Respond(c, action.Error[any]("Sign in failed."))
	}

	if err := session.Login(c, user); err != nil {
		log.Errorf("[Auth] session for %s failed: %v", user.ID, err)
		return action.Respond(c, action.Error[any]("Could not start a session."))
	}
	log.Infof("[Auth] %s signed in with email code", user.ID)
	return action.Respond(c, action.OK(user))
}

func (ac *AuthController) HandleLogout(c *fiber.Ctx) error {
	if err := session.Logout(c); err != nil {
		log.Warnf("[Auth] logout failed: %v", err)
	}
	return action.Respond(c, action.OK(fiber.Map{"loggedOut": true}))
}

// HandleMe returns the session user, or 401.
func (ac *AuthController) HandleMe(c *fiber.Ctx) error {
	uc := usercontext.GetUserContext(c)
	if !uc.IsLoggedIn {
		return action.Respond(c, action.Unauthorized[any]("Please log in."))
	}
	return action.Respond(c, action.OK(uc))
}
