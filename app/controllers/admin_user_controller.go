package controllers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/clawsite/clawsite/app/repository"
	"github.com/clawsite/clawsite/internal/pkg/action"
	"github.com/clawsite/clawsite/internal/pkg/users"
)

// AdminUserController lists and moderates users.
type AdminUserController struct {
	users *users.Service
}

func NewAdminUserController(svc *users.Service) *AdminUserController {
	return &AdminUserController{users: svc}
}

// HandleList pages through users with their signup source.
// Filters: ?q= (name or email), ?role=, ?banned=true|false.
func (auc *AdminUserController) HandleList(c *fiber.Ctx) error {
	filter := repository.UserFilter{
		Query: c.Query("q"),
		Role:  c.Query("role"),
	}
	if raw := c.Query("banned"); raw != "" {
		if b, err := strconv.ParseBool(raw); err == nil {
			filter.Banned = &b
		}
	}
	r := auc.users.ListUsers(c.UserContext(), queryInt(c, "page", 0), queryInt(c, "pageSize", users.DefaultPageSize), filter)
	return action.Respond(c, r)
}

func (auc *AdminUserController) HandleGet(c *fiber.Ctx) error {
	return action.Respond(c, auc.users.GetUser(c.UserContext(), c.Params("id")))
}

func (auc *AdminUserController) HandleBan(c *fiber.Ctx) error {
	var body struct {
		Reason string `json:"reason"`
	}
	if err := c.BodyParser(&body); err != nil {
		return badBody(c)
	}
	return action.Respond(c, auc.users.BanUser(c.UserContext(), c.Params("id"), body.Reason))
}

func (auc *AdminUserController) HandleUnban(c *fiber.Ctx) error {
	return action.Respond(c, auc.users.UnbanUser(c.UserContext(), c.Params("id")))
}
