package controllers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/clawsite/clawsite/internal/pkg/action"
	"github.com/clawsite/clawsite/internal/pkg/statistics"
)

// AdminController serves the dashboard overview.
type AdminController struct {
	stats *statistics.Service
}

func NewAdminController(stats *statistics.Service) *AdminController {
	return &AdminController{stats: stats}
}

// HandleDashboard returns user, subscription, post and credit counters.
// ?refresh=1 bypasses the cached snapshot.
func (ac *AdminController) HandleDashboard(c *fiber.Ctx) error {
	if c.QueryBool("refresh") {
		ac.stats.Invalidate(c.UserContext())
	}
	data, err := ac.stats.Get(c.UserContext())
	if err != nil {
		log.Errorf("[Admin] dashboard statistics failed: %v", err)
		return action.Respond(c, action.Error[any]("Failed to load statistics."))
	}
	return action.Respond(c, action.OK(data))
}
