package controllers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/clawsite/clawsite/app/models"
	"github.com/clawsite/clawsite/internal/pkg/action"
	"github.com/clawsite/clawsite/internal/pkg/pricing"
)

// PricingController exposes the public plan list and the admin plan and
// group management.
type PricingController struct {
	pricing *pricing.Service
}

func NewPricingController(svc *pricing.Service) *PricingController {
	return &PricingController{pricing: svc}
}

// HandlePublicPlans lists active plans of the current environment, localized.
func (pc *PricingController) HandlePublicPlans(c *fiber.Ctx) error {
	return action.Respond(c, pc.pricing.PublicPlans(c.UserContext(), localeParam(c)))
}

func (pc *PricingController) HandleListGroups(c *fiber.Ctx) error {
	return action.Respond(c, pc.pricing.ListGroups(c.UserContext()))
}

func (pc *PricingController) HandleCreateGroup(c *fiber.Ctx) error {
	var body struct {
		Slug string `json:"slug"`
	}
	if err := c.BodyParser(&body); err != nil {
		return badBody(c)
	}
	return action.Respond(c, pc.pricing.CreateGroup(c.UserContext(), body.Slug))
}

// HandleDeleteGroup refuses groups that still have plans.
func (pc *PricingController) HandleDeleteGroup(c *fiber.Ctx) error {
	return action.Respond(c, pc.pricing.DeleteGroup(c.UserContext(), c.Params("slug")))
}

func (pc *PricingController) HandleListPlans(c *fiber.Ctx) error {
	return action.Respond(c, pc.pricing.ListPlans(c.UserContext()))
}

func (pc *PricingController) HandleGetPlan(c *fiber.Ctx) error {
	return action.Respond(c, pc.pricing.GetPlan(c.UserContext(), c.Params("id")))
}

func (pc *PricingController) HandleCreatePlan(c *fiber.Ctx) error {
	var plan models.PricingPlan
	if err := c.BodyParser(&plan); err != nil {
		return badBody(c)
	}
	return action.Respond(c, pc.pricing.CreatePlan(c.UserContext(), plan))
}

func (pc *PricingController) HandleUpdatePlan(c *fiber.Ctx) error {
	var plan models.PricingPlan
	if err := c.BodyParser(&plan); err != nil {
		return badBody(c)
	}
	return action.Respond(c, pc.pricing.UpdatePlan(c.UserContext(), c.Params("id"), plan))
}

func (pc *PricingController) HandleDeletePlan(c *fiber.Ctx) error {
	return action.Respond(c, pc.pricing.DeletePlan(c.UserContext(), c.Params("id")))
}
