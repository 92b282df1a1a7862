package controllers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/clawsite/clawsite/internal/pkg/action"
	"github.com/clawsite/clawsite/internal/pkg/billing"
	"github.com/clawsite/clawsite/internal/pkg/credits"
	"github.com/clawsite/clawsite/internal/pkg/usercontext"
)

// BillingController receives payment webhooks and reports credit usage.
type BillingController struct {
	processor *billing.Processor
	credits   *credits.Service
}

func NewBillingController(processor *billing.Processor, svc *credits.Service) *BillingController {
	return &BillingController{processor: processor, credits: svc}
}

// HandleStripeWebhook verifies and applies one Stripe delivery. A non-2xx
// answer makes Stripe retry, so only bad signatures are rejected with 400.
func (bc *BillingController) HandleStripeWebhook(c *fiber.Ctx) error {
	payload := append([]byte(nil), c.Body()...)
	err := bc.processor.HandleStripe(c.UserContext(), payload, c.Get("Stripe-Signature"))
	switch {
	case err == nil:
		return c.JSON(fiber.Map{"received": true})
	case errors.Is(err, billing.ErrInvalidSignature):
		log.Warnf("[Billing] rejected webhook: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid signature"})
	default:
		log.Errorf("[Billing] webhook processing failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "processing failed"})
	}
}

// HandleUsage returns the credit balances of the session user.
func (bc *BillingController) HandleUsage(c *fiber.Ctx) error {
	return action.Respond(c, bc.credits.GetUsage(c.UserContext(), usercontext.GetUserID(c)))
}
