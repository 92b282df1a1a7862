package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clawsite/clawsite/app/models"
	"github.com/clawsite/clawsite/internal/pkg/pricing"
)

func newPricingApp(t *testing.T) *fiber.App {
	env := newTestEnv(t)
	require.NoError(t, env.repos.Pricing.UpsertGroup(context.Background(), models.DefaultPricingGroup))
	pc := NewPricingController(pricing.NewService(env.repos.Pricing, models.PricingEnvTest))

	app := fiber.New()
	app.Get("/pricing", pc.HandlePublicPlans)
	app.Get("/admin/pricing/groups", pc.HandleListGroups)
	app.Post("/admin/pricing/groups", pc.HandleCreateGroup)
	app.Delete("/admin/pricing/groups/:slug", pc.HandleDeleteGroup)
	app.Get("/admin/pricing/plans", pc.HandleListPlans)
	app.Post("/admin/pricing/plans", pc.HandleCreatePlan)
	app.Get("/admin/pricing/plans/:id", pc.HandleGetPlan)
	app.Put("/admin/pricing/plans/:id", pc.HandleUpdatePlan)
	app.Delete("/admin/pricing/plans/:id", pc.HandleDeletePlan)
	return app
}

func TestPricingAdminRoundTrip(t *testing.T) {
	app := newPricingApp(t)

	resp := postJSON(t, app, "/admin/pricing/groups", `{"slug":"launch"}`)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	resp = postJSON(t, app, "/admin/pricing/groups", `{"slug":"Bad Slug"}`)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp = postJSON(t, app, "/admin/pricing/plans", `{
		"cardTitle": "Pro",
		"groupSlug": "launch",
		"paymentType": "recurring",
		"recurringInterval": "month",
		"isActive": true,
		"langJsonb": {"zh": {"cardTitle": "专业版"}}
	}`)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var plan models.PricingPlan
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, resp).Data, &plan))
	require.NotEmpty(t, plan.ID)

	resp = get(t, app, "/pricing?locale=zh", "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var plans []pricing.LocalizedPlan
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, resp).Data, &plans))
	require.Len(t, plans, 1)
	assert.Equal(t, "专业版", plans[0].CardTitle)

	// a group with plans cannot be removed
	req := httptest.NewRequest(http.MethodDelete, "/admin/pricing/groups/launch", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.NotEqual(t, fiber.StatusOK, resp.StatusCode)

	req = httptest.NewRequest(http.MethodDelete, "/admin/pricing/plans/"+plan.ID, nil)
	resp, err = app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp = get(t, app, "/admin/pricing/plans/"+plan.ID, "")
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}
