package credits

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clawsite/clawsite/app/models"
)

func TestYearlyGrantSchedulesRemainingMonths(t *testing.T) {
	f := newFixture(t)
	start := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)

	require.NoError(t, f.svc.GrantSubscription(f.ctx, "u1", f.plan["yearly"], "in_y", start))
	u := f.usage(t, "u1")
	assert.Equal(t, 40, u.SubscriptionCreditsBalance)
	details := u.BalanceJSONB.Data().YearlyAllocationDetails
	require.NotNil(t, details)
	assert.Equal(t, 2, details.RemainingMonths)
	assert.True(t, details.NextCreditDate.Equal(start.AddDate(0, 1, 0)))
	assert.Equal(t, "2025-01", details.LastAllocatedMonth)
	require.NotNil(t, u.NextAllocationAt)
}

func TestAllocateYearlyCreditsExactlyOncePerMonth(t *testing.T) {
	f := newFixture(t)
	start := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)
	require.NoError(t, f.svc.GrantSubscription(f.ctx, "u1", f.plan["yearly"], "in_y", start))

	n, err := f.svc.AllocateYearlyCredits(f.ctx, start.AddDate(0, 0, 10))
	require.NoError(t, err)
	assert.Zero(t, n, "nothing is due before the next credit date")

	require.NoError(t, f.db.Model(&models.Usage{}).Where("user_id = ?", "u1").
		Update("subscription_credits_balance", 3).Error)

	feb := time.Date(2025, 2, 16, 0, 0, 0, 0, time.UTC)
	n, err = f.svc.AllocateYearlyCredits(f.ctx, feb)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	n, err = f.svc.AllocateYearlyCredits(f.ctx, feb)
	require.NoError(t, err)
	assert.Zero(t, n)

	u := f.usage(t, "u1")
	assert.Equal(t, 40, u.SubscriptionCreditsBalance)
	details := u.BalanceJSONB.Data().YearlyAllocationDetails
	assert.Equal(t, 1, details.RemainingMonths)
	assert.Equal(t, "2025-02", details.LastAllocatedMonth)

	var entry models.CreditLog
	require.NoError(t, f.db.Where("related_order_id = ?", "in_y:2025-02").First(&entry).Error)
	assert.Equal(t, 40, entry.SubscriptionBalanceAfter)
}

func TestAllocateYearlyCreditsCatchesUpAndStops(t *testing.T) {
	f := newFixture(t)
	start := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)
	require.NoError(t, f.svc.GrantSubscription(f.ctx, "u1", f.plan["yearly"], "in_y", start))

	n, err := f.svc.AllocateYearlyCredits(f.ctx, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	u := f.usage(t, "u1")
	assert.Nil(t, u.NextAllocationAt)
	assert.Equal(t, 0, u.BalanceJSONB.Data().YearlyAllocationDetails.RemainingMonths)
	assert.EqualValues(t, 3, f.logCount(t, "u1"))

	n, err = f.svc.AllocateYearlyCredits(f.ctx, time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestGetUsage(t *testing.T) {
	f := newFixture(t)

	r := f.svc.GetUsage(f.ctx, "nobody")
	require.True(t, r.OK())
	assert.Zero(t, r.Data.TotalCredits)
	assert.Empty(t, r.Data.History)

	require.NoError(t, f.svc.GrantOneTime(f.ctx, "u1", f.plan["pack"], "cs_1"))
	require.NoError(t, f.svc.GrantSubscription(f.ctx, "u1", f.plan["yearly"], "in_y", time.Now()))

	r = f.svc.GetUsage(f.ctx, "u1")
	require.True(t, r.OK())
	assert.Equal(t, 140, r.Data.TotalCredits)
	assert.NotNil(t, r.Data.Yearly)
	assert.Len(t, r.Data.History, 2)

	has, err := f.svc.HasSubscriptionCredits(f.ctx, "u1")
	require.NoError(t, err)
	assert.True(t, has)

	assert.False(t, f.svc.GetUsage(f.ctx, "").OK())
}
