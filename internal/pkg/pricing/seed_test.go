package pricing

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const seedYAML = `
groups: [launch]
plans:
  - id: 7d1f7a7e-0000-4000-8000-000000000001
    cardTitle: Starter Pack
    paymentType: one_time
    price: "9.90"
    currency: usd
    benefits:
      oneTimeCredits: 100
    features:
      - description: 100 credits
        included: true
    lang:
      zh:
        cardTitle: 入门包
  - id: 7d1f7a7e-0000-4000-8000-000000000002
    group: launch
    cardTitle: Pro Yearly
    paymentType: recurring
    recurringInterval: year
    active: false
    benefits:
      monthlyCredits: 500
      totalMonths: 12
`

func TestSeedIsRepeatable(t *testing.T) {
	svc := newService(t)
	path := filepath.Join(t.TempDir(), "pricing.yaml")
	require.NoError(t, os.WriteFile(path, []byte(seedYAML), 0o644))

	f, err := LoadSeed(path)
	require.NoError(t, err)
	require.NoError(t, svc.Seed(context.Background(), f))
	require.NoError(t, svc.Seed(context.Background(), f))

	plans := svc.ListPlans(context.Background())
	require.True(t, plans.OK())
	require.Len(t, plans.Data, 2)

	groups := svc.ListGroups(context.Background())
	assert.Len(t, groups.Data, 2)

	starter := svc.GetPlan(context.Background(), "7d1f7a7e-0000-4000-8000-000000000001")
	require.True(t, starter.OK())
	assert.True(t, starter.Data.IsActive)
	assert.Equal(t, "9.9", starter.Data.Price.Decimal.String())
	b, err := starter.Data.Benefits()
	require.NoError(t, err)
	assert.Equal(t, 100, b.OneTimeCredits)
	assert.Equal(t, "入门包", Localize(starter.Data, "zh").CardTitle)

	yearly := svc.GetPlan(context.Background(), "7d1f7a7e-0000-4000-8000-000000000002")
	require.True(t, yearly.OK())
	assert.False(t, yearly.Data.IsActive)
	assert.Equal(t, "launch", yearly.Data.GroupSlug)
}

func TestSeedRejectsBadGroup(t *testing.T) {
	svc := newService(t)
	err := svc.Seed(context.Background(), &SeedFile{Groups: []string{"Bad Group"}})
	assert.Error(t, err)
}
