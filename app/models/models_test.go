package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func TestPostValidate(t *testing.T) {
	base := Post{
		Language:   "en",
		PostType:   PostTypeBlog,
		Title:      "Hello world",
		Slug:       "hello-world",
		Status:     PostStatusDraft,
		Visibility: VisibilityPublic,
	}
	require.NoError(t, base.Validate())

	tests := []struct {
		name   string
		mutate func(p *Post)
	}{
		{"short title", func(p *Post) { p.Title = "Hi" }},
		{"short slug", func(p *Post) { p.Slug = "ab" }},
		{"bad language", func(p *Post) { p.Language = "de" }},
		{"bad status", func(p *Post) { p.Status = "live" }},
		{"bad visibility", func(p *Post) { p.Visibility = "friends" }},
		{"bad image url", func(p *Post) { p.FeaturedImageURL = "not a url" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := base
			tt.mutate(&p)
			assert.Error(t, p.Validate())
		})
	}
}

func TestPostMarkPublished(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	p := &Post{Status: PostStatusDraft}
	p.MarkPublished(now)
	assert.Nil(t, p.PublishedAt)

	p.Status = PostStatusPublished
	p.MarkPublished(now)
	require.NotNil(t, p.PublishedAt)
	assert.True(t, p.PublishedAt.Equal(now))

	p.MarkPublished(now.Add(time.Hour))
	assert.True(t, p.PublishedAt.Equal(now), "first publish date is kept")
}

func TestPlanBenefits(t *testing.T) {
	p := &PricingPlan{BenefitsJSONB: datatypes.JSON(`{"oneTimeCredits":100,"monthlyCredits":20,"totalMonths":12,"tier":"pro"}`)}
	b, err := p.Benefits()
	require.NoError(t, err)
	assert.Equal(t, 100, b.OneTimeCredits)
	assert.Equal(t, 20, b.MonthlyCredits)
	assert.Equal(t, 12, b.TotalMonths)
	assert.Equal(t, "pro", b.Extra["tier"])

	empty := &PricingPlan{}
	b, err = empty.Benefits()
	require.NoError(t, err)
	assert.Zero(t, b.OneTimeCredits)
	assert.Nil(t, b.Extra)
}

func TestUserIsBanned(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	assert.False(t, (&User{}).IsBanned(now))
	assert.True(t, (&User{Banned: true}).IsBanned(now))
	assert.True(t, (&User{Banned: true, BanExpires: &future}).IsBanned(now))
	assert.False(t, (&User{Banned: true, BanExpires: &past}).IsBanned(now))
}

func TestVerificationExpired(t *testing.T) {
	now := time.Now()
	v := &Verification{ExpiresAt: now.Add(10 * time.Minute)}
	assert.False(t, v.Expired(now))
	assert.True(t, v.Expired(now.Add(10*time.Minute)))
}
