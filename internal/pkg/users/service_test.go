package users

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/clawsite/clawsite/app/models"
	"github.com/clawsite/clawsite/app/repository"
	"github.com/clawsite/clawsite/internal/pkg/action"
	"github.com/clawsite/clawsite/internal/pkg/database/dbtest"
)

type fakeCredits struct {
	has bool
	err error
}

func (f fakeCredits) HasSubscriptionCredits(context.Context, string) (bool, error) {
	return f.has, f.err
}

func newTestService(t *testing.T, credits CreditChecker) (*Service, *gorm.DB) {
	db := dbtest.Open(t)
	svc := NewService(repository.NewUserRepository(db), credits)
	svc.now = func() time.Time { return time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC) }
	return svc, db
}

func seedUser(t *testing.T, db *gorm.DB, email, role string) *models.User {
	u := &models.User{Name: email, Email: email, Role: role}
	require.NoError(t, db.Create(u).Error)
	return u
}

func TestListUsersPaginatesWithSource(t *testing.T) {
	svc, db := newTestService(t, nil)
	ctx := context.Background()

	for i := 0; i < 25; i++ {
		u := seedUser(t, db, fmt.Sprintf("user%02d@example.com", i), models.ROLE_USER)
		if i == 3 {
			require.NoError(t, db.Create(&models.UserSource{UserID: u.ID, UTMSource: "newsletter"}).Error)
		}
	}

	first := svc.ListUsers(ctx, 0, 0, repository.UserFilter{})
	require.True(t, first.OK(), first.Message)
	assert.Equal(t, int64(25), first.Data.Total)
	assert.Equal(t, DefaultPageSize, first.Data.PageSize)
	assert.Len(t, first.Data.Users, DefaultPageSize)

	second := svc.ListUsers(ctx, 1, 0, repository.UserFilter{})
	require.True(t, second.OK())
	assert.Len(t, second.Data.Users, 5)

	seen := map[string]bool{}
	withSource := 0
	for _, u := range append(first.Data.Users, second.Data.Users...) {
		assert.False(t, seen[u.ID], "duplicate %s", u.ID)
		seen[u.ID] = true
		if u.Source != nil {
			withSource++
			assert.Equal(t, "newsletter", u.Source.UTMSource)
		}
	}
	assert.Equal(t, 1, withSource)

	filtered := svc.ListUsers(ctx, 0, 500, repository.UserFilter{Query: " USER07 "})
	require.True(t, filtered.OK())
	assert.Equal(t, MaxPageSize, filtered.Data.PageSize)
	assert.Equal(t, int64(1), filtered.Data.Total)
}

func TestBanAndUnban(t *testing.T) {
	svc, db := newTestService(t, nil)
	ctx := context.Background()
	user := seedUser(t, db, "spam@example.com", models.ROLE_USER)
	admin := seedUser(t, db, "root@example.com", models.ROLE_ADMIN)

	assert.Equal(t, action.KindBadRequest, svc.BanUser(ctx, user.ID, "  ").Kind)
	assert.Equal(t, action.KindNotFound, svc.BanUser(ctx, "missing", "spam").Kind)
	assert.Equal(t, action.KindBadRequest, svc.BanUser(ctx, admin.ID, "spam").Kind)

	banned := svc.BanUser(ctx, user.ID, "spam links")
	require.True(t, banned.OK(), banned.Message)
	assert.True(t, banned.Data.Banned)
	assert.Equal(t, "spam links", banned.Data.BanReason)

	onlyBanned := true
	list := svc.ListUsers(ctx, 0, 20, repository.UserFilter{Banned: &onlyBanned})
	require.True(t, list.OK())
	assert.Equal(t, int64(1), list.Data.Total)

	unbanned := svc.UnbanUser(ctx, user.ID)
	require.True(t, unbanned.OK())
	assert.False(t, unbanned.Data.Banned)
	assert.Empty(t, unbanned.Data.BanReason)

	assert.Equal(t, action.KindNotFound, svc.UnbanUser(ctx, "missing").Kind)
}

func TestIsSubscriber(t *testing.T) {
	ctx := context.Background()

	t.Run("active subscription", func(t *testing.T) {
		svc, db := newTestService(t, fakeCredits{})
		u := seedUser(t, db, "sub@example.com", models.ROLE_USER)
		require.NoError(t, db.Create(&models.BillingSubscription{
			UserID: u.ID, Provider: "stripe", ProviderSubscriptionID: "sub_1", Status: models.BillingStatusTrialing,
		}).Error)
		assert.True(t, svc.IsSubscriber(ctx, u.ID))
	})

	t.Run("canceled subscription without credits", func(t *testing.T) {
		svc, db := newTestService(t, fakeCredits{})
		u := seedUser(t, db, "gone@example.com", models.ROLE_USER)
		require.NoError(t, db.Create(&models.BillingSubscription{
			UserID: u.ID, Provider: "stripe", ProviderSubscriptionID: "sub_2", Status: models.BillingStatusCanceled,
		}).Error)
		assert.False(t, svc.IsSubscriber(ctx, u.ID))
	})

	t.Run("remaining credits", func(t *testing.T) {
		svc, db := newTestService(t, fakeCredits{has: true})
		u := seedUser(t, db, "credits@example.com", models.ROLE_USER)
		assert.True(t, svc.IsSubscriber(ctx, u.ID))
	})

	t.Run("lookup failure", func(t *testing.T) {
		svc, db := newTestService(t, fakeCredits{has: true, err: errors.New("boom")})
		u := seedUser(t, db, "err@example.com", models.ROLE_USER)
		assert.False(t, svc.IsSubscriber(ctx, u.ID))
	})

	t.Run("anonymous", func(t *testing.T) {
		svc, _ := newTestService(t, fakeCredits{has: true})
		assert.False(t, svc.IsSubscriber(ctx, ""))
	})
}

func TestSignInCreatesAndLinks(t *testing.T) {
	svc, db := newTestService(t, nil)
	ctx := context.Background()

	id := Identity{Provider: "github", ProviderUserID: "42", Email: " Ada@Example.com ", Name: "Ada", AccessToken: "tok"}
	user, err := svc.SignIn(ctx, id, &models.UserSource{AffCode: "partner"})
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", user.Email)
	assert.True(t, user.EmailVerified)

	var src models.UserSource
	require.NoError(t, db.First(&src, "user_id = ?", user.ID).Error)
	assert.Equal(t, "partner", src.AffCode)

	// Same person through another provider lands on the same user.
	again, err := svc.SignIn(ctx, Identity{Provider: "google", ProviderUserID: "g-1", Email: "ada@example.com"}, &models.UserSource{AffCode: "other"})
	require.NoError(t, err)
	assert.Equal(t, user.ID, again.ID)

	var accounts int64
	require.NoError(t, db.Model(&models.ProviderAccount{}).Where("user_id = ?", user.ID).Count(&accounts).Error)
	assert.Equal(t, int64(2), accounts)

	require.NoError(t, db.First(&src, "user_id = ?", user.ID).Error)
	assert.Equal(t, "partner", src.AffCode, "source is written once")

	var stored models.User
	require.NoError(t, db.First(&stored, "id = ?", user.ID).Error)
	require.NotNil(t, stored.LastLoginAt)
}

func TestSignInByEmailAndBans(t *testing.T) {
	svc, db := newTestService(t, nil)
	ctx := context.Background()

	user, err := svc.SignIn(ctx, Identity{Provider: ProviderEmail, Email: "otp@example.com"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "otp", user.Name)
	assert.True(t, strings.HasPrefix(user.Image, "https://www.gravatar.com/avatar/"), user.Image)
	assert.Equal(t, user.Image, gravatarURL(" OTP@example.com"))

	require.NoError(t, db.Model(&models.User{}).Where("id = ?", user.ID).Update("banned", true).Error)
	_, err = svc.SignIn(ctx, Identity{Provider: ProviderEmail, Email: "otp@example.com"}, nil)
	assert.ErrorIs(t, err, ErrBanned)

	expired := svc.now().Add(-time.Hour)
	require.NoError(t, db.Model(&models.User{}).Where("id = ?", user.ID).Update("ban_expires", expired).Error)
	_, err = svc.SignIn(ctx, Identity{Provider: ProviderEmail, Email: "otp@example.com"}, nil)
	assert.NoError(t, err)

	_, err = svc.SignIn(ctx, Identity{Provider: ProviderEmail}, nil)
	assert.Error(t, err)
}

func TestSourceFromRequest(t *testing.T) {
	app := fiber.New()
	var got *models.UserSource
	app.Get("/", func(c *fiber.Ctx) error {
		got = SourceFromRequest(c)
		return nil
	})

	req := httptest.NewRequest("GET", "/", nil)
	req.AddCookie(newCookie(TrackingCookie, url.QueryEscape(`{"affCode":"aff1","utmSource":"x","utmCampaign":"launch"}`)))
	req.Header.Set("CF-IPCountry", "de")
	req.Header.Set("Referer", "https://news.example.com/post")
	req.Header.Set("Accept-Language", "ja-JP,ja;q=0.9")
	req.Header.Set("User-Agent", "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.0 Mobile/15E148 Safari/604.1")
	_, err := app.Test(req)
	require.NoError(t, err)

	require.NotNil(t, got)
	assert.Equal(t, "aff1", got.AffCode)
	assert.Equal(t, "launch", got.UTMCampaign)
	assert.Equal(t, "DE", got.CountryCode)
	assert.Equal(t, "https://news.example.com/post", got.Referrer)
	assert.Equal(t, "ja-JP", got.Language)
	assert.Equal(t, "mobile", got.DeviceType)
	assert.Equal(t, "Apple", got.DeviceBrand)
	assert.NotEmpty(t, got.Browser)
}

func newCookie(name, value string) *http.Cookie {
	return &http.Cookie{Name: name, Value: value}
}
