// Package statistics computes the admin dashboard counters.
package statistics

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/clawsite/clawsite/app/models"
	"github.com/clawsite/clawsite/internal/pkg/cache"
)

const (
	CacheExpiration = 5 * time.Minute
	chartDays       = 7
	dateLayout      = "2006-01-02"
)

// Data is the dashboard payload.
type Data struct {
	TotalUsers          int64               `json:"totalUsers"`
	NewUsersToday       int64               `json:"newUsersToday"`
	BannedUsers         int64               `json:"bannedUsers"`
	ActiveSubscriptions int64               `json:"activeSubscriptions"`
	PublishedPosts      map[string]int64    `json:"publishedPosts"`
	DraftPosts          map[string]int64    `json:"draftPosts"`
	CreditsGrantedToday int64               `json:"creditsGrantedToday"`
	UserSignups         []models.DailyStats `json:"userSignups"`
	GeneratedAt         time.Time           `json:"generatedAt"`
}

// Service reads the counters from the database. With a Redis client the
// snapshot is cached for CacheExpiration.
type Service struct {
	db  *gorm.DB
	rdb redis.Cmdable
	now func() time.Time
}

func NewService(db *gorm.DB, rdb redis.Cmdable) *Service {
	return &Service{db: db, rdb: rdb, now: time.Now}
}

func cacheKey() string {
	return cache.Key("statistics", "dashboard")
}

// Get returns the cached snapshot or computes a fresh one.
func (s *Service) Get(ctx context.Context) (*Data, error) {
	if s.rdb != nil {
		raw, err := s.rdb.Get(ctx, cacheKey()).Bytes()
		if err == nil {
			var d Data
			if err := json.Unmarshal(raw, &d); err == nil {
				return &d, nil
			}
		} else if !cache.IsMiss(err) {
			log.Warnf("[Statistics] cache read failed: %v", err)
		}
	}

	d, err := s.compute(ctx)
	if err != nil {
		return nil, err
	}
	if s.rdb != nil {
		if raw, err := json.Marshal(d); err == nil {
			if err := s.rdb.Set(ctx, cacheKey(), raw, CacheExpiration).Err(); err != nil {
				log.Warnf("[Statistics] cache write failed: %v", err)
			}
		}
	}
	return d, nil
}

// Invalidate drops the cached snapshot.
func (s *Service) Invalidate(ctx context.Context) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Del(ctx, cacheKey()).Err(); err != nil {
		log.Warnf("[Statistics] cache invalidation failed: %v", err)
	}
}

func (s *Service) compute(ctx context.Context) (*Data, error) {
	db := s.db.WithContext(ctx)
	now := s.now().UTC()
	todayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	d := &Data{
		PublishedPosts: map[string]int64{},
		DraftPosts:     map[string]int64{},
		GeneratedAt:    now,
	}

	if err := db.Model(&models.User{}).Count(&d.TotalUsers).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.User{}).Where("created_at >= ?", todayStart).Count(&d.NewUsersToday).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.User{}).Where("banned = ?", true).Count(&d.BannedUsers).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.BillingSubscription{}).
		Where("status IN ?", []string{models.BillingStatusActive, models.BillingStatusTrialing}).
		Count(&d.ActiveSubscriptions).Error; err != nil {
		return nil, err
	}

	var rows []struct {
		PostType string
		Status   string
		Count    int64
	}
	if err := db.Model(&models.Post{}).
		Select("post_type, status, COUNT(*) AS count").
		Group("post_type, status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, r := range rows {
		switch r.Status {
		case models.PostStatusPublished:
			d.PublishedPosts[r.PostType] = r.Count
		case models.PostStatusDraft:
			d.DraftPosts[r.PostType] = r.Count
		}
	}

	var granted struct{ Total int64 }
	if err := db.Model(&models.CreditLog{}).
		Select("COALESCE(SUM(amount), 0) AS total").
		Where("amount > 0 AND created_at >= ?", todayStart).
		Scan(&granted).Error; err != nil {
		return nil, err
	}
	d.CreditsGrantedToday = granted.Total

	signups, err := s.dailyUsers(ctx, todayStart)
	if err != nil {
		return nil, err
	}
	d.UserSignups = signups
	return d, nil
}

// dailyUsers counts signups of the last chartDays days, oldest first, with
// zero entries for days without signups.
func (s *Service) dailyUsers(ctx context.Context, todayStart time.Time) ([]models.DailyStats, error) {
	start := todayStart.AddDate(0, 0, -(chartDays - 1))
	var created []time.Time
	if err := s.db.WithContext(ctx).Model(&models.User{}).
		Where("created_at >= ?", start).
		Pluck("created_at", &created).Error; err != nil {
		return nil, err
	}

	counts := map[string]int{}
	for _, t := range created {
		counts[t.UTC().Format(dateLayout)]++
	}
	out := make([]models.DailyStats, chartDays)
	for i := range out {
		day := start.AddDate(0, 0, i).Format(dateLayout)
		out[i] = models.DailyStats{Date: day, Count: counts[day]}
	}
	return out, nil
}
