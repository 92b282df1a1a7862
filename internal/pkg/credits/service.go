// Package credits grants and allocates user credits from pricing plan benefits.
package credits

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/clawsite/clawsite/app/models"
)

var (
	// ErrDuplicateGrant means the (user, type, order) grant was already applied.
	ErrDuplicateGrant = errors.New("credits already granted for this order")
	ErrPlanNotFound   = errors.New("pricing plan not found")
)

const (
	defaultAttempts = 3
	defaultBackoff  = time.Second
)

// PlanLookup resolves the plan a payment refers to.
type PlanLookup interface {
	GetPlan(ctx context.Context, id string) (*models.PricingPlan, error)
}

type Option func(*Service)

// WithBackoff sets the base delay; attempt n waits n times base.
func WithBackoff(base time.Duration) Option {
	return func(s *Service) { s.backoff = base }
}

func WithAttempts(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.attempts = n
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

type Service struct {
	db       *gorm.DB
	plans    PlanLookup
	attempts int
	backoff  time.Duration
	now      func() time.Time
}

func NewService(db *gorm.DB, plans PlanLookup, opts ...Option) *Service {
	s := &Service{
		db:       db,
		plans:    plans,
		attempts: defaultAttempts,
		backoff:  defaultBackoff,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) benefits(ctx context.Context, planID string) (*models.PricingPlan, models.PlanBenefits, error) {
	plan, err := s.plans.GetPlan(ctx, planID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.PlanBenefits{}, fmt.Errorf("%w: %s", ErrPlanNotFound, planID)
		}
		return nil, models.PlanBenefits{}, err
	}
	b, err := plan.Benefits()
	if err != nil {
		return nil, models.PlanBenefits{}, fmt.Errorf("plan %s benefits: %w", planID, err)
	}
	return plan, b, nil
}

// GrantOneTime adds the plan's one-time credits to the user's balance.
// Replaying the same order is a no-op.
func (s *Service) GrantOneTime(ctx context.Context, userID, planID, orderID string) error {
	if userID == "" || orderID == "" {
		return errors.New("user id and order id are required")
	}
	_, b, err := s.benefits(ctx, planID)
	if err != nil {
		return err
	}
	if b.OneTimeCredits <= 0 {
		log.Infof("[Credits] plan %s grants no one-time credits, skipping order %s", planID, orderID)
		return nil
	}

	return s.withRetry(ctx, "one-time grant "+orderID, func() error {
		return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			entry := &models.CreditLog{
				UserID:         userID,
				Amount:         b.OneTimeCredits,
				Type:           models.CreditLogOneTimePurchase,
				Notes:          fmt.Sprintf("One-time purchase of plan %s", planID),
				RelatedOrderID: orderID,
			}
			if err := claim(tx, entry); err != nil {
				return err
			}
			err := upsertUsage(tx, &models.Usage{UserID: userID, OneTimeCreditsBalance: b.OneTimeCredits}, map[string]interface{}{
				"one_time_credits_balance": gorm.Expr("one_time_credits_balance + ?", b.OneTimeCredits),
			})
			if err != nil {
				return err
			}
			return settle(tx, entry)
		})
	})
}

// GrantSubscription applies a paid subscription period. Monthly plans reset
// the subscription balance; yearly plans reset it to the first month's credits
// and schedule the remaining months.
func (s *Service) GrantSubscription(ctx context.Context, userID, planID, orderID string, periodStart time.Time) error {
	if userID == "" || orderID == "" {
		return errors.New("user id and order id are required")
	}
	plan, b, err := s.benefits(ctx, planID)
	if err != nil {
		return err
	}
	if periodStart.IsZero() {
		periodStart = s.now()
	}
	periodStart = periodStart.UTC()
	month := periodStart.Format(monthLayout)

	var (
		balance models.UsageBalance
		next    *time.Time
	)
	switch {
	case plan.RecurringInterval == models.IntervalYear && b.TotalMonths > 0 && b.MonthlyCredits > 0:
		details := &models.YearlyAllocationDetails{
			RemainingMonths:    b.TotalMonths - 1,
			NextCreditDate:     periodStart.AddDate(0, 1, 0),
			MonthlyCredits:     b.MonthlyCredits,
			LastAllocatedMonth: month,
			RelatedOrderID:     orderID,
		}
		balance.YearlyAllocationDetails = details
		if details.RemainingMonths > 0 {
			next = &details.NextCreditDate
		}
	case b.MonthlyCredits > 0:
		balance.MonthlyAllocationDetails = &models.MonthlyAllocationDetails{
			MonthlyCredits:     b.MonthlyCredits,
			RelatedOrderID:     orderID,
			LastAllocatedMonth: month,
		}
	default:
		log.Infof("[Credits] plan %s grants no subscription credits, skipping order %s", planID, orderID)
		return nil
	}

	return s.withRetry(ctx, "subscription grant "+orderID, func() error {
		return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			entry := &models.CreditLog{
				UserID:         userID,
				Amount:         b.MonthlyCredits,
				Type:           models.CreditLogSubscriptionGrant,
				Notes:          fmt.Sprintf("Subscription credits for %s (plan %s)", month, planID),
				RelatedOrderID: orderID,
			}
			if err := claim(tx, entry); err != nil {
				return err
			}
			row := &models.Usage{
				UserID:                     userID,
				SubscriptionCreditsBalance: b.MonthlyCredits,
				NextAllocationAt:           next,
			}
			row.BalanceJSONB = newBalance(balance)
			err := upsertUsage(tx, row, map[string]interface{}{
				"subscription_credits_balance": b.MonthlyCredits,
				"balance_jsonb":                row.BalanceJSONB,
				"next_allocation_at":           next,
			})
			if err != nil {
				return err
			}
			return settle(tx, entry)
		})
	})
}

// withRetry runs fn up to s.attempts times, waiting attempt*backoff between
// tries. A duplicate grant counts as success.
func (s *Service) withRetry(ctx context.Context, op string, fn func() error) error {
	var err error
	for attempt := 1; attempt <= s.attempts; attempt++ {
		err = fn()
		if err == nil {
			return nil
		}
		if errors.Is(err, ErrDuplicateGrant) {
			log.Infof("[Credits] %s already applied", op)
			return nil
		}
		log.Warnf("[Credits] %s attempt %d/%d failed: %v", op, attempt, s.attempts, err)
		if attempt == s.attempts {
			break
		}
		if werr := sleep(ctx, time.Duration(attempt)*s.backoff); werr != nil {
			return werr
		}
	}
	log.Errorf("[Credits] %s failed after %d attempts: %v", op, s.attempts, err)
	return fmt.Errorf("%s: %w", op, err)
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
