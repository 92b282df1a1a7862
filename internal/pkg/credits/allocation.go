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

// AllocateYearlyCredits grants the next month of every annual plan whose
// next credit date has passed. Each month is granted at most once; the audit
// row's order id is "<orderId>:<YYYY-MM>". It returns how many months were
// granted. Missed months are caught up one at a time.
func (s *Service) AllocateYearlyCredits(ctx context.Context, now time.Time) (int, error) {
	now = now.UTC()
	var due []string
	err := s.db.WithContext(ctx).Model(&models.Usage{}).
		Where("next_allocation_at IS NOT NULL AND next_allocation_at <= ?", now).
		Order("next_allocation_at ASC").
		Pluck("user_id", &due).Error
	if err != nil {
		return 0, fmt.Errorf("find due allocations: %w", err)
	}

	granted := 0
	var failed []error
	for _, userID := range due {
		for {
			if err := ctx.Err(); err != nil {
				return granted, err
			}
			more, err := s.allocateNext(ctx, userID, now)
			if err != nil {
				log.Errorf("[Credits] yearly allocation for %s failed: %v", userID, err)
				failed = append(failed, err)
				break
			}
			if !more {
				break
			}
			granted++
		}
	}
	if granted > 0 {
		log.Infof("[Credits] allocated %d monthly grants for annual plans", granted)
	}
	return granted, errors.Join(failed...)
}

// allocateNext grants one due month for userID. It reports false when nothing
// was due.
func (s *Service) allocateNext(ctx context.Context, userID string, now time.Time) (bool, error) {
	allocated := false
	err := s.withRetry(ctx, "yearly allocation "+userID, func() error {
		allocated = false
		return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			var usage models.Usage
			if err := tx.Where("user_id = ?", userID).First(&usage).Error; err != nil {
				return err
			}
			balance := usage.BalanceJSONB.Data()
			details := balance.YearlyAllocationDetails
			if details == nil || details.RemainingMonths <= 0 {
				return tx.Model(&models.Usage{}).Where("user_id = ?", userID).
					Update("next_allocation_at", nil).Error
			}
			if details.NextCreditDate.After(now) {
				return nil
			}

			month := details.NextCreditDate.UTC().Format(monthLayout)
			entry := &models.CreditLog{
				UserID:         userID,
				Amount:         details.MonthlyCredits,
				Type:           models.CreditLogSubscriptionGrant,
				Notes:          fmt.Sprintf("Annual plan credits for %s", month),
				RelatedOrderID: details.RelatedOrderID + ":" + month,
			}
			if err := claim(tx, entry); err != nil {
				return err
			}

			updated := *details
			updated.RemainingMonths--
			updated.NextCreditDate = details.NextCreditDate.AddDate(0, 1, 0)
			updated.LastAllocatedMonth = month
			balance.YearlyAllocationDetails = &updated

			var next *time.Time
			if updated.RemainingMonths > 0 {
				next = &updated.NextCreditDate
			}
			err := tx.Model(&models.Usage{}).Where("user_id = ?", userID).Updates(map[string]interface{}{
				"subscription_credits_balance": updated.MonthlyCredits,
				"balance_jsonb":                newBalance(balance),
				"next_allocation_at":           next,
			}).Error
			if err != nil {
				return err
			}
			if err := settle(tx, entry); err != nil {
				return err
			}
			allocated = true
			return nil
		})
	})
	return allocated, err
}
