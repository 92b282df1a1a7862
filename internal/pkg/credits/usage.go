package credits

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/clawsite/clawsite/app/models"
	"github.com/clawsite/clawsite/internal/pkg/action"
)

// UsageView is the dashboard summary of a user's credits.
type UsageView struct {
	SubscriptionCreditsBalance int                             `json:"subscriptionCreditsBalance"`
	OneTimeCreditsBalance      int                             `json:"oneTimeCreditsBalance"`
	TotalCredits               int                             `json:"totalCredits"`
	Monthly                    *models.MonthlyAllocationDetails `json:"monthlyAllocationDetails,omitempty"`
	Yearly                     *models.YearlyAllocationDetails  `json:"yearlyAllocationDetails,omitempty"`
	History                    []models.CreditLog              `json:"history"`
}

const historyLimit = 20

// GetUsage returns the balances of userID. Users without a row have zero credits.
func (s *Service) GetUsage(ctx context.Context, userID string) action.Result[UsageView] {
	if userID == "" {
		return action.Unauthorized[UsageView]("Please log in.")
	}
	view := UsageView{History: []models.CreditLog{}}

	var usage models.Usage
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&usage).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return action.OK(view)
	case err != nil:
		log.Errorf("[Credits] usage lookup for %s failed: %v", userID, err)
		return action.Internal[UsageView]()
	}

	balance := usage.BalanceJSONB.Data()
	view.SubscriptionCreditsBalance = usage.SubscriptionCreditsBalance
	view.OneTimeCreditsBalance = usage.OneTimeCreditsBalance
	view.TotalCredits = usage.TotalCredits()
	view.Monthly = balance.MonthlyAllocationDetails
	view.Yearly = balance.YearlyAllocationDetails

	err = s.db.WithContext(ctx).Where("user_id = ?", userID).
		Order("created_at DESC").Limit(historyLimit).
		Find(&view.History).Error
	if err != nil {
		log.Errorf("[Credits] credit history for %s failed: %v", userID, err)
		return action.Internal[UsageView]()
	}
	return action.OK(view)
}

// HasSubscriptionCredits reports whether the user holds subscription credits
// from a plan that is still allocating.
func (s *Service) HasSubscriptionCredits(ctx context.Context, userID string) (bool, error) {
	var usage models.Usage
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&usage).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if usage.SubscriptionCreditsBalance <= 0 {
		return false, nil
	}
	b := usage.BalanceJSONB.Data()
	return b.MonthlyAllocationDetails != nil ||
		(b.YearlyAllocationDetails != nil && b.YearlyAllocationDetails.RemainingMonths > 0), nil
}
