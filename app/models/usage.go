package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	CreditLogOneTimePurchase   = "one_time_purchase"
	CreditLogSubscriptionGrant = "subscription_grant"
)

// MonthlyAllocationDetails is written when a monthly subscription renews.
type MonthlyAllocationDetails struct {
	MonthlyCredits     int    `json:"monthlyCredits"`
	RelatedOrderID     string `json:"relatedOrderId"`
	LastAllocatedMonth string `json:"lastAllocatedMonth"`
}

// YearlyAllocationDetails tracks the rolling monthly allocation of an annual plan.
type YearlyAllocationDetails struct {
	RemainingMonths    int       `json:"remainingMonths"`
	NextCreditDate     time.Time `json:"nextCreditDate"`
	MonthlyCredits     int       `json:"monthlyCredits"`
	LastAllocatedMonth string    `json:"lastAllocatedMonth"`
	RelatedOrderID     string    `json:"relatedOrderId"`
}

type UsageBalance struct {
	MonthlyAllocationDetails *MonthlyAllocationDetails `json:"monthlyAllocationDetails,omitempty"`
	YearlyAllocationDetails  *YearlyAllocationDetails  `json:"yearlyAllocationDetails,omitempty"`
}

// Usage holds a user's credit balances. One row per user.
type Usage struct {
	UserID                     string                           `gorm:"primaryKey;type:varchar(36)" json:"userId"`
	SubscriptionCreditsBalance int                              `gorm:"not null;default:0" json:"subscriptionCreditsBalance"`
	OneTimeCreditsBalance      int                              `gorm:"not null;default:0" json:"oneTimeCreditsBalance"`
	BalanceJSONB               datatypes.JSONType[UsageBalance] `gorm:"column:balance_jsonb" json:"balanceJsonb"`
	NextAllocationAt           *time.Time                       `gorm:"index" json:"-"`
	CreatedAt                  time.Time                        `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt                  time.Time                        `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (Usage) TableName() string {
	return "usage"
}

func (u *Usage) TotalCredits() int {
	return u.SubscriptionCreditsBalance + u.OneTimeCreditsBalance
}

// CreditLog is the audit trail of balance mutations. (user_id, type, related_order_id)
// is unique so replayed grants are detected.
type CreditLog struct {
	ID                       string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	UserID                   string    `gorm:"type:varchar(36);not null;uniqueIndex:ux_credit_logs_grant,priority:1" json:"userId"`
	Amount                   int       `gorm:"not null" json:"amount"`
	OneTimeBalanceAfter      int       `gorm:"not null" json:"oneTimeBalanceAfter"`
	SubscriptionBalanceAfter int       `gorm:"not null" json:"subscriptionBalanceAfter"`
	Type                     string    `gorm:"type:varchar(50);not null;uniqueIndex:ux_credit_logs_grant,priority:2" json:"type"`
	Notes                    string    `gorm:"type:text" json:"notes"`
	RelatedOrderID           string    `gorm:"type:varchar(191);not null;default:'';uniqueIndex:ux_credit_logs_grant,priority:3" json:"relatedOrderId"`
	CreatedAt                time.Time `gorm:"autoCreateTime;index" json:"createdAt"`
}

func (CreditLog) TableName() string {
	return "credit_logs"
}

func (c *CreditLog) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}
