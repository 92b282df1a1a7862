package models

import "time"

const (
	BillingStatusActive     = "active"
	BillingStatusTrialing   = "trialing"
	BillingStatusPastDue    = "past_due"
	BillingStatusCanceled   = "canceled"
	BillingStatusIncomplete = "incomplete"
	BillingStatusUnpaid     = "unpaid"
	BillingStatusPaused     = "paused"
)

// BillingSubscription mirrors a provider subscription. Active and trialing rows
// make the user a subscriber.
type BillingSubscription struct {
	ID                     uint       `gorm:"primaryKey" json:"id"`
	UserID                 string     `gorm:"type:varchar(36);not null;index" json:"userId"`
	PlanID                 string     `gorm:"type:varchar(36);index" json:"planId"`
	Provider               string     `gorm:"type:varchar(20);not null;index:ux_billing_subscriptions_provider_subid,unique,priority:1" json:"provider"`
	ProviderSubscriptionID string     `gorm:"type:varchar(191);not null;index:ux_billing_subscriptions_provider_subid,unique,priority:2" json:"providerSubscriptionId"`
	Status                 string     `gorm:"type:varchar(32);not null;default:'active';index" json:"status"`
	BillingInterval        string     `gorm:"type:varchar(16)" json:"billingInterval"`
	CurrentPeriodStart     *time.Time `json:"currentPeriodStart,omitempty"`
	CurrentPeriodEnd       *time.Time `json:"currentPeriodEnd,omitempty"`
	CancelAtPeriodEnd      bool       `gorm:"default:false" json:"cancelAtPeriodEnd"`
	CreatedAt              time.Time  `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt              time.Time  `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (s *BillingSubscription) IsActive() bool {
	return s.Status == BillingStatusActive || s.Status == BillingStatusTrialing
}
