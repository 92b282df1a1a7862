package billing

import "time"

const ProviderStripe = "stripe"

// SubscriptionState is the provider-agnostic shape synced into billing_subscriptions.
type SubscriptionState struct {
	UserID                 string
	PlanID                 string
	Provider               string
	ProviderSubscriptionID string
	BillingInterval        string
	Status                 string
	CurrentPeriodStart     *time.Time
	CurrentPeriodEnd       *time.Time
	CancelAtPeriodEnd      bool
}

// WebhookEventInput is the normalized input for webhook event persistence.
type WebhookEventInput struct {
	Provider        string
	ProviderEventID string
	EventType       string
	PayloadJSON     string
	SignatureValid  bool
}

// GrantFailure describes a payment whose credits could not be granted.
type GrantFailure struct {
	EventID   string
	EventType string
	UserID    string
	PlanID    string
	OrderID   string
	Err       error
}
