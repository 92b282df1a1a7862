package billing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"

	"github.com/clawsite/clawsite/app/models"
)

var ErrInvalidSignature = errors.New("invalid webhook signature")

// Granter applies credits for a paid order.
type Granter interface {
	GrantOneTime(ctx context.Context, userID, planID, orderID string) error
	GrantSubscription(ctx context.Context, userID, planID, orderID string, periodStart time.Time) error
}

// Notifier alerts a human when credits could not be granted.
type Notifier interface {
	CreditGrantFailed(ctx context.Context, f GrantFailure) error
}

// Processor verifies, records and dispatches Stripe webhook events.
type Processor struct {
	repo    Repository
	credits Granter
	notify  Notifier
	secret  string
}

func NewProcessor(repo Repository, credits Granter, notify Notifier, secret string) *Processor {
	return &Processor{repo: repo, credits: credits, notify: notify, secret: secret}
}

// HandleStripe processes one delivery. ErrInvalidSignature means the request
// should be rejected; any other error means the provider should retry.
func (p *Processor) HandleStripe(ctx context.Context, payload []byte, signature string) error {
	if p.secret == "" {
		return fmt.Errorf("%w: STRIPE_WEBHOOK_SECRET is not set", ErrInvalidSignature)
	}
	event, err := webhook.ConstructEventWithOptions(payload, signature, p.secret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	created, stored, err := p.repo.CreateWebhookEventIfNotExists(ctx, &models.BillingWebhookEvent{
		Provider:        ProviderStripe,
		ProviderEventID: event.ID,
		EventType:       string(event.Type),
		PayloadJSON:     string(payload),
		SignatureValid:  true,
	})
	if err != nil {
		return fmt.Errorf("record event %s: %w", event.ID, err)
	}
	if !created && stored.ProcessedAt != nil {
		log.Infof("[Billing] event %s already processed, skipping", event.ID)
		return nil
	}

	if err := p.dispatch(ctx, event); err != nil {
		if markErr := p.repo.MarkWebhookProcessed(ctx, stored.ID, err.Error()); markErr != nil {
			log.Errorf("[Billing] marking event %s failed: %v", event.ID, markErr)
		}
		return err
	}
	if err := p.repo.MarkWebhookProcessed(ctx, stored.ID, ""); err != nil {
		log.Errorf("[Billing] marking event %s processed failed: %v", event.ID, err)
	}
	return nil
}

func (p *Processor) dispatch(ctx context.Context, event stripe.Event) error {
	if event.Data == nil {
		return nil
	}
	switch event.Type {
	case stripe.EventTypeCheckoutSessionCompleted:
		var s checkoutSession
		if err := json.Unmarshal(event.Data.Raw, &s); err != nil {
			return fmt.Errorf("decode checkout session: %w", err)
		}
		return p.checkoutCompleted(ctx, event, s)
	case stripe.EventTypeInvoicePaid:
		var inv invoice
		if err := json.Unmarshal(event.Data.Raw, &inv); err != nil {
			return fmt.Errorf("decode invoice: %w", err)
		}
		return p.invoicePaid(ctx, event, inv)
	case stripe.EventTypeCustomerSubscriptionCreated,
		stripe.EventTypeCustomerSubscriptionUpdated,
		stripe.EventTypeCustomerSubscriptionDeleted:
		var sub subscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			return fmt.Errorf("decode subscription: %w", err)
		}
		return p.syncSubscription(ctx, sub)
	default:
		log.Debugf("[Billing] ignoring event type %s", event.Type)
		return nil
	}
}

func (p *Processor) checkoutCompleted(ctx context.Context, event stripe.Event, s checkoutSession) error {
	// Subscription checkouts are credited by their invoice.
	if s.Mode != "payment" {
		return nil
	}
	userID := s.Metadata["userId"]
	if userID == "" {
		userID = s.ClientReferenceID
	}
	planID := s.Metadata["planId"]
	if userID == "" || planID == "" {
		log.Warnf("[Billing] checkout %s has no userId/planId metadata", s.ID)
		return nil
	}

	if err := p.credits.GrantOneTime(ctx, userID, planID, s.ID); err != nil {
		return p.grantFailed(ctx, GrantFailure{
			EventID: event.ID, EventType: string(event.Type),
			UserID: userID, PlanID: planID, OrderID: s.ID, Err: err,
		})
	}
	return nil
}

func (p *Processor) invoicePaid(ctx context.Context, event stripe.Event, inv invoice) error {
	meta := inv.metadata()
	userID, planID := meta["userId"], meta["planId"]
	if userID == "" || planID == "" {
		log.Warnf("[Billing] invoice %s has no userId/planId metadata", inv.ID)
		return nil
	}

	if err := p.credits.GrantSubscription(ctx, userID, planID, inv.ID, inv.periodStart()); err != nil {
		return p.grantFailed(ctx, GrantFailure{
			EventID: event.ID, EventType: string(event.Type),
			UserID: userID, PlanID: planID, OrderID: inv.ID, Err: err,
		})
	}
	return nil
}

func (p *Processor) grantFailed(ctx context.Context, f GrantFailure) error {
	log.Errorf("[Billing] granting credits for order %s (user %s) failed: %v", f.OrderID, f.UserID, f.Err)
	if p.notify != nil {
		if err := p.notify.CreditGrantFailed(ctx, f); err != nil {
			log.Errorf("[Billing] admin alert for order %s failed: %v", f.OrderID, err)
		}
	}
	return fmt.Errorf("grant credits for %s: %w", f.OrderID, f.Err)
}

func (p *Processor) syncSubscription(ctx context.Context, sub subscription) error {
	userID := sub.Metadata["userId"]
	if userID == "" {
		log.Warnf("[Billing] subscription %s has no userId metadata", sub.ID)
		return nil
	}
	state := sub.state()
	return p.repo.UpsertSubscription(ctx, &models.BillingSubscription{
		UserID:                 state.UserID,
		PlanID:                 state.PlanID,
		Provider:               state.Provider,
		ProviderSubscriptionID: state.ProviderSubscriptionID,
		Status:                 state.Status,
		BillingInterval:        state.BillingInterval,
		CurrentPeriodStart:     state.CurrentPeriodStart,
		CurrentPeriodEnd:       state.CurrentPeriodEnd,
		CancelAtPeriodEnd:      state.CancelAtPeriodEnd,
	})
}
