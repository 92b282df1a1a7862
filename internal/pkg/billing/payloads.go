package billing

import "time"

// The structs below decode only the fields the processor reads from
// event.data.object.

type checkoutSession struct {
	ID                string            `json:"id"`
	Mode              string            `json:"mode"`
	PaymentStatus     string            `json:"payment_status"`
	ClientReferenceID string            `json:"client_reference_id"`
	Metadata          map[string]string `json:"metadata"`
}

type period struct {
	Start int64 `json:"start"`
	End   int64 `json:"end"`
}

type invoice struct {
	ID          string `json:"id"`
	PeriodStart int64  `json:"period_start"`
	Lines       struct {
		Data []struct {
			Period   period            `json:"period"`
			Metadata map[string]string `json:"metadata"`
		} `json:"data"`
	} `json:"lines"`
	Parent *struct {
		SubscriptionDetails *struct {
			Subscription string            `json:"subscription"`
			Metadata     map[string]string `json:"metadata"`
		} `json:"subscription_details"`
	} `json:"parent"`
}

// metadata prefers the subscription metadata and falls back to the first line.
func (inv invoice) metadata() map[string]string {
	if inv.Parent != nil && inv.Parent.SubscriptionDetails != nil && len(inv.Parent.SubscriptionDetails.Metadata) > 0 {
		return inv.Parent.SubscriptionDetails.Metadata
	}
	for _, line := range inv.Lines.Data {
		if len(line.Metadata) > 0 {
			return line.Metadata
		}
	}
	return map[string]string{}
}

// periodStart is the start of the billed service period.
func (inv invoice) periodStart() time.Time {
	for _, line := range inv.Lines.Data {
		if line.Period.Start > 0 {
			return time.Unix(line.Period.Start, 0).UTC()
		}
	}
	if inv.PeriodStart > 0 {
		return time.Unix(inv.PeriodStart, 0).UTC()
	}
	return time.Time{}
}

type subscription struct {
	ID                string            `json:"id"`
	Status            string            `json:"status"`
	CancelAtPeriodEnd bool              `json:"cancel_at_period_end"`
	Metadata          map[string]string `json:"metadata"`
	Items             struct {
		Data []struct {
			CurrentPeriodStart int64 `json:"current_period_start"`
			CurrentPeriodEnd   int64 `json:"current_period_end"`
			Price              struct {
				Recurring *struct {
					Interval string `json:"interval"`
				} `json:"recurring"`
			} `json:"price"`
		} `json:"data"`
	} `json:"items"`
}

func unixPtr(sec int64) *time.Time {
	if sec <= 0 {
		return nil
	}
	t := time.Unix(sec, 0).UTC()
	return &t
}

func (s subscription) state() SubscriptionState {
	st := SubscriptionState{
		UserID:                 s.Metadata["userId"],
		PlanID:                 s.Metadata["planId"],
		Provider:               ProviderStripe,
		ProviderSubscriptionID: s.ID,
		Status:                 s.Status,
		CancelAtPeriodEnd:      s.CancelAtPeriodEnd,
	}
	if len(s.Items.Data) > 0 {
		item := s.Items.Data[0]
		st.CurrentPeriodStart = unixPtr(item.CurrentPeriodStart)
		st.CurrentPeriodEnd = unixPtr(item.CurrentPeriodEnd)
		if item.Price.Recurring != nil {
			st.BillingInterval = item.Price.Recurring.Interval
		}
	}
	return st
}
