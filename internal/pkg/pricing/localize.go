package pricing

import (
	"encoding/json"

	"github.com/clawsite/clawsite/app/models"
)

// LocalizedPlan is the pricing card as rendered for one locale.
type LocalizedPlan struct {
	ID                string               `json:"id"`
	GroupSlug         string               `json:"groupSlug"`
	CardTitle         string               `json:"cardTitle"`
	CardDescription   string               `json:"cardDescription"`
	PaymentType       string               `json:"paymentType"`
	RecurringInterval string               `json:"recurringInterval"`
	StripePriceID     string               `json:"stripePriceId"`
	Currency          string               `json:"currency"`
	DisplayPrice      string               `json:"displayPrice"`
	OriginalPrice     string               `json:"originalPrice"`
	PriceSuffix       string               `json:"priceSuffix"`
	Features          []models.PlanFeature `json:"features"`
	IsHighlighted     bool                 `json:"isHighlighted"`
	HighlightText     string               `json:"highlightText"`
	ButtonText        string               `json:"buttonText"`
	ButtonLink        string               `json:"buttonLink"`
	DisplayOrder      int                  `json:"displayOrder"`
}

// Localize overlays the locale's langJsonb entry on the base plan fields.
// Malformed translation data is ignored.
func Localize(plan *models.PricingPlan, locale string) LocalizedPlan {
	out := LocalizedPlan{
		ID:                plan.ID,
		GroupSlug:         plan.GroupSlug,
		CardTitle:         plan.CardTitle,
		CardDescription:   plan.CardDescription,
		PaymentType:       plan.PaymentType,
		RecurringInterval: plan.RecurringInterval,
		StripePriceID:     plan.StripePriceID,
		Currency:          plan.Currency,
		DisplayPrice:      plan.DisplayPrice,
		OriginalPrice:     plan.OriginalPrice,
		PriceSuffix:       plan.PriceSuffix,
		Features:          []models.PlanFeature{},
		IsHighlighted:     plan.IsHighlighted,
		HighlightText:     plan.HighlightText,
		ButtonText:        plan.ButtonText,
		ButtonLink:        plan.ButtonLink,
		DisplayOrder:      plan.DisplayOrder,
	}
	if len(plan.Features) > 0 {
		var features []models.PlanFeature
		if err := json.Unmarshal(plan.Features, &features); err == nil && features != nil {
			out.Features = features
		}
	}

	if len(plan.LangJSONB) == 0 {
		return out
	}
	var translations map[string]models.PlanTranslation
	if err := json.Unmarshal(plan.LangJSONB, &translations); err != nil {
		return out
	}
	tr, ok := translations[locale]
	if !ok {
		return out
	}

	overlay := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	overlay(&out.CardTitle, tr.CardTitle)
	overlay(&out.CardDescription, tr.CardDescription)
	overlay(&out.DisplayPrice, tr.DisplayPrice)
	overlay(&out.OriginalPrice, tr.OriginalPrice)
	overlay(&out.PriceSuffix, tr.PriceSuffix)
	overlay(&out.HighlightText, tr.HighlightText)
	overlay(&out.ButtonText, tr.ButtonText)
	overlay(&out.Currency, tr.Currency)
	if len(tr.Features) > 0 {
		out.Features = tr.Features
	}
	return out
}
