package pricing

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/gofiber/fiber/v2/log"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/clawsite/clawsite/app/models"
)

// SeedFile is the layout of config/pricing.yaml.
type SeedFile struct {
	Groups []string   `yaml:"groups"`
	Plans  []SeedPlan `yaml:"plans"`
}

type SeedPlan struct {
	ID                string                            `yaml:"id"`
	Environment       string                            `yaml:"environment"`
	Group             string                            `yaml:"group"`
	CardTitle         string                            `yaml:"cardTitle"`
	CardDescription   string                            `yaml:"cardDescription"`
	StripePriceID     string                            `yaml:"stripePriceId"`
	StripeProductID   string                            `yaml:"stripeProductId"`
	PaymentType       string                            `yaml:"paymentType"`
	RecurringInterval string                            `yaml:"recurringInterval"`
	Price             string                            `yaml:"price"`
	Currency          string                            `yaml:"currency"`
	DisplayPrice      string                            `yaml:"displayPrice"`
	OriginalPrice     string                            `yaml:"originalPrice"`
	PriceSuffix       string                            `yaml:"priceSuffix"`
	Features          []models.PlanFeature              `yaml:"features"`
	Lang              map[string]models.PlanTranslation `yaml:"lang"`
	Benefits          models.PlanBenefits               `yaml:"benefits"`
	Active            *bool                             `yaml:"active"`
	Highlighted       bool                              `yaml:"highlighted"`
	HighlightText     string                            `yaml:"highlightText"`
	ButtonText        string                            `yaml:"buttonText"`
	ButtonLink        string                            `yaml:"buttonLink"`
	DisplayOrder      int                               `yaml:"displayOrder"`
}

func LoadSeed(path string) (*SeedFile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var f SeedFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &f, nil
}

// Model converts the seed entry into a plan row.
func (p SeedPlan) Model() (*models.PricingPlan, error) {
	if p.ID == "" {
		return nil, fmt.Errorf("plan %q has no id", p.CardTitle)
	}
	plan := &models.PricingPlan{
		ID:                p.ID,
		Environment:       p.Environment,
		GroupSlug:         p.Group,
		CardTitle:         p.CardTitle,
		CardDescription:   p.CardDescription,
		Provider:          "stripe",
		StripePriceID:     p.StripePriceID,
		StripeProductID:   p.StripeProductID,
		PaymentType:       p.PaymentType,
		RecurringInterval: p.RecurringInterval,
		Currency:          p.Currency,
		DisplayPrice:      p.DisplayPrice,
		OriginalPrice:     p.OriginalPrice,
		PriceSuffix:       p.PriceSuffix,
		IsActive:          p.Active == nil || *p.Active,
		IsHighlighted:     p.Highlighted,
		HighlightText:     p.HighlightText,
		ButtonText:        p.ButtonText,
		ButtonLink:        p.ButtonLink,
		DisplayOrder:      p.DisplayOrder,
	}
	if plan.GroupSlug == "" {
		plan.GroupSlug = models.DefaultPricingGroup
	}
	if plan.Environment == "" {
		plan.Environment = models.PricingEnvTest
	}
	if p.Price != "" {
		d, err := decimal.NewFromString(p.Price)
		if err != nil {
			return nil, fmt.Errorf("plan %s: price: %w", p.ID, err)
		}
		plan.Price = decimal.NewNullDecimal(d)
	}

	var err error
	if plan.Features, err = json.Marshal(p.Features); err != nil {
		return nil, err
	}
	if len(p.Lang) > 0 {
		if plan.LangJSONB, err = json.Marshal(p.Lang); err != nil {
			return nil, err
		}
	}
	if plan.BenefitsJSONB, err = json.Marshal(p.Benefits); err != nil {
		return nil, err
	}
	return plan, nil
}

// Seed upserts every group and plan of f. The default group always exists afterwards.
func (s *Service) Seed(ctx context.Context, f *SeedFile) error {
	groups := append([]string{models.DefaultPricingGroup}, f.Groups...)
	for _, slug := range groups {
		if !slugPattern.MatchString(slug) {
			return fmt.Errorf("invalid group slug %q", slug)
		}
		if err := s.repo.UpsertGroup(ctx, slug); err != nil {
			return fmt.Errorf("upsert group %s: %w", slug, err)
		}
	}

	for _, sp := range f.Plans {
		plan, err := sp.Model()
		if err != nil {
			return err
		}
		if err := plan.Validate(); err != nil {
			return fmt.Errorf("plan %s: %w", plan.ID, err)
		}
		if err := s.repo.UpsertPlan(ctx, plan); err != nil {
			return fmt.Errorf("upsert plan %s: %w", plan.ID, err)
		}
		log.Infof("[Pricing] seeded plan %s (%s)", plan.ID, plan.CardTitle)
	}
	return nil
}
