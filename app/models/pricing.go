package models

import (
	"encoding/json"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const DefaultPricingGroup = "default"

const (
	PricingEnvTest = "test"
	PricingEnvLive = "live"
)

const (
	PaymentTypeOneTime   = "one_time"
	PaymentTypeRecurring = "recurring"
)

const (
	IntervalMonth = "month"
	IntervalYear  = "year"
)

// PricingPlanGroup groups plans on the pricing page. The slug is the primary key.
type PricingPlanGroup struct {
	Slug      string    `gorm:"primaryKey;type:varchar(100)" json:"slug"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
}

func (PricingPlanGroup) TableName() string {
	return "pricing_plan_groups"
}

type PricingPlan struct {
	ID                string              `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Environment       string              `gorm:"type:varchar(10);not null;default:'test';index:idx_pricing_plans_env_order,priority:1" json:"environment" validate:"required,oneof=test live"`
	GroupSlug         string              `gorm:"type:varchar(100);not null;default:'default';index" json:"groupSlug" validate:"required"`
	Group             *PricingPlanGroup   `gorm:"foreignKey:GroupSlug;references:Slug;constraint:OnDelete:RESTRICT" json:"-"`
	CardTitle         string              `gorm:"type:varchar(255);not null" json:"cardTitle" validate:"required,max=255"`
	CardDescription   string              `gorm:"type:text" json:"cardDescription"`
	Provider          string              `gorm:"type:varchar(20);default:'stripe'" json:"provider"`
	StripePriceID     string              `gorm:"type:varchar(255);index" json:"stripePriceId"`
	StripeProductID   string              `gorm:"type:varchar(255)" json:"stripeProductId"`
	StripeCouponID    string              `gorm:"type:varchar(255)" json:"stripeCouponId"`
	PaymentType       string              `gorm:"type:varchar(20)" json:"paymentType" validate:"omitempty,oneof=one_time recurring"`
	RecurringInterval string              `gorm:"type:varchar(10)" json:"recurringInterval" validate:"omitempty,oneof=month year"`
	Price             decimal.NullDecimal `gorm:"type:numeric(10,2)" json:"price"`
	Currency          string              `gorm:"type:varchar(10)" json:"currency"`
	DisplayPrice      string              `gorm:"type:varchar(50)" json:"displayPrice"`
	OriginalPrice     string              `gorm:"type:varchar(50)" json:"originalPrice"`
	PriceSuffix       string              `gorm:"type:varchar(100)" json:"priceSuffix"`
	Features          datatypes.JSON      `json:"features"`
	LangJSONB         datatypes.JSON      `gorm:"column:lang_jsonb" json:"langJsonb"`
	BenefitsJSONB     datatypes.JSON      `gorm:"column:benefits_jsonb" json:"benefitsJsonb"`
	IsActive          bool                `gorm:"not null" json:"isActive"`
	IsHighlighted     bool                `gorm:"default:false" json:"isHighlighted"`
	HighlightText     string              `gorm:"type:varchar(255)" json:"highlightText"`
	ButtonText        string              `gorm:"type:varchar(255)" json:"buttonText"`
	ButtonLink        string              `gorm:"type:varchar(512)" json:"buttonLink"`
	DisplayOrder      int                 `gorm:"default:0;index:idx_pricing_plans_env_order,priority:2" json:"displayOrder"`
	CreatedAt         time.Time           `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt         time.Time           `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (PricingPlan) TableName() string {
	return "pricing_plans"
}

func (p *PricingPlan) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

func (p *PricingPlan) Validate() error {
	v := validator.New()

	return v.Struct(p)
}

// PlanBenefits describes the credits a plan grants.
type PlanBenefits struct {
	OneTimeCredits int                    `json:"oneTimeCredits,omitempty" yaml:"oneTimeCredits,omitempty"`
	MonthlyCredits int                    `json:"monthlyCredits,omitempty" yaml:"monthlyCredits,omitempty"`
	TotalMonths    int                    `json:"totalMonths,omitempty" yaml:"totalMonths,omitempty"`
	Extra          map[string]interface{} `json:"-" yaml:"-"`
}

// Benefits decodes BenefitsJSONB. Unknown keys end up in Extra.
func (p *PricingPlan) Benefits() (PlanBenefits, error) {
	var b PlanBenefits
	if len(p.BenefitsJSONB) == 0 {
		return b, nil
	}
	if err := json.Unmarshal(p.BenefitsJSONB, &b); err != nil {
		return b, err
	}

	var all map[string]interface{}
	if err := json.Unmarshal(p.BenefitsJSONB, &all); err != nil {
		return b, err
	}
	delete(all, "oneTimeCredits")
	delete(all, "monthlyCredits")
	delete(all, "totalMonths")
	if len(all) > 0 {
		b.Extra = all
	}
	return b, nil
}

type PlanFeature struct {
	Description string `json:"description" yaml:"description"`
	Included    bool   `json:"included" yaml:"included"`
	Bold        bool   `json:"bold,omitempty" yaml:"bold,omitempty"`
	Href        string `json:"href,omitempty" yaml:"href,omitempty"`
}

// PlanTranslation is one locale entry of LangJSONB. Empty fields fall back to the base plan.
type PlanTranslation struct {
	CardTitle       string        `json:"cardTitle,omitempty" yaml:"cardTitle,omitempty"`
	CardDescription string        `json:"cardDescription,omitempty" yaml:"cardDescription,omitempty"`
	DisplayPrice    string        `json:"displayPrice,omitempty" yaml:"displayPrice,omitempty"`
	OriginalPrice   string        `json:"originalPrice,omitempty" yaml:"originalPrice,omitempty"`
	PriceSuffix     string        `json:"priceSuffix,omitempty" yaml:"priceSuffix,omitempty"`
	HighlightText   string        `json:"highlightText,omitempty" yaml:"highlightText,omitempty"`
	ButtonText      string        `json:"buttonText,omitempty" yaml:"buttonText,omitempty"`
	Currency        string        `json:"currency,omitempty" yaml:"currency,omitempty"`
	Features        []PlanFeature `json:"features,omitempty" yaml:"features,omitempty"`
}
