// Package pricing manages pricing plan groups and plans.
package pricing

import (
	"context"
	"encoding/json"
	"errors"
	"regexp"
	"strings"

	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/clawsite/clawsite/app/models"
	"github.com/clawsite/clawsite/app/repository"
	"github.com/clawsite/clawsite/internal/pkg/action"
	"github.com/clawsite/clawsite/internal/pkg/env"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9-]+$`)

// Environment is the plan environment shown publicly.
func Environment() string {
	if env.GetEnv("PRICING_ENVIRONMENT", models.PricingEnvTest) == models.PricingEnvLive {
		return models.PricingEnvLive
	}
	return models.PricingEnvTest
}

type Service struct {
	repo        repository.PricingRepository
	environment string
}

func NewService(repo repository.PricingRepository, environment string) *Service {
	return &Service{repo: repo, environment: environment}
}

func (s *Service) ListGroups(ctx context.Context) action.Result[[]models.PricingPlanGroup] {
	groups, err := s.repo.ListGroups(ctx)
	if err != nil {
		log.Errorf("[Pricing] list groups failed: %v", err)
		return action.Internal[[]models.PricingPlanGroup]()
	}
	return action.OK(groups)
}

// CreateGroup adds a group. Only lowercase letters, digits and hyphens are accepted.
func (s *Service) CreateGroup(ctx context.Context, slug string) action.Result[*models.PricingPlanGroup] {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return action.BadRequest[*models.PricingPlanGroup]("Slug is required.")
	}
	if !slugPattern.MatchString(slug) {
		return action.BadRequest[*models.PricingPlanGroup]("Slug may only contain lowercase letters, numbers and hyphens.")
	}

	if _, err := s.repo.GetGroup(ctx, slug); err == nil {
		return action.Conflict[*models.PricingPlanGroup]("Group already exists.")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Errorf("[Pricing] group lookup failed: %v", err)
		return action.Internal[*models.PricingPlanGroup]()
	}

	group := &models.PricingPlanGroup{Slug: slug}
	if err := s.repo.CreateGroup(ctx, group); err != nil {
		log.Errorf("[Pricing] create group %s failed: %v", slug, err)
		return action.Internal[*models.PricingPlanGroup]()
	}
	return action.OK(group)
}

// DeleteGroup removes an empty, non-default group.
func (s *Service) DeleteGroup(ctx context.Context, slug string) action.Result[string] {
	slug = strings.TrimSpace(slug)
	if slug == models.DefaultPricingGroup {
		return action.BadRequest[string]("The default group cannot be deleted.")
	}
	if _, err := s.repo.GetGroup(ctx, slug); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return action.NotFound[string]("Group not found.")
		}
		log.Errorf("[Pricing] delete group failed: %v", err)
		return action.Internal[string]()
	}

	count, err := s.repo.CountPlansInGroup(ctx, slug)
	if err != nil {
		log.Errorf("[Pricing] counting plans of %s failed: %v", slug, err)
		return action.Internal[string]()
	}
	if count > 0 {
		return action.BadRequest[string]("Cannot delete group as it has associated pricing plans.")
	}

	if err := s.repo.DeleteGroup(ctx, slug); err != nil {
		log.Errorf("[Pricing] delete group %s failed: %v", slug, err)
		return action.Internal[string]()
	}
	return action.OK(slug)
}

func (s *Service) ListPlans(ctx context.Context) action.Result[[]models.PricingPlan] {
	plans, err := s.repo.ListPlans(ctx)
	if err != nil {
		log.Errorf("[Pricing] list plans failed: %v", err)
		return action.Internal[[]models.PricingPlan]()
	}
	return action.OK(plans)
}

func (s *Service) GetPlan(ctx context.Context, id string) action.Result[*models.PricingPlan] {
	plan, err := s.repo.GetPlan(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return action.NotFound[*models.PricingPlan]("Plan not found.")
		}
		log.Errorf("[Pricing] get plan failed: %v", err)
		return action.Internal[*models.PricingPlan]()
	}
	return action.OK(plan)
}

// validatePlan normalizes plan in place and returns a message when it is invalid.
func (s *Service) validatePlan(ctx context.Context, plan *models.PricingPlan) (string, error) {
	plan.CardTitle = strings.TrimSpace(plan.CardTitle)
	if plan.GroupSlug == "" {
		plan.GroupSlug = models.DefaultPricingGroup
	}
	if plan.Environment == "" {
		plan.Environment = models.PricingEnvTest
	}
	if err := plan.Validate(); err != nil {
		return "Invalid plan: " + err.Error(), nil
	}

	switch plan.PaymentType {
	case models.PaymentTypeRecurring:
		if plan.RecurringInterval == "" {
			return "Recurring plans need an interval.", nil
		}
	default:
		plan.RecurringInterval = ""
	}

	for name, raw := range map[string][]byte{"features": plan.Features, "langJsonb": plan.LangJSONB, "benefitsJsonb": plan.BenefitsJSONB} {
		if len(raw) > 0 && !json.Valid(raw) {
			return name + " must be valid JSON.", nil
		}
	}
	if _, err := plan.Benefits(); err != nil {
		return "benefitsJsonb has an invalid shape.", nil
	}

	if _, err := s.repo.GetGroup(ctx, plan.GroupSlug); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "Group does not exist.", nil
		}
		return "", err
	}
	return "", nil
}

func (s *Service) CreatePlan(ctx context.Context, plan models.PricingPlan) action.Result[*models.PricingPlan] {
	plan.ID = ""
	msg, err := s.validatePlan(ctx, &plan)
	if err != nil {
		log.Errorf("[Pricing] create plan failed: %v", err)
		return action.Internal[*models.PricingPlan]()
	}
	if msg != "" {
		return action.BadRequest[*models.PricingPlan](msg)
	}
	if err := s.repo.CreatePlan(ctx, &plan); err != nil {
		log.Errorf("[Pricing] create plan failed: %v", err)
		return action.Internal[*models.PricingPlan]()
	}
	return action.OK(&plan)
}

// UpdatePlan overwrites every editable field of the plan with id.
func (s *Service) UpdatePlan(ctx context.Context, id string, plan models.PricingPlan) action.Result[*models.PricingPlan] {
	existing, err := s.repo.GetPlan(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return action.NotFound[*models.PricingPlan]("Plan not found.")
		}
		log.Errorf("[Pricing] update plan failed: %v", err)
		return action.Internal[*models.PricingPlan]()
	}

	plan.ID = existing.ID
	plan.CreatedAt = existing.CreatedAt
	msg, err := s.validatePlan(ctx, &plan)
	if err != nil {
		log.Errorf("[Pricing] update plan failed: %v", err)
		return action.Internal[*models.PricingPlan]()
	}
	if msg != "" {
		return action.BadRequest[*models.PricingPlan](msg)
	}
	if err := s.repo.UpdatePlan(ctx, &plan); err != nil {
		log.Errorf("[Pricing] update plan %s failed: %v", id, err)
		return action.Internal[*models.PricingPlan]()
	}
	return action.OK(&plan)
}

func (s *Service) DeletePlan(ctx context.Context, id string) action.Result[string] {
	if err := s.repo.DeletePlan(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return action.NotFound[string]("Plan not found.")
		}
		log.Errorf("[Pricing] delete plan %s failed: %v", id, err)
		return action.Internal[string]()
	}
	return action.OK(id)
}

// PublicPlans returns the active plans of the configured environment localized to locale.
func (s *Service) PublicPlans(ctx context.Context, locale string) action.Result[[]LocalizedPlan] {
	plans, err := s.repo.ListActivePlans(ctx, s.environment)
	if err != nil {
		log.Errorf("[Pricing] list public plans failed: %v", err)
		return action.Internal[[]LocalizedPlan]()
	}
	out := make([]LocalizedPlan, 0, len(plans))
	for i := range plans {
		out = append(out, Localize(&plans[i], locale))
	}
	return action.OK(out)
}
