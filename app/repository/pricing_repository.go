package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/clawsite/clawsite/app/models"
)

// pricingRepository implements the PricingRepository interface
type pricingRepository struct {
	db *gorm.DB
}

// NewPricingRepository creates a new pricing repository instance
func NewPricingRepository(db *gorm.DB) PricingRepository {
	return &pricingRepository{db: db}
}

func (r *pricingRepository) ListGroups(ctx context.Context) ([]models.PricingPlanGroup, error) {
	groups := []models.PricingPlanGroup{}
	err := r.db.WithContext(ctx).Order("slug ASC").Find(&groups).Error
	return groups, err
}

func (r *pricingRepository) GetGroup(ctx context.Context, slug string) (*models.PricingPlanGroup, error) {
	var group models.PricingPlanGroup
	if err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&group).Error; err != nil {
		return nil, err
	}
	return &group, nil
}

func (r *pricingRepository) CreateGroup(ctx context.Context, group *models.PricingPlanGroup) error {
	return r.db.WithContext(ctx).Create(group).Error
}

func (r *pricingRepository) DeleteGroup(ctx context.Context, slug string) error {
	res := r.db.WithContext(ctx).Where("slug = ?", slug).Delete(&models.PricingPlanGroup{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *pricingRepository) CountPlansInGroup(ctx context.Context, slug string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.PricingPlan{}).Where("group_slug = ?", slug).Count(&count).Error
	return count, err
}

// ListPlans returns every plan for the admin view
func (r *pricingRepository) ListPlans(ctx context.Context) ([]models.PricingPlan, error) {
	plans := []models.PricingPlan{}
	err := r.db.WithContext(ctx).Order("environment ASC, display_order ASC, id ASC").Find(&plans).Error
	return plans, err
}

// ListActivePlans returns the plans shown on the public pricing page
func (r *pricingRepository) ListActivePlans(ctx context.Context, environment string) ([]models.PricingPlan, error) {
	plans := []models.PricingPlan{}
	err := r.db.WithContext(ctx).
		Where("environment = ? AND is_active = ?", environment, true).
		Order("display_order ASC, id ASC").
		Find(&plans).Error
	return plans, err
}

func (r *pricingRepository) GetPlan(ctx context.Context, id string) (*models.PricingPlan, error) {
	var plan models.PricingPlan
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&plan).Error; err != nil {
		return nil, err
	}
	return &plan, nil
}

func (r *pricingRepository) CreatePlan(ctx context.Context, plan *models.PricingPlan) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(plan).Error
}

func (r *pricingRepository) UpdatePlan(ctx context.Context, plan *models.PricingPlan) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(plan).Error
}

func (r *pricingRepository) DeletePlan(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.PricingPlan{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// UpsertGroup creates the group if it does not exist yet
func (r *pricingRepository) UpsertGroup(ctx context.Context, slug string) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.PricingPlanGroup{Slug: slug}).Error
}

// UpsertPlan inserts the plan or overwrites every column of the existing row
func (r *pricingRepository) UpsertPlan(ctx context.Context, plan *models.PricingPlan) error {
	return r.db.WithContext(ctx).
		Omit(clause.Associations).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).
		Create(plan).Error
}
