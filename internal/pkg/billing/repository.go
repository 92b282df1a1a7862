package billing

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/clawsite/clawsite/app/models"
)

// Repository provides DB operations used by the webhook processor.
type Repository interface {
	CreateWebhookEventIfNotExists(ctx context.Context, event *models.BillingWebhookEvent) (bool, *models.BillingWebhookEvent, error)
	MarkWebhookProcessed(ctx context.Context, id uint, processingError string) error
	UpsertSubscription(ctx context.Context, sub *models.BillingSubscription) error
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository creates a billing repository backed by GORM.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) UpsertSubscription(ctx context.Context, sub *models.BillingSubscription) error {
	db := r.db.WithContext(ctx)
	columns := []string{
		"user_id",
		"status",
		"cancel_at_period_end",
		"updated_at",
	}
	// Deletion events carry less detail; keep what an earlier event stored.
	if sub.PlanID != "" {
		columns = append(columns, "plan_id")
	}
	if sub.BillingInterval != "" {
		columns = append(columns, "billing_interval")
	}
	if sub.CurrentPeriodStart != nil {
		columns = append(columns, "current_period_start", "current_period_end")
	}
	if err := db.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "provider"},
			{Name: "provider_subscription_id"},
		},
		DoUpdates: clause.AssignmentColumns(columns),
	}).Create(sub).Error; err != nil {
		return err
	}

	// Ensure ID is populated after upsert.
	return db.Where("provider = ? AND provider_subscription_id = ?", sub.Provider, sub.ProviderSubscriptionID).
		First(sub).Error
}

// CreateWebhookEventIfNotExists stores the event once per (provider, event id).
// It reports whether this call created the row and returns the stored row.
func (r *gormRepository) CreateWebhookEventIfNotExists(ctx context.Context, event *models.BillingWebhookEvent) (bool, *models.BillingWebhookEvent, error) {
	db := r.db.WithContext(ctx)
	tx := db.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "provider"},
			{Name: "provider_event_id"},
		},
		DoNothing: true,
	}).Create(event)
	if tx.Error != nil {
		return false, nil, tx.Error
	}

	created := tx.RowsAffected > 0
	var stored models.BillingWebhookEvent
	if err := db.Where("provider = ? AND provider_event_id = ?", event.Provider, event.ProviderEventID).
		First(&stored).Error; err != nil {
		return false, nil, err
	}
	return created, &stored, nil
}

// MarkWebhookProcessed stamps the event. A non-empty processingError leaves
// processed_at unset so a provider retry is handled again.
func (r *gormRepository) MarkWebhookProcessed(ctx context.Context, id uint, processingError string) error {
	updates := map[string]interface{}{
		"processing_error": processingError,
	}
	if processingError == "" {
		now := time.Now()
		updates["processed_at"] = &now
	}
	return r.db.WithContext(ctx).Model(&models.BillingWebhookEvent{}).Where("id = ?", id).Updates(updates).Error
}
