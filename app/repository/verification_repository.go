package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/clawsite/clawsite/app/models"
)

type verificationRepository struct {
	db *gorm.DB
}

// NewVerificationRepository creates a new verification repository instance
func NewVerificationRepository(db *gorm.DB) VerificationRepository {
	return &verificationRepository{db: db}
}

// Replace drops earlier codes for the identifier and stores v
func (r *verificationRepository) Replace(ctx context.Context, v *models.Verification) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("identifier = ?", v.Identifier).Delete(&models.Verification{}).Error; err != nil {
			return err
		}
		return tx.Create(v).Error
	})
}

func (r *verificationRepository) GetLatest(ctx context.Context, identifier string) (*models.Verification, error) {
	var v models.Verification
	err := r.db.WithContext(ctx).Where("identifier = ?", identifier).Order("created_at DESC").First(&v).Error
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// ClaimAttempt counts one guess against the code. It reports false once max
// guesses were used, so concurrent callers can never exceed the limit.
func (r *verificationRepository) ClaimAttempt(ctx context.Context, id string, max int) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.Verification{}).
		Where("id = ? AND attempts < ?", id, max).
		UpdateColumn("attempts", gorm.Expr("attempts + ?", 1))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *verificationRepository) DeleteByIdentifier(ctx context.Context, identifier string) error {
	return r.db.WithContext(ctx).Where("identifier = ?", identifier).Delete(&models.Verification{}).Error
}

// DeleteExpired removes codes that can no longer be used
func (r *verificationRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Where("expires_at <= ?", now).Delete(&models.Verification{})
	return res.RowsAffected, res.Error
}
