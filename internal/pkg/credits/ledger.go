package credits

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/clawsite/clawsite/app/models"
)

const monthLayout = "2006-01"

func newBalance(b models.UsageBalance) datatypes.JSONType[models.UsageBalance] {
	return datatypes.NewJSONType(b)
}

// claim inserts the audit row first. The unique (user, type, order) index turns
// a replayed grant into ErrDuplicateGrant before any balance changes.
func claim(tx *gorm.DB, entry *models.CreditLog) error {
	res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(entry)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrDuplicateGrant
	}
	return nil
}

// upsertUsage inserts row or applies updates to the existing usage row.
func upsertUsage(tx *gorm.DB, row *models.Usage, updates map[string]interface{}) error {
	updates["updated_at"] = gorm.Expr("CURRENT_TIMESTAMP")
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.Assignments(updates),
	}).Create(row).Error
}

// settle records the balances the grant produced on its audit row.
func settle(tx *gorm.DB, entry *models.CreditLog) error {
	var usage models.Usage
	if err := tx.Where("user_id = ?", entry.UserID).First(&usage).Error; err != nil {
		return err
	}
	return tx.Model(&models.CreditLog{}).Where("id = ?", entry.ID).Updates(map[string]interface{}{
		"one_time_balance_after":     usage.OneTimeCreditsBalance,
		"subscription_balance_after": usage.SubscriptionCreditsBalance,
	}).Error
}
