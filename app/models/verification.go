package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Verification stores a hashed one-time code for an identifier (email address).
type Verification struct {
	ID         string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Identifier string    `gorm:"type:varchar(200);not null;index" json:"identifier"`
	ValueHash  string    `gorm:"type:varchar(255);not null" json:"-"`
	Attempts   int       `gorm:"not null;default:0" json:"-"`
	ExpiresAt  time.Time `gorm:"not null;index" json:"expiresAt"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"createdAt"`
}

func (Verification) TableName() string {
	return "verification"
}

func (v *Verification) BeforeCreate(tx *gorm.DB) error {
	if v.ID == "" {
		v.ID = uuid.NewString()
	}
	return nil
}

func (v *Verification) Expired(now time.Time) bool {
	return !now.Before(v.ExpiresAt)
}
