package models

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	ROLE_USER  = "user"
	ROLE_ADMIN = "admin"
)

type User struct {
	ID               string     `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Name             string     `gorm:"type:varchar(150)" json:"name" validate:"max=150"`
	Email            string     `gorm:"uniqueIndex;type:varchar(200);not null" json:"email" validate:"required,email,max=200"`
	EmailVerified    bool       `gorm:"default:false" json:"emailVerified"`
	Image            string     `gorm:"type:varchar(512)" json:"image" validate:"max=512"`
	Role             string     `gorm:"type:varchar(50);default:'user'" json:"role" validate:"oneof=user admin"`
	Banned           bool       `gorm:"default:false;index" json:"banned"`
	BanReason        string     `gorm:"type:text" json:"banReason,omitempty"`
	BanExpires       *time.Time `json:"banExpires,omitempty"`
	StripeCustomerID string     `gorm:"type:varchar(255);index" json:"stripeCustomerId,omitempty"`
	LastLoginAt      *time.Time `json:"lastLoginAt,omitempty"`
	CreatedAt        time.Time  `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt        time.Time  `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (User) TableName() string {
	return "user"
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.Role == "" {
		u.Role = ROLE_USER
	}
	return nil
}

func (u *User) Validate() error {
	v := validator.New()

	return v.Struct(u)
}

func (u *User) IsAdmin() bool {
	return u.Role == ROLE_ADMIN
}

// IsBanned reports whether the ban is still in force at now.
func (u *User) IsBanned(now time.Time) bool {
	if !u.Banned {
		return false
	}
	return u.BanExpires == nil || u.BanExpires.After(now)
}
