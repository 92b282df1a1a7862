package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Tag names are stored in English and are unique per post type.
type Tag struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Name      string    `gorm:"type:varchar(100);not null;uniqueIndex:ux_tags_name_type,priority:1" json:"name" validate:"required,min=1,max=100"`
	PostType  string    `gorm:"type:varchar(20);not null;default:'blog';uniqueIndex:ux_tags_name_type,priority:2" json:"postType" validate:"required,oneof=blog glossary doc"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
}

func (Tag) TableName() string {
	return "tags"
}

func (t *Tag) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}

// PostTag is the post/tag join row. Rows go away with their post or tag.
type PostTag struct {
	PostID string `gorm:"primaryKey;type:varchar(36)" json:"postId"`
	TagID  string `gorm:"primaryKey;type:varchar(36);index" json:"tagId"`

	Post *Post `gorm:"foreignKey:PostID;references:ID;constraint:OnDelete:CASCADE" json:"-"`
	Tag  *Tag  `gorm:"foreignKey:TagID;references:ID;constraint:OnDelete:CASCADE" json:"-"`
}

func (PostTag) TableName() string {
	return "post_tags"
}

// FindOrCreate looks a tag up by name within its post type and creates it when missing.
func (t *Tag) FindOrCreate(db *gorm.DB) error {
	result := db.Where("name = ? AND post_type = ?", t.Name, t.PostType).First(t)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return db.Create(t).Error
		}
		return result.Error
	}
	return nil
}
