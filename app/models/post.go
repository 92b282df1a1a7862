package models

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	PostTypeBlog     = "blog"
	PostTypeGlossary = "glossary"
	PostTypeDoc      = "doc"
)

const (
	PostStatusDraft     = "draft"
	PostStatusPublished = "published"
	PostStatusArchived  = "archived"
)

const (
	VisibilityPublic      = "public"
	VisibilityLoggedIn    = "logged_in"
	VisibilitySubscribers = "subscribers"
)

// Post is a database-backed CMS entry. The (slug, language, post_type) triple is unique.
type Post struct {
	ID               string     `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Language         string     `gorm:"type:varchar(10);not null;uniqueIndex:ux_posts_slug_language_type,priority:2;index:idx_posts_listing,priority:1" json:"language" validate:"required,oneof=en zh ja ko ru"`
	PostType         string     `gorm:"type:varchar(20);not null;default:'blog';uniqueIndex:ux_posts_slug_language_type,priority:3;index:idx_posts_listing,priority:2" json:"postType" validate:"required,oneof=blog glossary doc"`
	AuthorID         *string    `gorm:"type:varchar(36);index" json:"authorId,omitempty"`
	Title            string     `gorm:"type:varchar(255);not null" json:"title" validate:"required,min=3,max=255"`
	Slug             string     `gorm:"type:varchar(255);not null;uniqueIndex:ux_posts_slug_language_type,priority:1" json:"slug" validate:"required,min=3,max=255"`
	Content          string     `gorm:"type:text" json:"content"`
	Description      string     `gorm:"type:text" json:"description"`
	FeaturedImageURL string     `gorm:"type:varchar(512)" json:"featuredImageUrl" validate:"omitempty,url,max=512"`
	IsPinned         bool       `gorm:"default:false" json:"isPinned"`
	Status           string     `gorm:"type:varchar(20);not null;default:'draft';index:idx_posts_listing,priority:3" json:"status" validate:"required,oneof=draft published archived"`
	Visibility       string     `gorm:"type:varchar(20);not null;default:'public'" json:"visibility" validate:"required,oneof=public logged_in subscribers"`
	PublishedAt      *time.Time `gorm:"index" json:"publishedAt"`
	CreatedAt        time.Time  `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt        time.Time  `gorm:"autoUpdateTime" json:"updatedAt"`
}

func (Post) TableName() string {
	return "posts"
}

func (p *Post) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

func (p *Post) Validate() error {
	v := validator.New()

	return v.Struct(p)
}

// MarkPublished stamps PublishedAt the first time a post reaches the published state.
func (p *Post) MarkPublished(now time.Time) {
	if p.Status == PostStatusPublished && p.PublishedAt == nil {
		t := now.UTC()
		p.PublishedAt = &t
	}
}

func IsValidPostType(postType string) bool {
	switch postType {
	case PostTypeBlog, PostTypeGlossary, PostTypeDoc:
		return true
	}
	return false
}

func IsValidVisibility(visibility string) bool {
	switch visibility {
	case VisibilityPublic, VisibilityLoggedIn, VisibilitySubscribers:
		return true
	}
	return false
}
