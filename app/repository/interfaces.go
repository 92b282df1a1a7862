package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/clawsite/clawsite/app/models"
)

// PostFilter narrows published post queries. A non-nil PostIDs restricts the
// result to those ids, an empty non-nil slice matches nothing.
type PostFilter struct {
	PostType   string
	Locale     string
	Visibility string
	PostIDs    []string
}

// AdminPostFilter narrows the dashboard post list. Empty fields match everything.
type AdminPostFilter struct {
	PostType string
	Locale   string
	Status   string
	Query    string
}

// PostRepository defines the interface for post-related database operations
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	CreateWithTags(ctx context.Context, post *models.Post, tagIDs []string) error
	UpdateWithTags(ctx context.Context, post *models.Post, tagIDs []string) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*models.Post, error)
	GetPublishedBySlug(ctx context.Context, postType, locale, slug string) (*models.Post, error)
	SlugExistsExceptID(ctx context.Context, postType, locale, slug, id string) (bool, error)
	CountPublished(ctx context.Context, filter PostFilter) (int64, error)
	ListPublished(ctx context.Context, filter PostFilter, offset, limit int) ([]models.Post, error)
	ListPublishedSlugs(ctx context.Context, postType, locale, visibility string) ([]string, error)
	CountAll(ctx context.Context, filter AdminPostFilter) (int64, error)
	ListAll(ctx context.Context, filter AdminPostFilter, offset, limit int) ([]models.Post, error)
	ListRelated(ctx context.Context, tagID, postType, locale, excludeID string, limit int) ([]models.Post, error)
}

// TagRepository defines the interface for tag and post_tags operations
type TagRepository interface {
	Create(ctx context.Context, tag *models.Tag) error
	Update(ctx context.Context, tag *models.Tag) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*models.Tag, error)
	List(ctx context.Context, postType, query string) ([]models.Tag, error)
	NameExists(ctx context.Context, postType, name, exceptID string) (bool, error)
	PostIDs(ctx context.Context, tagID string) ([]string, error)
	TagsByPost(ctx context.Context, postIDs []string) (map[string][]models.Tag, error)
	MissingIDs(ctx context.Context, postType string, ids []string) ([]string, error)
}

// PricingRepository defines the interface for pricing group and plan operations
type PricingRepository interface {
	ListGroups(ctx context.Context) ([]models.PricingPlanGroup, error)
	GetGroup(ctx context.Context, slug string) (*models.PricingPlanGroup, error)
	CreateGroup(ctx context.Context, group *models.PricingPlanGroup) error
	DeleteGroup(ctx context.Context, slug string) error
	CountPlansInGroup(ctx context.Context, slug string) (int64, error)
	ListPlans(ctx context.Context) ([]models.PricingPlan, error)
	ListActivePlans(ctx context.Context, environment string) ([]models.PricingPlan, error)
	GetPlan(ctx context.Context, id string) (*models.PricingPlan, error)
	CreatePlan(ctx context.Context, plan *models.PricingPlan) error
	UpdatePlan(ctx context.Context, plan *models.PricingPlan) error
	DeletePlan(ctx context.Context, id string) error
	UpsertGroup(ctx context.Context, slug string) error
	UpsertPlan(ctx context.Context, plan *models.PricingPlan) error
}

// UserFilter narrows the admin user list.
type UserFilter struct {
	Query  string
	Role   string
	Banned *bool
}

// UserWithSource is a user row with its signup attribution, if any.
type UserWithSource struct {
	models.User
	Source *models.UserSource `json:"source,omitempty"`
}

// UserRepository defines the interface for user-related database operations
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	UpdateLastLogin(ctx context.Context, id string, at time.Time) error
	SetBan(ctx context.Context, id string, banned bool, reason string, expires *time.Time) error
	Count(ctx context.Context, filter UserFilter) (int64, error)
	ListWithSource(ctx context.Context, filter UserFilter, offset, limit int) ([]UserWithSource, error)
	CreateSourceOnce(ctx context.Context, source *models.UserSource) error
	GetProviderAccount(ctx context.Context, provider, providerUserID string) (*models.ProviderAccount, error)
	SaveProviderAccount(ctx context.Context, account *models.ProviderAccount) error
	HasActiveSubscription(ctx context.Context, userID string) (bool, error)
}

// VerificationRepository stores one-time login codes
type VerificationRepository interface {
	Replace(ctx context.Context, v *models.Verification) error
	GetLatest(ctx context.Context, identifier string) (*models.Verification, error)
	ClaimAttempt(ctx context.Context, id string, max int) (bool, error)
	DeleteByIdentifier(ctx context.Context, identifier string) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// Repositories struct holds all repository instances
type Repositories struct {
	Post         PostRepository
	Tag          TagRepository
	Pricing      PricingRepository
	User         UserRepository
	Verification VerificationRepository
}

// NewRepositories creates a new instance of all repositories
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Post:         NewPostRepository(db),
		Tag:          NewTagRepository(db),
		Pricing:      NewPricingRepository(db),
		User:         NewUserRepository(db),
		Verification: NewVerificationRepository(db),
	}
}
