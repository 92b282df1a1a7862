package repository

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/clawsite/clawsite/app/models"
)

// userRepository implements the UserRepository interface
type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new user repository instance
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// Create creates a new user in the database
func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

// GetByID retrieves a user by their ID
func (r *userRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByEmail retrieves a user by their email address
func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("email = ?", strings.ToLower(strings.TrimSpace(email))).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) Update(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Save(user).Error
}

func (r *userRepository) UpdateLastLogin(ctx context.Context, id string, at time.Time) error {
	return r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Update("last_login_at", at).Error
}

// SetBan bans or unbans a user
func (r *userRepository) SetBan(ctx context.Context, id string, banned bool, reason string, expires *time.Time) error {
	res := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Updates(map[string]interface{}{
		"banned":      banned,
		"ban_reason":  reason,
		"ban_expires": expires,
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *userRepository) filtered(ctx context.Context, f UserFilter) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&models.User{})
	if f.Query != "" {
		like := "%" + strings.ToLower(f.Query) + "%"
		q = q.Where("LOWER(email) LIKE ? OR LOWER(name) LIKE ?", like, like)
	}
	if f.Role != "" {
		q = q.Where("role = ?", f.Role)
	}
	if f.Banned != nil {
		q = q.Where("banned = ?", *f.Banned)
	}
	return q
}

func (r *userRepository) Count(ctx context.Context, filter UserFilter) (int64, error) {
	var count int64
	err := r.filtered(ctx, filter).Count(&count).Error
	return count, err
}

// ListWithSource returns a page of users joined with their attribution rows
func (r *userRepository) ListWithSource(ctx context.Context, filter UserFilter, offset, limit int) ([]UserWithSource, error) {
	var users []models.User
	err := r.filtered(ctx, filter).Order("created_at DESC, id DESC").Offset(offset).Limit(limit).Find(&users).Error
	if err != nil {
		return nil, err
	}

	out := make([]UserWithSource, 0, len(users))
	if len(users) == 0 {
		return out, nil
	}

	ids := make([]string, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.ID)
	}
	var sources []models.UserSource
	if err := r.db.WithContext(ctx).Where("user_id IN ?", ids).Find(&sources).Error; err != nil {
		return nil, err
	}
	byUser := make(map[string]*models.UserSource, len(sources))
	for i := range sources {
		byUser[sources[i].UserID] = &sources[i]
	}

	for _, u := range users {
		out = append(out, UserWithSource{User: u, Source: byUser[u.ID]})
	}
	return out, nil
}

// CreateSourceOnce stores the attribution row unless one already exists
func (r *userRepository) CreateSourceOnce(ctx context.Context, source *models.UserSource) error {
	return r.db.WithContext(ctx).
		Omit(clause.Associations).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(source).Error
}

func (r *userRepository) GetProviderAccount(ctx context.Context, provider, providerUserID string) (*models.ProviderAccount, error) {
	var acc models.ProviderAccount
	err := r.db.WithContext(ctx).Where("provider = ? AND provider_user_id = ?", provider, providerUserID).First(&acc).Error
	if err != nil {
		return nil, err
	}
	return &acc, nil
}

func (r *userRepository) SaveProviderAccount(ctx context.Context, account *models.ProviderAccount) error {
	return r.db.WithContext(ctx).Save(account).Error
}

// HasActiveSubscription reports whether the user has an active or trialing subscription
func (r *userRepository) HasActiveSubscription(ctx context.Context, userID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.BillingSubscription{}).
		Where("user_id = ? AND status IN ?", userID, []string{models.BillingStatusActive, models.BillingStatusTrialing}).
		Count(&count).Error
	return count > 0, err
}
