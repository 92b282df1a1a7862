package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/clawsite/clawsite/app/models"
)

// postRepository implements the PostRepository interface
type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository instance
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

// listingOrder keeps pages stable: the id tiebreak makes the order total.
const listingOrder = "is_pinned DESC, published_at DESC, id DESC"

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	return r.db.WithContext(ctx).Create(post).Error
}

// CreateWithTags inserts post and its tag assignments in one transaction.
func (r *postRepository) CreateWithTags(ctx context.Context, post *models.Post, tagIDs []string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(post).Error; err != nil {
			return err
		}
		return replacePostTags(tx, post.ID, tagIDs)
	})
}

// UpdateWithTags saves post and replaces its tag assignments in one transaction.
func (r *postRepository) UpdateWithTags(ctx context.Context, post *models.Post, tagIDs []string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(post).Error; err != nil {
			return err
		}
		return replacePostTags(tx, post.ID, tagIDs)
	})
}

// Delete removes a post together with its tag assignments
func (r *postRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", id).Delete(&models.PostTag{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&models.Post{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (r *postRepository) GetByID(ctx context.Context, id string) (*models.Post, error) {
	var post models.Post
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&post).Error
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// GetPublishedBySlug looks up a published post by its (slug, locale, type) triple
func (r *postRepository) GetPublishedBySlug(ctx context.Context, postType, locale, slug string) (*models.Post, error) {
	var post models.Post
	err := r.db.WithContext(ctx).
		Where("slug = ? AND language = ? AND status = ? AND post_type = ?", slug, locale, models.PostStatusPublished, postType).
		First(&post).Error
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// SlugExistsExceptID checks the unique triple, ignoring the post with the given id
func (r *postRepository) SlugExistsExceptID(ctx context.Context, postType, locale, slug, id string) (bool, error) {
	var count int64
	q := r.db.WithContext(ctx).Model(&models.Post{}).
		Where("slug = ? AND language = ? AND post_type = ?", slug, locale, postType)
	if id != "" {
		q = q.Where("id <> ?", id)
	}
	err := q.Count(&count).Error
	return count > 0, err
}

func (r *postRepository) published(ctx context.Context, f PostFilter) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&models.Post{}).
		Where("post_type = ? AND language = ? AND status = ?", f.PostType, f.Locale, models.PostStatusPublished)
	if f.Visibility != "" {
		q = q.Where("visibility = ?", f.Visibility)
	}
	if f.PostIDs != nil {
		q = q.Where("id IN ?", f.PostIDs)
	}
	return q
}

func (r *postRepository) CountPublished(ctx context.Context, filter PostFilter) (int64, error) {
	if filter.PostIDs != nil && len(filter.PostIDs) == 0 {
		return 0, nil
	}
	var count int64
	err := r.published(ctx, filter).Count(&count).Error
	return count, err
}

// ListPublished returns one page of published posts without their content
func (r *postRepository) ListPublished(ctx context.Context, filter PostFilter, offset, limit int) ([]models.Post, error) {
	posts := []models.Post{}
	if filter.PostIDs != nil && len(filter.PostIDs) == 0 {
		return posts, nil
	}
	err := r.published(ctx, filter).
		Omit("content").
		Order(listingOrder).
		Offset(offset).Limit(limit).
		Find(&posts).Error
	return posts, err
}

// ListPublishedSlugs returns every published slug for a type and locale
func (r *postRepository) ListPublishedSlugs(ctx context.Context, postType, locale, visibility string) ([]string, error) {
	var slugs []string
	err := r.published(ctx, PostFilter{PostType: postType, Locale: locale, Visibility: visibility}).
		Order(listingOrder).
		Pluck("slug", &slugs).Error
	return slugs, err
}

func (r *postRepository) all(ctx context.Context, f AdminPostFilter) *gorm.DB {
	q := r.db.WithContext(ctx).Model(&models.Post{})
	if f.PostType != "" {
		q = q.Where("post_type = ?", f.PostType)
	}
	if f.Locale != "" {
		q = q.Where("language = ?", f.Locale)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.Query != "" {
		like := "%" + f.Query + "%"
		q = q.Where("title LIKE ? OR slug LIKE ?", like, like)
	}
	return q
}

func (r *postRepository) CountAll(ctx context.Context, filter AdminPostFilter) (int64, error) {
	var count int64
	err := r.all(ctx, filter).Count(&count).Error
	return count, err
}

// ListAll returns posts of any status for the dashboard, newest first
func (r *postRepository) ListAll(ctx context.Context, filter AdminPostFilter, offset, limit int) ([]models.Post, error) {
	posts := []models.Post{}
	err := r.all(ctx, filter).
		Omit("content").
		Order("created_at DESC, id DESC").
		Offset(offset).Limit(limit).
		Find(&posts).Error
	return posts, err
}

// ListRelated returns published posts sharing tagID, excluding excludeID
func (r *postRepository) ListRelated(ctx context.Context, tagID, postType, locale, excludeID string, limit int) ([]models.Post, error) {
	posts := []models.Post{}
	sub := r.db.Model(&models.PostTag{}).Select("post_id").Where("tag_id = ?", tagID)
	err := r.published(ctx, PostFilter{PostType: postType, Locale: locale}).
		Where("id IN (?)", sub).
		Where("id <> ?", excludeID).
		Omit("content").
		Order(listingOrder).
		Limit(limit).
		Find(&posts).Error
	return posts, err
}
