package repository

import (
	"context"
	"sort"

	"gorm.io/gorm"

	"github.com/clawsite/clawsite/app/models"
)

// tagRepository implements the TagRepository interface
type tagRepository struct {
	db *gorm.DB
}

// NewTagRepository creates a new tag repository instance
func NewTagRepository(db *gorm.DB) TagRepository {
	return &tagRepository{db: db}
}

func (r *tagRepository) Create(ctx context.Context, tag *models.Tag) error {
	return r.db.WithContext(ctx).Create(tag).Error
}

func (r *tagRepository) Update(ctx context.Context, tag *models.Tag) error {
	return r.db.WithContext(ctx).Model(&models.Tag{}).Where("id = ?", tag.ID).Update("name", tag.Name).Error
}

// Delete removes a tag and every assignment of it
func (r *tagRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("tag_id = ?", id).Delete(&models.PostTag{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&models.Tag{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (r *tagRepository) GetByID(ctx context.Context, id string) (*models.Tag, error) {
	var tag models.Tag
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&tag).Error; err != nil {
		return nil, err
	}
	return &tag, nil
}

// List returns the tags of a post type, optionally filtered by a name fragment
func (r *tagRepository) List(ctx context.Context, postType, query string) ([]models.Tag, error) {
	tags := []models.Tag{}
	q := r.db.WithContext(ctx).Where("post_type = ?", postType)
	if query != "" {
		q = q.Where("name LIKE ?", "%"+query+"%")
	}
	err := q.Order("name ASC").Find(&tags).Error
	return tags, err
}

func (r *tagRepository) NameExists(ctx context.Context, postType, name, exceptID string) (bool, error) {
	var count int64
	q := r.db.WithContext(ctx).Model(&models.Tag{}).Where("post_type = ? AND name = ?", postType, name)
	if exceptID != "" {
		q = q.Where("id <> ?", exceptID)
	}
	err := q.Count(&count).Error
	return count > 0, err
}

// PostIDs returns the ids of every post carrying the tag
func (r *tagRepository) PostIDs(ctx context.Context, tagID string) ([]string, error) {
	ids := []string{}
	err := r.db.WithContext(ctx).Model(&models.PostTag{}).Where("tag_id = ?", tagID).Pluck("post_id", &ids).Error
	return ids, err
}

type postTagRow struct {
	PostID string
	ID     string
	Name   string
}

// TagsByPost loads the tags of many posts in one query, sorted by name
func (r *tagRepository) TagsByPost(ctx context.Context, postIDs []string) (map[string][]models.Tag, error) {
	out := make(map[string][]models.Tag, len(postIDs))
	if len(postIDs) == 0 {
		return out, nil
	}

	var rows []postTagRow
	err := r.db.WithContext(ctx).Table("post_tags").
		Select("post_tags.post_id, tags.id, tags.name").
		Joins("INNER JOIN tags ON tags.id = post_tags.tag_id").
		Where("post_tags.post_id IN ?", postIDs).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	for _, row := range rows {
		out[row.PostID] = append(out[row.PostID], models.Tag{ID: row.ID, Name: row.Name})
	}
	for id := range out {
		tags := out[id]
		sort.Slice(tags, func(i, j int) bool { return tags[i].Name < tags[j].Name })
	}
	return out, nil
}

// MissingIDs returns the ids that name no tag of postType, in input order.
func (r *tagRepository) MissingIDs(ctx context.Context, postType string, ids []string) ([]string, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var found []string
	err := r.db.WithContext(ctx).Model(&models.Tag{}).
		Where("post_type = ? AND id IN ?", postType, ids).
		Pluck("id", &found).Error
	if err != nil {
		return nil, err
	}
	known := make(map[string]bool, len(found))
	for _, id := range found {
		known[id] = true
	}
	var missing []string
	for _, id := range ids {
		if !known[id] {
			missing = append(missing, id)
			known[id] = true
		}
	}
	return missing, nil
}

// replacePostTags swaps the tag assignments of a post inside tx.
func replacePostTags(tx *gorm.DB, postID string, tagIDs []string) error {
	if err := tx.Where("post_id = ?", postID).Delete(&models.PostTag{}).Error; err != nil {
		return err
	}
	seen := make(map[string]bool, len(tagIDs))
	rows := make([]models.PostTag, 0, len(tagIDs))
	for _, id := range tagIDs {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		rows = append(rows, models.PostTag{PostID: postID, TagID: id})
	}
	if len(rows) == 0 {
		return nil
	}
	return tx.Create(&rows).Error
}
