package controllers

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/clawsite/clawsite/app/models"
	"github.com/clawsite/clawsite/internal/pkg/database"
)

// DebugController reports database state. It is only mounted in dev.
type DebugController struct {
	db *gorm.DB
}

func NewDebugController(db *gorm.DB) *DebugController {
	return &DebugController{db: db}
}

func debugResult(c *fiber.Ctx, results fiber.Map, err error) error {
	if err != nil {
		results["status"] = "error"
		results["error"] = err.Error()
		return c.Status(fiber.StatusInternalServerError).JSON(results)
	}
	results["status"] = "success"
	return c.JSON(results)
}

// HandleDB checks connectivity, the posts table and one sample blog row.
func (dc *DebugController) HandleDB(c *fiber.Ctx) error {
	dsn := database.DSN()
	results := fiber.Map{
		"driver":    database.Driver(),
		"hasDsn":    dsn != "",
		"dsnLength": len(dsn),
	}
	db := dc.db.WithContext(c.UserContext())

	sqlDB, err := db.DB()
	if err == nil {
		err = sqlDB.PingContext(c.UserContext())
	}
	if err != nil {
		return debugResult(c, results, err)
	}

	var count int64
	if err := db.Model(&models.Post{}).Count(&count).Error; err != nil {
		return debugResult(c, results, err)
	}
	results["postsCount"] = count

	columns, err := db.Migrator().ColumnTypes(&models.Post{})
	if err != nil {
		return debugResult(c, results, err)
	}
	names := make([]string, 0, len(columns))
	for _, col := range columns {
		names = append(names, col.Name())
	}
	results["columns"] = names

	var sample models.Post
	res := db.Select("id", "slug", "language", "post_type").
		Where("post_type = ?", models.PostTypeBlog).Limit(1).Find(&sample)
	if res.Error != nil {
		return debugResult(c, results, res.Error)
	}
	if res.RowsAffected > 0 {
		results["sampleBlog"] = fiber.Map{"id": sample.ID, "slug": sample.Slug, "language": sample.Language, "postType": sample.PostType}
	} else {
		results["sampleBlog"] = nil
	}
	return debugResult(c, results, nil)
}

// HandleBlog looks up one published blog row and its tags.
// Query: slug, locale (default en).
func (dc *DebugController) HandleBlog(c *fiber.Ctx) error {
	slug := c.Query("slug", "browser-relay")
	locale := c.Query("locale", "en")
	results := fiber.Map{"slug": slug, "locale": locale}
	db := dc.db.WithContext(c.UserContext())

	var post models.Post
	res := db.Where("slug = ? AND language = ? AND status = ? AND post_type = ?",
		slug, locale, models.PostStatusPublished, models.PostTypeBlog).Limit(1).Find(&post)
	if res.Error != nil {
		results["step"] = "querying post"
		return debugResult(c, results, res.Error)
	}
	results["postFound"] = res.RowsAffected > 0
	if res.RowsAffected == 0 {
		return debugResult(c, results, nil)
	}
	results["postId"] = post.ID
	results["postTitle"] = post.Title

	var tags []string
	err := db.Model(&models.Tag{}).
		Joins("JOIN post_tags ON post_tags.tag_id = tags.id").
		Where("post_tags.post_id = ?", post.ID).
		Pluck("tags.name", &tags).Error
	if err != nil {
		results["step"] = "querying tags"
		return debugResult(c, results, err)
	}
	results["tagsCount"] = len(tags)
	results["tags"] = tags
	return debugResult(c, results, nil)
}
